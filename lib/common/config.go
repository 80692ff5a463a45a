package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ValentinKolb/seglog/lib/db/record"
)

// Defaults of the engine configuration
const (
	DefaultLogSizeBytes     = 64 * 1024 * 1024 // 64 MB per core
	DefaultSegmentSizeBytes = 1024 * 1024      // 1 MB
	DefaultCores            = 1
	DefaultQueueCapacity    = 1024
	DefaultLogLevel         = "info"
)

// --------------------------------------------------------------------------
// Engine configuration struct
// --------------------------------------------------------------------------

// EngineConfig holds all configuration parameters of a local store.
// Every core owns a log of LogSizeBytes, so the total capacity is LogSizeBytes * Cores.
type EngineConfig struct {
	// log parameters (per core)
	LogSizeBytes     int
	SegmentSizeBytes int

	// runtime parameters
	Cores         int
	QueueCapacity int

	// Logging configuration
	LogLevel string
}

// DefaultEngineConfig returns a configuration with all defaults applied
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		LogSizeBytes:     DefaultLogSizeBytes,
		SegmentSizeBytes: DefaultSegmentSizeBytes,
		Cores:            DefaultCores,
		QueueCapacity:    DefaultQueueCapacity,
		LogLevel:         DefaultLogLevel,
	}
}

// Validate reports all invalid parameters at once.
// Constructors panic on invalid sizes, so user input should be validated first.
func (c *EngineConfig) Validate() error {
	var errs []error

	if c.SegmentSizeBytes < record.HeaderSize+2 {
		errs = append(errs, fmt.Errorf("segment size must be at least %d bytes, got %d", record.HeaderSize+2, c.SegmentSizeBytes))
	}
	if c.LogSizeBytes < c.SegmentSizeBytes {
		errs = append(errs, fmt.Errorf("log size (%d) must be at least the segment size (%d)", c.LogSizeBytes, c.SegmentSizeBytes))
	}
	if c.Cores < 1 {
		errs = append(errs, fmt.Errorf("cores must be at least 1, got %d", c.Cores))
	}
	if c.QueueCapacity < 1 {
		errs = append(errs, fmt.Errorf("queue capacity must be at least 1, got %d", c.QueueCapacity))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// String returns a formatted string representation of the configuration
func (c *EngineConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Log settings
	addSection("Log")
	addField("Log Size", formatBytes(c.LogSizeBytes))
	addField("Segment Size", formatBytes(c.SegmentSizeBytes))
	if c.SegmentSizeBytes > 0 {
		addField("Segments per Log", fmt.Sprintf("%d", (c.LogSizeBytes+c.SegmentSizeBytes-1)/c.SegmentSizeBytes))
	}

	// Runtime settings
	addSection("Runtime")
	addField("Cores", fmt.Sprintf("%d", c.Cores))
	addField("Queue Capacity", fmt.Sprintf("%d", c.QueueCapacity))
	addField("Total Capacity", formatBytes(c.LogSizeBytes*c.Cores))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// formatBytes renders a byte count with a binary unit
func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

package util

import (
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/ValentinKolb/seglog/lib/common"
	"github.com/ValentinKolb/seglog/lib/db"
	"github.com/ValentinKolb/seglog/lib/db/engines/seglog"
	"github.com/ValentinKolb/seglog/lib/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables (e.g. SEGLOG_LOG_SIZE)
	EnvPrefix = "seglog"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupEngineFlags adds the engine configuration flags to a command
func SetupEngineFlags(cmd *cobra.Command) {
	key := "log-size"
	cmd.PersistentFlags().Int(key, common.DefaultLogSizeBytes, WrapString("Capacity of the log of every core in bytes"))

	key = "segment-size"
	cmd.PersistentFlags().Int(key, common.DefaultSegmentSizeBytes, WrapString("Capacity of a single segment in bytes. Records larger than a segment are always rejected"))

	key = "cores"
	cmd.PersistentFlags().Int(key, common.DefaultCores, WrapString("Number of cores. Every core owns one log and runs on its own OS thread"))

	key = "queue-capacity"
	cmd.PersistentFlags().Int(key, common.DefaultQueueCapacity, WrapString("Capacity of the command and reply queues of every core"))

	key = "log-level"
	cmd.PersistentFlags().String(key, common.DefaultLogLevel, WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetEngineConfig reads the engine configuration from viper
func GetEngineConfig() common.EngineConfig {
	return common.EngineConfig{
		LogSizeBytes:     viper.GetInt("log-size"),
		SegmentSizeBytes: viper.GetInt("segment-size"),
		Cores:            viper.GetInt("cores"),
		QueueCapacity:    viper.GetInt("queue-capacity"),
		LogLevel:         viper.GetString("log-level"),
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// --------------------------------------------------------------------------
// Log factory
// --------------------------------------------------------------------------

// LogRegistry creates seglog databases and keeps track of them, so that their
// metrics can be written after they were handed to the store
type LogRegistry struct {
	mu   sync.Mutex
	logs []*seglog.Log
}

// Factory returns a store.DBFactory creating logs with the sizes of cfg.
// Logs are named by creation order, which is the core id for the local store.
func (r *LogRegistry) Factory(cfg common.EngineConfig) store.DBFactory {
	return func() db.LogDB {
		r.mu.Lock()
		defer r.mu.Unlock()
		name := strconv.Itoa(len(r.logs))
		l := seglog.NewLog(seglog.NewOptions(cfg.LogSizeBytes, cfg.SegmentSizeBytes).WithName(name))
		r.logs = append(r.logs, l)
		return l
	}
}

// WriteMetrics writes the metrics of all created logs in Prometheus text format to w
func (r *LogRegistry) WriteMetrics(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.logs {
		l.WriteMetrics(w)
	}
}

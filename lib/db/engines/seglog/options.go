package seglog

import (
	"fmt"

	"github.com/ValentinKolb/seglog/lib/db/util"
)

// Default sizes used by DefaultOptions
const (
	defaultLogSizeBytes     = 64 * 1024 * 1024 // 64 MB
	defaultSegmentSizeBytes = 1024 * 1024      // 1 MB
)

// Options configures the capacity of a Log
type Options struct {
	LogSizeBytes     int // total capacity of the log
	SegmentSizeBytes int // capacity of a single segment

	// Name is added as log="<Name>" label to all metrics of the log if not empty.
	// Logs whose metrics are written to the same output need distinct names.
	Name string
}

// NewOptions creates log options for the given total and per-segment capacity.
// Panics unless logSizeBytes >= segmentSizeBytes > 0.
func NewOptions(logSizeBytes, segmentSizeBytes int) *Options {
	opts := &Options{
		LogSizeBytes:     logSizeBytes,
		SegmentSizeBytes: segmentSizeBytes,
	}
	opts.mustValidate()
	return opts
}

// DefaultOptions returns the default log options (64 MB log, 1 MB segments)
func DefaultOptions() *Options {
	return NewOptions(defaultLogSizeBytes, defaultSegmentSizeBytes)
}

// WithName returns a copy of the options with the metrics name set
func (o *Options) WithName(name string) *Options {
	opts := *o
	opts.Name = name
	return &opts
}

// NumSegments returns the number of segments, rounding up if the log size is
// not a multiple of the segment size
func (o *Options) NumSegments() int {
	return util.CeilDiv(o.LogSizeBytes, o.SegmentSizeBytes)
}

// mustValidate panics if the options violate logSizeBytes >= segmentSizeBytes > 0
func (o *Options) mustValidate() {
	if o.SegmentSizeBytes <= 0 {
		panic(fmt.Sprintf("seglog: segment size must be positive, got %d", o.SegmentSizeBytes))
	}
	if o.LogSizeBytes < o.SegmentSizeBytes {
		panic(fmt.Sprintf("seglog: log size (%d) must be at least the segment size (%d)", o.LogSizeBytes, o.SegmentSizeBytes))
	}
}

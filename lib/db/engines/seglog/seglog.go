package seglog

import (
	"fmt"
	"io"

	"github.com/ValentinKolb/seglog/lib/db"
	"github.com/ValentinKolb/seglog/lib/db/engines/seglog/internal"
	"github.com/ValentinKolb/seglog/lib/db/record"
	"github.com/ValentinKolb/seglog/lib/db/util"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("seglog")

// --------------------------------------------------------------------------
// Core Log structure
// --------------------------------------------------------------------------

// Log is an in-memory, append-only key-value log made of fixed-capacity segments.
//
// Records are appended to the tail segment. If the tail segment can not take a record, the tail
// is moved to the next segment (never back) and the write is retried once. Once the last segment
// rejects a write the log is full for good: there is no wraparound and no compaction.
//
// Thread-safety: a Log is owned by a single goroutine and none of its methods may be called
// concurrently, except WriteMetrics which only reads atomic counters.
type Log struct {
	opts     Options
	segments []*internal.Segment
	index    *internal.Index
	tail     int  // segment currently accepting writes, only ever increases
	full     bool // the last segment rejected a write
	closed   bool

	scratch []byte // reused encoding buffer

	// statistics
	recordSizes *util.SizeHistogram
	metrics     *logMetrics
}

// logMetrics holds the counters of a single log instance
type logMetrics struct {
	set            *metrics.Set
	appendOK       *metrics.Counter
	appendRejected *metrics.Counter
	appendOversize *metrics.Counter
	appendedBytes  *metrics.Counter
	rollovers      *metrics.Counter
	getHit         *metrics.Counter
	getMiss        *metrics.Counter
	getCorrupt     *metrics.Counter
}

func newLogMetrics(name string) *logMetrics {
	set := metrics.NewSet()

	// metric returns the metric name with the log label (if any) prepended to labels
	metric := func(base, labels string) string {
		if name != "" {
			if labels != "" {
				labels = "," + labels
			}
			labels = fmt.Sprintf("log=%q", name) + labels
		}
		if labels == "" {
			return base
		}
		return base + "{" + labels + "}"
	}

	return &logMetrics{
		set:            set,
		appendOK:       set.NewCounter(metric("seglog_appends_total", `result="ok"`)),
		appendRejected: set.NewCounter(metric("seglog_appends_total", `result="full"`)),
		appendOversize: set.NewCounter(metric("seglog_appends_total", `result="oversized"`)),
		appendedBytes:  set.NewCounter(metric("seglog_appended_bytes_total", "")),
		rollovers:      set.NewCounter(metric("seglog_rollovers_total", "")),
		getHit:         set.NewCounter(metric("seglog_gets_total", `result="found"`)),
		getMiss:        set.NewCounter(metric("seglog_gets_total", `result="not_found"`)),
		getCorrupt:     set.NewCounter(metric("seglog_gets_total", `result="corrupt"`)),
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewLog creates a new log with the specified options (optional, nil means DefaultOptions).
// All segments are allocated up front. Panics if the options are invalid.
func NewLog(opts *Options) *Log {
	if opts == nil {
		opts = DefaultOptions()
	}
	opts.mustValidate()

	segments := make([]*internal.Segment, opts.NumSegments())
	for i := range segments {
		segments[i] = internal.NewSegment(opts.SegmentSizeBytes)
	}

	l := &Log{
		opts:        *opts,
		segments:    segments,
		index:       internal.NewIndex(),
		recordSizes: util.NewSizeHistogram(min(opts.SegmentSizeBytes, record.MaxSizeBytes)),
		metrics:     newLogMetrics(opts.Name),
	}

	log.Debugf("created log with %d segments of %d bytes", len(segments), opts.SegmentSizeBytes)
	return l
}

// NewLogDB creates a new log and returns it as db.LogDB
func NewLogDB(opts *Options) db.LogDB {
	return NewLog(opts)
}

// --------------------------------------------------------------------------
// Append and Lookup
// --------------------------------------------------------------------------

// TryAppend appends the record to the log and indexes it by its key.
// It returns false if the record does not fit, in which case the index is unchanged.
//
// A record whose encoded size exceeds the segment size can never be stored and is rejected
// without moving the tail.
func (l *Log) TryAppend(kv record.KeyValue) bool {
	l.mustBeOpen()

	size := kv.SizeBytes()
	if size > l.opts.SegmentSizeBytes {
		l.metrics.appendOversize.Inc()
		return false
	}
	if l.full {
		l.metrics.appendRejected.Inc()
		return false
	}

	encoded := l.encode(kv, size)

	offset, ok := l.segments[l.tail].TryAppend(encoded)
	if !ok {
		// the last segment rejected the write -> the log is full
		if l.tail == len(l.segments)-1 {
			l.full = true
			l.metrics.appendRejected.Inc()
			log.Infof("log is full (%d segments, %d bytes)", len(l.segments), l.sizeBytes())
			return false
		}

		// rollover, the previous segment is never written again
		l.tail++
		l.metrics.rollovers.Inc()

		offset, ok = l.segments[l.tail].TryAppend(encoded)
		if !ok {
			// can not happen: the record fits into an empty segment
			panic(fmt.Sprintf("seglog: record of %d bytes rejected by fresh segment %d", size, l.tail))
		}
	}

	l.index.Insert(kv.Key(), internal.Marker{
		Segment: l.tail,
		Offset:  offset,
		Length:  size,
	})

	l.recordSizes.AddSample(size)
	l.metrics.appendOK.Inc()
	l.metrics.appendedBytes.Add(size)
	return true
}

// TryGet returns the latest record for key.
//
//   - found == false: the key is not in the index
//   - found == true, err != nil: the key is indexed but the stored bytes do not decode
//   - found == true, err == nil: kv holds the record
//
// The returned record owns its data.
func (l *Log) TryGet(key []byte) (kv record.KeyValue, found bool, err error) {
	l.mustBeOpen()

	marker, ok := l.index.Get(key)
	if !ok {
		l.metrics.getMiss.Inc()
		return record.KeyValue{}, false, nil
	}

	data := l.segments[marker.Segment].Read(marker.Offset, marker.Length)
	kv, err = record.Decode(data)
	if err != nil {
		l.metrics.getCorrupt.Inc()
		log.Errorf("failed to decode record at %s: %v", marker, err)
		return record.KeyValue{}, true, fmt.Errorf("seglog: decode record for key %q at %s: %w", key, marker, err)
	}

	l.metrics.getHit.Inc()
	return kv, true, nil
}

// encode writes kv into the scratch buffer and returns the encoded bytes.
// The segment copies the bytes, so the buffer can be reused for the next append.
func (l *Log) encode(kv record.KeyValue, size int) []byte {
	if cap(l.scratch) < size {
		l.scratch = make([]byte, size)
	}
	buf := l.scratch[:size]
	kv.EncodeTo(buf)
	return buf
}

// State returns the lifecycle state of the log
func (l *Log) State() db.State {
	l.mustBeOpen()

	switch {
	case l.full:
		return db.StateFull
	case l.tail == 0 && l.segments[0].IsEmpty():
		return db.StateEmpty
	default:
		return db.StateFilling
	}
}

// NumSegments returns the number of segments of the log
func (l *Log) NumSegments() int {
	return len(l.segments)
}

// Tail returns the index of the segment currently accepting writes
func (l *Log) Tail() int {
	return l.tail
}

func (l *Log) sizeBytes() int {
	size := 0
	for _, s := range l.segments {
		size += s.Written()
	}
	return size
}

func (l *Log) mustBeOpen() {
	if l.closed {
		panic("seglog: use of closed log")
	}
}

// --------------------------------------------------------------------------
// LogDB Interface Methods
// --------------------------------------------------------------------------

// Put appends a record for key. Returns false if the log has no capacity left for it.
func (l *Log) Put(key, value []byte) bool {
	return l.TryAppend(record.New(key, value))
}

// Update appends a newer record for key. Semantically identical to Put on an append-only log.
func (l *Log) Update(key, value []byte) bool {
	return l.TryAppend(record.New(key, value))
}

// Get retrieves the latest record for key, see TryGet
func (l *Log) Get(key []byte) (record.KeyValue, bool, error) {
	return l.TryGet(key)
}

// SupportsFeature checks if this implementation supports a specific LogDB feature
func (l *Log) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeaturePut |
		db.FeatureUpdate |
		db.FeatureGet
	return supportedFeatures&feature == feature
}

// GetInfo returns statistics about the log
func (l *Log) GetInfo() db.DatabaseInfo {
	l.mustBeOpen()

	fill := make([]float64, len(l.segments))
	for i, s := range l.segments {
		fill[i] = float64(s.Written()) / float64(s.Capacity())
	}

	meta := &struct {
		NumSegments      int        `json:"num_segments"`
		SegmentSizeBytes int        `json:"segment_size_bytes"`
		TailSegment      int        `json:"tail_segment"`
		IndexedKeys      int        `json:"indexed_keys"`
		Records          int64      `json:"records"`
		AvgRecordSize    int        `json:"avg_record_size"`
		MedianRecordSize int        `json:"median_record_size"`
		P99RecordSize    int        `json:"p99_record_size"`
		SegmentFill      util.Stats `json:"segment_fill"`
		StaleBytes       int        `json:"stale_bytes"`
		Info             string     `json:"info"`
	}{
		NumSegments:      len(l.segments),
		SegmentSizeBytes: l.opts.SegmentSizeBytes,
		TailSegment:      l.tail,
		IndexedKeys:      l.index.Len(),
		Records:          l.recordSizes.GetCount(),
		AvgRecordSize:    l.recordSizes.AverageSize(),
		MedianRecordSize: l.recordSizes.MedianEstimate(),
		P99RecordSize:    l.recordSizes.GetPercentileEstimate(99),
		SegmentFill:      util.NewStats(fill),
		StaleBytes:       l.staleBytes(),
		Info:             "Record sizes are estimates based on a histogram.",
	}

	return db.DatabaseInfo{
		SizeBytes:         l.sizeBytes(),
		CapacityBytes:     len(l.segments) * l.opts.SegmentSizeBytes,
		State:             l.State().String(),
		DbType:            db.ImplSegLog,
		SupportedFeatures: []db.Feature{db.FeaturePut, db.FeatureUpdate, db.FeatureGet},
		Metadata:          meta,
	}
}

// staleBytes estimates the bytes held by shadowed records and by capacity skipped on rollover
func (l *Log) staleBytes() int {
	stale := 0
	for i := 0; i < l.tail; i++ {
		stale += l.segments[i].Available()
	}
	if n := l.recordSizes.GetCount(); n > 0 {
		shadowed := int(n) - l.index.Len()
		stale += shadowed * l.recordSizes.AverageSize()
	}
	return stale
}

// WriteMetrics writes the metrics of this log in Prometheus text format to w
func (l *Log) WriteMetrics(w io.Writer) {
	l.metrics.set.WritePrometheus(w)
}

// Close releases the segments and the index. The log must not be used afterward.
func (l *Log) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.segments = nil
	l.index = nil
	return nil
}

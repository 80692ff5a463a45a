// Package seglog implements an in-memory, append-only key-value log (LogDB) organized as a
// fixed number of fixed-capacity segments plus an index from key to record location.
//
// Key Components:
//
//   - Log: The central structure implementing db.LogDB. It owns all segments and the index
//     and decides where a record goes. A tail cursor points at the segment currently accepting
//     writes; it only ever moves forward.
//
//   - Segment (internal): A byte buffer of fixed capacity. A write is admitted only if it fits
//     completely, records are never split across segments. The capacity is allocated once, so
//     the append path never reallocates.
//
//   - Index (internal): Maps an owned copy of each key to a Marker {segment, offset, length}.
//     The index never holds payload bytes, only coordinates into segments. A second write for
//     the same key overwrites the marker (last write wins); the old bytes stay in their segment
//     but are unreachable.
//
// Append Algorithm:
//
//  1. Encode the record (see package record for the byte layout).
//  2. Try to write into the tail segment.
//  3. If it does not fit and the tail is not the last segment, advance the tail by one and
//     retry once. Advancing is permanent, free bytes left in earlier segments are never used.
//  4. On success, store {tail, offset, length} in the index.
//  5. If the last segment rejects the write the log is Full. Full is terminal: every later
//     append fails, the caller has to handle backpressure.
//
// Records that are larger than a single segment can never be stored. They are rejected right
// away without moving the tail.
//
// Lifecycle: Empty -> Filling -> Full
//
// Error Handling:
//
//   - Capacity exhaustion is reported as false, never as an error.
//   - A missing key is reported as found == false.
//   - A record that is indexed but fails to decode is reported as found == true together with
//     an error, so corruption is never mistaken for absence.
//   - Invalid options, empty keys/values and out-of-range segment reads are programming errors
//     and panic.
//
// Metrics: every log has its own VictoriaMetrics set with append, rollover and lookup counters,
// see Log.WriteMetrics.
//
// Note: A Log is not safe for concurrent use. In a thread-per-core setup each log is owned by
// exactly one core goroutine (see package core).
package seglog

package internal

import "fmt"

// --------------------------------------------------------------------------
// Segment (fixed-capacity append-only buffer)
// --------------------------------------------------------------------------

// Segment is a fixed-capacity, append-only byte buffer.
// The backing array is allocated once, it never grows, shrinks or compacts.
// Invariant: Written() + Available() == Capacity()
type Segment struct {
	buffer    []byte // len = bytes written, cap = capacity
	available int    // remaining capacity
}

// NewSegment creates an empty segment with the given capacity.
// Panics if capacity is not positive.
func NewSegment(capacity int) *Segment {
	if capacity <= 0 {
		panic(fmt.Sprintf("segment: capacity must be positive, got %d", capacity))
	}
	return &Segment{
		buffer:    make([]byte, 0, capacity),
		available: capacity,
	}
}

// TryAppend appends data iff it fits into the remaining capacity.
// It returns the offset of the written data and true on success. Otherwise it returns
// false and the segment is unchanged (writes are never split).
func (s *Segment) TryAppend(data []byte) (int, bool) {
	if len(data) > s.available {
		return 0, false
	}
	offset := len(s.buffer)
	s.buffer = append(s.buffer, data...)
	s.available -= len(data)
	return offset, true
}

// Read returns exactly length bytes starting at offset.
// The returned slice aliases the segment and must not be modified.
// Offsets come from the index only, reading outside of the written bytes is a
// programming error and panics.
func (s *Segment) Read(offset, length int) []byte {
	if length <= 0 || offset < 0 || offset+length > len(s.buffer) {
		panic(fmt.Sprintf("segment: read [%d, %d) out of written range [0, %d)", offset, offset+length, len(s.buffer)))
	}
	return s.buffer[offset : offset+length : offset+length]
}

// IsEmpty returns true if nothing was written to the segment yet
func (s *Segment) IsEmpty() bool {
	return s.available == cap(s.buffer)
}

// IsFull returns true if the segment has no capacity left
func (s *Segment) IsFull() bool {
	return s.available == 0
}

// Available returns the remaining capacity in bytes
func (s *Segment) Available() int {
	return s.available
}

// Written returns the number of bytes written
func (s *Segment) Written() int {
	return len(s.buffer)
}

// Capacity returns the total capacity in bytes
func (s *Segment) Capacity() int {
	return cap(s.buffer)
}

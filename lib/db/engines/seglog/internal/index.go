package internal

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Marker (location of a record)
// --------------------------------------------------------------------------

// Marker locates an encoded record inside the segments of a log
type Marker struct {
	Segment int // index of the segment
	Offset  int // offset within the segment
	Length  int // encoded length of the record
}

func (m Marker) String() string {
	return fmt.Sprintf("Marker{Segment: %d, Offset: %d, Length: %d}", m.Segment, m.Offset, m.Length)
}

// --------------------------------------------------------------------------
// Index (key -> marker)
// --------------------------------------------------------------------------

// Index maps keys to the location of their latest record.
// It never holds payload bytes, only coordinates into segments owned by the log.
//
// Thread-safety: writes come from the owning log only, but the map tolerates
// concurrent readers (e.g. statistics).
type Index struct {
	markers *xsync.MapOf[string, Marker]
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{
		markers: xsync.NewMapOf[string, Marker](),
	}
}

// Insert sets the marker for key, overwriting any previous marker (last write wins).
// The key is copied.
func (i *Index) Insert(key []byte, marker Marker) {
	i.markers.Store(string(key), marker)
}

// Get returns the marker for key and whether the key was found
func (i *Index) Get(key []byte) (Marker, bool) {
	return i.markers.Load(string(key))
}

// Len returns the number of keys in the index
func (i *Index) Len() int {
	return i.markers.Size()
}

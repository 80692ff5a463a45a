package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// HeaderSize is the size of the fixed record header (key length + value length)
	HeaderSize = 4

	// MaxFieldSize is the largest key or value that fits into a uint16 length header
	MaxFieldSize = math.MaxUint16

	// MaxSizeBytes is the size of the largest encodable record
	MaxSizeBytes = HeaderSize + 2*MaxFieldSize
)

// ErrShortBuffer is returned by Decode if the buffer holds fewer bytes than the headers declare.
// It wraps io.ErrUnexpectedEOF so callers can test for either.
var ErrShortBuffer = fmt.Errorf("record: short buffer: %w", io.ErrUnexpectedEOF)

// ErrEmptyField is returned by Decode if a header declares an empty key or value
var ErrEmptyField = errors.New("record: decoded key or value is empty")

// --------------------------------------------------------------------------
// KeyValue
// --------------------------------------------------------------------------

// KeyValue is a single immutable key-value record as stored in a segment.
type KeyValue struct {
	key   []byte
	value []byte
}

// New creates a record from the given key and value.
// Both must be non-empty and at most MaxFieldSize bytes long; violating this is a
// programming error and panics. The record keeps references to key and value, callers
// must not modify them afterward.
func New(key, value []byte) KeyValue {
	if len(key) == 0 {
		panic("record: key must not be empty")
	}
	if len(value) == 0 {
		panic("record: value must not be empty")
	}
	if len(key) > MaxFieldSize || len(value) > MaxFieldSize {
		panic(fmt.Sprintf("record: key (%d bytes) or value (%d bytes) exceeds %d bytes", len(key), len(value), MaxFieldSize))
	}
	return KeyValue{key: key, value: value}
}

// Key returns the key of the record
func (kv KeyValue) Key() []byte {
	return kv.key
}

// Value returns the value of the record
func (kv KeyValue) Value() []byte {
	return kv.value
}

// SizeBytes returns the exact number of bytes needed to encode this record
func (kv KeyValue) SizeBytes() int {
	return HeaderSize + len(kv.key) + len(kv.value)
}

// Equal reports whether both records hold the same key and value
func (kv KeyValue) Equal(other KeyValue) bool {
	return bytes.Equal(kv.key, other.key) && bytes.Equal(kv.value, other.value)
}

func (kv KeyValue) String() string {
	return fmt.Sprintf("KeyValue{Key: %q, Value: %d bytes}", kv.key, len(kv.value))
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// Encode serializes the record into a new byte slice with the format:
// 2 bytes for key length (little endian),
// 2 bytes for value length (little endian),
// N bytes for key data,
// N bytes for value data
func (kv KeyValue) Encode() []byte {
	buf := make([]byte, kv.SizeBytes())
	kv.EncodeTo(buf)
	return buf
}

// EncodeTo writes the encoded record into dst and returns the number of bytes written.
// dst must be at least SizeBytes() long.
func (kv KeyValue) EncodeTo(dst []byte) int {
	binary.LittleEndian.PutUint16(dst[0:2], uint16(len(kv.key)))
	binary.LittleEndian.PutUint16(dst[2:4], uint16(len(kv.value)))
	n := HeaderSize
	n += copy(dst[n:], kv.key)
	n += copy(dst[n:], kv.value)
	return n
}

// Decode is the exact inverse of Encode.
// The returned record owns copies of the key and value, it never aliases data.
// An error wrapping io.ErrUnexpectedEOF is returned if data is shorter than the headers declare.
// Headers declaring an empty key or value are reported as corrupt.
func Decode(data []byte) (KeyValue, error) {
	if len(data) < HeaderSize {
		return KeyValue{}, fmt.Errorf("%w: need %d header bytes, have %d", ErrShortBuffer, HeaderSize, len(data))
	}

	keyLen := int(binary.LittleEndian.Uint16(data[0:2]))
	valueLen := int(binary.LittleEndian.Uint16(data[2:4]))

	if len(data) < HeaderSize+keyLen+valueLen {
		return KeyValue{}, fmt.Errorf("%w: headers declare %d bytes, have %d", ErrShortBuffer, keyLen+valueLen, len(data)-HeaderSize)
	}
	if keyLen == 0 || valueLen == 0 {
		return KeyValue{}, ErrEmptyField
	}

	key := make([]byte, keyLen)
	copy(key, data[HeaderSize:HeaderSize+keyLen])

	value := make([]byte, valueLen)
	copy(value, data[HeaderSize+keyLen:HeaderSize+keyLen+valueLen])

	return KeyValue{key: key, value: value}, nil
}

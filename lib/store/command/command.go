package command

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ValentinKolb/seglog/lib/db"
	"github.com/ValentinKolb/seglog/lib/db/record"
)

// HeaderSize is the size of the fixed command header (key length + value length + type tag)
const HeaderSize = 5

// ErrShortCommand is returned if the input holds fewer bytes than the command header declares.
var ErrShortCommand = fmt.Errorf("command: short input: %w", io.ErrUnexpectedEOF)

// --------------------------------------------------------------------------
// Command Type
// --------------------------------------------------------------------------

// Type defines the possible operations on a log. The numeric values are the wire tags.
type Type uint8

const (
	TypeGet    Type = 1 // Look up the latest record of a key.
	TypePut    Type = 2 // Append a record.
	TypeUpdate Type = 3 // Append a newer record for a key.
)

func (t Type) String() string {
	switch t {
	case TypeGet:
		return "Get"
	case TypePut:
		return "Put"
	case TypeUpdate:
		return "Update"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// ToDBFeature converts a Type to the corresponding db.Feature.
// This can be used for checking if the database supports a certain operation.
func (t Type) ToDBFeature() (db.Feature, error) {
	switch t {
	case TypeGet:
		return db.FeatureGet, nil
	case TypePut:
		return db.FeaturePut, nil
	case TypeUpdate:
		return db.FeatureUpdate, nil
	default:
		return 0, fmt.Errorf("unknown command type %d", t)
	}
}

// mustBeKnown panics for tags outside the closed set of command types
func (t Type) mustBeKnown() {
	switch t {
	case TypeGet, TypePut, TypeUpdate:
	default:
		panic(fmt.Sprintf("command: unknown command type %d", uint8(t)))
	}
}

// --------------------------------------------------------------------------
// Command
// --------------------------------------------------------------------------

// Command represents a single operation to be executed against a log.
// Value is nil for Get commands.
type Command struct {
	Type  Type
	Key   []byte
	Value []byte
}

// Get creates a command looking up key
func Get(key []byte) Command {
	return Command{Type: TypeGet, Key: key}
}

// Put creates a command appending key and value
func Put(key, value []byte) Command {
	return Command{Type: TypePut, Key: key, Value: value}
}

// Update creates a command appending a newer value for key
func Update(key, value []byte) Command {
	return Command{Type: TypeUpdate, Key: key, Value: value}
}

func (c Command) String() string {
	if c.Type == TypeGet {
		return fmt.Sprintf("%s(%q)", c.Type, c.Key)
	}
	return fmt.Sprintf("%s(%q, %d bytes)", c.Type, c.Key, len(c.Value))
}

// SizeBytes returns the exact number of bytes needed to serialize this command
func (c *Command) SizeBytes() int {
	return HeaderSize + len(c.Key) + len(c.Value)
}

// Serialize serializes a command into a byte array with the format:
// 2 bytes for key length (little endian),
// 2 bytes for value length (little endian),
// 1 byte for the command type,
// N bytes for key data,
// N bytes for value data (empty for Get)
func (c *Command) Serialize() []byte {
	c.Type.mustBeKnown()
	if len(c.Key) > math.MaxUint16 || len(c.Value) > math.MaxUint16 {
		panic(fmt.Sprintf("command: key (%d bytes) or value (%d bytes) exceeds %d bytes", len(c.Key), len(c.Value), math.MaxUint16))
	}

	result := make([]byte, c.SizeBytes())

	binary.LittleEndian.PutUint16(result[0:2], uint16(len(c.Key)))
	binary.LittleEndian.PutUint16(result[2:4], uint16(len(c.Value)))
	result[4] = byte(c.Type)

	n := HeaderSize
	n += copy(result[n:], c.Key)
	copy(result[n:], c.Value)

	return result
}

// Deserialize extracts all Command fields from a byte array.
// Bytes after the declared value are ignored. Key and value are copied.
// An unknown type tag is a fatal decode error and panics.
func (c *Command) Deserialize(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: need %d header bytes, have %d", ErrShortCommand, HeaderSize, len(data))
	}

	keyLen, valueLen, t := parseHeader(data)

	if len(data) < HeaderSize+keyLen+valueLen {
		return fmt.Errorf("%w: header declares %d bytes, have %d", ErrShortCommand, keyLen+valueLen, len(data)-HeaderSize)
	}

	c.Type = t
	c.Key = make([]byte, keyLen)
	copy(c.Key, data[HeaderSize:HeaderSize+keyLen])
	c.Value = nil
	if valueLen > 0 {
		c.Value = make([]byte, valueLen)
		copy(c.Value, data[HeaderSize+keyLen:HeaderSize+keyLen+valueLen])
	}
	return nil
}

// ReadFrom reads exactly one serialized command from r.
// It returns io.EOF if r is exhausted before the first header byte, and an error wrapping
// io.ErrUnexpectedEOF if the stream ends inside a command.
func (c *Command) ReadFrom(r io.Reader) (int64, error) {
	var header [HeaderSize]byte
	n, err := io.ReadFull(r, header[:])
	switch {
	case err == io.EOF:
		return 0, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return int64(n), fmt.Errorf("%w: read %d header bytes", ErrShortCommand, n)
	case err != nil:
		return int64(n), fmt.Errorf("command: read header: %w", err)
	}

	keyLen, valueLen, t := parseHeader(header[:])

	body := make([]byte, keyLen+valueLen)
	m, err := io.ReadFull(r, body)
	switch {
	case err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF):
		return int64(n + m), fmt.Errorf("%w: header declares %d bytes, read %d", ErrShortCommand, len(body), m)
	case err != nil:
		return int64(n + m), fmt.Errorf("command: read body: %w", err)
	}

	c.Type = t
	c.Key = body[:keyLen:keyLen]
	c.Value = nil
	if valueLen > 0 {
		c.Value = body[keyLen:]
	}
	return int64(n + m), nil
}

// parseHeader decodes the fixed header, panicking on an unknown type tag
func parseHeader(header []byte) (keyLen, valueLen int, t Type) {
	keyLen = int(binary.LittleEndian.Uint16(header[0:2]))
	valueLen = int(binary.LittleEndian.Uint16(header[2:4]))
	t = Type(header[4])
	t.mustBeKnown()
	return keyLen, valueLen, t
}

// --------------------------------------------------------------------------
// Response
// --------------------------------------------------------------------------

// Response is the result of executing a single command.
//
//   - Put/Update: Ok reports whether the record was appended
//   - Get: Found reports whether the key is indexed, Record holds the record if Err is nil
//
// Err is set if the record of a found key is corrupt or if the operation is not supported.
type Response struct {
	Type   Type
	Ok     bool
	Record record.KeyValue
	Found  bool
	Err    error
}

// IsPut returns true if this is the response to a Put command
func (r Response) IsPut() bool {
	return r.Type == TypePut
}

// IsUpdate returns true if this is the response to an Update command
func (r Response) IsUpdate() bool {
	return r.Type == TypeUpdate
}

// IsGet returns true if this is the response to a Get command
func (r Response) IsGet() bool {
	return r.Type == TypeGet
}

func (r Response) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s: error: %v", r.Type, r.Err)
	case r.IsGet() && !r.Found:
		return fmt.Sprintf("%s: not found", r.Type)
	case r.IsGet():
		return fmt.Sprintf("%s: %s", r.Type, r.Record.Value())
	default:
		return fmt.Sprintf("%s: ok=%v", r.Type, r.Ok)
	}
}

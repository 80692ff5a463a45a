package command

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ValentinKolb/seglog/lib/db"
)

// TestSerializeLayout tests the exact wire layout of a command
func TestSerializeLayout(t *testing.T) {
	cmd := Put([]byte("raft"), []byte("consensus"))
	data := cmd.Serialize()

	want := append([]byte{4, 0, 9, 0, 2}, []byte("raftconsensus")...)
	if !bytes.Equal(data, want) {
		t.Errorf("Serialize() = %v, want %v", data, want)
	}
	if cmd.SizeBytes() != len(want) {
		t.Errorf("SizeBytes() = %d, want %d", cmd.SizeBytes(), len(want))
	}

	get := Get([]byte("raft"))
	if data := get.Serialize(); !bytes.Equal(data, []byte{4, 0, 0, 0, 1, 'r', 'a', 'f', 't'}) {
		t.Errorf("Serialize() of Get = %v", data)
	}
}

// TestSerializeDeserialize tests both Serialize and Deserialize methods
func TestSerializeDeserialize(t *testing.T) {
	tests := []struct {
		name    string
		command Command
	}{
		{name: "Get", command: Get([]byte("raft"))},
		{name: "Put", command: Put([]byte("raft"), []byte("consensus"))},
		{name: "Update", command: Update([]byte("raft"), []byte("protocol"))},
		{name: "Binary", command: Put([]byte{0, 0xFF}, []byte{0xFE, 0, 1})},
		{name: "Large value", command: Put([]byte("k"), bytes.Repeat([]byte("v"), 65535))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.command.Serialize()

			var got Command
			if err := got.Deserialize(data); err != nil {
				t.Fatalf("Deserialize() error = %v", err)
			}

			if got.Type != tt.command.Type {
				t.Errorf("Type = %v, want %v", got.Type, tt.command.Type)
			}
			if !bytes.Equal(got.Key, tt.command.Key) {
				t.Errorf("Key = %v, want %v", got.Key, tt.command.Key)
			}
			if !bytes.Equal(got.Value, tt.command.Value) {
				t.Errorf("Value has %d bytes, want %d", len(got.Value), len(tt.command.Value))
			}
		})
	}
}

// TestDeserializeShortInput tests that truncated input is reported, not panicked on
func TestDeserializeShortInput(t *testing.T) {
	cmd := Put([]byte("raft"), []byte("consensus"))
	data := cmd.Serialize()

	for _, n := range []int{0, 3, HeaderSize, len(data) - 1} {
		var got Command
		err := got.Deserialize(data[:n])
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("Deserialize(%d bytes) error = %v, want io.ErrUnexpectedEOF", n, err)
		}
	}
}

// TestDeserializeDoesNotAlias tests that the decoded command owns its data
func TestDeserializeDoesNotAlias(t *testing.T) {
	cmd := Put([]byte("raft"), []byte("consensus"))
	data := cmd.Serialize()

	var got Command
	if err := got.Deserialize(data); err != nil {
		t.Fatal(err)
	}
	for i := range data {
		data[i] = 0
	}

	if string(got.Key) != "raft" || string(got.Value) != "consensus" {
		t.Errorf("decoded command changed with its input: %s", got)
	}
}

// TestUnknownTagPanics tests that an unknown type tag is a fatal decode error
func TestUnknownTagPanics(t *testing.T) {
	for _, tag := range []byte{0, 4, 255} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Deserialize with tag %d should panic", tag)
				}
			}()
			var c Command
			_ = c.Deserialize([]byte{1, 0, 1, 0, tag, 'k', 'v'})
		}()
	}
}

// TestReadFrom tests streaming decode of several commands
func TestReadFrom(t *testing.T) {
	cmds := []Command{
		Put([]byte("raft"), []byte("consensus")),
		Get([]byte("raft")),
		Update([]byte("raft"), []byte("protocol")),
	}

	var stream bytes.Buffer
	for i := range cmds {
		stream.Write(cmds[i].Serialize())
	}
	total := int64(stream.Len())

	var read int64
	for i, want := range cmds {
		var got Command
		n, err := got.ReadFrom(&stream)
		if err != nil {
			t.Fatalf("ReadFrom() #%d error = %v", i, err)
		}
		read += n
		if got.Type != want.Type || !bytes.Equal(got.Key, want.Key) || !bytes.Equal(got.Value, want.Value) {
			t.Errorf("ReadFrom() #%d = %s, want %s", i, got, want)
		}
	}

	if read != total {
		t.Errorf("read %d bytes, want %d", read, total)
	}

	var c Command
	if _, err := c.ReadFrom(&stream); err != io.EOF {
		t.Errorf("ReadFrom() at end of stream error = %v, want io.EOF", err)
	}
}

// TestReadFromTruncated tests that a stream ending inside a command is an error
func TestReadFromTruncated(t *testing.T) {
	cmd := Put([]byte("raft"), []byte("consensus"))
	data := cmd.Serialize()

	for _, n := range []int{2, len(data) - 1} {
		var c Command
		_, err := c.ReadFrom(bytes.NewReader(data[:n]))
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("ReadFrom(%d bytes) error = %v, want io.ErrUnexpectedEOF", n, err)
		}
	}
}

// TestToDBFeature tests the mapping from command types to features
func TestToDBFeature(t *testing.T) {
	tests := map[Type]db.Feature{
		TypeGet:    db.FeatureGet,
		TypePut:    db.FeaturePut,
		TypeUpdate: db.FeatureUpdate,
	}
	for typ, want := range tests {
		got, err := typ.ToDBFeature()
		if err != nil || got != want {
			t.Errorf("%s.ToDBFeature() = (%v, %v), want %v", typ, got, err, want)
		}
	}

	if _, err := Type(9).ToDBFeature(); err == nil {
		t.Error("ToDBFeature() of an unknown type should fail")
	}
}

// TestResponseKind tests the response type helpers
func TestResponseKind(t *testing.T) {
	put := Response{Type: TypePut, Ok: true}
	if !put.IsPut() || put.IsUpdate() || put.IsGet() {
		t.Errorf("unexpected kind for %s", put)
	}

	get := Response{Type: TypeGet}
	if !get.IsGet() || get.IsPut() {
		t.Errorf("unexpected kind for %s", get)
	}
	if get.String() != "Get: not found" {
		t.Errorf("String() = %q", get.String())
	}
}

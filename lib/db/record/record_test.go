package record

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestEncodeLayout(t *testing.T) {
	kv := New([]byte("raft"), []byte("consensus"))

	encoded := kv.Encode()
	expected := append([]byte{4, 0, 9, 0}, []byte("raftconsensus")...)

	if !bytes.Equal(encoded, expected) {
		t.Errorf("Encode() = %v, want %v", encoded, expected)
	}
	if kv.SizeBytes() != 17 {
		t.Errorf("SizeBytes() = %d, want 17", kv.SizeBytes())
	}
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		key   []byte
		value []byte
	}{
		{"Simple", []byte("raft"), []byte("consensus")},
		{"Single byte", []byte("k"), []byte("v")},
		{"Binary value", []byte("binary"), []byte{0, 1, 2, 3, 254, 255}},
		{"Unicode key", []byte("你好世界"), []byte("hello world")},
		{"Large value", []byte("large"), bytes.Repeat([]byte("x"), MaxFieldSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := New(tt.key, tt.value)

			decoded, err := Decode(original.Encode())
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !decoded.Equal(original) {
				t.Errorf("Decode(Encode()) = %v, want %v", decoded, original)
			}
		})
	}
}

func TestDecodeDoesNotAlias(t *testing.T) {
	encoded := New([]byte("raft"), []byte("consensus")).Encode()

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	encoded[4] = 'X'
	encoded[len(encoded)-1] = 'X'

	if string(decoded.Key()) != "raft" || string(decoded.Value()) != "consensus" {
		t.Errorf("decoded record changed after modifying the source buffer: %v", decoded)
	}
}

func TestDecodeErrors(t *testing.T) {
	valid := New([]byte("raft"), []byte("consensus")).Encode()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"Empty buffer", []byte{}, io.ErrUnexpectedEOF},
		{"Partial header", []byte{4, 0, 9}, io.ErrUnexpectedEOF},
		{"Truncated key", valid[:6], io.ErrUnexpectedEOF},
		{"Truncated value", valid[:len(valid)-1], io.ErrUnexpectedEOF},
		{"Empty key", []byte{0, 0, 1, 0, 'v'}, ErrEmptyField},
		{"Empty value", []byte{1, 0, 0, 0, 'k'}, ErrEmptyField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	encoded := append(New([]byte("raft"), []byte("consensus")).Encode(), 1, 2, 3)

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(decoded.Value()) != "consensus" {
		t.Errorf("Expected value consensus, got %s", decoded.Value())
	}
}

func TestNewPanics(t *testing.T) {
	tests := []struct {
		name  string
		key   []byte
		value []byte
	}{
		{"Empty key", nil, []byte("value")},
		{"Empty value", []byte("key"), []byte{}},
		{"Key too large", make([]byte, MaxFieldSize+1), []byte("value")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%d bytes, %d bytes) should panic", len(tt.key), len(tt.value))
				}
			}()
			New(tt.key, tt.value)
		})
	}
}

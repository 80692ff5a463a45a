package internal

import (
	"bytes"
	"testing"
)

func TestSegmentEmpty(t *testing.T) {
	s := NewSegment(16)

	if !s.IsEmpty() {
		t.Error("New segment should be empty")
	}
	if s.IsFull() {
		t.Error("New segment should not be full")
	}
	if s.Available() != 16 || s.Written() != 0 || s.Capacity() != 16 {
		t.Errorf("Unexpected sizes: available=%d written=%d capacity=%d", s.Available(), s.Written(), s.Capacity())
	}
}

func TestSegmentFillState(t *testing.T) {
	tests := []struct {
		name      string
		capacity  int
		data      string
		wantEmpty bool
		wantFull  bool
	}{
		{"Partially filled", 32, "thread-per-core-1", false, false},
		{"Exactly filled", 16, "thread-per-core1", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSegment(tt.capacity)
			if _, ok := s.TryAppend([]byte(tt.data)); !ok {
				t.Fatalf("TryAppend(%q) failed", tt.data)
			}
			if s.IsEmpty() != tt.wantEmpty {
				t.Errorf("IsEmpty() = %v, want %v", s.IsEmpty(), tt.wantEmpty)
			}
			if s.IsFull() != tt.wantFull {
				t.Errorf("IsFull() = %v, want %v", s.IsFull(), tt.wantFull)
			}
		})
	}
}

func TestSegmentAppendOffsets(t *testing.T) {
	s := NewSegment(32)

	offset, ok := s.TryAppend([]byte("thread-per-core-1"))
	if !ok || offset != 0 {
		t.Errorf("first append = (%d, %v), want (0, true)", offset, ok)
	}

	offset, ok = s.TryAppend([]byte("thread-per-core"))
	if !ok || offset != 17 {
		t.Errorf("second append = (%d, %v), want (17, true)", offset, ok)
	}

	if s.Written()+s.Available() != s.Capacity() {
		t.Errorf("written (%d) + available (%d) != capacity (%d)", s.Written(), s.Available(), s.Capacity())
	}
}

func TestSegmentRejectsWithoutPartialWrite(t *testing.T) {
	s := NewSegment(16)
	data := []byte("thread-per-core")

	if _, ok := s.TryAppend(data); !ok {
		t.Fatal("first append should succeed")
	}
	if _, ok := s.TryAppend(data); ok {
		t.Fatal("second append should fail due to insufficient capacity")
	}
	if s.Written() != len(data) || s.Available() != 1 {
		t.Errorf("rejected append changed the segment: written=%d available=%d", s.Written(), s.Available())
	}

	// the remaining byte can still be used
	if offset, ok := s.TryAppend([]byte("x")); !ok || offset != 15 {
		t.Errorf("append of a single byte = (%d, %v), want (15, true)", offset, ok)
	}
	if !s.IsFull() {
		t.Error("segment should be full")
	}
}

func TestSegmentRead(t *testing.T) {
	s := NewSegment(16)
	s.TryAppend([]byte("memcore"))

	tests := []struct {
		name   string
		offset int
		length int
		want   string
	}{
		{"Full record", 0, 7, "memcore"},
		{"Prefix", 0, 3, "mem"},
		{"Suffix", 3, 4, "core"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Read(tt.offset, tt.length)
			if !bytes.Equal(got, []byte(tt.want)) {
				t.Errorf("Read(%d, %d) = %q, want %q", tt.offset, tt.length, got, tt.want)
			}
		})
	}
}

func TestSegmentReadPanics(t *testing.T) {
	s := NewSegment(16)
	s.TryAppend([]byte("memcore"))

	tests := []struct {
		name   string
		offset int
		length int
	}{
		{"Past written bytes", 0, 9},
		{"Zero length", 0, 0},
		{"Negative offset", -1, 2},
		{"Offset past end", 7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("Read(%d, %d) should panic", tt.offset, tt.length)
				}
			}()
			s.Read(tt.offset, tt.length)
		})
	}
}

func TestSegmentInvalidCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewSegment(0) should panic")
		}
	}()
	NewSegment(0)
}

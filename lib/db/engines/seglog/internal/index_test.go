package internal

import "testing"

func TestIndexNotFound(t *testing.T) {
	index := NewIndex()

	if _, ok := index.Get([]byte("non-existing")); ok {
		t.Error("Expected key to be absent in a new index")
	}
	if index.Len() != 0 {
		t.Errorf("Len() = %d, want 0", index.Len())
	}
}

func TestIndexInsertGet(t *testing.T) {
	index := NewIndex()
	index.Insert([]byte("raft"), Marker{Segment: 0, Offset: 16, Length: 100})

	marker, ok := index.Get([]byte("raft"))
	if !ok {
		t.Fatal("Expected key raft to be found")
	}
	if marker != (Marker{Segment: 0, Offset: 16, Length: 100}) {
		t.Errorf("Get() = %v", marker)
	}
}

func TestIndexOverwrite(t *testing.T) {
	index := NewIndex()
	index.Insert([]byte("raft"), Marker{Segment: 0, Offset: 0, Length: 17})
	index.Insert([]byte("raft"), Marker{Segment: 1, Offset: 4, Length: 20})

	marker, _ := index.Get([]byte("raft"))
	if marker.Segment != 1 || marker.Offset != 4 || marker.Length != 20 {
		t.Errorf("Expected the newer marker, got %v", marker)
	}
	if index.Len() != 1 {
		t.Errorf("Len() = %d, want 1", index.Len())
	}
}

func TestIndexCopiesKey(t *testing.T) {
	index := NewIndex()
	key := []byte("raft")
	index.Insert(key, Marker{Length: 1})

	key[0] = 'd'

	if _, ok := index.Get([]byte("raft")); !ok {
		t.Error("Index should own a copy of the key")
	}
	if _, ok := index.Get([]byte("daft")); ok {
		t.Error("Modifying the caller's key should not affect the index")
	}
}

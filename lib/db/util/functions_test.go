package util

import "testing"

func TestCeilDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{10, 5, 2},
		{11, 5, 3},
		{1, 5, 1},
		{50, 3, 17},
	}
	for _, tt := range tests {
		if got := CeilDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("CeilDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestHashBytes(t *testing.T) {
	// FNV-1a of the empty input is the offset basis
	if got := HashBytes(nil, 0); got != UintKey(offset64) {
		t.Errorf("HashBytes(nil, 0) = %d, want %d", got, uint64(offset64))
	}
	if HashBytes([]byte("raft"), 42) != HashBytes([]byte("raft"), 42) {
		t.Error("HashBytes should be deterministic")
	}
	if HashBytes([]byte("raft"), 42) == HashBytes([]byte("paxos"), 42) {
		t.Error("different keys should hash differently")
	}
	if HashBytes([]byte("raft"), 1) == HashBytes([]byte("raft"), 2) {
		t.Error("different seeds should yield different hashes")
	}
}

func TestRoute(t *testing.T) {
	seed := GenerateSeed()
	counts := make([]int, 4)
	for i := 0; i < 4000; i++ {
		key := []byte{byte(i), byte(i >> 8), 'k'}
		idx := Route(HashBytes(key, seed), len(counts))
		if idx < 0 || idx >= len(counts) {
			t.Fatalf("Route() = %d, out of range", idx)
		}
		counts[idx]++
	}
	for i, c := range counts {
		if c == 0 {
			t.Errorf("partition %d received no keys", i)
		}
	}
}

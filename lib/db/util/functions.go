package util

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// --------------------------------------------------------------------------
// General Utility Functions
// --------------------------------------------------------------------------

// GenerateSeed creates a random seed for internal hash distribution
func GenerateSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// fall back to the current time, only if the system rng is unavailable
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// CeilDiv returns ceil(a / b) for positive integers
func CeilDiv(a, b int) int {
	if a%b != 0 {
		return a/b + 1
	}
	return a / b
}

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

// UintKey is a key type based on uint64 for internal hash representation
type UintKey uint64

// FNV-1a constants
const (
	offset64 = 14695981039346656037
	prime64  = 1099511628211
)

// HashBytes generates a hash value for b with a seed.
// This function uses the FNV-1a hash algorithm, which is fast and has good distribution
func HashBytes(b []byte, seed uint64) UintKey {
	hash := uint64(offset64) ^ seed
	for _, c := range b {
		hash ^= uint64(c)
		hash *= prime64
	}
	return UintKey(hash)
}

// Route maps a hashed key onto one of n partitions.
// The key is shifted right by 7 bits to use the higher-quality bits for distribution.
func Route(key UintKey, n int) int {
	return int((uint64(key) >> 7) % uint64(n))
}

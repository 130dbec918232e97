package service

import (
	"crypto/rand"
	"encoding/hex"
)

func newID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// newShareToken returns 256 bits of hex-encoded randomness. Uniqueness is
// still enforced by the storage index; this only makes collisions
// astronomically unlikely.
func newShareToken() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

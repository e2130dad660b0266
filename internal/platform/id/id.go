package id

import (
	"crypto/rand"
	"encoding/hex"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// RandomHex yields 32 hex chars, or Prefix-<12 hex chars> when Prefix is set.
type RandomHex struct {
	Prefix string
}

func (g RandomHex) New() string {
	if g.Prefix == "" {
		return randomHex(16)
	}
	return g.Prefix + "-" + randomHex(6)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Package hash provides a domain-separated hash state backed by blake3,
// used for handshake tags and the sync digest (pkg/net) and Beaver-item
// seed derivation (pkg/prep). Grounded on the domain-separated hashing idiom in
// pkg/protocol/handler.go of the teacher repo.
package hash

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// State wraps a blake3 hasher, feeding a domain string as the first
// write so unrelated call sites never collide on the same digest.
type State struct {
	h *blake3.Hasher
}

// New starts a hash state domain-separated by the given string.
func New(domain string) *State {
	h := blake3.New()
	_, _ = h.Write([]byte(domain))
	return &State{h: h}
}

// WriteBytes folds raw bytes into the state.
func (s *State) WriteBytes(b []byte) *State {
	_, _ = s.h.Write(b)
	return s
}

// WriteUint64 folds a little-endian uint64 into the state.
func (s *State) WriteUint64(n uint64) *State {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	return s.WriteBytes(b[:])
}

// Sum256 returns the 32-byte digest without mutating the state further.
func (s *State) Sum256() [32]byte {
	var out [32]byte
	d := s.h.Digest()
	_, _ = d.Read(out[:])
	return out
}

// BytesWithDomain hashes data once under domain, a convenience wrapper
// around New/WriteBytes/Sum256 for one-shot callers.
func BytesWithDomain(domain string, data []byte) [32]byte {
	return New(domain).WriteBytes(data).Sum256()
}

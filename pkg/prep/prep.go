// Package prep implements PREP, the Beaver preprocessing interface:
// multiplication triples, random bits, matrix triples, and truncation
// pairs, each returned as shares held by the calling party. Grounded on
// spec.md 4.4 and original_source/src/mpc/semi2k/semi2k.hpp's
// Semi2kTriple.
package prep

import (
	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/ring"
)

// Preprocessing produces correlated randomness on demand. Every method
// returns this party's share of the correlation; a real deployment
// sources these from an offline phase, and the online protocol must not
// depend on concrete non-zero values (spec.md 4.4).
type Preprocessing interface {
	// Triples returns n independent Beaver triples (a, b, c = a*b mod 2^K)
	// as this party's shares, each a flat n-element array over r.
	Triples(r *ring.Ring, n int) (a, b, c ndarray.Array[ring.Elem], err error)

	// MatrixTriple returns one matrix triple (A, B, C = A*B) of shapes
	// (m,n)*(n,k), as this party's shares.
	MatrixTriple(r *ring.Ring, m, n, k int) (A, B, C ndarray.Array[ring.Elem], err error)

	// RandBits returns n independent random bit shares, each a share of a
	// value in {0,1} held in the K-bit ring r.
	RandBits(r *ring.Ring, n int) (bits ndarray.Array[ring.Elem], err error)

	// RAndRR returns n correlated pairs (r, r' = r >> shift), as shares.
	// shift must be passed explicitly per spec.md 9's open question.
	RAndRR(r *ring.Ring, n int, shift uint) (rShares, rrShares ndarray.Array[ring.Elem], err error)
}

// ErrExhausted marks a preprocessing pool that has run out of items; per
// spec.md 4.4/7 this is a fatal, non-recoverable error.
type ErrExhausted struct{ Requested, Available int }

func (e *ErrExhausted) Error() string {
	return "semi2k/prep: exhausted: requested more items than available"
}

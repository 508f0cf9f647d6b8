package prep

import (
	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/ring"
)

// Stub is the all-zero Preprocessing of spec.md 4.4: every share is the
// ring's zero element. It satisfies the interface so the online protocol
// can be exercised (and its message flow measured) without an offline
// phase. Because every mask is zero, MulSS and TruncS still compute
// their results, but the values they open are the unmasked inputs, so
// nothing is hidden.
type Stub struct{}

var _ Preprocessing = Stub{}

func zeros(r *ring.Ring, shape ...int) ndarray.Array[ring.Elem] {
	n := 1
	for _, s := range shape {
		n *= s
	}
	data := make([]ring.Elem, n)
	z := r.Zero()
	for i := range data {
		data[i] = z
	}
	return ndarray.FromSlice(data, shape...)
}

func (Stub) Triples(r *ring.Ring, n int) (a, b, c ndarray.Array[ring.Elem], err error) {
	return zeros(r, n), zeros(r, n), zeros(r, n), nil
}

func (Stub) MatrixTriple(r *ring.Ring, m, n, k int) (A, B, C ndarray.Array[ring.Elem], err error) {
	return zeros(r, m, n), zeros(r, n, k), zeros(r, m, k), nil
}

func (Stub) RandBits(r *ring.Ring, n int) (bits ndarray.Array[ring.Elem], err error) {
	return zeros(r, n), nil
}

func (Stub) RAndRR(r *ring.Ring, n int, shift uint) (rShares, rrShares ndarray.Array[ring.Elem], err error) {
	return zeros(r, n), zeros(r, n), nil
}

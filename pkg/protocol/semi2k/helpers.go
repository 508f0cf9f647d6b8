package semi2k

import (
	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/ring"
)

// bitOf returns bit i of e, sign-extending past the ring's width (or
// returning 0 for a 1-bit ring), per spec.md 4.5's bitdec_p rule.
func bitOf(e ring.Elem, i int) uint {
	if i < e.Ring().K {
		return e.Bit(i)
	}
	if e.Ring().K == 1 {
		return 0
	}
	return e.MSB()
}

// decomposePlainBitsIn bit-decomposes a publicly-known ring element into
// n 0/1 constants in target, bit 0 first.
func decomposePlainBitsIn(e ring.Elem, n int, target *ring.Ring) []ring.Elem {
	out := make([]ring.Elem, n)
	for i := 0; i < n; i++ {
		out[i] = target.FromInt64(int64(bitOf(e, i)))
	}
	return out
}

// decomposePlainBits is decomposePlainBitsIn into the 1-bit ring, used
// by the boolean-domain comparison circuits.
func decomposePlainBits(e ring.Elem, n int) []ring.Elem {
	return decomposePlainBitsIn(e, n, bitRing())
}

// bitCompose reconstructs Σ bits[i]·2^i from a vector of same-ring bit
// shares, purely local (shift and add are both linear over shares).
func (p *Protocol) bitCompose(bits Share) Share {
	n := bits.Numel()
	acc := bits.Elem(0).Ring().Zero()
	for i := 0; i < n; i++ {
		acc = acc.Add(bits.Elem(i).Lsh(uint(i)))
	}
	return wrap1(acc)
}

// sliceBits returns bits[lo:hi] as an independent bit vector.
func sliceBits(bits Share, lo, hi int) Share {
	out := make([]ring.Elem, hi-lo)
	for i := lo; i < hi; i++ {
		out[i-lo] = bits.Elem(i)
	}
	return ndarray.FromSlice(out, hi-lo)
}

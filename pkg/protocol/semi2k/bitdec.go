package semi2k

import (
	"context"
	"fmt"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/ring"
)

// These bit-decomposition primitives operate on a single scalar value
// (a Share of one element), matching spec.md 8's worked example
// ("x = 5 shared over 2 parties ... bitdec_s(x,8) = [1,0,1,...]").
// Callers decomposing an array map over its elements themselves.

func shareRing(x Share) *ring.Ring { return x.Elem(0).Ring() }

// BitdecP bit-decomposes a public scalar into n bits (bit 0 first),
// represented as 0/1 elements of x's own ring; bit i>=K uses the sign
// bit (or 0 for K=1), per spec.md 4.5.
func (p *Protocol) BitdecP(x Share, n int) Share {
	e := x.Elem(0)
	return ndarray.FromSlice(decomposePlainBitsIn(e, n, e.Ring()), n)
}

// BitdecS bit-decomposes a scalar share into n bit shares (bit 0 first):
// mask with a random bit-composed value, open the difference, then
// reconstruct each bit in the boolean domain via add_pb and lift back to
// the K-bit ring via B2A, per spec.md 4.5.
func (p *Protocol) BitdecS(ctx context.Context, x Share, n int) (Share, error) {
	k := shareRing(x)
	rBits, err := p.prep.RandBits(k, n)
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: bitdec: randbits: %w", err)
	}
	rComposed := p.bitCompose(rBits)

	c, err := p.OpenS(ctx, zipE(x, rComposed, ring.Elem.Sub))
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: bitdec: open: %w", err)
	}
	cBitsPlain := ndarray.FromSlice(decomposePlainBits(c.Elem(0), n), n)
	rBitsBool := p.A2B(rBits)

	xBitsBool, err := p.AddPB(ctx, cBitsPlain, rBitsBool, false)
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: bitdec: add_pb: %w", err)
	}
	return p.B2A(ctx, k, xBitsBool)
}

// H1bitdecP keeps only the highest set bit below position n of a public
// scalar, bit-decomposed, per spec.md 4.5.
func (p *Protocol) H1bitdecP(x Share, n int) Share {
	e := x.Elem(0)
	r := e.Ring()
	out := make([]ring.Elem, n)
	found := false
	for i := n - 1; i >= 0; i-- {
		if !found && bitOf(e, i) == 1 {
			out[i] = r.One()
			found = true
		} else {
			out[i] = r.Zero()
		}
	}
	return ndarray.FromSlice(out, n)
}

// H1bitdecS is H1bitdecP's share-domain analog: bit-decompose, compute a
// high-to-low prefix-OR, then subtract from each position's prefix-OR
// the prefix-OR of the next-higher position so only the highest set
// bit's position survives, per spec.md 4.5.
func (p *Protocol) H1bitdecS(ctx context.Context, x Share, n int) (Share, error) {
	bits, err := p.BitdecS(ctx, x, n)
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: h1bitdec: bitdec: %w", err)
	}
	k := shareRing(bits)

	prefixOr := make([]Share, n)
	prefixOr[n-1] = wrap1(bits.Elem(n - 1))
	for i := n - 2; i >= 0; i-- {
		cur, err := p.orOn(ctx, k, wrap1(bits.Elem(i)), prefixOr[i+1])
		if err != nil {
			return Share{}, fmt.Errorf("semi2k: h1bitdec: prefix or at %d: %w", i, err)
		}
		prefixOr[i] = cur
	}

	out := make([]ring.Elem, n)
	for i := 0; i < n; i++ {
		shifted := wrap1(k.Zero())
		if i < n-1 {
			shifted = prefixOr[i+1]
		}
		out[i] = zipE(prefixOr[i], shifted, ring.Elem.Sub).Elem(0)
	}
	return ndarray.FromSlice(out, n), nil
}

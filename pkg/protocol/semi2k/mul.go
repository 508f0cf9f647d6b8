package semi2k

import (
	"context"
	"fmt"

	"github.com/luxfi/semi2k/pkg/ring"
)

// MulSS computes the elementwise Beaver-secured product of two shares,
// per spec.md 4.5: consume a triple, open the masked difference of each
// operand to the triple, and recombine.
func (p *Protocol) MulSS(ctx context.Context, x, y Share) (Share, error) {
	return p.mulOn(ctx, p.ring, x, y)
}

// mulOn is MulSS generalized to an explicit ring, reused by the
// boolean-domain or_ss primitive (bool.go) over R_{1,S}.
func (p *Protocol) mulOn(ctx context.Context, r *ring.Ring, x, y Share) (Share, error) {
	assertSameShape(x, y)
	n := x.Numel()
	a, b, c, err := p.prep.Triples(r, n)
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: mul: triples: %w", err)
	}
	aR, bR, cR := a.Reshape(x.Shape()...), b.Reshape(x.Shape()...), c.Reshape(x.Shape()...)

	alpha := zipE(x, aR, ring.Elem.Sub)
	beta := zipE(y, bR, ring.Elem.Sub)
	alphaOpen, err := p.openOn(ctx, r, alpha)
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: mul: open alpha: %w", err)
	}
	betaOpen, err := p.openOn(ctx, r, beta)
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: mul: open beta: %w", err)
	}

	out := zipE(zipE(aR, betaOpen, ring.Elem.Mul), zipE(alphaOpen, bR, ring.Elem.Mul), ring.Elem.Add)
	out = zipE(out, cR, ring.Elem.Add)
	if p.Self() == 0 {
		out = zipE(out, zipE(alphaOpen, betaOpen, ring.Elem.Mul), ring.Elem.Add)
	}
	return out, nil
}

package semi2k

import (
	"context"
	"fmt"

	"github.com/luxfi/semi2k/pkg/ring"
)

// TruncS right-shifts a share by n elementwise, per spec.md 4.5: the
// 2-party case shifts locally (accepting the known 1-ulp 2-party
// truncation error), and the general case consumes a correlated
// (r, r'=r>>n) pair and opens the masked difference.
func (p *Protocol) TruncS(ctx context.Context, x Share, n uint) (Share, error) {
	if p.NumParties() == 2 {
		return mapE(x, func(e ring.Elem) ring.Elem { return e.Rsh(n) }), nil
	}

	count := x.Numel()
	r, rr, err := p.prep.RAndRR(p.ring, count, n)
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: trunc: r/r' pair: %w", err)
	}
	rR, rrR := r.Reshape(x.Shape()...), rr.Reshape(x.Shape()...)

	c, err := p.OpenS(ctx, zipE(rR, x, ring.Elem.Sub))
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: trunc: open: %w", err)
	}
	cShift := mapE(c, func(e ring.Elem) ring.Elem { return e.Rsh(n) })
	return zipE(rrR, cShift, ring.Elem.Sub), nil
}

package semi2k

import (
	"context"
	"fmt"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/ring"
)

// localMatmul computes C = A*B for (M,N)*(N,K') shapes via ring
// arithmetic; used directly whenever at most one operand is a share
// (mul_sp/ps, the plaintext mul_pp, and as the per-term helper inside
// the Beaver matrix protocol).
func localMatmul(r *ring.Ring, A, B Share, m, n, k int) Share {
	out := make([]ring.Elem, m*k)
	for i := 0; i < m; i++ {
		for j := 0; j < k; j++ {
			sum := r.Zero()
			for t := 0; t < n; t++ {
				sum = sum.Add(A.Elem(i, t).Mul(B.Elem(t, j)))
			}
			out[i*k+j] = sum
		}
	}
	return ndarray.FromSlice(out, m, k)
}

// MatmulPP multiplies two public matrices; purely local.
func (p *Protocol) MatmulPP(A, B Share, m, n, k int) Share {
	return localMatmul(p.ring, A, B, m, n, k)
}

// MatmulSP multiplies a share matrix by a public matrix; purely local
// (linear in the share).
func (p *Protocol) MatmulSP(A, B Share, m, n, k int) Share {
	return localMatmul(p.ring, A, B, m, n, k)
}

// MatmulPS multiplies a public matrix by a share matrix; purely local.
func (p *Protocol) MatmulPS(A, B Share, m, n, k int) Share {
	return localMatmul(p.ring, A, B, m, n, k)
}

// MatmulSS computes the Beaver-secured matrix product of two shares,
// the matrix analog of MulSS using get_matrix_triple per spec.md 4.5.
func (p *Protocol) MatmulSS(ctx context.Context, A, B Share, m, n, k int) (Share, error) {
	a, b, c, err := p.prep.MatrixTriple(p.ring, m, n, k)
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: matmul: matrix triple: %w", err)
	}

	alpha := zipE(A, a, ring.Elem.Sub)
	beta := zipE(B, b, ring.Elem.Sub)
	alphaOpen, err := p.OpenS(ctx, alpha)
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: matmul: open alpha: %w", err)
	}
	betaOpen, err := p.OpenS(ctx, beta)
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: matmul: open beta: %w", err)
	}

	term1 := localMatmul(p.ring, a, betaOpen, m, n, k)
	term2 := localMatmul(p.ring, alphaOpen, b, m, n, k)
	out := zipE(zipE(term1, term2, ring.Elem.Add), c, ring.Elem.Add)
	if p.Self() == 0 {
		term3 := localMatmul(p.ring, alphaOpen, betaOpen, m, n, k)
		out = zipE(out, term3, ring.Elem.Add)
	}
	return out, nil
}

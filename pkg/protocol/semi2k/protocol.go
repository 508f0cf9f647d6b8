// Package semi2k implements PROTO, the semi-honest additive secret
// sharing protocol over R_{K,S}: linear share-domain ops, Beaver
// multiplication and matmul, truncation, and the boolean-domain sign
// test / equality-to-zero / bit-decomposition circuits. Grounded on
// original_source/src/mpc/semi2k/semi2k.hpp and
// other_examples/...spdz.go.go's share-arithmetic idiom, carried over
// the teacher's plain-struct, explicit-error style.
package semi2k

import (
	"context"
	"fmt"

	"github.com/luxfi/semi2k/pkg/ndarray"
	netpkg "github.com/luxfi/semi2k/pkg/net"
	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/prep"
	"github.com/luxfi/semi2k/pkg/ring"
)

// Share is this party's additive share of a value, one element per
// logical position; ⟨x⟩ in spec.md's notation.
type Share = ndarray.Array[ring.Elem]

// Protocol is stateless between calls (spec.md 4.5): it only borrows a
// transport, a preprocessing source, and the ring every call operates
// over. A *Protocol is not safe for concurrent use from multiple
// goroutines (spec.md 5); callers needing parallelism construct one
// Protocol per Context.
type Protocol struct {
	transport netpkg.Transport
	prep      prep.Preprocessing
	ring      *ring.Ring
}

// New builds a Protocol bound to transport, sourcing preprocessing
// correlations from pp, operating elementwise on r.
func New(transport netpkg.Transport, pp prep.Preprocessing, r *ring.Ring) *Protocol {
	return &Protocol{transport: transport, prep: pp, ring: r}
}

// Self returns this party's id.
func (p *Protocol) Self() party.ID { return p.transport.Self() }

// NumParties returns the number of parties in the computation.
func (p *Protocol) NumParties() int { return p.transport.NumParties() }

// Ring returns the ring every elementwise op on this Protocol operates
// over.
func (p *Protocol) Ring() *ring.Ring { return p.ring }

func mapE(x Share, f func(ring.Elem) ring.Elem) Share {
	flat := x.Ravel()
	n := flat.Numel()
	out := make([]ring.Elem, n)
	for i := 0; i < n; i++ {
		out[i] = f(flat.Elem(i))
	}
	return ndarray.FromSlice(out, x.Shape()...)
}

func zipE(x, y Share, f func(a, b ring.Elem) ring.Elem) Share {
	assertSameShape(x, y)
	fx, fy := x.Ravel(), y.Ravel()
	n := fx.Numel()
	out := make([]ring.Elem, n)
	for i := 0; i < n; i++ {
		out[i] = f(fx.Elem(i), fy.Elem(i))
	}
	return ndarray.FromSlice(out, x.Shape()...)
}

func assertSameShape(x, y Share) {
	xs, ys := x.Shape(), y.Shape()
	if len(xs) != len(ys) {
		panic(fmt.Sprintf("semi2k: shape rank mismatch %v vs %v", xs, ys))
	}
	for i := range xs {
		if xs[i] != ys[i] {
			panic(fmt.Sprintf("semi2k: shape mismatch %v vs %v", xs, ys))
		}
	}
}

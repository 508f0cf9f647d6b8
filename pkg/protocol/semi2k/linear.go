package semi2k

import "github.com/luxfi/semi2k/pkg/ring"

// NegP negates a public value elementwise; purely local.
func (p *Protocol) NegP(x Share) Share { return mapE(x, ring.Elem.Neg) }

// NegS negates a share elementwise; purely local (negation distributes
// over the sum of shares).
func (p *Protocol) NegS(x Share) Share { return mapE(x, ring.Elem.Neg) }

// AddPP adds two public values elementwise; purely local.
func (p *Protocol) AddPP(x, y Share) Share { return zipE(x, y, ring.Elem.Add) }

// AddSS adds two shares elementwise; purely local (each party adds its
// own shares).
func (p *Protocol) AddSS(x, y Share) Share { return zipE(x, y, ring.Elem.Add) }

// AddSP adds public y into share x, crediting the addition only at
// party 0's share per the semi-honest convention spec.md 4.5 and 9
// fixes: other parties return their share of x unchanged.
func (p *Protocol) AddSP(x, y Share) Share {
	if p.Self() == 0 {
		return zipE(x, y, ring.Elem.Add)
	}
	return x
}

// MulPP multiplies two public values elementwise; purely local.
func (p *Protocol) MulPP(x, y Share) Share { return zipE(x, y, ring.Elem.Mul) }

// MulSP multiplies a share by a public value elementwise; purely local
// (each party multiplies its own share by y).
func (p *Protocol) MulSP(x, y Share) Share { return zipE(x, y, ring.Elem.Mul) }

// LshiftP shifts a public value left by n elementwise; purely local.
func (p *Protocol) LshiftP(x Share, n uint) Share {
	return mapE(x, func(e ring.Elem) ring.Elem { return e.Lsh(n) })
}

// LshiftS shifts a share left by n elementwise; purely local (left
// shift distributes over the sum of shares).
func (p *Protocol) LshiftS(x Share, n uint) Share {
	return mapE(x, func(e ring.Elem) ring.Elem { return e.Lsh(n) })
}

// TruncP right-shifts a public value by n elementwise (arithmetic for
// signed rings); purely local.
func (p *Protocol) TruncP(x Share, n uint) Share {
	return mapE(x, func(e ring.Elem) ring.Elem { return e.Rsh(n) })
}

// MsbP computes the sign bit of a public value elementwise; purely
// local (plaintext data needs no masking).
func (p *Protocol) MsbP(x Share) Share {
	return mapE(x, func(e ring.Elem) ring.Elem { return e.Ring().FromInt64(int64(e.MSB())) })
}

// EqzP computes the equal-to-zero predicate of a public value
// elementwise; purely local.
func (p *Protocol) EqzP(x Share) Share {
	return mapE(x, func(e ring.Elem) ring.Elem {
		if e.IsZero() {
			return e.Ring().One()
		}
		return e.Ring().Zero()
	})
}

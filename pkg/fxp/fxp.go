// Package fxp implements F_{K,D}, a fixed-point datum: a signed ring
// element interpreted as x * 2^-D, with saturation and NaN sentinels,
// grounded on original_source/src/context/basic/fxp.hpp.
package fxp

import (
	"math"
	"math/big"

	"github.com/luxfi/semi2k/pkg/ring"
)

// Format describes a fixed-point representation: K total bits, D
// fractional bits, over a signed ring.
type Format struct {
	K, D int
	r    *ring.Ring
}

// NewFormat returns the fixed-point format F_{K,D}.
func NewFormat(k, d int) Format {
	return Format{K: k, D: d, r: ring.New(k, true)}
}

// Ring returns the underlying signed ring R_{K,true}.
func (f Format) Ring() *ring.Ring { return f.r }

// Elem is a single fixed-point value: a ring element interpreted as
// v * 2^-D.
type Elem struct {
	Format Format
	V      ring.Elem
}

// FromRaw wraps a raw ring element as a fixed-point value without scaling.
func (f Format) FromRaw(v ring.Elem) Elem { return Elem{Format: f, V: v} }

// Zero returns 0.
func (f Format) Zero() Elem { return Elem{Format: f, V: f.r.Zero()} }

// Min returns the smallest positive increment, 2^-D.
func (f Format) Min() Elem { return Elem{Format: f, V: f.r.One()} }

// Lowest returns the bottom of the range, -2^(K-D-1); its codepoint is
// the one NegInfinity uses.
func (f Format) Lowest() Elem {
	lo := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(f.K-1)))
	return Elem{Format: f, V: f.r.FromBig(lo)}
}

// Max returns the top of the range, 2^(K-D-1) - 2^-D; its codepoint is
// the one Infinity uses.
func (f Format) Max() Elem {
	hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(f.K-1)), big.NewInt(1))
	return Elem{Format: f, V: f.r.FromBig(hi)}
}

// Epsilon is the smallest representable increment, equal to Min.
func (f Format) Epsilon() Elem { return f.Min() }

// Infinity is the sentinel for overflow: the ring's maximum value.
func (f Format) Infinity() Elem { return Elem{Format: f, V: f.r.Max()} }

// NegInfinity is the sentinel for underflow past Lowest.
func (f Format) NegInfinity() Elem { return Elem{Format: f, V: f.r.Min()} }

// QuietNaN is the codepoint just below Infinity.
func (f Format) QuietNaN() Elem {
	return Elem{Format: f, V: f.r.Max().Sub(f.r.One())}
}

// IsInfinity reports whether x equals the Infinity sentinel.
func (x Elem) IsInfinity() bool { return x.V.Unsigned().Cmp(x.Format.Infinity().V.Unsigned()) == 0 }

// IsNaN reports whether x equals the QuietNaN sentinel.
func (x Elem) IsNaN() bool { return x.V.Unsigned().Cmp(x.Format.QuietNaN().V.Unsigned()) == 0 }

// Add delegates to the ring's addition; fracbits are assumed to already
// match (alignment is the dispatch layer's job, see pkg/dispatch).
func (x Elem) Add(y Elem) Elem { return Elem{Format: x.Format, V: x.V.Add(y.V)} }

// Sub delegates to the ring's subtraction.
func (x Elem) Sub(y Elem) Elem { return Elem{Format: x.Format, V: x.V.Sub(y.V)} }

// Neg delegates to the ring's negation.
func (x Elem) Neg() Elem { return Elem{Format: x.Format, V: x.V.Neg()} }

// Mul multiplies the raw ring elements and arithmetic-right-shifts by D,
// undoing the doubled scale factor introduced by multiplying two
// x*2^-D-scaled integers.
func (x Elem) Mul(y Elem) Elem {
	return Elem{Format: x.Format, V: x.V.Mul(y.V).Rsh(uint(x.Format.D))}
}

// Encode converts an IEEE double into F_{K,D}, per spec.md 4.1: values
// at or above Max saturate to +Infinity and values below -Max to
// -Infinity; values smaller than Min underflow to zero.
func (f Format) Encode(x float64) Elem {
	if math.IsNaN(x) {
		return f.QuietNaN()
	}
	maxF := f.toFloat(f.Max())
	if x >= maxF {
		return f.Infinity()
	}
	if x < -maxF {
		return f.NegInfinity()
	}
	minF := f.toFloat(f.Min())
	if x != 0 && math.Abs(x) < minF {
		return f.Zero()
	}
	scaled := new(big.Float).Mul(big.NewFloat(x), new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), uint(f.D))))
	i, _ := scaled.Int(nil)
	return Elem{Format: f, V: f.r.FromBig(i)}
}

// Decode converts a fixed-point value back to an IEEE double.
func (x Elem) Decode() float64 {
	if x.IsInfinity() {
		return math.Inf(1)
	}
	if x.V.Unsigned().Cmp(x.Format.NegInfinity().V.Unsigned()) == 0 {
		return math.Inf(-1)
	}
	if x.IsNaN() {
		return math.NaN()
	}
	return x.Format.toFloat(x)
}

func (f Format) toFloat(x Elem) float64 {
	num := new(big.Float).SetInt(x.V.Signed())
	denom := new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), uint(f.D)))
	out, _ := new(big.Float).Quo(num, denom).Float64()
	return out
}

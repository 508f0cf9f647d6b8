package dispatch

import (
	"context"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/ring"
	"github.com/luxfi/semi2k/pkg/value"
)

// FInput lifts a Private fixed-point value into a Share, preserving its
// fracbits, per spec.md 4.6's f_input / fxp.hpp's f_input.
func FInput(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	out, err := RInput(ctx, env, in)
	if err != nil {
		return value.Val{}, err
	}
	return out.WithFracBits(in.FracBits(), true), nil
}

// FOpen reveals a fixed-point value, preserving its fracbits.
func FOpen(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	out, err := ROpen(ctx, env, in)
	if err != nil {
		return value.Val{}, err
	}
	return out.WithFracBits(in.FracBits(), true), nil
}

// FNeg negates a fixed-point value, preserving its fracbits.
func FNeg(env Env, in value.Val) value.Val {
	return RNeg(env, in).WithFracBits(in.FracBits(), true)
}

// FAdd aligns lhs and rhs to the larger of their two fracbits scales by
// left-shifting the coarser operand before adding, per spec.md 4.6's
// f_add / fxp.hpp's f_add.
func FAdd(ctx context.Context, env Env, lhs, rhs value.Val) (value.Val, error) {
	fracbits := lhs.FracBits()
	if rhs.FracBits() > fracbits {
		fracbits = rhs.FracBits()
	}
	if lhs.FracBits() != fracbits {
		lhs = RLshift(env, lhs, uint(fracbits-lhs.FracBits())).WithFracBits(fracbits, true)
	}
	if rhs.FracBits() != fracbits {
		rhs = RLshift(env, rhs, uint(fracbits-rhs.FracBits())).WithFracBits(fracbits, true)
	}
	sum, err := RAdd(ctx, env, lhs, rhs)
	if err != nil {
		return value.Val{}, err
	}
	return sum.WithFracBits(fracbits, true), nil
}

// FMul multiplies two fixed-point values: the product's scale is the sum
// of the operands' fracbits, truncated back down to the context's
// target scale if it overflows, per spec.md 4.6's f_mul / fxp.hpp's
// f_mul.
func FMul(ctx context.Context, env Env, lhs, rhs value.Val) (value.Val, error) {
	fracbits := lhs.FracBits() + rhs.FracBits()

	ans, err := RMul(ctx, env, lhs, rhs)
	if err != nil {
		return value.Val{}, err
	}

	target := env.FxpFracBits()
	if fracbits > target {
		ans, err = RTrunc(ctx, env, ans, uint(fracbits-target))
		if err != nil {
			return value.Val{}, err
		}
		fracbits = target
	}
	return ans.WithFracBits(fracbits, true), nil
}

// FSquare computes in^2. original_source dedicates r_square/Pb_square/
// etc. to this, but pkg/protocol/semi2k has no standalone square
// primitive: squaring a share is multiplying it by itself,
// so FSquare is a thin FMul(in, in) wrapper rather than a fourth
// dispatch layer duplicating f_mul's fracbits bookkeeping.
func FSquare(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	return FMul(ctx, env, in, in)
}

// FMatmul is FMul's analog for matrix products.
func FMatmul(ctx context.Context, env Env, lhs, rhs value.Val, m, n, k int) (value.Val, error) {
	fracbits := lhs.FracBits() + rhs.FracBits()

	ans, err := RMatmul(ctx, env, lhs, rhs, m, n, k)
	if err != nil {
		return value.Val{}, err
	}

	target := env.FxpFracBits()
	if fracbits > target {
		ans, err = RTrunc(ctx, env, ans, uint(fracbits-target))
		if err != nil {
			return value.Val{}, err
		}
		fracbits = target
	}
	return ans.WithFracBits(fracbits, true), nil
}

// FMsb computes the sign bit of a fixed-point value; the result is a
// plain 0/1 predicate with no fractional scale.
func FMsb(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	out, err := RMsb(ctx, env, in)
	if err != nil {
		return value.Val{}, err
	}
	return out.WithFracBits(0, true), nil
}

// FEqz computes the equal-to-zero predicate of a fixed-point value; the
// result is a plain 0/1 predicate with no fractional scale.
func FEqz(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	out, err := REqz(ctx, env, in)
	if err != nil {
		return value.Val{}, err
	}
	return out.WithFracBits(0, true), nil
}

// FBitdec decomposes a fixed-point value into its lower n bits; each bit
// carries fracbits=0 since bits are integral.
func FBitdec(ctx context.Context, env Env, in value.Val, n int) ([]value.Val, error) {
	bits, err := RBitdec(ctx, env, in, n)
	if err != nil {
		return nil, err
	}
	return withZeroFracBits(bits), nil
}

// FH1bitdec decomposes bitfloor(x) into its lower n bits; each bit
// carries fracbits=0.
func FH1bitdec(ctx context.Context, env Env, in value.Val, n int) ([]value.Val, error) {
	bits, err := RH1bitdec(ctx, env, in, n)
	if err != nil {
		return nil, err
	}
	return withZeroFracBits(bits), nil
}

func withZeroFracBits(bits []value.Val) []value.Val {
	for i, b := range bits {
		bits[i] = b.WithFracBits(0, true)
	}
	return bits
}

// Bitcomp reconstructs a fixed-point value from its bit decomposition,
// the inverse of FBitdec: Σ bits[i]·2^i reinterpreted at the given
// fracbits, per spec.md 4.6's closing bitcomp(bits, fracbits) helper.
// Purely local arithmetic on each bit's one-element array; callers
// supply bits sharing a common visibility (all Public, all Private with
// the same owner, or all Share).
func Bitcomp(bits []value.Val, fracbits int) value.Val {
	r := bits[0].Array().Elem(0).Ring()
	acc := r.Zero()
	for i, b := range bits {
		acc = acc.Add(b.Array().Elem(0).Lsh(uint(i)))
	}
	out := ndarray.FromSlice([]ring.Elem{acc}, 1)
	return bits[0].WithArr(out).WithFracBits(fracbits, true)
}

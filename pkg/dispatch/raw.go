package dispatch

import (
	"context"
	"fmt"

	"github.com/luxfi/semi2k/pkg/value"
)

// RInput converts a Private value into a Share, per spec.md 4.5's
// input_p redirection (raw.hpp's r_input): in must be Private.
func RInput(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	assertf(in.IsPrivate(), "dispatch: r_input: input must be Private, got %s", in.Vis())
	return inputP(ctx, env, in)
}

// ROpen reveals a value to every party: identity if already Public,
// input-then-open if Private, open_s if Share.
func ROpen(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	if in.IsPublic() {
		return in, nil
	}
	if in.IsPrivate() {
		shared, err := inputP(ctx, env, in)
		if err != nil {
			return value.Val{}, err
		}
		return openS(ctx, env, shared)
	}
	assertf(in.IsShare(), "dispatch: r_open: invalid visibility %s", in.Vis())
	return openS(ctx, env, in)
}

// RNeg dispatches elementwise negation on in's runtime visibility.
func RNeg(env Env, in value.Val) value.Val {
	switch {
	case in.IsPublic():
		return pbNeg(env, in)
	case in.IsPrivate():
		return prNeg(env, in)
	case in.IsShare():
		return shNeg(env, in)
	default:
		panic(fmt.Sprintf("dispatch: r_neg: bad visibility %s", in.Vis()))
	}
}

// RMsb dispatches the sign-bit test on in's runtime visibility.
func RMsb(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	switch {
	case in.IsPublic():
		return pbMsb(env, in), nil
	case in.IsPrivate():
		return prMsb(env, in), nil
	case in.IsShare():
		return shMsb(ctx, env, in)
	default:
		panic(fmt.Sprintf("dispatch: r_msb: bad visibility %s", in.Vis()))
	}
}

// REqz dispatches the equal-to-zero test on in's runtime visibility.
func REqz(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	switch {
	case in.IsPublic():
		return pbEqz(env, in), nil
	case in.IsPrivate():
		return prEqz(env, in), nil
	case in.IsShare():
		return shEqz(ctx, env, in)
	default:
		panic(fmt.Sprintf("dispatch: r_eqz: bad visibility %s", in.Vis()))
	}
}

// RAdd dispatches elementwise addition over the nine visibility pairs,
// swapping operand order into the primitive layer's canonical
// (share-or-private-first) form per spec.md 4.6.
func RAdd(ctx context.Context, env Env, lhs, rhs value.Val) (value.Val, error) {
	switch {
	case lhs.IsPublic() && rhs.IsPublic():
		return pbPbAdd(env, lhs, rhs), nil
	case lhs.IsPublic() && rhs.IsPrivate():
		return prPbAdd(env, rhs, lhs), nil
	case lhs.IsPublic() && rhs.IsShare():
		return shPbAdd(env, rhs, lhs), nil

	case lhs.IsPrivate() && rhs.IsPublic():
		return prPbAdd(env, lhs, rhs), nil
	case lhs.IsPrivate() && rhs.IsPrivate():
		return prPrAdd(ctx, env, lhs, rhs)
	case lhs.IsPrivate() && rhs.IsShare():
		return shPrAdd(ctx, env, rhs, lhs)

	case lhs.IsShare() && rhs.IsPublic():
		return shPbAdd(env, lhs, rhs), nil
	case lhs.IsShare() && rhs.IsPrivate():
		return shPrAdd(ctx, env, lhs, rhs)
	case lhs.IsShare() && rhs.IsShare():
		return shShAdd(lhs, rhs, env), nil

	default:
		panic(fmt.Sprintf("dispatch: r_add: bad visibility pair %s/%s", lhs.Vis(), rhs.Vis()))
	}
}

// RMul is RAdd's analog for elementwise multiplication.
func RMul(ctx context.Context, env Env, lhs, rhs value.Val) (value.Val, error) {
	switch {
	case lhs.IsPublic() && rhs.IsPublic():
		return pbPbMul(env, lhs, rhs), nil
	case lhs.IsPublic() && rhs.IsPrivate():
		return prPbMul(env, rhs, lhs), nil
	case lhs.IsPublic() && rhs.IsShare():
		return shPbMul(env, rhs, lhs), nil

	case lhs.IsPrivate() && rhs.IsPublic():
		return prPbMul(env, lhs, rhs), nil
	case lhs.IsPrivate() && rhs.IsPrivate():
		return prPrMul(ctx, env, lhs, rhs)
	case lhs.IsPrivate() && rhs.IsShare():
		return shPrMul(ctx, env, rhs, lhs)

	case lhs.IsShare() && rhs.IsPublic():
		return shPbMul(env, lhs, rhs), nil
	case lhs.IsShare() && rhs.IsPrivate():
		return shPrMul(ctx, env, lhs, rhs)
	case lhs.IsShare() && rhs.IsShare():
		return shShMul(ctx, env, lhs, rhs)

	default:
		panic(fmt.Sprintf("dispatch: r_mul: bad visibility pair %s/%s", lhs.Vis(), rhs.Vis()))
	}
}

// RLshift dispatches a left shift on in's runtime visibility.
func RLshift(env Env, in value.Val, n uint) value.Val {
	switch {
	case in.IsPublic():
		return pbLshift(env, in, n)
	case in.IsPrivate():
		return prLshift(env, in, n)
	case in.IsShare():
		return shLshift(env, in, n)
	default:
		panic(fmt.Sprintf("dispatch: r_lshift: bad visibility %s", in.Vis()))
	}
}

// RTrunc dispatches a right shift (truncation) on in's runtime
// visibility.
func RTrunc(ctx context.Context, env Env, in value.Val, n uint) (value.Val, error) {
	switch {
	case in.IsPublic():
		return pbTrunc(env, in, n), nil
	case in.IsPrivate():
		return prTrunc(env, in, n), nil
	case in.IsShare():
		return shTrunc(ctx, env, in, n)
	default:
		panic(fmt.Sprintf("dispatch: r_trunc: bad visibility %s", in.Vis()))
	}
}

// RBitdec dispatches n-bit decomposition on in's runtime visibility.
func RBitdec(ctx context.Context, env Env, in value.Val, n int) ([]value.Val, error) {
	switch {
	case in.IsPublic():
		return pbBitdec(env, in, n), nil
	case in.IsPrivate():
		return prBitdec(env, in, n), nil
	case in.IsShare():
		return shBitdec(ctx, env, in, n)
	default:
		panic(fmt.Sprintf("dispatch: r_bitdec: bad visibility %s", in.Vis()))
	}
}

// RH1bitdec dispatches highest-set-bit decomposition on in's runtime
// visibility.
func RH1bitdec(ctx context.Context, env Env, in value.Val, n int) ([]value.Val, error) {
	switch {
	case in.IsPublic():
		return pbH1bitdec(env, in, n), nil
	case in.IsPrivate():
		return prH1bitdec(env, in, n), nil
	case in.IsShare():
		return shH1bitdec(ctx, env, in, n)
	default:
		panic(fmt.Sprintf("dispatch: r_h1bitdec: bad visibility %s", in.Vis()))
	}
}

// RMatmul dispatches a matrix product over the nine visibility pairs.
func RMatmul(ctx context.Context, env Env, lhs, rhs value.Val, m, n, k int) (value.Val, error) {
	switch {
	case lhs.IsPublic() && rhs.IsPublic():
		return pbPbMatmul(env, lhs, rhs, m, n, k), nil
	case lhs.IsPublic() && rhs.IsPrivate():
		return pbPrMatmul(env, lhs, rhs, m, n, k), nil
	case lhs.IsPublic() && rhs.IsShare():
		return pbShMatmul(env, lhs, rhs, m, n, k), nil

	case lhs.IsPrivate() && rhs.IsPublic():
		return prPbMatmul(env, lhs, rhs, m, n, k), nil
	case lhs.IsPrivate() && rhs.IsPrivate():
		return prPrMatmul(ctx, env, lhs, rhs, m, n, k)
	case lhs.IsPrivate() && rhs.IsShare():
		return prShMatmul(ctx, env, lhs, rhs, m, n, k)

	case lhs.IsShare() && rhs.IsPublic():
		return shPbMatmul(env, lhs, rhs, m, n, k), nil
	case lhs.IsShare() && rhs.IsPrivate():
		return shPrMatmul(ctx, env, lhs, rhs, m, n, k)
	case lhs.IsShare() && rhs.IsShare():
		return shShMatmul(ctx, env, lhs, rhs, m, n, k)

	default:
		panic(fmt.Sprintf("dispatch: r_matmul: bad visibility pair %s/%s", lhs.Vis(), rhs.Vis()))
	}
}

package dispatch

import (
	"context"
	"fmt"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/ring"
	"github.com/luxfi/semi2k/pkg/value"
	"github.com/luxfi/semi2k/pkg/visibility"
)

// inputP turns a Private value into a Share, per spec.md 4.5's
// input_p: owner's InputP call carries the real data, every other
// party's carries a same-shaped placeholder already present in in's
// array (per value.Val's Private contract).
func inputP(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	owner := in.Owner()
	arr, err := env.Proto().InputP(ctx, owner, in.Array())
	if err != nil {
		return value.Val{}, fmt.Errorf("dispatch: input_p: %w", err)
	}
	return in.WithArr(arr).WithVisibility(visibility.NewShare(), true), nil
}

// openS reveals a Share, per spec.md 4.5's open_s.
func openS(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	arr, err := env.Proto().OpenS(ctx, in.Array())
	if err != nil {
		return value.Val{}, fmt.Errorf("dispatch: open_s: %w", err)
	}
	return in.WithArr(arr).WithVisibility(visibility.NewPublic(), true), nil
}

// --- unary: neg ---

func pbNeg(env Env, in value.Val) value.Val {
	return in.WithArr(env.Proto().NegP(in.Array())).WithVisibility(visibility.NewPublic(), true)
}

func prNeg(env Env, in value.Val) value.Val {
	if env.Self() != in.Owner() {
		return in
	}
	return in.WithArr(env.Proto().NegP(in.Array())).WithVisibility(visibility.NewPrivate(in.Owner()), true)
}

func shNeg(env Env, in value.Val) value.Val {
	return in.WithArr(env.Proto().NegS(in.Array())).WithVisibility(visibility.NewShare(), true)
}

// --- unary: msb ---

func pbMsb(env Env, in value.Val) value.Val {
	return in.WithArr(env.Proto().MsbP(in.Array())).WithVisibility(visibility.NewPublic(), true)
}

func prMsb(env Env, in value.Val) value.Val {
	if env.Self() != in.Owner() {
		return in
	}
	return in.WithArr(env.Proto().MsbP(in.Array())).WithVisibility(visibility.NewPrivate(in.Owner()), true)
}

func shMsb(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	arr, err := env.Proto().MsbS(ctx, in.Array())
	if err != nil {
		return value.Val{}, fmt.Errorf("dispatch: msb: %w", err)
	}
	return in.WithArr(arr).WithVisibility(visibility.NewShare(), true), nil
}

// --- unary: eqz ---

func pbEqz(env Env, in value.Val) value.Val {
	return in.WithArr(env.Proto().EqzP(in.Array())).WithVisibility(visibility.NewPublic(), true)
}

func prEqz(env Env, in value.Val) value.Val {
	if env.Self() != in.Owner() {
		return in
	}
	return in.WithArr(env.Proto().EqzP(in.Array())).WithVisibility(visibility.NewPrivate(in.Owner()), true)
}

func shEqz(ctx context.Context, env Env, in value.Val) (value.Val, error) {
	arr, err := env.Proto().EqzS(ctx, in.Array())
	if err != nil {
		return value.Val{}, fmt.Errorf("dispatch: eqz: %w", err)
	}
	return in.WithArr(arr).WithVisibility(visibility.NewShare(), true), nil
}

// --- binary: add (canonical-order variants; raw.go swaps as needed) ---

func pbPbAdd(env Env, lhs, rhs value.Val) value.Val {
	return lhs.WithArr(env.Proto().AddPP(lhs.Array(), rhs.Array())).WithVisibility(visibility.NewPublic(), true)
}

func prPbAdd(env Env, lhs, rhs value.Val) value.Val {
	if env.Self() != lhs.Owner() {
		return lhs
	}
	return lhs.WithArr(env.Proto().AddPP(lhs.Array(), rhs.Array())).WithVisibility(visibility.NewPrivate(lhs.Owner()), true)
}

func shPbAdd(env Env, lhs, rhs value.Val) value.Val {
	return lhs.WithArr(env.Proto().AddSP(lhs.Array(), rhs.Array())).WithVisibility(visibility.NewShare(), true)
}

func prPrAdd(ctx context.Context, env Env, lhs, rhs value.Val) (value.Val, error) {
	if lhs.Owner() == rhs.Owner() {
		if env.Self() != lhs.Owner() {
			return lhs, nil
		}
		return lhs.WithArr(env.Proto().AddPP(lhs.Array(), rhs.Array())).WithVisibility(visibility.NewPrivate(lhs.Owner()), true), nil
	}
	lhsShare, err := inputP(ctx, env, lhs)
	if err != nil {
		return value.Val{}, err
	}
	rhsShare, err := inputP(ctx, env, rhs)
	if err != nil {
		return value.Val{}, err
	}
	return shShAdd(lhsShare, rhsShare, env), nil
}

func shPrAdd(ctx context.Context, env Env, lhs, rhs value.Val) (value.Val, error) {
	rhsShare, err := inputP(ctx, env, rhs)
	if err != nil {
		return value.Val{}, err
	}
	return shShAdd(lhs, rhsShare, env), nil
}

func shShAdd(lhs, rhs value.Val, env Env) value.Val {
	return lhs.WithArr(env.Proto().AddSS(lhs.Array(), rhs.Array())).WithVisibility(visibility.NewShare(), true)
}

// --- binary: mul ---

func pbPbMul(env Env, lhs, rhs value.Val) value.Val {
	return lhs.WithArr(env.Proto().MulPP(lhs.Array(), rhs.Array())).WithVisibility(visibility.NewPublic(), true)
}

func prPbMul(env Env, lhs, rhs value.Val) value.Val {
	if env.Self() != lhs.Owner() {
		return lhs
	}
	return lhs.WithArr(env.Proto().MulPP(lhs.Array(), rhs.Array())).WithVisibility(visibility.NewPrivate(lhs.Owner()), true)
}

func shPbMul(env Env, lhs, rhs value.Val) value.Val {
	return lhs.WithArr(env.Proto().MulSP(lhs.Array(), rhs.Array())).WithVisibility(visibility.NewShare(), true)
}

func prPrMul(ctx context.Context, env Env, lhs, rhs value.Val) (value.Val, error) {
	if lhs.Owner() == rhs.Owner() {
		if env.Self() != lhs.Owner() {
			return lhs, nil
		}
		return lhs.WithArr(env.Proto().MulPP(lhs.Array(), rhs.Array())).WithVisibility(visibility.NewPrivate(lhs.Owner()), true), nil
	}
	lhsShare, err := inputP(ctx, env, lhs)
	if err != nil {
		return value.Val{}, err
	}
	rhsShare, err := inputP(ctx, env, rhs)
	if err != nil {
		return value.Val{}, err
	}
	return shShMul(ctx, env, lhsShare, rhsShare)
}

func shPrMul(ctx context.Context, env Env, lhs, rhs value.Val) (value.Val, error) {
	rhsShare, err := inputP(ctx, env, rhs)
	if err != nil {
		return value.Val{}, err
	}
	return shShMul(ctx, env, lhs, rhsShare)
}

func shShMul(ctx context.Context, env Env, lhs, rhs value.Val) (value.Val, error) {
	arr, err := env.Proto().MulSS(ctx, lhs.Array(), rhs.Array())
	if err != nil {
		return value.Val{}, fmt.Errorf("dispatch: mul_ss: %w", err)
	}
	return lhs.WithArr(arr).WithVisibility(visibility.NewShare(), true), nil
}

// --- shift: lshift, trunc ---

func pbLshift(env Env, in value.Val, n uint) value.Val {
	return in.WithArr(env.Proto().LshiftP(in.Array(), n)).WithVisibility(visibility.NewPublic(), true)
}

func prLshift(env Env, in value.Val, n uint) value.Val {
	if env.Self() != in.Owner() {
		return in
	}
	return in.WithArr(env.Proto().LshiftP(in.Array(), n)).WithVisibility(visibility.NewPrivate(in.Owner()), true)
}

func shLshift(env Env, in value.Val, n uint) value.Val {
	return in.WithArr(env.Proto().LshiftS(in.Array(), n)).WithVisibility(visibility.NewShare(), true)
}

func pbTrunc(env Env, in value.Val, n uint) value.Val {
	return in.WithArr(env.Proto().TruncP(in.Array(), n)).WithVisibility(visibility.NewPublic(), true)
}

func prTrunc(env Env, in value.Val, n uint) value.Val {
	if env.Self() != in.Owner() {
		return in
	}
	return in.WithArr(env.Proto().TruncP(in.Array(), n)).WithVisibility(visibility.NewPrivate(in.Owner()), true)
}

func shTrunc(ctx context.Context, env Env, in value.Val, n uint) (value.Val, error) {
	arr, err := env.Proto().TruncS(ctx, in.Array(), n)
	if err != nil {
		return value.Val{}, fmt.Errorf("dispatch: trunc_s: %w", err)
	}
	return in.WithArr(arr).WithVisibility(visibility.NewShare(), true), nil
}

// --- bitdec / h1bitdec (scalar-only, per pkg/protocol/semi2k's scope
// decision: these decompose a single-element Val into n single-element
// bit Vals) ---

func pbBitdec(env Env, in value.Val, n int) []value.Val {
	bits := env.Proto().BitdecP(in.Array(), n)
	return splitBits(in, bits, n, visibility.NewPublic())
}

func prBitdec(env Env, in value.Val, n int) []value.Val {
	if env.Self() != in.Owner() {
		out := make([]value.Val, n)
		for i := range out {
			out[i] = in
		}
		return out
	}
	bits := env.Proto().BitdecP(in.Array(), n)
	return splitBits(in, bits, n, visibility.NewPrivate(in.Owner()))
}

func shBitdec(ctx context.Context, env Env, in value.Val, n int) ([]value.Val, error) {
	bits, err := env.Proto().BitdecS(ctx, in.Array(), n)
	if err != nil {
		return nil, fmt.Errorf("dispatch: bitdec_s: %w", err)
	}
	return splitBits(in, bits, n, visibility.NewShare()), nil
}

func pbH1bitdec(env Env, in value.Val, n int) []value.Val {
	bits := env.Proto().H1bitdecP(in.Array(), n)
	return splitBits(in, bits, n, visibility.NewPublic())
}

func prH1bitdec(env Env, in value.Val, n int) []value.Val {
	if env.Self() != in.Owner() {
		out := make([]value.Val, n)
		for i := range out {
			out[i] = in
		}
		return out
	}
	bits := env.Proto().H1bitdecP(in.Array(), n)
	return splitBits(in, bits, n, visibility.NewPrivate(in.Owner()))
}

func shH1bitdec(ctx context.Context, env Env, in value.Val, n int) ([]value.Val, error) {
	bits, err := env.Proto().H1bitdecS(ctx, in.Array(), n)
	if err != nil {
		return nil, fmt.Errorf("dispatch: h1bitdec_s: %w", err)
	}
	return splitBits(in, bits, n, visibility.NewShare()), nil
}

func splitBits(in value.Val, bits value.Arr, n int, vis visibility.V) []value.Val {
	out := make([]value.Val, n)
	for i := 0; i < n; i++ {
		out[i] = in.WithArr(ndarray.FromSlice([]ring.Elem{bits.Elem(i)}, 1)).WithVisibility(vis, true).WithFracBits(0, true)
	}
	return out
}

// --- matmul (nine-way; canonical-order plus the private/share mirror
// pairs the raw layer doesn't need to swap since plain matmul is not
// commutative in shape, so every pairing is spelled out here directly,
// per original_source's primitive.hpp PbPb/ShPb/PbSh/ShSh/PrPb/PbPr/
// PrPr/ShPr/PrSh_matmul) ---

func pbPbMatmul(env Env, lhs, rhs value.Val, m, n, k int) value.Val {
	return lhs.WithArr(env.Proto().MatmulPP(lhs.Array(), rhs.Array(), m, n, k)).WithVisibility(visibility.NewPublic(), true)
}

func shPbMatmul(env Env, lhs, rhs value.Val, m, n, k int) value.Val {
	return lhs.WithArr(env.Proto().MatmulSP(lhs.Array(), rhs.Array(), m, n, k)).WithVisibility(visibility.NewShare(), true)
}

func pbShMatmul(env Env, lhs, rhs value.Val, m, n, k int) value.Val {
	return lhs.WithArr(env.Proto().MatmulPS(lhs.Array(), rhs.Array(), m, n, k)).WithVisibility(visibility.NewShare(), true)
}

func shShMatmul(ctx context.Context, env Env, lhs, rhs value.Val, m, n, k int) (value.Val, error) {
	arr, err := env.Proto().MatmulSS(ctx, lhs.Array(), rhs.Array(), m, n, k)
	if err != nil {
		return value.Val{}, fmt.Errorf("dispatch: matmul_ss: %w", err)
	}
	return lhs.WithArr(arr).WithVisibility(visibility.NewShare(), true), nil
}

func prPbMatmul(env Env, lhs, rhs value.Val, m, n, k int) value.Val {
	if env.Self() != lhs.Owner() {
		return lhs
	}
	return lhs.WithArr(env.Proto().MatmulPP(lhs.Array(), rhs.Array(), m, n, k)).WithVisibility(visibility.NewPrivate(lhs.Owner()), true)
}

func pbPrMatmul(env Env, lhs, rhs value.Val, m, n, k int) value.Val {
	if env.Self() != rhs.Owner() {
		return rhs
	}
	return rhs.WithArr(env.Proto().MatmulPP(lhs.Array(), rhs.Array(), m, n, k)).WithVisibility(visibility.NewPrivate(rhs.Owner()), true)
}

func prPrMatmul(ctx context.Context, env Env, lhs, rhs value.Val, m, n, k int) (value.Val, error) {
	if lhs.Owner() == rhs.Owner() {
		if env.Self() != lhs.Owner() {
			return lhs, nil
		}
		return lhs.WithArr(env.Proto().MatmulPP(lhs.Array(), rhs.Array(), m, n, k)).WithVisibility(visibility.NewPrivate(lhs.Owner()), true), nil
	}
	lhsShare, err := inputP(ctx, env, lhs)
	if err != nil {
		return value.Val{}, err
	}
	rhsShare, err := inputP(ctx, env, rhs)
	if err != nil {
		return value.Val{}, err
	}
	return shShMatmul(ctx, env, lhsShare, rhsShare, m, n, k)
}

func shPrMatmul(ctx context.Context, env Env, lhs, rhs value.Val, m, n, k int) (value.Val, error) {
	rhsShare, err := inputP(ctx, env, rhs)
	if err != nil {
		return value.Val{}, err
	}
	return shShMatmul(ctx, env, lhs, rhsShare, m, n, k)
}

func prShMatmul(ctx context.Context, env Env, lhs, rhs value.Val, m, n, k int) (value.Val, error) {
	lhsShare, err := inputP(ctx, env, lhs)
	if err != nil {
		return value.Val{}, err
	}
	return shShMatmul(ctx, env, lhsShare, rhs, m, n, k)
}

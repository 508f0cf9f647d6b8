package dispatch_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/semi2k/pkg/dispatch"
	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/net"
	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/prep"
	"github.com/luxfi/semi2k/pkg/protocol/semi2k"
	"github.com/luxfi/semi2k/pkg/ring"
	"github.com/luxfi/semi2k/pkg/value"
)

// fakeEnv is the minimal dispatch.Env a *context.Context would otherwise
// provide; kept local to avoid importing pkg/context, which itself
// imports pkg/dispatch's sibling packages but not dispatch.
type fakeEnv struct {
	proto    *semi2k.Protocol
	fracbits int
}

func (e *fakeEnv) Self() party.ID          { return e.proto.Self() }
func (e *fakeEnv) NumParties() int         { return e.proto.NumParties() }
func (e *fakeEnv) Proto() *semi2k.Protocol { return e.proto }
func (e *fakeEnv) FxpFracBits() int        { return e.fracbits }

func setupEnvs(t *testing.T, n int, r *ring.Ring, fracbits int) []*fakeEnv {
	t.Helper()
	nets := net.NewLocalNetwork(n)
	seed := []byte("dispatch test seed, not secret, shared out of band")
	envs := make([]*fakeEnv, n)
	for i := 0; i < n; i++ {
		m, err := prep.NewMockWithSeed(seed, party.ID(i), n)
		require.NoError(t, err)
		envs[i] = &fakeEnv{proto: semi2k.New(nets[i], m, r), fracbits: fracbits}
	}
	return envs
}

func runAllEnv[T any](t *testing.T, envs []*fakeEnv, fn func(i int, e *fakeEnv) (T, error)) []T {
	t.Helper()
	out := make([]T, len(envs))
	errs := make([]error, len(envs))
	var wg sync.WaitGroup
	for i := range envs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i], errs[i] = fn(i, envs[i])
		}()
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "party %d", i)
	}
	return out
}

func scalarArr(r *ring.Ring, v int64) value.Arr {
	return ndarray.FromSlice([]ring.Elem{r.FromInt64(v)}, 1)
}

// shareOf has every party input_p their local plaintext as owner, and
// returns each party's resulting Share value.
func shareOf(ctx context.Context, t *testing.T, envs []*fakeEnv, owner party.ID, plains map[party.ID]int64, r *ring.Ring) []value.Val {
	t.Helper()
	out := runAllEnv(t, envs, func(i int, e *fakeEnv) (value.Val, error) {
		v, ok := plains[e.Self()]
		if !ok {
			v = 0
		}
		in := value.NewPrivate(scalarArr(r, v), owner, 0)
		return dispatch.RInput(ctx, e, in)
	})
	return out
}

// operand builds one RAdd operand of the requested visibility, already
// resolved per-party: "pub" is a plain Public constant, "priv" is Private
// to owner, and "share" is owner's value already converted to a Share via
// r_input (since a Share can't come from a bare constructor).
func operand(ctx context.Context, t *testing.T, envs []*fakeEnv, kind string, owner party.ID, v int64, r *ring.Ring) []value.Val {
	t.Helper()
	switch kind {
	case "pub":
		out := make([]value.Val, len(envs))
		for i := range envs {
			out[i] = value.NewPublic(scalarArr(r, v), 0)
		}
		return out
	case "priv":
		out := make([]value.Val, len(envs))
		for i, e := range envs {
			pv := int64(0)
			if e.Self() == owner {
				pv = v
			}
			out[i] = value.NewPrivate(scalarArr(r, pv), owner, 0)
		}
		return out
	case "share":
		return shareOf(ctx, t, envs, owner, map[party.ID]int64{owner: v}, r)
	default:
		t.Fatalf("unknown operand kind %q", kind)
		return nil
	}
}

func TestRAddOverAllNineVisibilityPairs(t *testing.T) {
	ctx := context.Background()
	r := ring.New(64, true)
	owner0, owner1 := party.ID(0), party.ID(1)
	kinds := []string{"pub", "priv", "share"}

	for _, lhsKind := range kinds {
		for _, rhsKind := range kinds {
			lhsKind, rhsKind := lhsKind, rhsKind
			t.Run(lhsKind+"+"+rhsKind, func(t *testing.T) {
				envs := setupEnvs(t, 3, r, 0)
				lhsVals := operand(ctx, t, envs, lhsKind, owner0, 3, r)
				rhsVals := operand(ctx, t, envs, rhsKind, owner1, 4, r)

				results := runAllEnv(t, envs, func(i int, e *fakeEnv) (value.Val, error) {
					return dispatch.RAdd(ctx, e, lhsVals[i], rhsVals[i])
				})
				for i, e := range envs {
					opened, err := dispatch.ROpen(ctx, e, results[i])
					require.NoError(t, err)
					require.Equal(t, int64(7), opened.Array().Elem(0).Int64(), "party %d", i)
				}
			})
		}
	}
}

func TestRMulAgreesWithPlaintextMultiplication(t *testing.T) {
	ctx := context.Background()
	r := ring.New(64, true)
	envs := setupEnvs(t, 3, r, 0)
	owner0, owner1 := party.ID(0), party.ID(1)

	xs := shareOf(ctx, t, envs, owner0, map[party.ID]int64{owner0: 6}, r)
	ys := shareOf(ctx, t, envs, owner1, map[party.ID]int64{owner1: 7}, r)

	prods := runAllEnv(t, envs, func(i int, e *fakeEnv) (value.Val, error) {
		return dispatch.RMul(ctx, e, xs[i], ys[i])
	})
	for i, e := range envs {
		opened, err := dispatch.ROpen(ctx, e, prods[i])
		require.NoError(t, err)
		require.Equal(t, int64(42), opened.Array().Elem(0).Int64(), "party %d", i)
	}
}

// TestFAddAlignsFracbitsToTheFinerOperand checks f_add's documented
// behavior: the result carries max(lhs.FracBits(), rhs.FracBits()), with
// the coarser operand left-shifted to match before the raw add.
func TestFAddAlignsFracbitsToTheFinerOperand(t *testing.T) {
	ctx := context.Background()
	r := ring.New(64, true)
	envs := setupEnvs(t, 2, r, 16)

	// 3 at fracbits=16 (i.e. raw 3<<16) plus 1 at fracbits=8 (raw 1<<8),
	// both Public so no network round trip is needed beyond r_add itself.
	lhs := value.NewPublic(scalarArr(r, 3<<16), 16)
	rhs := value.NewPublic(scalarArr(r, 1<<8), 8)

	sums := runAllEnv(t, envs, func(i int, e *fakeEnv) (value.Val, error) {
		return dispatch.FAdd(ctx, e, lhs, rhs)
	})
	for i, sum := range sums {
		require.Equal(t, 16, sum.FracBits(), "party %d", i)
		require.Equal(t, int64(4<<16), sum.Array().Elem(0).Int64(), "party %d", i)
	}
}

// TestFMulTruncatesToTargetFracbits checks f_mul's bookkeeping: the raw
// product's fracbits is the sum of the operands' fracbits, truncated back
// down to the env's configured target when it overshoots.
func TestFMulTruncatesToTargetFracbits(t *testing.T) {
	ctx := context.Background()
	r := ring.New(64, true)
	envs := setupEnvs(t, 2, r, 16)

	// 2.0 and 3.0 at fracbits=16 each; product's natural fracbits is 32,
	// truncated back down to the target (16), decoding to 6.0.
	lhs := value.NewPublic(scalarArr(r, 2<<16), 16)
	rhs := value.NewPublic(scalarArr(r, 3<<16), 16)

	prods := runAllEnv(t, envs, func(i int, e *fakeEnv) (value.Val, error) {
		return dispatch.FMul(ctx, e, lhs, rhs)
	})
	for i, prod := range prods {
		require.Equal(t, 16, prod.FracBits(), "party %d", i)
		require.Equal(t, int64(6<<16), prod.Array().Elem(0).Int64(), "party %d", i)
	}
}

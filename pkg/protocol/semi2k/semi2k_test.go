package semi2k_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/net"
	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/prep"
	"github.com/luxfi/semi2k/pkg/protocol/semi2k"
	"github.com/luxfi/semi2k/pkg/ring"
)

// setup wires n parties over an in-process Local network and a shared
// deterministic Mock preprocessing seed; each test picks its own party
// count and ring.
func setup(t *testing.T, n int, r *ring.Ring) []*semi2k.Protocol {
	t.Helper()
	nets := net.NewLocalNetwork(n)
	seed := []byte("semi2k protocol test seed, not secret, shared out of band")
	protos := make([]*semi2k.Protocol, n)
	for i := 0; i < n; i++ {
		m, err := prep.NewMockWithSeed(seed, party.ID(i), n)
		require.NoError(t, err)
		protos[i] = semi2k.New(nets[i], m, r)
	}
	return protos
}

// runAll calls fn(i, protos[i]) concurrently and returns each goroutine's
// result in order, failing the test if any returns an error.
func runAll[T any](t *testing.T, protos []*semi2k.Protocol, fn func(i int, p *semi2k.Protocol) (T, error)) []T {
	t.Helper()
	out := make([]T, len(protos))
	errs := make([]error, len(protos))
	var wg sync.WaitGroup
	for i := range protos {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i], errs[i] = fn(i, protos[i])
		}()
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "party %d", i)
	}
	return out
}

func scalarShare(r *ring.Ring, v int64) semi2k.Share {
	return ndarray.FromSlice([]ring.Elem{r.FromInt64(v)}, 1)
}

// openAll has every party open x (already a valid share array per
// party, one entry per party) and asserts all parties agree, returning
// the opened value.
func openAll(t *testing.T, protos []*semi2k.Protocol, xs []semi2k.Share) semi2k.Share {
	t.Helper()
	ctx := context.Background()
	opened := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		return p.OpenS(ctx, xs[i])
	})
	for i := 1; i < len(opened); i++ {
		require.Equal(t, opened[0].Elem(0).Unsigned(), opened[i].Elem(0).Unsigned())
	}
	return opened[0]
}

// shareEach runs fn(i) per party and collects each party's Share.
func shareEach(t *testing.T, protos []*semi2k.Protocol, fn func(i int, p *semi2k.Protocol) (semi2k.Share, error)) []semi2k.Share {
	t.Helper()
	return runAll(t, protos, fn)
}

func TestInputThenOpenRoundTrips(t *testing.T) {
	r := ring.New(128, true)
	protos := setup(t, 3, r)
	ctx := context.Background()

	shares := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		data := scalarShare(r, 0)
		if i == 0 {
			data = scalarShare(r, 42)
		}
		return p.InputP(ctx, party.ID(0), data)
	})
	got := openAll(t, protos, shares)
	require.Equal(t, int64(42), got.Elem(0).Int64())
}

func TestAddSSMatchesSum(t *testing.T) {
	r := ring.New(128, true)
	protos := setup(t, 3, r)
	ctx := context.Background()

	xs := shareEach(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		data := scalarShare(r, 0)
		if i == 0 {
			data = scalarShare(r, 7)
		}
		return p.InputP(ctx, party.ID(0), data)
	})
	ys := shareEach(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		data := scalarShare(r, 0)
		if i == 1 {
			data = scalarShare(r, 35)
		}
		return p.InputP(ctx, party.ID(1), data)
	})

	sums := make([]semi2k.Share, len(protos))
	for i, p := range protos {
		sums[i] = p.AddSS(xs[i], ys[i])
	}
	got := openAll(t, protos, sums)
	require.Equal(t, int64(42), got.Elem(0).Int64())
}

func TestMulSSViaBeaverTriple(t *testing.T) {
	r := ring.New(128, true)
	protos := setup(t, 3, r)
	ctx := context.Background()

	xs := shareEach(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		data := scalarShare(r, 0)
		if i == 0 {
			data = scalarShare(r, 6)
		}
		return p.InputP(ctx, party.ID(0), data)
	})
	ys := shareEach(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		data := scalarShare(r, 0)
		if i == 1 {
			data = scalarShare(r, 7)
		}
		return p.InputP(ctx, party.ID(1), data)
	})

	prods := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		return p.MulSS(ctx, xs[i], ys[i])
	})
	got := openAll(t, protos, prods)
	require.Equal(t, int64(42), got.Elem(0).Int64())
}

func TestMatmulSS(t *testing.T) {
	r := ring.New(128, true)
	protos := setup(t, 2, r)
	ctx := context.Background()

	// A is 2x2, B is 2x2; owner 0 holds A, owner 1 holds B.
	aVals := []int64{1, 2, 3, 4}
	bVals := []int64{5, 6, 7, 8}

	as := shareEach(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		data := zeroMat(r, 2, 2)
		if i == 0 {
			data = intMat(r, aVals, 2, 2)
		}
		return p.InputP(ctx, party.ID(0), data)
	})
	bs := shareEach(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		data := zeroMat(r, 2, 2)
		if i == 1 {
			data = intMat(r, bVals, 2, 2)
		}
		return p.InputP(ctx, party.ID(1), data)
	})

	cs := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		return p.MatmulSS(ctx, as[i], bs[i], 2, 2, 2)
	})

	opened := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		return p.OpenS(ctx, cs[i])
	})
	want := []int64{19, 22, 43, 50} // [[1,2],[3,4]] * [[5,6],[7,8]]
	for idx, w := range want {
		require.Equal(t, w, opened[0].Elem(idx/2, idx%2).Int64())
		require.Equal(t, w, opened[1].Elem(idx/2, idx%2).Int64())
	}
}

func zeroMat(r *ring.Ring, rows, cols int) semi2k.Share {
	data := make([]ring.Elem, rows*cols)
	z := r.Zero()
	for i := range data {
		data[i] = z
	}
	return ndarray.FromSlice(data, rows, cols)
}

func intMat(r *ring.Ring, vals []int64, rows, cols int) semi2k.Share {
	data := make([]ring.Elem, len(vals))
	for i, v := range vals {
		data[i] = r.FromInt64(v)
	}
	return ndarray.FromSlice(data, rows, cols)
}

func TestTruncSTwoPartyLocalShift(t *testing.T) {
	r := ring.New(128, true)
	protos := setup(t, 2, r)
	ctx := context.Background()

	xs := shareEach(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		data := scalarShare(r, 0)
		if i == 0 {
			data = scalarShare(r, 40<<8)
		}
		return p.InputP(ctx, party.ID(0), data)
	})
	ts := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		return p.TruncS(ctx, xs[i], 8)
	})
	got := openAll(t, protos, ts)
	// Shifting each random share locally drops the shares' low-bit carry,
	// so the 2-party result is exact only to within 1 ulp.
	require.InDelta(t, int64(40), got.Elem(0).Int64(), 1)
}

func TestTruncSThreePartyUsesRAndRR(t *testing.T) {
	r := ring.New(128, true)
	protos := setup(t, 3, r)
	ctx := context.Background()

	xs := shareEach(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		data := scalarShare(r, 0)
		if i == 0 {
			data = scalarShare(r, 40<<8)
		}
		return p.InputP(ctx, party.ID(0), data)
	})
	ts := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		return p.TruncS(ctx, xs[i], 8)
	})
	got := openAll(t, protos, ts)
	require.Equal(t, int64(40), got.Elem(0).Int64())
}

func TestBitdecSRecoversBits(t *testing.T) {
	r := ring.New(128, true)
	protos := setup(t, 3, r)
	ctx := context.Background()

	xs := shareEach(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		data := scalarShare(r, 0)
		if i == 0 {
			data = scalarShare(r, 5) // 0b101
		}
		return p.InputP(ctx, party.ID(0), data)
	})
	bits := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		return p.BitdecS(ctx, xs[i], 8)
	})
	opened := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		return p.OpenS(ctx, bits[i])
	})
	want := []int64{1, 0, 1, 0, 0, 0, 0, 0}
	for i, w := range want {
		require.Equal(t, w, opened[0].Elem(i).Int64(), "bit %d", i)
	}
}

func TestMsbSSignOfNegativeZeroPositive(t *testing.T) {
	r := ring.New(64, true)
	protos := setup(t, 3, r)
	ctx := context.Background()

	vals := []int64{-1, 0, 2}
	xs := shareEach(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		data := zeroVec(r, len(vals))
		if i == 0 {
			data = intVec(r, vals)
		}
		return p.InputP(ctx, party.ID(0), data)
	})
	msb := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		return p.MsbS(ctx, xs[i])
	})
	opened := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		return p.OpenS(ctx, msb[i])
	})
	want := []int64{1, 0, 0}
	for i, w := range want {
		require.Equal(t, w, opened[0].Elem(i).Int64(), "element %d", i)
	}
}

func TestEqzSZeroDetection(t *testing.T) {
	r := ring.New(64, true)
	protos := setup(t, 3, r)
	ctx := context.Background()

	vals := []int64{0, 3, -0}
	xs := shareEach(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		data := zeroVec(r, len(vals))
		if i == 0 {
			data = intVec(r, vals)
		}
		return p.InputP(ctx, party.ID(0), data)
	})
	eq := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		return p.EqzS(ctx, xs[i])
	})
	opened := runAll(t, protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
		return p.OpenS(ctx, eq[i])
	})
	want := []int64{1, 0, 1}
	for i, w := range want {
		require.Equal(t, w, opened[0].Elem(i).Int64(), "element %d", i)
	}
}

func zeroVec(r *ring.Ring, n int) semi2k.Share {
	data := make([]ring.Elem, n)
	z := r.Zero()
	for i := range data {
		data[i] = z
	}
	return ndarray.FromSlice(data, n)
}

func intVec(r *ring.Ring, vals []int64) semi2k.Share {
	data := make([]ring.Elem, len(vals))
	for i, v := range vals {
		data[i] = r.FromInt64(v)
	}
	return ndarray.FromSlice(data, len(vals))
}

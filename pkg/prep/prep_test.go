package prep_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/prep"
	"github.com/luxfi/semi2k/pkg/ring"
)

func mockPair(t *testing.T, n int) []*prep.Mock {
	t.Helper()
	seed := []byte("test root seed, not secret, shared out of band")
	parties := make([]*prep.Mock, n)
	for i := 0; i < n; i++ {
		m, err := prep.NewMockWithSeed(seed, party.ID(i), n)
		require.NoError(t, err)
		parties[i] = m
	}
	return parties
}

func TestTriplesSumToProduct(t *testing.T) {
	r := ring.New(64, true)
	parties := mockPair(t, 3)

	aSum, bSum, cSum := make([]ring.Elem, 4), make([]ring.Elem, 4), make([]ring.Elem, 4)
	for i, m := range parties {
		a, b, c, err := m.Triples(r, 4)
		require.NoError(t, err)
		for k := 0; k < 4; k++ {
			av := a.Elem(k)
			bv := b.Elem(k)
			cv := c.Elem(k)
			if i == 0 {
				aSum[k], bSum[k], cSum[k] = av, bv, cv
			} else {
				aSum[k], bSum[k], cSum[k] = aSum[k].Add(av), bSum[k].Add(bv), cSum[k].Add(cv)
			}
		}
	}
	for k := 0; k < 4; k++ {
		require.Equal(t, aSum[k].Mul(bSum[k]).String(), cSum[k].String(), "triple %d", k)
	}
}

func TestMatrixTripleSumsToProduct(t *testing.T) {
	r := ring.New(32, true)
	parties := mockPair(t, 2)

	type acc struct{ A, B, C ring.Elem }
	sums := make(map[[3]int]acc)

	for i, m := range parties {
		A, B, C, err := m.MatrixTriple(r, 2, 3, 2)
		require.NoError(t, err)
		for a := 0; a < 2; a++ {
			for b := 0; b < 3; b++ {
				key := [3]int{0, a, b}
				v := A.Elem(a, b)
				if i == 0 {
					sums[key] = acc{A: v}
				} else {
					cur := sums[key]
					cur.A = cur.A.Add(v)
					sums[key] = cur
				}
			}
		}
		for a := 0; a < 3; a++ {
			for b := 0; b < 2; b++ {
				key := [3]int{1, a, b}
				v := B.Elem(a, b)
				if i == 0 {
					sums[key] = acc{A: v}
				} else {
					cur := sums[key]
					cur.A = cur.A.Add(v)
					sums[key] = cur
				}
			}
		}
		for a := 0; a < 2; a++ {
			for b := 0; b < 2; b++ {
				key := [3]int{2, a, b}
				v := C.Elem(a, b)
				if i == 0 {
					sums[key] = acc{A: v}
				} else {
					cur := sums[key]
					cur.A = cur.A.Add(v)
					sums[key] = cur
				}
			}
		}
	}

	getA := func(i, j int) ring.Elem { return sums[[3]int{0, i, j}].A }
	getB := func(i, j int) ring.Elem { return sums[[3]int{1, i, j}].A }
	getC := func(i, j int) ring.Elem { return sums[[3]int{2, i, j}].A }

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := r.Zero()
			for k := 0; k < 3; k++ {
				want = want.Add(getA(i, k).Mul(getB(k, j)))
			}
			require.Equal(t, want.String(), getC(i, j).String())
		}
	}
}

func TestRandBitsAreZeroOrOne(t *testing.T) {
	r := ring.New(16, false)
	parties := mockPair(t, 2)

	bits0, err := parties[0].RandBits(r, 8)
	require.NoError(t, err)
	bits1, err := parties[1].RandBits(r, 8)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		sum := bits0.Elem(i).Add(bits1.Elem(i))
		v := sum.Unsigned().Int64()
		require.True(t, v == 0 || v == 1, "bit %d reconstructed to %v", i, v)
	}
}

func TestRAndRRConsistentWithShift(t *testing.T) {
	r := ring.New(32, true)
	parties := mockPair(t, 2)

	rs0, rrs0, err := parties[0].RAndRR(r, 4, 5)
	require.NoError(t, err)
	rs1, rrs1, err := parties[1].RAndRR(r, 4, 5)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		rFull := rs0.Elem(i).Add(rs1.Elem(i))
		rrFull := rrs0.Elem(i).Add(rrs1.Elem(i))
		require.Equal(t, rFull.Rsh(5).String(), rrFull.String())
	}
}

package ndarray_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/semi2k/pkg/ndarray"
)

func TestElemAndNegativeIndex(t *testing.T) {
	a := ndarray.FromSlice([]int{1, 2, 3, 4, 5, 6}, 2, 3)
	assert.Equal(t, 1, a.Elem(0, 0))
	assert.Equal(t, 6, a.Elem(-1, -1))
	assert.Equal(t, 4, a.Elem(1, 0))
}

func TestReshapeSharesBufferOnIdentity(t *testing.T) {
	a := ndarray.FromSlice([]int{1, 2, 3, 4, 5, 6}, 2, 3)
	b := a.Reshape(a.Shape()...)
	b.SetElem(99, 0, 0)
	assert.Equal(t, 99, a.Elem(0, 0), "reshape to the same shape must alias the buffer")
}

func TestCompactCopyElementwiseEqual(t *testing.T) {
	a := ndarray.FromSlice([]int{1, 2, 3, 4, 5, 6}, 2, 3)
	cc := a.Compact().Copy()
	assert.True(t, ndarray.Equal(a, cc, func(x, y int) bool { return x == y }))
}

func TestSlice(t *testing.T) {
	a := ndarray.FromSlice([]int{10, 20, 30, 40, 50}, 5)
	s := a.Slice(ndarray.Dim(ndarray.Slice{Start: 1, HasStart: true}))
	for j := 0; j < s.Numel(); j++ {
		assert.Equal(t, a.Elem(1+j), s.Elem(j))
	}
}

func TestSliceDropsDimension(t *testing.T) {
	a := ndarray.FromSlice([]int{1, 2, 3, 4, 5, 6}, 2, 3)
	row := a.Slice(ndarray.At(1))
	require.Equal(t, 1, row.Rank())
	assert.Equal(t, 4, row.Elem(0))
	assert.Equal(t, 6, row.Elem(2))
}

func TestBroadcastToNeverAllocatesAndStridesZero(t *testing.T) {
	a := ndarray.FromSlice([]int{1, 2, 3}, 1, 3)
	b := a.BroadcastTo(4, 3)
	assert.Equal(t, []int{4, 3}, b.Shape())
	for i := 0; i < 4; i++ {
		assert.Equal(t, 1, b.Elem(i, 0))
		assert.Equal(t, 2, b.Elem(i, 1))
		assert.Equal(t, 3, b.Elem(i, 2))
	}
}

func TestPermuteSubstituteRoundTrip(t *testing.T) {
	a := ndarray.FromSlice([]int{10, 20, 30, 40}, 4)
	perm := []int{3, 1, 0, 2}
	permuted := a.Permute(perm)
	back := a.Substitute(perm, permuted)
	assert.True(t, ndarray.Equal(a, back, func(x, y int) bool { return x == y }))
}

func TestTranspose(t *testing.T) {
	a := ndarray.FromSlice([]int{1, 2, 3, 4, 5, 6}, 2, 3)
	tr := a.Transpose()
	require.Equal(t, []int{3, 2}, tr.Shape())
	assert.Equal(t, a.Elem(1, 2), tr.Elem(2, 1))
}

func TestAsConverts(t *testing.T) {
	a := ndarray.FromSlice([]int{1, 2, 3}, 3)
	b := ndarray.As(a, func(x int) float64 { return float64(x) * 2 })
	assert.Equal(t, 4.0, b.Elem(1))
}

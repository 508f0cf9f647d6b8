package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/ring"
	"github.com/luxfi/semi2k/pkg/value"
	"github.com/luxfi/semi2k/pkg/visibility"
)

func scalar(r *ring.Ring, v int64) value.Arr {
	return ndarray.FromSlice([]ring.Elem{r.FromInt64(v)}, 1)
}

func TestConstructorsTagVisibilityAndFracbits(t *testing.T) {
	r := ring.New(64, true)
	pub := value.NewPublic(scalar(r, 7), 16)
	assert.True(t, pub.IsPublic())
	assert.True(t, pub.IsPlain())
	assert.False(t, pub.IsShare())
	assert.Equal(t, 16, pub.FracBits())

	priv := value.NewPrivate(scalar(r, 7), party.ID(2), 16)
	assert.True(t, priv.IsPrivate())
	assert.True(t, priv.IsPlain())
	assert.Equal(t, party.ID(2), priv.Owner())

	sh := value.NewShare(scalar(r, 7), 16)
	assert.True(t, sh.IsShare())
	assert.False(t, sh.IsPlain())
}

func TestWithArrPreservesVisibilityAndFracbits(t *testing.T) {
	r := ring.New(64, true)
	v := value.NewShare(scalar(r, 3), 8)
	v2 := v.WithArr(scalar(r, 9))
	assert.True(t, v2.IsShare())
	assert.Equal(t, 8, v2.FracBits())
	assert.Equal(t, int64(9), v2.Array().Elem(0).Int64())
}

func TestWithFracBitsFinalUnlessForce(t *testing.T) {
	r := ring.New(64, true)
	v := value.NewPublic(scalar(r, 1), 16)

	// Re-asserting the same value without force is fine.
	assert.NotPanics(t, func() { v.WithFracBits(16, false) })

	// Changing it without force panics.
	assert.Panics(t, func() { v.WithFracBits(20, false) })

	// Changing it with force succeeds.
	var forced value.Val
	assert.NotPanics(t, func() { forced = v.WithFracBits(20, true) })
	assert.Equal(t, 20, forced.FracBits())
}

func TestWithVisibilitySetOnceFromUnset(t *testing.T) {
	r := ring.New(64, true)
	v := value.Unset.WithArr(scalar(r, 5))

	var set value.Val
	assert.NotPanics(t, func() { set = v.WithVisibility(visibility.NewShare(), false) })
	assert.True(t, set.IsShare())

	// Once set, changing it without force panics.
	assert.Panics(t, func() { set.WithVisibility(visibility.NewPublic(), false) })
}

func TestString(t *testing.T) {
	r := ring.New(64, true)
	v := value.NewPublic(scalar(r, 1), 4)
	assert.Contains(t, v.String(), "Public")
	assert.Contains(t, v.String(), "frac=4")
}

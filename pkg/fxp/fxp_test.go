package fxp_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luxfi/semi2k/pkg/fxp"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := fxp.NewFormat(128, 40)
	for _, v := range []float64{0, 1, -1, 2.5, -3.75, 12345.6789, -0.0001} {
		got := f.Encode(v).Decode()
		assert.InDelta(t, v, got, math.Pow(2, -40))
	}
}

func TestSaturation(t *testing.T) {
	f := fxp.NewFormat(16, 4)
	big := f.Encode(1e9)
	assert.True(t, big.IsInfinity())

	neg := f.Encode(-1e9)
	assert.Equal(t, f.NegInfinity().V.Unsigned(), neg.V.Unsigned())
}

func TestMulTruncatesScale(t *testing.T) {
	f := fxp.NewFormat(128, 40)
	x := f.Encode(2.5)
	y := f.Encode(4.0)
	got := x.Mul(y).Decode()
	assert.InDelta(t, 10.0, got, 1e-6)
}

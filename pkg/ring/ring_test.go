package ring_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/semi2k/pkg/ring"
)

func TestRingLaws(t *testing.T) {
	r := ring.New(64, true)
	xs := []int64{0, 1, -1, 12345, -98765, 1 << 40, -(1 << 40)}
	for _, xv := range xs {
		for _, yv := range xs {
			for _, zv := range xs {
				x, y, z := r.FromInt64(xv), r.FromInt64(yv), r.FromInt64(zv)
				assert.Equal(t, x.Add(y).Add(z).Unsigned(), x.Add(y.Add(z)).Unsigned(), "associativity of +")
				lhs := x.Mul(y.Add(z))
				rhs := x.Mul(y).Add(x.Mul(z))
				assert.Equal(t, rhs.Unsigned(), lhs.Unsigned(), "distributivity")
			}
		}
	}
}

func TestSignExtensionRoundTrip(t *testing.T) {
	r32 := ring.New(32, true)
	r64 := ring.New(64, true)

	x := r32.FromInt64(-12345)
	widened := x.Convert(r64)
	narrowed := widened.Convert(r32)
	require.Equal(t, x.Unsigned(), narrowed.Unsigned())
	assert.Equal(t, int64(-12345), widened.Int64())
}

func TestMinMax(t *testing.T) {
	r := ring.New(8, true)
	assert.Equal(t, int64(-128), r.Min().Int64())
	assert.Equal(t, int64(127), r.Max().Int64())

	u := ring.New(8, false)
	assert.Equal(t, int64(0), u.Min().Int64())
	assert.Equal(t, int64(255), u.Max().Int64())
}

func TestShiftsAndBits(t *testing.T) {
	r := ring.New(8, true)
	x := r.FromInt64(-2) // 0b11111110
	assert.Equal(t, uint(1), x.MSB())
	assert.Equal(t, int64(-1), x.Rsh(1).Int64())

	u := ring.New(8, false)
	y := u.FromInt64(0xFE)
	assert.Equal(t, int64(0x7F), y.Rsh(1).Int64())
}

func TestBytesRoundTrip(t *testing.T) {
	r := ring.New(128, true)
	x := r.FromBig(big.NewInt(-424242424242))
	b := x.Bytes()
	require.Len(t, b, 16)
	y := r.FromBytesLE(b)
	assert.Equal(t, x.Unsigned(), y.Unsigned())
}

func TestBitwiseOps(t *testing.T) {
	r := ring.New(8, false)
	x := r.FromInt64(0b10101010)
	y := r.FromInt64(0b01010101)
	assert.Equal(t, int64(0b11111111), x.Or(y).Int64())
	assert.Equal(t, int64(0), x.And(y).Int64())
	assert.Equal(t, int64(0b11111111), x.Xor(y).Int64())
	assert.Equal(t, int64(0b01010101), x.Not().Int64())
}

package serde_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/semi2k/pkg/ring"
	"github.com/luxfi/semi2k/pkg/serde"
)

type sample struct {
	Name  string
	Value []byte
}

func TestFrameRoundTrip(t *testing.T) {
	in := sample{Name: "x", Value: []byte{1, 2, 3}}

	frame, err := serde.MarshalFrame(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, serde.UnmarshalFrame(bytes.NewReader(frame), &out))
	assert.Equal(t, in, out)
}

func TestRingElemMarshalBinary(t *testing.T) {
	r := ring.New(64, true)
	x := r.FromInt64(-12345)
	data, err := serde.Marshal(x)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestReadFrameNeverTruncates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, serde.WriteFrame(&buf, []byte("hello world")))
	got, err := serde.ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

package semi2k

import (
	"fmt"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/ring"
)

// encodeShare serializes a Share's row-major elements, per spec.md 6's
// "array view: shape vector then row-major elements" (the shape itself
// is not included: every protocol call already knows its own output
// shape from the matching input shapes, so only the element payload
// crosses the wire).
func encodeShare(x Share) []byte {
	flat := x.Ravel()
	n := flat.Numel()
	if n == 0 {
		return nil
	}
	elemLen := flat.Elem(0).Ring().ByteLen()
	buf := make([]byte, 0, n*elemLen)
	for i := 0; i < n; i++ {
		buf = append(buf, flat.Elem(i).Bytes()...)
	}
	return buf
}

// decodeShare parses data into a Share of the given shape over r.
func decodeShare(r *ring.Ring, data []byte, shape []int) (Share, error) {
	elemLen := r.ByteLen()
	n := numel(shape)
	if len(data) != n*elemLen {
		return Share{}, fmt.Errorf("semi2k: decode share: expected %d bytes, got %d", n*elemLen, len(data))
	}
	out := make([]ring.Elem, n)
	for i := 0; i < n; i++ {
		out[i] = r.FromBytesLE(data[i*elemLen : (i+1)*elemLen])
	}
	return ndarray.FromSlice(out, shape...), nil
}

func numel(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

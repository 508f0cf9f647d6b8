// Package ndarray implements Arr<T>, a reference-counted array view over a
// shared buffer plus (shape, strides, offset), per spec.md 4.2. Mutation
// through one view is visible through every alias of the same buffer;
// copy() is the only explicit materialization point.
package ndarray

import "fmt"

// buffer is the shared backing store. Multiple Array values may alias the
// same buffer; Go's garbage collector plays the role of the reference
// count the spec describes, so there is no explicit refcount field.
type buffer[T any] struct {
	data []T
}

// Array is a view: a shared buffer plus shape, strides (in elements, not
// bytes), and an offset. A stride of 0 denotes broadcasting along that
// dimension.
type Array[T any] struct {
	buf     *buffer[T]
	shape   []int
	strides []int
	offset  int
}

// New allocates a fresh, compact, row-major array of the given shape,
// filled with the zero value of T.
func New[T any](shape ...int) Array[T] {
	n := numel(shape)
	return Array[T]{
		buf:     &buffer[T]{data: make([]T, n)},
		shape:   append([]int(nil), shape...),
		strides: compactStrides(shape),
		offset:  0,
	}
}

// FromSlice wraps a flat, row-major slice as a compact array of the given
// shape. The slice is taken by reference: mutating elements through the
// returned Array mutates data.
func FromSlice[T any](data []T, shape ...int) Array[T] {
	if numel(shape) != len(data) {
		panic(fmt.Sprintf("ndarray: shape %v does not match %d elements", shape, len(data)))
	}
	return Array[T]{
		buf:     &buffer[T]{data: data},
		shape:   append([]int(nil), shape...),
		strides: compactStrides(shape),
		offset:  0,
	}
}

func numel(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

func compactStrides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}
	return s
}

// Shape returns the view's shape. The returned slice is a copy.
func (a Array[T]) Shape() []int { return append([]int(nil), a.shape...) }

// Strides returns the view's element strides. The returned slice is a copy.
func (a Array[T]) Strides() []int { return append([]int(nil), a.strides...) }

// Numel returns the product of the shape, i.e. the number of logical
// elements the view exposes.
func (a Array[T]) Numel() int { return numel(a.shape) }

// Rank returns the number of dimensions.
func (a Array[T]) Rank() int { return len(a.shape) }

func (a Array[T]) flatOffset(index []int) int {
	if len(index) != len(a.shape) {
		panic(fmt.Sprintf("ndarray: index rank %d does not match array rank %d", len(index), len(a.shape)))
	}
	off := a.offset
	for i, ix := range index {
		if ix < 0 {
			ix += a.shape[i]
		}
		if ix < 0 || ix >= a.shape[i] {
			panic(fmt.Sprintf("ndarray: index %d out of range for dim %d (size %d)", index[i], i, a.shape[i]))
		}
		off += ix * a.strides[i]
	}
	return off
}

// Elem returns the element at the given multi-index, with bounds checks
// and negative-index-from-end support.
func (a Array[T]) Elem(index ...int) T {
	return a.buf.data[a.flatOffset(index)]
}

// SetElem mutates the element at the given multi-index in place, visible
// through every alias of the same buffer.
func (a Array[T]) SetElem(value T, index ...int) {
	a.buf.data[a.flatOffset(index)] = value
}

// isCompact reports whether the view's strides match row-major compact
// strides for its shape with a zero offset.
func (a Array[T]) isCompact() bool {
	if a.offset != 0 {
		return false
	}
	want := compactStrides(a.shape)
	for i := range want {
		if a.shape[i] > 1 && a.strides[i] != want[i] {
			return false
		}
	}
	return true
}

// isLinear reports whether the view's strides are a uniform scalar
// multiple of compact strides (so that reshape can share the buffer).
func (a Array[T]) isLinear() (scale int, ok bool) {
	compact := compactStrides(a.shape)
	scale = 1
	for i, s := range a.shape {
		if s <= 1 {
			continue
		}
		if compact[i] == 0 {
			continue
		}
		if !ok {
			if a.strides[i]%compact[i] != 0 {
				return 0, false
			}
			scale = a.strides[i] / compact[i]
			ok = true
			continue
		}
		if a.strides[i] != scale*compact[i] {
			return 0, false
		}
	}
	if !ok {
		scale = 1
		ok = true
	}
	return scale, ok
}

// Compact returns a view with compact row-major strides: the identity if
// the view already is compact, else an allocating Copy.
func (a Array[T]) Compact() Array[T] {
	if a.isCompact() {
		return a
	}
	return a.Copy()
}

// Copy always allocates a fresh compact buffer, preserving row-major
// element order.
func (a Array[T]) Copy() Array[T] {
	out := New[T](a.shape...)
	idx := make([]int, len(a.shape))
	for i := 0; i < a.Numel(); i++ {
		unravel(i, a.shape, idx)
		out.SetElem(a.Elem(idx...), idx...)
	}
	return out
}

func unravel(linear int, shape []int, idx []int) {
	for d := len(shape) - 1; d >= 0; d-- {
		if shape[d] == 0 {
			idx[d] = 0
			continue
		}
		idx[d] = linear % shape[d]
		linear /= shape[d]
	}
}

// Reshape returns a view of newShape over the same buffer if the current
// strides are linear (sharing the buffer), else materializes a compacted
// copy first.
func (a Array[T]) Reshape(newShape ...int) Array[T] {
	if numel(newShape) != a.Numel() {
		panic(fmt.Sprintf("ndarray: cannot reshape %v into %v", a.shape, newShape))
	}
	scale, ok := a.isLinear()
	if !ok {
		return a.Compact().Reshape(newShape...)
	}
	strides := compactStrides(newShape)
	for i := range strides {
		strides[i] *= scale
	}
	return Array[T]{buf: a.buf, shape: append([]int(nil), newShape...), strides: strides, offset: a.offset}
}

// Transpose reverses shape and strides.
func (a Array[T]) Transpose() Array[T] {
	n := len(a.shape)
	shape := make([]int, n)
	strides := make([]int, n)
	for i := 0; i < n; i++ {
		shape[i] = a.shape[n-1-i]
		strides[i] = a.strides[n-1-i]
	}
	return Array[T]{buf: a.buf, shape: shape, strides: strides, offset: a.offset}
}

// BroadcastTo pads shape on the left with ones and then requires, for
// each dimension, the source size to be 1 or equal to the target; size-1
// dimensions get a zero stride. BroadcastTo never allocates.
func (a Array[T]) BroadcastTo(target ...int) Array[T] {
	pad := len(target) - len(a.shape)
	if pad < 0 {
		panic(fmt.Sprintf("ndarray: cannot broadcast rank %d into rank %d", len(a.shape), len(target)))
	}
	shape := make([]int, len(a.shape)+pad)
	strides := make([]int, len(shape))
	for i := 0; i < pad; i++ {
		shape[i] = 1
		strides[i] = 0
	}
	copy(shape[pad:], a.shape)
	copy(strides[pad:], a.strides)

	outStrides := make([]int, len(target))
	for i := range target {
		switch {
		case shape[i] == target[i]:
			outStrides[i] = strides[i]
		case shape[i] == 1:
			outStrides[i] = 0
		default:
			panic(fmt.Sprintf("ndarray: cannot broadcast dim %d (%d) to %d", i, shape[i], target[i]))
		}
	}
	return Array[T]{buf: a.buf, shape: append([]int(nil), target...), strides: outStrides, offset: a.offset}
}

// Permute is defined only for 1-D views: out[i] = self.Elem(idx[i]).
// It always produces a fresh compact buffer.
func (a Array[T]) Permute(idx []int) Array[T] {
	if a.Rank() != 1 {
		panic("ndarray: Permute is only defined for 1-D arrays")
	}
	out := New[T](len(idx))
	for i, ix := range idx {
		out.SetElem(a.Elem(ix), i)
	}
	return out
}

// Substitute is defined only for 1-D views: returns a compact copy of
// self, except at positions idx[i] which take value.Elem(i). len(idx)
// must equal value.Numel().
func (a Array[T]) Substitute(idx []int, value Array[T]) Array[T] {
	if a.Rank() != 1 {
		panic("ndarray: Substitute is only defined for 1-D arrays")
	}
	if len(idx) != value.Numel() {
		panic("ndarray: Substitute index length must match value.Numel()")
	}
	out := a.Copy()
	for i, ix := range idx {
		out.SetElem(value.Elem(i), ix)
	}
	return out
}

// Ravel flattens the view into a 1-D compact array in row-major order,
// sharing the buffer when the view is already compact and copying
// otherwise; this is the "flatten" step the dispatch layer performs before
// calling a protocol primitive.
func (a Array[T]) Ravel() Array[T] {
	return a.Compact().Reshape(a.Numel())
}

// Slice describes one dimension's slicing parameters, mirroring
// Python-style [start:stop:step] with negative-index-from-end and
// negative-step-reverses semantics. A zero Step is treated as 1.
type Slice struct {
	Start, Stop, Step int
	HasStart          bool
	HasStop           bool
}

func normalizeIndex(i, size int) int {
	if i < 0 {
		i += size
	}
	return i
}

// resolve applies a Slice to one dimension, returning the new size, stride
// multiplier, and base offset contribution.
func (s Slice) resolve(size int) (newSize, stride, base int) {
	step := s.Step
	if step == 0 {
		step = 1
	}
	var start, stop int
	if step > 0 {
		start, stop = 0, size
	} else {
		start, stop = size-1, -1
	}
	if s.HasStart {
		start = normalizeIndex(s.Start, size)
	}
	if s.HasStop {
		stop = normalizeIndex(s.Stop, size)
	}
	if step > 0 {
		if start < 0 {
			start = 0
		}
		if stop > size {
			stop = size
		}
		if stop < start {
			stop = start
		}
		newSize = (stop - start + step - 1) / step
	} else {
		if start > size-1 {
			start = size - 1
		}
		if stop < -1 {
			stop = -1
		}
		if start < stop {
			start = stop
		}
		newSize = (start - stop + (-step) - 1) / (-step)
	}
	return newSize, step, start
}

// SliceArg is either a Slice (kept as a dimension) or an int (drops the
// dimension).
type SliceArg struct {
	S       Slice
	Index   int
	IsIndex bool
}

// Dim constructs a SliceArg that keeps the dimension.
func Dim(s Slice) SliceArg { return SliceArg{S: s} }

// At constructs a SliceArg that drops the dimension at a fixed index.
func At(i int) SliceArg { return SliceArg{Index: i, IsIndex: true} }

// Slice produces a new view sharing the buffer, applying one SliceArg per
// dimension (trailing dimensions default to the full range).
func (a Array[T]) Slice(args ...SliceArg) Array[T] {
	if len(args) > a.Rank() {
		panic("ndarray: too many slice arguments")
	}
	var shape, strides []int
	offset := a.offset
	for d := 0; d < a.Rank(); d++ {
		if d >= len(args) {
			shape = append(shape, a.shape[d])
			strides = append(strides, a.strides[d])
			continue
		}
		arg := args[d]
		if arg.IsIndex {
			ix := normalizeIndex(arg.Index, a.shape[d])
			if ix < 0 || ix >= a.shape[d] {
				panic(fmt.Sprintf("ndarray: index %d out of range for dim %d", arg.Index, d))
			}
			offset += ix * a.strides[d]
			continue
		}
		size, step, start := arg.S.resolve(a.shape[d])
		shape = append(shape, size)
		strides = append(strides, step*a.strides[d])
		offset += start * a.strides[d]
	}
	return Array[T]{buf: a.buf, shape: shape, strides: strides, offset: offset}
}

// Equal reports elementwise equality using the given comparator.
func Equal[T any](a, b Array[T], eq func(x, y T) bool) bool {
	if a.Numel() != b.Numel() || len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	idx := make([]int, a.Rank())
	for i := 0; i < a.Numel(); i++ {
		unravel(i, a.shape, idx)
		if !eq(a.Elem(idx...), b.Elem(idx...)) {
			return false
		}
	}
	return true
}

// As elementwise-converts a into a freshly allocated compact array of U.
func As[T, U any](a Array[T], conv func(T) U) Array[U] {
	out := New[U](a.shape...)
	idx := make([]int, a.Rank())
	for i := 0; i < a.Numel(); i++ {
		unravel(i, a.shape, idx)
		out.SetElem(conv(a.Elem(idx...)), idx...)
	}
	return out
}

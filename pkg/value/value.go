// Package value implements VAL, the visibility- and fixed-point-tagged
// numeric value spec.md 4.6 dispatches over, grounded on
// original_source/src/context/basic/fxp.hpp and raw.hpp's Value contract
// (is_public/is_private/is_share/owner/fracbits/set_visibility/
// set_fracbits), adapted from C++ templates into a plain Go struct.
package value

import (
	"fmt"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/ring"
	"github.com/luxfi/semi2k/pkg/visibility"
)

// Arr is the array type a Val carries: plain ring elements when Public
// or Private, this party's additive share when Share.
type Arr = ndarray.Array[ring.Elem]

// Val is one numeric value in the visibility-dispatched tower: an array
// view, its visibility tag, and its fixed-point scale (fracbits). Once
// visibility or fracbits are set they are final unless a caller passes
// force=true, per spec.md 7's "double-set of fracbits/visibility" being
// a contract error.
type Val struct {
	arr     Arr
	vis     visibility.V
	frac    int
	fracSet bool
}

// NewPublic wraps arr as a Public value with the given fracbits.
func NewPublic(arr Arr, fracbits int) Val {
	return Val{arr: arr, vis: visibility.NewPublic(), frac: fracbits, fracSet: true}
}

// NewPrivate wraps arr as a Private(owner) value. Only owner's arr
// contents are meaningful; other parties carry a same-shaped
// placeholder.
func NewPrivate(arr Arr, owner party.ID, fracbits int) Val {
	return Val{arr: arr, vis: visibility.NewPrivate(owner), frac: fracbits, fracSet: true}
}

// NewShare wraps arr as this party's additive Share of a value.
func NewShare(arr Arr, fracbits int) Val {
	return Val{arr: arr, vis: visibility.NewShare(), frac: fracbits, fracSet: true}
}

// Unset is the zero Val: Invalid visibility, no fracbits yet.
var Unset = Val{vis: visibility.Unset}

func (v Val) Array() Arr                 { return v.arr }
func (v Val) Shape() []int               { return v.arr.Shape() }
func (v Val) Vis() visibility.V          { return v.vis }
func (v Val) FracBits() int              { return v.frac }
func (v Val) IsPublic() bool             { return v.vis.Kind() == visibility.Public }
func (v Val) IsPrivate() bool            { return v.vis.Kind() == visibility.PrivateKind }
func (v Val) IsShare() bool              { return v.vis.Kind() == visibility.Share }
func (v Val) IsPlain() bool              { return v.vis.IsPlain() }
func (v Val) Owner() party.ID            { return v.vis.Owner() }

// WithArr returns a copy of v with a replacement array, same
// visibility/fracbits — used by dispatch to assemble a result after
// calling a protocol op.
func (v Val) WithArr(arr Arr) Val {
	v.arr = arr
	return v
}

// WithVisibility sets v's visibility, final unless force (spec.md 7).
func (v Val) WithVisibility(next visibility.V, force bool) Val {
	v.vis = v.vis.SetOnce(next, force)
	return v
}

// WithFracBits sets v's fracbits, final unless force (spec.md 7): the
// fxp dispatch layer always calls this with force=true since it is the
// sole owner of the invariant, but a user-facing constructor should not
// be able to silently rewrite a value's scale.
func (v Val) WithFracBits(n int, force bool) Val {
	if !v.fracSet || force {
		v.fracSet = true
		v.frac = n
		return v
	}
	if v.frac == n {
		return v
	}
	panic(fmt.Sprintf("value: cannot change fracbits from %d to %d without force", v.frac, n))
}

func (v Val) String() string {
	return fmt.Sprintf("Val{%s, frac=%d, shape=%v}", v.vis, v.frac, v.arr.Shape())
}

// Package visibility defines V, the sharing state of a value, per
// spec.md's data model and original_source/src/context/basic/raw.hpp's
// 3/4-way dispatch tags.
package visibility

import (
	"fmt"

	"github.com/luxfi/semi2k/pkg/party"
)

// Kind distinguishes the four visibility states a Val can be in.
type Kind int

const (
	Invalid Kind = iota
	Public
	PrivateKind
	Share
)

func (k Kind) String() string {
	switch k {
	case Public:
		return "Public"
	case PrivateKind:
		return "Private"
	case Share:
		return "Share"
	default:
		return "Invalid"
	}
}

// V is a visibility tag: Public, Private(owner), Share, or Invalid.
// Once set from Invalid it is final unless the caller passes Force.
type V struct {
	kind  Kind
	owner party.ID
}

// Unset is the zero value: Invalid.
var Unset = V{kind: Invalid}

// NewPublic returns the Public visibility.
func NewPublic() V { return V{kind: Public} }

// NewPrivate returns Private(owner).
func NewPrivate(owner party.ID) V { return V{kind: PrivateKind, owner: owner} }

// NewShare returns the Share visibility.
func NewShare() V { return V{kind: Share} }

// Kind returns the visibility's kind.
func (v V) Kind() Kind { return v.kind }

// Owner returns the owning party for Private visibility; it panics if v
// is not Private.
func (v V) Owner() party.ID {
	if v.kind != PrivateKind {
		panic("visibility: Owner called on non-Private value")
	}
	return v.owner
}

// IsPlain reports whether v is Public or Private, i.e. backed by a plain
// (non-share) array.
func (v V) IsPlain() bool { return v.kind == Public || v.kind == PrivateKind }

// IsShare reports whether v is Share.
func (v V) IsShare() bool { return v.kind == Share }

// SetOnce transitions from Invalid to next, or to any next if force is
// set, per the "final unless force" invariant. Re-asserting the current
// value needs no force; it panics on any other transition attempt.
func (cur V) SetOnce(next V, force bool) V {
	if cur.kind == Invalid || force {
		return next
	}
	if cur == next {
		return cur
	}
	panic(fmt.Sprintf("visibility: cannot change %s to %s without force", cur, next))
}

func (v V) String() string {
	if v.kind == PrivateKind {
		return fmt.Sprintf("Private(%d)", v.owner)
	}
	return v.kind.String()
}

// Equal reports structural equality (kind and, for Private, owner).
func (v V) Equal(o V) bool { return v == o }

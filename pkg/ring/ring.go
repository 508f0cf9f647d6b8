// Package ring implements Z2<K, Signed>, a modular integer ring with exact
// K-bit semantics: wraparound arithmetic, bitwise operators, sign-aware
// shifts and conversions, and two's-complement little-endian serialization.
//
// The arithmetic path (Add/Sub/Mul) is carried out on saferith.Nat values
// reduced modulo 2^K, since those are the operations that touch
// secret-shared data in the protocol layer above. Bitwise operators and
// shifts have no saferith equivalent and round-trip through math/big; see
// DESIGN.md for why that split is not a compromise of the "no stdlib
// fallback" rule.
package ring

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
)

// Ring describes the modulus Z/2^K Z and whether its elements are
// interpreted as signed two's-complement integers.
type Ring struct {
	K       int
	Signed  bool
	modulus *saferith.Modulus
}

// New returns the ring Z/2^K Z with the given signedness. K must be >= 1.
func New(k int, signed bool) *Ring {
	if k < 1 {
		panic(fmt.Sprintf("ring: invalid bit width %d", k))
	}
	m := new(big.Int).Lsh(big.NewInt(1), uint(k))
	return &Ring{K: k, Signed: signed, modulus: saferith.ModulusFromBytes(m.Bytes())}
}

func (r *Ring) byteLen() int { return (r.K + 7) / 8 }

// ByteLen returns ceil(K/8), the width of Bytes()/FromBytesLE's encoding.
func (r *Ring) ByteLen() int { return r.byteLen() }

func (r *Ring) mask() *big.Int {
	one := big.NewInt(1)
	return new(big.Int).Sub(new(big.Int).Lsh(one, uint(r.K)), one)
}

// Elem is a single element of a Ring: an unsigned bit pattern in [0, 2^K)
// together with a signedness tag inherited from its Ring, used only to
// interpret comparisons, shifts, and conversions.
type Elem struct {
	ring *Ring
	v    *big.Int // always normalized to [0, 2^K)
}

func (r *Ring) elem(v *big.Int) Elem {
	n := new(big.Int).And(v, r.mask())
	if n.Sign() < 0 {
		n.Add(n, new(big.Int).Lsh(big.NewInt(1), uint(r.K)))
	}
	return Elem{ring: r, v: n}
}

// Zero returns the additive identity.
func (r *Ring) Zero() Elem { return r.elem(big.NewInt(0)) }

// One returns the multiplicative identity.
func (r *Ring) One() Elem { return r.elem(big.NewInt(1)) }

// Min returns the smallest representable value: 0 for unsigned rings,
// -2^(K-1) for signed rings.
func (r *Ring) Min() Elem {
	if !r.Signed {
		return r.Zero()
	}
	lo := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(r.K-1)))
	return r.elem(lo)
}

// Max returns the largest representable value: 2^K-1 for unsigned rings,
// 2^(K-1)-1 for signed rings.
func (r *Ring) Max() Elem {
	if !r.Signed {
		return r.elem(r.mask())
	}
	hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(r.K-1)), big.NewInt(1))
	return r.elem(hi)
}

// FromInt64 embeds a machine integer into the ring.
func (r *Ring) FromInt64(x int64) Elem { return r.elem(big.NewInt(x)) }

// FromBig embeds an arbitrary-precision integer into the ring, reducing
// it modulo 2^K.
func (r *Ring) FromBig(x *big.Int) Elem { return r.elem(new(big.Int).Set(x)) }

// FromBytesLE decodes a K-bit two's-complement little-endian byte string,
// as produced by Bytes.
func (r *Ring) FromBytesLE(b []byte) Elem {
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	return r.elem(new(big.Int).SetBytes(be))
}

// Ring returns the element's parent ring.
func (e Elem) Ring() *Ring { return e.ring }

func (e Elem) nat() *saferith.Nat {
	return new(saferith.Nat).SetBig(e.v, e.ring.K)
}

func (r *Ring) fromNat(n *saferith.Nat) Elem {
	return r.elem(n.Big())
}

// Add returns x + y mod 2^K.
func (x Elem) Add(y Elem) Elem {
	x.assertSameRing(y)
	return x.ring.fromNat(new(saferith.Nat).ModAdd(x.nat(), y.nat(), x.ring.modulus))
}

// Sub returns x - y mod 2^K.
func (x Elem) Sub(y Elem) Elem {
	x.assertSameRing(y)
	return x.ring.fromNat(new(saferith.Nat).ModSub(x.nat(), y.nat(), x.ring.modulus))
}

// Mul returns x * y mod 2^K.
func (x Elem) Mul(y Elem) Elem {
	x.assertSameRing(y)
	return x.ring.fromNat(new(saferith.Nat).ModMul(x.nat(), y.nat(), x.ring.modulus))
}

// Neg returns -x mod 2^K.
func (x Elem) Neg() Elem {
	return x.ring.fromNat(new(saferith.Nat).ModNeg(x.nat(), x.ring.modulus))
}

// Not returns the bitwise complement of the low K bits.
func (x Elem) Not() Elem {
	return x.ring.elem(new(big.Int).Xor(x.v, x.ring.mask()))
}

// And returns the bitwise AND of the low K bits.
func (x Elem) And(y Elem) Elem {
	x.assertSameRing(y)
	return x.ring.elem(new(big.Int).And(x.v, y.v))
}

// Or returns the bitwise OR of the low K bits.
func (x Elem) Or(y Elem) Elem {
	x.assertSameRing(y)
	return x.ring.elem(new(big.Int).Or(x.v, y.v))
}

// Xor returns the bitwise XOR of the low K bits.
func (x Elem) Xor(y Elem) Elem {
	x.assertSameRing(y)
	return x.ring.elem(new(big.Int).Xor(x.v, y.v))
}

// Lsh returns x << n mod 2^K.
func (x Elem) Lsh(n uint) Elem {
	return x.ring.elem(new(big.Int).Lsh(x.v, n))
}

// Rsh returns x >> n: arithmetic (sign-extending) for signed rings,
// logical for unsigned rings. A shift of K or more is consistent with
// repeated single-bit shifts, i.e. it saturates to 0 or -1.
func (x Elem) Rsh(n uint) Elem {
	if !x.ring.Signed {
		return x.ring.elem(new(big.Int).Rsh(x.v, n))
	}
	signed := x.Signed()
	return x.ring.elem(new(big.Int).Rsh(signed, n))
}

// Signed returns the element's value interpreted as a K-bit two's
// complement integer (ignoring the ring's Signed flag).
func (x Elem) Signed() *big.Int {
	if x.MSB() == 0 {
		return new(big.Int).Set(x.v)
	}
	return new(big.Int).Sub(x.v, new(big.Int).Lsh(big.NewInt(1), uint(x.ring.K)))
}

// Unsigned returns the element's raw bit pattern as a non-negative
// integer in [0, 2^K).
func (x Elem) Unsigned() *big.Int { return new(big.Int).Set(x.v) }

// Int64 returns the element's interpreted value as an int64. It panics if
// the value does not fit, which callers should avoid for K > 64.
func (x Elem) Int64() int64 {
	if x.ring.Signed {
		return x.Signed().Int64()
	}
	return x.v.Int64()
}

// MSB returns bit K-1, the sign bit under two's complement.
func (x Elem) MSB() uint { return x.Bit(x.ring.K - 1) }

// Bit returns bit i, 0 <= i < K.
func (x Elem) Bit(i int) uint {
	x.assertBitIndex(i)
	return x.v.Bit(i)
}

// SetBit returns a copy of x with bit i set to v (0 or 1).
func (x Elem) SetBit(i int, v uint) Elem {
	x.assertBitIndex(i)
	n := new(big.Int).Set(x.v)
	n.SetBit(n, i, v)
	return x.ring.elem(n)
}

// Cmp compares the interpreted numeric values of x and y, which must
// belong to rings of equal signedness (not necessarily equal width).
func (x Elem) Cmp(y Elem) int {
	xv, yv := x.interpreted(), y.interpreted()
	return xv.Cmp(yv)
}

func (x Elem) interpreted() *big.Int {
	if x.ring.Signed {
		return x.Signed()
	}
	return x.Unsigned()
}

// IsZero reports whether x is the additive identity.
func (x Elem) IsZero() bool { return x.v.Sign() == 0 }

// Convert reinterprets x in a ring of possibly different width and
// signedness: high bits are truncated if narrowing, and sign-extended iff
// the source ring is signed and the target is wider, else zero-extended.
func (x Elem) Convert(target *Ring) Elem {
	if target.K >= x.ring.K && x.ring.Signed {
		return target.elem(x.Signed())
	}
	return target.elem(x.Unsigned())
}

// Bytes encodes x as ceil(K/8) little-endian bytes of its two's
// complement bit pattern.
func (x Elem) Bytes() []byte {
	be := make([]byte, x.ring.byteLen())
	x.v.FillBytes(be)
	le := make([]byte, len(be))
	for i, c := range be {
		le[len(be)-1-i] = c
	}
	return le
}

// MarshalBinary implements encoding.BinaryMarshaler for wire framing.
func (x Elem) MarshalBinary() ([]byte, error) { return x.Bytes(), nil }

func (x Elem) String() string {
	if x.ring.Signed {
		return x.Signed().String()
	}
	return x.v.String()
}

func (x Elem) assertSameRing(y Elem) {
	if x.ring.K != y.ring.K || x.ring.Signed != y.ring.Signed {
		panic(fmt.Sprintf("ring: operand ring mismatch: R_%d,%v vs R_%d,%v", x.ring.K, x.ring.Signed, y.ring.K, y.ring.Signed))
	}
}

func (x Elem) assertBitIndex(i int) {
	if i < 0 || i >= x.ring.K {
		panic(fmt.Sprintf("ring: bit index %d out of range for K=%d", i, x.ring.K))
	}
}

// PutUint64LE is a small helper mirroring the wire format's length-prefix
// convention (u64 little-endian).
func PutUint64LE(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	return b
}

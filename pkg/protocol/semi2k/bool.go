package semi2k

import (
	"context"
	"fmt"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/ring"
)

// bitRing is R_{1,unsigned}, the single-bit ring the boolean-domain
// primitives of spec.md 4.5 operate over, shared via the same additive
// sharing and Beaver machinery as the main K-bit protocol (mod-2
// addition is XOR, mod-2 multiplication is AND).
func bitRing() *ring.Ring { return ring.New(1, false) }

func wrap1(e ring.Elem) Share       { return ndarray.FromSlice([]ring.Elem{e}, 1) }
func unwrap1(x Share) ring.Elem     { return x.Elem(0) }
func constShare(e ring.Elem, n int) Share {
	data := make([]ring.Elem, n)
	for i := range data {
		data[i] = e
	}
	return ndarray.FromSlice(data, n)
}

// notOn computes the elementwise boolean complement of a share holding
// 0/1 values in r: ¬x = 1 - x, crediting the constant 1 only at party 0
// per the add_sp convention (spec.md 4.5, 9). r need not be the 1-bit
// ring: bit-valued shares embedded in the K-bit ring (as BitdecS
// returns) support the same boolean algebra.
func (p *Protocol) notOn(r *ring.Ring, x Share) Share {
	ones := constShare(r.One(), x.Numel()).Reshape(x.Shape()...)
	return p.AddSP(p.NegS(x), ones)
}

// notS is notOn specialized to the 1-bit ring.
func (p *Protocol) notS(x Share) Share { return p.notOn(bitRing(), x) }

// orOn computes the elementwise boolean OR of two 0/1-valued shares in
// r: ¬((¬x)·(¬y)), per spec.md 4.5.
func (p *Protocol) orOn(ctx context.Context, r *ring.Ring, x, y Share) (Share, error) {
	v, err := p.mulOn(ctx, r, p.notOn(r, x), p.notOn(r, y))
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: or_ss: %w", err)
	}
	return p.notOn(r, v), nil
}

// OrSS is orOn specialized to the 1-bit ring, the form spec.md 4.5
// defines or_ss in.
func (p *Protocol) OrSS(ctx context.Context, x, y Share) (Share, error) {
	return p.orOn(ctx, bitRing(), x, y)
}

// A2B takes each K-bit share's bit 0, valid when the underlying value is
// known to be a bit (0 or 1), per spec.md 4.5.
func (p *Protocol) A2B(x Share) Share {
	return mapE(x, func(e ring.Elem) ring.Elem { return bitRing().FromInt64(int64(e.Bit(0))) })
}

// B2A lifts a 1-bit share to the K-bit ring target, per spec.md 4.5: draw
// a fresh random-bit correlation ⟨r⟩_K from preprocessing, open
// c = ⟨x⟩_2 + A2B(⟨r⟩_K) in the bit ring, then reconstruct
// ⟨x⟩_K = ⟨r⟩_K − 2·⟨r⟩_K·c_K + c_K locally (the final +c_K uses the
// add_sp convention since c_K is a public value).
func (p *Protocol) B2A(ctx context.Context, target *ring.Ring, x Share) (Share, error) {
	n := x.Numel()
	rK, err := p.prep.RandBits(target, n)
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: b2a: randbits: %w", err)
	}
	rK = rK.Reshape(x.Shape()...)
	r2 := p.A2B(rK)

	c2, err := p.openOn(ctx, bitRing(), zipE(x, r2, ring.Elem.Add))
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: b2a: open: %w", err)
	}
	cK := mapE(c2, func(e ring.Elem) ring.Elem { return target.FromInt64(e.Int64()) })

	twoRC := mapE(zipE(rK, cK, ring.Elem.Mul), func(e ring.Elem) ring.Elem { return e.Lsh(1) })
	diff := zipE(rK, twoRC, ring.Elem.Sub)
	return p.AddSP(diff, cK), nil
}

// addBitsWithCarry runs the ripple-carry circuit spec.md 4.5 specifies
// for add_pb: sum_i = p_i ⊕ ⟨b_i⟩ ⊕ c, c' = (p_i⊕⟨b_i⟩)·c ⊕ p_i·⟨b_i⟩.
// plainBits and bitShares are ordered bit 0 first; carryIn seeds the
// first column (bitltPS needs 1, add_pb needs 0). Every column after the
// first depends on the previous column's carry, which is itself a share,
// so this runs one Beaver multiplication per bit sequentially — it
// cannot be parallelized across bits.
func (p *Protocol) addBitsWithCarry(ctx context.Context, plainBits, bitShares Share, carryIn ring.Elem, wantCarryOut bool) (Share, error) {
	n := plainBits.Numel()
	r1 := bitRing()
	carry := wrap1(carryIn)

	out := make([]ring.Elem, 0, n+1)
	for i := 0; i < n; i++ {
		pi := constShare(plainBits.Elem(i), 1)
		bi := wrap1(bitShares.Elem(i))

		pxorb := p.AddSP(bi, pi)
		sumI := zipE(pxorb, carry, ring.Elem.Add)
		out = append(out, unwrap1(sumI))

		last := i == n-1
		if last && !wantCarryOut {
			break
		}
		term1, err := p.mulOn(ctx, r1, pxorb, carry)
		if err != nil {
			return Share{}, fmt.Errorf("semi2k: add_pb: carry at bit %d: %w", i, err)
		}
		term2 := p.MulSP(bi, pi)
		carry = zipE(term1, term2, ring.Elem.Add)
	}
	if wantCarryOut {
		out = append(out, unwrap1(carry))
	}
	return ndarray.FromSlice(out, len(out)), nil
}

// AddPB is add_pb with no carry in: a ripple addition of a public bit
// vector into a share bit vector, per spec.md 4.5.
func (p *Protocol) AddPB(ctx context.Context, plainBits, bitShares Share, carryOut bool) (Share, error) {
	return p.addBitsWithCarry(ctx, plainBits, bitShares, bitRing().Zero(), carryOut)
}

// BitltPS computes [plainX < ⟨y⟩] via the standard two's-complement
// subtraction-as-addition trick: y - x = y + (~x) + 1 (mod 2^n), and
// x < y iff that addition produces no final carry, per spec.md 4.5's
// bitlt_ps description of running the same carry circuit.
func (p *Protocol) BitltPS(ctx context.Context, plainX, yBits Share) (Share, error) {
	notX := mapE(plainX, func(e ring.Elem) ring.Elem { return bitRing().One().Sub(e) })
	sum, err := p.addBitsWithCarry(ctx, notX, yBits, bitRing().One(), true)
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: bitlt_ps: %w", err)
	}
	carryOut := wrap1(sum.Elem(sum.Numel() - 1))
	return p.notS(carryOut), nil
}

package prep

import (
	"crypto/sha256"
	"fmt"
	"sync/atomic"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/ring"
)

// Mock is a deterministic, non-trivial Preprocessing: every party holding
// the same root seed can independently derive its own share of each
// correlation without further communication, by expanding the seed
// through prg. It is not secure preprocessing (the "dealer" values are
// reconstructible by anyone who learns the seed) but it exercises the
// real wire format and protocol logic the way the offline phase would,
// which spec.md 9 calls out as the deliberate scope cut for this
// exercise.
//
// Party 0 plays the role original_source's dealer plays: it is the only
// party that ever materializes a full (non-shared) correlation value, by
// summing the other parties' independently-derived shares and
// subtracting from the full value it can also derive from the seed.
// Every other party only ever computes its own share.
type Mock struct {
	self party.ID
	n    int
	prg  *prg

	seqTriple uint64
	seqMatrix uint64
	seqBit    uint64
	seqR      uint64
}

var _ Preprocessing = (*Mock)(nil)

// NewMockWithSeed builds a Mock from a root seed already agreed out of
// band by all n parties (e.g. distributed alongside the party
// configuration). self and n must be consistent across all parties
// sharing this seed.
func NewMockWithSeed(seed []byte, self party.ID, n int) (*Mock, error) {
	if int(self) >= n {
		return nil, fmt.Errorf("semi2k/prep: self %d out of range for n=%d", self, n)
	}
	p, err := newPRG(seed)
	if err != nil {
		return nil, fmt.Errorf("semi2k/prep: derive root key: %w", err)
	}
	return &Mock{self: self, n: n, prg: p}, nil
}

// NewMockPairwise builds a 2-party Mock whose root seed is the ECDH
// shared secret between priv (this party's key) and peerPub (the other
// party's public key), hashed with a domain tag so the raw curve point
// never reaches the PRG directly. This is the concrete instantiation of
// "pairwise ECDH-seeded preprocessing" for the 2-party case spec.md's
// worked examples use; general n-party agreement needs a broadcast or
// PAKE step out of this library's scope.
func NewMockPairwise(priv *secp256k1.PrivateKey, peerPub *secp256k1.PublicKey, self, peer party.ID) (*Mock, error) {
	if self == peer || (self != 0 && self != 1) || (peer != 0 && peer != 1) {
		return nil, fmt.Errorf("semi2k/prep: pairwise ECDH preprocessing is 2-party only")
	}
	var sharedX secp256k1.FieldVal
	var pub secp256k1.JacobianPoint
	peerPub.AsJacobian(&pub)
	var result secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&priv.Key, &pub, &result)
	result.ToAffine()
	sharedX = result.X

	digest := sha256.Sum256(append([]byte("semi2k/prep/ecdh"), sharedX.Bytes()[:]...))
	return NewMockWithSeed(digest[:], self, 2)
}

func (m *Mock) next(ctr *uint64) uint64 { return atomic.AddUint64(ctr, 1) - 1 }

// deriveShare returns this party's share of a correlation whose true
// value is full(): party 0's share is full() minus every other party's
// independently-derived pseudorandom share; every other party's share is
// its own pseudorandom value, so the shares always sum to full().
func (m *Mock) deriveShare(r *ring.Ring, base string, idx uint64, full func() (ring.Elem, error)) (ring.Elem, error) {
	if m.self == 0 {
		sum := r.Zero()
		for j := 1; j < m.n; j++ {
			s, err := m.prg.elem(r, fmt.Sprintf("%s/share/%d", base, j), idx)
			if err != nil {
				return ring.Elem{}, err
			}
			sum = sum.Add(s)
		}
		fv, err := full()
		if err != nil {
			return ring.Elem{}, err
		}
		return fv.Sub(sum), nil
	}
	return m.prg.elem(r, fmt.Sprintf("%s/share/%d", base, m.self), idx)
}

func (m *Mock) triple(r *ring.Ring, base string, idx uint64) (a, b, c ring.Elem, err error) {
	aFull := func() (ring.Elem, error) { return m.prg.elem(r, base+"/full-a", idx) }
	bFull := func() (ring.Elem, error) { return m.prg.elem(r, base+"/full-b", idx) }
	cFull := func() (ring.Elem, error) {
		af, err := aFull()
		if err != nil {
			return ring.Elem{}, err
		}
		bf, err := bFull()
		if err != nil {
			return ring.Elem{}, err
		}
		return af.Mul(bf), nil
	}

	if a, err = m.deriveShare(r, base+"/a", idx, aFull); err != nil {
		return
	}
	if b, err = m.deriveShare(r, base+"/b", idx, bFull); err != nil {
		return
	}
	c, err = m.deriveShare(r, base+"/c", idx, cFull)
	return
}

// Triples returns n independent Beaver triples as this party's shares.
func (m *Mock) Triples(r *ring.Ring, n int) (ndarray.Array[ring.Elem], ndarray.Array[ring.Elem], ndarray.Array[ring.Elem], error) {
	as := make([]ring.Elem, n)
	bs := make([]ring.Elem, n)
	cs := make([]ring.Elem, n)
	for i := 0; i < n; i++ {
		idx := m.next(&m.seqTriple)
		a, b, c, err := m.triple(r, "triples", idx)
		if err != nil {
			return ndarray.Array[ring.Elem]{}, ndarray.Array[ring.Elem]{}, ndarray.Array[ring.Elem]{}, err
		}
		as[i], bs[i], cs[i] = a, b, c
	}
	return ndarray.FromSlice(as, n), ndarray.FromSlice(bs, n), ndarray.FromSlice(cs, n), nil
}

// MatrixTriple returns one matrix triple (A, B, C=A*B) of shapes
// (mm,nn)*(nn,kk), as this party's shares.
func (m *Mock) MatrixTriple(r *ring.Ring, mm, nn, kk int) (ndarray.Array[ring.Elem], ndarray.Array[ring.Elem], ndarray.Array[ring.Elem], error) {
	id := m.next(&m.seqMatrix)
	base := fmt.Sprintf("matrix/%d", id)

	aFullAt := func(i, t int) (ring.Elem, error) {
		return m.prg.elem(r, base+"/full-a", uint64(i*nn+t))
	}
	bFullAt := func(t, j int) (ring.Elem, error) {
		return m.prg.elem(r, base+"/full-b", uint64(t*kk+j))
	}

	aData := make([]ring.Elem, mm*nn)
	for i := 0; i < mm; i++ {
		for t := 0; t < nn; t++ {
			idx := uint64(i*nn + t)
			s, err := m.deriveShare(r, base+"/a", idx, func() (ring.Elem, error) { return aFullAt(i, t) })
			if err != nil {
				return ndarray.Array[ring.Elem]{}, ndarray.Array[ring.Elem]{}, ndarray.Array[ring.Elem]{}, err
			}
			aData[i*nn+t] = s
		}
	}

	bData := make([]ring.Elem, nn*kk)
	for t := 0; t < nn; t++ {
		for j := 0; j < kk; j++ {
			idx := uint64(t*kk + j)
			s, err := m.deriveShare(r, base+"/b", idx, func() (ring.Elem, error) { return bFullAt(t, j) })
			if err != nil {
				return ndarray.Array[ring.Elem]{}, ndarray.Array[ring.Elem]{}, ndarray.Array[ring.Elem]{}, err
			}
			bData[t*kk+j] = s
		}
	}

	cData := make([]ring.Elem, mm*kk)
	for i := 0; i < mm; i++ {
		for j := 0; j < kk; j++ {
			idx := uint64(i*kk + j)
			ii, jj := i, j
			full := func() (ring.Elem, error) {
				sum := r.Zero()
				for t := 0; t < nn; t++ {
					af, err := aFullAt(ii, t)
					if err != nil {
						return ring.Elem{}, err
					}
					bf, err := bFullAt(t, jj)
					if err != nil {
						return ring.Elem{}, err
					}
					sum = sum.Add(af.Mul(bf))
				}
				return sum, nil
			}
			s, err := m.deriveShare(r, base+"/c", idx, full)
			if err != nil {
				return ndarray.Array[ring.Elem]{}, ndarray.Array[ring.Elem]{}, ndarray.Array[ring.Elem]{}, err
			}
			cData[i*kk+j] = s
		}
	}

	return ndarray.FromSlice(aData, mm, nn), ndarray.FromSlice(bData, nn, kk), ndarray.FromSlice(cData, mm, kk), nil
}

// RandBits returns n independent shares of random bits in {0,1}.
func (m *Mock) RandBits(r *ring.Ring, n int) (ndarray.Array[ring.Elem], error) {
	out := make([]ring.Elem, n)
	for i := 0; i < n; i++ {
		idx := m.next(&m.seqBit)
		full := func() (ring.Elem, error) {
			b, err := m.prg.bit(fmt.Sprintf("randbit/%d/full", idx), 0)
			if err != nil {
				return ring.Elem{}, err
			}
			return r.FromInt64(int64(b)), nil
		}
		s, err := m.deriveShare(r, "randbit", idx, full)
		if err != nil {
			return ndarray.Array[ring.Elem]{}, err
		}
		out[i] = s
	}
	return ndarray.FromSlice(out, n), nil
}

// RAndRR returns n correlated (r, r'=r>>shift) pairs as this party's
// shares.
func (m *Mock) RAndRR(r *ring.Ring, n int, shift uint) (ndarray.Array[ring.Elem], ndarray.Array[ring.Elem], error) {
	rs := make([]ring.Elem, n)
	rrs := make([]ring.Elem, n)
	for i := 0; i < n; i++ {
		idx := m.next(&m.seqR)
		rFull := func() (ring.Elem, error) { return m.prg.elem(r, "randr/full-r", idx) }
		rrFull := func() (ring.Elem, error) {
			rf, err := rFull()
			if err != nil {
				return ring.Elem{}, err
			}
			return rf.Rsh(shift), nil
		}
		rs[i], _ = m.deriveShare(r, "randr/r", idx, rFull)
		s, err := m.deriveShare(r, "randr/rr", idx, rrFull)
		if err != nil {
			return ndarray.Array[ring.Elem]{}, ndarray.Array[ring.Elem]{}, err
		}
		rrs[i] = s
	}
	return ndarray.FromSlice(rs, n), ndarray.FromSlice(rrs, n), nil
}

package prep

import (
	"crypto/sha256"
	"io"
	"math/big"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"

	"github.com/luxfi/semi2k/pkg/hash"
	"github.com/luxfi/semi2k/pkg/ring"
)

// prg is a deterministic, seed-keyed pseudorandom function over ring
// elements: every (label, index) pair maps to an independent stream,
// reproducible by any party holding the same seed. Grounded on
// original_source's per-item PRG expansion idiom (deterministic
// preprocessing from an agreed seed), adapted to Go's x/crypto stack:
// HKDF turns the raw ECDH/pre-shared seed into a uniform key, blake3
// derives a per-item nonce, and ChaCha20 expands that into a keystream
// of however many bytes the target ring needs.
type prg struct {
	key [32]byte
}

func newPRG(seed []byte) (*prg, error) {
	kdf := hkdf.New(sha256.New, seed, []byte("semi2k/prep/hkdf-salt"), []byte("root"))
	var key [32]byte
	if _, err := io.ReadFull(kdf, key[:]); err != nil {
		return nil, err
	}
	return &prg{key: key}, nil
}

// elem derives the ring element at (label, idx): a domain-separated,
// otherwise-uniform value in r.
func (p *prg) elem(r *ring.Ring, label string, idx uint64) (ring.Elem, error) {
	nbytes := (r.K + 7) / 8
	out, err := p.bytes(label, idx, nbytes)
	if err != nil {
		return ring.Elem{}, err
	}
	return r.FromBig(new(big.Int).SetBytes(out)), nil
}

// bit derives a single pseudorandom bit at (label, idx).
func (p *prg) bit(label string, idx uint64) (uint, error) {
	out, err := p.bytes(label, idx, 1)
	if err != nil {
		return 0, err
	}
	return uint(out[0] & 1), nil
}

func (p *prg) bytes(label string, idx uint64, n int) ([]byte, error) {
	digest := hash.New("semi2k/prep/nonce:" + label).WriteUint64(idx).Sum256()
	cipher, err := chacha20.NewUnauthenticatedCipher(p.key[:], digest[:chacha20.NonceSize])
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	cipher.XORKeyStream(out, out)
	return out, nil
}

package semi2k

import (
	"context"
	"crypto/rand"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/ring"
)

// InputP turns owner's plaintext data into a share: owner samples a
// fresh random share for every other party, sends each its share, and
// keeps data minus their sum as its own share. Every other party simply
// receives its share. data is only meaningful at owner; other callers
// pass a placeholder of the right shape (its contents are ignored).
//
// Note: unlike the Beaver/truncation correlations, input masking is not
// drawn from the Preprocessing interface — spec.md 4.4 only specifies
// triples, matrix triples, random bits, and truncation pairs, so this
// party-to-party share split uses fresh randomness from crypto/rand
// instead (see DESIGN.md's Open Question Decisions).
func (p *Protocol) InputP(ctx context.Context, owner party.ID, data Share) (Share, error) {
	shape := data.Shape()
	if p.Self() != owner {
		raw, err := p.transport.Recv(ctx, owner, numel(shape)*p.ring.ByteLen())
		if err != nil {
			return Share{}, fmt.Errorf("semi2k: input: recv from owner %d: %w", owner, err)
		}
		return decodeShare(p.ring, raw, shape)
	}

	others := party.AllBut(p.NumParties(), owner)
	shares := make(map[party.ID]Share, len(others))
	sum := zeroShare(p.ring, shape)
	for _, peer := range others {
		s, err := randomShare(p.ring, shape)
		if err != nil {
			return Share{}, fmt.Errorf("semi2k: input: sample share for %d: %w", peer, err)
		}
		shares[peer] = s
		sum = zipE(sum, s, ring.Elem.Add)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, peer := range others {
		peer := peer
		g.Go(func() error { return p.transport.Send(gctx, peer, encodeShare(shares[peer])) })
	}
	if err := g.Wait(); err != nil {
		return Share{}, fmt.Errorf("semi2k: input: distribute shares: %w", err)
	}

	return zipE(data, sum, ring.Elem.Sub), nil
}

func zeroShare(r *ring.Ring, shape []int) Share {
	n := numel(shape)
	data := make([]ring.Elem, n)
	z := r.Zero()
	for i := range data {
		data[i] = z
	}
	return ndarray.FromSlice(data, shape...)
}

func randomShare(r *ring.Ring, shape []int) (Share, error) {
	n := numel(shape)
	elemLen := r.ByteLen()
	data := make([]ring.Elem, n)
	buf := make([]byte, elemLen)
	for i := 0; i < n; i++ {
		if _, err := rand.Read(buf); err != nil {
			return Share{}, err
		}
		data[i] = r.FromBytesLE(buf)
	}
	return ndarray.FromSlice(data, shape...), nil
}

package semi2k

import (
	"context"
	"fmt"

	"github.com/luxfi/semi2k/pkg/net"
	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/ring"
)

// OpenS reveals a share to every party: broadcast this party's share,
// then sum every received share with the local one, per spec.md 4.5.
func (p *Protocol) OpenS(ctx context.Context, x Share) (Share, error) {
	return p.openOn(ctx, p.ring, x)
}

// openOn is OpenS generalized to an explicit ring, so the boolean-domain
// primitives (bool.go) can open R_{1,S} shares using the same broadcast
// logic as the main K-bit protocol.
func (p *Protocol) openOn(ctx context.Context, r *ring.Ring, x Share) (Share, error) {
	recvd, err := net.BroadcastRecv(ctx, p.transport, encodeShare(x))
	if err != nil {
		return Share{}, fmt.Errorf("semi2k: open: %w", err)
	}
	sum := x
	for _, peer := range party.AllBut(p.NumParties(), p.Self()) {
		theirs, err := decodeShare(r, recvd[peer], x.Shape())
		if err != nil {
			return Share{}, fmt.Errorf("semi2k: open: decode from %d: %w", peer, err)
		}
		sum = zipE(sum, theirs, ring.Elem.Add)
	}
	return sum, nil
}

package net

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/semi2k/pkg/party"
)

// Local is an in-process Transport connecting parties via buffered
// channels instead of sockets. It fills the empty "local player" section
// original_source/src/network/multi_party_player.hpp reserves, for use by
// demos and tests that don't want to bind real sockets.
type Local struct {
	self    party.ID
	n       int
	inbox   []map[party.ID]chan []byte // inbox[to][from]
	stats   *Statistics
	stopped chan struct{}
	once    sync.Once
}

var _ Transport = (*Local)(nil)

// NewLocalNetwork builds n Local transports, one per party, all wired to
// the same set of channels.
func NewLocalNetwork(n int) []*Local {
	inbox := make([]map[party.ID]chan []byte, n)
	for i := range inbox {
		inbox[i] = make(map[party.ID]chan []byte)
		for j := 0; j < n; j++ {
			if j != i {
				inbox[i][party.ID(j)] = make(chan []byte, 256)
			}
		}
	}
	out := make([]*Local, n)
	for i := range out {
		out[i] = &Local{
			self:    party.ID(i),
			n:       n,
			inbox:   inbox,
			stats:   NewStatistics(),
			stopped: make(chan struct{}),
		}
	}
	return out
}

// Self returns this party's id.
func (l *Local) Self() party.ID { return l.self }

// NumParties returns the party count.
func (l *Local) NumParties() int { return l.n }

// Stats returns the transport's traffic counters.
func (l *Local) Stats() *Statistics { return l.stats }

// Stop closes this party's stop signal, so its blocked Send and Recv
// calls return ErrStopped; no inbox channel is closed.
func (l *Local) Stop() error {
	l.once.Do(func() { close(l.stopped) })
	return nil
}

// Send delivers data to to's inbox from this party, FIFO per ordered pair.
func (l *Local) Send(ctx context.Context, to party.ID, data []byte) error {
	if int(to) >= l.n || to == l.self {
		return fmt.Errorf("semi2k/net: invalid peer %d", to)
	}
	ch := l.inbox[to][l.self]
	start := time.Now()
	select {
	case ch <- append([]byte(nil), data...):
		l.stats.RecordSend(to, len(data), time.Since(start))
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv reads the next message sent to this party by from.
func (l *Local) Recv(ctx context.Context, from party.ID, _ int) ([]byte, error) {
	if int(from) >= l.n || from == l.self {
		return nil, fmt.Errorf("semi2k/net: invalid peer %d", from)
	}
	ch := l.inbox[l.self][from]
	start := time.Now()
	select {
	case data := <-ch:
		l.stats.RecordRecv(from, len(data), time.Since(start))
		return data, nil
	case <-l.stopped:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

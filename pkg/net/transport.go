// Package net implements the NET transport: plain TCP and TLS-over-TCP
// party-to-party byte streams with per-peer token-bucket rate limiting,
// u64-length-prefixed framing, and collective send/recv patterns, per
// spec.md 4.3. Grounded on
// original_source/src/network/multi_party_player.hpp,
// original_source/src/network/mp_connect.cpp, and
// original_source/src/network/comm_package.h/.cpp.
package net

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/semi2k/pkg/hash"
	"github.com/luxfi/semi2k/pkg/party"
)

// ErrStopped is surfaced to any in-flight call when the transport is
// stopped, per spec.md 4.3's cancellation guarantee.
var ErrStopped = errors.New("semi2k/net: transport stopped")

// Endpoint is one party's (address, port), per spec.md 6.
type Endpoint struct {
	Address string
	Port    int
}

// Transport is the interface the protocol layer depends on: point-to-point
// send/recv between an ordered pair of parties, plus lifecycle and
// statistics. Collective operations (Exchange, PassAround, Broadcast,
// BroadcastRecv, MBroadcastRecv, Sync) are built generically on top of it
// below, mirroring the teacher's separation of a thin socket-level
// interface from the collective patterns layered over it.
type Transport interface {
	Self() party.ID
	NumParties() int
	Send(ctx context.Context, to party.ID, data []byte) error
	// Recv reads the next frame from `from`. sizeHint is an optional
	// allocation hint; frames are self-describing (length-prefixed), so
	// recv never truncates regardless of the hint's accuracy.
	Recv(ctx context.Context, from party.ID, sizeHint int) ([]byte, error)
	Stats() *Statistics
	Stop() error
}

// Exchange sends to peer and concurrently receives from peer, completing
// when both finish (spec.md 4.3: "parallel send/recv do not deadlock"
// because each direction uses an independent socket).
func Exchange(ctx context.Context, t Transport, peer party.ID, data []byte) ([]byte, error) {
	g, gctx := errgroup.WithContext(ctx)
	var recvd []byte
	g.Go(func() error { return t.Send(gctx, peer, data) })
	g.Go(func() error {
		var err error
		recvd, err = t.Recv(gctx, peer, len(data))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recvd, nil
}

// PassAround sends to (self+offset) mod P and receives from (self-offset)
// mod P, per spec.md 4.3.
func PassAround(ctx context.Context, t Transport, offset int, data []byte) ([]byte, error) {
	p := t.NumParties()
	me := int(t.Self())
	to := party.ID(((me+offset)%p + p) % p)
	from := party.ID(((me-offset)%p + p) % p)

	g, gctx := errgroup.WithContext(ctx)
	var recvd []byte
	g.Go(func() error { return t.Send(gctx, to, data) })
	g.Go(func() error {
		var err error
		recvd, err = t.Recv(gctx, from, len(data))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recvd, nil
}

// Broadcast sends data to every other party, without waiting for replies.
func Broadcast(ctx context.Context, t Transport, data []byte) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, to := range party.AllBut(t.NumParties(), t.Self()) {
		to := to
		g.Go(func() error { return t.Send(gctx, to, data) })
	}
	return g.Wait()
}

// BroadcastRecv sends data to every other party and collects what every
// other party sends back, with an empty slot at the caller's own index,
// per spec.md 4.3 and multi_party_player.hpp's insert_empty convention.
func BroadcastRecv(ctx context.Context, t Transport, data []byte) ([][]byte, error) {
	return MBroadcastRecv(ctx, t, party.AllBut(t.NumParties(), t.Self()), data)
}

// MBroadcastRecv is BroadcastRecv restricted to an explicit peer group.
func MBroadcastRecv(ctx context.Context, t Transport, group party.IDSlice, data []byte) ([][]byte, error) {
	out := make([][]byte, t.NumParties())
	g, gctx := errgroup.WithContext(ctx)
	for _, peer := range group {
		peer := peer
		g.Go(func() error { return t.Send(gctx, peer, data) })
		g.Go(func() error {
			recvd, err := t.Recv(gctx, peer, len(data))
			if err != nil {
				return err
			}
			out[peer] = recvd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// syncMagic is the verification payload multi_party_player.hpp's
// impl_sync broadcasts to check every party agrees the network is ready.
var syncMagic = []byte{0x31, 0x28, 0xaf, 0x9b}

// syncDigest is the value every party actually exchanges: syncMagic run
// through a domain-separated hash rather than sent raw, matching
// multi_party_player.hpp's VERIFY_CODE idea of comparing a hash of the
// expected state rather than the state itself.
var syncDigest = hash.BytesWithDomain("semi2k/net/sync", syncMagic)

// Sync verifies connectivity: every party broadcasts syncDigest and
// checks every reply matches. It does not clear buffered state.
func Sync(ctx context.Context, t Transport) error {
	recvd, err := BroadcastRecv(ctx, t, syncDigest[:])
	if err != nil {
		return fmt.Errorf("semi2k/net: sync: %w", err)
	}
	for _, peer := range party.AllBut(t.NumParties(), t.Self()) {
		if !bytes.Equal(recvd[peer], syncDigest[:]) {
			return errors.New("semi2k/net: sync: network synchronization mismatch")
		}
	}
	return nil
}

package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/luxfi/semi2k/pkg/party"
)

// PeerStats tracks bytes and time spent on one peer's send/recv paths.
type PeerStats struct {
	BytesSent      int64
	BytesReceived  int64
	SendElapsed    time.Duration
	RecvElapsed    time.Duration
}

// Statistics aggregates per-peer traffic counters plus a global blocking
// time counter, grounded on original_source/src/network/statistics.h
// (named, not detailed, in spec.md 4.3's "Statistics" paragraph).
type Statistics struct {
	mu           sync.Mutex
	perPeer      map[party.ID]*PeerStats
	blockingNano int64
	elapsedTotal time.Duration
}

// NewStatistics returns an empty Statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{perPeer: make(map[party.ID]*PeerStats)}
}

func (s *Statistics) peer(id party.ID) *PeerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.perPeer[id]
	if !ok {
		p = &PeerStats{}
		s.perPeer[id] = p
	}
	return p
}

// RecordSend adds to a peer's sent-bytes and send-time counters.
func (s *Statistics) RecordSend(id party.ID, n int, d time.Duration) {
	p := s.peer(id)
	atomic.AddInt64(&p.BytesSent, int64(n))
	s.mu.Lock()
	p.SendElapsed += d
	s.mu.Unlock()
}

// RecordRecv adds to a peer's received-bytes and recv-time counters.
func (s *Statistics) RecordRecv(id party.ID, n int, d time.Duration) {
	p := s.peer(id)
	atomic.AddInt64(&p.BytesReceived, int64(n))
	s.mu.Lock()
	p.RecvElapsed += d
	s.mu.Unlock()
}

// RecordBlocking adds to the global blocking-time counter (time spent
// waiting on the rate limiter).
func (s *Statistics) RecordBlocking(d time.Duration) {
	atomic.AddInt64(&s.blockingNano, int64(d))
}

// Peer returns a snapshot of one peer's counters.
func (s *Statistics) Peer(id party.ID) PeerStats {
	p := s.peer(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	return *p
}

// TotalBlocking returns the accumulated blocking time across all sends.
func (s *Statistics) TotalBlocking() time.Duration {
	return time.Duration(atomic.LoadInt64(&s.blockingNano))
}

package net

import (
	"context"
	"sync"
	"time"
)

// TokenBucket rate-limits a single send path: tokens accrue at Rate and
// saturate at Capacity; Request claims up to n tokens immediately;
// Require blocks (respecting ctx) until n tokens are available. Grounded
// on original_source/src/network/comm_package.h's TokenBucket::set/
// request/require.
type TokenBucket struct {
	mu         sync.Mutex
	rate       Bitrate
	capacity   Datasize
	available  float64
	lastUpdate time.Time
}

// NewTokenBucket creates a bucket starting full.
func NewTokenBucket(rate Bitrate, capacity Datasize) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		available:  float64(capacity),
		lastUpdate: time.Now(),
	}
}

// Set reconfigures the rate and capacity, clamping the available balance
// to the new capacity.
func (b *TokenBucket) Set(rate Bitrate, capacity Datasize) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	b.rate = rate
	b.capacity = capacity
	if b.available > float64(capacity) {
		b.available = float64(capacity)
	}
}

func (b *TokenBucket) refillLocked() {
	if b.rate.IsUnlimited() {
		b.available = float64(b.capacity)
		b.lastUpdate = time.Now()
		return
	}
	now := time.Now()
	elapsed := now.Sub(b.lastUpdate).Seconds()
	b.available += elapsed * float64(b.rate.BytesPerSecond())
	if b.available > float64(b.capacity) {
		b.available = float64(b.capacity)
	}
	b.lastUpdate = now
}

// Request claims up to n bytes' worth of tokens immediately, without
// blocking. It returns the number of tokens actually claimed, which may
// be less than n (including zero).
func (b *TokenBucket) Request(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rate.IsUnlimited() {
		return n
	}
	b.refillLocked()
	claim := n
	if float64(claim) > b.available {
		claim = int(b.available)
	}
	if claim < 0 {
		claim = 0
	}
	b.available -= float64(claim)
	return claim
}

// Require blocks until n bytes' worth of tokens are available (computing
// an ETA from the deficit and the current rate), or ctx is done.
func (b *TokenBucket) Require(ctx context.Context, n int) error {
	if b.rate.IsUnlimited() {
		return nil
	}
	for {
		b.mu.Lock()
		b.refillLocked()
		if float64(n) <= b.available {
			b.available -= float64(n)
			b.mu.Unlock()
			return nil
		}
		deficit := float64(n) - b.available
		rate := float64(b.rate.BytesPerSecond())
		b.mu.Unlock()

		var eta time.Duration
		if rate > 0 {
			eta = time.Duration(deficit/rate*float64(time.Second)) + time.Millisecond
		} else {
			eta = time.Millisecond
		}
		timer := time.NewTimer(eta)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// PacketSize computes the chunk size to use for a Send of n bytes: the
// whole buffer if unlimited, else bounded above by Capacity and below by
// roughly 2ms worth of bytes at the current rate, per spec.md 4.3.
func (b *TokenBucket) PacketSize(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rate.IsUnlimited() {
		return n
	}
	lowerBound := int(float64(b.rate.BytesPerSecond()) * 0.002)
	if lowerBound < 1 {
		lowerBound = 1
	}
	upperBound := int(b.capacity)
	size := n
	if size > upperBound {
		size = upperBound
	}
	if size < lowerBound && n > lowerBound {
		size = lowerBound
	}
	return size
}

package net

// Bitrate is a bits-per-second rate. original_source/src/network/bitrate.h
// expresses this as a ratio-typed template (Bitrate<ValueType,Multiple>);
// Go has no non-type template parameters, so a plain int64 with named
// constructors/sentinels captures the same surface.
type Bitrate int64

const (
	// Unlimited marks a peer with no rate limit: TokenBucket treats it as
	// an immediate, single-write pass-through.
	Unlimited Bitrate = -1
)

// BitsPerSecond constructs a Bitrate from a raw bits/sec value.
func BitsPerSecond(n int64) Bitrate { return Bitrate(n) }

// KilobitsPerSecond constructs a Bitrate from kbit/s (decimal, 1000-based).
func KilobitsPerSecond(n int64) Bitrate { return Bitrate(n * 1000) }

// MegabitsPerSecond constructs a Bitrate from Mbit/s (decimal, 1000-based).
func MegabitsPerSecond(n int64) Bitrate { return Bitrate(n * 1_000_000) }

// IsUnlimited reports whether the rate is the Unlimited sentinel.
func (b Bitrate) IsUnlimited() bool { return b == Unlimited }

// BytesPerSecond converts the rate to bytes/sec, rounding down.
func (b Bitrate) BytesPerSecond() int64 {
	if b.IsUnlimited() {
		return -1
	}
	return int64(b) / 8
}

// Datasize is a byte count, used for token bucket capacities.
type Datasize int64

const (
	Byte     Datasize = 1
	Kilobyte          = 1000 * Byte
	Megabyte          = 1000 * Kilobyte
)

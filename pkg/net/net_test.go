package net_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/semi2k/pkg/net"
	"github.com/luxfi/semi2k/pkg/party"
)

func TestTokenBucketRequestNonBlocking(t *testing.T) {
	b := net.NewTokenBucket(net.BitsPerSecond(8*1000), net.Datasize(100))
	got := b.Request(1000)
	assert.LessOrEqual(t, got, 100)
	assert.GreaterOrEqual(t, got, 0)
}

func TestTokenBucketUnlimitedNeverBlocks(t *testing.T) {
	b := net.NewTokenBucket(net.Unlimited, net.Datasize(1))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.NoError(t, b.Require(ctx, 1<<20))
}

func TestLocalExchange(t *testing.T) {
	nets := net.NewLocalNetwork(2)
	ctx := context.Background()

	resultCh := make(chan []byte, 1)
	go func() {
		got, err := net.Exchange(ctx, nets[0], party.ID(1), []byte("hello from 0"))
		require.NoError(t, err)
		resultCh <- got
	}()
	got1, err := net.Exchange(ctx, nets[1], party.ID(0), []byte("hello from 1"))
	require.NoError(t, err)
	assert.Equal(t, "hello from 0", string(<-resultCh))
	assert.Equal(t, "hello from 1", string(got1))
}

func TestLocalBroadcastRecv(t *testing.T) {
	nets := net.NewLocalNetwork(3)
	ctx := context.Background()

	results := make([][][]byte, 3)
	done := make(chan int, 3)
	for i := range nets {
		i := i
		go func() {
			out, err := net.BroadcastRecv(ctx, nets[i], []byte{byte(i)})
			require.NoError(t, err)
			results[i] = out
			done <- i
		}()
	}
	for range nets {
		<-done
	}
	for i := range nets {
		for j := range nets {
			if i == j {
				continue
			}
			assert.Equal(t, []byte{byte(j)}, results[i][j])
		}
	}
}

func TestLocalPassAround(t *testing.T) {
	nets := net.NewLocalNetwork(3)
	ctx := context.Background()

	out := make([][]byte, 3)
	errs := make([]error, 3)
	done := make(chan int, 3)
	for i := range nets {
		i := i
		go func() {
			got, err := net.PassAround(ctx, nets[i], 1, []byte{byte(10 + i)})
			out[i], errs[i] = got, err
			done <- i
		}()
	}
	for range nets {
		<-done
	}
	for i := range nets {
		require.NoError(t, errs[i])
	}
	// party i receives from (i-1) mod 3, which sent {10 + (i-1 mod 3)}
	assert.Equal(t, []byte{byte(10 + 2)}, out[0])
	assert.Equal(t, []byte{byte(10 + 0)}, out[1])
	assert.Equal(t, []byte{byte(10 + 1)}, out[2])
}

func TestLocalSync(t *testing.T) {
	nets := net.NewLocalNetwork(3)
	ctx := context.Background()
	errs := make(chan error, 3)
	for _, n := range nets {
		n := n
		go func() { errs <- net.Sync(ctx, n) }()
	}
	for range nets {
		require.NoError(t, <-errs)
	}
}

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/net"
	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/prep"
	"github.com/luxfi/semi2k/pkg/protocol/semi2k"
	"github.com/luxfi/semi2k/pkg/ring"
)

// runBench times repeated mul_ss calls over an in-process network and
// reports elapsed time, throughput, and per-peer byte counters from the
// transport's Statistics.
func runBench(cmd *cobra.Command, args []string) error {
	iterations, _ := cmd.Flags().GetInt("iterations")
	n := numParties
	r := ring.New(ringBits, true)

	nets := net.NewLocalNetwork(n)
	seed := []byte("semi2k-cli bench seed, not secret, shared out of band")

	protos := make([]*semi2k.Protocol, n)
	for i := 0; i < n; i++ {
		m, err := prep.NewMockWithSeed(seed, party.ID(i), n)
		if err != nil {
			return fmt.Errorf("bench: preprocessing setup: %w", err)
		}
		protos[i] = semi2k.New(nets[i], m, r)
	}

	ctx := context.Background()
	xs := make([]semi2k.Share, n)
	ys := make([]semi2k.Share, n)
	for i := range xs {
		xs[i] = scalarShare(r, int64(i+1))
		ys[i] = scalarShare(r, int64(i+2))
	}

	start := time.Now()
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				if _, err := protos[i].MulSS(ctx, xs[i], ys[i]); err != nil {
					errs[i] = err
					return
				}
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("bench: party %d: %w", i, err)
		}
	}

	fmt.Printf("ran %d mul_ss calls across %d parties in %v (%.1f ops/s)\n",
		iterations, n, elapsed, float64(iterations)/elapsed.Seconds())
	for i, nt := range nets {
		stats := nt.Stats()
		for _, peer := range party.AllBut(n, party.ID(i)) {
			peerStats := stats.Peer(peer)
			fmt.Printf("  party %d -> %d: sent=%dB recv=%dB\n", i, peer, peerStats.BytesSent, peerStats.BytesReceived)
		}
	}
	return nil
}

func scalarShare(r *ring.Ring, v int64) semi2k.Share {
	return ndarray.FromSlice([]ring.Elem{r.FromInt64(v)}, 1)
}

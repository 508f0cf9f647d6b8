package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	semicontext "github.com/luxfi/semi2k/pkg/context"
	"github.com/luxfi/semi2k/pkg/dispatch"
	"github.com/luxfi/semi2k/pkg/fxp"
	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/net"
	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/prep"
	"github.com/luxfi/semi2k/pkg/ring"
	"github.com/luxfi/semi2k/pkg/value"
)

// runDemo computes (3.5 + 2.25) * 4.0 across numParties simulated parties
// over an in-process network, with the two addends held private by
// party 0 and party 1, then opens and prints the result.
func runDemo(cmd *cobra.Command, args []string) error {
	n := numParties
	format := fxp.NewFormat(ringBits, fracbits)
	r := format.Ring()

	nets := net.NewLocalNetwork(n)
	seed := []byte("semi2k-cli demo seed, not secret, shared out of band")

	ctxs := make([]*semicontext.Context, n)
	for i := 0; i < n; i++ {
		m, err := prep.NewMockWithSeed(seed, party.ID(i), n)
		if err != nil {
			return fmt.Errorf("demo: preprocessing setup: %w", err)
		}
		cfg := semicontext.DefaultConfig()
		cfg.FxpFracbits = int64(fracbits)
		c, err := semicontext.New(nets[i], m, r, cfg)
		if err != nil {
			return fmt.Errorf("demo: context setup: %w", err)
		}
		ctxs[i] = c
	}

	a := format.Encode(3.5)
	b := format.Encode(2.25)
	k := format.Encode(4.0)

	ctx := context.Background()
	results := make([]float64, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = demoParty(ctx, ctxs[i], format, a, b, k)
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("demo: party %d: %w", i, err)
		}
	}

	fmt.Printf("(3.5 + 2.25) * 4.0 = %v\n", results[0])
	return nil
}

func demoParty(ctx context.Context, env *semicontext.Context, format fxp.Format, a, b, k fxp.Elem) (float64, error) {
	owner0, owner1 := party.ID(0), party.ID(1)
	self := env.Self()

	// Only the owner's local array carries real data; every other party
	// holds a same-shaped placeholder, per value.Val's Private contract.
	aData, bData := format.Zero().V, format.Zero().V
	if self == owner0 {
		aData = a.V
	}
	if self == owner1 {
		bData = b.V
	}

	av := value.NewPrivate(wrapScalar(aData), owner0, format.D)
	bv := value.NewPrivate(wrapScalar(bData), owner1, format.D)
	kv := value.NewPublic(wrapScalar(k.V), format.D)

	sum, err := dispatch.FAdd(ctx, env, av, bv)
	if err != nil {
		return 0, fmt.Errorf("f_add: %w", err)
	}
	prod, err := dispatch.FMul(ctx, env, sum, kv)
	if err != nil {
		return 0, fmt.Errorf("f_mul: %w", err)
	}
	opened, err := dispatch.FOpen(ctx, env, prod)
	if err != nil {
		return 0, fmt.Errorf("f_open: %w", err)
	}
	return format.FromRaw(opened.Array().Elem(0)).Decode(), nil
}

func wrapScalar(e ring.Elem) value.Arr {
	return ndarray.FromSlice([]ring.Elem{e}, 1)
}

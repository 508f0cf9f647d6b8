package semi2k_test

import (
	"context"
	"sync"
	"testing/quick"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luxfi/semi2k/pkg/ndarray"
	"github.com/luxfi/semi2k/pkg/net"
	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/prep"
	"github.com/luxfi/semi2k/pkg/protocol/semi2k"
	"github.com/luxfi/semi2k/pkg/ring"
)

// setupQuick wires n parties exactly like setup() in semi2k_test.go, but
// returns an error instead of calling testing.T — testing/quick's
// property closures run outside any *testing.T.
func setupQuick(n int, r *ring.Ring) ([]*semi2k.Protocol, error) {
	nets := net.NewLocalNetwork(n)
	protos := make([]*semi2k.Protocol, n)
	for i := 0; i < n; i++ {
		m, err := prep.NewMockWithSeed([]byte("semi2k property test seed"), party.ID(i), n)
		if err != nil {
			return nil, err
		}
		protos[i] = semi2k.New(nets[i], m, r)
	}
	return protos, nil
}

func runAllQuick[T any](protos []*semi2k.Protocol, fn func(i int, p *semi2k.Protocol) (T, error)) ([]T, error) {
	out := make([]T, len(protos))
	errs := make([]error, len(protos))
	var wg sync.WaitGroup
	for i := range protos {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i], errs[i] = fn(i, protos[i])
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scalarQuick(r *ring.Ring, v int64) semi2k.Share {
	return ndarray.FromSlice([]ring.Elem{r.FromInt64(v)}, 1)
}

var _ = Describe("Semi2k arithmetic properties", func() {
	ctx := context.Background()
	r := ring.New(64, true)

	It("add_ss agrees with plain integer addition over random inputs", func() {
		property := func(a, b int16) bool {
			x, y := int64(a), int64(b)
			protos, err := setupQuick(3, r)
			if err != nil {
				return false
			}
			xs, err := runAllQuick(protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
				data := scalarQuick(r, 0)
				if i == 0 {
					data = scalarQuick(r, x)
				}
				return p.InputP(ctx, party.ID(0), data)
			})
			if err != nil {
				return false
			}
			ys, err := runAllQuick(protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
				data := scalarQuick(r, 0)
				if i == 1 {
					data = scalarQuick(r, y)
				}
				return p.InputP(ctx, party.ID(1), data)
			})
			if err != nil {
				return false
			}
			sums := make([]semi2k.Share, len(protos))
			for i, p := range protos {
				sums[i] = p.AddSS(xs[i], ys[i])
			}
			opened, err := runAllQuick(protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
				return p.OpenS(ctx, sums[i])
			})
			if err != nil {
				return false
			}
			return opened[0].Elem(0).Int64() == x+y
		}
		Expect(quick.Check(property, &quick.Config{MaxCount: 25})).To(Succeed())
	})

	It("mul_ss agrees with plain integer multiplication over random inputs", func() {
		property := func(a, b int8) bool {
			x, y := int64(a), int64(b)
			protos, err := setupQuick(3, r)
			if err != nil {
				return false
			}
			xs, err := runAllQuick(protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
				data := scalarQuick(r, 0)
				if i == 0 {
					data = scalarQuick(r, x)
				}
				return p.InputP(ctx, party.ID(0), data)
			})
			if err != nil {
				return false
			}
			ys, err := runAllQuick(protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
				data := scalarQuick(r, 0)
				if i == 1 {
					data = scalarQuick(r, y)
				}
				return p.InputP(ctx, party.ID(1), data)
			})
			if err != nil {
				return false
			}
			prods, err := runAllQuick(protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
				return p.MulSS(ctx, xs[i], ys[i])
			})
			if err != nil {
				return false
			}
			opened, err := runAllQuick(protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
				return p.OpenS(ctx, prods[i])
			})
			if err != nil {
				return false
			}
			return opened[0].Elem(0).Int64() == x*y
		}
		Expect(quick.Check(property, &quick.Config{MaxCount: 25})).To(Succeed())
	})

	It("msb_s agrees with the sign of the plaintext for random inputs", func() {
		property := func(a int32) bool {
			x := int64(a)
			protos, err := setupQuick(3, r)
			if err != nil {
				return false
			}
			xs, err := runAllQuick(protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
				data := scalarQuick(r, 0)
				if i == 0 {
					data = scalarQuick(r, x)
				}
				return p.InputP(ctx, party.ID(0), data)
			})
			if err != nil {
				return false
			}
			msb, err := runAllQuick(protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
				return p.MsbS(ctx, xs[i])
			})
			if err != nil {
				return false
			}
			opened, err := runAllQuick(protos, func(i int, p *semi2k.Protocol) (semi2k.Share, error) {
				return p.OpenS(ctx, msb[i])
			})
			if err != nil {
				return false
			}
			want := int64(0)
			if x < 0 {
				want = 1
			}
			return opened[0].Elem(0).Int64() == want
		}
		Expect(quick.Check(property, &quick.Config{MaxCount: 25})).To(Succeed())
	})
})

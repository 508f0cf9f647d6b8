// Package context implements CTX, the umbrella object a semi2k-cli
// process builds once at startup: the transport, preprocessing source,
// bound Semi2k protocol, and fixed-point Config, wired together and
// exposed through the small surface pkg/dispatch needs. Grounded on
// original_source/src/context/context.hpp's Context class and
// protocols/lss/config/config.go's Validate()-on-construct style.
package context

import (
	"fmt"

	"github.com/luxfi/semi2k/pkg/net"
	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/prep"
	"github.com/luxfi/semi2k/pkg/protocol/semi2k"
	"github.com/luxfi/semi2k/pkg/ring"
)

// Context is not safe for concurrent use from multiple goroutines
// (spec.md 5): one Context serves one party's single-threaded
// computation.
type Context struct {
	transport net.Transport
	prep      prep.Preprocessing
	proto     *semi2k.Protocol
	config    Config
}

// New builds a Context bound to transport, sourcing preprocessing
// correlations from pp and operating Semi2k calls over ring r.
func New(transport net.Transport, pp prep.Preprocessing, r *ring.Ring, cfg Config) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Context{
		transport: transport,
		prep:      pp,
		proto:     semi2k.New(transport, pp, r),
		config:    cfg,
	}, nil
}

// Self returns this party's id, satisfying dispatch.Env.
func (c *Context) Self() party.ID { return c.transport.Self() }

// NumParties returns the number of parties, satisfying dispatch.Env.
func (c *Context) NumParties() int { return c.transport.NumParties() }

// Proto returns the bound Semi2k protocol, satisfying dispatch.Env.
func (c *Context) Proto() *semi2k.Protocol { return c.proto }

// FxpFracBits returns the target fixed-point scale every f_* op
// truncates products back down to, satisfying dispatch.Env.
func (c *Context) FxpFracBits() int { return int(c.config.FxpFracbits) }

// Config returns the fixed-point calculation parameters.
func (c *Context) Config() Config { return c.config }

// Transport returns the raw transport, for callers that need send/recv
// statistics.
func (c *Context) Transport() net.Transport { return c.transport }

// String renders a short identifying summary for logging.
func (c *Context) String() string {
	return fmt.Sprintf("Context{party=%d/%d, fracbits=%d}", c.Self(), c.NumParties(), c.config.FxpFracbits)
}

// Package dispatch implements DISP, the three-layer visibility
// dispatcher between user-facing values and the Semi2k protocol: a
// primitive layer (nine visibility-pair variants per binary opcode,
// three per unary/shift/bitdec opcode), a raw `r_*` layer that switches
// on runtime visibility tags to pick a primitive variant, and a
// fixed-point `f_*` layer enforcing fracbits alignment/truncation.
// Grounded on original_source/src/context/basic/{primitive,raw,fxp}.hpp,
// with C++ template-per-Value-type replaced by dispatch.Env (the small
// interface a *context.Context satisfies) and C++ exceptions replaced
// by explicit error returns for anything that can fail at the
// transport (contract violations still panic, per spec.md 7).
package dispatch

import (
	"fmt"

	"github.com/luxfi/semi2k/pkg/party"
	"github.com/luxfi/semi2k/pkg/protocol/semi2k"
)

// Env is the surface dispatch needs from a context: identity, party
// count, the bound protocol, and the fixed-point target scale. A
// *context.Context satisfies this structurally, so dispatch does not
// import pkg/context (the umbrella that wires transport + prep +
// protocol together).
type Env interface {
	Self() party.ID
	NumParties() int
	Proto() *semi2k.Protocol
	FxpFracBits() int
}

// assertf panics with a formatted message; used for contract violations
// (shape/visibility mismatches), which spec.md 7 calls bugs in the
// caller rather than recoverable errors.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

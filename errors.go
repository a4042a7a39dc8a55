package stpsim

// errors.go implements the error taxonomy of the design: topology errors
// are recoverable and returned to the caller (the offending command is
// dropped, processing continues); protocol violations indicate a bug in
// the election/transition logic and are irrecoverable, so they are
// raised as panics carrying a ProtocolViolation value rather than
// returned, so that a caller cannot accidentally continue running a
// bridge whose invariants have already broken.
//
// Wrapping uses github.com/pkg/errors so that a TopologyError retains a
// stack trace and an underlying cause even though this module never
// needs anything fancier than WithStack, Errorf and Wrap.

import (
	"fmt"

	"github.com/pkg/errors"
)

// TopologyError reports a recoverable mistake made against the Topology
// API: a self-loop, a duplicate link, or a reference to an unknown
// bridge or port. The caller's edit is rejected; the topology is left
// unchanged.
type TopologyError struct {
	Op    string // the operation that failed, e.g. "AddLink"
	cause error
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("stpsim: %s: %v", e.Op, e.cause)
}

func (e *TopologyError) Unwrap() error {
	return e.cause
}

func newTopologyError(op string, cause error) *TopologyError {
	return &TopologyError{Op: op, cause: errors.WithStack(cause)}
}

func newTopologyErrorf(op, format string, args ...any) *TopologyError {
	return newTopologyError(op, errors.Errorf(format, args...))
}

// ProtocolViolation is panicked when a Bridge's internal bookkeeping
// contradicts the invariants the election and transition rules are
// supposed to guarantee (for example, two ports both winning Root role).
// Per the design this should be unreachable in a correct implementation;
// it exists so that if it is ever reached, the failure is loud and
// carries the diagnostic detail needed to fix the bug, rather than
// silently producing a wrong forwarding topology.
type ProtocolViolation struct {
	Bridge string
	Detail string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("stpsim: protocol invariant violated on bridge %s: %s", e.Bridge, e.Detail)
}

func panicProtocolViolation(bridgeMAC, detail string) {
	panic(&ProtocolViolation{Bridge: bridgeMAC, Detail: detail})
}

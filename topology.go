package stpsim

// topology.go owns the set of bridges and the links between them, and
// drives the simulation one tick at a time. The two-phase tick
// (§5 option (a): global emit, then global drain/process) is used here
// rather than the sequential per-bridge routine the original source
// used, so that convergence does not depend on the order bridges happen
// to be stored in.

import (
	"context"
	"sort"
)

// Topology owns a set of named Bridges and the Edges connecting their
// ports, and advances them together, tick by tick.
type Topology struct {
	bridges map[string]*Bridge
	edges   []Edge
	trace   *TraceManager
	ticks   int
}

// NewTopology constructs an empty Topology. trace may be nil.
func NewTopology(trace *TraceManager) *Topology {
	if trace == nil {
		trace = NewTraceManager(false, nil)
	}
	return &Topology{bridges: make(map[string]*Bridge), trace: trace}
}

// AddBridge registers a new Bridge under the given MAC identifier and
// priority, and returns it. It is a TopologyError to reuse a MAC already
// present in the topology.
func (t *Topology) AddBridge(mac string, priority uint16) (*Bridge, error) {
	if _, exists := t.bridges[mac]; exists {
		return nil, newTopologyErrorf("AddBridge", "bridge %q already exists", mac)
	}
	b := NewBridge(mac, priority, t.trace)
	t.bridges[mac] = b
	return b, nil
}

// Bridge looks up a bridge by MAC. The second return is false if no
// such bridge exists.
func (t *Topology) Bridge(mac string) (*Bridge, bool) {
	b, ok := t.bridges[mac]
	return b, ok
}

// Bridges returns every bridge in the topology, ordered by MAC for
// deterministic iteration.
func (t *Topology) Bridges() []*Bridge {
	macs := make([]string, 0, len(t.bridges))
	for mac := range t.bridges {
		macs = append(macs, mac)
	}
	sort.Strings(macs)
	out := make([]*Bridge, len(macs))
	for i, mac := range macs {
		out[i] = t.bridges[mac]
	}
	return out
}

// Edges returns the topology's links.
func (t *Topology) Edges() []Edge {
	out := make([]Edge, len(t.edges))
	copy(out, t.edges)
	return out
}

// AddLink connects portA on bridgeA to portB on bridgeB. It is a
// TopologyError to link a bridge to itself, to reference an unknown
// bridge, or to place either named port on a link that already exists.
func (t *Topology) AddLink(bridgeA string, portA int, bridgeB string, portB int) error {
	if bridgeA == bridgeB {
		return newTopologyErrorf("AddLink", "bridge %q cannot link to itself", bridgeA)
	}
	a, ok := t.bridges[bridgeA]
	if !ok {
		return newTopologyErrorf("AddLink", "unknown bridge %q", bridgeA)
	}
	b, ok := t.bridges[bridgeB]
	if !ok {
		return newTopologyErrorf("AddLink", "unknown bridge %q", bridgeB)
	}
	for _, e := range t.edges {
		if e.touches(bridgeA, portA) {
			return newTopologyErrorf("AddLink", "%s port %d is already linked", bridgeA, portA)
		}
		if e.touches(bridgeB, portB) {
			return newTopologyErrorf("AddLink", "%s port %d is already linked", bridgeB, portB)
		}
	}

	pa := a.ensurePort(portA)
	pb := b.ensurePort(portB)
	pa.connect(pb)

	t.edges = append(t.edges, Edge{BridgeA: bridgeA, PortA: portA, BridgeB: bridgeB, PortB: portB})
	return nil
}

// DeleteLink implements the explicit link-break operation at topology
// scope: both ends are disabled, unlike Bridge.breakLink's asymmetric
// single-sided version, since a topology edit is full-knowledge by
// construction — the caller knows both endpoints and is choosing to
// remove the edge itself. It is a TopologyError to reference an unknown
// bridge or a port with no link.
func (t *Topology) DeleteLink(bridgeMAC string, port int) error {
	br, ok := t.bridges[bridgeMAC]
	if !ok {
		return newTopologyErrorf("DeleteLink", "unknown bridge %q", bridgeMAC)
	}
	idx := -1
	for i, e := range t.edges {
		if e.touches(bridgeMAC, port) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return newTopologyErrorf("DeleteLink", "%s port %d has no link", bridgeMAC, port)
	}

	br.breakLink(port)
	peerMAC, peerPort := t.otherEndpoint(t.edges[idx], bridgeMAC, port)
	if peerBr, ok := t.bridges[peerMAC]; ok {
		peerBr.breakLink(peerPort)
	}

	t.edges = append(t.edges[:idx], t.edges[idx+1:]...)
	return nil
}

// otherEndpoint returns the endpoint of e that is not (bridgeMAC, port).
func (t *Topology) otherEndpoint(e Edge, bridgeMAC string, port int) (string, int) {
	if e.BridgeA == bridgeMAC && e.PortA == port {
		return e.BridgeB, e.PortB
	}
	return e.BridgeA, e.PortA
}

// DeleteBridge removes a bridge from the topology, disabling every one
// of its ports without touching its neighbors' ports directly — each
// neighbor discovers the loss the same way it would discover any other
// silent failure, through Bridge.handleAging's promote-on-peer-disabled
// shortcut or, failing that, MaxAge.
func (t *Topology) DeleteBridge(mac string) error {
	br, ok := t.bridges[mac]
	if !ok {
		return newTopologyErrorf("DeleteBridge", "unknown bridge %q", mac)
	}
	br.disable()
	delete(t.bridges, mac)

	kept := t.edges[:0]
	for _, e := range t.edges {
		if e.BridgeA != mac && e.BridgeB != mac {
			kept = append(kept, e)
		}
	}
	t.edges = kept
	return nil
}

// Tick advances every bridge by exactly one tick, using the two-phase
// global emit / global drain-and-process ordering.
func (t *Topology) Tick() {
	for _, b := range t.Bridges() {
		b.EmitPhase()
	}
	for _, b := range t.Bridges() {
		b.ProcessPhase()
	}
	t.ticks++
}

// TickN advances the topology by n ticks.
func (t *Topology) TickN(n int) {
	for i := 0; i < n; i++ {
		t.Tick()
	}
}

// Ticks returns the number of ticks this topology has advanced.
func (t *Topology) Ticks() int { return t.ticks }

// AllConverged reports whether every bridge in the topology has settled
// (no port remains in Listening or Learning).
func (t *Topology) AllConverged() bool {
	for _, b := range t.bridges {
		if !b.Converged() {
			return false
		}
	}
	return true
}

// Run ticks the topology until AllConverged is true or maxTicks is
// reached, whichever comes first, and reports which one stopped it. It
// always ticks at least once before checking, so a freshly built
// topology (every port still in its power-up Blocking state) is not
// mistaken for a converged one.
func (t *Topology) Run(maxTicks int) (converged bool) {
	for i := 0; i < maxTicks; i++ {
		t.Tick()
		if t.AllConverged() {
			return true
		}
	}
	return t.AllConverged()
}

// RunContext is Run with early exit on ctx cancellation, for a CLI or
// server loop that wants to bound wall-clock time as well as tick count.
func (t *Topology) RunContext(ctx context.Context, maxTicks int) (converged bool, err error) {
	for i := 0; i < maxTicks; i++ {
		select {
		case <-ctx.Done():
			return t.AllConverged(), ctx.Err()
		default:
		}
		t.Tick()
		if t.AllConverged() {
			return true, nil
		}
	}
	return t.AllConverged(), nil
}

package stpsim

// bridge.go is the heart of this module: one Bridge runs one local
// instance of 802.1D STP, advancing by a discrete tick rather than a
// real-time clock. The algorithm here is the literal transcription of
// the election and transition rules distilled from
// branches/STP2/Bridge.java and branches/STP2/Port.java in the source
// material, reorganized from per-port java.util.Timer callbacks into a
// single per-tick routine so that a whole topology advances in lockstep.

import (
	"fmt"
)

// Bridge is one STP instance: an ordered list of ports, a belief about
// who the root bridge is and how far away it is, an optional root port,
// a MAC-learning table, and the two topology-change flags.
type Bridge struct {
	id    BridgeID
	ports []*Port

	rootID   BridgeID
	cost     int
	rootPort *Port

	macTable map[int]string

	tcFlag    bool
	tcAckFlag bool

	clock     int
	lastHello int

	trace *TraceManager
}

// NewBridge constructs a Bridge that believes itself to be the root
// (cost 0, rootID == own ID) until it hears otherwise, with an empty
// port list. trace may be nil, in which case tracing is inert.
func NewBridge(mac string, priority uint16, trace *TraceManager) *Bridge {
	id := NewBridgeID(priority, mac)
	if trace == nil {
		trace = NewTraceManager(false, nil)
	}
	return &Bridge{
		id:        id,
		rootID:    id,
		cost:      0,
		macTable:  make(map[int]string),
		lastHello: -HelloTime,
		trace:     trace,
	}
}

// ID returns this bridge's Bridge ID.
func (b *Bridge) ID() BridgeID { return b.id }

// RootID returns the bridge ID this bridge currently believes is the
// network root.
func (b *Bridge) RootID() BridgeID { return b.rootID }

// Cost returns this bridge's believed root path cost (0 while it
// believes itself to be the root).
func (b *Bridge) Cost() int { return b.cost }

// IsRootBridge reports whether this bridge currently believes itself to
// be the network root. Comparison is always by BridgeID value, never by
// string identity (spec Open Question, resolved in favor of value
// equality throughout).
func (b *Bridge) IsRootBridge() bool {
	return b.rootID.Equal(b.id)
}

// RootPort returns the port currently holding Root role, or nil if this
// bridge has none (either because it is the root, or because no
// candidate has yet been elected).
func (b *Bridge) RootPort() *Port { return b.rootPort }

// Ports returns the bridge's ports in index order. The returned slice is
// owned by the Bridge; callers must not mutate it, but methods on
// individual *Port are expected to be called by Topology and by tests.
func (b *Bridge) Ports() []*Port { return b.ports }

// MACTable returns a copy of the port-index -> learned-MAC table.
func (b *Bridge) MACTable() map[int]string {
	out := make(map[int]string, len(b.macTable))
	for k, v := range b.macTable {
		out[k] = v
	}
	return out
}

// Clock returns the bridge's local simulated tick count.
func (b *Bridge) Clock() int { return b.clock }

// Converged reports whether every port on this bridge has settled into
// Forwarding or Blocking (i.e. none remain in Listening or Learning).
func (b *Bridge) Converged() bool {
	for _, p := range b.ports {
		if p.state == Listening || p.state == Learning {
			return false
		}
	}
	return true
}

// ensurePort grows the port list as needed and returns the port at
// index, creating it (in its power-up Blocking/Nondesignated state) if
// this is the first reference to that index.
func (b *Bridge) ensurePort(index int) *Port {
	for len(b.ports) <= index {
		b.ports = append(b.ports, newPort(len(b.ports)))
	}
	return b.ports[index]
}

// EmitPhase is phase 1 of a two-phase tick (see topology.go's Tick):
// every eligible port broadcasts a fresh Configuration BPDU if the hello
// interval has elapsed since this bridge's last broadcast pass. A port
// is eligible when it is connected, not Disabled, not Blocking, and not
// playing Root role — a Root port only ever receives advertisements, it
// never originates one.
func (b *Bridge) EmitPhase() {
	if b.clock-b.lastHello < HelloTime {
		return
	}
	b.lastHello = b.clock
	messageAge := b.messageAge()
	for _, p := range b.ports {
		if p.peer == nil || p.state == Disabled || p.state == Blocking || p.role == Root {
			continue
		}
		bpdu := NewConfigurationBPDU(b.rootID, b.cost, b.id, p.index, messageAge, b.tcFlag, b.tcAckFlag)
		p.send(bpdu)
		b.trace.Event(b.clock, b.id.MAC, "send",
			fmt.Sprintf("port=%d root=%s cost=%d age=%d tc=%v tcack=%v", p.index, b.rootID, b.cost, messageAge, b.tcFlag, b.tcAckFlag))
	}
	if b.IsRootBridge() && b.tcAckFlag {
		// The root has flooded one round of Configuration BPDUs with
		// TCAck set; that is the acknowledgement, there is nothing more
		// to repeat once it has gone out.
		b.tcAckFlag = false
	}
}

// messageAge computes the value this bridge advertises in the
// MessageAge field of its next Configuration BPDU. The root bridge is
// the origin of fresh information and always advertises 0; every other
// bridge advertises the age of the information it is relaying — the
// message age carried on its root port's last stored BPDU, aged by
// however many ticks have elapsed since that BPDU was received.
func (b *Bridge) messageAge() int {
	if b.IsRootBridge() || b.rootPort == nil || b.rootPort.stored == nil {
		return 0
	}
	return b.rootPort.stored.MessageAge + (b.clock - b.rootPort.lastReceiptTick)
}

// ProcessPhase is phase 2 of a two-phase tick: disable ports that have
// never been linked, drain every connected port's receive slot, classify
// and apply receive processing, run aging on ports that heard nothing,
// end the Learning delay of any port whose ForwardDelay has elapsed
// (whether or not it heard a BPDU this tick), and advance the local
// clock.
func (b *Bridge) ProcessPhase() {
	if b.clock == 0 {
		b.enterBootPhase()
	}

	type inbound struct {
		port *Port
		bpdu *BPDU
	}
	var received []inbound

	for _, p := range b.ports {
		if p.state == Disabled {
			continue
		}
		if p.peer == nil {
			p.state = Disabled
			continue
		}
		bpdu := p.drain()
		if bpdu == nil {
			b.handleAging(p)
			continue
		}
		received = append(received, inbound{p, bpdu})
	}

	for _, in := range received {
		b.receive(in.port, in.bpdu)
	}

	for _, p := range b.ports {
		if p.state == Learning && b.clock-p.forwardTime >= ForwardDelay {
			if p.role == Root || p.role == Designated {
				p.state = Forwarding
			} else {
				p.state = Blocking
			}
			b.trace.Event(b.clock, b.id.MAC, "state", fmt.Sprintf("port=%d -> %s", p.index, p.state))
		}
	}

	b.clock++
}

// enterBootPhase implements the "root war" boot transition: every
// non-disabled port moves from its power-up Blocking state straight to
// Listening, and the topology-change flags are cleared. Used only for
// the genuine clock == 0 power-up, where there is by definition no
// pending topology change to preserve.
func (b *Bridge) enterBootPhase() {
	b.resetPortsToListening()
	b.tcFlag = false
	b.tcAckFlag = false
}

// reenterBootPhase pushes every non-disabled port back to Listening and
// forgets the current root port, without touching the topology-change
// flags — used by mid-simulation reconvergence (§4.3 Topology-change
// handling, and root-port loss in loseRootPort), where a flag this
// bridge just set to signal the very change driving the reconvergence
// must survive the transition, not be clobbered by it.
func (b *Bridge) reenterBootPhase() {
	b.rootPort = nil
	b.resetPortsToListening()
}

func (b *Bridge) resetPortsToListening() {
	for _, p := range b.ports {
		if p.state == Disabled {
			continue
		}
		p.resetElection()
		p.state = Listening
		p.forwardTime = b.clock
		p.lastReceiptTick = b.clock
	}
}

// receive classifies one drained BPDU and dispatches it.
func (b *Bridge) receive(p *Port, bpdu *BPDU) {
	if bpdu.IsTCN() {
		b.handleTCN(p)
		return
	}

	// TCAck rides as a flag on a Configuration BPDU, not a distinct
	// message type: a non-root bridge hearing it clears its own TC flag,
	// flushes its MAC table, and starts over from the boot transition.
	if bpdu.TCAckFlag && !b.IsRootBridge() {
		b.tcFlag = false
		b.macTable = make(map[int]string)
		b.reenterBootPhase()
	}

	// A Configuration BPDU whose relayed information is already as old
	// as MaxAge carries nothing this bridge can trust more than what
	// aging would already discard; treat it as if nothing arrived so the
	// ordinary aging path — not a stale election — decides this port's
	// fate.
	if bpdu.IsConfiguration() && bpdu.MessageAge >= MaxAge {
		b.trace.Event(b.clock, b.id.MAC, "stale-bpdu", fmt.Sprintf("port=%d age=%d", p.index, bpdu.MessageAge))
		b.handleAging(p)
		return
	}

	// A strictly better root heard on a port that has already left
	// Listening sends the whole bridge back through election, so the
	// Listening sub-phase below adopts it.
	if p.state != Listening && bpdu.RootID.Less(b.rootID) {
		b.reenterBootPhase()
	}
	p.stored = bpdu
	p.lastReceiptTick = b.clock

	switch p.state {
	case Listening:
		b.receiveListening(p, bpdu)
	case Learning:
		b.receiveLearning(p, bpdu)
	}
	// Ports in Forwarding or Blocking just had `stored`/lastReceiptTick
	// refreshed above, which is enough to keep them from being aged out
	// while the link is healthy; spec §4.3 names only the Listening and
	// Learning sub-phases as doing anything further on receipt.

	b.recomputeConverged()
}

// receiveListening implements §4.3's "Port in Listening" sub-phase.
func (b *Bridge) receiveListening(p *Port, bpdu *BPDU) {
	switch {
	case bpdu.RootID.Less(b.rootID):
		b.adoptRoot(bpdu)
	case b.rootPort == nil && !b.IsRootBridge():
		b.electRootPort()
	default:
		b.electDesignatedPort(p, bpdu)
	}

	if p.state == Listening && b.clock-p.forwardTime >= ForwardDelay {
		p.state = Learning
		p.forwardTime = b.clock
	}
}

// adoptRoot is §4.3.a's step (a): a strictly better root was advertised.
// Every port that had won Root or Designated role must be re-elected
// against the new root.
func (b *Bridge) adoptRoot(bpdu *BPDU) {
	b.rootID = bpdu.RootID
	b.cost = bpdu.Cost + PathCost
	for _, q := range b.ports {
		if q.role == Root || q.role == Designated {
			q.role = Nondesignated
		}
	}
	b.rootPort = nil
	b.trace.Event(b.clock, b.id.MAC, "adopt-root", fmt.Sprintf("root=%s cost=%d", b.rootID, b.cost))
}

// receiveLearning implements §4.3's "Port in Learning" sub-phase.
func (b *Bridge) receiveLearning(p *Port, bpdu *BPDU) {
	b.macTable[p.index] = bpdu.SenderID.MAC

	if b.clock-p.forwardTime >= ForwardDelay {
		if p.role == Root || p.role == Designated {
			p.state = Forwarding
		} else {
			p.state = Blocking
		}
		b.trace.Event(b.clock, b.id.MAC, "state", fmt.Sprintf("port=%d -> %s", p.index, p.state))
	}
}

// electRootPort implements §4.3.a: the minimum-cost, then
// minimum-sender-ID, then minimum-port-index (implicit from ascending
// iteration with strict-improvement replacement) root-port election.
func (b *Bridge) electRootPort() {
	var best *Port
	for _, q := range b.ports {
		if q.state == Disabled || q.stored == nil {
			continue
		}
		switch {
		case best == nil:
			best = q
		case q.stored.Cost < best.stored.Cost:
			best = q
		case q.stored.Cost == best.stored.Cost && q.stored.SenderID.Less(best.stored.SenderID):
			best = q
		}
	}
	if best == nil {
		return
	}
	best.role = Root
	best.state = Learning
	best.forwardTime = b.clock
	b.rootID = best.stored.RootID
	b.cost = best.stored.Cost + PathCost
	b.rootPort = best
	b.trace.Event(b.clock, b.id.MAC, "root-port", fmt.Sprintf("port=%d cost=%d", best.index, b.cost))
}

// electDesignatedPort implements §4.3.b for the port that just received
// bpdu.
func (b *Bridge) electDesignatedPort(p *Port, bpdu *BPDU) {
	designated := false
	switch {
	case b.IsRootBridge():
		designated = true
	case p.peer != nil && p.peer.role == Root:
		designated = true
	case b.cost < bpdu.Cost:
		designated = true
	case b.cost == bpdu.Cost && b.id.Less(bpdu.SenderID):
		designated = true
	}

	if designated {
		p.role = Designated
		if p.state == Listening {
			p.state = Learning
			p.forwardTime = b.clock
		}
		return
	}

	if p.peer != nil && p.peer.state == Forwarding {
		p.state = Blocking
	}
}

// handleTCN implements §4.3's Topology-change handling for an inbound
// TCN: the root bridge acks and floods; every other bridge sets its TC
// flag and re-enters election.
func (b *Bridge) handleTCN(p *Port) {
	b.trace.Event(b.clock, b.id.MAC, "tcn", fmt.Sprintf("port=%d", p.index))
	if b.IsRootBridge() {
		b.tcAckFlag = true
		return
	}
	b.tcFlag = true
	b.reenterBootPhase()
}

// handleAging implements §4.3's "Aging and link-break detection" for a
// port that yielded no BPDU this tick. Designated ports are exempt: a
// Designated port's information is self-generated, not learned from a
// peer, so there is nothing to age out.
//
// A Root-role port is handled separately from an ordinary Nondesignated
// one: losing the path to the current root is not just the loss of one
// link, it invalidates this bridge's whole belief about who the root is,
// so it must fall back to the boot-time assumption (itself as root) and
// let election run again, rather than simply relabeling the dead port.
func (b *Bridge) handleAging(p *Port) {
	if p.role == Designated {
		return
	}
	if p.peer != nil && p.peer.state == Disabled {
		if p.role == Root {
			b.loseRootPort(p)
			return
		}
		p.role = Designated
		p.state = Forwarding
		p.forwardTime = b.clock
		b.trace.Event(b.clock, b.id.MAC, "promote", fmt.Sprintf("port=%d", p.index))
		return
	}
	if b.clock-p.lastReceiptTick >= MaxAge {
		if p.role == Root {
			b.loseRootPort(p)
			return
		}
		p.state = Disabled
		p.peer = nil
		b.trace.Event(b.clock, b.id.MAC, "age-out", fmt.Sprintf("port=%d", p.index))
		b.floodTCN(p)
	}
}

// loseRootPort handles the loss of this bridge's only path to the root:
// the dead port is disabled and disconnected, the bridge reverts to
// believing itself root (until a better claim arrives), and every
// remaining port is pushed back through the boot transition so a fresh
// election can run.
func (b *Bridge) loseRootPort(p *Port) {
	p.state = Disabled
	p.peer = nil
	b.rootPort = nil
	b.rootID = b.id
	b.cost = 0
	b.trace.Event(b.clock, b.id.MAC, "lost-root", fmt.Sprintf("port=%d", p.index))
	b.floodTCN(p)
	b.reenterBootPhase()
}

// floodTCN sends a Topology Change Notification out every connected,
// non-disabled port other than the one that just triggered it.
func (b *Bridge) floodTCN(origin *Port) {
	for _, q := range b.ports {
		if q == origin || q.state == Disabled || q.peer == nil {
			continue
		}
		q.send(NewTCNBPDU())
	}
}

// breakLink implements the explicit link-break operation of §4.3: it is
// asymmetric by design — only this side's peer reference is cleared, so
// the far side discovers the break on its own (either immediately, via
// handleAging's promote-on-peer-disabled shortcut, or after MaxAge ticks
// of silence).
func (b *Bridge) breakLink(index int) {
	if index < 0 || index >= len(b.ports) {
		return
	}
	p := b.ports[index]
	b.trace.Event(b.clock, b.id.MAC, "break", fmt.Sprintf("port=%d", index))

	if p.role == Root {
		// Losing the root port invalidates this bridge's whole belief
		// about the root, not just this one link: fall back fully,
		// exactly as an aged-out root port would.
		b.loseRootPort(p)
		return
	}

	p.peer = nil
	p.state = Disabled
	b.tcFlag = true
	b.floodTCN(p)
}

// disable sets every non-disabled port on this bridge to Disabled,
// without touching peers — used by Topology.DeleteBridge. Neighbors
// discover the loss through handleAging, same as any other aging event.
func (b *Bridge) disable() {
	for _, p := range b.ports {
		p.state = Disabled
	}
}

// recomputeConverged exists purely as a documented call site for the
// convergence predicate; Converged() is computed on demand rather than
// cached, since caching it would mean updating it from every single
// state-change call site instead of just this one.
func (b *Bridge) recomputeConverged() {
	_ = b.Converged()
}

func (b *Bridge) String() string {
	return b.Snapshot().String()
}

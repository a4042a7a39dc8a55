package stpsim

// port.go models a single bridge interface: its role and state, its
// single-slot receive buffer, its retained election information, and
// its connection to the port on the far end of the link. Ports on two
// bridges point at each other directly (peer *Port) rather than
// through topology-owned indexed handles: Go's garbage collector
// resolves the resulting A<->B reference cycle without difficulty, so
// the indirection a non-GC'd implementation would need is not worth
// the extra bookkeeping here.

// Port is one interface on a Bridge.
type Port struct {
	index int // 0-based, stable for the lifetime of the port

	peer *Port // the port on the far end of the link; nil if link down

	state PortState
	role  PortRole

	// pending is the single-slot wire receive buffer: send() writes it,
	// drain() atomically empties it. A BPDU sitting here that is never
	// drained (because the port is Disabled) is simply lost, same as one
	// dropped by aging.
	pending *BPDU

	// stored is the last Configuration BPDU this port successfully
	// drained, retained across ticks for the root-port and
	// designated-port elections in bridge.go. This is distinct from
	// pending: pending is the raw, single-consumption wire slot, while
	// stored is the bridge's running memory of "what this neighbor last
	// told me", mirroring branches/STP2/Port.java's storedBPDU field.
	stored *BPDU

	// lastReceiptTick is the tick at which stored was last refreshed;
	// bridge.go's aging check compares the current clock against this.
	lastReceiptTick int

	// forwardTime records the tick at which this port last entered
	// Listening or Learning, for the FORWARD_DELAY timer in bridge.go.
	forwardTime int
}

// newPort constructs a Port in its power-up state: Blocking,
// Nondesignated, disconnected, with empty receive and stored slots.
func newPort(index int) *Port {
	return &Port{
		index: index,
		state: Blocking,
		role:  Nondesignated,
	}
}

// Index returns this port's stable interface index.
func (p *Port) Index() int { return p.index }

// State returns the port's current PortState.
func (p *Port) State() PortState { return p.state }

// Role returns the port's current PortRole.
func (p *Port) Role() PortRole { return p.role }

// Peer returns the port on the far end of the link, or nil if the link is
// down.
func (p *Port) Peer() *Port { return p.peer }

// setState sets the port's state.
func (p *Port) setState(s PortState) { p.state = s }

// setRole sets the port's role.
func (p *Port) setRole(r PortRole) { p.role = r }

// connect sets a bidirectional peer reference between p and peer,
// clearing whichever old peer each side had. Passing nil models a link
// break: the previous peer (if any) has its own reference cleared
// symmetrically. connect is idempotent when called again with the same
// peer.
func (p *Port) connect(peer *Port) {
	if p.peer == peer {
		return
	}
	if p.peer != nil {
		p.peer.peer = nil
	}
	p.peer = peer
	if peer != nil {
		if peer.peer != nil {
			peer.peer.peer = nil
		}
		peer.peer = p
	}
}

// send deposits bpdu into the peer port's receive slot, overwriting
// whatever was pending there. It is a silent no-op if the port is
// disconnected — there is no queueing, and a dropped BPDU here is
// indistinguishable on the wire from one lost to aging.
func (p *Port) send(bpdu BPDU) {
	if p.peer == nil {
		return
	}
	cp := bpdu
	p.peer.pending = &cp
}

// drain atomically takes the pending BPDU, if any, leaving the slot
// empty, and returns it. This is the only read path a Bridge uses on its
// own ports; drain enforces that a BPDU is consumed exactly once.
func (p *Port) drain() *BPDU {
	b := p.pending
	p.pending = nil
	return b
}

// resetElection clears election-derived state back to power-up values:
// no pending or stored BPDU, Nondesignated role. Used both by the boot
// phase and by topology-change reconvergence, mirroring
// branches/STP2/Port.java's refresh().
func (p *Port) resetElection() {
	p.pending = nil
	p.stored = nil
	p.role = Nondesignated
}

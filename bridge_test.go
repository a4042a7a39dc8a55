package stpsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeBootsIntoListening(t *testing.T) {
	trace := NewTraceManager(false, nil)
	a := NewBridge("00:00:00:00:00:01", DefaultPriority, trace)
	b := NewBridge("00:00:00:00:00:02", DefaultPriority, trace)
	pa := a.ensurePort(0)
	pb := b.ensurePort(0)
	pa.connect(pb)

	a.EmitPhase()
	b.EmitPhase()
	a.ProcessPhase()
	b.ProcessPhase()

	assert.Equal(t, Listening, pa.state)
	assert.Equal(t, Listening, pb.state)
	assert.Equal(t, 1, a.Clock())
}

func TestMessageAgeIsZeroForRootBridge(t *testing.T) {
	b := NewBridge("00:00:00:00:00:01", DefaultPriority, nil)
	b.ensurePort(0)
	assert.Equal(t, 0, b.messageAge())
}

func TestMessageAgeAccumulatesSinceLastReceiptOnRootPort(t *testing.T) {
	b := NewBridge("00:00:00:00:00:02", DefaultPriority, nil)
	root := NewBridgeID(DefaultPriority, "00:00:00:00:00:01")
	p := b.ensurePort(0)
	p.role = Root
	p.stored = &BPDU{Type: ConfigurationBPDU, RootID: root, MessageAge: 3}
	p.lastReceiptTick = 2
	b.rootID = root
	b.rootPort = p
	b.clock = 5

	assert.Equal(t, 6, b.messageAge(), "3 ticks old when received, plus 3 ticks elapsed since")
}

func TestStaleMessageAgeIsTreatedAsAging(t *testing.T) {
	trace := NewTraceManager(true, nil)
	a := NewBridge("00:00:00:00:00:01", DefaultPriority, trace)
	c := NewBridge("00:00:00:00:00:02", DefaultPriority, trace)
	pa := a.ensurePort(0)
	pc := c.ensurePort(0)
	pa.connect(pc)
	pa.role = Nondesignated
	pa.state = Forwarding
	pa.lastReceiptTick = 0

	stale := NewConfigurationBPDU(c.id, 0, c.id, 0, MaxAge, false, false)
	a.receive(pa, &stale)

	assert.Nil(t, pa.stored, "a BPDU as old as MaxAge must not be adopted as fresh information")
}

func TestBridgeAdoptsBetterRoot(t *testing.T) {
	trace := NewTraceManager(false, nil)
	a := NewBridge("00:00:00:00:00:01", DefaultPriority, trace) // numerically larger MAC
	b := NewBridge("00:00:00:00:00:00", DefaultPriority, trace) // wins root election
	pa := a.ensurePort(0)
	pb := b.ensurePort(0)
	pa.connect(pb)

	topo := NewTopology(trace)
	topo.bridges[a.id.MAC] = a
	topo.bridges[b.id.MAC] = b
	topo.edges = append(topo.edges, Edge{BridgeA: a.id.MAC, PortA: 0, BridgeB: b.id.MAC, PortB: 0})

	require.True(t, topo.Run(200))

	assert.True(t, b.IsRootBridge())
	assert.False(t, a.IsRootBridge())
	assert.True(t, a.RootID().Equal(b.ID()))
	require.NotNil(t, a.RootPort())
	assert.Equal(t, Root, a.RootPort().Role())
	assert.Equal(t, PathCost, a.Cost())
}

func TestTwoBridgeChainConverges(t *testing.T) {
	topo := buildChain(t, 2)
	require.True(t, topo.Run(200))
	assertSingleRootAndLoopFree(t, topo)

	bridges := topo.Bridges()
	forwardingCount := 0
	for _, b := range bridges {
		for _, p := range b.Ports() {
			if p.State() == Forwarding {
				forwardingCount++
			}
		}
	}
	assert.Equal(t, 2, forwardingCount, "both ends of the single link should end up Forwarding")
}

func TestTriangleBlocksExactlyOnePort(t *testing.T) {
	trace := NewTraceManager(false, nil)
	topo := NewTopology(trace)
	names := []string{"00:00:00:00:00:01", "00:00:00:00:00:02", "00:00:00:00:00:03"}
	for _, mac := range names {
		_, err := topo.AddBridge(mac, DefaultPriority)
		require.NoError(t, err)
	}
	require.NoError(t, topo.AddLink(names[0], 0, names[1], 0))
	require.NoError(t, topo.AddLink(names[1], 1, names[2], 0))
	require.NoError(t, topo.AddLink(names[2], 1, names[0], 1))

	require.True(t, topo.Run(300))
	assertSingleRootAndLoopFree(t, topo)

	blocking := countPortsInState(topo, Blocking)
	assert.Equal(t, 1, blocking, "a 3-bridge ring has exactly one redundant link to block")
}

func TestLinearFourBridgeConverges(t *testing.T) {
	topo := buildChain(t, 4)
	require.True(t, topo.Run(300))
	assertSingleRootAndLoopFree(t, topo)
	assert.Equal(t, 0, countPortsInState(topo, Blocking), "a tree with no redundant links blocks nothing")
}

func TestSquareWithDiagonalBlocksOneLink(t *testing.T) {
	trace := NewTraceManager(false, nil)
	topo := NewTopology(trace)
	names := []string{"00:00:00:00:00:01", "00:00:00:00:00:02", "00:00:00:00:00:03", "00:00:00:00:00:04"}
	for _, mac := range names {
		_, err := topo.AddBridge(mac, DefaultPriority)
		require.NoError(t, err)
	}
	// Square: 1-2-3-4-1, plus diagonal 1-3.
	require.NoError(t, topo.AddLink(names[0], 0, names[1], 0))
	require.NoError(t, topo.AddLink(names[1], 1, names[2], 0))
	require.NoError(t, topo.AddLink(names[2], 1, names[3], 0))
	require.NoError(t, topo.AddLink(names[3], 1, names[0], 1))
	require.NoError(t, topo.AddLink(names[0], 2, names[2], 2))

	require.True(t, topo.Run(300))
	assertSingleRootAndLoopFree(t, topo)
	assert.Equal(t, 1, countPortsInState(topo, Blocking), "one link of five must block to keep four bridges loop-free")
}

func TestLinkBreakAfterConvergenceReconverges(t *testing.T) {
	// A triangle has one redundant path, so breaking a Forwarding link
	// (rather than the already-Blocking one) leaves the topology
	// connected and exercises the previously-blocked port taking over.
	trace := NewTraceManager(false, nil)
	topo := NewTopology(trace)
	names := []string{"00:00:00:00:00:01", "00:00:00:00:00:02", "00:00:00:00:00:03"}
	for _, mac := range names {
		_, err := topo.AddBridge(mac, DefaultPriority)
		require.NoError(t, err)
	}
	require.NoError(t, topo.AddLink(names[0], 0, names[1], 0))
	require.NoError(t, topo.AddLink(names[1], 1, names[2], 0))
	require.NoError(t, topo.AddLink(names[2], 1, names[0], 1))

	require.True(t, topo.Run(300))
	assertSingleRootAndLoopFree(t, topo)
	require.Equal(t, 1, countPortsInState(topo, Blocking))

	root, ok := topo.Bridge(names[0])
	require.True(t, ok)

	var forwardingPort int = -1
	for _, p := range root.Ports() {
		if p.State() == Forwarding {
			forwardingPort = p.Index()
			break
		}
	}
	require.NotEqual(t, -1, forwardingPort, "the root bridge must have at least one Forwarding port")

	require.NoError(t, topo.DeleteLink(root.ID().MAC, forwardingPort))
	require.True(t, topo.Run(300))
	assertSingleRootAndLoopFree(t, topo)
	assert.Equal(t, 0, countPortsInState(topo, Blocking), "with the triangle broken into a chain, nothing should still block")
}

func TestAgingDisablesSilentPortAndFloodsTCN(t *testing.T) {
	// Exercises the pure MaxAge branch of handleAging: a port whose peer
	// is still connected (never Disabled) but has simply stopped
	// advertising must, after MaxAge ticks of silence, disable itself and
	// flood a TCN — as opposed to the paths the other scenarios in this
	// file take: DeleteLink disables both ends directly, and DeleteBridge
	// leaves neighbors to the peer-disabled shortcut.
	trace := NewTraceManager(true, nil)
	topo := NewTopology(trace)
	names := []string{"00:00:00:00:00:01", "00:00:00:00:00:02", "00:00:00:00:00:03"}
	for _, mac := range names {
		_, err := topo.AddBridge(mac, DefaultPriority)
		require.NoError(t, err)
	}
	require.NoError(t, topo.AddLink(names[0], 0, names[1], 0))
	require.NoError(t, topo.AddLink(names[1], 1, names[2], 0))
	require.NoError(t, topo.AddLink(names[2], 1, names[0], 1))

	require.True(t, topo.Run(300))
	assertSingleRootAndLoopFree(t, topo)

	var blocked *Port
	for _, b := range topo.Bridges() {
		for _, p := range b.Ports() {
			if p.State() == Blocking {
				blocked = p
			}
		}
	}
	require.NotNil(t, blocked, "the triangle must have exactly one blocked port")
	peer := blocked.Peer()
	require.NotNil(t, peer)
	require.Equal(t, Designated, peer.Role(), "the blocked port's peer must be the winning Designated side")

	// Silence the peer without disabling it, so aging on the blocked
	// port can only take the pure elapsed-time branch.
	peer.setState(Blocking)

	topo.TickN(MaxAge + 1)

	assert.Equal(t, Disabled, blocked.State(), "a port silent for MaxAge ticks must be disabled")
	assert.Nil(t, blocked.Peer(), "an aged-out port must forget its peer")

	agedOut, tcnSeen := false, false
	for _, ev := range trace.Events() {
		if ev.Kind == "age-out" {
			agedOut = true
		}
		if ev.Kind == "tcn" {
			tcnSeen = true
		}
	}
	assert.True(t, agedOut, "aging out a port must be traced")
	assert.True(t, tcnSeen, "the flood from the aged-out bridge must reach a neighbor's TCN handler")
}

func TestRootFailureElectsNewRoot(t *testing.T) {
	topo := buildChain(t, 3)
	require.True(t, topo.Run(300))

	var oldRootMAC string
	for _, b := range topo.Bridges() {
		if b.IsRootBridge() {
			oldRootMAC = b.ID().MAC
		}
	}
	require.NotEmpty(t, oldRootMAC)

	require.NoError(t, topo.DeleteBridge(oldRootMAC))
	require.True(t, topo.Run(300))

	remaining := topo.Bridges()
	require.Len(t, remaining, 2)
	rootCount := 0
	for _, b := range remaining {
		if b.IsRootBridge() {
			rootCount++
		}
	}
	assert.Equal(t, 1, rootCount, "exactly one of the survivors must become the new root")
	assert.True(t, topo.IsLoopFree())
}

// buildChain constructs a linear topology of n bridges named
// 00:00:00:00:00:01 .. 00:00:00:00:00:0n, each linked to the next.
func buildChain(t *testing.T, n int) *Topology {
	t.Helper()
	trace := NewTraceManager(false, nil)
	topo := NewTopology(trace)

	macs := make([]string, n)
	for i := 0; i < n; i++ {
		macs[i] = macFor(i + 1)
		_, err := topo.AddBridge(macs[i], DefaultPriority)
		require.NoError(t, err)
	}
	for i := 0; i < n-1; i++ {
		require.NoError(t, topo.AddLink(macs[i], 1, macs[i+1], 0))
	}
	return topo
}

func macFor(n int) string {
	return "00:00:00:00:00:0" + string(rune('0'+n))
}

func assertSingleRootAndLoopFree(t *testing.T, topo *Topology) {
	t.Helper()
	bridges := topo.Bridges()

	rootCount := 0
	var rootID BridgeID
	for _, b := range bridges {
		if b.IsRootBridge() {
			rootCount++
			rootID = b.ID()
		}
	}
	assert.Equal(t, 1, rootCount, "exactly one bridge may believe itself root")

	for _, b := range bridges {
		assert.True(t, b.RootID().Equal(rootID), "every bridge must agree on the root")
		rootPorts := 0
		for _, p := range b.Ports() {
			if p.Role() == Root {
				rootPorts++
			}
		}
		if b.IsRootBridge() {
			assert.Equal(t, 0, rootPorts, "the root bridge has no root port")
		} else {
			assert.Equal(t, 1, rootPorts, "a non-root bridge must have exactly one root port")
		}
	}

	assert.True(t, topo.IsLoopFree())
}

func countPortsInState(topo *Topology, state PortState) int {
	count := 0
	for _, b := range topo.Bridges() {
		for _, p := range b.Ports() {
			if p.State() == state {
				count++
			}
		}
	}
	return count
}

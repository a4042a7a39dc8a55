package stpsim

import (
	"fmt"
	"sort"
	"strings"
)

// snapshot.go implements the observable output described by the design:
// a pointer-free, serializable readout of a Bridge or Topology's current
// state, in the same struct-with-json/yaml-tags idiom desc-topo.go uses
// for its Desc types (see config.go), but built for inspection rather
// than round-tripping — a Snapshot is never read back in to rebuild a
// Topology.

// PortSnapshot is the observable state of one Port. Connected reports
// whether the port currently has a peer; which bridge and port sit on
// the far end is not recoverable from a Port alone (it has no owner
// backreference), so a caller wanting the full picture should
// cross-reference Topology.Edges.
type PortSnapshot struct {
	Index     int    `json:"index" yaml:"index"`
	State     string `json:"state" yaml:"state"`
	Role      string `json:"role" yaml:"role"`
	Connected bool   `json:"connected" yaml:"connected"`
}

// BridgeSnapshot is the observable state of one Bridge: its believed
// root, its root port (if any), every port's role/state, and its
// learned MAC table.
type BridgeSnapshot struct {
	ID       string         `json:"id" yaml:"id"`
	RootID   string         `json:"root_id" yaml:"root_id"`
	Cost     int            `json:"cost" yaml:"cost"`
	RootPort int            `json:"root_port" yaml:"root_port"` // -1 if none
	Clock    int            `json:"clock" yaml:"clock"`
	Ports    []PortSnapshot `json:"ports" yaml:"ports"`
	MACTable map[int]string `json:"mac_table" yaml:"mac_table"`
}

// Snapshot returns a pointer-free readout of this bridge's current
// state, suitable for logging, diffing in tests, or serializing.
func (b *Bridge) Snapshot() BridgeSnapshot {
	rootPort := -1
	if b.rootPort != nil {
		rootPort = b.rootPort.index
	}

	ports := make([]PortSnapshot, len(b.ports))
	for i, p := range b.ports {
		ports[i] = PortSnapshot{
			Index:     p.index,
			State:     p.state.String(),
			Role:      p.role.String(),
			Connected: p.peer != nil,
		}
	}

	return BridgeSnapshot{
		ID:       b.id.String(),
		RootID:   b.rootID.String(),
		Cost:     b.cost,
		RootPort: rootPort,
		Clock:    b.clock,
		Ports:    ports,
		MACTable: b.MACTable(),
	}
}

// String renders the observable state vector described by the design:
// bridge ID and optional root flag, simulated time, one line per
// interface (with a Cost line for the root port), and a MAC-address
// table section — the direct descendant of branches/STP2/Bridge.java's
// toString(), reordered so the root-bridge flag follows directly after
// the Bridge ID line.
func (s BridgeSnapshot) String() string {
	var out strings.Builder

	fmt.Fprintf(&out, "Bridge ID: %s\n", s.ID)
	if s.RootID == s.ID {
		out.WriteString("I am the Root Bridge\n")
	}
	fmt.Fprintf(&out, "Time: %d\n", s.Clock)

	for _, p := range s.Ports {
		fmt.Fprintf(&out, "Interface %d: role=%s state=%s\n", p.Index, p.Role, p.State)
		if p.Index == s.RootPort {
			fmt.Fprintf(&out, "  Cost: %d\n", s.Cost)
		}
	}

	out.WriteString("MAC address table:\n")
	if len(s.MACTable) == 0 {
		out.WriteString("  (empty)\n")
	} else {
		indices := make([]int, 0, len(s.MACTable))
		for idx := range s.MACTable {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		for _, idx := range indices {
			fmt.Fprintf(&out, "  %d -> %s\n", idx, s.MACTable[idx])
		}
	}

	return out.String()
}

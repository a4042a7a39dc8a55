package stpsim

import "fmt"

// bridgeid.go declares the total order used everywhere in this module to
// pick winners: root election, root-port tie-break, and designated-port
// tie-break all reduce to comparing two BridgeIDs.

// DefaultPriority is the priority value shared by every bridge unless a
// TopologyDesc overrides it (see config.go). 802.1D's default bridge
// priority is 32768 (0x8000).
const DefaultPriority uint16 = 0x8000

// BridgeID is a bridge's priority concatenated with its MAC address, in
// that order, forming the identifier the root-election algorithm compares
// lexicographically: numerically lower priority wins first, MAC address
// breaks ties within equal priority. Since every bridge in this module
// shares DefaultPriority unless configured otherwise, in practice MAC
// address is almost always the deciding factor — exactly as it is on
// real hardware with untouched bridge priorities.
type BridgeID struct {
	Priority uint16
	MAC      string
}

// NewBridgeID builds a BridgeID from a priority and a MAC address string.
// The MAC is treated as an opaque, network-unique token; this module does
// not validate its format.
func NewBridgeID(priority uint16, mac string) BridgeID {
	return BridgeID{Priority: priority, MAC: mac}
}

// Less reports whether id is a strictly better (numerically smaller)
// Bridge ID than other. Comparison is by value, never by identity — the
// source material this module was distilled from mixed string-identity
// and value comparisons for bridge equality; this module always compares
// values (spec Open Question, resolved: use value equality throughout).
func (id BridgeID) Less(other BridgeID) bool {
	if id.Priority != other.Priority {
		return id.Priority < other.Priority
	}
	return id.MAC < other.MAC
}

// Equal reports value equality between two BridgeIDs.
func (id BridgeID) Equal(other BridgeID) bool {
	return id.Priority == other.Priority && id.MAC == other.MAC
}

func (id BridgeID) String() string {
	return fmt.Sprintf("%04x.%s", id.Priority, id.MAC)
}

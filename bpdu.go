package stpsim

// bpdu.go models the Bridge Protocol Data Unit exchanged between ports.
// A BPDU is immutable once constructed; nothing in this package mutates
// one in place, matching the "created on send, drained on read" lifecycle
// of Port's single-slot receive buffer (see port.go).
//
// 802.1D defines two BPDU types this simulator cares about: the periodic
// Configuration advertisement, and the Topology Change Notification sent
// upward toward the root when a bridge detects a lost or gained link.
// A third RSTP variant exists in the source material this module was
// distilled from but is unreachable there and is not modeled here.

// BPDUType is the closed set of BPDU kinds this simulator exchanges.
type BPDUType int

const (
	ConfigurationBPDU BPDUType = iota
	TopologyChangeNotificationBPDU
)

func (t BPDUType) String() string {
	switch t {
	case ConfigurationBPDU:
		return "Configuration"
	case TopologyChangeNotificationBPDU:
		return "TCN"
	default:
		return "Unknown"
	}
}

// BPDU is a tagged union over {Configuration, TCN}. Only the fields
// relevant to the Type are meaningful; callers should not read
// Configuration fields off a TCN and vice versa. A single struct with
// gated fields (rather than an interface per variant) is used here
// because both variants are cheap, copyable, and the field set is small
// and fixed — the tag alone is enough to keep the two from being
// confused.
type BPDU struct {
	Type BPDUType

	// Configuration fields, meaningful when Type == ConfigurationBPDU.
	RootID       BridgeID
	Cost         int
	SenderID     BridgeID
	PortIndex    int
	MessageAge   int
	MaxAge       int
	HelloTime    int
	ForwardDelay int
	TCFlag       bool
	TCAckFlag    bool
}

// NewConfigurationBPDU constructs a Configuration BPDU advertising the
// sender's current belief about the root, its cost to reach it, and the
// topology-change flags currently in effect.
func NewConfigurationBPDU(rootID BridgeID, cost int, senderID BridgeID, portIndex, messageAge int, tc, tcAck bool) BPDU {
	return BPDU{
		Type:         ConfigurationBPDU,
		RootID:       rootID,
		Cost:         cost,
		SenderID:     senderID,
		PortIndex:    portIndex,
		MessageAge:   messageAge,
		MaxAge:       MaxAge,
		HelloTime:    HelloTime,
		ForwardDelay: ForwardDelay,
		TCFlag:       tc,
		TCAckFlag:    tcAck,
	}
}

// NewTCNBPDU constructs a Topology Change Notification. It carries no
// payload beyond its type marker; the sender is implicit (whichever port
// it arrives on).
func NewTCNBPDU() BPDU {
	return BPDU{Type: TopologyChangeNotificationBPDU}
}

// IsConfiguration reports whether this BPDU carries a Configuration
// advertisement.
func (b BPDU) IsConfiguration() bool {
	return b.Type == ConfigurationBPDU
}

// IsTCN reports whether this BPDU is a Topology Change Notification.
func (b BPDU) IsTCN() bool {
	return b.Type == TopologyChangeNotificationBPDU
}

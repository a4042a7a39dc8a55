package stpsim

// timers.go collects the fixed 802.1D timing constants used by this
// simulator. All of them are expressed in ticks (spec: 1 tick ~= 1
// second) rather than wall-clock durations — see doc.go and topology.go's
// Tick method for the discrete-time model this implies.
const (
	// HelloTime is how often, in ticks, a bridge that owns the right to
	// speak on a port (i.e. is not Blocking, Disabled, or Root-role on
	// that port) emits a fresh Configuration BPDU.
	HelloTime = 2

	// ForwardDelay is how many ticks a port spends in Listening before
	// advancing to Learning, and in Learning before advancing to
	// Forwarding (or falling back to Blocking).
	ForwardDelay = 15

	// MaxAge is how many ticks may elapse without a fresh BPDU on a port
	// before this simulator treats the link as lost.
	MaxAge = 20

	// PathCost is the cost contributed by traversing one link. Real
	// 802.1D scales this by link speed; this simulator models a single
	// uniform link type (Fast Ethernet) per the spec's size budget.
	PathCost = 19
)

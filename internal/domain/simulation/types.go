// Package simulation models failure scenarios and their outcomes.
package simulation

// Kind discriminates the four scenario shapes the simulator supports.
type Kind string

const (
	KindNodeDown  Kind = "node_down"
	KindLinkDown  Kind = "link_down"
	KindMultiLink Kind = "multi_link"
	KindCascade   Kind = "cascade"
)

// EdgeRef identifies one specific link by its endpoints and interface pair,
// disambiguating parallel links between the same device pair.
type EdgeRef struct {
	DeviceA    string `json:"device_a"`
	InterfaceA string `json:"interface_a"`
	DeviceB    string `json:"device_b"`
	InterfaceB string `json:"interface_b"`
}

// Scenario is a closed variant over the four failure-scenario kinds. Only
// the fields relevant to Kind are populated.
type Scenario struct {
	Kind Kind `json:"kind"`

	// NodeDown / Cascade seed.
	Device string `json:"device,omitempty"`

	// LinkDown.
	Edge EdgeRef `json:"edge,omitempty"`

	// MultiLink.
	Edges []EdgeRef `json:"edges,omitempty"`

	// Cascade.
	Depth int `json:"depth,omitempty"`
}

// NodeDown builds a NodeDown scenario.
func NodeDown(device string) Scenario { return Scenario{Kind: KindNodeDown, Device: device} }

// LinkDown builds a LinkDown scenario.
func LinkDown(edge EdgeRef) Scenario { return Scenario{Kind: KindLinkDown, Edge: edge} }

// MultiLink builds a MultiLink scenario.
func MultiLink(edges []EdgeRef) Scenario { return Scenario{Kind: KindMultiLink, Edges: edges} }

// Cascade builds a Cascade scenario.
func Cascade(seed string, depth int) Scenario {
	return Scenario{Kind: KindCascade, Device: seed, Depth: depth}
}

// Severity classifies a simulation's connectivity loss, using
// thresholds of 50/25/10 on connectivity-loss percentage.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SeverityForLoss maps a connectivity-loss percentage to a Severity.
func SeverityForLoss(percent float64) Severity {
	switch {
	case percent >= 50:
		return SeverityCritical
	case percent >= 25:
		return SeverityHigh
	case percent >= 10:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// BrokenPair is a device pair that had a path before the failure and does
// not afterward.
type BrokenPair struct {
	DeviceA   string   `json:"device_a"`
	DeviceB   string   `json:"device_b"`
	PriorPath []string `json:"prior_path"`
}

// Result is the full output of one simulation.
type Result struct {
	Scenario          Scenario     `json:"scenario"`
	Partitioned       bool         `json:"partitioned"`
	Components        [][]string   `json:"components"`
	BrokenPairs       []BrokenPair `json:"broken_pairs"`
	ReachablePairs    int          `json:"reachable_pairs_before"`
	ConnectivityLoss  float64      `json:"connectivity_loss_percent"`
	Severity          Severity     `json:"severity"`
	RecoveryEstimateS int          `json:"recovery_estimate_seconds"`
}

// RecoveryEstimate returns the coarse recovery-time convention for a
// scenario kind. This is a fixed convention, not a measurement.
func RecoveryEstimate(kind Kind) int {
	switch kind {
	case KindNodeDown:
		return 30
	case KindLinkDown:
		return 10
	case KindMultiLink:
		return 45
	case KindCascade:
		return 60
	default:
		return 0
	}
}

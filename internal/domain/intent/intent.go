// Package intent models the declarative request that drives topology
// synthesis. An Intent is a closed record: unknown fields are
// rejected rather than passed through as a free-form overlay.
package intent

import (
	"fmt"

	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
)

// Pattern enumerates the structural families the synthesizer knows how to
// build.
type Pattern string

const (
	PatternFullMesh  Pattern = "full-mesh"
	PatternHubSpoke  Pattern = "hub-spoke"
	PatternRing      Pattern = "ring"
	PatternTree      Pattern = "tree"
	PatternLeafSpine Pattern = "leaf-spine"
	PatternHybrid    Pattern = "hybrid"
	// PatternUnset means "let the recommender choose" (C8).
	PatternUnset Pattern = ""
)

var validPatterns = map[Pattern]bool{
	PatternFullMesh:  true,
	PatternHubSpoke:  true,
	PatternRing:      true,
	PatternTree:      true,
	PatternLeafSpine: true,
	PatternHybrid:    true,
}

// Redundancy is the declared redundancy tier, mapped to a target
// edge-disjoint-path count via Target().
type Redundancy string

const (
	RedundancyMinimum  Redundancy = "minimum"
	RedundancyStandard Redundancy = "standard"
	RedundancyHigh     Redundancy = "high"
	RedundancyCritical Redundancy = "critical"
)

// Target returns the minimum edge-disjoint-path count implied by r.
func (r Redundancy) Target() int {
	switch r {
	case RedundancyMinimum:
		return 1
	case RedundancyStandard:
		return 2
	case RedundancyHigh:
		return 3
	case RedundancyCritical:
		return 4
	default:
		return 1
	}
}

var validRedundancy = map[Redundancy]bool{
	RedundancyMinimum:  true,
	RedundancyStandard: true,
	RedundancyHigh:     true,
	RedundancyCritical: true,
}

// Protocol is the declared routing protocol. Only OSPF is implemented by
// the core; other values parse but the synthesizer/validator
// treat them as a pass-through tag.
type Protocol string

const (
	ProtocolOSPF Protocol = "ospf"
	ProtocolBGP  Protocol = "bgp"
	ProtocolISIS Protocol = "isis"
)

var validProtocols = map[Protocol]bool{
	ProtocolOSPF: true,
	ProtocolBGP:  true,
	ProtocolISIS: true,
}

// DesignGoal biases pattern recommendation (C8) and post-hoc violation
// framing (C7); it does not change synthesis directly.
type DesignGoal string

const (
	DesignGoalCost        DesignGoal = "cost"
	DesignGoalRedundancy  DesignGoal = "redundancy"
	DesignGoalLatency     DesignGoal = "latency"
	DesignGoalScalability DesignGoal = "scalability"
)

var validDesignGoals = map[DesignGoal]bool{
	DesignGoalCost:        true,
	DesignGoalRedundancy:  true,
	DesignGoalLatency:     true,
	DesignGoalScalability: true,
}

// Intent is the immutable, named record a caller hands to the pipeline.
// Once constructed via Parse it is never mutated: the synthesizer,
// validator, and history store all treat it as a value type.
type Intent struct {
	Name                  string     `json:"name" yaml:"name"`
	Pattern               Pattern    `json:"pattern" yaml:"pattern"`
	SiteCount             int        `json:"site_count" yaml:"site_count"`
	Redundancy            Redundancy `json:"redundancy" yaml:"redundancy"`
	MaxHops               int        `json:"max_hops" yaml:"max_hops"`
	Protocol              Protocol   `json:"protocol" yaml:"protocol"`
	DesignGoal            DesignGoal `json:"design_goal" yaml:"design_goal"`
	MinimizeSPOF          bool       `json:"minimize_spof" yaml:"minimize_spof"`
	MinConnectionsPerSite int        `json:"min_connections_per_site" yaml:"min_connections_per_site"`
}

// Raw is the wire shape accepted from transport/CLI input before
// normalization. It is intentionally permissive about zero values so that
// Parse can apply the documented defaults, but Parse still rejects fields
// outside their domain.
type Raw struct {
	Name                  string `json:"name" yaml:"name"`
	Pattern               string `json:"pattern" yaml:"pattern"`
	SiteCount             int    `json:"site_count" yaml:"site_count"`
	Redundancy            string `json:"redundancy" yaml:"redundancy"`
	MaxHops               int    `json:"max_hops" yaml:"max_hops"`
	Protocol              string `json:"protocol" yaml:"protocol"`
	DesignGoal            string `json:"design_goal" yaml:"design_goal"`
	MinimizeSPOF          bool   `json:"minimize_spof" yaml:"minimize_spof"`
	MinConnectionsPerSite int    `json:"min_connections_per_site" yaml:"min_connections_per_site"`
}

// Parse normalizes a Raw request into a concrete Intent (C2). It applies
// defaults for omitted optional fields and returns *domerrors.InvalidIntentError
// for anything outside its documented domain.
func Parse(raw Raw) (Intent, error) {
	in := Intent{
		Name:                  raw.Name,
		Pattern:               Pattern(raw.Pattern),
		SiteCount:             raw.SiteCount,
		Redundancy:            Redundancy(raw.Redundancy),
		MaxHops:               raw.MaxHops,
		Protocol:              Protocol(raw.Protocol),
		DesignGoal:            DesignGoal(raw.DesignGoal),
		MinimizeSPOF:          raw.MinimizeSPOF,
		MinConnectionsPerSite: raw.MinConnectionsPerSite,
	}

	if in.Name == "" {
		in.Name = fmt.Sprintf("intent-%d-sites", in.SiteCount)
	}
	if in.Redundancy == "" {
		in.Redundancy = RedundancyStandard
	}
	if in.Protocol == "" {
		in.Protocol = ProtocolOSPF
	}
	if in.DesignGoal == "" {
		in.DesignGoal = DesignGoalRedundancy
	}
	if in.MaxHops == 0 {
		in.MaxHops = defaultMaxHops(in.SiteCount)
	}

	if err := in.Validate(); err != nil {
		return Intent{}, err
	}
	return in, nil
}

func defaultMaxHops(siteCount int) int {
	switch {
	case siteCount <= 10:
		return 3
	case siteCount <= 50:
		return 5
	default:
		return 8
	}
}

// Validate checks every field against its documented domain.
// Pattern may be PatternUnset: callers that want a recommendation (C8)
// construct an Intent without a pattern and Validate accepts that; the
// orchestrator is responsible for resolving PatternUnset before synthesis.
func (in Intent) Validate() error {
	if in.SiteCount < 2 || in.SiteCount > 500 {
		return &domerrors.InvalidIntentError{Field: "site_count", Value: in.SiteCount, Hint: "must be in [2, 500]"}
	}
	if in.Pattern != PatternUnset && !validPatterns[in.Pattern] {
		return &domerrors.InvalidIntentError{Field: "pattern", Value: in.Pattern, Hint: "unrecognized pattern"}
	}
	if !validRedundancy[in.Redundancy] {
		return &domerrors.InvalidIntentError{Field: "redundancy", Value: in.Redundancy, Hint: "unrecognized redundancy tier"}
	}
	if in.MaxHops <= 0 {
		return &domerrors.InvalidIntentError{Field: "max_hops", Value: in.MaxHops, Hint: "must be positive"}
	}
	if !validProtocols[in.Protocol] {
		return &domerrors.InvalidIntentError{Field: "protocol", Value: in.Protocol, Hint: "unrecognized protocol"}
	}
	if !validDesignGoals[in.DesignGoal] {
		return &domerrors.InvalidIntentError{Field: "design_goal", Value: in.DesignGoal, Hint: "unrecognized design goal"}
	}
	if in.MinConnectionsPerSite < 0 {
		return &domerrors.InvalidIntentError{Field: "min_connections_per_site", Value: in.MinConnectionsPerSite, Hint: "must be nonnegative"}
	}
	return nil
}

// HasPattern reports whether the caller pinned a pattern, as opposed to
// deferring to the recommender (C8).
func (in Intent) HasPattern() bool {
	return in.Pattern != PatternUnset
}

// Package handler holds the huma operation handlers registered on the chi
// router, one file per resource: pipeline, topology, recommendation,
// history and health each get their own.
package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domanalysis "github.com/netforge-labs/topoforge/internal/domain/analysis"
	"github.com/netforge-labs/topoforge/internal/domain/intent"
	domsimulation "github.com/netforge-labs/topoforge/internal/domain/simulation"
	"github.com/netforge-labs/topoforge/internal/domain/topology"
	domvalidation "github.com/netforge-labs/topoforge/internal/domain/validation"

	"github.com/netforge-labs/topoforge/internal/analysis"
	"github.com/netforge-labs/topoforge/internal/simulate"
	"github.com/netforge-labs/topoforge/internal/synth"
	"github.com/netforge-labs/topoforge/internal/validate"
)

// TopologyHandler exposes the individual pipeline stages (synthesis,
// analysis, simulation, validation) for callers that want one stage at a
// time rather than the full pipeline.
type TopologyHandler struct {
	synthesizer *synth.Synthesizer
	analyzer    *analysis.Analyzer
	simulator   *simulate.Simulator
	validator   *validate.Validator
	mapError    func(string, error) error
}

func NewTopologyHandler(mapError func(string, error) error) *TopologyHandler {
	return &TopologyHandler{
		synthesizer: synth.New(),
		analyzer:    analysis.New(),
		simulator:   simulate.New(),
		validator:   validate.New(),
		mapError:    mapError,
	}
}

func (h *TopologyHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "synthesize-topology",
		Method:      http.MethodPost,
		Path:        "/api/v1/topologies/synthesize",
		Summary:     "Synthesize a topology from an intent without running analysis or persistence",
		Tags:        []string{"topologies"},
	}, h.Synthesize)

	huma.Register(api, huma.Operation{
		OperationID: "analyze-topology",
		Method:      http.MethodPost,
		Path:        "/api/v1/topologies/analyze",
		Summary:     "Run graph analysis (SPOF detection, diameter, health score) on a supplied topology",
		Tags:        []string{"topologies"},
	}, h.Analyze)

	huma.Register(api, huma.Operation{
		OperationID: "simulate-topology",
		Method:      http.MethodPost,
		Path:        "/api/v1/topologies/simulate",
		Summary:     "Run a failure scenario against a supplied topology",
		Tags:        []string{"topologies"},
	}, h.Simulate)

	huma.Register(api, huma.Operation{
		OperationID: "validate-topology",
		Method:      http.MethodPost,
		Path:        "/api/v1/topologies/validate",
		Summary:     "Score a supplied topology against an intent",
		Tags:        []string{"topologies"},
	}, h.Validate)
}

type SynthesizeRequest struct {
	Intent intent.Raw `json:"intent"`
	Seed   *int64     `json:"seed,omitempty"`
}

func (h *TopologyHandler) Synthesize(ctx context.Context, input *struct {
	Body SynthesizeRequest
}) (*struct {
	Body topology.Topology
}, error) {
	in, err := intent.Parse(input.Body.Intent)
	if err != nil {
		return nil, h.mapError("invalid intent", err)
	}
	if !in.HasPattern() {
		return nil, huma.Error400BadRequest("synthesize requires an explicit pattern; use /api/v1/recommendations to choose one first")
	}

	topo, err := h.synthesizer.Synthesize(in, input.Body.Seed)
	if err != nil {
		return nil, h.mapError("synthesis failed", err)
	}

	return &struct{ Body topology.Topology }{Body: topo}, nil
}

func (h *TopologyHandler) Analyze(ctx context.Context, input *struct {
	Body topology.Topology
}) (*struct {
	Body domanalysis.Result
}, error) {
	if err := input.Body.Validate(false); err != nil {
		return nil, h.mapError("invalid topology", err)
	}
	result := h.analyzer.Analyze(input.Body)
	return &struct{ Body domanalysis.Result }{Body: result}, nil
}

type SimulateRequest struct {
	Topology topology.Topology        `json:"topology"`
	Scenario domsimulation.Scenario   `json:"scenario"`
}

func (h *TopologyHandler) Simulate(ctx context.Context, input *struct {
	Body SimulateRequest
}) (*struct {
	Body domsimulation.Result
}, error) {
	if err := input.Body.Topology.Validate(false); err != nil {
		return nil, h.mapError("invalid topology", err)
	}
	result, err := h.simulator.Run(input.Body.Topology, input.Body.Scenario)
	if err != nil {
		return nil, h.mapError("simulation failed", err)
	}
	return &struct{ Body domsimulation.Result }{Body: result}, nil
}

type ValidateRequest struct {
	Topology topology.Topology `json:"topology"`
	Intent   intent.Raw        `json:"intent"`
}

func (h *TopologyHandler) Validate(ctx context.Context, input *struct {
	Body ValidateRequest
}) (*struct {
	Body domvalidation.Result
}, error) {
	if err := input.Body.Topology.Validate(false); err != nil {
		return nil, h.mapError("invalid topology", err)
	}
	in, err := intent.Parse(input.Body.Intent)
	if err != nil {
		return nil, h.mapError("invalid intent", err)
	}
	result, err := h.validator.Validate(input.Body.Topology, in)
	if err != nil {
		return nil, h.mapError("validation failed", err)
	}
	return &struct{ Body domvalidation.Result }{Body: result}, nil
}

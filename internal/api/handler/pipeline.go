package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/orchestrator"
	"github.com/netforge-labs/topoforge/pkg/logger"
)

// PipelineHandler exposes the full C2-C9 pipeline as a single request.
type PipelineHandler struct {
	orchestrator *orchestrator.Orchestrator
	logger       *logger.Logger
	mapError     func(summary string, err error) error
}

func NewPipelineHandler(o *orchestrator.Orchestrator, appLogger *logger.Logger, mapError func(string, error) error) *PipelineHandler {
	return &PipelineHandler{orchestrator: o, logger: appLogger.WithComponent("pipeline_handler"), mapError: mapError}
}

func (h *PipelineHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "run-pipeline",
		Method:      http.MethodPost,
		Path:        "/api/v1/pipeline",
		Summary:     "Run the full synthesis/analysis/simulation/validation pipeline for an intent",
		Tags:        []string{"pipeline"},
	}, h.Run)
}

// PipelineRequest is the pipeline request body.
type PipelineRequest struct {
	Intent   intent.Raw `json:"intent"`
	Seed     *int64     `json:"seed,omitempty"`
	Record   bool       `json:"record_recommendation,omitempty"`
	Optimize bool       `json:"optimize,omitempty"`
}

func (h *PipelineHandler) Run(ctx context.Context, input *struct {
	Body PipelineRequest
}) (*struct {
	Body orchestrator.RunResult
}, error) {
	in, err := intent.Parse(input.Body.Intent)
	if err != nil {
		return nil, h.mapError("invalid intent", err)
	}

	result, err := h.orchestrator.RunPipeline(ctx, in, orchestrator.RunOptions{
		Seed:                 input.Body.Seed,
		Optimize:             input.Body.Optimize,
		RecordRecommendation: input.Body.Record,
	})
	if err != nil {
		return nil, h.mapError("pipeline run failed", err)
	}

	h.logger.PipelineRun(ctx, string(result.Intent.Pattern), result.PartialSuccess, len(result.Stages))

	return &struct{ Body orchestrator.RunResult }{Body: result}, nil
}

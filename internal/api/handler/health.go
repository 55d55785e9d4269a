package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/netforge-labs/topoforge/internal/history"
	"github.com/netforge-labs/topoforge/pkg/logger"
)

// HealthHandler reports liveness plus history-store connectivity.
type HealthHandler struct {
	store  history.Store
	logger *logger.Logger
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status  string `json:"status"`
	History string `json:"history"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(store history.Store, appLogger *logger.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: appLogger.WithComponent("health_handler")}
}

func (h *HealthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Health check",
		Tags:        []string{"health"},
	}, h.Check)
}

func (h *HealthHandler) Check(ctx context.Context, _ *struct{}) (*struct {
	Body HealthResponse
}, error) {
	resp := HealthResponse{Status: "healthy", History: "healthy"}

	if err := h.store.Health(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.History = "unhealthy"
		resp.Message = "history store connection failed"
		return &struct{ Body HealthResponse }{Body: resp}, huma.Error503ServiceUnavailable("service unhealthy", err)
	}

	return &struct{ Body HealthResponse }{Body: resp}, nil
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domhistory "github.com/netforge-labs/topoforge/internal/domain/history"
	"github.com/netforge-labs/topoforge/internal/history"
)

// HistoryHandler exposes read paths over the learning loop's persisted
// records (C9).
type HistoryHandler struct {
	store    history.Store
	mapError func(string, error) error
}

func NewHistoryHandler(store history.Store, mapError func(string, error) error) *HistoryHandler {
	return &HistoryHandler{store: store, mapError: mapError}
}

func (h *HistoryHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-topology-record",
		Method:      http.MethodGet,
		Path:        "/api/v1/history/topologies/{id}",
		Summary:     "Fetch a previously persisted topology record by id",
		Tags:        []string{"history"},
	}, h.Topology)

	huma.Register(api, huma.Operation{
		OperationID: "get-performance-metrics",
		Method:      http.MethodGet,
		Path:        "/api/v1/history/metrics",
		Summary:     "List per-pattern performance metrics accumulated within a lookback window",
		Tags:        []string{"history"},
	}, h.Metrics)
}

func (h *HistoryHandler) Topology(ctx context.Context, input *struct {
	ID string `path:"id"`
}) (*struct {
	Body domhistory.TopologyRecord
}, error) {
	rec, err := h.store.Topology(ctx, input.ID)
	if err != nil {
		return nil, h.mapError("topology record not found", err)
	}
	return &struct{ Body domhistory.TopologyRecord }{Body: rec}, nil
}

func (h *HistoryHandler) Metrics(ctx context.Context, input *struct {
	WindowDays int `query:"window_days" default:"180" minimum:"1"`
}) (*struct {
	Body []domhistory.PerformanceMetric
}, error) {
	metrics, err := h.store.RecentMetrics(ctx, time.Duration(input.WindowDays)*24*time.Hour)
	if err != nil {
		return nil, h.mapError("failed to load metrics", err)
	}
	return &struct{ Body []domhistory.PerformanceMetric }{Body: metrics}, nil
}

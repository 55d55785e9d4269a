package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/netforge-labs/topoforge/internal/api/handler"
	apimiddleware "github.com/netforge-labs/topoforge/internal/api/middleware"
	"github.com/netforge-labs/topoforge/internal/history"
	"github.com/netforge-labs/topoforge/internal/metrics"
	"github.com/netforge-labs/topoforge/internal/orchestrator"
	"github.com/netforge-labs/topoforge/internal/recommend"
	"github.com/netforge-labs/topoforge/pkg/logger"
)

// Server wraps the chi router and huma API, built once at startup and
// handed to net/http.
type Server struct {
	router chi.Router
	store  history.Store
}

// NewServer wires every handler onto a fresh chi router the way the
// teacher's own router.go composes services into handlers into routes.
func NewServer(store history.Store, appLogger *logger.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(apimiddleware.CORS)

	config := huma.DefaultConfig("topoforge API", "1.0.0")
	config.DocsPath = "/docs"
	config.Info.Description = "Intent-constrained topology synthesis, analysis, simulation, and recommendation"
	humaAPI := humachi.New(router, config)

	orch := orchestrator.New(store).WithMetrics(metrics.NewRegistry(prometheus.DefaultRegisterer))
	recommender := recommend.New(store)

	handler.NewPipelineHandler(orch, appLogger, humaError).Register(humaAPI)
	handler.NewTopologyHandler(humaError).Register(humaAPI)
	handler.NewRecommendHandler(recommender, humaError).Register(humaAPI)
	handler.NewHistoryHandler(store, humaError).Register(humaAPI)
	handler.NewHealthHandler(store, appLogger).Register(humaAPI)

	return &Server{router: router, store: store}
}

// Handler returns the assembled http.Handler.
func (s *Server) Handler() chi.Router { return s.router }

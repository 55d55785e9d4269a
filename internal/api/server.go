package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/netforge-labs/topoforge/pkg/logger"
)

// HTTPServer owns the application's two listeners: the API server built by
// NewServer, and a separate metrics listener serving promhttp.Handler(),
// matching the corpus's own pattern of running metrics on its own mux
// rather than mounting /metrics on the application router.
type HTTPServer struct {
	addr            string
	metricsAddr     string
	handler         http.Handler
	shutdownTimeout time.Duration
	logger          *logger.Logger
}

func NewHTTPServer(addr, metricsAddr string, handler http.Handler, shutdownTimeout time.Duration, appLogger *logger.Logger) *HTTPServer {
	return &HTTPServer{
		addr:            addr,
		metricsAddr:     metricsAddr,
		handler:         handler,
		shutdownTimeout: shutdownTimeout,
		logger:          appLogger.WithComponent("http_server"),
	}
}

// Run blocks serving both listeners until ctx is cancelled, then drains
// in-flight requests up to shutdownTimeout before returning.
func (s *HTTPServer) Run(ctx context.Context) error {
	apiServer := &http.Server{Addr: s.addr, Handler: s.handler}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: s.metricsAddr, Handler: metricsMux}

	errCh := make(chan error, 2)

	go func() {
		s.logger.Info("api server listening", "addr", s.addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	go func() {
		s.logger.Info("metrics server listening", "addr", s.metricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return nil
}

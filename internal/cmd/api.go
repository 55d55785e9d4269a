package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/netforge-labs/topoforge/internal/api"
	"github.com/netforge-labs/topoforge/internal/config"
	"github.com/netforge-labs/topoforge/pkg/logger"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long:  "Start the REST API server exposing the pipeline, recommendation, and history endpoints",
	Run:   runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	appLogger := logger.New(level)

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("failed to build history store: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		log.Fatalf("failed to migrate history store: %v", err)
	}

	server := api.NewServer(store, appLogger)

	shutdownTimeout, err := time.ParseDuration(cfg.Server.ShutdownTimeout)
	if err != nil {
		shutdownTimeout = 15 * time.Second
	}

	httpServer := api.NewHTTPServer(cfg.Server.Addr, cfg.Server.MetricsAddr, server.Handler(), shutdownTimeout, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := httpServer.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

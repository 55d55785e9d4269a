package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/netforge-labs/topoforge/internal/config"
	"github.com/netforge-labs/topoforge/internal/worker"
)

var (
	workerRecomputeInterval int
	workerRecomputeTimeout  int
	workerEnableRecompute   bool
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background history maintenance worker",
	Long:  "Periodically recompute performance metrics from the history store so the recommender stays fresh without live traffic driving every update",
	RunE:  runWorker,
}

func init() {
	workerCmd.Flags().IntVar(&workerRecomputeInterval, "recompute-interval", 3600, "metric recompute interval in seconds")
	workerCmd.Flags().IntVar(&workerRecomputeTimeout, "recompute-timeout", 300, "metric recompute timeout in seconds")
	workerCmd.Flags().BoolVar(&workerEnableRecompute, "enable-recompute", true, "enable periodic metric recomputation")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stdout, "[WORKER] ", log.LstdFlags)
	logger.Println("Starting history maintenance worker...")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to build history store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Health(ctx); err != nil {
		return fmt.Errorf("history store health check failed: %w", err)
	}
	logger.Printf("Connected to %s history store", cfg.History.Type)

	maintConfig := worker.MaintenanceConfig{
		RecomputeInterval: time.Duration(workerRecomputeInterval) * time.Second,
		RecomputeTimeout:  time.Duration(workerRecomputeTimeout) * time.Second,
		EnableRecompute:   workerEnableRecompute,
	}
	if maintConfig.RecomputeInterval < 30*time.Second {
		return fmt.Errorf("recompute interval too short (minimum 30 seconds)")
	}

	maint := worker.NewMaintenance(store, maintConfig, logger)
	if err := maint.Start(); err != nil {
		return fmt.Errorf("failed to start maintenance worker: %w", err)
	}
	defer maint.Stop()

	logger.Printf("Recompute interval: %s (enabled: %t)", maintConfig.RecomputeInterval, maintConfig.EnableRecompute)
	logger.Println("Worker started successfully. Press Ctrl+C to stop.")

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	logger.Println("Received shutdown signal, stopping...")
	return nil
}

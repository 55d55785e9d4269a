package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/netforge-labs/topoforge/internal/config"
)

var recomputeMetricsCmd = &cobra.Command{
	Use:   "recompute-metrics",
	Short: "Rebuild performance metrics from raw history",
	Long:  "Recompute every pattern's PerformanceMetric from the validation/simulation/recommendation base tables, the maintenance entry point the periodic runner also calls",
	Run:   runRecomputeMetrics,
}

func init() {
	rootCmd.AddCommand(recomputeMetricsCmd)
}

func runRecomputeMetrics(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("failed to build history store: %v", err)
	}
	defer store.Close()

	if err := store.RecomputeMetrics(context.Background()); err != nil {
		log.Fatalf("recompute failed: %v", err)
	}

	log.Println("performance metrics recomputed")
}

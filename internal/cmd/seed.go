package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/netforge-labs/topoforge/internal/config"
	"github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/orchestrator"
)

var seedRunsPerCombo int
var seedClearFirst bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate synthetic historical pipeline runs",
	Long:  "Run the pipeline across a matrix of pattern/redundancy/design-goal combinations and persist the results, so the recommendation engine has a track record to learn from without waiting on real traffic",
	Run:   runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVarP(&seedRunsPerCombo, "runs-per-combo", "n", 3, "number of runs to generate per pattern/redundancy/design-goal combination")
	seedCmd.Flags().BoolVar(&seedClearFirst, "clear", false, "clear existing history before seeding")
}

var seedPatterns = []intent.Pattern{
	intent.PatternFullMesh,
	intent.PatternHubSpoke,
	intent.PatternRing,
	intent.PatternTree,
	intent.PatternLeafSpine,
	intent.PatternHybrid,
}

var seedRedundancies = []intent.Redundancy{
	intent.RedundancyMinimum,
	intent.RedundancyStandard,
	intent.RedundancyHigh,
}

var seedDesignGoals = []intent.DesignGoal{
	intent.DesignGoalCost,
	intent.DesignGoalRedundancy,
	intent.DesignGoalScalability,
}

func runSeed(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("failed to build history store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		log.Fatalf("failed to migrate history store: %v", err)
	}

	if seedClearFirst {
		if err := store.Clear(); err != nil {
			log.Fatalf("failed to clear history: %v", err)
		}
	}

	orch := orchestrator.New(store)
	ctx := context.Background()

	rng := rand.New(rand.NewPCG(42, 7))
	siteCounts := []int{4, 12, 30, 80, 200}

	generated := 0
	failed := 0
	for _, pattern := range seedPatterns {
		for _, redundancy := range seedRedundancies {
			for _, goal := range seedDesignGoals {
				for i := 0; i < seedRunsPerCombo; i++ {
					siteCount := siteCounts[rng.IntN(len(siteCounts))]
					seedValue := rng.Int64()

					in, err := intent.Parse(intent.Raw{
						Name:       fmt.Sprintf("seed-%s-%s-%s-%d", pattern, redundancy, goal, i),
						Pattern:    string(pattern),
						SiteCount:  siteCount,
						Redundancy: string(redundancy),
						DesignGoal: string(goal),
					})
					if err != nil {
						failed++
						continue
					}

					if _, err := orch.RunPipeline(ctx, in, orchestrator.RunOptions{Seed: &seedValue}); err != nil {
						failed++
						continue
					}
					generated++
				}
			}
		}
	}

	if err := store.RecomputeMetrics(ctx); err != nil {
		log.Fatalf("failed to recompute metrics after seeding: %v", err)
	}

	log.Printf("seed complete: %d runs persisted, %d failed", generated, failed)
}

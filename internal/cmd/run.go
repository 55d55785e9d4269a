package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/netforge-labs/topoforge/internal/config"
	"github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/export"
	"github.com/netforge-labs/topoforge/internal/orchestrator"
)

var (
	runIntentPath   string
	runSeed         int64
	runHasSeed      bool
	runOptimize     bool
	runContainerLab bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline once against an intent file",
	Long:  "Parse an intent from a YAML or JSON file, run synthesis/analysis/simulation/validation, and print the structured report",
	Run:   runPipelineOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runIntentPath, "intent", "", "path to a YAML or JSON intent file (required)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "deterministic synthesis seed")
	runCmd.Flags().BoolVar(&runOptimize, "optimize", false, "let the autonomous optimizer override the intent's pattern when history justifies it")
	runCmd.Flags().BoolVar(&runContainerLab, "containerlab", false, "also print a containerlab-shaped export of the resulting topology")
	_ = runCmd.MarkFlagRequired("intent")
}

func runPipelineOnce(cmd *cobra.Command, args []string) {
	runHasSeed = cmd.Flags().Changed("seed")

	data, err := os.ReadFile(runIntentPath)
	if err != nil {
		log.Fatalf("failed to read intent file: %v", err)
	}

	var raw intent.Raw
	if err := yaml.Unmarshal(data, &raw); err != nil {
		log.Fatalf("failed to parse intent file: %v", err)
	}

	in, err := intent.Parse(raw)
	if err != nil {
		log.Fatalf("invalid intent: %v", err)
	}

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

	var seed *int64
	if runHasSeed {
		seed = &runSeed
	}

	orch := orchestrator.New(store)
	result, err := orch.RunPipeline(context.Background(), in, orchestrator.RunOptions{Seed: seed, Optimize: runOptimize})
	if err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("failed to encode report: %v", err)
	}

	if runContainerLab && len(result.Topology.Devices) > 0 {
		clab := export.ContainerLab(result.Topology)
		out, err := yaml.Marshal(clab)
		if err != nil {
			log.Fatalf("failed to render containerlab export: %v", err)
		}
		fmt.Println("---")
		fmt.Print(string(out))
	}
}

// Package cmd wires the cobra command tree, one file per subcommand:
// api, run, seed, migrate, recompute-metrics, worker.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     "topoforge",
	Short:   "Intent-constrained network topology design and evaluation engine",
	Long:    `topoforge synthesizes, analyzes, simulates, and validates network topologies against a declarative intent, learning which patterns perform best over time.`,
	Version: "1.0.0",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/netforge-labs/topoforge/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run history store schema migrations",
	Long:  "Apply the configured history store's schema migrations (tables for sqlite/postgres, constraints for neo4j)",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
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
		log.Fatalf("migration failed: %v", err)
	}

	log.Printf("%s history store migrated successfully", cfg.History.Type)
}

package cmd

import (
	"fmt"

	"github.com/netforge-labs/topoforge/internal/cache"
	"github.com/netforge-labs/topoforge/internal/config"
	"github.com/netforge-labs/topoforge/internal/history"
	"github.com/netforge-labs/topoforge/internal/history/inmemory"
	"github.com/netforge-labs/topoforge/internal/history/neo4j"
	"github.com/netforge-labs/topoforge/internal/history/postgres"
	"github.com/netforge-labs/topoforge/internal/history/sqlite"
)

// buildStore opens the history.Store backend selected by cfg.History.Type,
// wrapped in a Redis read cache when cfg.Cache.Enabled.
func buildStore(cfg *config.Config) (history.Store, error) {
	store, err := buildBackend(cfg)
	if err != nil {
		return nil, err
	}

	if !cfg.Cache.Enabled {
		return store, nil
	}

	cached, err := cache.New(store, cfg.Cache.Redis)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

func buildBackend(cfg *config.Config) (history.Store, error) {
	switch cfg.History.Type {
	case "sqlite", "":
		return sqlite.New(sqlite.Config{Path: cfg.History.SQLite.Path})
	case "postgres":
		return postgres.New(cfg.History.Postgres)
	case "neo4j":
		return neo4j.New(&cfg.History.Neo4j)
	case "inmemory":
		return inmemory.New(), nil
	default:
		return nil, fmt.Errorf("unknown history store type %q", cfg.History.Type)
	}
}

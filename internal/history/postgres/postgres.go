// Package postgres implements history.Store on PostgreSQL via lib/pq and
// database/sql, following the connection-lifecycle shape of the topology
// repository's own postgres backend (config validation, ping-on-connect,
// DELETE-based Clear).
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Store is a PostgreSQL-backed history.Store.
type Store struct {
	db *sql.DB
}

// New opens (and pings) a PostgreSQL database described by cfg.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.BuildDSN())
	if err != nil {
		return nil, fmt.Errorf("history/postgres: connect: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("history/postgres: ping: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Health(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Migrate() error { return runMigrations(s.db) }

func (s *Store) Clear() error {
	for _, table := range []string{"optimizations", "recommendations", "performance_metrics", "simulations", "validations", "topologies"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("history/postgres: clear %s: %w", table, err)
		}
	}
	return nil
}

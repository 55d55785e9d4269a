// Package sqlite implements history.Store on top of SQLite via jmoiron/sqlx
// and mattn/go-sqlite3, mirroring the connection-lifecycle conventions of
// the topology-manager's own sqlite repository (WAL mode, foreign keys on,
// JSON columns stored as TEXT).
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Config configures a Store's connection.
type Config struct {
	// Path is the SQLite file path, or ":memory:" for an ephemeral
	// in-process database.
	Path string
}

// DSN returns the sqlite3 driver data source name for c.
func (c Config) DSN() string { return c.Path }

// Validate checks c for obvious misconfiguration.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("sqlite: path must not be empty")
	}
	return nil
}

// Store is a SQLite-backed history.Store.
type Store struct {
	db *sqlx.DB
}

// New opens (and pings) a SQLite database at cfg.Path.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("sqlite3", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("history/sqlite: connect: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history/sqlite: enable foreign keys: %w", err)
	}
	if cfg.Path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("history/sqlite: enable WAL: %w", err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history/sqlite: ping: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Health(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Migrate() error { return runMigrations(s.db) }

func (s *Store) Clear() error {
	for _, table := range []string{"optimizations", "recommendations", "performance_metrics", "simulations", "validations", "topologies"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("history/sqlite: clear %s: %w", table, err)
		}
	}
	return nil
}

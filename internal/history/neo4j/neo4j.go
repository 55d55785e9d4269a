// Package neo4j implements history.Store as a graph projection: topologies,
// validations and simulations become nodes connected by relationships
// instead of foreign-key columns, so the connectivity between a pattern and
// its outcomes can be queried with Cypher traversals rather than joins. This
// mirrors the topology repository's own neo4j backend (session-per-call,
// ExecuteWrite/ExecuteRead, property maps keyed by primitive values).
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
)

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

// Store is a Neo4j-backed history.Store.
type Store struct {
	driver neo4j.DriverWithContext
	config *Config
}

// New opens a driver against cfg and verifies connectivity.
func New(cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid neo4j configuration: %w", err)
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("history/neo4j: create driver: %w", err)
	}

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("history/neo4j: connect: %w", err)
	}

	return &Store{driver: driver, config: cfg}, nil
}

func (s *Store) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.config.Database})
}

func (s *Store) Close() error { return s.driver.Close(context.Background()) }

func (s *Store) Health(ctx context.Context) error { return s.driver.VerifyConnectivity(ctx) }

// Migrate creates the uniqueness constraints the projection relies on.
// Neo4j has no schema migrations in the relational sense; constraints are
// idempotent and safe to re-issue.
func (s *Store) Migrate() error {
	ctx := context.Background()
	session := s.session(ctx)
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT topology_id IF NOT EXISTS FOR (t:Topology) REQUIRE t.id IS UNIQUE",
		"CREATE CONSTRAINT validation_id IF NOT EXISTS FOR (v:Validation) REQUIRE v.id IS UNIQUE",
		"CREATE CONSTRAINT simulation_id IF NOT EXISTS FOR (s:Simulation) REQUIRE s.id IS UNIQUE",
		"CREATE CONSTRAINT recommendation_id IF NOT EXISTS FOR (r:Recommendation) REQUIRE r.id IS UNIQUE",
		"CREATE CONSTRAINT optimization_id IF NOT EXISTS FOR (o:Optimization) REQUIRE o.id IS UNIQUE",
		"CREATE CONSTRAINT metric_pattern IF NOT EXISTS FOR (m:Metric) REQUIRE m.pattern IS UNIQUE",
	}
	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("history/neo4j: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Clear() error {
	ctx := context.Background()
	session := s.session(ctx)
	defer session.Close(ctx)
	_, err := session.Run(ctx, `MATCH (n) WHERE n:Topology OR n:Validation OR n:Simulation OR n:Recommendation OR n:Optimization OR n:Metric DETACH DELETE n`, nil)
	if err != nil {
		return fmt.Errorf("history/neo4j: clear: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string { return t.Format(timeLayout) }

func parseTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func persistenceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &domerrors.PersistenceError{Op: op, Err: err}
}

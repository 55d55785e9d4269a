package sqlite

import "github.com/jmoiron/sqlx"

const createTopologiesTable = `
CREATE TABLE IF NOT EXISTS topologies (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    pattern TEXT NOT NULL,
    intent TEXT NOT NULL,
    topology TEXT NOT NULL,
    device_count INTEGER NOT NULL,
    link_count INTEGER NOT NULL,
    seed INTEGER,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

const createValidationsTable = `
CREATE TABLE IF NOT EXISTS validations (
    id TEXT PRIMARY KEY,
    topology_id TEXT NOT NULL REFERENCES topologies(id) ON DELETE CASCADE,
    satisfied BOOLEAN NOT NULL,
    overall_score REAL NOT NULL,
    violations TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

const createSimulationsTable = `
CREATE TABLE IF NOT EXISTS simulations (
    id TEXT PRIMARY KEY,
    topology_id TEXT NOT NULL REFERENCES topologies(id) ON DELETE CASCADE,
    scenario_kind TEXT NOT NULL,
    connectivity_loss REAL NOT NULL,
    severity TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

const createPerformanceMetricsTable = `
CREATE TABLE IF NOT EXISTS performance_metrics (
    pattern TEXT PRIMARY KEY,
    sample_size INTEGER NOT NULL,
    avg_overall_score REAL NOT NULL,
    satisfaction_rate REAL NOT NULL,
    avg_resilience_impact REAL NOT NULL,
    feedback_satisfied INTEGER NOT NULL DEFAULT 0,
    feedback_dissatisfied INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

const createRecommendationsTable = `
CREATE TABLE IF NOT EXISTS recommendations (
    id TEXT PRIMARY KEY,
    intent_hash TEXT NOT NULL,
    candidates TEXT NOT NULL,
    chosen TEXT NOT NULL,
    user_selected TEXT,
    feedback REAL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

const createOptimizationsTable = `
CREATE TABLE IF NOT EXISTS optimizations (
    id TEXT PRIMARY KEY,
    current_pattern TEXT NOT NULL,
    suggested_pattern TEXT NOT NULL,
    should_switch BOOLEAN NOT NULL,
    reason TEXT,
    expected_improvement REAL NOT NULL DEFAULT 0,
    actual_improvement REAL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_validations_topology_id ON validations(topology_id);
CREATE INDEX IF NOT EXISTS idx_simulations_topology_id ON simulations(topology_id);
CREATE INDEX IF NOT EXISTS idx_topologies_pattern ON topologies(pattern);
CREATE INDEX IF NOT EXISTS idx_topologies_created_at ON topologies(created_at);`

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		createTopologiesTable,
		createValidationsTable,
		createSimulationsTable,
		createPerformanceMetricsTable,
		createRecommendationsTable,
		createOptimizationsTable,
		createIndexes,
	}
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

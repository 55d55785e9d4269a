package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
	domhistory "github.com/netforge-labs/topoforge/internal/domain/history"
)

func (s *Store) SaveTopology(ctx context.Context, rec domhistory.TopologyRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO topologies (id, name, pattern, intent, topology, device_count, link_count, seed, created_at)
		VALUES (:id, :name, :pattern, :intent, :topology, :device_count, :link_count, :seed, :created_at)
	`, rec)
	if err != nil {
		return &domerrors.PersistenceError{Op: "SaveTopology", Err: err}
	}
	return nil
}

func (s *Store) SaveValidation(ctx context.Context, rec domhistory.ValidationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO validations (id, topology_id, satisfied, overall_score, violations, created_at)
		VALUES (:id, :topology_id, :satisfied, :overall_score, :violations, :created_at)
	`, rec)
	if err != nil {
		return &domerrors.PersistenceError{Op: "SaveValidation", Err: err}
	}
	return s.RecomputeMetrics(ctx)
}

func (s *Store) SaveSimulation(ctx context.Context, rec domhistory.SimulationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO simulations (id, topology_id, scenario_kind, connectivity_loss, severity, created_at)
		VALUES (:id, :topology_id, :scenario_kind, :connectivity_loss, :severity, :created_at)
	`, rec)
	if err != nil {
		return &domerrors.PersistenceError{Op: "SaveSimulation", Err: err}
	}
	return s.RecomputeMetrics(ctx)
}

func (s *Store) SaveRecommendation(ctx context.Context, rec domhistory.RecommendationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO recommendations (id, intent_hash, candidates, chosen, user_selected, feedback, created_at)
		VALUES (:id, :intent_hash, :candidates, :chosen, :user_selected, :feedback, :created_at)
	`, rec)
	if err != nil {
		return &domerrors.PersistenceError{Op: "SaveRecommendation", Err: err}
	}
	return nil
}

func (s *Store) SaveOptimization(ctx context.Context, rec domhistory.OptimizationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO optimizations (id, current_pattern, suggested_pattern, should_switch, reason, expected_improvement, actual_improvement, created_at)
		VALUES (:id, :current_pattern, :suggested_pattern, :should_switch, :reason, :expected_improvement, :actual_improvement, :created_at)
	`, rec)
	if err != nil {
		return &domerrors.PersistenceError{Op: "SaveOptimization", Err: err}
	}
	return nil
}

func (s *Store) RecordFeedback(ctx context.Context, id string, userSelected *string, feedback *float64) error {
	var existing domhistory.RecommendationRecord
	if err := s.db.GetContext(ctx, &existing, `SELECT user_selected, feedback FROM recommendations WHERE id = ?`, id); err != nil {
		return &domerrors.PersistenceError{Op: "RecordFeedback", Err: err}
	}
	if userSelected != nil {
		if existing.UserSelected != nil {
			return &domerrors.PersistenceError{Op: "RecordFeedback", Err: fmt.Errorf("user_selected already recorded for %s", id)}
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE recommendations SET user_selected = ? WHERE id = ?`, *userSelected, id); err != nil {
			return &domerrors.PersistenceError{Op: "RecordFeedback", Err: err}
		}
	}
	if feedback != nil {
		if existing.Feedback != nil {
			return &domerrors.PersistenceError{Op: "RecordFeedback", Err: fmt.Errorf("feedback already recorded for %s", id)}
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE recommendations SET feedback = ? WHERE id = ?`, *feedback, id); err != nil {
			return &domerrors.PersistenceError{Op: "RecordFeedback", Err: err}
		}
	}
	return nil
}

func (s *Store) RecordActualImprovement(ctx context.Context, id string, improvement float64) error {
	var existing domhistory.OptimizationRecord
	if err := s.db.GetContext(ctx, &existing, `SELECT actual_improvement FROM optimizations WHERE id = ?`, id); err != nil {
		return &domerrors.PersistenceError{Op: "RecordActualImprovement", Err: err}
	}
	if existing.ActualImprovement != nil {
		return &domerrors.PersistenceError{Op: "RecordActualImprovement", Err: fmt.Errorf("actual_improvement already recorded for %s", id)}
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE optimizations SET actual_improvement = ? WHERE id = ?`, improvement, id); err != nil {
		return &domerrors.PersistenceError{Op: "RecordActualImprovement", Err: err}
	}
	return nil
}

func (s *Store) Topology(ctx context.Context, id string) (domhistory.TopologyRecord, error) {
	var rec domhistory.TopologyRecord
	err := s.db.GetContext(ctx, &rec, `SELECT * FROM topologies WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return domhistory.TopologyRecord{}, &domerrors.PersistenceError{Op: "Topology", Err: fmt.Errorf("topology %s not found", id)}
	}
	if err != nil {
		return domhistory.TopologyRecord{}, &domerrors.PersistenceError{Op: "Topology", Err: err}
	}
	return rec, nil
}

func (s *Store) RecentMetrics(ctx context.Context, window time.Duration) ([]domhistory.PerformanceMetric, error) {
	cutoff := time.Now().UTC().Add(-window)
	var metrics []domhistory.PerformanceMetric
	err := s.db.SelectContext(ctx, &metrics, `SELECT * FROM performance_metrics WHERE updated_at >= ? ORDER BY pattern`, cutoff)
	if err != nil {
		return nil, &domerrors.PersistenceError{Op: "RecentMetrics", Err: err}
	}
	return metrics, nil
}

// metricsRow mirrors the aggregate query's column shape.
type metricsRow struct {
	Pattern          string  `db:"pattern"`
	SampleSize       int     `db:"sample_size"`
	AvgOverallScore  float64 `db:"avg_overall_score"`
	SatisfactionRate float64 `db:"satisfaction_rate"`
}

// RecomputeMetrics rebuilds performance_metrics from validations joined to
// topologies (for pattern) and simulations (for resilience impact), plus
// the satisfied/dissatisfied explicit-feedback pools from
// recommendations. SQLite has no native upsert-with-aggregate, so
// this runs as a delete-and-reinsert within a single transaction.
func (s *Store) RecomputeMetrics(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
	}
	defer tx.Rollback()

	var rows []metricsRow
	err = tx.SelectContext(ctx, &rows, `
		SELECT t.pattern AS pattern,
		       COUNT(*) AS sample_size,
		       AVG(v.overall_score) AS avg_overall_score,
		       100.0 * SUM(CASE WHEN v.satisfied THEN 1 ELSE 0 END) / COUNT(*) AS satisfaction_rate
		FROM validations v
		JOIN topologies t ON t.id = v.topology_id
		GROUP BY t.pattern
	`)
	if err != nil {
		return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
	}

	resilience := make(map[string]float64)
	type resRow struct {
		Pattern string  `db:"pattern"`
		Avg     float64 `db:"avg_loss"`
	}
	var resRows []resRow
	err = tx.SelectContext(ctx, &resRows, `
		SELECT t.pattern AS pattern, AVG(s.connectivity_loss) AS avg_loss
		FROM simulations s
		JOIN topologies t ON t.id = s.topology_id
		GROUP BY t.pattern
	`)
	if err != nil {
		return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
	}
	for _, r := range resRows {
		resilience[r.Pattern] = r.Avg
	}

	feedback, err := feedbackPoolsByPattern(ctx, tx)
	if err != nil {
		return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM performance_metrics`); err != nil {
		return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
	}
	now := time.Now().UTC()
	for _, r := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO performance_metrics (pattern, sample_size, avg_overall_score, satisfaction_rate, avg_resilience_impact, feedback_satisfied, feedback_dissatisfied, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.Pattern, r.SampleSize, r.AvgOverallScore, r.SatisfactionRate, resilience[r.Pattern], feedback[r.Pattern].satisfied, feedback[r.Pattern].dissatisfied, now)
		if err != nil {
			return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
		}
	}

	return tx.Commit()
}

type feedbackPool struct {
	satisfied    int
	dissatisfied int
}

// feedbackPoolsByPattern buckets explicit 1-5 feedback scores per chosen
// pattern: >=4 satisfied, <=2 dissatisfied, a neutral 3 counts toward
// neither.
func feedbackPoolsByPattern(ctx context.Context, tx *sqlx.Tx) (map[string]feedbackPool, error) {
	type row struct {
		Chosen   string  `db:"chosen"`
		Feedback float64 `db:"feedback"`
	}
	var feedbackRows []row
	err := tx.SelectContext(ctx, &feedbackRows, `SELECT chosen, feedback FROM recommendations WHERE feedback IS NOT NULL`)
	if err != nil {
		return nil, err
	}

	out := make(map[string]feedbackPool)
	for _, r := range feedbackRows {
		p := out[r.Chosen]
		switch {
		case r.Feedback >= 4:
			p.satisfied++
		case r.Feedback <= 2:
			p.dissatisfied++
		}
		out[r.Chosen] = p
	}
	return out, nil
}

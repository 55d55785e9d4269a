package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

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
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topologies (id, name, pattern, intent, topology, device_count, link_count, seed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.ID, rec.Name, rec.Pattern, rec.Intent, rec.Topology, rec.DeviceCount, rec.LinkCount, rec.Seed, rec.CreatedAt)
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
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO validations (id, topology_id, satisfied, overall_score, violations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.TopologyID, rec.Satisfied, rec.OverallScore, rec.Violations, rec.CreatedAt)
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
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO simulations (id, topology_id, scenario_kind, connectivity_loss, severity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.TopologyID, rec.ScenarioKind, rec.ConnectivityLoss, rec.Severity, rec.CreatedAt)
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
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendations (id, intent_hash, candidates, chosen, user_selected, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.IntentHash, rec.Candidates, rec.Chosen, rec.UserSelected, rec.Feedback, rec.CreatedAt)
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
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO optimizations (id, current_pattern, suggested_pattern, should_switch, reason, expected_improvement, actual_improvement, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.CurrentPattern, rec.SuggestedPattern, rec.ShouldSwitch, rec.Reason, rec.ExpectedImprovement, rec.ActualImprovement, rec.CreatedAt)
	if err != nil {
		return &domerrors.PersistenceError{Op: "SaveOptimization", Err: err}
	}
	return nil
}

func (s *Store) RecordFeedback(ctx context.Context, id string, userSelected *string, feedback *float64) error {
	var existingSelected sql.NullString
	var existingFeedback sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `SELECT user_selected, feedback FROM recommendations WHERE id = $1`, id).
		Scan(&existingSelected, &existingFeedback)
	if err == sql.ErrNoRows {
		return &domerrors.PersistenceError{Op: "RecordFeedback", Err: fmt.Errorf("recommendation %s not found", id)}
	}
	if err != nil {
		return &domerrors.PersistenceError{Op: "RecordFeedback", Err: err}
	}

	if userSelected != nil {
		if existingSelected.Valid {
			return &domerrors.PersistenceError{Op: "RecordFeedback", Err: fmt.Errorf("user_selected already recorded for %s", id)}
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE recommendations SET user_selected = $1 WHERE id = $2`, *userSelected, id); err != nil {
			return &domerrors.PersistenceError{Op: "RecordFeedback", Err: err}
		}
	}
	if feedback != nil {
		if existingFeedback.Valid {
			return &domerrors.PersistenceError{Op: "RecordFeedback", Err: fmt.Errorf("feedback already recorded for %s", id)}
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE recommendations SET feedback = $1 WHERE id = $2`, *feedback, id); err != nil {
			return &domerrors.PersistenceError{Op: "RecordFeedback", Err: err}
		}
	}
	return nil
}

func (s *Store) RecordActualImprovement(ctx context.Context, id string, improvement float64) error {
	var existing sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `SELECT actual_improvement FROM optimizations WHERE id = $1`, id).Scan(&existing)
	if err == sql.ErrNoRows {
		return &domerrors.PersistenceError{Op: "RecordActualImprovement", Err: fmt.Errorf("optimization %s not found", id)}
	}
	if err != nil {
		return &domerrors.PersistenceError{Op: "RecordActualImprovement", Err: err}
	}
	if existing.Valid {
		return &domerrors.PersistenceError{Op: "RecordActualImprovement", Err: fmt.Errorf("actual_improvement already recorded for %s", id)}
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE optimizations SET actual_improvement = $1 WHERE id = $2`, improvement, id); err != nil {
		return &domerrors.PersistenceError{Op: "RecordActualImprovement", Err: err}
	}
	return nil
}

func (s *Store) Topology(ctx context.Context, id string) (domhistory.TopologyRecord, error) {
	var rec domhistory.TopologyRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, pattern, intent, topology, device_count, link_count, seed, created_at
		FROM topologies WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Name, &rec.Pattern, &rec.Intent, &rec.Topology, &rec.DeviceCount, &rec.LinkCount, &rec.Seed, &rec.CreatedAt)
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
	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern, sample_size, avg_overall_score, satisfaction_rate, avg_resilience_impact, feedback_satisfied, feedback_dissatisfied, updated_at
		FROM performance_metrics WHERE updated_at >= $1 ORDER BY pattern
	`, cutoff)
	if err != nil {
		return nil, &domerrors.PersistenceError{Op: "RecentMetrics", Err: err}
	}
	defer rows.Close()

	var out []domhistory.PerformanceMetric
	for rows.Next() {
		var m domhistory.PerformanceMetric
		if err := rows.Scan(&m.Pattern, &m.SampleSize, &m.AvgOverallScore, &m.SatisfactionRate, &m.AvgResilienceImpact, &m.FeedbackSatisfied, &m.FeedbackDissatisfied, &m.UpdatedAt); err != nil {
			return nil, &domerrors.PersistenceError{Op: "RecentMetrics", Err: err}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// RecomputeMetrics rebuilds performance_metrics from validations/simulations
// joined to topologies for pattern grouping, plus the satisfied/dissatisfied
// explicit-feedback pools from recommendations.
func (s *Store) RecomputeMetrics(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT t.pattern,
		       COUNT(*),
		       AVG(v.overall_score),
		       100.0 * SUM(CASE WHEN v.satisfied THEN 1 ELSE 0 END) / COUNT(*)
		FROM validations v
		JOIN topologies t ON t.id = v.topology_id
		GROUP BY t.pattern
	`)
	if err != nil {
		return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
	}
	type agg struct {
		pattern          string
		sampleSize       int
		avgOverallScore  float64
		satisfactionRate float64
	}
	var aggs []agg
	for rows.Next() {
		var a agg
		if err := rows.Scan(&a.pattern, &a.sampleSize, &a.avgOverallScore, &a.satisfactionRate); err != nil {
			rows.Close()
			return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
		}
		aggs = append(aggs, a)
	}
	rows.Close()

	resilience := make(map[string]float64)
	resRows, err := tx.QueryContext(ctx, `
		SELECT t.pattern, AVG(s.connectivity_loss)
		FROM simulations s
		JOIN topologies t ON t.id = s.topology_id
		GROUP BY t.pattern
	`)
	if err != nil {
		return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
	}
	for resRows.Next() {
		var pattern string
		var avg float64
		if err := resRows.Scan(&pattern, &avg); err != nil {
			resRows.Close()
			return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
		}
		resilience[pattern] = avg
	}
	resRows.Close()

	feedback, err := feedbackPoolsByPattern(ctx, tx)
	if err != nil {
		return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM performance_metrics`); err != nil {
		return &domerrors.PersistenceError{Op: "RecomputeMetrics", Err: err}
	}
	now := time.Now().UTC()
	for _, a := range aggs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO performance_metrics (pattern, sample_size, avg_overall_score, satisfaction_rate, avg_resilience_impact, feedback_satisfied, feedback_dissatisfied, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, a.pattern, a.sampleSize, a.avgOverallScore, a.satisfactionRate, resilience[a.pattern], feedback[a.pattern].satisfied, feedback[a.pattern].dissatisfied, now)
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
func feedbackPoolsByPattern(ctx context.Context, tx *sql.Tx) (map[string]feedbackPool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT chosen, feedback FROM recommendations WHERE feedback IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]feedbackPool)
	for rows.Next() {
		var chosen string
		var fb float64
		if err := rows.Scan(&chosen, &fb); err != nil {
			return nil, err
		}
		p := out[chosen]
		switch {
		case fb >= 4:
			p.satisfied++
		case fb <= 2:
			p.dissatisfied++
		}
		out[chosen] = p
	}
	return out, rows.Err()
}

package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	domhistory "github.com/netforge-labs/topoforge/internal/domain/history"
)

func (s *Store) SaveTopology(ctx context.Context, rec domhistory.TopologyRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MERGE (t:Topology {id: $id})
			SET t.name = $name, t.pattern = $pattern, t.intent = $intent, t.topology = $topology,
			    t.device_count = $device_count, t.link_count = $link_count, t.seed = $seed,
			    t.created_at = $created_at
		`, map[string]any{
			"id": rec.ID, "name": rec.Name, "pattern": rec.Pattern, "intent": rec.Intent,
			"topology": rec.Topology, "device_count": rec.DeviceCount, "link_count": rec.LinkCount,
			"seed": rec.Seed, "created_at": formatTime(rec.CreatedAt),
		})
	})
	return persistenceErr("SaveTopology", err)
}

func (s *Store) SaveValidation(ctx context.Context, rec domhistory.ValidationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MATCH (t:Topology {id: $topology_id})
			MERGE (v:Validation {id: $id})
			SET v.satisfied = $satisfied, v.overall_score = $overall_score,
			    v.violations = $violations, v.created_at = $created_at
			MERGE (v)-[:VALIDATES]->(t)
		`, map[string]any{
			"id": rec.ID, "topology_id": rec.TopologyID, "satisfied": rec.Satisfied,
			"overall_score": rec.OverallScore, "violations": rec.Violations,
			"created_at": formatTime(rec.CreatedAt),
		})
	})
	if err != nil {
		return persistenceErr("SaveValidation", err)
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
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MATCH (t:Topology {id: $topology_id})
			MERGE (sim:Simulation {id: $id})
			SET sim.scenario_kind = $scenario_kind, sim.connectivity_loss = $connectivity_loss,
			    sim.severity = $severity, sim.created_at = $created_at
			MERGE (sim)-[:SIMULATES]->(t)
		`, map[string]any{
			"id": rec.ID, "topology_id": rec.TopologyID, "scenario_kind": rec.ScenarioKind,
			"connectivity_loss": rec.ConnectivityLoss, "severity": rec.Severity,
			"created_at": formatTime(rec.CreatedAt),
		})
	})
	if err != nil {
		return persistenceErr("SaveSimulation", err)
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
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MERGE (r:Recommendation {id: $id})
			SET r.intent_hash = $intent_hash, r.candidates = $candidates, r.chosen = $chosen,
			    r.created_at = $created_at
		`, map[string]any{
			"id": rec.ID, "intent_hash": rec.IntentHash, "candidates": rec.Candidates,
			"chosen": rec.Chosen, "created_at": formatTime(rec.CreatedAt),
		})
	})
	return persistenceErr("SaveRecommendation", err)
}

func (s *Store) SaveOptimization(ctx context.Context, rec domhistory.OptimizationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MERGE (o:Optimization {id: $id})
			SET o.current_pattern = $current_pattern, o.suggested_pattern = $suggested_pattern,
			    o.should_switch = $should_switch, o.reason = $reason,
			    o.expected_improvement = $expected_improvement, o.created_at = $created_at
		`, map[string]any{
			"id": rec.ID, "current_pattern": string(rec.CurrentPattern),
			"suggested_pattern": string(rec.SuggestedPattern), "should_switch": rec.ShouldSwitch,
			"reason": rec.Reason, "expected_improvement": rec.ExpectedImprovement,
			"created_at": formatTime(rec.CreatedAt),
		})
	})
	return persistenceErr("SaveOptimization", err)
}

func (s *Store) RecordFeedback(ctx context.Context, id string, userSelected *string, feedback *float64) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	existing, err := s.recommendationProps(ctx, session, id)
	if err != nil {
		return persistenceErr("RecordFeedback", err)
	}

	if userSelected != nil {
		if _, ok := existing["user_selected"]; ok {
			return persistenceErr("RecordFeedback", fmt.Errorf("user_selected already recorded for %s", id))
		}
		if err := s.setRecommendationField(ctx, session, id, "user_selected", *userSelected); err != nil {
			return persistenceErr("RecordFeedback", err)
		}
	}
	if feedback != nil {
		if _, ok := existing["feedback"]; ok {
			return persistenceErr("RecordFeedback", fmt.Errorf("feedback already recorded for %s", id))
		}
		if err := s.setRecommendationField(ctx, session, id, "feedback", *feedback); err != nil {
			return persistenceErr("RecordFeedback", err)
		}
		return s.RecomputeMetrics(ctx)
	}
	return nil
}

func (s *Store) recommendationProps(ctx context.Context, session neo4j.SessionWithContext, id string) (map[string]any, error) {
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (r:Recommendation {id: $id}) RETURN r`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, fmt.Errorf("recommendation %s not found", id)
		}
		node, _ := record.Get("r")
		return node.(neo4j.Node).Props, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]any), nil
}

func (s *Store) setRecommendationField(ctx context.Context, session neo4j.SessionWithContext, id, field string, value any) error {
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, fmt.Sprintf(`MATCH (r:Recommendation {id: $id}) SET r.%s = $value`, field), map[string]any{
			"id": id, "value": value,
		})
	})
	return err
}

func (s *Store) RecordActualImprovement(ctx context.Context, id string, improvement float64) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (o:Optimization {id: $id}) RETURN o`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, fmt.Errorf("optimization %s not found", id)
		}
		node, _ := record.Get("o")
		return node.(neo4j.Node).Props, nil
	})
	if err != nil {
		return persistenceErr("RecordActualImprovement", err)
	}
	if _, ok := result.(map[string]any)["actual_improvement"]; ok {
		return persistenceErr("RecordActualImprovement", fmt.Errorf("actual_improvement already recorded for %s", id))
	}

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `MATCH (o:Optimization {id: $id}) SET o.actual_improvement = $value`, map[string]any{
			"id": id, "value": improvement,
		})
	})
	return persistenceErr("RecordActualImprovement", err)
}

func (s *Store) Topology(ctx context.Context, id string) (domhistory.TopologyRecord, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (t:Topology {id: $id}) RETURN t`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, fmt.Errorf("topology %s not found", id)
		}
		node, _ := record.Get("t")
		return node.(neo4j.Node).Props, nil
	})
	if err != nil {
		return domhistory.TopologyRecord{}, persistenceErr("Topology", err)
	}

	props := result.(map[string]any)
	rec := domhistory.TopologyRecord{
		ID:          props["id"].(string),
		Name:        props["name"].(string),
		Pattern:     props["pattern"].(string),
		Intent:      props["intent"].(string),
		Topology:    props["topology"].(string),
		DeviceCount: int(props["device_count"].(int64)),
		LinkCount:   int(props["link_count"].(int64)),
		CreatedAt:   parseTime(props["created_at"]),
	}
	if seed, ok := props["seed"].(int64); ok {
		rec.Seed = &seed
	}
	return rec, nil
}

func (s *Store) RecentMetrics(ctx context.Context, window time.Duration) ([]domhistory.PerformanceMetric, error) {
	cutoff := time.Now().UTC().Add(-window)
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (m:Metric) WHERE m.updated_at >= $cutoff
			RETURN m ORDER BY m.pattern
		`, map[string]any{"cutoff": formatTime(cutoff)})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		var out []domhistory.PerformanceMetric
		for _, record := range records {
			node, _ := record.Get("m")
			props := node.(neo4j.Node).Props
			out = append(out, domhistory.PerformanceMetric{
				Pattern:              props["pattern"].(string),
				SampleSize:           int(props["sample_size"].(int64)),
				AvgOverallScore:      props["avg_overall_score"].(float64),
				SatisfactionRate:     props["satisfaction_rate"].(float64),
				AvgResilienceImpact:  props["avg_resilience_impact"].(float64),
				FeedbackSatisfied:    int(props["feedback_satisfied"].(int64)),
				FeedbackDissatisfied: int(props["feedback_dissatisfied"].(int64)),
				UpdatedAt:            parseTime(props["updated_at"]),
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, persistenceErr("RecentMetrics", err)
	}
	return result.([]domhistory.PerformanceMetric), nil
}

// RecomputeMetrics rebuilds the :Metric node for every pattern reachable
// from a :Validation via VALIDATES, folding in resilience impact from
// SIMULATES and the satisfied/dissatisfied explicit-feedback pools from
// recommendations grouped by their chosen pattern.
func (s *Store) RecomputeMetrics(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MATCH (v:Validation)-[:VALIDATES]->(t:Topology)
			WITH t.pattern AS pattern, count(*) AS sampleSize, avg(v.overall_score) AS avgOverall,
			     100.0 * sum(CASE WHEN v.satisfied THEN 1 ELSE 0 END) / count(*) AS satisfactionRate
			MERGE (m:Metric {pattern: pattern})
			SET m.sample_size = sampleSize, m.avg_overall_score = avgOverall, m.satisfaction_rate = satisfactionRate
		`, nil); err != nil {
			return nil, err
		}

		if _, err := tx.Run(ctx, `
			MATCH (sim:Simulation)-[:SIMULATES]->(t:Topology)
			WITH t.pattern AS pattern, avg(sim.connectivity_loss) AS avgLoss
			MATCH (m:Metric {pattern: pattern})
			SET m.avg_resilience_impact = avgLoss
		`, nil); err != nil {
			return nil, err
		}

		if _, err := tx.Run(ctx, `
			MATCH (r:Recommendation) WHERE r.feedback IS NOT NULL
			WITH r.chosen AS pattern,
			     sum(CASE WHEN r.feedback >= 4 THEN 1 ELSE 0 END) AS satisfied,
			     sum(CASE WHEN r.feedback <= 2 THEN 1 ELSE 0 END) AS dissatisfied
			MATCH (m:Metric {pattern: pattern})
			SET m.feedback_satisfied = satisfied, m.feedback_dissatisfied = dissatisfied
		`, nil); err != nil {
			return nil, err
		}

		return tx.Run(ctx, `
			MATCH (m:Metric)
			SET m.updated_at = $now,
			    m.avg_resilience_impact = coalesce(m.avg_resilience_impact, 0.0),
			    m.feedback_satisfied = coalesce(m.feedback_satisfied, 0),
			    m.feedback_dissatisfied = coalesce(m.feedback_dissatisfied, 0)
		`, map[string]any{"now": formatTime(time.Now().UTC())})
	})
	return persistenceErr("RecomputeMetrics", err)
}

// Package inmemory implements history.Store with plain Go maps behind a
// mutex. It is the zero-configuration backend used by tests and by any
// deployment that does not need durability.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
	domhistory "github.com/netforge-labs/topoforge/internal/domain/history"
)

// Store is an in-memory history.Store implementation.
type Store struct {
	mu              sync.RWMutex
	topologies      map[string]domhistory.TopologyRecord
	validations     []domhistory.ValidationRecord
	simulations     []domhistory.SimulationRecord
	recommendations map[string]domhistory.RecommendationRecord
	optimizations   map[string]domhistory.OptimizationRecord
	metrics         map[string]domhistory.PerformanceMetric
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		topologies:      make(map[string]domhistory.TopologyRecord),
		recommendations: make(map[string]domhistory.RecommendationRecord),
		optimizations:   make(map[string]domhistory.OptimizationRecord),
		metrics:         make(map[string]domhistory.PerformanceMetric),
	}
}

func (s *Store) SaveTopology(_ context.Context, rec domhistory.TopologyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.topologies[rec.ID] = rec
	return nil
}

func (s *Store) SaveValidation(_ context.Context, rec domhistory.ValidationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.validations = append(s.validations, rec)
	s.recomputeLocked()
	return nil
}

func (s *Store) SaveSimulation(_ context.Context, rec domhistory.SimulationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.simulations = append(s.simulations, rec)
	s.recomputeLocked()
	return nil
}

func (s *Store) SaveRecommendation(_ context.Context, rec domhistory.RecommendationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.recommendations[rec.ID] = rec
	return nil
}

func (s *Store) SaveOptimization(_ context.Context, rec domhistory.OptimizationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.optimizations[rec.ID] = rec
	return nil
}

func (s *Store) RecordFeedback(_ context.Context, id string, userSelected *string, feedback *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recommendations[id]
	if !ok {
		return &domerrors.PersistenceError{Op: "RecordFeedback", Err: fmt.Errorf("recommendation %s not found", id)}
	}
	if userSelected != nil {
		if rec.UserSelected != nil {
			return &domerrors.PersistenceError{Op: "RecordFeedback", Err: fmt.Errorf("user_selected already recorded for %s", id)}
		}
		rec.UserSelected = userSelected
	}
	if feedback != nil {
		if rec.Feedback != nil {
			return &domerrors.PersistenceError{Op: "RecordFeedback", Err: fmt.Errorf("feedback already recorded for %s", id)}
		}
		rec.Feedback = feedback
	}
	s.recommendations[id] = rec
	return nil
}

func (s *Store) RecordActualImprovement(_ context.Context, id string, improvement float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.optimizations[id]
	if !ok {
		return &domerrors.PersistenceError{Op: "RecordActualImprovement", Err: fmt.Errorf("optimization %s not found", id)}
	}
	if rec.ActualImprovement != nil {
		return &domerrors.PersistenceError{Op: "RecordActualImprovement", Err: fmt.Errorf("actual_improvement already recorded for %s", id)}
	}
	rec.ActualImprovement = &improvement
	s.optimizations[id] = rec
	return nil
}

func (s *Store) Topology(_ context.Context, id string) (domhistory.TopologyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.topologies[id]
	if !ok {
		return domhistory.TopologyRecord{}, &domerrors.PersistenceError{Op: "Topology", Err: fmt.Errorf("topology %s not found", id)}
	}
	return rec, nil
}

func (s *Store) RecentMetrics(_ context.Context, window time.Duration) ([]domhistory.PerformanceMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := time.Now().UTC().Add(-window)
	out := make([]domhistory.PerformanceMetric, 0, len(s.metrics))
	for _, m := range s.metrics {
		if m.UpdatedAt.After(cutoff) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out, nil
}

func (s *Store) RecomputeMetrics(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputeLocked()
	return nil
}

// recomputeLocked rebuilds every PerformanceMetric from validations and
// topologies. Caller must hold s.mu.
func (s *Store) recomputeLocked() {
	type acc struct {
		overallSum     float64
		satisfiedCount int
		n              int
	}
	byPattern := make(map[string]*acc)

	for _, v := range s.validations {
		top, ok := s.topologies[v.TopologyID]
		if !ok {
			continue
		}
		a, ok := byPattern[top.Pattern]
		if !ok {
			a = &acc{}
			byPattern[top.Pattern] = a
		}
		a.overallSum += v.OverallScore
		a.n++
		if v.Satisfied {
			a.satisfiedCount++
		}
	}

	resilienceByPattern := make(map[string][]float64)
	for _, sim := range s.simulations {
		top, ok := s.topologies[sim.TopologyID]
		if !ok {
			continue
		}
		resilienceByPattern[top.Pattern] = append(resilienceByPattern[top.Pattern], sim.ConnectivityLoss)
	}

	feedback := feedbackPools(s.recommendations)

	now := time.Now().UTC()
	for pattern, a := range byPattern {
		var avgResilience float64
		if losses := resilienceByPattern[pattern]; len(losses) > 0 {
			sum := 0.0
			for _, l := range losses {
				sum += l
			}
			avgResilience = sum / float64(len(losses))
		}
		s.metrics[pattern] = domhistory.PerformanceMetric{
			Pattern:              pattern,
			SampleSize:           a.n,
			AvgOverallScore:      a.overallSum / float64(a.n),
			SatisfactionRate:     100 * float64(a.satisfiedCount) / float64(a.n),
			AvgResilienceImpact:  avgResilience,
			FeedbackSatisfied:    feedback[pattern].satisfied,
			FeedbackDissatisfied: feedback[pattern].dissatisfied,
			UpdatedAt:            now,
		}
	}
}

type feedbackPool struct {
	satisfied    int
	dissatisfied int
}

// feedbackPools buckets explicit 1-5 feedback scores per chosen pattern:
// >=4 satisfied, <=2 dissatisfied, a neutral 3 counts toward neither.
func feedbackPools(recs map[string]domhistory.RecommendationRecord) map[string]feedbackPool {
	pools := make(map[string]feedbackPool)
	for _, r := range recs {
		if r.Feedback == nil {
			continue
		}
		p := pools[r.Chosen]
		switch {
		case *r.Feedback >= 4:
			p.satisfied++
		case *r.Feedback <= 2:
			p.dissatisfied++
		}
		pools[r.Chosen] = p
	}
	return pools
}

func (s *Store) Migrate() error { return nil }

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topologies = make(map[string]domhistory.TopologyRecord)
	s.validations = nil
	s.simulations = nil
	s.recommendations = make(map[string]domhistory.RecommendationRecord)
	s.optimizations = make(map[string]domhistory.OptimizationRecord)
	s.metrics = make(map[string]domhistory.PerformanceMetric)
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) Health(_ context.Context) error { return nil }

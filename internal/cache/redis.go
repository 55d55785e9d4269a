// Package cache wraps a history.Store with a Redis-backed read cache for
// RecentMetrics, the query the recommender and the history API hit on
// every request but that only changes when a validation, simulation, or
// recompute writes new data.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	domhistory "github.com/netforge-labs/topoforge/internal/domain/history"
	"github.com/netforge-labs/topoforge/internal/history"
)

// Config controls the Redis connection and cache TTL.
type Config struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// ConfigFromEnv overlays REDIS_ADDR/REDIS_PASSWORD/REDIS_DB onto cfg,
// mirroring the environment-variable convention the rest of the stack uses
// for out-of-process dependencies.
func ConfigFromEnv(cfg Config) (Config, error) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid REDIS_DB value: %w", err)
		}
		cfg.DB = db
	}
	return cfg, nil
}

// Store decorates a history.Store, caching RecentMetrics and invalidating
// that cache whenever a write could change the answer.
type Store struct {
	inner  history.Store
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and wraps inner in a caching decorator. Connection
// failure is fatal at startup, the same way a misconfigured primary
// history backend would be.
func New(inner history.Store, cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Store{inner: inner, client: client, ttl: cfg.TTL}, nil
}

func metricsKey(window time.Duration) string {
	return fmt.Sprintf("topoforge:metrics:%d", int64(window.Seconds()))
}

// RecentMetrics serves from cache when present, otherwise falls through to
// inner and populates the cache for the next caller.
func (s *Store) RecentMetrics(ctx context.Context, window time.Duration) ([]domhistory.PerformanceMetric, error) {
	key := metricsKey(window)

	if cached, err := s.client.Get(ctx, key).Result(); err == nil {
		var metrics []domhistory.PerformanceMetric
		if jsonErr := json.Unmarshal([]byte(cached), &metrics); jsonErr == nil {
			return metrics, nil
		}
	}

	metrics, err := s.inner.RecentMetrics(ctx, window)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(metrics); err == nil {
		s.client.Set(ctx, key, data, s.ttl)
	}

	return metrics, nil
}

// invalidate drops every cached metrics window. RecentMetrics is keyed by
// window, and a write doesn't know which windows it affects, so the whole
// family is cleared.
func (s *Store) invalidate(ctx context.Context) {
	keys, err := s.client.Keys(ctx, "topoforge:metrics:*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	s.client.Del(ctx, keys...)
}

func (s *Store) SaveTopology(ctx context.Context, rec domhistory.TopologyRecord) error {
	return s.inner.SaveTopology(ctx, rec)
}

func (s *Store) SaveValidation(ctx context.Context, rec domhistory.ValidationRecord) error {
	if err := s.inner.SaveValidation(ctx, rec); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Store) SaveSimulation(ctx context.Context, rec domhistory.SimulationRecord) error {
	if err := s.inner.SaveSimulation(ctx, rec); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Store) SaveRecommendation(ctx context.Context, rec domhistory.RecommendationRecord) error {
	if err := s.inner.SaveRecommendation(ctx, rec); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Store) SaveOptimization(ctx context.Context, rec domhistory.OptimizationRecord) error {
	return s.inner.SaveOptimization(ctx, rec)
}

func (s *Store) RecordFeedback(ctx context.Context, recommendationID string, userSelected *string, feedback *float64) error {
	if err := s.inner.RecordFeedback(ctx, recommendationID, userSelected, feedback); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Store) RecordActualImprovement(ctx context.Context, optimizationID string, improvement float64) error {
	return s.inner.RecordActualImprovement(ctx, optimizationID, improvement)
}

func (s *Store) Topology(ctx context.Context, id string) (domhistory.TopologyRecord, error) {
	return s.inner.Topology(ctx, id)
}

func (s *Store) RecomputeMetrics(ctx context.Context) error {
	if err := s.inner.RecomputeMetrics(ctx); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Store) Migrate() error {
	return s.inner.Migrate()
}

func (s *Store) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.invalidate(ctx)
	return s.inner.Clear()
}

func (s *Store) Close() error {
	if err := s.inner.Close(); err != nil {
		s.client.Close()
		return err
	}
	return s.client.Close()
}

func (s *Store) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return s.inner.Health(ctx)
}

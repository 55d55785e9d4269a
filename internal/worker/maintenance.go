package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/netforge-labs/topoforge/internal/history"
)

// Maintenance runs the periodic upkeep the history store needs once it is
// taking live traffic: metric recomputation so the recommender's confidence
// scores stay fresh without waiting for the next inline write.
type Maintenance struct {
	store     history.Store
	scheduler *Scheduler
	logger    *log.Logger
	config    MaintenanceConfig
}

// MaintenanceConfig controls how often the recompute task runs.
type MaintenanceConfig struct {
	RecomputeInterval time.Duration `yaml:"recompute_interval"`
	RecomputeTimeout  time.Duration `yaml:"recompute_timeout"`
	EnableRecompute   bool          `yaml:"enable_recompute"`
}

// DefaultMaintenanceConfig returns the baseline schedule.
func DefaultMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{
		RecomputeInterval: 1 * time.Hour,
		RecomputeTimeout:  5 * time.Minute,
		EnableRecompute:   true,
	}
}

// NewMaintenance creates a new maintenance worker over the given store.
func NewMaintenance(store history.Store, config MaintenanceConfig, logger *log.Logger) *Maintenance {
	if logger == nil {
		logger = log.Default()
	}

	return &Maintenance{
		store:     store,
		scheduler: NewScheduler(logger),
		logger:    logger,
		config:    config,
	}
}

// Start registers and starts the maintenance tasks.
func (m *Maintenance) Start() error {
	m.logger.Println("Starting history maintenance worker...")

	if m.config.EnableRecompute {
		recomputeTask := Task{
			ID:          "recompute_metrics",
			Name:        "Recompute Performance Metrics",
			Description: "Rebuilds every pattern's PerformanceMetric from the raw validation/simulation/recommendation history",
			Interval:    m.config.RecomputeInterval,
			Timeout:     m.config.RecomputeTimeout,
			Run:         m.recomputeMetrics,
		}
		if err := m.scheduler.AddTask(recomputeTask); err != nil {
			return fmt.Errorf("failed to add recompute task: %w", err)
		}
	}

	m.scheduler.Start()
	m.logger.Println("History maintenance worker started successfully")
	return nil
}

// Stop stops the maintenance worker and waits for any in-flight task.
func (m *Maintenance) Stop() {
	m.logger.Println("Stopping history maintenance worker...")
	m.scheduler.Stop()
	m.logger.Println("History maintenance worker stopped")
}

// Status returns the status of every maintenance task.
func (m *Maintenance) Status() []TaskStatus {
	return m.scheduler.GetTaskStatus()
}

// RunNow triggers an immediate recompute, outside of the schedule.
func (m *Maintenance) RunNow() error {
	return m.scheduler.RunTaskNow("recompute_metrics")
}

func (m *Maintenance) recomputeMetrics(ctx context.Context) error {
	m.logger.Println("Recomputing performance metrics...")
	if err := m.store.RecomputeMetrics(ctx); err != nil {
		return fmt.Errorf("recompute metrics: %w", err)
	}
	m.logger.Println("Performance metrics recomputed")
	return nil
}

// Health reports whether the underlying history store is reachable.
func (m *Maintenance) Health(ctx context.Context) error {
	if err := m.store.Health(ctx); err != nil {
		return fmt.Errorf("history store health check failed: %w", err)
	}
	return nil
}

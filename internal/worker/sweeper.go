// Package worker provides the background sweep that raises alerts for
// overdue maintenance tasks.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/efme/efme-api/internal/domain"
	"github.com/efme/efme-api/internal/store"
)

// SweeperConfig holds configuration for the overdue task sweeper
type SweeperConfig struct {
	// Interval determines how often the sweep runs
	Interval time.Duration
}

// DefaultSweeperConfig returns a SweeperConfig with reasonable defaults
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval: time.Hour,
	}
}

// OverdueSweeper periodically scans for tasks whose planned date has
// passed while they are still open, and raises a task_overdue alert for
// the assignee. Alerts are deduplicated per task, so a task that stays
// overdue across many sweeps produces one alert.
type OverdueSweeper struct {
	taskStore  store.TaskStore
	alertStore store.AlertStore
	config     SweeperConfig
	logger     *slog.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	// Injectable for testing
	timeFunc func() time.Time
}

// NewOverdueSweeper creates a new OverdueSweeper.
func NewOverdueSweeper(
	taskStore store.TaskStore,
	alertStore store.AlertStore,
	config SweeperConfig,
	logger *slog.Logger,
) *OverdueSweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultSweeperConfig().Interval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &OverdueSweeper{
		taskStore:  taskStore,
		alertStore: alertStore,
		config:     config,
		logger:     logger.With(slog.String("component", "overdue_sweeper")),
		ctx:        ctx,
		cancelFunc: cancel,
		timeFunc:   time.Now,
	}
}

// Start runs an immediate sweep and then begins the periodic loop.
func (s *OverdueSweeper) Start() {
	s.wg.Add(1)
	go s.loop()
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *OverdueSweeper) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

func (s *OverdueSweeper) loop() {
	defer s.wg.Done()

	if err := s.RunOnce(s.ctx); err != nil {
		s.logger.Error("overdue sweep failed", "error", err)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debug("stopping overdue sweeper")
			return
		case <-ticker.C:
			if err := s.RunOnce(s.ctx); err != nil {
				s.logger.Error("overdue sweep failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single sweep. Exported so the loop and tests share
// the same path.
func (s *OverdueSweeper) RunOnce(ctx context.Context) error {
	now := s.timeFunc().UTC()

	overdue, err := s.taskStore.ListOverdue(ctx, now)
	if err != nil {
		return err
	}

	var raised int
	for _, task := range overdue {
		if task.AssigneeID == nil {
			// Nobody to notify.
			continue
		}

		exists, err := s.alertStore.ExistsForTask(ctx, task.ID, domain.AlertTypeTaskOverdue)
		if err != nil {
			s.logger.Error("failed to check existing alert",
				"error", err,
				"task_id", task.ID)
			continue
		}
		if exists {
			continue
		}

		taskID := task.ID
		alert, err := domain.NewAlert(*task.AssigneeID, &taskID, domain.AlertTypeTaskOverdue)
		if err != nil {
			s.logger.Error("failed to build alert",
				"error", err,
				"task_id", task.ID)
			continue
		}

		if err := s.alertStore.Create(ctx, alert); err != nil {
			s.logger.Error("failed to create alert",
				"error", err,
				"task_id", task.ID)
			continue
		}
		raised++
	}

	s.logger.Info("overdue sweep finished",
		"overdue_count", len(overdue),
		"alerts_raised", raised)
	return nil
}

package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-tracker/internal/model"
	"github.com/BuzzLyutic/todo-tracker/internal/store"
)

// Sweeper periodically closes overdue tasks: any task whose deadline
// has passed and is not already done gets marked done with a closed_at
// timestamp. It runs against the Store port, so it works the same on
// the in-memory and postgres backends.
type Sweeper struct {
	store    store.Store
	logger   *zap.Logger
	interval time.Duration
	wg       sync.WaitGroup
	stop     chan struct{}
}

func NewSweeper(st store.Store, logger *zap.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    st,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Overdue sweeper disabled")
		return
	}

	s.logger.Info("Starting overdue sweeper", zap.Duration("interval", s.interval))
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Sweeper) Stop() {
	s.logger.Info("Stopping overdue sweeper...")
	close(s.stop)
	s.wg.Wait()
	s.logger.Info("Overdue sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			closed, err := s.sweep(ctx)
			if err != nil {
				s.logger.Error("sweep failed", zap.Error(err))
				continue
			}
			if closed > 0 {
				s.logger.Info("Closed overdue tasks", zap.Int("count", closed))
			}
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) (int, error) {
	overdue, err := s.store.ListOverdueTasks(ctx, model.Today().Time)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, task := range overdue {
		// CloseTask touches only status and closed_at, so an edit that
		// lands after the listing is never overwritten with the stale
		// snapshot
		err := s.store.CloseTask(ctx, task.ProjectID, task.ID, time.Now().UTC())
		if errors.Is(err, store.ErrNotFound) {
			// deleted or finished since the listing
			continue
		}
		if err != nil {
			s.logger.Error("failed to close overdue task",
				zap.Int64("task_id", task.ID),
				zap.Int64("project_id", task.ProjectID),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("Closed overdue task",
			zap.Int64("task_id", task.ID),
			zap.Int64("project_id", task.ProjectID),
			zap.String("name", task.Name),
		)
		closed++
	}
	return closed, nil
}

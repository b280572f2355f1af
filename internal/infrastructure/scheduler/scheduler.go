package scheduler

import (
	"context"
	"time"

	"github.com/Youngermaster/taskhub/pkg/logger"
	"go.uber.org/zap"
)

// ActivityPruner deletes audit entries older than the cutoff. Satisfied by
// the activity repository.
type ActivityPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler runs the activity log retention sweep: once at startup, then on
// a fixed interval.
type Scheduler struct {
	pruner        ActivityPruner
	retentionDays int
	interval      time.Duration
	logger        *logger.Logger
	stop          chan struct{}
}

func NewScheduler(pruner ActivityPruner, retentionDays int, interval time.Duration, logger *logger.Logger) *Scheduler {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		pruner:        pruner,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        logger,
		stop:          make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("Activity retention scheduler initialized",
		zap.Int("retention_days", s.retentionDays),
		zap.Duration("sweep_interval", s.interval),
	)

	// Run immediately at startup
	s.runSweep()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runSweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the periodic sweep. Safe to call once.
func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) runSweep() {
	ctx := context.Background()
	startTime := time.Now()
	cutoff := startTime.UTC().AddDate(0, 0, -s.retentionDays)

	deleted, err := s.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("Activity retention sweep failed",
			zap.Error(err),
			zap.Time("cutoff", cutoff),
		)
		return
	}

	s.logger.Info("Activity retention sweep completed",
		zap.Int64("deleted", deleted),
		zap.Time("cutoff", cutoff),
		zap.Duration("duration", time.Since(startTime)),
	)
}

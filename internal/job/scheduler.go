package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the overdue sweep on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *OverdueSweeper
	logger  *slog.Logger
}

// NewScheduler registers the sweeper under the given cron expression
// (standard five-field format, e.g. "0 * * * *" for hourly).
func NewScheduler(schedule string, sweeper *OverdueSweeper, logger *slog.Logger) (*Scheduler, error) {
	if sweeper == nil {
		panic("sweeper cannot be nil") // ALLOW-PANIC: Constructor enforcing required dependency
	}
	if logger == nil {
		panic("logger cannot be nil") // ALLOW-PANIC: Constructor enforcing required dependency
	}

	s := &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		logger:  logger.With(slog.String("component", "scheduler")),
	}

	if _, err := s.cron.AddFunc(schedule, s.runSweep); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

func (s *Scheduler) runSweep() {
	ctx := context.Background()
	if _, err := s.sweeper.Run(ctx); err != nil {
		s.logger.ErrorContext(ctx, "overdue sweep failed",
			slog.String("error", err.Error()))
	}
}

// Start begins executing scheduled jobs in their own goroutines.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

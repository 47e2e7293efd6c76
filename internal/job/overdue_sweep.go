// Package job contains background jobs that run outside the request path.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/service"
	"github.com/phrazzld/tracker-api/internal/store"
)

// OverdueSweeper flags tasks whose due date has passed. Each run selects
// tasks that are not yet flagged, are in a non-terminal status and are past
// due, then per task sets the overdue flag and appends a "marked_overdue"
// log entry attributed to the system actor. A mid-run failure aborts the
// run; already-processed tasks keep their flag and the remainder is picked
// up on the next tick.
type OverdueSweeper struct {
	taskStore store.TaskStore
	activity  service.ActivityRecorder
	logger    *slog.Logger
	timeFunc  func() time.Time
}

// NewOverdueSweeper creates an OverdueSweeper with all required dependencies.
func NewOverdueSweeper(taskStore store.TaskStore, activity service.ActivityRecorder, logger *slog.Logger) *OverdueSweeper {
	if taskStore == nil {
		panic("taskStore cannot be nil") // ALLOW-PANIC: Constructor enforcing required dependency
	}
	if activity == nil {
		panic("activity cannot be nil") // ALLOW-PANIC: Constructor enforcing required dependency
	}
	if logger == nil {
		panic("logger cannot be nil") // ALLOW-PANIC: Constructor enforcing required dependency
	}

	return &OverdueSweeper{
		taskStore: taskStore,
		activity:  activity,
		logger:    logger.With(slog.String("component", "overdue_sweeper")),
		timeFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one sweep and returns the number of tasks flagged.
func (s *OverdueSweeper) Run(ctx context.Context) (int, error) {
	now := s.timeFunc()

	candidates, err := s.taskStore.ListOverdueCandidates(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue candidates: %w", err)
	}

	processed := 0
	for _, task := range candidates {
		if err := s.taskStore.MarkOverdue(ctx, task.ID); err != nil {
			return processed, fmt.Errorf("failed to mark task %s overdue: %w", task.ID, err)
		}

		if err := s.activity.Record(ctx, task.ID, domain.SystemActorID, domain.ActivityMarkedOverdue,
			"", "", "", "Task marked as overdue"); err != nil {
			return processed, fmt.Errorf("failed to record overdue entry for task %s: %w", task.ID, err)
		}

		processed++
	}

	if processed > 0 {
		s.logger.InfoContext(ctx, "overdue sweep complete",
			slog.Int("flagged", processed))
	}

	return processed, nil
}

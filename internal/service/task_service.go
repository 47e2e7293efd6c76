package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
)

// CreateTaskInput carries the caller-supplied fields for a new task.
// Priority defaults to medium when empty; status always starts open.
type CreateTaskInput struct {
	Title       string
	Description string
	AssigneeID  *uuid.UUID
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// TaskUpdate is a partial update payload. Nil pointer fields are absent
// and keep the stored value. AssigneeID and DueDate use Optional so an
// explicit null in the payload clears them, which a plain pointer cannot
// express.
type TaskUpdate struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	AssigneeID  Optional[uuid.UUID]  `json:"assignee_id"`
	Status      *domain.TaskStatus   `json:"status"`
	Priority    *domain.TaskPriority `json:"priority"`
	DueDate     Optional[time.Time]  `json:"due_date"`
}

// TaskService orchestrates task mutations and their side effects.
// Notifications and activity-log entries are dispatched after the primary
// write commits; a failed side effect is logged and discarded, never
// surfaced to the caller.
type TaskService interface {
	// CreateTask persists a new task and records its creation. When the
	// task is created with an assignee the assignee is notified. Returns
	// the stored task re-read with its observers populated.
	CreateTask(ctx context.Context, projectID, actorID uuid.UUID, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a task with its observers populated.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListProjectTasks returns the project's tasks ordered by priority
	// then due date.
	ListProjectTasks(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error)

	// ListAssignedTasks returns tasks assigned to the user.
	ListAssignedTasks(ctx context.Context, assigneeID uuid.UUID) ([]*domain.Task, error)

	// UpdateTask merges the partial update into the stored task inside a
	// transaction, then dispatches one notification and one activity-log
	// entry per changed field, in the order assignee, status, due date.
	// An update that changes nothing produces no side effects. Returns
	// the stored task re-read with its observers populated.
	UpdateTask(ctx context.Context, taskID, actorID uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// AddObserver adds userID as an observer of the task, notifies them
	// and records the addition.
	AddObserver(ctx context.Context, taskID, userID, actorID uuid.UUID) error

	// RemoveObserver removes userID as an observer and records the
	// removal. No notification is sent.
	RemoveObserver(ctx context.Context, taskID, userID, actorID uuid.UUID) error

	// ListObservers returns the task's observers.
	ListObservers(ctx context.Context, taskID uuid.UUID) ([]domain.TaskObserver, error)

	// GetActivityLog returns the task's activity log, newest first.
	GetActivityLog(ctx context.Context, taskID uuid.UUID) ([]*domain.ActivityLogEntry, error)
}

// taskDiff captures what an update changed, recorded before the write so
// post-commit side effects see the pre-update state.
type taskDiff struct {
	assigneeChanged bool
	prevAssignee    *uuid.UUID
	newAssignee     *uuid.UUID

	statusChanged bool
	prevStatus    domain.TaskStatus
	newStatus     domain.TaskStatus

	dueDateChanged bool
	prevDueDate    *time.Time
	newDueDate     *time.Time
}

func (d taskDiff) empty() bool {
	return !d.assigneeChanged && !d.statusChanged && !d.dueDateChanged
}

type taskService struct {
	db        *sql.DB
	taskStore store.TaskStore
	notifier  Notifier
	activity  ActivityRecorder
	logger    *slog.Logger
	timeFunc  func() time.Time
	runTx     func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// Ensure taskService implements TaskService.
var _ TaskService = (*taskService)(nil)

// NewTaskService creates a TaskService with all required dependencies.
func NewTaskService(db *sql.DB, taskStore store.TaskStore, notifier Notifier, activity ActivityRecorder, logger *slog.Logger) TaskService {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC: Constructor enforcing required dependency
	}
	if taskStore == nil {
		panic("taskStore cannot be nil") // ALLOW-PANIC: Constructor enforcing required dependency
	}
	if notifier == nil {
		panic("notifier cannot be nil") // ALLOW-PANIC: Constructor enforcing required dependency
	}
	if activity == nil {
		panic("activity cannot be nil") // ALLOW-PANIC: Constructor enforcing required dependency
	}
	if logger == nil {
		panic("logger cannot be nil") // ALLOW-PANIC: Constructor enforcing required dependency
	}

	return &taskService{
		db:        db,
		taskStore: taskStore,
		notifier:  notifier,
		activity:  activity,
		logger:    logger.With(slog.String("component", "task_service")),
		timeFunc:  func() time.Time { return time.Now().UTC() },
		runTx:     store.RunInTransaction,
	}
}

func (s *taskService) CreateTask(ctx context.Context, projectID, actorID uuid.UUID, input CreateTaskInput) (*domain.Task, error) {
	if input.Priority != "" && !input.Priority.Valid() {
		return nil, fmt.Errorf("%w: %q is not a valid priority", domain.ErrInvalidPriority, input.Priority)
	}

	task, err := domain.NewTask(projectID, input.Title, input.Description, input.AssigneeID, actorID, input.Priority, input.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, newTaskServiceError("create_task", "failed to save task", err)
	}

	s.dispatch(ctx, task.ID, "record creation", func() error {
		return s.activity.Record(ctx, task.ID, actorID, domain.ActivityCreated, "", "", "", "Task created")
	})

	if task.AssigneeID != nil {
		assigneeID := *task.AssigneeID
		s.dispatch(ctx, task.ID, "notify assignee", func() error {
			return s.notifier.TaskAssigned(ctx, task.ID, assigneeID, actorID)
		})
		s.dispatch(ctx, task.ID, "record assignment", func() error {
			return s.activity.Record(ctx, task.ID, actorID, domain.ActivityAssigned,
				"assignee_id", "none", assigneeID.String(), "")
		})
	}

	return s.GetTask(ctx, task.ID)
}

func (s *taskService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, newTaskServiceError("get_task", "failed to load task", err)
	}

	observers, err := s.taskStore.ListObservers(ctx, id)
	if err != nil {
		return nil, newTaskServiceError("get_task", "failed to load observers", err)
	}
	task.Observers = observers

	return task, nil
}

func (s *taskService) ListProjectTasks(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListByProject(ctx, projectID)
	if err != nil {
		return nil, newTaskServiceError("list_project_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

func (s *taskService) ListAssignedTasks(ctx context.Context, assigneeID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListByAssignee(ctx, assigneeID)
	if err != nil {
		return nil, newTaskServiceError("list_assigned_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

func (s *taskService) UpdateTask(ctx context.Context, taskID, actorID uuid.UUID, update TaskUpdate) (*domain.Task, error) {
	if update.Status != nil && !update.Status.Valid() {
		return nil, fmt.Errorf("%w: %q is not a valid status", domain.ErrInvalidStatus, *update.Status)
	}
	if update.Priority != nil && !update.Priority.Valid() {
		return nil, fmt.Errorf("%w: %q is not a valid priority", domain.ErrInvalidPriority, *update.Priority)
	}

	var diff taskDiff

	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		task, err := txStore.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		diff = mergeTaskUpdate(task, update)

		if diff.dueDateChanged && (task.DueDate == nil || task.DueDate.After(s.timeFunc())) {
			task.IsOverdue = false
		}

		if err := task.Validate(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}

		task.UpdatedAt = s.timeFunc()
		return txStore.Update(ctx, task)
	})
	if err != nil {
		return nil, newTaskServiceError("update_task", "failed to update task", err)
	}

	if !diff.empty() {
		s.dispatchUpdateEffects(ctx, taskID, actorID, diff)
	}

	// Re-read so the response carries the observer list and the username
	// joins reflect the committed row.
	return s.GetTask(ctx, taskID)
}

// mergeTaskUpdate applies the update's set fields to task and returns the
// diff of what actually changed.
func mergeTaskUpdate(task *domain.Task, update TaskUpdate) taskDiff {
	var diff taskDiff

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}

	if update.AssigneeID.Set && !uuidPtrEqual(task.AssigneeID, update.AssigneeID.Value) {
		diff.assigneeChanged = true
		diff.prevAssignee = task.AssigneeID
		diff.newAssignee = update.AssigneeID.Value
		task.AssigneeID = update.AssigneeID.Value
	}

	if update.Status != nil && *update.Status != task.Status {
		diff.statusChanged = true
		diff.prevStatus = task.Status
		diff.newStatus = *update.Status
		task.Status = *update.Status
	}

	if update.Priority != nil {
		task.Priority = *update.Priority
	}

	if update.DueDate.Set && !timePtrEqual(task.DueDate, update.DueDate.Value) {
		diff.dueDateChanged = true
		diff.prevDueDate = task.DueDate
		diff.newDueDate = update.DueDate.Value
		task.DueDate = update.DueDate.Value
	}

	return diff
}

// dispatchUpdateEffects sends notifications and activity-log entries for
// the diff, one pair per changed field in a fixed order: assignee first,
// then status, then due date. Status and due-date notifications address
// the task's assignee as of before this update.
func (s *taskService) dispatchUpdateEffects(ctx context.Context, taskID, actorID uuid.UUID, diff taskDiff) {
	if diff.assigneeChanged {
		if diff.newAssignee != nil {
			assigneeID := *diff.newAssignee
			s.dispatch(ctx, taskID, "notify assignee", func() error {
				return s.notifier.TaskAssigned(ctx, taskID, assigneeID, actorID)
			})
		}
		s.dispatch(ctx, taskID, "record assignment change", func() error {
			return s.activity.Record(ctx, taskID, actorID, domain.ActivityAssigned,
				"assignee_id", formatAssignee(diff.prevAssignee), formatAssignee(diff.newAssignee), "")
		})
	}

	if diff.statusChanged {
		s.dispatch(ctx, taskID, "notify status change", func() error {
			return s.notifier.StatusChanged(ctx, taskID, diff.prevAssignee, actorID, diff.prevStatus, diff.newStatus)
		})
		s.dispatch(ctx, taskID, "record status change", func() error {
			return s.activity.Record(ctx, taskID, actorID, domain.ActivityStatusChanged,
				"status", string(diff.prevStatus), string(diff.newStatus), "")
		})
	}

	if diff.dueDateChanged {
		s.dispatch(ctx, taskID, "notify due date change", func() error {
			return s.notifier.DueDateChanged(ctx, taskID, diff.prevAssignee, actorID, diff.prevDueDate, diff.newDueDate)
		})
		s.dispatch(ctx, taskID, "record due date change", func() error {
			return s.activity.Record(ctx, taskID, actorID, domain.ActivityDueDateChanged,
				"due_date", formatDueDate(diff.prevDueDate), formatDueDate(diff.newDueDate), "")
		})
	}
}

func (s *taskService) AddObserver(ctx context.Context, taskID, userID, actorID uuid.UUID) error {
	observer := domain.NewTaskObserver(taskID, userID)
	if err := s.taskStore.AddObserver(ctx, observer); err != nil {
		return newTaskServiceError("add_observer", "failed to add observer", err)
	}

	s.dispatch(ctx, taskID, "notify observer", func() error {
		return s.notifier.ObserverAdded(ctx, taskID, userID, actorID)
	})
	s.dispatch(ctx, taskID, "record observer addition", func() error {
		return s.activity.Record(ctx, taskID, actorID, domain.ActivityObserverAdded,
			"", "", "", fmt.Sprintf("Observer %s added", userID))
	})

	return nil
}

func (s *taskService) RemoveObserver(ctx context.Context, taskID, userID, actorID uuid.UUID) error {
	if err := s.taskStore.RemoveObserver(ctx, taskID, userID); err != nil {
		return newTaskServiceError("remove_observer", "failed to remove observer", err)
	}

	s.dispatch(ctx, taskID, "record observer removal", func() error {
		return s.activity.Record(ctx, taskID, actorID, domain.ActivityObserverRemoved,
			"", "", "", fmt.Sprintf("Observer %s removed", userID))
	})

	return nil
}

func (s *taskService) ListObservers(ctx context.Context, taskID uuid.UUID) ([]domain.TaskObserver, error) {
	if _, err := s.taskStore.GetByID(ctx, taskID); err != nil {
		return nil, newTaskServiceError("list_observers", "failed to load task", err)
	}

	observers, err := s.taskStore.ListObservers(ctx, taskID)
	if err != nil {
		return nil, newTaskServiceError("list_observers", "failed to list observers", err)
	}
	return observers, nil
}

func (s *taskService) GetActivityLog(ctx context.Context, taskID uuid.UUID) ([]*domain.ActivityLogEntry, error) {
	if _, err := s.taskStore.GetByID(ctx, taskID); err != nil {
		return nil, newTaskServiceError("get_activity_log", "failed to load task", err)
	}

	entries, err := s.activity.ListByTask(ctx, taskID)
	if err != nil {
		return nil, newTaskServiceError("get_activity_log", "failed to list activity log", err)
	}
	return entries, nil
}

// dispatch runs one side effect. Errors are logged and discarded so a
// failed notification or log write never fails the primary operation.
func (s *taskService) dispatch(ctx context.Context, taskID uuid.UUID, what string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.WarnContext(ctx, "task side effect failed",
			slog.String("task_id", taskID.String()),
			slog.String("effect", what),
			slog.String("error", err.Error()))
	}
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func formatAssignee(id *uuid.UUID) string {
	if id == nil {
		return "none"
	}
	return id.String()
}

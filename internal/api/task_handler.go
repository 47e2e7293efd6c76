package api

import (
	"net/http"

	"github.com/phrazzld/tracker-api/internal/api/shared"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/service"
)

// TaskHandler handles task, observer and activity-log API requests.
// All mutations go through the task service so notifications and
// activity-log entries are dispatched consistently.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create handles POST /api/tasks/projects/{projectId}.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	projectID, ok := requirePathUUID(w, r, "projectId")
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), projectID, userID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, struct {
		Message string       `json:"message"`
		Task    *domain.Task `json:"task"`
	}{
		Message: "Task created successfully",
		Task:    task,
	})
}

// ListByProject handles GET /api/tasks/projects/{projectId}.
func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := requirePathUUID(w, r, "projectId")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListProjectTasks(r.Context(), projectID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Tasks []*domain.Task `json:"tasks"`
	}{Tasks: tasks})
}

// ListMine handles GET /api/tasks/my-tasks.
func (h *TaskHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListAssignedTasks(r.Context(), userID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Tasks []*domain.Task `json:"tasks"`
	}{Tasks: tasks})
}

// Get handles GET /api/tasks/{taskId}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	taskID, ok := requirePathUUID(w, r, "taskId")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Task *domain.Task `json:"task"`
	}{Task: task})
}

// Update handles PUT /api/tasks/{taskId}. Fields absent from the payload
// keep their stored value; an explicit null clears the assignee or due
// date.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := requirePathUUID(w, r, "taskId")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, userID, req.toServiceUpdate())
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string       `json:"message"`
		Task    *domain.Task `json:"task"`
	}{
		Message: "Task updated successfully",
		Task:    task,
	})
}

// AddObserver handles POST /api/tasks/{taskId}/observers.
func (h *TaskHandler) AddObserver(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := requirePathUUID(w, r, "taskId")
	if !ok {
		return
	}

	var req AddObserverRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.taskService.AddObserver(r.Context(), taskID, req.UserID, userID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, struct {
		Message string `json:"message"`
	}{Message: "Observer added successfully"})
}

// RemoveObserver handles DELETE /api/tasks/{taskId}/observers/{userId}.
func (h *TaskHandler) RemoveObserver(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := requirePathUUID(w, r, "taskId")
	if !ok {
		return
	}
	userID, ok := requirePathUUID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.taskService.RemoveObserver(r.Context(), taskID, userID, actorID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "Observer removed successfully"})
}

// ListObservers handles GET /api/tasks/{taskId}/observers.
func (h *TaskHandler) ListObservers(w http.ResponseWriter, r *http.Request) {
	taskID, ok := requirePathUUID(w, r, "taskId")
	if !ok {
		return
	}

	observers, err := h.taskService.ListObservers(r.Context(), taskID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Observers []domain.TaskObserver `json:"observers"`
	}{Observers: observers})
}

// ActivityLog handles GET /api/tasks/{taskId}/activity-logs.
func (h *TaskHandler) ActivityLog(w http.ResponseWriter, r *http.Request) {
	taskID, ok := requirePathUUID(w, r, "taskId")
	if !ok {
		return
	}

	entries, err := h.taskService.GetActivityLog(r.Context(), taskID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		ActivityLogs []*domain.ActivityLogEntry `json:"activity_logs"`
	}{ActivityLogs: entries})
}

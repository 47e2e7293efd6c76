package api

import (
	"net/http"

	"github.com/phrazzld/tracker-api/internal/api/shared"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
)

// SubtaskHandler handles subtask API requests. Subtasks are plain CRUD:
// no notifications, no activity log, no overdue tracking.
type SubtaskHandler struct {
	subtaskStore store.SubtaskStore
	taskStore    store.TaskStore
}

// NewSubtaskHandler creates a new SubtaskHandler with the given dependencies.
func NewSubtaskHandler(subtaskStore store.SubtaskStore, taskStore store.TaskStore) *SubtaskHandler {
	return &SubtaskHandler{
		subtaskStore: subtaskStore,
		taskStore:    taskStore,
	}
}

// Create handles POST /api/subtasks/tasks/{taskId}.
func (h *SubtaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	taskID, ok := requirePathUUID(w, r, "taskId")
	if !ok {
		return
	}

	var req CreateSubtaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	// The parent task must exist.
	if _, err := h.taskStore.GetByID(r.Context(), taskID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	subtask, err := domain.NewSubtask(taskID, req.Title, req.Description, req.AssigneeID, req.Priority, req.DueDate)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid subtask data: "+err.Error())
		return
	}

	if err := h.subtaskStore.Create(r.Context(), subtask); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, struct {
		Message string          `json:"message"`
		Subtask *domain.Subtask `json:"subtask"`
	}{
		Message: "Subtask created successfully",
		Subtask: subtask,
	})
}

// ListByTask handles GET /api/subtasks/tasks/{taskId}.
func (h *SubtaskHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := requirePathUUID(w, r, "taskId")
	if !ok {
		return
	}

	if _, err := h.taskStore.GetByID(r.Context(), taskID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	subtasks, err := h.subtaskStore.ListByTask(r.Context(), taskID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Subtasks []*domain.Subtask `json:"subtasks"`
	}{Subtasks: subtasks})
}

// Get handles GET /api/subtasks/{subtaskId}.
func (h *SubtaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	subtaskID, ok := requirePathUUID(w, r, "subtaskId")
	if !ok {
		return
	}

	subtask, err := h.subtaskStore.GetByID(r.Context(), subtaskID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Subtask *domain.Subtask `json:"subtask"`
	}{Subtask: subtask})
}

// Update handles PUT /api/subtasks/{subtaskId}.
func (h *SubtaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	subtaskID, ok := requirePathUUID(w, r, "subtaskId")
	if !ok {
		return
	}

	var req UpdateSubtaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		RespondWithMappedError(w, r, domain.ErrInvalidStatus)
		return
	}
	if req.Priority != nil && !req.Priority.Valid() {
		RespondWithMappedError(w, r, domain.ErrInvalidPriority)
		return
	}

	subtask, err := h.subtaskStore.GetByID(r.Context(), subtaskID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if req.Title != nil {
		subtask.Title = *req.Title
	}
	if req.Description != nil {
		subtask.Description = *req.Description
	}
	if req.AssigneeID.Set {
		subtask.AssigneeID = req.AssigneeID.Value
	}
	if req.Status != nil {
		subtask.Status = *req.Status
	}
	if req.Priority != nil {
		subtask.Priority = *req.Priority
	}
	if req.DueDate.Set {
		subtask.DueDate = req.DueDate.Value
	}

	if err := subtask.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid subtask data: "+err.Error())
		return
	}

	if err := h.subtaskStore.Update(r.Context(), subtask); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string          `json:"message"`
		Subtask *domain.Subtask `json:"subtask"`
	}{
		Message: "Subtask updated successfully",
		Subtask: subtask,
	})
}

// Delete handles DELETE /api/subtasks/{subtaskId}.
func (h *SubtaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	subtaskID, ok := requirePathUUID(w, r, "subtaskId")
	if !ok {
		return
	}

	if err := h.subtaskStore.Delete(r.Context(), subtaskID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "Subtask deleted successfully"})
}

package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/phrazzld/tracker-api/internal/api/shared"
	"github.com/phrazzld/tracker-api/internal/domain"
	"github.com/phrazzld/tracker-api/internal/store"
)

// ProjectHandler handles project and membership API requests.
type ProjectHandler struct {
	db           *sql.DB
	projectStore store.ProjectStore
}

// NewProjectHandler creates a new ProjectHandler with the given dependencies.
func NewProjectHandler(db *sql.DB, projectStore store.ProjectStore) *ProjectHandler {
	return &ProjectHandler{
		db:           db,
		projectStore: projectStore,
	}
}

// Create handles POST /api/projects. The owner's lead membership is
// created in the same transaction as the project row.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	project, err := domain.NewProject(req.Name, req.Description, userID, req.StartDate, req.EndDate)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project data: "+err.Error())
		return
	}

	member, err := domain.NewProjectMember(project.ID, userID, domain.MemberRoleLead)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	err = store.RunInTransaction(r.Context(), h.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := h.projectStore.WithTx(tx)
		if err := txStore.Create(ctx, project); err != nil {
			return err
		}
		return txStore.AddMember(ctx, member)
	})
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, struct {
		Message string          `json:"message"`
		Project *domain.Project `json:"project"`
	}{
		Message: "Project created successfully",
		Project: project,
	})
}

// List handles GET /api/projects (admin only).
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectStore.List(r.Context())
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Projects []*domain.Project `json:"projects"`
	}{Projects: projects})
}

// ListMine handles GET /api/projects/my-projects.
func (h *ProjectHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	projects, err := h.projectStore.ListByUser(r.Context(), userID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Projects []*domain.Project `json:"projects"`
	}{Projects: projects})
}

// Get handles GET /api/projects/{projectId}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := requirePathUUID(w, r, "projectId")
	if !ok {
		return
	}

	project, err := h.projectStore.GetByID(r.Context(), projectID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Project *domain.Project `json:"project"`
	}{Project: project})
}

// Update handles PUT /api/projects/{projectId}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID, ok := requirePathUUID(w, r, "projectId")
	if !ok {
		return
	}

	var req UpdateProjectRequest
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

	project, err := h.projectStore.GetByID(r.Context(), projectID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}

	if err := project.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project data: "+err.Error())
		return
	}

	if err := h.projectStore.Update(r.Context(), project); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string          `json:"message"`
		Project *domain.Project `json:"project"`
	}{
		Message: "Project updated successfully",
		Project: project,
	})
}

// AddMember handles POST /api/projects/{projectId}/members.
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	projectID, ok := requirePathUUID(w, r, "projectId")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = domain.MemberRoleMember
	}

	// The project must exist before a membership row can point at it.
	if _, err := h.projectStore.GetByID(r.Context(), projectID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	member, err := domain.NewProjectMember(projectID, req.UserID, role)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if err := h.projectStore.AddMember(r.Context(), member); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, struct {
		Message string                `json:"message"`
		Member  *domain.ProjectMember `json:"member"`
	}{
		Message: "Member added successfully",
		Member:  member,
	})
}

// RemoveMember handles DELETE /api/projects/{projectId}/members/{userId}.
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	projectID, ok := requirePathUUID(w, r, "projectId")
	if !ok {
		return
	}
	userID, ok := requirePathUUID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.projectStore.RemoveMember(r.Context(), projectID, userID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "Member removed successfully"})
}

// ListMembers handles GET /api/projects/{projectId}/members.
func (h *ProjectHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	projectID, ok := requirePathUUID(w, r, "projectId")
	if !ok {
		return
	}

	if _, err := h.projectStore.GetByID(r.Context(), projectID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	members, err := h.projectStore.ListMembers(r.Context(), projectID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Members []*domain.ProjectMember `json:"members"`
	}{Members: members})
}

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/tracker-api/internal/api"
	apiMiddleware "github.com/phrazzld/tracker-api/internal/api/middleware"
	"github.com/phrazzld/tracker-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	userHandler := api.NewUserHandler(app.userStore)
	projectHandler := api.NewProjectHandler(app.db, app.projectStore)
	taskHandler := api.NewTaskHandler(app.taskService)
	subtaskHandler := api.NewSubtaskHandler(app.subtaskStore, app.taskStore)
	notificationHandler := api.NewNotificationHandler(app.notificationStore)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/profile", authHandler.Profile)

			// Users
			r.Get("/users/{userId}", userHandler.Get)
			r.Put("/users/{userId}", userHandler.UpdateProfile)
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAdmin)
				r.Get("/users", userHandler.List)
				r.Put("/users/{userId}/role", userHandler.UpdateRole)
				r.Put("/users/{userId}/deactivate", userHandler.Deactivate)
				r.Put("/users/{userId}/reactivate", userHandler.Reactivate)
			})

			// Projects
			r.Post("/projects", projectHandler.Create)
			r.With(authMiddleware.RequireAdmin).Get("/projects", projectHandler.List)
			r.Get("/projects/my-projects", projectHandler.ListMine)
			r.Get("/projects/{projectId}", projectHandler.Get)
			r.Put("/projects/{projectId}", projectHandler.Update)
			r.Post("/projects/{projectId}/members", projectHandler.AddMember)
			r.Get("/projects/{projectId}/members", projectHandler.ListMembers)
			r.Delete("/projects/{projectId}/members/{userId}", projectHandler.RemoveMember)

			// Tasks
			r.Post("/tasks/projects/{projectId}", taskHandler.Create)
			r.Get("/tasks/projects/{projectId}", taskHandler.ListByProject)
			r.Get("/tasks/my-tasks", taskHandler.ListMine)
			r.Get("/tasks/{taskId}", taskHandler.Get)
			r.Put("/tasks/{taskId}", taskHandler.Update)
			r.Post("/tasks/{taskId}/observers", taskHandler.AddObserver)
			r.Get("/tasks/{taskId}/observers", taskHandler.ListObservers)
			r.Delete("/tasks/{taskId}/observers/{userId}", taskHandler.RemoveObserver)
			r.Get("/tasks/{taskId}/activity-logs", taskHandler.ActivityLog)

			// Subtasks
			r.Post("/subtasks/tasks/{taskId}", subtaskHandler.Create)
			r.Get("/subtasks/tasks/{taskId}", subtaskHandler.ListByTask)
			r.Get("/subtasks/{subtaskId}", subtaskHandler.Get)
			r.Put("/subtasks/{subtaskId}", subtaskHandler.Update)
			r.Delete("/subtasks/{subtaskId}", subtaskHandler.Delete)

			// Notifications
			r.Get("/notifications", notificationHandler.List)
			r.Get("/notifications/unread/count", notificationHandler.UnreadCount)
			r.Put("/notifications/read-all", notificationHandler.MarkAllRead)
			r.Get("/notifications/{notificationId}", notificationHandler.Get)
			r.Put("/notifications/{notificationId}/read", notificationHandler.MarkRead)
			r.Delete("/notifications/{notificationId}", notificationHandler.Delete)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, struct {
			Message string `json:"message"`
		}{Message: "Server is healthy"})
	})

	return r
}

package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/giulianni/client-portal/internal/audit"
	"github.com/giulianni/client-portal/internal/auth"
	"github.com/giulianni/client-portal/internal/cases"
	"github.com/giulianni/client-portal/internal/document"
	"github.com/giulianni/client-portal/internal/lifecycle"
	"github.com/giulianni/client-portal/internal/message"
	"github.com/giulianni/client-portal/internal/notification"
	"github.com/giulianni/client-portal/internal/rbac"
	"github.com/giulianni/client-portal/internal/transport/middleware"
	"github.com/giulianni/client-portal/internal/transport/swagger"
	"github.com/giulianni/client-portal/internal/user"
)

type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Cases        *cases.Handler
	Document     *document.Handler
	Message      *message.Handler
	Notification *notification.Handler
	Lifecycle    *lifecycle.Handler
	Audit        *audit.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// Everything below requires an authenticated principal.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Auth.Me)

			pr.Route("/users", func(ur chi.Router) {
				ur.Group(func(vr chi.Router) {
					vr.Use(middleware.RequirePermissions(rbac.PermViewUsers, rbac.PermManageUsers))
					vr.Get("/", h.User.ListUsers)
					vr.Get("/{id}", h.User.GetUser)
				})
				ur.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(rbac.PermManageUsers))
					mr.Post("/", h.User.CreateUser)
					mr.Patch("/{id}/role", h.User.ChangeRole)
					mr.Patch("/{id}/status", h.User.SetActive)
					mr.Delete("/{id}", h.Lifecycle.DeletePrincipal)
				})
			})

			pr.Route("/cases", func(cr chi.Router) {
				// Case-scoped reads are ownership-checked in the services so
				// clients reach their own matters without staff permissions.
				cr.Get("/", h.Cases.ListCases)
				cr.Get("/{id}", h.Cases.GetCase)
				cr.Get("/{id}/documents", h.Document.ListByCase)
				cr.Get("/{id}/messages", h.Message.ListByCase)
				cr.Post("/{id}/messages", h.Message.Send)

				cr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(rbac.PermCreateCase))
					mr.Post("/", h.Cases.CreateCase)
				})
				cr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(rbac.PermEditCase))
					mr.Patch("/{id}/status", h.Cases.UpdateStatus)
				})
				cr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(rbac.PermDeleteCase))
					mr.Delete("/{id}", h.Lifecycle.DeleteCase)
				})
				cr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(rbac.PermAssignCase))
					mr.Post("/{id}/assignments", h.Cases.AssignStaff)
					mr.Delete("/{id}/assignments/{assignmentID}", h.Cases.UnassignStaff)
				})
				cr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(rbac.PermViewCases))
					mr.Get("/{id}/assignments", h.Cases.ListAssignments)
				})
				cr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(rbac.PermUploadDocument))
					mr.Post("/{id}/documents", h.Document.Upload)
				})
			})

			pr.Route("/documents", func(dr chi.Router) {
				dr.Get("/{id}/download", h.Document.Download)

				dr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(rbac.PermReviewDocument))
					mr.Patch("/{id}/review", h.Document.Review)
				})
				dr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(rbac.PermDeleteDocument))
					mr.Delete("/{id}", h.Document.Delete)
				})
			})

			pr.Patch("/messages/{messageID}/read", h.Message.MarkRead)

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notification.ListMine)
				nr.Patch("/{id}/read", h.Notification.MarkRead)

				nr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(rbac.PermSendNotifications))
					mr.Post("/", h.Notification.Create)
				})
			})

			pr.Route("/audit-logs", func(ar chi.Router) {
				ar.Use(middleware.RequirePermissions(rbac.PermViewAuditLogs))
				ar.Get("/", h.Audit.ListLogs)
				ar.Get("/export", h.Audit.ExportLogs)
			})
		})
	})
}

// Package server assembles the HTTP surface: services, handlers, middleware
// chain, and the route table.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/surajorg0/jira-tracker-backend/internal/auth"
	"github.com/surajorg0/jira-tracker-backend/internal/config"
	"github.com/surajorg0/jira-tracker-backend/internal/gate"
	"github.com/surajorg0/jira-tracker-backend/internal/handlers"
	"github.com/surajorg0/jira-tracker-backend/internal/httpx"
	"github.com/surajorg0/jira-tracker-backend/internal/models"
	"github.com/surajorg0/jira-tracker-backend/internal/policy"
	"github.com/surajorg0/jira-tracker-backend/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares
// applied.
func New(db *gorm.DB, cfg config.Config) (http.Handler, error) {
	blobs, err := services.NewBlobStore(cfg.UploadsDir)
	if err != nil {
		return nil, err
	}

	authn := auth.New(cfg.TokenSecret, cfg.TokenExpiry, func(ctx context.Context, uid uint) (*models.User, error) {
		var user models.User
		if err := db.WithContext(ctx).First(&user, uid).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return &user, nil
	})

	g := policy.NewAuthGate()
	users := services.NewUserService(db, blobs)
	projects := services.NewProjectService(db, g, blobs)
	bugs := services.NewBugService(db, g, blobs)
	tasks := services.NewTaskService(db, g)
	files := services.NewFileService(db, g, blobs)

	authH := handlers.NewAuthHandler(users, authn)
	userH := handlers.NewUserHandler(users)
	projectH := handlers.NewProjectHandler(projects)
	bugH := handlers.NewBugHandler(bugs)
	taskH := handlers.NewTaskHandler(tasks)
	fileH := handlers.NewFileHandler(files)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))

	mux.HandleFunc("POST /api/auth/register", authH.Register)
	mux.HandleFunc("POST /api/auth/login", authH.Login)
	mux.Handle("GET /api/auth/me", authed(http.HandlerFunc(authH.Me)))

	// Admin-only account management.
	mux.Handle("GET /api/users", admin(http.HandlerFunc(userH.List)))
	mux.Handle("GET /api/users/pending", admin(http.HandlerFunc(userH.ListPending)))
	mux.Handle("PUT /api/users/{id}/approve", admin(http.HandlerFunc(userH.Approve)))
	mux.Handle("PUT /api/users/{id}/reject", admin(http.HandlerFunc(userH.Reject)))

	mux.Handle("GET /api/users/{id}", approved(http.HandlerFunc(userH.Get)))
	mux.Handle("PUT /api/users/{id}", approved(http.HandlerFunc(userH.Update)))
	mux.Handle("POST /api/users/{id}/profile-picture", approved(http.HandlerFunc(userH.SetProfilePicture)))

	// Creates carry an extra role-permission pre-check; ownership rules run in
	// the services once the resource is loaded.
	mux.Handle("POST /api/projects", approved(g.RequirePermission(policy.ResourceProject, gate.ActionCreate)(http.HandlerFunc(projectH.Create))))
	mux.Handle("GET /api/projects", approved(http.HandlerFunc(projectH.List)))
	mux.Handle("GET /api/projects/{id}", approved(http.HandlerFunc(projectH.Get)))
	mux.Handle("PUT /api/projects/{id}", approved(http.HandlerFunc(projectH.Update)))
	mux.Handle("DELETE /api/projects/{id}", approved(http.HandlerFunc(projectH.Delete)))

	mux.Handle("POST /api/bugs", approved(g.RequirePermission(policy.ResourceBug, gate.ActionCreate)(http.HandlerFunc(bugH.Create))))
	mux.Handle("GET /api/bugs", approved(http.HandlerFunc(bugH.List)))
	mux.Handle("GET /api/bugs/{id}", approved(http.HandlerFunc(bugH.Get)))
	mux.Handle("PUT /api/bugs/{id}", approved(http.HandlerFunc(bugH.Update)))
	mux.Handle("DELETE /api/bugs/{id}", approved(http.HandlerFunc(bugH.Delete)))

	mux.Handle("POST /api/tasks", approved(g.RequirePermission(policy.ResourceTask, gate.ActionCreate)(http.HandlerFunc(taskH.Create))))
	mux.Handle("GET /api/tasks", approved(http.HandlerFunc(taskH.List)))
	mux.Handle("GET /api/tasks/me", approved(http.HandlerFunc(taskH.ListMine)))
	mux.Handle("GET /api/tasks/{id}", approved(http.HandlerFunc(taskH.Get)))
	mux.Handle("PUT /api/tasks/{id}", approved(http.HandlerFunc(taskH.Update)))
	mux.Handle("PUT /api/tasks/{id}/status", approved(http.HandlerFunc(taskH.UpdateStatus)))
	mux.Handle("DELETE /api/tasks/{id}", approved(http.HandlerFunc(taskH.Delete)))

	mux.Handle("POST /api/files/upload/{type}/{id}", approved(http.HandlerFunc(fileH.Upload)))
	mux.Handle("GET /api/files/{id}", approved(http.HandlerFunc(fileH.Get)))
	mux.Handle("DELETE /api/files/{id}", approved(http.HandlerFunc(fileH.Delete)))

	return withLogging(withRecover(authn.Middleware(mux))), nil
}

func authed(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}

func approved(next http.Handler) http.Handler {
	return auth.RequireAuth(auth.RequireApproved(next))
}

func admin(next http.Handler) http.Handler {
	return auth.RequireAuth(policy.RequireAdmin(next))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

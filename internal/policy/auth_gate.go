package policy

import (
	"context"
	"errors"
	"net/http"

	"github.com/surajorg0/jira-tracker-backend/internal/apperr"
	"github.com/surajorg0/jira-tracker-backend/internal/auth"
	"github.com/surajorg0/jira-tracker-backend/internal/gate"
	"github.com/surajorg0/jira-tracker-backend/internal/httpx"
	"github.com/surajorg0/jira-tracker-backend/internal/models"
)

// AuthGate is the central authorization checkpoint: the gate configured with
// the tracker's role profiles and resource policies. It is a pure decision
// layer over actor + resource snapshots; it never touches the store.
type AuthGate struct {
	gate *gate.Gate[Actor]
}

// NewAuthGate wires the role profiles and every resource policy.
func NewAuthGate() *AuthGate {
	g := gate.New(roleResolver())
	g.Register(ResourceProject, ProjectPolicy{})
	g.Register(ResourceBug, BugPolicy{})
	g.Register(ResourceTask, TaskPolicy{})
	g.Register(ResourceFile, FilePolicy{})
	return &AuthGate{gate: g}
}

// Authorize decides whether actor may perform action on resource. A denial is
// apperr.ErrForbidden; callers map visibility rules (e.g. list filters) on
// top of it.
func (ag *AuthGate) Authorize(ctx context.Context, actor *models.User, action gate.Action, resourceType string, resource any) error {
	err := ag.gate.Authorize(ctx, ActorFor(actor), action, resourceType, resource)
	if errors.Is(err, gate.ErrUnauthorized) {
		return apperr.ErrForbidden
	}
	return err
}

// Can is a convenience wrapper returning bool instead of error.
func (ag *AuthGate) Can(ctx context.Context, actor *models.User, action gate.Action, resourceType string, resource any) bool {
	return ag.Authorize(ctx, actor, action, resourceType, resource) == nil
}

// RequirePermission returns middleware that checks the profile permission
// before the handler runs. Ownership checks still happen in the service once
// the resource is loaded.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, _ := auth.UserFromContext(r.Context())
			if !ag.gate.CanProfile(r.Context(), ActorFor(actor), action, resourceType) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns middleware that only passes admin actors.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.UserFromContext(r.Context())
		if !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if actor.Role != models.RoleAdmin {
			httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

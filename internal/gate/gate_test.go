package gate_test

import (
	"context"
	"testing"

	"github.com/surajorg0/jira-tracker-backend/internal/gate"
)

// subject is a minimal comparable user type for tests.
type subject struct {
	ID   uint
	Role string
}

func resolver(profiles map[string]gate.Profile) gate.ProfileResolver[subject] {
	return gate.ResolverFunc[subject](func(_ context.Context, s subject) (gate.Profile, error) {
		return profiles[s.Role], nil
	})
}

type mockPolicy struct{ allowAll bool }

func (p *mockPolicy) Can(_ context.Context, _ subject, _ gate.Action, _ any) bool {
	return p.allowAll
}

func TestGate_Authorize_ZeroSubject(t *testing.T) {
	g := gate.New(resolver(map[string]gate.Profile{
		"": gate.NewStaticProfile("anonymous", gate.PermissionSuperAdmin),
	}))
	err := g.Authorize(context.Background(), subject{}, gate.ActionView, "project", nil)
	if err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_Authorize_NoProfile(t *testing.T) {
	g := gate.New(resolver(map[string]gate.Profile{}))
	err := g.Authorize(context.Background(), subject{ID: 1, Role: "ghost"}, gate.ActionView, "project", nil)
	if err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_Authorize_ProfilePermission(t *testing.T) {
	g := gate.New(resolver(map[string]gate.Profile{
		"reader": gate.NewStaticProfile("reader", gate.NewPermission("project", gate.ActionView)),
	}))

	if err := g.Authorize(context.Background(), subject{ID: 1, Role: "reader"}, gate.ActionView, "project", nil); err != nil {
		t.Errorf("expected view allowed, got %v", err)
	}
	if err := g.Authorize(context.Background(), subject{ID: 1, Role: "reader"}, gate.ActionDelete, "project", nil); err != gate.ErrUnauthorized {
		t.Errorf("expected delete denied, got %v", err)
	}
}

func TestGate_Authorize_PolicyWins(t *testing.T) {
	g := gate.New(resolver(map[string]gate.Profile{
		"reader": gate.NewStaticProfile("reader", gate.NewPermission("project", gate.ActionView)),
	}))
	g.Register("project", &mockPolicy{allowAll: false})

	// Profile allows view, but the registered policy denies the concrete resource.
	err := g.Authorize(context.Background(), subject{ID: 1, Role: "reader"}, gate.ActionView, "project", struct{}{})
	if err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	// Nil resource skips the policy: profile check alone decides.
	if err := g.Authorize(context.Background(), subject{ID: 1, Role: "reader"}, gate.ActionView, "project", nil); err != nil {
		t.Errorf("expected nil resource allowed, got %v", err)
	}
}

func TestGate_Can(t *testing.T) {
	g := gate.New(resolver(map[string]gate.Profile{
		"admin": gate.NewStaticProfile("admin", gate.PermissionSuperAdmin),
	}))
	g.Register("bug", &mockPolicy{allowAll: true})

	if !g.Can(context.Background(), subject{ID: 1, Role: "admin"}, gate.ActionDelete, "bug", struct{}{}) {
		t.Error("expected Can to return true for superadmin")
	}
	if g.Can(context.Background(), subject{ID: 2, Role: "nobody"}, gate.ActionDelete, "bug", struct{}{}) {
		t.Error("expected Can to return false without a profile")
	}
}

func TestGate_CanProfile(t *testing.T) {
	g := gate.New(resolver(map[string]gate.Profile{
		"lead": gate.NewStaticProfile("lead", gate.NewPermission("task", gate.WildcardAll)),
	}))
	// Policy would deny; CanProfile must not consult it.
	g.Register("task", &mockPolicy{allowAll: false})

	if !g.CanProfile(context.Background(), subject{ID: 1, Role: "lead"}, gate.ActionCreate, "task") {
		t.Error("expected profile-only check to pass")
	}
	if g.CanProfile(context.Background(), subject{}, gate.ActionCreate, "task") {
		t.Error("expected zero subject denied")
	}
}

func TestPermission_Matches(t *testing.T) {
	cases := []struct {
		held, requested gate.Permission
		want            bool
	}{
		{"*:*", "project:delete", true},
		{"project:*", "project:create", true},
		{"project:*", "bug:create", false},
		{"bug:view", "bug:view", true},
		{"bug:view", "bug:update", false},
	}
	for _, c := range cases {
		if got := c.held.Matches(c.requested); got != c.want {
			t.Errorf("%s matches %s = %v, want %v", c.held, c.requested, got, c.want)
		}
	}
}

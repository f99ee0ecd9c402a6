package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/surajorg0/jira-tracker-backend/internal/models"
)

func testAuthenticator(users map[uint]*models.User) *Authenticator {
	return New("testsecret", time.Hour, func(_ context.Context, uid uint) (*models.User, error) {
		return users[uid], nil
	})
}

func TestTokenRoundTrip(t *testing.T) {
	a := testAuthenticator(nil)
	user := &models.User{ID: 42, Role: models.RoleTeamLead}

	claims, ok := a.Parse(a.Token(user))
	if !ok {
		t.Fatal("expected token to parse")
	}
	if claims.UserID != 42 || claims.Role != models.RoleTeamLead {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParse_RejectsTampering(t *testing.T) {
	a := testAuthenticator(nil)
	token := a.Token(&models.User{ID: 7, Role: models.RoleUser})

	// Promote role in the payload without re-signing.
	tampered := "7." + models.RoleAdmin + token[len("7."+models.RoleUser):]
	if _, ok := a.Parse(tampered); ok {
		t.Error("expected tampered token to be rejected")
	}
	if _, ok := a.Parse("garbage"); ok {
		t.Error("expected malformed token to be rejected")
	}

	other := New("othersecret", time.Hour, nil)
	if _, ok := other.Parse(token); ok {
		t.Error("expected token signed with a different secret to be rejected")
	}
}

func TestParse_RejectsExpired(t *testing.T) {
	a := testAuthenticator(nil)
	token := a.sign(1, models.RoleUser, time.Now().Add(-time.Minute))
	if _, ok := a.Parse(token); ok {
		t.Error("expected expired token to be rejected")
	}
}

func TestParse_RejectsUnknownRole(t *testing.T) {
	a := testAuthenticator(nil)
	token := a.sign(5, "superuser", time.Now().Add(time.Hour))
	if _, ok := a.Parse(token); ok {
		t.Error("expected token with unknown role claim to be rejected")
	}
}

func TestMiddleware_StoreErrorIsInternal(t *testing.T) {
	a := New("testsecret", time.Hour, func(_ context.Context, _ uint) (*models.User, error) {
		return nil, errors.New("connection reset")
	})
	token := a.Token(&models.User{ID: 4, Role: models.RoleUser})

	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on store failure, got %d", w.Code)
	}
}

func TestMiddleware_AttachesUser(t *testing.T) {
	user := &models.User{ID: 3, Role: models.RoleUser, IsApproved: true}
	a := testAuthenticator(map[uint]*models.User{3: user})

	var got *models.User
	h := a.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+a.Token(user))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got == nil || got.ID != 3 {
		t.Fatalf("expected user 3 in context, got %+v", got)
	}

	// Legacy header works too.
	got = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-auth-token", a.Token(user))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got == nil || got.ID != 3 {
		t.Fatalf("expected user 3 via x-auth-token, got %+v", got)
	}
}

func TestMiddleware_DeletedUserStaysAnonymous(t *testing.T) {
	a := testAuthenticator(map[uint]*models.User{})
	token := a.Token(&models.User{ID: 9, Role: models.RoleUser})

	h := a.Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for deleted user, got %d", w.Code)
	}
}

func TestRequireApproved(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		name string
		user *models.User
		want int
	}{
		{"approved user", &models.User{ID: 1, Role: models.RoleUser, IsApproved: true}, http.StatusOK},
		{"pending user", &models.User{ID: 2, Role: models.RoleUser}, http.StatusForbidden},
		{"admin always approved", &models.User{ID: 3, Role: models.RoleAdmin}, http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithUser(req.Context(), c.user))
			w := httptest.NewRecorder()
			RequireApproved(ok).ServeHTTP(w, req)
			if w.Code != c.want {
				t.Errorf("expected %d, got %d", c.want, w.Code)
			}
		})
	}

	// No user at all -> 401.
	w := httptest.NewRecorder()
	RequireApproved(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without user, got %d", w.Code)
	}
}

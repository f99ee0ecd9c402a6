// Package auth issues and verifies the signed bearer tokens that carry a
// user's identity and role, and provides the HTTP middleware that resolves a
// request's token to a full user record in the request context.
//
// Token format: "<uid>.<role>.<expiry-unix>.<sig>" where sig is the
// base64url HMAC-SHA256 of the first three fields.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/surajorg0/jira-tracker-backend/internal/httpx"
	"github.com/surajorg0/jira-tracker-backend/internal/models"
)

type ctxKey string

const userCtxKey = ctxKey("user")

// Claims is the verified payload of a bearer token.
type Claims struct {
	UserID    uint
	Role      string
	ExpiresAt time.Time
}

// UserLoader resolves a token's user id to the stored user record. Returning
// (nil, nil) means the user no longer exists.
type UserLoader func(ctx context.Context, uid uint) (*models.User, error)

// Authenticator signs tokens and authenticates requests.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	load   UserLoader
}

func New(secret string, ttl time.Duration, load UserLoader) *Authenticator {
	return &Authenticator{secret: []byte(secret), ttl: ttl, load: load}
}

// Token signs a bearer token for the user, valid for the configured expiry.
func (a *Authenticator) Token(user *models.User) string {
	return a.sign(user.ID, user.Role, time.Now().Add(a.ttl))
}

func (a *Authenticator) sign(uid uint, role string, expires time.Time) string {
	payload := strconv.FormatUint(uint64(uid), 10) + "." + role + "." + strconv.FormatInt(expires.Unix(), 10)
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(payload))
	return payload + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Parse validates a token's signature and expiry and returns its claims.
func (a *Authenticator) Parse(token string) (Claims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return Claims{}, false
	}
	payload := parts[0] + "." + parts[1] + "." + parts[2]
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(payload))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(parts[3]), []byte(expected)) {
		return Claims{}, false
	}
	uid, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Claims{}, false
	}
	expUnix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Claims{}, false
	}
	expires := time.Unix(expUnix, 0)
	if time.Now().After(expires) {
		return Claims{}, false
	}
	if !models.ValidRole(parts[1]) {
		return Claims{}, false
	}
	return Claims{UserID: uint(uid), Role: parts[1], ExpiresAt: expires}, true
}

// bearerToken extracts the token from Authorization: Bearer or the legacy
// x-auth-token header.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.Header.Get("x-auth-token")
}

// WithUser stores the authenticated user in context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext extracts the authenticated user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*models.User)
	return u, ok && u != nil
}

// Middleware resolves a valid token to its user record and attaches it to the
// request context. Requests without a valid token pass through untouched;
// RequireAuth decides whether that matters. A store failure while loading the
// user is not an auth failure and surfaces as a 500.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if claims, ok := a.Parse(token); ok {
				user, err := a.load(r.Context(), claims.UserID)
				if err != nil {
					httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
					return
				}
				if user != nil {
					r = r.WithContext(WithUser(r.Context(), user))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without an authenticated user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireApproved rejects authenticated but not-yet-approved accounts.
// Admins always count as approved.
func RequireApproved(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if !user.IsApproved && user.Role != models.RoleAdmin {
			httpx.JSONError(w, http.StatusForbidden, "pending_approval", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

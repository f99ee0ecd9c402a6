package handlers

import (
	"net/http"

	"github.com/surajorg0/jira-tracker-backend/internal/auth"
	"github.com/surajorg0/jira-tracker-backend/internal/httpx"
	"github.com/surajorg0/jira-tracker-backend/internal/services"
)

type AuthHandler struct {
	users *services.UserService
	auth  *auth.Authenticator
}

func NewAuthHandler(users *services.UserService, a *auth.Authenticator) *AuthHandler {
	return &AuthHandler{users: users, auth: a}
}

// Register creates a pending account. A token is issued right away so the
// client can poll its own status, but approval-gated routes stay closed until
// an admin approves.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"token":   h.auth.Token(user),
		"user":    user,
		"message": "registration received, awaiting admin approval",
	})
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	identifier := in.Phone
	if identifier == "" {
		identifier = in.Email
	}
	user, err := h.users.Login(r.Context(), identifier, in.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"token": h.auth.Token(user),
		"user":  user,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

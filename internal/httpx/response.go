package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/surajorg0/jira-tracker-backend/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Error maps a service error onto the HTTP taxonomy. Unknown errors become an
// opaque 500 so store failures never leak internals.
func Error(w http.ResponseWriter, err error) {
	if v, ok := apperr.AsValidation(err); ok {
		JSONError(w, http.StatusBadRequest, "validation_error", v.Violations)
		return
	}
	switch {
	case errors.Is(err, apperr.ErrInvalidCredentials):
		JSONError(w, http.StatusBadRequest, "invalid_credentials", nil)
	case errors.Is(err, apperr.ErrPendingApproval):
		JSONError(w, http.StatusForbidden, "pending_approval", nil)
	case errors.Is(err, apperr.ErrForbidden):
		JSONError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, apperr.ErrNotFound):
		JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, apperr.ErrConflict):
		JSONError(w, http.StatusBadRequest, "conflict", nil)
	default:
		JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

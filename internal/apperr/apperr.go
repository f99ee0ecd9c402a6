// Package apperr defines the error taxonomy shared by services and handlers.
// Services return these; httpx maps them onto HTTP statuses. Denial errors
// carry only the taxonomy code, never which internal check tripped.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers both unknown identity and wrong password.
	ErrInvalidCredentials = errors.New("invalid_credentials")
	// ErrPendingApproval means credentials were correct but the account has
	// not been approved by an admin yet.
	ErrPendingApproval = errors.New("pending_approval")
	// ErrForbidden means the actor is authenticated but policy denies.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the resource, or a resource it references, is absent.
	ErrNotFound = errors.New("not_found")
	// ErrConflict means a unique field (email, phone) is already taken.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries per-field violations for a 400 response.
type ValidationError struct {
	Violations map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d violation(s)", len(e.Violations))
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

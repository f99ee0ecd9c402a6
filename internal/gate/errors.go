package gate

import "errors"

// ErrUnauthorized is returned by Gate.Authorize for any denied check.
var ErrUnauthorized = errors.New("unauthorized")

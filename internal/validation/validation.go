package validation

import (
	"slices"
	"strings"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MinLen(field, value string, min int, v Violations) {
	if len(value) < min {
		v[field] = "too_short"
	}
}

// Email does a cheap shape check; real verification is out of scope.
func Email(field, value string, v Violations) {
	at := strings.Index(value, "@")
	if at <= 0 || at == len(value)-1 || !strings.Contains(value[at:], ".") {
		v[field] = "invalid_email"
	}
}

// OneOf records a violation when value is set but not among allowed.
func OneOf(field, value string, allowed []string, v Violations) {
	if value != "" && !slices.Contains(allowed, value) {
		v[field] = "invalid_value"
	}
}

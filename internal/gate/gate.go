// Package gate is a small Gate/Policy authorization engine. A Gate combines
// role profiles (coarse "may this role ever do this" permissions) with
// per-resource policies (ownership and assignment checks). It has no
// dependency on domain models; the policy package wires it to the tracker's
// entities.
//
// The subject type is generic: Gate[*Actor], Gate[uint], and so on.
package gate

import "context"

// Action describes the kind of operation a subject wants to perform.
type Action string

const (
	ActionView         Action = "view"
	ActionList         Action = "list"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionUpdateStatus Action = "update-status"
	ActionDelete       Action = "delete"
)

// Policy defines resource-specific authorization rules for one resource type.
// For list/create the resource may be nil (subject-only check).
type Policy[U any] interface {
	Can(ctx context.Context, subject U, action Action, resource any) bool
}

// Gate is the central authorization checkpoint. Authorization runs in two
// steps: the subject's profile must hold the resource:action permission, and
// if a policy is registered for the resource type and a resource is given,
// the policy must also allow it. First failing step wins; default is deny.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// New creates a gate using the given profile resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver, policies: make(map[string]Policy[U])}
}

// Register adds a resource-specific policy for ownership checks.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns nil if subject may perform action on resource,
// ErrUnauthorized otherwise. A zero-value subject is always denied.
func (g *Gate[U]) Authorize(ctx context.Context, subject U, action Action, resourceType string, resource any) error {
	var zero U
	if subject == zero {
		return ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil || profile == nil {
		return ErrUnauthorized
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrUnauthorized
	}
	if resource != nil {
		if policy, ok := g.policies[resourceType]; ok {
			if !policy.Can(ctx, subject, action, resource) {
				return ErrUnauthorized
			}
		}
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, subject U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, subject, action, resourceType, resource) == nil
}

// CanProfile checks only the profile permission, skipping resource policies.
// Useful before a specific resource has been loaded.
func (g *Gate[U]) CanProfile(ctx context.Context, subject U, action Action, resourceType string) bool {
	var zero U
	if subject == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(NewPermission(resourceType, action))
}

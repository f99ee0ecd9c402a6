package gate

import "context"

// Profile is a named set of permissions (a role).
type Profile interface {
	Name() string
	HasPermission(permission Permission) bool
}

// ProfileResolver resolves a subject to its profile.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, subject U) (Profile, error)
}

// StaticProfile is an in-memory profile implementation.
type StaticProfile struct {
	name        string
	permissions []Permission
}

// NewStaticProfile creates a profile with the given permissions.
func NewStaticProfile(name string, permissions ...Permission) *StaticProfile {
	return &StaticProfile{name: name, permissions: permissions}
}

func (p *StaticProfile) Name() string { return p.name }

// HasPermission checks the requested permission against the profile,
// honoring wildcards.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	for _, perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// ResolverFunc adapts a function to the ProfileResolver interface.
type ResolverFunc[U any] func(ctx context.Context, subject U) (Profile, error)

func (f ResolverFunc[U]) Resolve(ctx context.Context, subject U) (Profile, error) {
	return f(ctx, subject)
}

package policy

import "github.com/surajorg0/jira-tracker-backend/internal/models"

// Actor is the authorization subject: the authenticated user's identity and
// role, snapshotted at request time. The zero Actor is anonymous and is
// denied everything by the gate.
type Actor struct {
	ID   uint
	Role string
}

// ActorFor builds the authorization subject from a stored user.
func ActorFor(u *models.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{ID: u.ID, Role: u.Role}
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// IsManager reports whether the actor holds the elevated manager capability
// (admin or teamlead).
func (a Actor) IsManager() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleTeamLead
}

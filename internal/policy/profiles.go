package policy

import (
	"context"

	"github.com/surajorg0/jira-tracker-backend/internal/gate"
	"github.com/surajorg0/jira-tracker-backend/internal/models"
)

// Resource type names registered with the gate.
const (
	ResourceProject = "project"
	ResourceBug     = "bug"
	ResourceTask    = "task"
	ResourceFile    = "file"
)

// Role profiles. These are the coarse, role-rank permissions; per-resource
// policies refine them with ownership and assignment rules. Role-based allow
// is always checked before ownership-based allow.
var roleProfiles = map[string]gate.Profile{
	models.RoleAdmin: gate.NewStaticProfile(models.RoleAdmin, gate.PermissionSuperAdmin),
	models.RoleTeamLead: gate.NewStaticProfile(models.RoleTeamLead,
		gate.NewPermission(ResourceProject, gate.WildcardAll),
		gate.NewPermission(ResourceBug, gate.WildcardAll),
		gate.NewPermission(ResourceTask, gate.WildcardAll),
		gate.NewPermission(ResourceFile, gate.WildcardAll),
	),
	// Plain users never hold create permissions for projects/bugs/tasks.
	// Delete is held only for bugs (narrowed to the reporter by BugPolicy)
	// and files (narrowed to "own parent or uploader" by FilePolicy).
	models.RoleUser: gate.NewStaticProfile(models.RoleUser,
		gate.NewPermission(ResourceProject, gate.ActionView),
		gate.NewPermission(ResourceProject, gate.ActionList),
		gate.NewPermission(ResourceProject, gate.ActionUpdate),
		gate.NewPermission(ResourceBug, gate.ActionView),
		gate.NewPermission(ResourceBug, gate.ActionList),
		gate.NewPermission(ResourceBug, gate.ActionUpdate),
		gate.NewPermission(ResourceBug, gate.ActionDelete),
		gate.NewPermission(ResourceTask, gate.ActionView),
		gate.NewPermission(ResourceTask, gate.ActionList),
		gate.NewPermission(ResourceTask, gate.ActionUpdate),
		gate.NewPermission(ResourceTask, gate.ActionUpdateStatus),
		gate.NewPermission(ResourceFile, gate.ActionView),
		gate.NewPermission(ResourceFile, gate.ActionCreate),
		gate.NewPermission(ResourceFile, gate.ActionDelete),
	),
}

// roleResolver maps an actor to its role profile. Unknown roles resolve to
// no profile, which the gate treats as deny-all.
func roleResolver() gate.ProfileResolver[Actor] {
	return gate.ResolverFunc[Actor](func(_ context.Context, a Actor) (gate.Profile, error) {
		return roleProfiles[a.Role], nil
	})
}

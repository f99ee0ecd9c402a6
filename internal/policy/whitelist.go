package policy

import "github.com/surajorg0/jira-tracker-backend/internal/models"

// Per-role update field whitelists. A plain user who is allowed to update a
// resource at all may only flip its status; every other submitted field is
// dropped before merging, not rejected.
var managerFields = map[string][]string{
	ResourceProject: {"title", "description", "assignedToId", "status"},
	ResourceBug:     {"title", "description", "assignedToId", "status", "severity"},
	ResourceTask:    {"title", "description", "assignedToId", "priority", "dueDate", "status"},
}

var plainUserFields = []string{"status"}

// UpdatableFields returns the fields role may modify on resourceType.
func UpdatableFields(role, resourceType string) []string {
	if role == models.RoleAdmin || role == models.RoleTeamLead {
		return managerFields[resourceType]
	}
	return plainUserFields
}

// FilterFields keeps only the whitelisted entries of a pending update.
func FilterFields(role, resourceType string, fields map[string]any) map[string]any {
	allowed := UpdatableFields(role, resourceType)
	out := make(map[string]any, len(fields))
	for _, key := range allowed {
		if v, ok := fields[key]; ok {
			out[key] = v
		}
	}
	return out
}

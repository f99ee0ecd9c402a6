package policy

import (
	"context"

	"github.com/surajorg0/jira-tracker-backend/internal/gate"
	"github.com/surajorg0/jira-tracker-backend/internal/models"
)

// ProjectPolicy refines project access with assignment and creator rules.
type ProjectPolicy struct{}

func (ProjectPolicy) Can(_ context.Context, actor Actor, action gate.Action, resource any) bool {
	p, ok := resource.(*models.Project)
	if !ok {
		return false
	}
	switch action {
	case gate.ActionView, gate.ActionList:
		return actor.IsManager() || p.AssignedToID == actor.ID
	case gate.ActionCreate:
		return actor.IsManager()
	case gate.ActionUpdate:
		return actor.IsManager() || p.AssignedToID == actor.ID
	case gate.ActionDelete:
		// Teamlead is not delete-authorized for projects it didn't create.
		return actor.IsAdmin() || p.CreatedByID == actor.ID
	}
	return false
}

// BugPolicy refines bug access; the reporter can also read and delete.
type BugPolicy struct{}

func (BugPolicy) Can(_ context.Context, actor Actor, action gate.Action, resource any) bool {
	b, ok := resource.(*models.Bug)
	if !ok {
		return false
	}
	switch action {
	case gate.ActionView, gate.ActionList:
		return actor.IsManager() || b.AssignedToID == actor.ID || b.ReportedByID == actor.ID
	case gate.ActionCreate:
		return actor.IsManager()
	case gate.ActionUpdate:
		return actor.IsManager() || b.AssignedToID == actor.ID
	case gate.ActionDelete:
		// Only admin or the original reporter, never a bystander teamlead.
		return actor.IsAdmin() || b.ReportedByID == actor.ID
	}
	return false
}

// TaskPolicy refines task access with assignee and assigner rules.
type TaskPolicy struct{}

func (TaskPolicy) Can(_ context.Context, actor Actor, action gate.Action, resource any) bool {
	t, ok := resource.(*models.Task)
	if !ok {
		return false
	}
	switch action {
	case gate.ActionView, gate.ActionList:
		return actor.IsManager() || t.AssignedToID == actor.ID
	case gate.ActionCreate:
		return actor.IsManager()
	case gate.ActionUpdate:
		return actor.IsManager() || t.AssignedByID == actor.ID || t.AssignedToID == actor.ID
	case gate.ActionUpdateStatus:
		return actor.IsManager() || t.AssignedByID == actor.ID || t.AssignedToID == actor.ID
	case gate.ActionDelete:
		return actor.IsManager() || t.AssignedByID == actor.ID
	}
	return false
}

// FileContext is the resource snapshot handed to FilePolicy. File fields are
// zero when authorizing a fresh upload; parent fields always come from the
// project or bug the file attaches to.
type FileContext struct {
	UploadedByID       uint
	ParentAssignedToID uint
	// ParentReportedByID is set only when the parent is a bug.
	ParentReportedByID uint
}

// FileContextFor builds the policy snapshot for a file and its parent.
func FileContextFor(f *models.File, project *models.Project, bug *models.Bug) FileContext {
	fc := FileContext{}
	if f != nil {
		fc.UploadedByID = f.UploadedByID
	}
	if project != nil {
		fc.ParentAssignedToID = project.AssignedToID
	}
	if bug != nil {
		fc.ParentAssignedToID = bug.AssignedToID
		fc.ParentReportedByID = bug.ReportedByID
	}
	return fc
}

// FilePolicy gates uploads and attachment access through the parent
// project/bug assignment, plus the uploader for deletes.
type FilePolicy struct{}

func (FilePolicy) Can(_ context.Context, actor Actor, action gate.Action, resource any) bool {
	fc, ok := resource.(FileContext)
	if !ok {
		return false
	}
	switch action {
	case gate.ActionCreate:
		return actor.IsManager() || fc.ParentAssignedToID == actor.ID
	case gate.ActionView, gate.ActionList:
		return actor.IsManager() || fc.ParentAssignedToID == actor.ID ||
			(fc.ParentReportedByID != 0 && fc.ParentReportedByID == actor.ID)
	case gate.ActionDelete:
		return actor.IsManager() || fc.ParentAssignedToID == actor.ID || fc.UploadedByID == actor.ID
	}
	return false
}

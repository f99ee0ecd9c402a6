package models

import "time"

// Bug statuses.
const (
	BugStatusPending    = "Pending"
	BugStatusInProgress = "In Progress"
	BugStatusCompleted  = "Completed"
)

// Bug severities.
const (
	BugSeverityLow      = "Low"
	BugSeverityMedium   = "Medium"
	BugSeverityHigh     = "High"
	BugSeverityCritical = "Critical"
)

type Bug struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Title              string    `gorm:"not null" json:"title"`
	Description        string    `gorm:"not null" json:"description"`
	RelatedToProjectID uint      `gorm:"not null;index" json:"relatedToProjectId"`
	RelatedToProject   Project   `gorm:"foreignKey:RelatedToProjectID" json:"relatedToProject"`
	ReportedByID       uint      `gorm:"not null;index" json:"reportedById"`
	ReportedBy         User      `gorm:"foreignKey:ReportedByID" json:"reportedBy"`
	AssignedToID       uint      `gorm:"not null;index" json:"assignedToId"`
	AssignedTo         User      `gorm:"foreignKey:AssignedToID" json:"assignedTo"`
	Status             string    `gorm:"not null;default:Pending" json:"status"`
	Severity           string    `gorm:"not null;default:Medium" json:"severity"`
	Attachments        []File    `gorm:"polymorphic:Ref;polymorphicValue:bug" json:"attachments"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ValidBugStatus reports whether s is a known bug status.
func ValidBugStatus(s string) bool {
	return s == BugStatusPending || s == BugStatusInProgress || s == BugStatusCompleted
}

// ValidBugSeverity reports whether s is a known bug severity.
func ValidBugSeverity(s string) bool {
	return s == BugSeverityLow || s == BugSeverityMedium || s == BugSeverityHigh || s == BugSeverityCritical
}

package models

import "time"

// Task statuses.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusDone       = "done"
)

// Task priorities.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

type Task struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `gorm:"not null" json:"description"`
	ProjectID    uint      `gorm:"not null;index" json:"projectId"`
	Project      Project   `gorm:"foreignKey:ProjectID" json:"project"`
	AssignedToID uint      `gorm:"not null;index" json:"assignedToId"`
	AssignedTo   User      `gorm:"foreignKey:AssignedToID" json:"assignedTo"`
	AssignedByID uint      `gorm:"not null;index" json:"assignedById"`
	AssignedBy   User      `gorm:"foreignKey:AssignedByID" json:"assignedBy"`
	Status       string    `gorm:"not null;default:todo" json:"status"`
	Priority     string    `gorm:"not null;default:medium" json:"priority"`
	DueDate      time.Time `gorm:"not null" json:"dueDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress || s == TaskStatusDone
}

// ValidTaskPriority reports whether p is a known task priority.
func ValidTaskPriority(p string) bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

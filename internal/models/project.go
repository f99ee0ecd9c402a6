package models

import "time"

// Project status is free-form; new projects start Pending.
const ProjectStatusDefault = "Pending"

type Project struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `gorm:"not null" json:"description"`
	CreatedByID  uint      `gorm:"not null;index" json:"createdById"`
	CreatedBy    User      `gorm:"foreignKey:CreatedByID" json:"createdBy"`
	AssignedToID uint      `gorm:"not null;index" json:"assignedToId"`
	AssignedTo   User      `gorm:"foreignKey:AssignedToID" json:"assignedTo"`
	Status       string    `gorm:"not null;default:Pending" json:"status"`
	Attachments  []File    `gorm:"polymorphic:Ref;polymorphicValue:project" json:"attachments"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

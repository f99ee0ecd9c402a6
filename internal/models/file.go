package models

import "time"

// RefType values for File. A file attaches to exactly one project or bug;
// services switch on RefType to resolve the parent.
const (
	RefTypeProject = "project"
	RefTypeBug     = "bug"
)

// File is an attachment record. FilePath points at the stored blob on disk;
// the parent project/bug lists the record in its Attachments.
type File struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FileName     string    `gorm:"not null" json:"fileName"`
	FilePath     string    `gorm:"not null" json:"filePath"`
	UploadedByID uint      `gorm:"not null;index" json:"uploadedById"`
	UploadedBy   User      `gorm:"foreignKey:UploadedByID" json:"uploadedBy"`
	RefType      string    `gorm:"not null;index:idx_file_ref" json:"refType"`
	RefID        uint      `gorm:"not null;index:idx_file_ref" json:"refId"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploadedAt"`
}

// ValidRefType reports whether t names an attachable parent type.
func ValidRefType(t string) bool {
	return t == RefTypeProject || t == RefTypeBug
}

package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/surajorg0/jira-tracker-backend/internal/apperr"
	"github.com/surajorg0/jira-tracker-backend/internal/gate"
	"github.com/surajorg0/jira-tracker-backend/internal/models"
	"github.com/surajorg0/jira-tracker-backend/internal/policy"
	"github.com/surajorg0/jira-tracker-backend/internal/validation"
)

// BugService is the bug resource manager.
type BugService struct {
	DB    *gorm.DB
	Gate  *policy.AuthGate
	Blobs *BlobStore
}

func NewBugService(db *gorm.DB, g *policy.AuthGate, blobs *BlobStore) *BugService {
	return &BugService{DB: db, Gate: g, Blobs: blobs}
}

type BugInput struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	RelatedToProjectID uint   `json:"relatedToProjectId"`
	AssignedToID       uint   `json:"assignedToId"`
	Severity           string `json:"severity"`
}

// Create requires the referenced project to exist; a missing project is
// NotFound, not a validation error.
func (s *BugService) Create(ctx context.Context, actor *models.User, in BugInput) (*models.Bug, error) {
	if err := s.Gate.Authorize(ctx, actor, gate.ActionCreate, policy.ResourceBug, nil); err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.Required("description", in.Description, v)
	if in.RelatedToProjectID == 0 {
		v["relatedToProjectId"] = "required"
	}
	if in.AssignedToID == 0 {
		v["assignedToId"] = "required"
	}
	if in.Severity != "" && !models.ValidBugSeverity(in.Severity) {
		v["severity"] = "invalid_value"
	}
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", in.RelatedToProjectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperr.ErrNotFound
	}

	severity := in.Severity
	if severity == "" {
		severity = models.BugSeverityMedium
	}
	bug := models.Bug{
		Title:              in.Title,
		Description:        in.Description,
		RelatedToProjectID: in.RelatedToProjectID,
		ReportedByID:       actor.ID,
		AssignedToID:       in.AssignedToID,
		Status:             models.BugStatusPending,
		Severity:           severity,
	}
	if err := s.DB.WithContext(ctx).Create(&bug).Error; err != nil {
		return nil, err
	}
	return s.load(ctx, bug.ID)
}

// List shows everything to managers; plain users see bugs they are assigned
// to or reported.
func (s *BugService) List(ctx context.Context, actor *models.User) ([]models.Bug, error) {
	if err := s.Gate.Authorize(ctx, actor, gate.ActionList, policy.ResourceBug, nil); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).
		Preload("ReportedBy").Preload("AssignedTo").Preload("RelatedToProject").Preload("Attachments").
		Order("created_at DESC")
	if !actor.IsManager() {
		q = q.Where("assigned_to_id = ? OR reported_by_id = ?", actor.ID, actor.ID)
	}
	var bugs []models.Bug
	err := q.Find(&bugs).Error
	return bugs, err
}

func (s *BugService) GetByID(ctx context.Context, actor *models.User, id uint) (*models.Bug, error) {
	bug, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionView, policy.ResourceBug, bug); err != nil {
		return nil, err
	}
	return bug, nil
}

type BugUpdate struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	AssignedToID *uint   `json:"assignedToId"`
	Status       *string `json:"status"`
	Severity     *string `json:"severity"`
}

func (u BugUpdate) fields() map[string]any {
	f := map[string]any{}
	if u.Title != nil {
		f["title"] = *u.Title
	}
	if u.Description != nil {
		f["description"] = *u.Description
	}
	if u.AssignedToID != nil {
		f["assignedToId"] = *u.AssignedToID
	}
	if u.Status != nil {
		f["status"] = *u.Status
	}
	if u.Severity != nil {
		f["severity"] = *u.Severity
	}
	return f
}

func (s *BugService) Update(ctx context.Context, actor *models.User, id uint, in BugUpdate) (*models.Bug, error) {
	bug, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionUpdate, policy.ResourceBug, bug); err != nil {
		return nil, err
	}

	v := validation.Violations{}
	if in.Status != nil && !models.ValidBugStatus(*in.Status) {
		v["status"] = "invalid_value"
	}
	if in.Severity != nil && !models.ValidBugSeverity(*in.Severity) {
		v["severity"] = "invalid_value"
	}
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}

	allowed := policy.FilterFields(actor.Role, policy.ResourceBug, in.fields())
	for key, val := range allowed {
		switch key {
		case "title":
			bug.Title = val.(string)
		case "description":
			bug.Description = val.(string)
		case "assignedToId":
			bug.AssignedToID = val.(uint)
		case "status":
			bug.Status = val.(string)
		case "severity":
			bug.Severity = val.(string)
		}
	}
	bug.UpdatedAt = time.Now()
	if err := s.DB.WithContext(ctx).Save(bug).Error; err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Delete cascades attached files (blobs then records) before removing the
// bug itself.
func (s *BugService) Delete(ctx context.Context, actor *models.User, id uint) error {
	bug, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionDelete, policy.ResourceBug, bug); err != nil {
		return err
	}
	if err := cascadeDeleteFiles(ctx, s.DB, s.Blobs, models.RefTypeBug, id); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(&models.Bug{}, id).Error
}

func (s *BugService) load(ctx context.Context, id uint) (*models.Bug, error) {
	var bug models.Bug
	err := s.DB.WithContext(ctx).
		Preload("ReportedBy").Preload("AssignedTo").Preload("RelatedToProject").Preload("Attachments").
		First(&bug, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &bug, nil
}

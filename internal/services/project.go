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

// ProjectService is the project resource manager. Every operation authorizes
// through the gate before touching the store.
type ProjectService struct {
	DB    *gorm.DB
	Gate  *policy.AuthGate
	Blobs *BlobStore
}

func NewProjectService(db *gorm.DB, g *policy.AuthGate, blobs *BlobStore) *ProjectService {
	return &ProjectService{DB: db, Gate: g, Blobs: blobs}
}

type ProjectInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	AssignedToID uint   `json:"assignedToId"`
}

func (s *ProjectService) Create(ctx context.Context, actor *models.User, in ProjectInput) (*models.Project, error) {
	if err := s.Gate.Authorize(ctx, actor, gate.ActionCreate, policy.ResourceProject, nil); err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.Required("description", in.Description, v)
	if in.AssignedToID == 0 {
		v["assignedToId"] = "required"
	}
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}

	project := models.Project{
		Title:        in.Title,
		Description:  in.Description,
		CreatedByID:  actor.ID,
		AssignedToID: in.AssignedToID,
		Status:       models.ProjectStatusDefault,
	}
	if err := s.DB.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return s.load(ctx, project.ID)
}

// List applies read visibility as a query filter: managers see everything,
// plain users only projects assigned to them.
func (s *ProjectService) List(ctx context.Context, actor *models.User) ([]models.Project, error) {
	if err := s.Gate.Authorize(ctx, actor, gate.ActionList, policy.ResourceProject, nil); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).
		Preload("CreatedBy").Preload("AssignedTo").Preload("Attachments").
		Order("created_at DESC")
	if !actor.IsManager() {
		q = q.Where("assigned_to_id = ?", actor.ID)
	}
	var projects []models.Project
	err := q.Find(&projects).Error
	return projects, err
}

// GetByID returns Forbidden, not NotFound, for an existing but non-visible
// project.
func (s *ProjectService) GetByID(ctx context.Context, actor *models.User, id uint) (*models.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionView, policy.ResourceProject, project); err != nil {
		return nil, err
	}
	return project, nil
}

type ProjectUpdate struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	AssignedToID *uint   `json:"assignedToId"`
	Status       *string `json:"status"`
}

func (u ProjectUpdate) fields() map[string]any {
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
	return f
}

// Update merges the whitelisted fields for the actor's role; anything outside
// the whitelist is dropped silently.
func (s *ProjectService) Update(ctx context.Context, actor *models.User, id uint, in ProjectUpdate) (*models.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionUpdate, policy.ResourceProject, project); err != nil {
		return nil, err
	}

	allowed := policy.FilterFields(actor.Role, policy.ResourceProject, in.fields())
	for key, val := range allowed {
		switch key {
		case "title":
			project.Title = val.(string)
		case "description":
			project.Description = val.(string)
		case "assignedToId":
			project.AssignedToID = val.(uint)
		case "status":
			project.Status = val.(string)
		}
	}
	project.UpdatedAt = time.Now()
	if err := s.DB.WithContext(ctx).Save(project).Error; err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Delete cascades: every attached file's blob and record goes before the
// project record itself. Blob deletion tolerates already-absent blobs; a
// failing step surfaces without rolling the preceding ones back.
func (s *ProjectService) Delete(ctx context.Context, actor *models.User, id uint) error {
	project, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionDelete, policy.ResourceProject, project); err != nil {
		return err
	}
	if err := cascadeDeleteFiles(ctx, s.DB, s.Blobs, models.RefTypeProject, id); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(&models.Project{}, id).Error
}

func (s *ProjectService) load(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := s.DB.WithContext(ctx).
		Preload("CreatedBy").Preload("AssignedTo").Preload("Attachments").
		First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// cascadeDeleteFiles removes every file attached to (refType, refID): blob
// first (tolerating absence), then the record.
func cascadeDeleteFiles(ctx context.Context, db *gorm.DB, blobs *BlobStore, refType string, refID uint) error {
	var files []models.File
	if err := db.WithContext(ctx).
		Where("ref_type = ? AND ref_id = ?", refType, refID).Find(&files).Error; err != nil {
		return err
	}
	for _, f := range files {
		if err := blobs.Remove(f.FilePath); err != nil {
			return err
		}
		if err := db.WithContext(ctx).Delete(&models.File{}, f.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

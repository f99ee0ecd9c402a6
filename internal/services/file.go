package services

import (
	"context"
	"errors"
	"io"

	"gorm.io/gorm"

	"github.com/surajorg0/jira-tracker-backend/internal/apperr"
	"github.com/surajorg0/jira-tracker-backend/internal/gate"
	"github.com/surajorg0/jira-tracker-backend/internal/models"
	"github.com/surajorg0/jira-tracker-backend/internal/policy"
	"github.com/surajorg0/jira-tracker-backend/internal/validation"
)

// FileService is the attachment resource manager. Access always goes through
// the parent project or bug the file attaches to.
type FileService struct {
	DB    *gorm.DB
	Gate  *policy.AuthGate
	Blobs *BlobStore
}

func NewFileService(db *gorm.DB, g *policy.AuthGate, blobs *BlobStore) *FileService {
	return &FileService{DB: db, Gate: g, Blobs: blobs}
}

// parentContext resolves the (refType, refID) tagged reference to a policy
// snapshot. A missing parent is NotFound.
func (s *FileService) parentContext(ctx context.Context, file *models.File, refType string, refID uint) (policy.FileContext, error) {
	switch refType {
	case models.RefTypeProject:
		var project models.Project
		if err := s.DB.WithContext(ctx).First(&project, refID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return policy.FileContext{}, apperr.ErrNotFound
			}
			return policy.FileContext{}, err
		}
		return policy.FileContextFor(file, &project, nil), nil
	case models.RefTypeBug:
		var bug models.Bug
		if err := s.DB.WithContext(ctx).First(&bug, refID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return policy.FileContext{}, apperr.ErrNotFound
			}
			return policy.FileContext{}, err
		}
		return policy.FileContextFor(file, nil, &bug), nil
	}
	return policy.FileContext{}, &apperr.ValidationError{Violations: validation.Violations{"refType": "invalid_value"}}
}

// Upload stores the blob and creates the attachment record. If anything fails
// after the blob hit disk, the blob is removed before the error returns.
func (s *FileService) Upload(ctx context.Context, actor *models.User, refType string, refID uint, fileName string, src io.Reader) (*models.File, error) {
	if !models.ValidRefType(refType) {
		return nil, &apperr.ValidationError{Violations: validation.Violations{"refType": "invalid_value"}}
	}
	if !AllowedAttachment(fileName) {
		return nil, &apperr.ValidationError{Violations: validation.Violations{"file": "invalid_value"}}
	}

	fc, err := s.parentContext(ctx, nil, refType, refID)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionCreate, policy.ResourceFile, fc); err != nil {
		return nil, err
	}

	path, err := s.Blobs.SaveAttachment(src, fileName)
	if err != nil {
		return nil, err
	}
	file := models.File{
		FileName:     fileName,
		FilePath:     path,
		UploadedByID: actor.ID,
		RefType:      refType,
		RefID:        refID,
	}
	if err := s.DB.WithContext(ctx).Create(&file).Error; err != nil {
		// no orphaned blobs on the failure path
		_ = s.Blobs.Remove(path)
		return nil, err
	}
	return &file, nil
}

func (s *FileService) GetByID(ctx context.Context, actor *models.User, id uint) (*models.File, error) {
	file, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	fc, err := s.parentContext(ctx, file, file.RefType, file.RefID)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionView, policy.ResourceFile, fc); err != nil {
		return nil, err
	}
	return file, nil
}

// Delete detaches the record from its parent's attachment set and removes the
// blob, tolerating a blob that is already gone. Order: blob, then record. A
// file whose parent has vanished can still be deleted by a manager or its
// uploader.
func (s *FileService) Delete(ctx context.Context, actor *models.User, id uint) error {
	file, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	fc, err := s.parentContext(ctx, file, file.RefType, file.RefID)
	if errors.Is(err, apperr.ErrNotFound) {
		// orphaned attachment: authorize on the file alone
		fc = policy.FileContextFor(file, nil, nil)
	} else if err != nil {
		return err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionDelete, policy.ResourceFile, fc); err != nil {
		return err
	}
	if err := s.Blobs.Remove(file.FilePath); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(&models.File{}, id).Error
}

func (s *FileService) load(ctx context.Context, id uint) (*models.File, error) {
	var file models.File
	err := s.DB.WithContext(ctx).Preload("UploadedBy").First(&file, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/surajorg0/jira-tracker-backend/internal/apperr"
	"github.com/surajorg0/jira-tracker-backend/internal/models"
	"github.com/surajorg0/jira-tracker-backend/internal/validation"
)

// UserService manages accounts and the approval workflow.
type UserService struct {
	DB    *gorm.DB
	Blobs *BlobStore
}

func NewUserService(db *gorm.DB, blobs *BlobStore) *UserService {
	return &UserService{DB: db, Blobs: blobs}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a pending account. The admin role is bootstrap-only and
// cannot be requested through the API.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Required("email", in.Email, v)
	validation.Required("phone", in.Phone, v)
	validation.Required("password", in.Password, v)
	if in.Password != "" {
		validation.MinLen("password", in.Password, 6, v)
	}
	if in.Email != "" {
		validation.Email("email", in.Email, v)
	}
	validation.OneOf("role", in.Role, []string{models.RoleUser, models.RoleTeamLead}, v)
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.Phone)

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR phone = ?", email, phone).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Phone:    phone,
		Password: string(hash),
		Role:     role,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		// Concurrent registration with the same email/phone loses on the
		// unique index, not with a duplicate record.
		if isDuplicateErr(err) {
			return nil, apperr.ErrConflict
		}
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials by phone or email. Password verification runs
// before the approval gate so a pending account with correct credentials gets
// ErrPendingApproval, distinguishable from ErrInvalidCredentials. An unknown
// identity and a wrong password are never distinguishable.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperr.ErrInvalidCredentials
	}
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("phone = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if !user.IsApproved && user.Role != models.RoleAdmin {
		return nil, apperr.ErrPendingApproval
	}
	return &user, nil
}

// GetByID returns any user record; visibility of profiles is not restricted
// between approved accounts.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns every account, admin only.
func (s *UserService) List(ctx context.Context, actor *models.User) ([]models.User, error) {
	if actor == nil || actor.Role != models.RoleAdmin {
		return nil, apperr.ErrForbidden
	}
	var users []models.User
	err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

// ListPending returns accounts awaiting approval, admin only.
func (s *UserService) ListPending(ctx context.Context, actor *models.User) ([]models.User, error) {
	if actor == nil || actor.Role != models.RoleAdmin {
		return nil, apperr.ErrForbidden
	}
	var users []models.User
	err := s.DB.WithContext(ctx).Where("is_approved = ?", false).Order("created_at DESC").Find(&users).Error
	return users, err
}

// Approve transitions a pending account to approved, admin only.
func (s *UserService) Approve(ctx context.Context, actor *models.User, id uint) (*models.User, error) {
	if actor == nil || actor.Role != models.RoleAdmin {
		return nil, apperr.ErrForbidden
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsApproved = true
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Reject permanently removes a pending account and its profile picture blob,
// admin only. The transition is terminal.
func (s *UserService) Reject(ctx context.Context, actor *models.User, id uint) error {
	if actor == nil || actor.Role != models.RoleAdmin {
		return apperr.ErrForbidden
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.ProfilePicture != "" {
		if err := s.Blobs.Remove(user.ProfilePicture); err != nil {
			return err
		}
	}
	return s.DB.WithContext(ctx).Delete(&models.User{}, id).Error
}

type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// UpdateProfile lets a user edit their own identity fields; admins may edit
// anyone. Email and phone stay unique across accounts.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, id uint, in ProfileUpdate) (*models.User, error) {
	if actor == nil || (actor.ID != id && actor.Role != models.RoleAdmin) {
		return nil, apperr.ErrForbidden
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" && email != user.Email {
		if taken, err := s.fieldTaken(ctx, "email", email, id); err != nil {
			return nil, err
		} else if taken {
			return nil, apperr.ErrConflict
		}
		user.Email = email
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" && phone != user.Phone {
		if taken, err := s.fieldTaken(ctx, "phone", phone, id); err != nil {
			return nil, err
		} else if taken {
			return nil, apperr.ErrConflict
		}
		user.Phone = phone
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}

	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, apperr.ErrConflict
		}
		return nil, err
	}
	return user, nil
}

// SetProfilePicture stores a new picture blob and removes the previous one.
func (s *UserService) SetProfilePicture(ctx context.Context, actor *models.User, id uint, fileName string, src io.Reader) (*models.User, error) {
	if actor == nil || (actor.ID != id && actor.Role != models.RoleAdmin) {
		return nil, apperr.ErrForbidden
	}
	if !AllowedImage(fileName) {
		return nil, &apperr.ValidationError{Violations: validation.Violations{"profilePicture": "invalid_value"}}
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path, err := s.Blobs.SaveProfilePicture(src, id, fileName)
	if err != nil {
		return nil, err
	}
	old := user.ProfilePicture
	user.ProfilePicture = path
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		// keep the store consistent with the record on the failure path
		_ = s.Blobs.Remove(path)
		return nil, err
	}
	if old != "" {
		_ = s.Blobs.Remove(old)
	}
	return user, nil
}

func (s *UserService) fieldTaken(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where(column+" = ? AND id <> ?", value, excludeID).Count(&count).Error
	return count > 0, err
}

// isDuplicateErr recognizes unique-index violations from both postgres and
// the sqlite test driver.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

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

// TaskService is the task resource manager.
type TaskService struct {
	DB   *gorm.DB
	Gate *policy.AuthGate
}

func NewTaskService(db *gorm.DB, g *policy.AuthGate) *TaskService {
	return &TaskService{DB: db, Gate: g}
}

type TaskInput struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ProjectID    uint      `json:"projectId"`
	AssignedToID uint      `json:"assignedToId"`
	Priority     string    `json:"priority"`
	DueDate      time.Time `json:"dueDate"`
}

func (s *TaskService) Create(ctx context.Context, actor *models.User, in TaskInput) (*models.Task, error) {
	if err := s.Gate.Authorize(ctx, actor, gate.ActionCreate, policy.ResourceTask, nil); err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.Required("description", in.Description, v)
	if in.ProjectID == 0 {
		v["projectId"] = "required"
	}
	if in.AssignedToID == 0 {
		v["assignedToId"] = "required"
	}
	if in.DueDate.IsZero() {
		v["dueDate"] = "required"
	}
	if in.Priority != "" && !models.ValidTaskPriority(in.Priority) {
		v["priority"] = "invalid_value"
	}
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", in.ProjectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperr.ErrNotFound
	}

	priority := in.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	task := models.Task{
		Title:        in.Title,
		Description:  in.Description,
		ProjectID:    in.ProjectID,
		AssignedToID: in.AssignedToID,
		AssignedByID: actor.ID,
		Status:       models.TaskStatusTodo,
		Priority:     priority,
		DueDate:      in.DueDate,
	}
	if err := s.DB.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, err
	}
	return s.load(ctx, task.ID)
}

// List shows the full collection to managers; plain users see only tasks
// assigned to them.
func (s *TaskService) List(ctx context.Context, actor *models.User) ([]models.Task, error) {
	if err := s.Gate.Authorize(ctx, actor, gate.ActionList, policy.ResourceTask, nil); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).
		Preload("Project").Preload("AssignedTo").Preload("AssignedBy").
		Order("created_at DESC")
	if !actor.IsManager() {
		q = q.Where("assigned_to_id = ?", actor.ID)
	}
	var tasks []models.Task
	err := q.Find(&tasks).Error
	return tasks, err
}

// ListMine returns the actor's assigned tasks regardless of role.
func (s *TaskService) ListMine(ctx context.Context, actor *models.User) ([]models.Task, error) {
	if err := s.Gate.Authorize(ctx, actor, gate.ActionList, policy.ResourceTask, nil); err != nil {
		return nil, err
	}
	var tasks []models.Task
	err := s.DB.WithContext(ctx).
		Preload("Project").Preload("AssignedTo").Preload("AssignedBy").
		Where("assigned_to_id = ?", actor.ID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (s *TaskService) GetByID(ctx context.Context, actor *models.User, id uint) (*models.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionView, policy.ResourceTask, task); err != nil {
		return nil, err
	}
	return task, nil
}

type TaskUpdate struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	AssignedToID *uint      `json:"assignedToId"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"dueDate"`
	Status       *string    `json:"status"`
}

func (u TaskUpdate) fields() map[string]any {
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
	if u.Priority != nil {
		f["priority"] = *u.Priority
	}
	if u.DueDate != nil {
		f["dueDate"] = *u.DueDate
	}
	if u.Status != nil {
		f["status"] = *u.Status
	}
	return f
}

func (s *TaskService) Update(ctx context.Context, actor *models.User, id uint, in TaskUpdate) (*models.Task, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionUpdate, policy.ResourceTask, task); err != nil {
		return nil, err
	}

	v := validation.Violations{}
	if in.Status != nil && !models.ValidTaskStatus(*in.Status) {
		v["status"] = "invalid_value"
	}
	if in.Priority != nil && !models.ValidTaskPriority(*in.Priority) {
		v["priority"] = "invalid_value"
	}
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}

	allowed := policy.FilterFields(actor.Role, policy.ResourceTask, in.fields())
	for key, val := range allowed {
		switch key {
		case "title":
			task.Title = val.(string)
		case "description":
			task.Description = val.(string)
		case "assignedToId":
			task.AssignedToID = val.(uint)
		case "priority":
			task.Priority = val.(string)
		case "dueDate":
			task.DueDate = val.(time.Time)
		case "status":
			task.Status = val.(string)
		}
	}
	task.UpdatedAt = time.Now()
	if err := s.DB.WithContext(ctx).Save(task).Error; err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// UpdateStatus is the narrow status-only transition open to the assignee and
// the assigning manager.
func (s *TaskService) UpdateStatus(ctx context.Context, actor *models.User, id uint, status string) (*models.Task, error) {
	v := validation.Violations{}
	validation.Required("status", status, v)
	if status != "" && !models.ValidTaskStatus(status) {
		v["status"] = "invalid_value"
	}
	if !v.Empty() {
		return nil, &apperr.ValidationError{Violations: v}
	}
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionUpdateStatus, policy.ResourceTask, task); err != nil {
		return nil, err
	}
	task.Status = status
	task.UpdatedAt = time.Now()
	if err := s.DB.WithContext(ctx).Save(task).Error; err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, actor *models.User, id uint) error {
	task, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Gate.Authorize(ctx, actor, gate.ActionDelete, policy.ResourceTask, task); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(&models.Task{}, id).Error
}

func (s *TaskService) load(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := s.DB.WithContext(ctx).
		Preload("Project").Preload("AssignedTo").Preload("AssignedBy").
		First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

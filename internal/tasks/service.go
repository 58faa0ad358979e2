// Package tasks implements the ownership-scoped task service. A Service is
// bound to one user at construction; every query and mutation it issues is
// filtered by that user id. The chat classifier uses the same service as
// its mutation gateway.
package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/models"
	"github.com/xaenox/taskchat/internal/storage"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Service struct {
	store  storage.TaskStorage
	userID uuid.UUID
	logger *zap.Logger
}

func NewService(store storage.TaskStorage, userID uuid.UUID, logger *zap.Logger) *Service {
	return &Service{store: store, userID: userID, logger: logger}
}

// CreateInput carries the fields a caller may set on a new task.
type CreateInput struct {
	Title       string              `json:"title" validate:"required,min=1,max=255"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      models.TaskStatus   `json:"status" validate:"omitempty,oneof=pending in_progress completed archived"`
	CategoryID  *uuid.UUID          `json:"category_id"`
	DueDate     *time.Time          `json:"due_date"`
}

// UpdateInput carries optional fields; nil means "leave unchanged".
type UpdateInput struct {
	Title       *string              `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string              `json:"description"`
	Priority    *models.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      *models.TaskStatus   `json:"status" validate:"omitempty,oneof=pending in_progress completed archived"`
	CategoryID  *uuid.UUID           `json:"category_id"`
	DueDate     *time.Time           `json:"due_date"`
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Task, error) {
	task := &models.Task{
		ID:          uuid.New(),
		UserID:      s.userID,
		CategoryID:  input.CategoryID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("user_id", s.userID.String()))
	return task, nil
}

func (s *Service) Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	return s.store.GetTask(ctx, s.userID, taskID)
}

func (s *Service) List(ctx context.Context, filter models.TaskFilter) (*models.TaskList, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	tasks, total, err := s.store.ListTasks(ctx, s.userID, filter)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}

	return &models.TaskList{
		Tasks:  tasks,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// ListRecent returns up to limit of the user's most recently created tasks.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*models.Task, error) {
	tasks, _, err := s.store.ListTasks(ctx, s.userID, models.TaskFilter{Limit: limit})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Service) Update(ctx context.Context, taskID uuid.UUID, input UpdateInput) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, s.userID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.CategoryID != nil {
		task.CategoryID = input.CategoryID
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("Task updated",
		zap.String("task_id", taskID.String()),
		zap.String("user_id", s.userID.String()))
	return task, nil
}

func (s *Service) Delete(ctx context.Context, taskID uuid.UUID) error {
	if err := s.store.DeleteTask(ctx, s.userID, taskID); err != nil {
		return err
	}

	s.logger.Info("Task deleted",
		zap.String("task_id", taskID.String()),
		zap.String("user_id", s.userID.String()))
	return nil
}

// Complete marks a task completed, stamping completed_at.
func (s *Service) Complete(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, s.userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Complete()
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Package categories implements the ownership-scoped category service,
// bound to one user at construction like the task service.
package categories

import (
	"context"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/models"
	"github.com/xaenox/taskchat/internal/storage"
	"go.uber.org/zap"
)

const defaultListLimit = 100

type Service struct {
	store  storage.CategoryStorage
	userID uuid.UUID
	logger *zap.Logger
}

func NewService(store storage.CategoryStorage, userID uuid.UUID, logger *zap.Logger) *Service {
	return &Service{store: store, userID: userID, logger: logger}
}

type CreateInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description"`
}

type UpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Category, error) {
	category := &models.Category{
		ID:          uuid.New(),
		UserID:      s.userID,
		Name:        input.Name,
		Description: input.Description,
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("Category created",
		zap.String("category_id", category.ID.String()),
		zap.String("user_id", s.userID.String()))
	return category, nil
}

func (s *Service) Get(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	category, err := s.store.GetCategory(ctx, s.userID, categoryID)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountTasksInCategory(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	category.TaskCount = count
	return category, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) (*models.CategoryList, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	categories, total, err := s.store.ListCategories(ctx, s.userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*models.Category{}
	}

	for _, category := range categories {
		count, err := s.store.CountTasksInCategory(ctx, category.ID)
		if err != nil {
			return nil, err
		}
		category.TaskCount = count
	}

	return &models.CategoryList{
		Items:  categories,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *Service) Update(ctx context.Context, categoryID uuid.UUID, input UpdateInput) (*models.Category, error) {
	category, err := s.store.GetCategory(ctx, s.userID, categoryID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		category.Name = *input.Name
	}
	if input.Description != nil {
		category.Description = *input.Description
	}

	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) Delete(ctx context.Context, categoryID uuid.UUID) error {
	if err := s.store.DeleteCategory(ctx, s.userID, categoryID); err != nil {
		return err
	}

	s.logger.Info("Category deleted",
		zap.String("category_id", categoryID.String()),
		zap.String("user_id", s.userID.String()))
	return nil
}

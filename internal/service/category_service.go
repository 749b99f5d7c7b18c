package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"taskflow/internal/apperr"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

const (
	MsgCategoryRequired  = "Name and color are required"
	msgCategoryDuplicate = "Category with this name already exists"
	msgCategoryNotFound  = "Category not found"
	msgInvalidColor      = "Invalid color"
)

// CategoryService validates and persists categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Persistence("Failed to fetch categories", err)
	}
	return categories, nil
}

// Create rejects blank fields, unknown colours and duplicate names before inserting.
func (s *CategoryService) Create(ctx context.Context, input model.CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	color := strings.TrimSpace(input.Color)
	if name == "" || color == "" {
		return nil, apperr.Validation(MsgCategoryRequired)
	}
	if !model.ValidColor(color) {
		return nil, apperr.Validation(msgInvalidColor)
	}

	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		return nil, apperr.Persistence("Failed to create category", err)
	}

	category := model.Category{Name: name, Color: color}
	if err := s.repo.Create(ctx, &category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict(msgCategoryDuplicate)
		}
		return nil, apperr.Persistence("Failed to create category", err)
	}
	return &category, nil
}

// Update applies a partial change. The returned category carries no TaskCount.
func (s *CategoryService) Update(ctx context.Context, id uint, patch model.CategoryPatch) (*model.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgCategoryNotFound)
		}
		return nil, apperr.Persistence("Failed to update category", err)
	}

	fields := make(map[string]interface{})
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("Name cannot be empty")
		}
		if name != category.Name {
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				if errors.Is(err, apperr.ErrConflict) {
					return nil, err
				}
				return nil, apperr.Persistence("Failed to update category", err)
			}
			fields["name"] = name
		}
	}
	if patch.Color != nil {
		color := strings.TrimSpace(*patch.Color)
		if !model.ValidColor(color) {
			return nil, apperr.Validation(msgInvalidColor)
		}
		fields["color"] = color
	}

	if err := s.repo.Update(ctx, category, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict(msgCategoryDuplicate)
		}
		return nil, apperr.Persistence("Failed to update category", err)
	}
	return category, nil
}

// Delete removes the category and, through the FK cascade, its tasks.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Persistence("Failed to delete category", err)
	}
	if !deleted {
		return apperr.NotFound(msgCategoryNotFound)
	}
	return nil
}

// ensureNameFree returns a conflict when another category (not self) owns name.
func (s *CategoryService) ensureNameFree(ctx context.Context, name string, self uint) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		if existing.ID != self {
			return apperr.Conflict(msgCategoryDuplicate)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}

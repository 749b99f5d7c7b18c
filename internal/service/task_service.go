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
	MsgTaskRequired = "Title and categoryId are required"
	msgTaskNotFound = "Task not found"
)

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, apperr.Persistence("Failed to fetch tasks", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgTaskNotFound)
		}
		return nil, apperr.Persistence("Failed to fetch task", err)
	}
	return task, nil
}

// Create checks that the referenced category exists before inserting. The check
// and the insert are not atomic; a concurrent category delete surfaces as a FK
// violation and is reported the same way.
func (s *TaskService) Create(ctx context.Context, input model.TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.CategoryID == 0 {
		return nil, apperr.Validation(MsgTaskRequired)
	}

	if err := s.categoryExists(ctx, input.CategoryID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Persistence("Failed to create task", err)
	}

	task := model.Task{
		Title:       title,
		Description: normalizeDescription(input.Description),
		CategoryID:  input.CategoryID,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, apperr.NotFound(msgCategoryNotFound)
		}
		return nil, apperr.Persistence("Failed to create task", err)
	}
	return &task, nil
}

// Update applies a partial change and returns the reloaded task.
func (s *TaskService) Update(ctx context.Context, id uint, patch model.TaskPatch) (*model.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(msgTaskNotFound)
		}
		return nil, apperr.Persistence("Failed to update task", err)
	}

	fields := make(map[string]interface{})
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperr.Validation("Title cannot be empty")
		}
		fields["title"] = title
	}
	if patch.Description != nil {
		fields["description"] = normalizeDescription(patch.Description)
	}
	if patch.Completed != nil {
		fields["completed"] = *patch.Completed
	}
	if patch.CategoryID != nil {
		if *patch.CategoryID == 0 {
			return nil, apperr.Validation("categoryId must be positive")
		}
		if err := s.categoryExists(ctx, *patch.CategoryID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}
			return nil, apperr.Persistence("Failed to update task", err)
		}
		fields["category_id"] = *patch.CategoryID
	}

	if err := s.taskRepo.Update(ctx, task, fields); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, apperr.NotFound(msgCategoryNotFound)
		}
		return nil, apperr.Persistence("Failed to update task", err)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		return apperr.Persistence("Failed to delete task", err)
	}
	if !deleted {
		return apperr.NotFound(msgTaskNotFound)
	}
	return nil
}

func (s *TaskService) categoryExists(ctx context.Context, id uint) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(msgCategoryNotFound)
		}
		return err
	}
	return nil
}

func normalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

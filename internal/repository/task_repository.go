package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns every task with its category, in id order.
func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("Category").Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("Category").First(&task, id).Error; err != nil {
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return &task, nil
}

// Create inserts task and reloads it with its category.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	db := r.db.WithContext(ctx)
	task.Category = nil
	if err := db.Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	if err := db.Preload("Category").First(task, task.ID).Error; err != nil {
		return fmt.Errorf("reload task: %w", err)
	}
	return nil
}

// Update applies the given column values and reloads the row into task.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task, fields map[string]interface{}) error {
	db := r.db.WithContext(ctx)
	if len(fields) > 0 {
		if err := db.Model(&model.Task{ID: task.ID}).Updates(fields).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}
	}
	var reloaded model.Task
	if err := db.Preload("Category").First(&reloaded, task.ID).Error; err != nil {
		return fmt.Errorf("reload task: %w", err)
	}
	*task = reloaded
	return nil
}

// Delete removes a task and reports whether a row was removed.
func (r *TaskRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete task: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) CountCompleted(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("completed = ?", true).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count completed tasks: %w", err)
	}
	return n, nil
}

// Recent returns up to limit tasks, newest first.
func (r *TaskRepository) Recent(ctx context.Context, limit int) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("Category").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("recent tasks: %w", err)
	}
	return tasks, nil
}

// ListOpen returns incomplete tasks, oldest first.
func (r *TaskRepository) ListOpen(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("completed = ?", false).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	return tasks, nil
}

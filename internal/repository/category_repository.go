package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns every category in id order with TaskCount filled in.
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	counts, err := r.TaskCounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		n := counts[categories[i].ID]
		categories[i].TaskCount = &n
	}
	return categories, nil
}

// TaskCounts returns the number of tasks per category id. Categories without
// tasks are absent from the map.
func (r *CategoryRepository) TaskCounts(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		CategoryID uint
		Total      int64
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("category_id, COUNT(*) AS total").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks per category: %w", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Total
	}
	return counts, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, fmt.Errorf("find category %d: %w", id, err)
	}
	return &category, nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		return nil, fmt.Errorf("find category %q: %w", name, err)
	}
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update applies the given column values and reloads the row into category.
func (r *CategoryRepository) Update(ctx context.Context, category *model.Category, fields map[string]interface{}) error {
	db := r.db.WithContext(ctx)
	if len(fields) > 0 {
		if err := db.Model(category).Updates(fields).Error; err != nil {
			return fmt.Errorf("update category: %w", err)
		}
	}
	if err := db.First(category, category.ID).Error; err != nil {
		return fmt.Errorf("reload category: %w", err)
	}
	return nil
}

// Delete removes a category; its tasks go with it through the FK cascade.
// It reports whether a row was removed.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Category{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete category: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

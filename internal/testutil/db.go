// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// NewDB returns a migrated in-memory SQLite store that is closed with the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := repository.NewDB(":memory:", logger.Discard())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// SeedCategory inserts a category directly through gorm.
func SeedCategory(t *testing.T, db *gorm.DB, name, color string) model.Category {
	t.Helper()

	c := model.Category{Name: name, Color: color}
	if err := db.WithContext(context.Background()).Create(&c).Error; err != nil {
		t.Fatalf("seed category %q: %v", name, err)
	}
	return c
}

// SeedTask inserts a task directly through gorm.
func SeedTask(t *testing.T, db *gorm.DB, title string, categoryID uint, completed bool) model.Task {
	t.Helper()

	task := model.Task{Title: title, CategoryID: categoryID}
	if err := db.WithContext(context.Background()).Create(&task).Error; err != nil {
		t.Fatalf("seed task %q: %v", title, err)
	}
	if completed {
		if err := db.Model(&task).Update("completed", true).Error; err != nil {
			t.Fatalf("complete task %q: %v", title, err)
		}
		task.Completed = true
	}
	return task
}

// Colors used across tests.
const (
	Blue  = "bg-blue-100 text-blue-800"
	Green = "bg-green-100 text-green-800"
)

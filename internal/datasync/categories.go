package datasync

import (
	"log/slog"

	"taskflow/internal/model"
)

type CategoryResource = Resource[model.Category, model.CategoryInput, model.CategoryPatch]

type Categories struct {
	*Collection[model.Category, model.CategoryInput, model.CategoryPatch]
}

func NewCategories(res CategoryResource, log *slog.Logger) *Categories {
	return &Categories{New(res, Options[model.Category]{
		Singular: "category",
		Plural:   "categories",
		ID:       func(c model.Category) uint { return c.ID },
		Merge:    mergeCategory,
		Created:  createdCategory,
		Logger:   log,
	})}
}

// mergeCategory keeps the cached taskCount, which update responses omit.
func mergeCategory(prev, next model.Category) model.Category {
	if next.TaskCount == nil {
		next.TaskCount = prev.TaskCount
	}
	return next
}

// A new category has no tasks yet.
func createdCategory(c model.Category) model.Category {
	if c.TaskCount == nil {
		var zero int64
		c.TaskCount = &zero
	}
	return c
}

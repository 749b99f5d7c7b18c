package service

import (
	"context"

	"taskflow/internal/apperr"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// StatsService computes the dashboard aggregate.
type StatsService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewStatsService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *StatsService {
	return &StatsService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

// Snapshot runs the independent aggregate queries. Slices are never nil so an
// empty store serialises as empty arrays.
func (s *StatsService) Snapshot(ctx context.Context) (*model.Stats, error) {
	stats, err := s.snapshot(ctx)
	if err != nil {
		return nil, apperr.Persistence("Failed to fetch statistics", err)
	}
	return stats, nil
}

func (s *StatsService) snapshot(ctx context.Context) (*model.Stats, error) {
	total, err := s.taskRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.taskRepo.CountCompleted(ctx)
	if err != nil {
		return nil, err
	}
	totalCategories, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.taskRepo.Recent(ctx, model.RecentTasksLimit)
	if err != nil {
		return nil, err
	}

	byCategory := make([]model.CategoryTasks, 0, len(categories))
	for _, c := range categories {
		byCategory = append(byCategory, model.CategoryTasks{
			Name:  c.Name,
			Color: c.Color,
			Count: model.TaskCounter{Tasks: c.Count()},
		})
	}
	if recent == nil {
		recent = []model.Task{}
	}

	return &model.Stats{
		TotalTasks:      total,
		CompletedTasks:  completed,
		TotalCategories: totalCategories,
		TasksByCategory: byCategory,
		RecentTasks:     recent,
	}, nil
}

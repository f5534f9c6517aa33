package task

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
)

type Service struct {
	repo repository.TaskRepository
	now  func() time.Time
}

func NewService(repo repository.TaskRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters *model.TaskFilters) ([]*model.Task, error) {
	tasks, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Complete marks the task done. Completing a completed task keeps the
// original completion time.
func (s *Service) Complete(ctx context.Context, id string) (*model.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Completed {
		return t, nil
	}
	now := s.now()
	t.Completed = true
	t.CompletedAt = &now
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}
	return t, nil
}

func (s *Service) Reopen(ctx context.Context, id string) (*model.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Completed = false
	t.CompletedAt = nil
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to reopen task: %w", err)
	}
	return t, nil
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
	"github.com/jwalitptl/ed-orders/pkg/errors"
)

type taskRepository struct {
	mu    sync.RWMutex
	tasks map[string]model.Task
}

func NewTaskRepository(tasks []model.Task) repository.TaskRepository {
	r := &taskRepository{tasks: make(map[string]model.Task, len(tasks))}
	for _, t := range tasks {
		r.tasks[t.ID] = t
	}
	return r
}

func (r *taskRepository) Get(_ context.Context, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, errors.NotFound("task", nil)
	}
	return &t, nil
}

// List returns matching tasks ordered by due time.
func (r *taskRepository) List(_ context.Context, filters *model.TaskFilters) ([]*model.Task, error) {
	if filters == nil {
		filters = &model.TaskFilters{}
	}

	r.mu.RLock()
	result := make([]*model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if filters.AssignedTo != "" && t.AssignedTo != filters.AssignedTo {
			continue
		}
		if filters.PatientMRN != "" && t.PatientMRN != filters.PatientMRN {
			continue
		}
		switch filters.Status {
		case "open":
			if t.Completed {
				continue
			}
		case "completed":
			if !t.Completed {
				continue
			}
		}
		t := t
		result = append(result, &t)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueAt.Equal(result[j].DueAt) {
			return result[i].DueAt.Before(result[j].DueAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *taskRepository) Update(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.ID]; !ok {
		return errors.NotFound("task", nil)
	}
	r.tasks[task.ID] = *task
	return nil
}

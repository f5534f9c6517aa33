package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
	"github.com/jwalitptl/ed-orders/pkg/errors"
)

// resultRepository stores raw results; flags are derived by the service.
type resultRepository struct {
	mu      sync.RWMutex
	results map[string]model.LabResult
}

func NewResultRepository(results []model.LabResult) repository.ResultRepository {
	r := &resultRepository{results: make(map[string]model.LabResult, len(results))}
	for _, res := range results {
		r.results[res.ID] = res
	}
	return r
}

func (r *resultRepository) Get(_ context.Context, id string) (*model.LabResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.results[id]
	if !ok {
		return nil, errors.NotFound("result", nil)
	}
	return &res, nil
}

// List filters on stored fields only. Abnormal filtering needs the derived
// flag and happens in the service.
func (r *resultRepository) List(_ context.Context, filters *model.ResultFilters) ([]*model.LabResult, error) {
	if filters == nil {
		filters = &model.ResultFilters{}
	}

	r.mu.RLock()
	result := make([]*model.LabResult, 0, len(r.results))
	for _, res := range r.results {
		if filters.PatientMRN != "" && res.PatientMRN != filters.PatientMRN {
			continue
		}
		if filters.TestName != "" && res.TestName != filters.TestName {
			continue
		}
		if filters.CriticalOnly && !res.Critical {
			continue
		}
		res := res
		result = append(result, &res)
	}
	r.mu.RUnlock()

	sortNewestFirst(result)
	return result, nil
}

// sortNewestFirst orders by parsed result time. Unparsable timestamps go
// last; ids break ties so output is stable.
func sortNewestFirst(results []*model.LabResult) {
	type key struct {
		at time.Time
		ok bool
	}
	keys := make(map[string]key, len(results))
	for _, res := range results {
		at, ok := model.ParseTimestamp(res.ResultedAt)
		keys[res.ID] = key{at: at, ok: ok}
	}
	sort.SliceStable(results, func(i, j int) bool {
		ki, kj := keys[results[i].ID], keys[results[j].ID]
		if ki.ok != kj.ok {
			return ki.ok
		}
		if !ki.at.Equal(kj.at) {
			return ki.at.After(kj.at)
		}
		return results[i].ID < results[j].ID
	})
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
	"github.com/jwalitptl/ed-orders/pkg/errors"
)

type patientRepository struct {
	mu       sync.RWMutex
	patients map[string]model.Patient
}

func NewPatientRepository(patients []model.Patient) repository.PatientRepository {
	r := &patientRepository{patients: make(map[string]model.Patient, len(patients))}
	for _, p := range patients {
		r.patients[p.MRN] = p
	}
	return r
}

func (r *patientRepository) Get(_ context.Context, mrn string) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[mrn]
	if !ok {
		return nil, errors.NotFound("patient", nil)
	}
	return &p, nil
}

// List returns matching patients, highest acuity (lowest ESI) first, then
// earliest arrival.
func (r *patientRepository) List(_ context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	if filters == nil {
		filters = &model.PatientFilters{}
	}
	term := strings.ToLower(strings.TrimSpace(filters.SearchTerm))

	r.mu.RLock()
	result := make([]*model.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		if filters.AssignedTo != "" && p.AssignedTo != filters.AssignedTo {
			continue
		}
		if term != "" && !matchesPatient(p, term) {
			continue
		}
		p := p
		result = append(result, &p)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].Acuity != result[j].Acuity {
			return result[i].Acuity < result[j].Acuity
		}
		if !result[i].ArrivedAt.Equal(result[j].ArrivedAt) {
			return result[i].ArrivedAt.Before(result[j].ArrivedAt)
		}
		return result[i].MRN < result[j].MRN
	})
	return result, nil
}

func matchesPatient(p model.Patient, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.MRN), term) ||
		strings.Contains(strings.ToLower(p.ChiefComplaint), term)
}

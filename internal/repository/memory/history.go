package memory

import (
	"context"
	"sync"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
)

type historyRepository struct {
	mu      sync.RWMutex
	records map[string][]model.TestRecord
}

// NewHistoryRepository indexes records by patient MRN. Storage order is
// kept as given; callers must not rely on it.
func NewHistoryRepository(records []model.TestRecord) repository.HistoryRepository {
	r := &historyRepository{records: make(map[string][]model.TestRecord)}
	for _, rec := range records {
		r.records[rec.PatientMRN] = append(r.records[rec.PatientMRN], rec)
	}
	return r
}

// NewHistoryFromResults builds the history view over lab results so every
// history record id is also a result id.
func NewHistoryFromResults(results []model.LabResult) repository.HistoryRepository {
	records := make([]model.TestRecord, 0, len(results))
	for i := range results {
		records = append(records, results[i].TestRecord())
	}
	return NewHistoryRepository(records)
}

func (r *historyRepository) GetHistory(_ context.Context, mrn string) ([]model.TestRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.records[mrn]
	out := make([]model.TestRecord, len(records))
	copy(out, records)
	return out, nil
}

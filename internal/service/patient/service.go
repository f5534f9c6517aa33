package patient

import (
	"context"
	"fmt"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
)

type Service struct {
	repo    repository.PatientRepository
	history repository.HistoryRepository
}

func NewService(repo repository.PatientRepository, history repository.HistoryRepository) *Service {
	return &Service{repo: repo, history: history}
}

func (s *Service) GetPatient(ctx context.Context, mrn string) (*model.Patient, error) {
	return s.repo.Get(ctx, mrn)
}

// ListPatients returns the tracking board, sickest first.
func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// History returns the patient's test history. A patient with no records,
// known or not, has an empty history.
func (s *Service) History(ctx context.Context, mrn string) ([]model.TestRecord, error) {
	records, err := s.history.GetHistory(ctx, mrn)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	if records == nil {
		records = []model.TestRecord{}
	}
	return records, nil
}

package result

import (
	"context"
	"fmt"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
	"github.com/jwalitptl/ed-orders/internal/service/abnormal"
	"github.com/jwalitptl/ed-orders/pkg/metrics"
)

// Service serves lab results with their abnormal flag derived on read.
type Service struct {
	repo    repository.ResultRepository
	metrics *metrics.Metrics
}

func NewService(repo repository.ResultRepository, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{repo: repo, metrics: m}
}

func (s *Service) Get(ctx context.Context, id string) (*model.LabResult, error) {
	res, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.flag(res)
	return res, nil
}

func (s *Service) List(ctx context.Context, filters *model.ResultFilters) ([]*model.LabResult, error) {
	if filters == nil {
		filters = &model.ResultFilters{}
	}
	results, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	out := results[:0]
	for _, res := range results {
		s.flag(res)
		if filters.AbnormalOnly && !res.Abnormal {
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

// Classify flags an arbitrary value against a reference range.
func (s *Service) Classify(value interface{}, refRange string) model.ResultFlag {
	flag := abnormal.Classify(value, refRange)
	s.metrics.ResultsClassified.WithLabelValues(string(flag)).Inc()
	return flag
}

func (s *Service) flag(res *model.LabResult) {
	res.Flag = s.Classify(res.Value, res.ReferenceRange)
	res.Abnormal = res.Flag.Abnormal()
}

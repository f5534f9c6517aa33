package duplicate

import (
	"context"
	"strings"
	"time"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
	"github.com/jwalitptl/ed-orders/pkg/logger"
	"github.com/jwalitptl/ed-orders/pkg/metrics"
)

// Service runs duplicate checks against the history store.
type Service struct {
	policy  Policy
	history repository.HistoryRepository
	now     func() time.Time
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(policy Policy, history repository.HistoryRepository, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{
		policy:  policy,
		history: history,
		now:     time.Now,
		logger:  log.WithComponent("duplicate"),
		metrics: m,
	}
}

// WithClock replaces the wall clock, for tests and replays.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Check looks up the patient's history and runs Detect at the current time.
// A failed history lookup is logged and treated as an empty history so the
// submission workflow is never blocked by it.
func (s *Service) Check(ctx context.Context, mrn string, candidates []string) model.DuplicateFinding {
	s.metrics.DuplicateChecks.Inc()

	history, err := s.history.GetHistory(ctx, mrn)
	if err != nil {
		s.metrics.HistoryErrors.Inc()
		s.logger.Error(err, "history lookup failed, treating as empty", "patient_mrn", mrn)
		history = nil
	}

	finding := Detect(s.policy, history, candidates, s.now())

	if len(finding.Unparsable) > 0 {
		s.metrics.UnparsableTimestamps.Add(float64(len(finding.Unparsable)))
		s.logger.Warn("skipped history records with unparsable timestamps",
			"patient_mrn", mrn,
			"records", strings.Join(finding.Unparsable, ","))
	}
	for _, name := range finding.DuplicateTestNames {
		window := "default"
		if s.policy.IsSpecial(name) {
			window = "extended"
		}
		s.metrics.DuplicatesFound.WithLabelValues(window).Inc()
	}
	if finding.HasDuplicates() {
		s.logger.Debug("duplicate tests detected",
			"patient_mrn", mrn,
			"duplicates", strings.Join(finding.DuplicateTestNames, ","),
			"most_recent_match_id", finding.MostRecentMatchID)
	}
	return finding
}

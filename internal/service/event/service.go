package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
	"github.com/jwalitptl/ed-orders/pkg/logger"
	"github.com/jwalitptl/ed-orders/pkg/metrics"
)

// Emitter queues a domain event for publishing.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

// Service writes events to the outbox; pkg/worker publishes them.
type Service struct {
	outboxRepo repository.OutboxRepository
	metrics    *metrics.Metrics
}

func NewService(outboxRepo repository.OutboxRepository, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{outboxRepo: outboxRepo, metrics: m}
}

func (s *Service) Emit(ctx context.Context, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	now := time.Now()
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payloadJSON,
		Status:    model.OutboxStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if rid := logger.RequestIDFromContext(ctx); rid != "" {
		event.Headers = map[string]string{"request_id": rid}
	}

	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	s.metrics.OutboxQueueSize.Inc()
	return nil
}

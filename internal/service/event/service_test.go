package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository/memory"
	"github.com/jwalitptl/ed-orders/pkg/logger"
	"github.com/jwalitptl/ed-orders/pkg/metrics"
)

func TestEmit_QueuesPendingEvent(t *testing.T) {
	repo := memory.NewOutboxRepository()
	m := metrics.NewNop()
	svc := NewService(repo, m)

	ctx := logger.ContextWithRequestID(context.Background(), "req-1")
	err := svc.Emit(ctx, model.EventOrderStatusChanged, OrderStatusChanged{
		OrderID: "ord-1",
		From:    model.OrderStatusPending,
		To:      model.OrderStatusInProgress,
	})
	require.NoError(t, err)

	pending, err := repo.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	evt := pending[0]
	assert.Equal(t, model.EventOrderStatusChanged, evt.EventType)
	assert.Equal(t, "req-1", evt.Headers["request_id"])

	var payload OrderStatusChanged
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, model.OrderStatusInProgress, payload.To)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxQueueSize))
}

func TestEmit_UnmarshalablePayload(t *testing.T) {
	svc := NewService(memory.NewOutboxRepository(), nil)

	err := svc.Emit(context.Background(), model.EventOrderSubmitted, make(chan int))
	assert.Error(t, err)
}

type failingOutbox struct{}

func (failingOutbox) Create(context.Context, *model.OutboxEvent) error { return errors.New("down") }
func (failingOutbox) GetPendingEvents(context.Context, int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (failingOutbox) UpdateStatus(context.Context, uuid.UUID, model.OutboxStatus, *string) error {
	return nil
}
func (failingOutbox) CountPending(context.Context) (int, error) { return 0, nil }
func (failingOutbox) DeleteProcessedBefore(context.Context, time.Time) (int, error) {
	return 0, nil
}

func TestEmit_RepositoryError(t *testing.T) {
	svc := NewService(failingOutbox{}, nil)

	err := svc.Emit(context.Background(), model.EventOrderSubmitted, map[string]string{})
	assert.ErrorContains(t, err, "failed to create outbox event")
}

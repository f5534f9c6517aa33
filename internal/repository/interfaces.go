package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/ed-orders/internal/model"
)

// ErrStaleDraft means another request moved the draft first.
var ErrStaleDraft = errors.New("draft state changed concurrently")

// All repository interfaces in one file
type (
	// PatientRepository is the tracking-board directory.
	PatientRepository interface {
		Get(ctx context.Context, mrn string) (*model.Patient, error)
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	// HistoryRepository returns a patient's historical test records.
	// Unknown patients yield an empty slice, not an error.
	HistoryRepository interface {
		GetHistory(ctx context.Context, mrn string) ([]model.TestRecord, error)
	}

	// OrderRepository is append-only apart from status changes.
	OrderRepository interface {
		Append(ctx context.Context, order *model.Order) error
		Get(ctx context.Context, id string) (*model.Order, error)
		List(ctx context.Context, filters *model.OrderFilters) ([]*model.Order, error)
		UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)
	}

	DraftRepository interface {
		Create(ctx context.Context, draft *model.OrderDraft) error
		Get(ctx context.Context, id string) (*model.OrderDraft, error)
		// Transition stores draft only if the stored state is still from.
		Transition(ctx context.Context, draft *model.OrderDraft, from model.DraftState) error
	}

	ResultRepository interface {
		Get(ctx context.Context, id string) (*model.LabResult, error)
		List(ctx context.Context, filters *model.ResultFilters) ([]*model.LabResult, error)
	}

	TaskRepository interface {
		Get(ctx context.Context, id string) (*model.Task, error)
		List(ctx context.Context, filters *model.TaskFilters) ([]*model.Task, error)
		Update(ctx context.Context, task *model.Task) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		CountPending(ctx context.Context) (int, error)
		// DeleteProcessedBefore removes processed events last updated
		// before cutoff and returns how many were removed.
		DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int, error)
	}
)

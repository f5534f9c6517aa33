package memory

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
	"github.com/jwalitptl/ed-orders/internal/seed"
	"github.com/jwalitptl/ed-orders/pkg/errors"
)

var seedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestPatientRepository_ListSortsByAcuityThenArrival(t *testing.T) {
	repo := NewPatientRepository(seed.Load(seedNow).Patients)

	patients, err := repo.List(context.Background(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, patients)

	assert.Equal(t, "MRN-1004", patients[0].MRN)
	// MRN-1002 arrived before MRN-1001, both ESI 2.
	assert.Equal(t, "MRN-1002", patients[1].MRN)
	assert.Equal(t, "MRN-1001", patients[2].MRN)
}

func TestPatientRepository_Filters(t *testing.T) {
	repo := NewPatientRepository(seed.Load(seedNow).Patients)
	ctx := context.Background()

	patients, err := repo.List(ctx, &model.PatientFilters{AssignedTo: "dr-patel"})
	require.NoError(t, err)
	assert.Len(t, patients, 2)

	patients, err = repo.List(ctx, &model.PatientFilters{SearchTerm: "chest"})
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "MRN-1001", patients[0].MRN)

	patients, err = repo.List(ctx, &model.PatientFilters{Status: model.PatientStatusWaiting})
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "MRN-1003", patients[0].MRN)
}

func TestPatientRepository_GetUnknown(t *testing.T) {
	repo := NewPatientRepository(nil)

	_, err := repo.Get(context.Background(), "MRN-0000")
	assert.True(t, errors.IsNotFound(err))
}

func TestHistoryRepository_UnknownPatientIsEmpty(t *testing.T) {
	repo := NewHistoryFromResults(seed.Load(seedNow).Results)

	records, err := repo.GetHistory(context.Background(), "MRN-9999")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryRepository_ReturnsCopy(t *testing.T) {
	repo := NewHistoryRepository([]model.TestRecord{
		{ID: "r1", PatientMRN: "MRN-1", TestName: "CBC", PerformedAt: "2026-03-14T08:00:00Z"},
	})
	ctx := context.Background()

	records, err := repo.GetHistory(ctx, "MRN-1")
	require.NoError(t, err)
	records[0].TestName = "changed"

	again, err := repo.GetHistory(ctx, "MRN-1")
	require.NoError(t, err)
	assert.Equal(t, "CBC", again[0].TestName)
}

func TestHistoryFromResults_KeepsResultIDs(t *testing.T) {
	repo := NewHistoryFromResults(seed.Load(seedNow).Results)

	records, err := repo.GetHistory(context.Background(), "MRN-1005")
	require.NoError(t, err)

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.Contains(t, ids, "res-2009")
}

func TestOrderRepository_AppendAndStatus(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	order := &model.Order{
		ID:         "ord-1",
		PatientMRN: "MRN-1001",
		Kind:       model.OrderKindLab,
		Status:     model.OrderStatusPending,
		Detail:     model.LabDetail{Tests: []string{"CBC"}},
	}
	require.NoError(t, repo.Append(ctx, order))

	err := repo.Append(ctx, order)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrConflict, appErr.Code)

	updated, err := repo.UpdateStatus(ctx, "ord-1", model.OrderStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInProgress, updated.Status)

	_, err = repo.UpdateStatus(ctx, "missing", model.OrderStatusCompleted)
	assert.True(t, errors.IsNotFound(err))
}

func TestOrderRepository_ListKeepsSubmissionOrder(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	for _, id := range []string{"ord-3", "ord-1", "ord-2"} {
		require.NoError(t, repo.Append(ctx, &model.Order{ID: id, PatientMRN: "MRN-1", Kind: model.OrderKindConsult}))
	}
	require.NoError(t, repo.Append(ctx, &model.Order{ID: "ord-4", PatientMRN: "MRN-2", Kind: model.OrderKindConsult}))

	orders, err := repo.List(ctx, &model.OrderFilters{PatientMRN: "MRN-1"})
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "ord-3", orders[0].ID)
	assert.Equal(t, "ord-1", orders[1].ID)
	assert.Equal(t, "ord-2", orders[2].ID)
}

func TestOrderRepository_ConcurrentAppend(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Append(ctx, &model.Order{ID: "ord-" + strconv.Itoa(i), Kind: model.OrderKindLab})
		}(i)
	}
	wg.Wait()

	orders, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, orders, 50)
}

func TestResultRepository_ListNewestFirst(t *testing.T) {
	repo := NewResultRepository(seed.Load(seedNow).Results)

	results, err := repo.List(context.Background(), &model.ResultFilters{PatientMRN: "MRN-1001"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "res-2001", results[0].ID)
	assert.Equal(t, "res-2003", results[2].ID)
}

func TestResultRepository_UnparsableTimestampsSortLast(t *testing.T) {
	repo := NewResultRepository(seed.Load(seedNow).Results)

	results, err := repo.List(context.Background(), &model.ResultFilters{PatientMRN: "MRN-1005"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "res-2012", results[len(results)-1].ID)
	assert.Equal(t, "yesterday 14:00", results[len(results)-1].ResultedAt)

	repo = NewResultRepository([]model.LabResult{
		{ID: "res-a", ResultedAt: "2026-03-14T09:00:00Z"},
		{ID: "res-b", ResultedAt: "2026-03-14 11:00:00+00"},
		{ID: "res-c", ResultedAt: "not a time"},
		{ID: "res-d", ResultedAt: "2026-03-14T10:00:00+02:00"},
	})
	results, err = repo.List(context.Background(), nil)
	require.NoError(t, err)
	ids := make([]string, 0, len(results))
	for _, res := range results {
		ids = append(ids, res.ID)
	}
	assert.Equal(t, []string{"res-b", "res-a", "res-d", "res-c"}, ids)
}

func TestDraftRepository_TransitionComparesStoredState(t *testing.T) {
	repo := NewDraftRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.OrderDraft{ID: "drf-1", State: model.DraftStateDrafting}))

	stale, err := repo.Get(ctx, "drf-1")
	require.NoError(t, err)

	moved := *stale
	moved.State = model.DraftStateSubmitted
	require.NoError(t, repo.Transition(ctx, &moved, model.DraftStateDrafting))

	stale.State = model.DraftStateAwaitingJustification
	err = repo.Transition(ctx, stale, model.DraftStateDrafting)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrConflict, appErr.Code)
	assert.ErrorIs(t, err, repository.ErrStaleDraft)

	got, err := repo.Get(ctx, "drf-1")
	require.NoError(t, err)
	assert.Equal(t, model.DraftStateSubmitted, got.State)

	err = repo.Transition(ctx, &model.OrderDraft{ID: "missing"}, model.DraftStateDrafting)
	assert.True(t, errors.IsNotFound(err))
}

func TestTaskRepository_StatusFilter(t *testing.T) {
	repo := NewTaskRepository(seed.Load(seedNow).Tasks)
	ctx := context.Background()

	open, err := repo.List(ctx, &model.TaskFilters{Status: "open"})
	require.NoError(t, err)
	assert.Len(t, open, 4)
	assert.Equal(t, "task-3003", open[0].ID)

	done, err := repo.List(ctx, &model.TaskFilters{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "task-3005", done[0].ID)
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	repo := NewOutboxRepository()
	ctx := context.Background()

	for _, et := range []string{model.EventOrderSubmitted, model.EventDraftCancelled} {
		require.NoError(t, repo.Create(ctx, &model.OutboxEvent{EventType: et, Payload: []byte(`{}`)}))
	}

	n, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pending, err := repo.GetPendingEvents(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.EventOrderSubmitted, pending[0].EventType)

	require.NoError(t, repo.UpdateStatus(ctx, pending[0].ID, model.OutboxStatusProcessed, nil))

	n, err = repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

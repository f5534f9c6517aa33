package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
	"github.com/jwalitptl/ed-orders/pkg/errors"
)

type draftRepository struct {
	mu     sync.RWMutex
	drafts map[string]model.OrderDraft
}

func NewDraftRepository() repository.DraftRepository {
	return &draftRepository{drafts: make(map[string]model.OrderDraft)}
}

func (r *draftRepository) Create(_ context.Context, draft *model.OrderDraft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drafts[draft.ID]; exists {
		return errors.Conflict("draft already exists", nil)
	}
	r.drafts[draft.ID] = *draft
	return nil
}

func (r *draftRepository) Get(_ context.Context, id string) (*model.OrderDraft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drafts[id]
	if !ok {
		return nil, errors.NotFound("draft", nil)
	}
	return &d, nil
}

func (r *draftRepository) Transition(_ context.Context, draft *model.OrderDraft, from model.DraftState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.drafts[draft.ID]
	if !ok {
		return errors.NotFound("draft", nil)
	}
	if stored.State != from {
		return errors.Conflict(fmt.Sprintf("draft is %s, not %s", stored.State, from), repository.ErrStaleDraft)
	}
	r.drafts[draft.ID] = *draft
	return nil
}

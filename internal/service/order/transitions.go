package order

import (
	stderrors "errors"
	"fmt"

	"github.com/jwalitptl/ed-orders/internal/model"
)

var (
	ErrInvalidTransition     = stderrors.New("invalid transition")
	ErrJustificationRequired = stderrors.New("justification is required")
	ErrNoDuplicateFinding    = stderrors.New("draft has no duplicate finding")
)

var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusInProgress, model.OrderStatusCancelled},
	model.OrderStatusInProgress: {model.OrderStatusCompleted, model.OrderStatusCancelled},
	model.OrderStatusCompleted:  {},
	model.OrderStatusCancelled:  {},
}

var draftTransitions = map[model.DraftState][]model.DraftState{
	model.DraftStateDrafting: {
		model.DraftStateSubmitted,
		model.DraftStateAwaitingJustification,
		model.DraftStateCancelled,
	},
	model.DraftStateAwaitingJustification: {
		model.DraftStateSubmitted,
		model.DraftStateCancelled,
		model.DraftStateRedirected,
	},
	model.DraftStateSubmitted:  {},
	model.DraftStateCancelled:  {},
	model.DraftStateRedirected: {},
}

// ValidateOrderTransition checks an order status change against the
// lifecycle table.
func ValidateOrderTransition(from, to model.OrderStatus) error {
	allowed, ok := orderTransitions[from]
	if !ok {
		return fmt.Errorf("unknown order status %q: %w", from, ErrInvalidTransition)
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("order cannot move from %s to %s: %w", from, to, ErrInvalidTransition)
}

// ValidateDraftTransition checks a draft state change against the
// submission workflow.
func ValidateDraftTransition(from, to model.DraftState) error {
	allowed, ok := draftTransitions[from]
	if !ok {
		return fmt.Errorf("unknown draft state %q: %w", from, ErrInvalidTransition)
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("draft cannot move from %s to %s: %w", from, to, ErrInvalidTransition)
}

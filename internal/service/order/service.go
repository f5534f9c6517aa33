package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
	"github.com/jwalitptl/ed-orders/internal/service/event"
	"github.com/jwalitptl/ed-orders/pkg/errors"
	"github.com/jwalitptl/ed-orders/pkg/logger"
	"github.com/jwalitptl/ed-orders/pkg/metrics"
)

// DuplicateChecker runs the duplicate-test check for a patient.
type DuplicateChecker interface {
	Check(ctx context.Context, mrn string, candidates []string) model.DuplicateFinding
}

// Auditor records clinician decisions.
type Auditor interface {
	Record(ctx context.Context, entry model.AuditEntry)
}

type Service struct {
	drafts   repository.DraftRepository
	orders   repository.OrderRepository
	patients repository.PatientRepository
	checker  DuplicateChecker
	events   event.Emitter
	auditor  Auditor
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	newID    func(prefix string) string
}

type Deps struct {
	Drafts   repository.DraftRepository
	Orders   repository.OrderRepository
	Patients repository.PatientRepository
	Checker  DuplicateChecker
	Events   event.Emitter
	Auditor  Auditor
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewNop()
	}
	return &Service{
		drafts:   d.Drafts,
		orders:   d.Orders,
		patients: d.Patients,
		checker:  d.Checker,
		events:   d.Events,
		auditor:  d.Auditor,
		logger:   d.Logger.WithComponent("order"),
		metrics:  d.Metrics,
		now:      time.Now,
		newID:    func(prefix string) string { return prefix + "-" + uuid.NewString() },
	}
}

// CreateDraft opens a draft for the patient. The per-kind fields of req are
// folded into the matching detail.
func (s *Service) CreateDraft(ctx context.Context, clinicianID string, req *model.CreateDraftRequest) (*model.OrderDraft, error) {
	if _, err := s.patients.Get(ctx, req.PatientMRN); err != nil {
		return nil, err
	}

	detail, err := buildDetail(req)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = model.OrderPriorityRoutine
	}

	now := s.now()
	draft := &model.OrderDraft{
		ID:         s.newID("draft"),
		PatientMRN: req.PatientMRN,
		Kind:       req.Kind,
		Priority:   priority,
		Detail:     detail,
		State:      model.DraftStateDrafting,
		CreatedBy:  clinicianID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return draft, nil
}

func buildDetail(req *model.CreateDraftRequest) (model.OrderDetail, error) {
	switch req.Kind {
	case model.OrderKindLab:
		tests := normalizeTests(req.Tests)
		if len(tests) == 0 {
			return nil, errors.BadRequest("lab orders need at least one test", nil)
		}
		return model.LabDetail{Tests: tests}, nil
	case model.OrderKindMedication:
		return model.MedicationDetail{
			Drug:      strings.TrimSpace(req.Drug),
			Dose:      strings.TrimSpace(req.Dose),
			Route:     strings.TrimSpace(req.Route),
			Frequency: strings.TrimSpace(req.Frequency),
		}, nil
	case model.OrderKindImaging:
		return model.ImagingDetail{
			Modality: strings.TrimSpace(req.Modality),
			BodyPart: strings.TrimSpace(req.BodyPart),
			Contrast: req.Contrast,
		}, nil
	case model.OrderKindConsult:
		return model.ConsultDetail{
			Service: strings.TrimSpace(req.Service),
			Reason:  strings.TrimSpace(req.Reason),
		}, nil
	default:
		return nil, errors.BadRequest(fmt.Sprintf("unknown order kind %q", req.Kind), nil)
	}
}

// normalizeTests trims names and drops blanks. Order and repeats are kept;
// the duplicate check reports repeats once.
func normalizeTests(tests []string) []string {
	out := make([]string, 0, len(tests))
	for _, t := range tests {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) GetDraft(ctx context.Context, id string) (*model.OrderDraft, error) {
	return s.drafts.Get(ctx, id)
}

// Submit runs the duplicate check for lab drafts. A clean draft becomes an
// order; a draft with duplicates waits for a justification, a cancel or a
// redirect.
func (s *Service) Submit(ctx context.Context, clinicianID, draftID string) (*model.Submission, error) {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.State != model.DraftStateDrafting {
		return nil, transitionError(draft.State, model.DraftStateSubmitted)
	}

	if lab, ok := draft.Detail.(model.LabDetail); ok {
		finding := s.checker.Check(ctx, draft.PatientMRN, lab.Tests)
		if finding.HasDuplicates() {
			draft.Finding = &finding
			if err := s.moveDraft(ctx, draft, model.DraftStateAwaitingJustification); err != nil {
				return nil, err
			}
			return &model.Submission{Draft: draft}, nil
		}
	}

	order, err := s.placeOrder(ctx, clinicianID, draft, "")
	if err != nil {
		return nil, err
	}
	return &model.Submission{Draft: draft, Order: order}, nil
}

// Justify submits a draft held for duplicates, recording the override.
func (s *Service) Justify(ctx context.Context, clinicianID, draftID, justification string) (*model.Submission, error) {
	justification = strings.TrimSpace(justification)
	if justification == "" {
		return nil, errors.BadRequest(ErrJustificationRequired.Error(), ErrJustificationRequired)
	}

	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.State != model.DraftStateAwaitingJustification {
		return nil, transitionError(draft.State, model.DraftStateSubmitted)
	}

	draft.Justification = justification
	order, err := s.placeOrder(ctx, clinicianID, draft, justification)
	if err != nil {
		return nil, err
	}

	s.metrics.DuplicateOverrides.Inc()
	finding := findingOf(draft)
	s.auditor.Record(ctx, model.AuditEntry{
		Action:        model.AuditActionDuplicateOverride,
		ClinicianID:   clinicianID,
		PatientMRN:    draft.PatientMRN,
		DraftID:       draft.ID,
		OrderID:       order.ID,
		Duplicates:    finding.DuplicateTestNames,
		Justification: justification,
	})
	s.emit(ctx, model.EventDuplicateOverridden, event.DuplicateOverridden{
		DraftID:           draft.ID,
		OrderID:           order.ID,
		PatientMRN:        draft.PatientMRN,
		Duplicates:        finding.DuplicateTestNames,
		MostRecentMatchID: finding.MostRecentMatchID,
		Justification:     justification,
		OverriddenBy:      clinicianID,
	})

	return &model.Submission{Draft: draft, Order: order}, nil
}

// Cancel abandons a draft that has not been submitted.
func (s *Service) Cancel(ctx context.Context, clinicianID, draftID string) (*model.OrderDraft, error) {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := s.moveDraft(ctx, draft, model.DraftStateCancelled); err != nil {
		return nil, err
	}
	s.closeDraft(ctx, clinicianID, draft, model.AuditActionDraftCancelled, model.EventDraftCancelled)
	return draft, nil
}

// Redirect closes a draft held for duplicates and points the clinician at
// the most recent matching result instead.
func (s *Service) Redirect(ctx context.Context, clinicianID, draftID string) (*model.OrderDraft, error) {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := ValidateDraftTransition(draft.State, model.DraftStateRedirected); err != nil {
		return nil, errors.Conflict(err.Error(), err)
	}
	finding := findingOf(draft)
	if finding.MostRecentMatchID == "" {
		return nil, errors.Conflict(ErrNoDuplicateFinding.Error(), ErrNoDuplicateFinding)
	}

	draft.RedirectTo = finding.MostRecentMatchID
	if err := s.moveDraft(ctx, draft, model.DraftStateRedirected); err != nil {
		return nil, err
	}
	s.closeDraft(ctx, clinicianID, draft, model.AuditActionDraftRedirected, model.EventDraftRedirected)
	return draft, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, filters *model.OrderFilters) ([]*model.Order, error) {
	orders, err := s.orders.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order along its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, clinicianID, id string, status model.OrderStatus) (*model.Order, error) {
	current, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateOrderTransition(current.Status, status); err != nil {
		return nil, errors.Conflict(err.Error(), err)
	}

	updated, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.auditor.Record(ctx, model.AuditEntry{
		Action:      model.AuditActionOrderStatus,
		ClinicianID: clinicianID,
		PatientMRN:  updated.PatientMRN,
		OrderID:     updated.ID,
		Detail:      fmt.Sprintf("%s -> %s", current.Status, status),
	})
	s.emit(ctx, model.EventOrderStatusChanged, event.OrderStatusChanged{
		OrderID:    updated.ID,
		PatientMRN: updated.PatientMRN,
		From:       current.Status,
		To:         status,
		ChangedBy:  clinicianID,
		ChangedAt:  updated.UpdatedAt,
	})
	return updated, nil
}

// placeOrder marks the draft submitted, then appends its order. The draft
// move is a compare-and-swap, so only one request can place an order for a
// given draft.
func (s *Service) placeOrder(ctx context.Context, clinicianID string, draft *model.OrderDraft, justification string) (*model.Order, error) {
	if err := ValidateDraftTransition(draft.State, model.DraftStateSubmitted); err != nil {
		return nil, errors.Conflict(err.Error(), err)
	}

	now := s.now()
	order := &model.Order{
		ID:            s.newID("ord"),
		PatientMRN:    draft.PatientMRN,
		Kind:          draft.Kind,
		Status:        model.OrderStatusPending,
		Priority:      draft.Priority,
		OrderedBy:     clinicianID,
		OrderedAt:     now,
		UpdatedAt:     now,
		Justification: justification,
		Detail:        draft.Detail,
	}

	prev := *draft
	draft.OrderID = order.ID
	if err := s.moveDraft(ctx, draft, model.DraftStateSubmitted); err != nil {
		*draft = prev
		return nil, err
	}
	if err := s.orders.Append(ctx, order); err != nil {
		if rbErr := s.drafts.Transition(ctx, &prev, model.DraftStateSubmitted); rbErr != nil {
			s.logger.Error(rbErr, "failed to roll back draft", "draft_id", draft.ID)
		}
		return nil, fmt.Errorf("failed to append order: %w", err)
	}

	s.metrics.DraftOutcomes.WithLabelValues(string(model.DraftStateSubmitted)).Inc()
	s.metrics.OrdersSubmitted.WithLabelValues(string(order.Kind)).Inc()
	s.logger.Info("order submitted",
		"order_id", order.ID,
		"draft_id", draft.ID,
		"patient_mrn", order.PatientMRN,
		"kind", string(order.Kind),
		"overridden", justification != "")
	s.emit(ctx, model.EventOrderSubmitted, event.OrderSubmitted{
		Order:       order,
		DraftID:     draft.ID,
		Overridden:  justification != "",
		SubmittedBy: clinicianID,
	})
	return order, nil
}

// moveDraft validates the move against the caller's copy and stores it only
// if no other request has moved the draft since it was read.
func (s *Service) moveDraft(ctx context.Context, draft *model.OrderDraft, to model.DraftState) error {
	from := draft.State
	if err := ValidateDraftTransition(from, to); err != nil {
		return errors.Conflict(err.Error(), err)
	}
	draft.State = to
	draft.UpdatedAt = s.now()
	if err := s.drafts.Transition(ctx, draft, from); err != nil {
		draft.State = from
		if _, ok := errors.As(err); ok {
			return err
		}
		return fmt.Errorf("failed to update draft: %w", err)
	}
	if to.Terminal() && to != model.DraftStateSubmitted {
		s.metrics.DraftOutcomes.WithLabelValues(string(to)).Inc()
	}
	return nil
}

func (s *Service) closeDraft(ctx context.Context, clinicianID string, draft *model.OrderDraft, action, eventType string) {
	finding := findingOf(draft)
	s.auditor.Record(ctx, model.AuditEntry{
		Action:      action,
		ClinicianID: clinicianID,
		PatientMRN:  draft.PatientMRN,
		DraftID:     draft.ID,
		Duplicates:  finding.DuplicateTestNames,
		Detail:      draft.RedirectTo,
	})
	s.emit(ctx, eventType, event.DraftClosed{
		DraftID:    draft.ID,
		PatientMRN: draft.PatientMRN,
		State:      draft.State,
		Duplicates: finding.DuplicateTestNames,
		RedirectTo: draft.RedirectTo,
		ClosedBy:   clinicianID,
	})
}

// emit never fails the caller; the order is already in the store.
func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "failed to queue event", "event_type", eventType)
	}
}

func findingOf(draft *model.OrderDraft) model.DuplicateFinding {
	if draft.Finding == nil {
		return model.DuplicateFinding{}
	}
	return *draft.Finding
}

func transitionError(from, to model.DraftState) error {
	err := ValidateDraftTransition(from, to)
	if err == nil {
		err = fmt.Errorf("draft cannot move from %s to %s: %w", from, to, ErrInvalidTransition)
	}
	return errors.Conflict(err.Error(), err)
}

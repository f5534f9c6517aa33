package model

import (
	"time"
)

// DuplicateFinding is the output of a duplicate-test check. It is computed
// on every submission attempt and never stored on its own.
type DuplicateFinding struct {
	DuplicateTestNames []string   `json:"duplicate_test_names"`
	MostRecentMatchID  string     `json:"most_recent_match_id,omitempty"`
	MostRecentMatchAt  *time.Time `json:"most_recent_match_at,omitempty"`
	// Unparsable lists history record ids whose timestamp could not be read.
	Unparsable []string `json:"unparsable,omitempty"`
}

func (f DuplicateFinding) HasDuplicates() bool {
	return len(f.DuplicateTestNames) > 0
}

type DraftState string

const (
	DraftStateDrafting              DraftState = "drafting"
	DraftStateAwaitingJustification DraftState = "awaiting-justification"
	DraftStateSubmitted             DraftState = "submitted"
	DraftStateCancelled             DraftState = "cancelled"
	DraftStateRedirected            DraftState = "redirected"
)

// Terminal reports whether no further transitions are possible.
func (s DraftState) Terminal() bool {
	switch s {
	case DraftStateSubmitted, DraftStateCancelled, DraftStateRedirected:
		return true
	}
	return false
}

// OrderDraft tracks one order through the submission workflow.
type OrderDraft struct {
	ID            string            `json:"id"`
	PatientMRN    string            `json:"patient_mrn"`
	Kind          OrderKind         `json:"kind"`
	Priority      OrderPriority     `json:"priority"`
	Detail        OrderDetail       `json:"detail"`
	State         DraftState        `json:"state"`
	CreatedBy     string            `json:"created_by"`
	Finding       *DuplicateFinding `json:"finding,omitempty"`
	Justification string            `json:"justification,omitempty"`
	OrderID       string            `json:"order_id,omitempty"`
	RedirectTo    string            `json:"redirect_to,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// CreateDraftRequest carries the per-kind fields flat; the service folds
// them into the matching OrderDetail.
type CreateDraftRequest struct {
	PatientMRN string        `json:"patient_mrn" binding:"required"`
	Kind       OrderKind     `json:"kind" binding:"required,order_kind"`
	Priority   OrderPriority `json:"priority" binding:"omitempty,oneof=routine urgent stat"`

	Tests []string `json:"tests" binding:"required_if=Kind lab,dive,required"`

	Drug      string `json:"drug" binding:"required_if=Kind medication"`
	Dose      string `json:"dose" binding:"required_if=Kind medication"`
	Route     string `json:"route"`
	Frequency string `json:"frequency"`

	Modality string `json:"modality" binding:"required_if=Kind imaging"`
	BodyPart string `json:"body_part" binding:"required_if=Kind imaging"`
	Contrast bool   `json:"contrast"`

	Service string `json:"service" binding:"required_if=Kind consult"`
	Reason  string `json:"reason"`
}

type JustifyRequest struct {
	Justification string `json:"justification" binding:"required"`
}

type DuplicateCheckRequest struct {
	PatientMRN string   `json:"patient_mrn" binding:"required"`
	Tests      []string `json:"tests" binding:"required,min=1,dive,required"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required,order_status"`
}

// Submission is the outcome of a submit or justify step. Order is nil while
// the draft is waiting for a justification.
type Submission struct {
	Draft *OrderDraft `json:"draft"`
	Order *Order      `json:"order,omitempty"`
}

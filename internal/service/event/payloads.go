package event

import (
	"time"

	"github.com/jwalitptl/ed-orders/internal/model"
)

// OrderSubmitted is published once an order is appended to the store.
type OrderSubmitted struct {
	Order       *model.Order `json:"order"`
	DraftID     string       `json:"draft_id"`
	Overridden  bool         `json:"overridden"`
	SubmittedBy string       `json:"submitted_by"`
}

type OrderStatusChanged struct {
	OrderID    string            `json:"order_id"`
	PatientMRN string            `json:"patient_mrn"`
	From       model.OrderStatus `json:"from"`
	To         model.OrderStatus `json:"to"`
	ChangedBy  string            `json:"changed_by"`
	ChangedAt  time.Time         `json:"changed_at"`
}

type DuplicateOverridden struct {
	DraftID           string   `json:"draft_id"`
	OrderID           string   `json:"order_id"`
	PatientMRN        string   `json:"patient_mrn"`
	Duplicates        []string `json:"duplicates"`
	MostRecentMatchID string   `json:"most_recent_match_id"`
	Justification     string   `json:"justification"`
	OverriddenBy      string   `json:"overridden_by"`
}

// DraftClosed covers cancelled and redirected drafts.
type DraftClosed struct {
	DraftID    string           `json:"draft_id"`
	PatientMRN string           `json:"patient_mrn"`
	State      model.DraftState `json:"state"`
	Duplicates []string         `json:"duplicates,omitempty"`
	RedirectTo string           `json:"redirect_to,omitempty"`
	ClosedBy   string           `json:"closed_by"`
}

package model

import (
	"time"
)

const (
	AuditActionDuplicateOverride = "duplicate_override"
	AuditActionDraftCancelled    = "draft_cancelled"
	AuditActionDraftRedirected   = "draft_redirected"
	AuditActionOrderStatus       = "order_status"
)

// AuditEntry records a clinician decision around a submission.
type AuditEntry struct {
	Action        string    `json:"action"`
	ClinicianID   string    `json:"clinician_id"`
	PatientMRN    string    `json:"patient_mrn"`
	DraftID       string    `json:"draft_id,omitempty"`
	OrderID       string    `json:"order_id,omitempty"`
	Duplicates    []string  `json:"duplicates,omitempty"`
	Justification string    `json:"justification,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	At            time.Time `json:"at"`
}

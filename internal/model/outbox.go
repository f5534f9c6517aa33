package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Event types published for the order workflow.
const (
	EventOrderSubmitted      = "order.submitted"
	EventOrderStatusChanged  = "order.status_changed"
	EventDuplicateOverridden = "order.duplicate_overridden"
	EventDraftCancelled      = "order.draft_cancelled"
	EventDraftRedirected     = "order.draft_redirected"
)

type OutboxEvent struct {
	ID           uuid.UUID         `json:"id"`
	EventType    string            `json:"event_type"`
	Payload      json.RawMessage   `json:"payload"`
	Headers      map[string]string `json:"headers,omitempty"`
	Status       OutboxStatus      `json:"status"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	ProcessedAt  *time.Time        `json:"processed_at,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
	RetryCount   int               `json:"retry_count"`
}

package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type OrderKind string

const (
	OrderKindLab        OrderKind = "lab"
	OrderKindMedication OrderKind = "medication"
	OrderKindImaging    OrderKind = "imaging"
	OrderKindConsult    OrderKind = "consult"
)

func (k OrderKind) Valid() bool {
	switch k {
	case OrderKindLab, OrderKindMedication, OrderKindImaging, OrderKindConsult:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in-progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type OrderPriority string

const (
	OrderPriorityRoutine OrderPriority = "routine"
	OrderPriorityUrgent  OrderPriority = "urgent"
	OrderPriorityStat    OrderPriority = "stat"
)

// OrderDetail is the kind-specific payload of an order. The set of
// implementations is closed: LabDetail, MedicationDetail, ImagingDetail and
// ConsultDetail.
type OrderDetail interface {
	Kind() OrderKind
}

type LabDetail struct {
	Tests []string `json:"tests"`
}

func (LabDetail) Kind() OrderKind { return OrderKindLab }

type MedicationDetail struct {
	Drug      string `json:"drug"`
	Dose      string `json:"dose"`
	Route     string `json:"route"`
	Frequency string `json:"frequency"`
}

func (MedicationDetail) Kind() OrderKind { return OrderKindMedication }

type ImagingDetail struct {
	Modality string `json:"modality"`
	BodyPart string `json:"body_part"`
	Contrast bool   `json:"contrast"`
}

func (ImagingDetail) Kind() OrderKind { return OrderKindImaging }

type ConsultDetail struct {
	Service string `json:"service"`
	Reason  string `json:"reason"`
}

func (ConsultDetail) Kind() OrderKind { return OrderKindConsult }

type Order struct {
	ID            string        `json:"id"`
	PatientMRN    string        `json:"patient_mrn"`
	Kind          OrderKind     `json:"kind"`
	Status        OrderStatus   `json:"status"`
	Priority      OrderPriority `json:"priority"`
	OrderedBy     string        `json:"ordered_by"`
	OrderedAt     time.Time     `json:"ordered_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Justification string        `json:"justification,omitempty"`
	Detail        OrderDetail   `json:"-"`
}

type orderJSON struct {
	ID            string          `json:"id"`
	PatientMRN    string          `json:"patient_mrn"`
	Kind          OrderKind       `json:"kind"`
	Status        OrderStatus     `json:"status"`
	Priority      OrderPriority   `json:"priority"`
	OrderedBy     string          `json:"ordered_by"`
	OrderedAt     time.Time       `json:"ordered_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Justification string          `json:"justification,omitempty"`
	Detail        json.RawMessage `json:"detail"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	detail, err := json.Marshal(o.Detail)
	if err != nil {
		return nil, err
	}
	return json.Marshal(orderJSON{
		ID:            o.ID,
		PatientMRN:    o.PatientMRN,
		Kind:          o.Kind,
		Status:        o.Status,
		Priority:      o.Priority,
		OrderedBy:     o.OrderedBy,
		OrderedAt:     o.OrderedAt,
		UpdatedAt:     o.UpdatedAt,
		Justification: o.Justification,
		Detail:        detail,
	})
}

func (o *Order) UnmarshalJSON(data []byte) error {
	var raw orderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	detail, err := DecodeOrderDetail(raw.Kind, raw.Detail)
	if err != nil {
		return err
	}
	*o = Order{
		ID:            raw.ID,
		PatientMRN:    raw.PatientMRN,
		Kind:          raw.Kind,
		Status:        raw.Status,
		Priority:      raw.Priority,
		OrderedBy:     raw.OrderedBy,
		OrderedAt:     raw.OrderedAt,
		UpdatedAt:     raw.UpdatedAt,
		Justification: raw.Justification,
		Detail:        detail,
	}
	return nil
}

// DecodeOrderDetail resolves the detail payload for kind.
func DecodeOrderDetail(kind OrderKind, data json.RawMessage) (OrderDetail, error) {
	var (
		detail OrderDetail
		err    error
	)
	switch kind {
	case OrderKindLab:
		var d LabDetail
		err = decodeDetail(data, &d)
		detail = d
	case OrderKindMedication:
		var d MedicationDetail
		err = decodeDetail(data, &d)
		detail = d
	case OrderKindImaging:
		var d ImagingDetail
		err = decodeDetail(data, &d)
		detail = d
	case OrderKindConsult:
		var d ConsultDetail
		err = decodeDetail(data, &d)
		detail = d
	default:
		return nil, fmt.Errorf("unknown order kind: %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s detail: %w", kind, err)
	}
	return detail, nil
}

func decodeDetail(data json.RawMessage, v interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Tests returns the lab tests on the order, or nil for other kinds.
func (o *Order) Tests() []string {
	if d, ok := o.Detail.(LabDetail); ok {
		return d.Tests
	}
	return nil
}

type OrderFilters struct {
	PatientMRN string      `form:"patient"`
	Kind       OrderKind   `form:"kind"`
	Status     OrderStatus `form:"status"`
}

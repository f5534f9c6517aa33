package model

import (
	"time"
)

type PatientStatus string

const (
	PatientStatusWaiting    PatientStatus = "waiting"
	PatientStatusRoomed     PatientStatus = "roomed"
	PatientStatusAdmitted   PatientStatus = "admitted"
	PatientStatusDischarged PatientStatus = "discharged"
)

func (s PatientStatus) Valid() bool {
	switch s {
	case PatientStatusWaiting, PatientStatusRoomed, PatientStatusAdmitted, PatientStatusDischarged:
		return true
	}
	return false
}

// Patient is a tracking-board entry, keyed by medical record number.
type Patient struct {
	MRN            string        `json:"mrn" db:"mrn"`
	Name           string        `json:"name" db:"name"`
	Age            int           `json:"age" db:"age"`
	Sex            string        `json:"sex" db:"sex"`
	Bed            string        `json:"bed,omitempty" db:"bed"`
	ChiefComplaint string        `json:"chief_complaint" db:"chief_complaint"`
	Acuity         int           `json:"acuity" db:"acuity"`
	Status         PatientStatus `json:"status" db:"status"`
	AssignedTo     string        `json:"assigned_to,omitempty" db:"assigned_to"`
	ArrivedAt      time.Time     `json:"arrived_at" db:"arrived_at"`
}

type PatientFilters struct {
	SearchTerm string        `json:"search_term" form:"q"`
	Status     PatientStatus `json:"status" form:"status"`
	AssignedTo string        `json:"assigned_to" form:"assigned_to"`
}

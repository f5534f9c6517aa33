package model

import (
	"time"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID          string       `json:"id"`
	PatientMRN  string       `json:"patient_mrn,omitempty"`
	Title       string       `json:"title"`
	AssignedTo  string       `json:"assigned_to"`
	Priority    TaskPriority `json:"priority"`
	DueAt       time.Time    `json:"due_at"`
	Completed   bool         `json:"completed"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

type TaskFilters struct {
	AssignedTo string `form:"assigned_to"`
	PatientMRN string `form:"patient"`
	// Status is "open", "completed" or empty for both.
	Status string `form:"status" binding:"omitempty,oneof=open completed"`
}

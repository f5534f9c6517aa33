package model

import (
	"time"
)

// Session is the stand-in for the dashboard's locally stored login. No
// credentials are involved.
type Session struct {
	Token       string    `json:"token"`
	ClinicianID string    `json:"clinician_id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type CreateSessionRequest struct {
	ClinicianID string `json:"clinician_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Role        string `json:"role" binding:"omitempty,oneof=physician nurse resident pa"`
}

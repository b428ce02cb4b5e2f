package appointment

import (
	"errors"
	"time"
)

// Status constants
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Domain errors
var (
	ErrNotFound      = errors.New("appointment not found")
	ErrEmptyTenant   = errors.New("tenant_id is required")
	ErrInvalidRange  = errors.New("appointment end time must be after start time")
	ErrNegativePrice = errors.New("appointment price cannot be negative")
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Appointment is a private session between an instructor and a member.
type Appointment struct {
	ID           string
	TenantID     string
	InstructorID string
	MemberID     string
	ServiceName  string
	StartTime    time.Time
	EndTime      time.Time
	Price        int64 // cents
	Status       string
}

// Validate checks if the Appointment has valid data.
// PRE: Appointment struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Appointment) Validate() error {
	if a.TenantID == "" {
		return ErrEmptyTenant
	}
	if !a.EndTime.After(a.StartTime) {
		return ErrInvalidRange
	}
	if a.Price < 0 {
		return ErrNegativePrice
	}
	switch a.Status {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return nil
	}
	return ErrInvalidStatus
}

// DurationMinutes is derived from the end and start times.
func (a *Appointment) DurationMinutes() int64 {
	return int64(a.EndTime.Sub(a.StartTime) / time.Minute)
}

// Title is the label shown on payroll line items.
func (a *Appointment) Title() string {
	if a.ServiceName == "" {
		return "Appointment"
	}
	return a.ServiceName
}

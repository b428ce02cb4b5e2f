package classevent

import (
	"errors"
	"time"
)

// Status constants
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Domain errors
var (
	ErrNotFound        = errors.New("class not found")
	ErrEmptyTitle      = errors.New("class title cannot be empty")
	ErrEmptyTenant     = errors.New("tenant_id is required")
	ErrInvalidRange    = errors.New("class end time must be after start time")
	ErrNegativePrice   = errors.New("class price cannot be negative")
	ErrInvalidStatus   = errors.New("status must be 'active' or 'cancelled'")
	ErrEmptyInstructor = errors.New("instructor_id is required")
)

// ClassEvent is one scheduled occurrence of a class taught by an instructor.
type ClassEvent struct {
	ID           string
	TenantID     string
	InstructorID string
	Title        string
	StartTime    time.Time
	EndTime      time.Time
	Price        int64 // drop-in price in cents
	Status       string
}

// Validate checks if the ClassEvent has valid data.
// PRE: ClassEvent struct is populated
// POST: Returns nil if valid, error otherwise
func (c *ClassEvent) Validate() error {
	if c.TenantID == "" {
		return ErrEmptyTenant
	}
	if c.InstructorID == "" {
		return ErrEmptyInstructor
	}
	if c.Title == "" {
		return ErrEmptyTitle
	}
	if !c.EndTime.After(c.StartTime) {
		return ErrInvalidRange
	}
	if c.Price < 0 {
		return ErrNegativePrice
	}
	if c.Status != StatusActive && c.Status != StatusCancelled {
		return ErrInvalidStatus
	}
	return nil
}

// DurationMinutes returns the scheduled length of the class in whole minutes.
func (c *ClassEvent) DurationMinutes() int64 {
	return int64(c.EndTime.Sub(c.StartTime) / time.Minute)
}

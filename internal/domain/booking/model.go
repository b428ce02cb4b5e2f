package booking

import (
	"errors"
	"time"
)

// Status constants
const (
	StatusConfirmed = "confirmed"
	StatusWaitlist  = "waitlisted"
	StatusCancelled = "cancelled"
)

// Payment method constants
const (
	PaymentDropIn = "drop_in"
	PaymentCredit = "credit"
)

// Domain errors
var (
	ErrInvalidStatus  = errors.New("invalid booking status")
	ErrInvalidPayment = errors.New("payment method must be 'drop_in' or 'credit'")
	ErrMissingPack    = errors.New("credit bookings must reference a class pack")
	ErrInvalidPack    = errors.New("class pack must have at least one initial credit")
)

// Booking is a member's place in a class.
type Booking struct {
	ID            string
	TenantID      string
	ClassID       string
	MemberID      string
	Status        string
	PaymentMethod string
	UsedPackID    string // set when PaymentMethod is credit
	CreatedAt     time.Time
}

// Validate checks if the Booking has valid data.
// PRE: Booking struct is populated
// POST: Returns nil if valid, error otherwise
func (b *Booking) Validate() error {
	switch b.Status {
	case StatusConfirmed, StatusWaitlist, StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	switch b.PaymentMethod {
	case PaymentDropIn:
	case PaymentCredit:
		if b.UsedPackID == "" {
			return ErrMissingPack
		}
	default:
		return ErrInvalidPayment
	}
	return nil
}

// IsConfirmed reports whether the booking counts toward revenue.
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// ClassPack is a prepaid bundle of class credits.
type ClassPack struct {
	ID             string
	TenantID       string
	MemberID       string
	Price          int64 // cents paid for the whole pack
	InitialCredits int
}

// CreditValue returns the revenue attributed to one credit of the pack.
// PRE: none
// POST: Returns ErrInvalidPack when the pack has no credits
func (p *ClassPack) CreditValue() (float64, error) {
	if p.InitialCredits <= 0 {
		return 0, ErrInvalidPack
	}
	return float64(p.Price) / float64(p.InitialCredits), nil
}

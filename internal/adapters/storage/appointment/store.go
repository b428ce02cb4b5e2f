package appointment

import (
	"context"
	"time"

	domain "studio/internal/domain/appointment"
)

// Store persists Appointment state.
type Store interface {
	Save(ctx context.Context, value domain.Appointment) error
	ListByRange(ctx context.Context, tenantID string, filter RangeFilter) ([]domain.Appointment, error)
}

// RangeFilter selects appointments whose start time falls in [Start, End).
type RangeFilter struct {
	Start        time.Time
	End          time.Time
	InstructorID string
	Status       string
}

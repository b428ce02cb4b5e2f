package classevent

import (
	"context"
	"time"

	domain "studio/internal/domain/classevent"
)

// Store persists ClassEvent state.
type Store interface {
	GetByID(ctx context.Context, tenantID, id string) (domain.ClassEvent, error)
	Save(ctx context.Context, value domain.ClassEvent) error
	ListByRange(ctx context.Context, tenantID string, filter RangeFilter) ([]domain.ClassEvent, error)
}

// RangeFilter selects classes whose start time falls in [Start, End).
type RangeFilter struct {
	Start        time.Time
	End          time.Time
	InstructorID string // empty means every instructor
	Status       string // empty means every status
}

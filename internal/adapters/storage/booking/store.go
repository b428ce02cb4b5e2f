package booking

import (
	"context"

	domain "studio/internal/domain/booking"
)

// Store persists bookings and the class packs they draw credits from.
type Store interface {
	Save(ctx context.Context, value domain.Booking) error
	SavePack(ctx context.Context, value domain.ClassPack) error
	ListConfirmedByClassIDs(ctx context.Context, tenantID string, classIDs []string) ([]domain.Booking, error)
	GetPacks(ctx context.Context, tenantID string, ids []string) (map[string]domain.ClassPack, error)
}

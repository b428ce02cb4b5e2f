package projections

import (
	"context"
	"fmt"

	domainBooking "studio/internal/domain/booking"
	domainClass "studio/internal/domain/classevent"
	domainPayroll "studio/internal/domain/payroll"
)

// PayrollBookingStore defines the booking reads needed to reconstruct class revenue.
type PayrollBookingStore interface {
	ListConfirmedByClassIDs(ctx context.Context, tenantID string, classIDs []string) ([]domainBooking.Booking, error)
	GetPacks(ctx context.Context, tenantID string, ids []string) (map[string]domainBooking.ClassPack, error)
}

// classRevenues reconstructs the revenue of every class with one bookings query and one packs query.
// Both percentage pay and profitability go through here.
// PRE: classes belong to tenantID
// POST: Returns one Revenue per class ID
func classRevenues(ctx context.Context, tenantID string, classes []domainClass.ClassEvent, store PayrollBookingStore) (map[string]domainPayroll.Revenue, error) {
	out := make(map[string]domainPayroll.Revenue, len(classes))
	if len(classes) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}
	bookings, err := store.ListConfirmedByClassIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	byClass := make(map[string][]domainBooking.Booking)
	seenPack := make(map[string]bool)
	var packIDs []string
	for _, b := range bookings {
		byClass[b.ClassID] = append(byClass[b.ClassID], b)
		if b.PaymentMethod == domainBooking.PaymentCredit && b.UsedPackID != "" && !seenPack[b.UsedPackID] {
			seenPack[b.UsedPackID] = true
			packIDs = append(packIDs, b.UsedPackID)
		}
	}

	packs, err := store.GetPacks(ctx, tenantID, packIDs)
	if err != nil {
		return nil, fmt.Errorf("load class packs: %w", err)
	}

	for _, c := range classes {
		rev, err := domainPayroll.ClassRevenue(c, byClass[c.ID], packs)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", c.ID, err)
		}
		out[c.ID] = rev
	}
	return out, nil
}

package projections

import (
	"context"
	"time"

	appointmentStore "studio/internal/adapters/storage/appointment"
	classStore "studio/internal/adapters/storage/classevent"
	memberStore "studio/internal/adapters/storage/member"
	payrollStore "studio/internal/adapters/storage/payroll"
	domainAppointment "studio/internal/domain/appointment"
	domainBooking "studio/internal/domain/booking"
	domainClass "studio/internal/domain/classevent"
	domainMember "studio/internal/domain/member"
	domainPayroll "studio/internal/domain/payroll"
)

var (
	periodStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
)

type mockConfigReader struct {
	configs []domainPayroll.Config
}

// List returns seeded configs, optionally only active ones.
// PRE: none
// POST: Returns configs in seeded order
func (m *mockConfigReader) List(_ context.Context, _ string, activeOnly bool) ([]domainPayroll.Config, error) {
	var out []domainPayroll.Config
	for _, c := range m.configs {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type mockClassStore struct {
	classes []domainClass.ClassEvent
}

// ListByRange filters seeded classes the way the SQLite store does.
// PRE: filter has a valid range
// POST: Returns matching classes
func (m *mockClassStore) ListByRange(_ context.Context, _ string, f classStore.RangeFilter) ([]domainClass.ClassEvent, error) {
	var out []domainClass.ClassEvent
	for _, c := range m.classes {
		if c.StartTime.Before(f.Start) || !c.StartTime.Before(f.End) {
			continue
		}
		if f.InstructorID != "" && c.InstructorID != f.InstructorID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type mockAppointmentStore struct {
	appointments []domainAppointment.Appointment
}

// ListByRange filters seeded appointments the way the SQLite store does.
// PRE: filter has a valid range
// POST: Returns matching appointments
func (m *mockAppointmentStore) ListByRange(_ context.Context, _ string, f appointmentStore.RangeFilter) ([]domainAppointment.Appointment, error) {
	var out []domainAppointment.Appointment
	for _, a := range m.appointments {
		if a.StartTime.Before(f.Start) || !a.StartTime.Before(f.End) {
			continue
		}
		if f.InstructorID != "" && a.InstructorID != f.InstructorID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type mockBookingStore struct {
	bookings []domainBooking.Booking
	packs    map[string]domainBooking.ClassPack
}

// ListConfirmedByClassIDs returns confirmed seeded bookings for the classes.
// PRE: none
// POST: Returns matching bookings
func (m *mockBookingStore) ListConfirmedByClassIDs(_ context.Context, _ string, classIDs []string) ([]domainBooking.Booking, error) {
	want := make(map[string]bool, len(classIDs))
	for _, id := range classIDs {
		want[id] = true
	}
	var out []domainBooking.Booking
	for _, b := range m.bookings {
		if want[b.ClassID] && b.Status == domainBooking.StatusConfirmed {
			out = append(out, b)
		}
	}
	return out, nil
}

// GetPacks returns the seeded packs that were asked for.
// PRE: none
// POST: Unknown IDs are absent
func (m *mockBookingStore) GetPacks(_ context.Context, _ string, ids []string) (map[string]domainBooking.ClassPack, error) {
	out := make(map[string]domainBooking.ClassPack)
	for _, id := range ids {
		if p, ok := m.packs[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type mockMemberStore struct {
	members []domainMember.Member
}

// List returns every seeded member.
// PRE: none
// POST: Returns members in seeded order
func (m *mockMemberStore) List(_ context.Context, _ string, _ memberStore.ListFilter) ([]domainMember.Member, error) {
	return m.members, nil
}

type mockPayoutStore struct {
	payouts []domainPayroll.Payout
	sums    map[string]int64
	filter  payrollStore.PayoutFilter
}

// List records the filter and returns seeded payouts.
// PRE: none
// POST: Returns payouts in seeded order
func (m *mockPayoutStore) List(_ context.Context, _ string, f payrollStore.PayoutFilter) ([]domainPayroll.Payout, error) {
	m.filter = f
	return m.payouts, nil
}

// SumByInstructor returns seeded totals.
// PRE: none
// POST: Returns the seeded map
func (m *mockPayoutStore) SumByInstructor(_ context.Context, _ string, _, _ time.Time) (map[string]int64, error) {
	return m.sums, nil
}

func activeClass(id, instructorID string, day, minutes int, price int64) domainClass.ClassEvent {
	start := periodStart.AddDate(0, 0, day).Add(9 * time.Hour)
	return domainClass.ClassEvent{
		ID: id, TenantID: "t1", InstructorID: instructorID, Title: "Class " + id,
		StartTime: start, EndTime: start.Add(time.Duration(minutes) * time.Minute),
		Price: price, Status: domainClass.StatusActive,
	}
}

func dropIn(id, classID string) domainBooking.Booking {
	return domainBooking.Booking{ID: id, TenantID: "t1", ClassID: classID, MemberID: "s-" + id,
		Status: domainBooking.StatusConfirmed, PaymentMethod: domainBooking.PaymentDropIn}
}

func config(memberID, model string, rate int64, basis string) domainPayroll.Config {
	return domainPayroll.Config{ID: "cfg-" + memberID, TenantID: "t1", MemberID: memberID,
		PayModel: model, Rate: rate, PayoutBasis: basis, Active: true}
}

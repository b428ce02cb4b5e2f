package appointment

import (
	"context"
	"testing"
	"time"

	"studio/internal/adapters/storage/storagetest"
	domain "studio/internal/domain/appointment"
)

func TestSQLiteStore_ListByRange(t *testing.T) {
	store := NewSQLiteStore(storagetest.Open(t))
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, status := range []string{domain.StatusCompleted, domain.StatusScheduled, domain.StatusCompleted} {
		start := base.Add(time.Duration(i) * 24 * time.Hour)
		a := domain.Appointment{
			ID: string(rune('a' + i)), TenantID: "t1", InstructorID: "i1", MemberID: "m1",
			ServiceName: "Private", StartTime: start, EndTime: start.Add(45 * time.Minute),
			Price: 8000, Status: status,
		}
		if err := store.Save(ctx, a); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := store.ListByRange(ctx, "t1", RangeFilter{
		Start: base, End: base.AddDate(0, 0, 2), InstructorID: "i1", Status: domain.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("ListByRange: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only appointment a, got %+v", got)
	}
	if got[0].DurationMinutes() != 45 {
		t.Errorf("DurationMinutes = %d, want 45", got[0].DurationMinutes())
	}

	other, err := store.ListByRange(ctx, "t2", RangeFilter{Start: base, End: base.AddDate(0, 1, 0)})
	if err != nil {
		t.Fatalf("ListByRange other tenant: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no rows for other tenant, got %d", len(other))
	}
}

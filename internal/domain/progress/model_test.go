package progress_test

import (
	"errors"
	"testing"
	"time"

	"studio/internal/domain/progress"
)

// TestMetricDefinition_Validate tests validation of metric definitions.
func TestMetricDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		m       progress.MetricDefinition
		wantErr error
	}{
		{name: "valid", m: progress.MetricDefinition{TenantID: "t1", Name: "Deadlift", Aggregation: progress.AggregationMax}},
		{name: "avg allowed", m: progress.MetricDefinition{TenantID: "t1", Name: "Resting HR", Aggregation: progress.AggregationAvg}},
		{name: "no tenant", m: progress.MetricDefinition{Name: "Deadlift", Aggregation: progress.AggregationMax}, wantErr: progress.ErrEmptyTenant},
		{name: "blank name", m: progress.MetricDefinition{TenantID: "t1", Name: " ", Aggregation: progress.AggregationMax}, wantErr: progress.ErrEmptyName},
		{name: "bad aggregation", m: progress.MetricDefinition{TenantID: "t1", Name: "X", Aggregation: "median"}, wantErr: progress.ErrInvalidAggregation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.m.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestEntry_SetDefaults fills manual source and the current time.
func TestEntry_SetDefaults(t *testing.T) {
	now := time.Date(2026, 5, 1, 7, 30, 0, 0, time.UTC)
	e := progress.Entry{TenantID: "t1", MemberID: "m1", MetricDefinitionID: "d1", Value: 3}
	e.SetDefaults(now)
	if e.Source != progress.SourceManual {
		t.Errorf("source = %q, want manual", e.Source)
	}
	if !e.RecordedAt.Equal(now) {
		t.Errorf("recorded_at = %v, want %v", e.RecordedAt, now)
	}
	if err := e.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	earlier := now.Add(-time.Hour)
	kept := progress.Entry{Source: progress.SourceImport, RecordedAt: earlier}
	kept.SetDefaults(now)
	if kept.Source != progress.SourceImport || !kept.RecordedAt.Equal(earlier) {
		t.Errorf("explicit values overwritten: %+v", kept)
	}
}

// TestEntry_ValidateSource rejects unknown sources.
func TestEntry_ValidateSource(t *testing.T) {
	e := progress.Entry{TenantID: "t1", MemberID: "m1", MetricDefinitionID: "d1", Source: "guess"}
	if err := e.Validate(); !errors.Is(err, progress.ErrInvalidSource) {
		t.Errorf("Validate() = %v, want ErrInvalidSource", err)
	}
}

// TestAggregates_Value picks the roll-up for each mode.
func TestAggregates_Value(t *testing.T) {
	// entries 3, 5, 2 recorded in that order
	a := progress.Aggregates{Count: 3, Sum: 10, Max: 5, Avg: 10.0 / 3, Latest: 2}
	if got := a.Value(progress.AggregationSum); got != 10 {
		t.Errorf("sum = %v, want 10", got)
	}
	if got := a.Value(progress.AggregationMax); got != 5 {
		t.Errorf("max = %v, want 5", got)
	}
	if got := a.Value(progress.AggregationLatest); got != 2 {
		t.Errorf("latest = %v, want 2", got)
	}
	if got := a.Value(progress.AggregationAvg); got != 10.0/3 {
		t.Errorf("avg = %v, want %v", got, 10.0/3)
	}

	var empty progress.Aggregates
	for _, mode := range []string{progress.AggregationSum, progress.AggregationMax, progress.AggregationLatest, progress.AggregationAvg} {
		if got := empty.Value(mode); got != 0 {
			t.Errorf("empty %s = %v, want 0", mode, got)
		}
	}
}

// TestDefaultCatalog covers each studio type.
func TestDefaultCatalog(t *testing.T) {
	yoga, err := progress.DefaultCatalog(progress.StudioYoga)
	if err != nil {
		t.Fatalf("yoga: %v", err)
	}
	gym, _ := progress.DefaultCatalog(progress.StudioGym)
	hybrid, _ := progress.DefaultCatalog(progress.StudioHybrid)

	if len(yoga) != 6 || len(gym) != 8 || len(hybrid) != 12 {
		t.Errorf("sizes yoga=%d gym=%d hybrid=%d, want 6/8/12", len(yoga), len(gym), len(hybrid))
	}

	names := map[string]bool{}
	for i, m := range hybrid {
		if names[m.Name] {
			t.Errorf("duplicate name %q in hybrid catalog", m.Name)
		}
		names[m.Name] = true
		if m.DisplayOrder != i+1 {
			t.Errorf("%s display order = %d, want %d", m.Name, m.DisplayOrder, i+1)
		}
		if !m.Active {
			t.Errorf("%s should be active", m.Name)
		}
		if !progress.IsValidAggregation(m.Aggregation) {
			t.Errorf("%s has invalid aggregation %q", m.Name, m.Aggregation)
		}
	}

	if _, err := progress.DefaultCatalog("pilates"); !errors.Is(err, progress.ErrInvalidStudioType) {
		t.Errorf("unknown type err = %v, want ErrInvalidStudioType", err)
	}
}

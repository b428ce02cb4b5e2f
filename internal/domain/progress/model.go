package progress

import (
	"errors"
	"strings"
	"time"
)

// Aggregation constants
const (
	AggregationSum    = "sum"
	AggregationMax    = "max"
	AggregationLatest = "latest"
	AggregationAvg    = "avg"
)

// Source constants
const (
	SourceAuto   = "auto"
	SourceManual = "manual"
	SourceImport = "import"
)

// DefaultDisplayOrder places new metrics after the seeded catalog.
const DefaultDisplayOrder = 99

// MaxNameLength bounds metric names.
const MaxNameLength = 80

// Domain errors
var (
	ErrMetricNotFound     = errors.New("Metric not found")
	ErrEmptyTenant        = errors.New("tenant_id is required")
	ErrEmptyName          = errors.New("metric name cannot be empty")
	ErrNameTooLong        = errors.New("metric name cannot exceed 80 characters")
	ErrInvalidAggregation = errors.New("aggregation must be one of: sum, max, latest, avg")
	ErrInvalidSource      = errors.New("source must be one of: auto, manual, import")
	ErrEmptyMemberID      = errors.New("member_id is required")
	ErrEmptyMetricID      = errors.New("metric_definition_id is required")
	ErrInvalidStudioType  = errors.New("studio type must be one of: yoga, gym, hybrid")
)

// MetricDefinition is a tenant-configured progress metric.
type MetricDefinition struct {
	ID                string    `json:"id"`
	TenantID          string    `json:"tenant_id"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	Unit              string    `json:"unit"`
	Icon              string    `json:"icon"`
	Aggregation       string    `json:"aggregation"`
	VisibleToStudents bool      `json:"visible_to_students"`
	Active            bool      `json:"active"`
	DisplayOrder      int       `json:"display_order"`
	CreatedAt         time.Time `json:"created_at"`
}

// Validate checks if the MetricDefinition has valid data.
// PRE: MetricDefinition struct is populated
// POST: Returns nil if valid, error otherwise
func (m *MetricDefinition) Validate() error {
	if m.TenantID == "" {
		return ErrEmptyTenant
	}
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !IsValidAggregation(m.Aggregation) {
		return ErrInvalidAggregation
	}
	return nil
}

// IsValidAggregation reports whether mode is a known aggregation.
func IsValidAggregation(mode string) bool {
	switch mode {
	case AggregationSum, AggregationMax, AggregationLatest, AggregationAvg:
		return true
	}
	return false
}

// Entry is one logged value of a metric for a member. Entries are append-only.
type Entry struct {
	ID                 string    `json:"id"`
	TenantID           string    `json:"tenant_id"`
	MemberID           string    `json:"member_id"`
	MetricDefinitionID string    `json:"metric_definition_id"`
	Value              float64   `json:"value"`
	Source             string    `json:"source"`
	RecordedAt         time.Time `json:"recorded_at"`
}

// SetDefaults fills source and recorded time when they were omitted.
// POST: Source is manual if empty; RecordedAt is now if zero
func (e *Entry) SetDefaults(now time.Time) {
	if e.Source == "" {
		e.Source = SourceManual
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = now
	}
}

// Validate checks if the Entry has valid data.
func (e *Entry) Validate() error {
	if e.TenantID == "" {
		return ErrEmptyTenant
	}
	if e.MemberID == "" {
		return ErrEmptyMemberID
	}
	if e.MetricDefinitionID == "" {
		return ErrEmptyMetricID
	}
	if !IsValidSource(e.Source) {
		return ErrInvalidSource
	}
	return nil
}

// IsValidSource reports whether source is a known entry source.
func IsValidSource(source string) bool {
	switch source {
	case SourceAuto, SourceManual, SourceImport:
		return true
	}
	return false
}

// Aggregates holds every roll-up of one member's entries for one metric.
type Aggregates struct {
	Count  int
	Sum    float64
	Max    float64
	Avg    float64
	Latest float64
}

// Value selects the roll-up for an aggregation mode. Empty histories yield 0.
func (a Aggregates) Value(mode string) float64 {
	if a.Count == 0 {
		return 0
	}
	switch mode {
	case AggregationSum:
		return a.Sum
	case AggregationMax:
		return a.Max
	case AggregationLatest:
		return a.Latest
	case AggregationAvg:
		return a.Avg
	}
	return 0
}

// Stat is a metric with its rolled-up value for one member.
type Stat struct {
	Metric     MetricDefinition `json:"metric"`
	Value      float64          `json:"value"`
	EntryCount int              `json:"entry_count"`
}

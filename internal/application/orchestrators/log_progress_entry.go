package orchestrators

import (
	"context"
	"log/slog"
	"time"

	domainProgress "studio/internal/domain/progress"
)

// MetricGetter defines the metric read needed to log an entry.
type MetricGetter interface {
	GetByID(ctx context.Context, tenantID, id string) (domainProgress.MetricDefinition, error)
}

// EntrySaver defines the store interface needed to log an entry.
type EntrySaver interface {
	Save(ctx context.Context, e domainProgress.Entry) error
}

// LogEntryInput carries input for the log entry orchestrator.
type LogEntryInput struct {
	TenantID           string
	MemberID           string
	MetricDefinitionID string
	Value              float64
	Source             string    // defaults to manual
	RecordedAt         time.Time // defaults to now
	FilterForStudents  bool      // student callers may only log visible, active metrics as manual entries
}

// LogEntryDeps holds dependencies for LogEntry.
type LogEntryDeps struct {
	MetricStore MetricGetter
	EntryStore  EntrySaver
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteLogEntry appends a progress value for a member.
// PRE: MetricDefinitionID names a metric of the tenant
// POST: Entry persisted; returns ErrMetricNotFound ("Metric not found") for a foreign or unknown metric,
// and for a hidden or inactive one when FilterForStudents is set
func ExecuteLogEntry(ctx context.Context, input LogEntryInput, deps LogEntryDeps) (domainProgress.Entry, error) {
	if input.MetricDefinitionID == "" {
		return domainProgress.Entry{}, domainProgress.ErrEmptyMetricID
	}
	metric, err := deps.MetricStore.GetByID(ctx, input.TenantID, input.MetricDefinitionID)
	if err != nil {
		return domainProgress.Entry{}, err
	}
	if input.Source != "" && !domainProgress.IsValidSource(input.Source) {
		return domainProgress.Entry{}, domainProgress.ErrInvalidSource
	}
	if input.FilterForStudents {
		if !metric.Active || !metric.VisibleToStudents {
			return domainProgress.Entry{}, domainProgress.ErrMetricNotFound
		}
		input.Source = domainProgress.SourceManual
	}

	e := domainProgress.Entry{
		ID:                 deps.GenerateID(),
		TenantID:           input.TenantID,
		MemberID:           input.MemberID,
		MetricDefinitionID: input.MetricDefinitionID,
		Value:              input.Value,
		Source:             input.Source,
		RecordedAt:         input.RecordedAt,
	}
	e.SetDefaults(deps.Now())
	if err := e.Validate(); err != nil {
		return domainProgress.Entry{}, err
	}
	if err := deps.EntryStore.Save(ctx, e); err != nil {
		return domainProgress.Entry{}, err
	}
	slog.Info("progress_event", "event", "entry_logged", "tenant_id", e.TenantID, "member_id", e.MemberID,
		"metric_id", e.MetricDefinitionID, "source", e.Source)
	return e, nil
}

package orchestrators

import (
	"context"
	"log/slog"
	"time"

	domainProgress "studio/internal/domain/progress"
)

// MetricStoreForOrchestrator defines the store interface needed by metric orchestrators.
type MetricStoreForOrchestrator interface {
	GetByID(ctx context.Context, tenantID, id string) (domainProgress.MetricDefinition, error)
	Save(ctx context.Context, m domainProgress.MetricDefinition) error
	Delete(ctx context.Context, tenantID, id string) error
	Names(ctx context.Context, tenantID string) (map[string]bool, error)
}

// --- Seed Default Metrics ---

// SeedDefaultMetricsInput carries input for the seed orchestrator.
type SeedDefaultMetricsInput struct {
	TenantID   string
	StudioType string
}

// SeedDefaultMetricsDeps holds dependencies for SeedDefaultMetrics.
type SeedDefaultMetricsDeps struct {
	MetricStore MetricStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

// SeedDefaultMetricsResult reports how many catalog metrics were created and skipped.
type SeedDefaultMetricsResult struct {
	Seeded  int `json:"seeded"`
	Skipped int `json:"skipped"`
}

// ExecuteSeedDefaultMetrics installs the studio type's metric catalog.
// A catalog metric is skipped when the tenant already has a metric with exactly the same name.
// PRE: StudioType is yoga, gym or hybrid
// POST: Seeded + Skipped == catalog size; running twice seeds nothing the second time
func ExecuteSeedDefaultMetrics(ctx context.Context, input SeedDefaultMetricsInput, deps SeedDefaultMetricsDeps) (SeedDefaultMetricsResult, error) {
	if input.TenantID == "" {
		return SeedDefaultMetricsResult{}, domainProgress.ErrEmptyTenant
	}
	catalog, err := domainProgress.DefaultCatalog(input.StudioType)
	if err != nil {
		return SeedDefaultMetricsResult{}, err
	}
	existing, err := deps.MetricStore.Names(ctx, input.TenantID)
	if err != nil {
		return SeedDefaultMetricsResult{}, err
	}

	var res SeedDefaultMetricsResult
	now := deps.Now()
	for _, m := range catalog {
		if existing[m.Name] {
			res.Skipped++
			continue
		}
		m.ID = deps.GenerateID()
		m.TenantID = input.TenantID
		m.CreatedAt = now
		if err := deps.MetricStore.Save(ctx, m); err != nil {
			return res, err
		}
		existing[m.Name] = true
		res.Seeded++
	}

	slog.Info("progress_event", "event", "metrics_seeded", "tenant_id", input.TenantID,
		"studio_type", input.StudioType, "seeded", res.Seeded, "skipped", res.Skipped)
	return res, nil
}

// --- Create Metric ---

// CreateMetricInput carries input for the create metric orchestrator.
type CreateMetricInput struct {
	TenantID          string
	Name              string
	Category          string
	Unit              string
	Icon              string
	Aggregation       string // defaults to sum
	VisibleToStudents *bool  // defaults to true
	DisplayOrder      *int   // defaults to DefaultDisplayOrder
}

// CreateMetricDeps holds dependencies for CreateMetric.
type CreateMetricDeps struct {
	MetricStore MetricStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteCreateMetric adds an active metric definition.
// PRE: Name is non-empty
// POST: Metric persisted; display order is DefaultDisplayOrder unless given
func ExecuteCreateMetric(ctx context.Context, input CreateMetricInput, deps CreateMetricDeps) (domainProgress.MetricDefinition, error) {
	m := domainProgress.MetricDefinition{
		ID:                deps.GenerateID(),
		TenantID:          input.TenantID,
		Name:              input.Name,
		Category:          input.Category,
		Unit:              input.Unit,
		Icon:              input.Icon,
		Aggregation:       input.Aggregation,
		VisibleToStudents: true,
		Active:            true,
		DisplayOrder:      domainProgress.DefaultDisplayOrder,
		CreatedAt:         deps.Now(),
	}
	if m.Aggregation == "" {
		m.Aggregation = domainProgress.AggregationSum
	}
	if input.VisibleToStudents != nil {
		m.VisibleToStudents = *input.VisibleToStudents
	}
	if input.DisplayOrder != nil {
		m.DisplayOrder = *input.DisplayOrder
	}

	if err := m.Validate(); err != nil {
		return domainProgress.MetricDefinition{}, err
	}
	if err := deps.MetricStore.Save(ctx, m); err != nil {
		return domainProgress.MetricDefinition{}, err
	}
	slog.Info("progress_event", "event", "metric_created", "tenant_id", m.TenantID, "metric_id", m.ID, "name", m.Name)
	return m, nil
}

// --- Update Metric ---

// UpdateMetricInput carries a partial update; nil fields are left unchanged.
type UpdateMetricInput struct {
	TenantID          string
	MetricID          string
	Name              *string
	Category          *string
	Unit              *string
	Icon              *string
	Aggregation       *string
	VisibleToStudents *bool
	Active            *bool
	DisplayOrder      *int
}

// UpdateMetricDeps holds dependencies for UpdateMetric.
type UpdateMetricDeps struct {
	MetricStore MetricStoreForOrchestrator
}

// ExecuteUpdateMetric applies a partial update to one of the tenant's metrics.
// POST: Returns ErrMetricNotFound when the metric does not belong to the tenant
func ExecuteUpdateMetric(ctx context.Context, input UpdateMetricInput, deps UpdateMetricDeps) (domainProgress.MetricDefinition, error) {
	if input.MetricID == "" {
		return domainProgress.MetricDefinition{}, domainProgress.ErrEmptyMetricID
	}
	m, err := deps.MetricStore.GetByID(ctx, input.TenantID, input.MetricID)
	if err != nil {
		return domainProgress.MetricDefinition{}, err
	}

	if input.Name != nil {
		m.Name = *input.Name
	}
	if input.Category != nil {
		m.Category = *input.Category
	}
	if input.Unit != nil {
		m.Unit = *input.Unit
	}
	if input.Icon != nil {
		m.Icon = *input.Icon
	}
	if input.Aggregation != nil {
		m.Aggregation = *input.Aggregation
	}
	if input.VisibleToStudents != nil {
		m.VisibleToStudents = *input.VisibleToStudents
	}
	if input.Active != nil {
		m.Active = *input.Active
	}
	if input.DisplayOrder != nil {
		m.DisplayOrder = *input.DisplayOrder
	}

	if err := m.Validate(); err != nil {
		return domainProgress.MetricDefinition{}, err
	}
	if err := deps.MetricStore.Save(ctx, m); err != nil {
		return domainProgress.MetricDefinition{}, err
	}
	slog.Info("progress_event", "event", "metric_updated", "tenant_id", m.TenantID, "metric_id", m.ID)
	return m, nil
}

// --- Delete Metric ---

// DeleteMetricInput carries input for the delete metric orchestrator.
type DeleteMetricInput struct {
	TenantID string
	MetricID string
}

// DeleteMetricDeps holds dependencies for DeleteMetric.
type DeleteMetricDeps struct {
	MetricStore MetricStoreForOrchestrator
}

// ExecuteDeleteMetric removes a metric and its entries.
// POST: Returns ErrMetricNotFound when nothing was deleted
func ExecuteDeleteMetric(ctx context.Context, input DeleteMetricInput, deps DeleteMetricDeps) error {
	if input.MetricID == "" {
		return domainProgress.ErrEmptyMetricID
	}
	if err := deps.MetricStore.Delete(ctx, input.TenantID, input.MetricID); err != nil {
		return err
	}
	slog.Info("progress_event", "event", "metric_deleted", "tenant_id", input.TenantID, "metric_id", input.MetricID)
	return nil
}

package web

import (
	"net/http"
	"strconv"
	"time"

	"studio/internal/application/orchestrators"
	"studio/internal/application/projections"
)

// maxEntryHistory caps /api/progress/entries responses.
const maxEntryHistory = 500

// handleProgressMetrics handles GET/POST/PUT/DELETE for /api/progress/metrics
// Any member can list metrics; students only see the ones visible to them.
func handleProgressMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == http.MethodGet {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		metrics, err := projections.QueryGetMetrics(ctx, projections.GetMetricsQuery{
			TenantID: id.TenantID,
			IsStaff:  id.IsStaff(),
		}, projections.GetMetricsDeps{MetricStore: stores.ProgressMetricStore})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, metrics)
		return
	}

	id, ok := requireStaff(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var input struct {
			Name              string `json:"name"`
			Category          string `json:"category"`
			Unit              string `json:"unit"`
			Icon              string `json:"icon"`
			Aggregation       string `json:"aggregation"`
			VisibleToStudents *bool  `json:"visible_to_students"`
			DisplayOrder      *int   `json:"display_order"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		m, err := orchestrators.ExecuteCreateMetric(ctx, orchestrators.CreateMetricInput{
			TenantID:          id.TenantID,
			Name:              input.Name,
			Category:          input.Category,
			Unit:              input.Unit,
			Icon:              input.Icon,
			Aggregation:       input.Aggregation,
			VisibleToStudents: input.VisibleToStudents,
			DisplayOrder:      input.DisplayOrder,
		}, orchestrators.CreateMetricDeps{
			MetricStore: stores.ProgressMetricStore,
			GenerateID:  generateID,
			Now:         now,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)

	case http.MethodPut:
		var input struct {
			ID                string  `json:"id"`
			Name              *string `json:"name"`
			Category          *string `json:"category"`
			Unit              *string `json:"unit"`
			Icon              *string `json:"icon"`
			Aggregation       *string `json:"aggregation"`
			VisibleToStudents *bool   `json:"visible_to_students"`
			Active            *bool   `json:"active"`
			DisplayOrder      *int    `json:"display_order"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		m, err := orchestrators.ExecuteUpdateMetric(ctx, orchestrators.UpdateMetricInput{
			TenantID:          id.TenantID,
			MetricID:          input.ID,
			Name:              input.Name,
			Category:          input.Category,
			Unit:              input.Unit,
			Icon:              input.Icon,
			Aggregation:       input.Aggregation,
			VisibleToStudents: input.VisibleToStudents,
			Active:            input.Active,
			DisplayOrder:      input.DisplayOrder,
		}, orchestrators.UpdateMetricDeps{MetricStore: stores.ProgressMetricStore})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)

	case http.MethodDelete:
		err := orchestrators.ExecuteDeleteMetric(ctx, orchestrators.DeleteMetricInput{
			TenantID: id.TenantID,
			MetricID: r.URL.Query().Get("id"),
		}, orchestrators.DeleteMetricDeps{MetricStore: stores.ProgressMetricStore})
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleProgressSeed handles POST /api/progress/metrics/seed {studio_type}
func handleProgressSeed(w http.ResponseWriter, r *http.Request) {
	id, ok := requireStaff(w, r)
	if !ok {
		return
	}
	var input struct {
		StudioType string `json:"studio_type"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	res, err := orchestrators.ExecuteSeedDefaultMetrics(r.Context(), orchestrators.SeedDefaultMetricsInput{
		TenantID:   id.TenantID,
		StudioType: input.StudioType,
	}, orchestrators.SeedDefaultMetricsDeps{
		MetricStore: stores.ProgressMetricStore,
		GenerateID:  generateID,
		Now:         now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleProgressStats handles GET /api/progress/stats?member_id=
// member_id defaults to the caller.
func handleProgressStats(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	memberID := r.URL.Query().Get("member_id")
	if memberID == "" {
		memberID = id.MemberID
	}
	if !id.CanSee(memberID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	stats, err := projections.QueryGetMemberStats(r.Context(), projections.GetMemberStatsQuery{
		TenantID:          id.TenantID,
		MemberID:          memberID,
		FilterForStudents: !id.IsStaff(),
	}, projections.GetMemberStatsDeps{
		MetricStore: stores.ProgressMetricStore,
		EntryStore:  stores.ProgressEntryStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleProgressEntries handles GET/POST for /api/progress/entries
func handleProgressEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		memberID := q.Get("member_id")
		if memberID == "" {
			memberID = id.MemberID
		}
		if !id.CanSee(memberID) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		limit := maxEntryHistory
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = min(n, maxEntryHistory)
		}
		entries, err := projections.QueryListEntries(ctx, projections.ListEntriesQuery{
			TenantID:          id.TenantID,
			MemberID:          memberID,
			MetricID:          q.Get("metric_id"),
			Limit:             limit,
			FilterForStudents: !id.IsStaff(),
		}, projections.ListEntriesDeps{
			MetricStore: stores.ProgressMetricStore,
			EntryStore:  stores.ProgressEntryStore,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case http.MethodPost:
		var input struct {
			MemberID           string     `json:"member_id"`
			MetricDefinitionID string     `json:"metric_definition_id"`
			Value              float64    `json:"value"`
			Source             string     `json:"source"`
			RecordedAt         *time.Time `json:"recorded_at"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if input.MemberID == "" {
			input.MemberID = id.MemberID
		}
		if !id.CanSee(input.MemberID) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		in := orchestrators.LogEntryInput{
			TenantID:           id.TenantID,
			MemberID:           input.MemberID,
			MetricDefinitionID: input.MetricDefinitionID,
			Value:              input.Value,
			Source:             input.Source,
			FilterForStudents:  !id.IsStaff(),
		}
		if input.RecordedAt != nil {
			in.RecordedAt = input.RecordedAt.UTC()
		}
		entry, err := orchestrators.ExecuteLogEntry(ctx, in, orchestrators.LogEntryDeps{
			MetricStore: stores.ProgressMetricStore,
			EntryStore:  stores.ProgressEntryStore,
			GenerateID:  generateID,
			Now:         now,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

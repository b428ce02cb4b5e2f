package web

import (
	"fmt"
	"net/http"
	"testing"

	domainProgress "studio/internal/domain/progress"
)

func seedYoga(t *testing.T, ts *testServer) []domainProgress.MetricDefinition {
	t.Helper()
	rec := ts.do("POST", "/api/progress/metrics/seed", `{"studio_type":"yoga"}`, adminID)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed got %d: %s", rec.Code, rec.Body.String())
	}
	rec = ts.do("GET", "/api/progress/metrics", "", adminID)
	var metrics []domainProgress.MetricDefinition
	decodeBody(t, rec, &metrics)
	return metrics
}

func metricNamed(t *testing.T, metrics []domainProgress.MetricDefinition, name string) domainProgress.MetricDefinition {
	t.Helper()
	for _, m := range metrics {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("metric %q not found", name)
	return domainProgress.MetricDefinition{}
}

// TestProgressSeed_Idempotent verifies a second seed adds nothing.
func TestProgressSeed_Idempotent(t *testing.T) {
	ts := newTestServer(t)
	metrics := seedYoga(t, ts)
	if len(metrics) != 6 {
		t.Fatalf("metrics = %d, want 6", len(metrics))
	}

	rec := ts.do("POST", "/api/progress/metrics/seed", `{"studio_type":"yoga"}`, adminID)
	var res struct {
		Seeded  int `json:"seeded"`
		Skipped int `json:"skipped"`
	}
	decodeBody(t, rec, &res)
	if res.Seeded != 0 || res.Skipped != 6 {
		t.Errorf("second seed = %+v, want 0 seeded and 6 skipped", res)
	}

	rec = ts.do("POST", "/api/progress/metrics/seed", `{"studio_type":"pilates"}`, adminID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown studio type got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec = ts.do("POST", "/api/progress/metrics/seed", `{"studio_type":"yoga"}`, studentID)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student seed got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

// TestProgressMetrics_StudentVisibility verifies hidden metrics stay hidden from students.
func TestProgressMetrics_StudentVisibility(t *testing.T) {
	ts := newTestServer(t)
	metrics := seedYoga(t, ts)
	hold := metricNamed(t, metrics, "Longest Balance Hold")

	rec := ts.do("PUT", "/api/progress/metrics", fmt.Sprintf(`{"id":%q,"visible_to_students":false}`, hold.ID), adminID)
	if rec.Code != http.StatusOK {
		t.Fatalf("update got %d: %s", rec.Code, rec.Body.String())
	}

	rec = ts.do("GET", "/api/progress/metrics", "", studentID)
	var visible []domainProgress.MetricDefinition
	decodeBody(t, rec, &visible)
	if len(visible) != 5 {
		t.Errorf("student sees %d metrics, want 5", len(visible))
	}
	for _, m := range visible {
		if m.ID == hold.ID {
			t.Error("hidden metric returned to a student")
		}
	}
}

// TestProgressMetrics_CreateUpdateDelete exercises the staff metric lifecycle.
func TestProgressMetrics_CreateUpdateDelete(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do("POST", "/api/progress/metrics", `{"name":"Handstand Hold","unit":"seconds"}`, instructorID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create got %d: %s", rec.Code, rec.Body.String())
	}
	var m domainProgress.MetricDefinition
	decodeBody(t, rec, &m)
	if m.Aggregation != domainProgress.AggregationSum || !m.VisibleToStudents || m.DisplayOrder != domainProgress.DefaultDisplayOrder {
		t.Errorf("defaults not applied: %+v", m)
	}

	rec = ts.do("PUT", "/api/progress/metrics", fmt.Sprintf(`{"id":%q,"aggregation":"median"}`, m.ID), instructorID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad aggregation got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec = ts.do("PUT", "/api/progress/metrics", `{"id":"missing","name":"x"}`, instructorID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing got %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = ts.do("POST", "/api/progress/metrics", `{"name":"Sneaky"}`, studentID)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student create got %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = ts.do("DELETE", "/api/progress/metrics?id="+m.ID, "", instructorID)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete got %d", rec.Code)
	}
	rec = ts.do("DELETE", "/api/progress/metrics?id="+m.ID, "", instructorID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete got %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec.Body.String() != "Metric not found\n" {
		t.Errorf("body = %q, want the not-found message", rec.Body.String())
	}
}

// TestProgressEntries_StatsForSelf logs entries as a student and reads the roll-up.
func TestProgressEntries_StatsForSelf(t *testing.T) {
	ts := newTestServer(t)
	metrics := seedYoga(t, ts)
	minutes := metricNamed(t, metrics, "Minutes Practiced")

	for _, v := range []int{30, 45} {
		body := fmt.Sprintf(`{"metric_definition_id":%q,"value":%d}`, minutes.ID, v)
		rec := ts.do("POST", "/api/progress/entries", body, studentID)
		if rec.Code != http.StatusCreated {
			t.Fatalf("log got %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := ts.do("GET", "/api/progress/stats", "", studentID)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats got %d", rec.Code)
	}
	var stats []domainProgress.Stat
	decodeBody(t, rec, &stats)
	var found bool
	for _, s := range stats {
		if s.Metric.ID == minutes.ID {
			found = true
			if s.Value != 75 || s.EntryCount != 2 {
				t.Errorf("minutes stat = %+v, want 75 over 2 entries", s)
			}
		}
	}
	if !found {
		t.Error("minutes stat missing")
	}

	rec = ts.do("GET", "/api/progress/entries?limit=1", "", studentID)
	var entries []domainProgress.Entry
	decodeBody(t, rec, &entries)
	if len(entries) != 1 || entries[0].Source != domainProgress.SourceManual {
		t.Errorf("entries = %+v, want one manual entry", entries)
	}
}

// TestProgressEntries_OtherMember verifies students cannot read or write another member's progress.
func TestProgressEntries_OtherMember(t *testing.T) {
	ts := newTestServer(t)
	metrics := seedYoga(t, ts)

	if rec := ts.do("GET", "/api/progress/stats?member_id=stud-2", "", studentID); rec.Code != http.StatusForbidden {
		t.Errorf("stats got %d, want %d", rec.Code, http.StatusForbidden)
	}
	body := fmt.Sprintf(`{"member_id":"stud-2","metric_definition_id":%q,"value":1}`, metrics[0].ID)
	if rec := ts.do("POST", "/api/progress/entries", body, studentID); rec.Code != http.StatusForbidden {
		t.Errorf("log got %d, want %d", rec.Code, http.StatusForbidden)
	}
	if rec := ts.do("GET", "/api/progress/stats?member_id=stud-2", "", instructorID); rec.Code != http.StatusOK {
		t.Errorf("instructor stats got %d, want %d", rec.Code, http.StatusOK)
	}
}

// TestProgressEntries_Validation covers unknown metrics, bad sources and bad limits.
func TestProgressEntries_Validation(t *testing.T) {
	ts := newTestServer(t)
	metrics := seedYoga(t, ts)

	rec := ts.do("POST", "/api/progress/entries", `{"metric_definition_id":"nope","value":1}`, studentID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown metric got %d, want %d", rec.Code, http.StatusNotFound)
	}
	body := fmt.Sprintf(`{"metric_definition_id":%q,"value":1,"source":"guess"}`, metrics[0].ID)
	rec = ts.do("POST", "/api/progress/entries", body, studentID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad source got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec = ts.do("GET", "/api/progress/entries?limit=-3", "", studentID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// TestProgressEntries_StudentCannotLogHiddenMetric verifies students only log visible metrics, always as manual.
func TestProgressEntries_StudentCannotLogHiddenMetric(t *testing.T) {
	ts := newTestServer(t)
	metrics := seedYoga(t, ts)
	hold := metricNamed(t, metrics, "Longest Balance Hold")
	minutes := metricNamed(t, metrics, "Minutes Practiced")

	rec := ts.do("PUT", "/api/progress/metrics", fmt.Sprintf(`{"id":%q,"visible_to_students":false}`, hold.ID), adminID)
	if rec.Code != http.StatusOK {
		t.Fatalf("update got %d: %s", rec.Code, rec.Body.String())
	}

	body := fmt.Sprintf(`{"metric_definition_id":%q,"value":42,"source":"import"}`, hold.ID)
	if rec := ts.do("POST", "/api/progress/entries", body, studentID); rec.Code != http.StatusNotFound {
		t.Errorf("hidden metric got %d, want %d", rec.Code, http.StatusNotFound)
	}
	body = fmt.Sprintf(`{"member_id":"stud-1","metric_definition_id":%q,"value":42,"source":"import"}`, hold.ID)
	if rec := ts.do("POST", "/api/progress/entries", body, instructorID); rec.Code != http.StatusCreated {
		t.Errorf("staff on hidden metric got %d, want %d", rec.Code, http.StatusCreated)
	}

	body = fmt.Sprintf(`{"metric_definition_id":%q,"value":20,"source":"import"}`, minutes.ID)
	rec = ts.do("POST", "/api/progress/entries", body, studentID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("visible metric got %d: %s", rec.Code, rec.Body.String())
	}
	var e domainProgress.Entry
	decodeBody(t, rec, &e)
	if e.Source != domainProgress.SourceManual {
		t.Errorf("student entry source = %q, want manual", e.Source)
	}
}

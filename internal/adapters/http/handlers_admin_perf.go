package web

import (
	"net/http"
	"strconv"
	"time"
)

// handleAdminPerf handles GET /api/admin/perf?minutes=&top=
// Returns request percentiles and the slowest paths and queries.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStaff(w, r); !ok {
		return
	}
	if perfCollector == nil {
		http.Error(w, "performance collection disabled", http.StatusNotFound)
		return
	}

	minutes := queryInt(r, "minutes", 60)
	top := queryInt(r, "top", 10)
	since := time.Now().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, top))
}

// queryInt reads a positive integer query parameter, falling back on absent or bad input.
func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

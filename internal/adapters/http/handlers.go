package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"studio/internal/adapters/http/middleware"
	domainMember "studio/internal/domain/member"
	domainPayroll "studio/internal/domain/payroll"
	domainProgress "studio/internal/domain/progress"
)

// internalError logs the error server-side and returns a generic 500 to the client.
// Never expose err.Error() to the user, it may contain SQL or internal details.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode_response_failed", "error", err)
	}
}

// Errors the client can act on. Anything else becomes a logged 500.
var (
	badRequestErrors = []error{
		domainPayroll.ErrEmptyTenant,
		domainPayroll.ErrEmptyMemberID,
		domainPayroll.ErrInvalidPayModel,
		domainPayroll.ErrInvalidBasis,
		domainPayroll.ErrNegativeRate,
		domainPayroll.ErrInvalidPeriod,
		domainPayroll.ErrInvalidPeriodBound,
		domainPayroll.ErrNothingToCommit,
		domainPayroll.ErrNoPayoutsSelected,
		domainProgress.ErrEmptyTenant,
		domainProgress.ErrEmptyName,
		domainProgress.ErrNameTooLong,
		domainProgress.ErrInvalidAggregation,
		domainProgress.ErrInvalidSource,
		domainProgress.ErrEmptyMemberID,
		domainProgress.ErrEmptyMetricID,
		domainProgress.ErrInvalidStudioType,
	}
	notFoundErrors = []error{
		domainMember.ErrNotFound,
		domainPayroll.ErrConfigNotFound,
		domainPayroll.ErrPayoutNotFound,
		domainProgress.ErrMetricNotFound,
	}
	conflictErrors = []error{
		domainPayroll.ErrOverlappingPayout,
		domainPayroll.ErrStalePreview,
	}
)

// writeError maps domain errors to status codes.
// PRE: err is non-nil
// POST: 400/404/409 with the domain message, or a logged 500
func writeError(w http.ResponseWriter, err error) {
	for _, status := range []struct {
		code int
		errs []error
	}{
		{http.StatusBadRequest, badRequestErrors},
		{http.StatusNotFound, notFoundErrors},
		{http.StatusConflict, conflictErrors},
	} {
		for _, target := range status.errs {
			if errors.Is(err, target) {
				http.Error(w, target.Error(), status.code)
				return
			}
		}
	}
	internalError(w, err)
}

// requireIdentity returns the caller attached by middleware.Identify.
func requireIdentity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Identity{}, false
	}
	return id, true
}

// requireStaff guards staff-only endpoints.
// PRE: request passed through middleware.Identify
// POST: Returns (identity, true) for staff; writes 401/403 otherwise
func requireStaff(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return id, false
	}
	if !id.IsStaff() {
		slog.Warn("auth_denied", "path", r.URL.Path, "tenant_id", id.TenantID, "member_id", id.MemberID, "role", id.Role, "required", "staff")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Identity{}, false
	}
	return id, true
}

// queryPeriod reads the start and end query parameters.
func queryPeriod(r *http.Request) (domainPayroll.Period, error) {
	return domainPayroll.ParsePeriod(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

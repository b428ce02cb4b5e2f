package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"studio/internal/application/orchestrators"
	"studio/internal/application/projections"
	domainPayroll "studio/internal/domain/payroll"
)

func payoutDataDeps() projections.GeneratePayoutDataDeps {
	return projections.GeneratePayoutDataDeps{
		ConfigStore:      stores.PayrollConfigStore,
		ClassStore:       stores.ClassEventStore,
		AppointmentStore: stores.AppointmentStore,
		BookingStore:     stores.BookingStore,
		MemberStore:      stores.MemberStore,
		Fees:             feePolicy,
	}
}

// handlePayrollPreview handles GET /api/payroll/preview?start=&end=
func handlePayrollPreview(w http.ResponseWriter, r *http.Request) {
	id, ok := requireStaff(w, r)
	if !ok {
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	preview, err := projections.QueryGeneratePayoutData(r.Context(), projections.GeneratePayoutDataQuery{
		TenantID: id.TenantID,
		Start:    period.Start,
		End:      period.End,
	}, payoutDataDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handlePayrollCommit handles POST /api/payroll/commit {start, end, token}
// The preview is recomputed server-side; the token pins it to what the caller reviewed.
func handlePayrollCommit(w http.ResponseWriter, r *http.Request) {
	id, ok := requireStaff(w, r)
	if !ok {
		return
	}
	var input struct {
		Start string `json:"start"`
		End   string `json:"end"`
		Token string `json:"token"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	period, err := domainPayroll.ParsePeriod(input.Start, input.End)
	if err != nil {
		writeError(w, err)
		return
	}

	deps := orchestrators.CommitPayoutsDeps{
		PayoutStore: stores.PayoutStore,
		GeneratePreview: func(ctx context.Context, start, end time.Time) (domainPayroll.Preview, error) {
			return projections.QueryGeneratePayoutData(ctx, projections.GeneratePayoutDataQuery{
				TenantID: id.TenantID,
				Start:    start,
				End:      end,
			}, payoutDataDeps())
		},
		GenerateID: generateID,
		Now:        now,
	}
	result, err := orchestrators.ExecuteCommitPayouts(r.Context(), orchestrators.CommitPayoutsInput{
		TenantID: id.TenantID,
		Start:    period.Start,
		End:      period.End,
		Token:    input.Token,
	}, deps)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"run":     result.Run,
		"payouts": result.Payouts,
	})
}

// handlePayrollApprove handles POST /api/payroll/approve {ids: [...]}
func handlePayrollApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := requireStaff(w, r)
	if !ok {
		return
	}
	var input struct {
		IDs []string `json:"ids"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	result, err := orchestrators.ExecuteBulkApprove(r.Context(), orchestrators.BulkApproveInput{
		TenantID:  id.TenantID,
		PayoutIDs: input.IDs,
	}, orchestrators.BulkApproveDeps{
		PayoutStore: stores.PayoutStore,
		MemberStore: stores.MemberStore,
		Sender:      emailSender,
		From:        emailFrom,
		Now:         now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePayrollPayouts handles GET /api/payroll/payouts?start=&end=&instructor_id=
func handlePayrollPayouts(w http.ResponseWriter, r *http.Request) {
	id, ok := requireStaff(w, r)
	if !ok {
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	payouts, err := projections.QueryListPayouts(r.Context(), projections.ListPayoutsQuery{
		TenantID:     id.TenantID,
		Start:        period.Start,
		End:          period.End,
		InstructorID: r.URL.Query().Get("instructor_id"),
	}, projections.ListPayoutsDeps{PayoutStore: stores.PayoutStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payouts)
}

// handlePayrollExport handles GET /api/payroll/export?start=&end= as a CSV download.
func handlePayrollExport(w http.ResponseWriter, r *http.Request) {
	id, ok := requireStaff(w, r)
	if !ok {
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := projections.QueryExportPayoutsCSV(r.Context(), projections.ExportPayoutsCSVQuery{
		TenantID: id.TenantID,
		Start:    period.Start,
		End:      period.End,
	}, projections.ExportPayoutsCSVDeps{PayoutStore: stores.PayoutStore})
	if err != nil {
		writeError(w, err)
		return
	}
	filename := fmt.Sprintf("payroll_%s_%s.csv", period.Start.Format(time.DateOnly), period.End.Format(time.DateOnly))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handlePayrollProfitability handles GET /api/payroll/profitability?start=&end=
func handlePayrollProfitability(w http.ResponseWriter, r *http.Request) {
	id, ok := requireStaff(w, r)
	if !ok {
		return
	}
	period, err := queryPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := projections.QueryInstructorProfitability(r.Context(), projections.InstructorProfitabilityQuery{
		TenantID: id.TenantID,
		Start:    period.Start,
		End:      period.End,
	}, projections.InstructorProfitabilityDeps{
		MemberStore:  stores.MemberStore,
		ClassStore:   stores.ClassEventStore,
		BookingStore: stores.BookingStore,
		PayoutStore:  stores.PayoutStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handlePayrollConfigs handles GET/PUT/DELETE for /api/payroll/configs
func handlePayrollConfigs(w http.ResponseWriter, r *http.Request) {
	id, ok := requireStaff(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		views, err := projections.QueryListPayrollConfigs(ctx, projections.ListPayrollConfigsQuery{
			TenantID:   id.TenantID,
			ActiveOnly: r.URL.Query().Get("active") == "true",
		}, projections.ListPayrollConfigsDeps{
			ConfigStore: stores.PayrollConfigStore,
			MemberStore: stores.MemberStore,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, views)

	case http.MethodPut:
		var input struct {
			MemberID    string `json:"member_id"`
			PayModel    string `json:"pay_model"`
			Rate        int64  `json:"rate"`
			PayoutBasis string `json:"payout_basis"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		cfg, err := orchestrators.ExecuteSavePayrollConfig(ctx, orchestrators.SavePayrollConfigInput{
			TenantID:    id.TenantID,
			MemberID:    input.MemberID,
			PayModel:    input.PayModel,
			Rate:        input.Rate,
			PayoutBasis: input.PayoutBasis,
		}, orchestrators.SavePayrollConfigDeps{
			ConfigStore: stores.PayrollConfigStore,
			MemberStore: stores.MemberStore,
			GenerateID:  generateID,
			Now:         now,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)

	case http.MethodDelete:
		memberID := r.URL.Query().Get("member_id")
		if memberID == "" {
			http.Error(w, "member_id is required", http.StatusBadRequest)
			return
		}
		err := orchestrators.ExecuteDeactivatePayrollConfig(ctx, orchestrators.DeactivatePayrollConfigInput{
			TenantID: id.TenantID,
			MemberID: memberID,
		}, orchestrators.DeactivatePayrollConfigDeps{ConfigStore: stores.PayrollConfigStore, Now: now})
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

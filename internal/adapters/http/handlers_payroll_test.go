package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"studio/internal/application/projections"
	domainPayroll "studio/internal/domain/payroll"
)

// TestPayrollPreview_Staff verifies a staff caller sees computed pay and a token.
func TestPayrollPreview_Staff(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPayroll(t)

	rec := ts.do("GET", "/api/payroll/preview?"+marchQuery, "", adminID)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var preview domainPayroll.Preview
	decodeBody(t, rec, &preview)
	if len(preview.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(preview.Results))
	}
	r := preview.Results[0]
	if r.InstructorID != "inst-1" || r.Amount != 5000 || r.ItemCount != 1 {
		t.Errorf("unexpected result: %+v", r)
	}
	if len(preview.Token) != 64 {
		t.Errorf("token = %q, want 64 hex chars", preview.Token)
	}
}

// TestPayrollPreview_Forbidden verifies students cannot see payroll.
func TestPayrollPreview_Forbidden(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do("GET", "/api/payroll/preview?"+marchQuery, "", studentID)
	if rec.Code != http.StatusForbidden {
		t.Errorf("got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

// TestPayrollPreview_BadPeriod verifies malformed or empty periods are rejected.
func TestPayrollPreview_BadPeriod(t *testing.T) {
	ts := newTestServer(t)
	for _, q := range []string{"start=march&end=2024-04-01", "start=2024-04-01&end=2024-03-01", ""} {
		rec := ts.do("GET", "/api/payroll/preview?"+q, "", adminID)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q: got %d, want %d", q, rec.Code, http.StatusBadRequest)
		}
	}
}

func commitBody(token string) string {
	return fmt.Sprintf(`{"start":"2024-03-01","end":"2024-04-01","token":%q}`, token)
}

func previewToken(t *testing.T, ts *testServer) string {
	t.Helper()
	rec := ts.do("GET", "/api/payroll/preview?"+marchQuery, "", adminID)
	var preview domainPayroll.Preview
	decodeBody(t, rec, &preview)
	return preview.Token
}

// TestPayrollCommit_Lifecycle commits, rejects the duplicate, lists, exports and approves.
func TestPayrollCommit_Lifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPayroll(t)
	token := previewToken(t, ts)

	rec := ts.do("POST", "/api/payroll/commit", commitBody(token), adminID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("commit got %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var committed struct {
		Run     domainPayroll.Run      `json:"run"`
		Payouts []domainPayroll.Payout `json:"payouts"`
	}
	decodeBody(t, rec, &committed)
	if len(committed.Payouts) != 1 || committed.Payouts[0].Status != domainPayroll.StatusProcessing {
		t.Fatalf("unexpected payouts: %+v", committed.Payouts)
	}
	if committed.Run.Token != token {
		t.Errorf("run token = %q, want %q", committed.Run.Token, token)
	}

	rec = ts.do("POST", "/api/payroll/commit", commitBody(token), adminID)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate commit got %d, want %d", rec.Code, http.StatusConflict)
	}

	rec = ts.do("GET", "/api/payroll/payouts?"+marchQuery, "", adminID)
	var payouts []domainPayroll.Payout
	decodeBody(t, rec, &payouts)
	if len(payouts) != 1 || len(payouts[0].Items) != 1 {
		t.Fatalf("payouts = %+v, want one with one item", payouts)
	}
	if payouts[0].InstructorName != "Ana Instructor" {
		t.Errorf("InstructorName = %q", payouts[0].InstructorName)
	}

	rec = ts.do("GET", "/api/payroll/export?"+marchQuery, "", adminID)
	if rec.Code != http.StatusOK {
		t.Fatalf("export got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "payroll_2024-03-01_2024-04-01.csv") {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 || strings.Join(rows[0], ",") != strings.Join(projections.PayoutCSVHeader, ",") {
		t.Fatalf("csv rows = %v", rows)
	}
	if rows[1][2] != "50.00" || rows[1][6] != "" {
		t.Errorf("csv row = %v, want amount 50.00 and empty paid at", rows[1])
	}

	rec = ts.do("POST", "/api/payroll/approve", fmt.Sprintf(`{"ids":[%q,%q]}`, payouts[0].ID, payouts[0].ID), adminID)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve got %d: %s", rec.Code, rec.Body.String())
	}
	var approved struct {
		Updated  int64 `json:"updated"`
		Notified int   `json:"notified"`
	}
	decodeBody(t, rec, &approved)
	if approved.Updated != 1 || approved.Notified != 1 {
		t.Errorf("approve result = %+v, want 1 updated and 1 notified", approved)
	}
	sent := ts.sender.Sent()
	if len(sent) != 1 || sent[0].To[0] != "ana@studio.test" {
		t.Errorf("sent = %+v", sent)
	}
}

// TestPayrollCommit_StaleToken verifies a token from different numbers is refused.
func TestPayrollCommit_StaleToken(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPayroll(t)

	rec := ts.do("POST", "/api/payroll/commit", commitBody(strings.Repeat("0", 64)), adminID)
	if rec.Code != http.StatusConflict {
		t.Errorf("got %d, want %d", rec.Code, http.StatusConflict)
	}
	rec = ts.do("GET", "/api/payroll/payouts?"+marchQuery, "", adminID)
	var payouts []domainPayroll.Payout
	decodeBody(t, rec, &payouts)
	if len(payouts) != 0 {
		t.Errorf("payouts = %d, want 0 after a refused commit", len(payouts))
	}
}

// TestPayrollCommit_NothingToCommit verifies an empty period is a client error.
func TestPayrollCommit_NothingToCommit(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do("POST", "/api/payroll/commit", `{"start":"2024-03-01","end":"2024-04-01"}`, adminID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// TestPayrollCommit_InvalidJSON verifies unknown fields are rejected.
func TestPayrollCommit_InvalidJSON(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do("POST", "/api/payroll/commit", `{"start":"2024-03-01","end":"2024-04-01","results":[]}`, adminID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// TestPayrollApprove_RequiresIDs verifies an empty selection is a client error.
func TestPayrollApprove_RequiresIDs(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do("POST", "/api/payroll/approve", `{"ids":[]}`, adminID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// TestPayrollProfitability verifies revenue and cost per instructor.
func TestPayrollProfitability(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPayroll(t)

	rec := ts.do("GET", "/api/payroll/profitability?"+marchQuery, "", instructorID)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	var rows []domainPayroll.Profitability
	decodeBody(t, rec, &rows)
	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want one per member", rows)
	}
	for _, row := range rows {
		if row.Revenue != 0 || row.Cost != 0 || row.Margin != 0 {
			t.Errorf("unexpected profitability before commit: %+v", row)
		}
	}
}

// TestPayrollConfigs_CRUD saves, lists and deactivates a config.
func TestPayrollConfigs_CRUD(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPayroll(t)

	rec := ts.do("PUT", "/api/payroll/configs", `{"member_id":"inst-1","pay_model":"percentage","rate":4000}`, adminID)
	if rec.Code != http.StatusOK {
		t.Fatalf("put got %d: %s", rec.Code, rec.Body.String())
	}
	var cfg domainPayroll.Config
	decodeBody(t, rec, &cfg)
	if cfg.ID != "cfg-1" || cfg.PayoutBasis != domainPayroll.BasisGross {
		t.Errorf("config = %+v, want existing ID and gross basis", cfg)
	}

	rec = ts.do("PUT", "/api/payroll/configs", `{"member_id":"ghost","pay_model":"flat","rate":100}`, adminID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown member got %d, want %d", rec.Code, http.StatusNotFound)
	}
	rec = ts.do("PUT", "/api/payroll/configs", `{"member_id":"inst-1","pay_model":"commission","rate":100}`, adminID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad pay model got %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = ts.do("DELETE", "/api/payroll/configs?member_id=inst-1", "", adminID)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete got %d", rec.Code)
	}
	rec = ts.do("GET", "/api/payroll/configs?active=true", "", adminID)
	var active []projections.PayrollConfigView
	decodeBody(t, rec, &active)
	if len(active) != 0 {
		t.Errorf("active configs = %+v, want none", active)
	}
	rec = ts.do("GET", "/api/payroll/configs", "", adminID)
	var all []projections.PayrollConfigView
	decodeBody(t, rec, &all)
	if len(all) != 1 || all[0].MemberName != "Ana Instructor" || all[0].Active {
		t.Errorf("configs = %+v", all)
	}

	rec = ts.do("DELETE", "/api/payroll/configs?member_id=stud-1", "", adminID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

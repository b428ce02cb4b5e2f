package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainPayroll "studio/internal/domain/payroll"
)

// PayoutCommitter defines the store interface needed to commit a payroll run.
type PayoutCommitter interface {
	CommitRun(ctx context.Context, run domainPayroll.Run, payouts []domainPayroll.Payout) error
}

// CommitPayoutsInput carries input for the commit payouts orchestrator.
type CommitPayoutsInput struct {
	TenantID string
	Start    time.Time
	End      time.Time
	Results  []domainPayroll.Result // nil means commit a freshly generated preview
	Token    string                 // optional; the token of the preview the caller reviewed
}

// CommitPayoutsDeps holds dependencies for CommitPayouts.
type CommitPayoutsDeps struct {
	PayoutStore     PayoutCommitter
	GeneratePreview func(ctx context.Context, start, end time.Time) (domainPayroll.Preview, error)
	GenerateID      func() string
	Now             func() time.Time
}

// CommitPayoutsResult carries the committed run and its payouts.
type CommitPayoutsResult struct {
	Run     domainPayroll.Run
	Payouts []domainPayroll.Payout
}

// ExecuteCommitPayouts writes one payout per result, with its items, as a single run.
// When a token is given, both the submitted results and a freshly generated preview must
// still match it.
// PRE: TenantID is non-empty; End is after Start
// POST: All payouts are committed in processing status, or none are. Returns
// ErrStalePreview, ErrOverlappingPayout or ErrNothingToCommit without writing anything.
func ExecuteCommitPayouts(ctx context.Context, input CommitPayoutsInput, deps CommitPayoutsDeps) (CommitPayoutsResult, error) {
	if input.TenantID == "" {
		return CommitPayoutsResult{}, domainPayroll.ErrEmptyTenant
	}
	period := domainPayroll.Period{Start: input.Start, End: input.End}
	if err := period.Validate(); err != nil {
		return CommitPayoutsResult{}, err
	}

	results := input.Results
	if input.Token != "" || results == nil {
		if deps.GeneratePreview == nil {
			return CommitPayoutsResult{}, errors.New("preview generator is required")
		}
		fresh, err := deps.GeneratePreview(ctx, input.Start, input.End)
		if err != nil {
			return CommitPayoutsResult{}, fmt.Errorf("generate preview: %w", err)
		}
		if input.Token != "" && fresh.Token != input.Token {
			return CommitPayoutsResult{}, domainPayroll.ErrStalePreview
		}
		if results == nil {
			results = fresh.Results
		}
	}

	results = committable(results)
	token := domainPayroll.PreviewToken(period, results)
	if input.Token != "" && token != input.Token {
		return CommitPayoutsResult{}, domainPayroll.ErrStalePreview
	}
	if len(results) == 0 {
		return CommitPayoutsResult{}, domainPayroll.ErrNothingToCommit
	}

	now := deps.Now()
	run := domainPayroll.Run{
		ID:          deps.GenerateID(),
		TenantID:    input.TenantID,
		PeriodStart: input.Start,
		PeriodEnd:   input.End,
		Token:       token,
		CreatedAt:   now,
	}

	payouts := make([]domainPayroll.Payout, 0, len(results))
	var total int64
	for _, r := range results {
		p := domainPayroll.BuildPayout(r, input.TenantID, run.ID, input.Start, input.End, now, deps.GenerateID)
		p.InstructorName = r.InstructorName
		payouts = append(payouts, p)
		total += p.Amount
	}

	if err := deps.PayoutStore.CommitRun(ctx, run, payouts); err != nil {
		slog.Warn("payroll_event", "event", "payroll_commit_failed", "tenant_id", input.TenantID, "error", err)
		return CommitPayoutsResult{}, err
	}

	slog.Info("payroll_event", "event", "payroll_committed", "tenant_id", input.TenantID, "run_id", run.ID,
		"payouts", len(payouts), "total_cents", total)
	return CommitPayoutsResult{Run: run, Payouts: payouts}, nil
}

// committable rebuilds each result from its items, dropping non-positive lines and empty totals,
// so a payout amount always equals the sum of the items written with it.
func committable(results []domainPayroll.Result) []domainPayroll.Result {
	out := make([]domainPayroll.Result, 0, len(results))
	for _, r := range results {
		n := domainPayroll.NewResult(r.InstructorID, r.InstructorName, r.Items)
		if n.Amount <= 0 {
			continue
		}
		out = append(out, n)
	}
	return out
}

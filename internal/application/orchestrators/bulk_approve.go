package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "studio/internal/adapters/email"
	domainMember "studio/internal/domain/member"
	domainPayroll "studio/internal/domain/payroll"
)

// PayoutApprover defines the store interface needed by the bulk approve orchestrator.
type PayoutApprover interface {
	ApproveMany(ctx context.Context, tenantID string, ids []string, paidAt time.Time, note string) (int64, error)
	ListByIDs(ctx context.Context, tenantID string, ids []string) ([]domainPayroll.Payout, error)
}

// MemberLookup defines the member reads needed by payroll orchestrators.
type MemberLookup interface {
	GetByID(ctx context.Context, tenantID, id string) (domainMember.Member, error)
}

// BulkApproveInput carries input for the bulk approve orchestrator.
type BulkApproveInput struct {
	TenantID  string
	PayoutIDs []string
}

// BulkApproveDeps holds dependencies for BulkApprove. Sender may be nil to skip notifications.
type BulkApproveDeps struct {
	PayoutStore PayoutApprover
	MemberStore MemberLookup
	Sender      emailAdapter.Sender
	From        string
	Now         func() time.Time
}

// BulkApproveResult reports how many payouts were updated and how many instructors were emailed.
type BulkApproveResult struct {
	Updated  int64 `json:"updated"`
	Notified int   `json:"notified"`
}

// ExecuteBulkApprove marks the tenant's payouts paid with the bulk approval note.
// Prior status is not checked, so re-approving a paid payout refreshes its paid time.
// Instructors with an email address are then notified; notification failures are logged only.
// PRE: TenantID is non-empty
// POST: Every listed payout of the tenant is paid
func ExecuteBulkApprove(ctx context.Context, input BulkApproveInput, deps BulkApproveDeps) (BulkApproveResult, error) {
	if input.TenantID == "" {
		return BulkApproveResult{}, domainPayroll.ErrEmptyTenant
	}
	ids := dedupe(input.PayoutIDs)
	if len(ids) == 0 {
		return BulkApproveResult{}, domainPayroll.ErrNoPayoutsSelected
	}

	now := deps.Now()
	updated, err := deps.PayoutStore.ApproveMany(ctx, input.TenantID, ids, now, domainPayroll.BulkApproveNote)
	if err != nil {
		return BulkApproveResult{}, fmt.Errorf("approve payouts: %w", err)
	}
	slog.Info("payroll_event", "event", "payouts_approved", "tenant_id", input.TenantID,
		"requested", len(ids), "updated", updated)

	result := BulkApproveResult{Updated: updated}
	if deps.Sender == nil || updated == 0 {
		return result, nil
	}
	result.Notified = notifyApproved(ctx, input.TenantID, ids, deps)
	return result, nil
}

func notifyApproved(ctx context.Context, tenantID string, ids []string, deps BulkApproveDeps) int {
	payouts, err := deps.PayoutStore.ListByIDs(ctx, tenantID, ids)
	if err != nil {
		slog.Warn("payout_notification_failed", "tenant_id", tenantID, "error", err)
		return 0
	}

	var reqs []emailAdapter.SendRequest
	for _, p := range payouts {
		m, err := deps.MemberStore.GetByID(ctx, tenantID, p.InstructorID)
		if err != nil {
			slog.Warn("payout_notification_skipped", "payout_id", p.ID, "error", err)
			continue
		}
		if m.Email == "" {
			continue
		}
		body := approvalMarkdown(m.Name, p)
		html, err := emailAdapter.RenderMarkdown(body)
		if err != nil {
			slog.Warn("payout_notification_skipped", "payout_id", p.ID, "error", err)
			continue
		}
		reqs = append(reqs, emailAdapter.SendRequest{
			To:      []string{m.Email},
			From:    deps.From,
			Subject: "Your payout has been approved",
			HTML:    html,
			Text:    body,
		})
	}
	if len(reqs) == 0 {
		return 0
	}

	if _, err := deps.Sender.SendBatch(ctx, reqs); err != nil {
		slog.Warn("payout_notification_failed", "tenant_id", tenantID, "count", len(reqs), "error", err)
		return 0
	}
	return len(reqs)
}

func approvalMarkdown(name string, p domainPayroll.Payout) string {
	last := p.PeriodEnd.Add(-time.Nanosecond)
	return fmt.Sprintf("Hi %s,\n\nYour payout of **%s** for %s to %s has been approved and marked paid.\n",
		name, domainPayroll.FormatCents(p.Amount),
		p.PeriodStart.Format("2 Jan 2006"), last.Format("2 Jan 2006"))
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

package payroll

import (
	"errors"
	"time"
)

// Pay model constants
const (
	PayModelFlat       = "flat"
	PayModelHourly     = "hourly"
	PayModelPercentage = "percentage"
)

// Payout basis constants (percentage model only)
const (
	BasisGross = "gross"
	BasisNet   = "net"
)

// Payout status constants
const (
	StatusProcessing = "processing"
	StatusPaid       = "paid"
)

// Item type constants
const (
	ItemClass       = "class"
	ItemAppointment = "appointment"
)

// BulkApproveNote is recorded on payouts approved in bulk.
const BulkApproveNote = "Bulk approved"

// Domain errors
var (
	ErrEmptyTenant        = errors.New("tenant_id is required")
	ErrEmptyMemberID      = errors.New("member_id is required")
	ErrInvalidPayModel    = errors.New("pay model must be one of: flat, hourly, percentage")
	ErrInvalidBasis       = errors.New("payout basis must be 'gross' or 'net'")
	ErrNegativeRate       = errors.New("rate cannot be negative")
	ErrInvalidPeriod      = errors.New("period end must be after period start")
	ErrInvalidPeriodBound = errors.New("period bounds must be YYYY-MM-DD or RFC3339")
	ErrConfigNotFound     = errors.New("payroll config not found")
	ErrPayoutNotFound     = errors.New("payout not found")
	ErrAmountMismatch     = errors.New("payout amount does not equal the sum of its items")
	ErrDuplicateItem      = errors.New("payout contains the same source record twice")
	ErrOverlappingPayout  = errors.New("a payout already exists for this instructor in an overlapping period")
	ErrStalePreview       = errors.New("payroll data changed since the preview was generated")
	ErrNothingToCommit    = errors.New("no payouts to commit")
	ErrNoPayoutsSelected  = errors.New("at least one payout ID is required")
)

// Config is an instructor's pay-rate policy within a tenant.
// Rate is cents for flat/hourly and basis points for percentage (1000 = 10%).
type Config struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	MemberID    string    `json:"member_id"`
	PayModel    string    `json:"pay_model"`
	Rate        int64     `json:"rate"`
	PayoutBasis string    `json:"payout_basis"`
	Active      bool      `json:"active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks if the Config has valid data.
// PRE: Config struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Config) Validate() error {
	if c.TenantID == "" {
		return ErrEmptyTenant
	}
	if c.MemberID == "" {
		return ErrEmptyMemberID
	}
	switch c.PayModel {
	case PayModelFlat, PayModelHourly, PayModelPercentage:
	default:
		return ErrInvalidPayModel
	}
	if c.PayoutBasis != BasisGross && c.PayoutBasis != BasisNet {
		return ErrInvalidBasis
	}
	if c.Rate < 0 {
		return ErrNegativeRate
	}
	return nil
}

// SetDefaultBasis fills in the gross basis when none was given.
func (c *Config) SetDefaultBasis() {
	if c.PayoutBasis == "" {
		c.PayoutBasis = BasisGross
	}
}

// Line is one source record's contribution to an instructor's pay.
type Line struct {
	Type        string    `json:"type"`
	ReferenceID string    `json:"reference_id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Amount      int64     `json:"amount"`
	Details     string    `json:"details"`
}

// Result is the computed pay for one instructor over a period.
type Result struct {
	InstructorID   string `json:"instructor_id"`
	InstructorName string `json:"instructor_name"`
	Amount         int64  `json:"amount"`
	ItemCount      int    `json:"item_count"`
	Items          []Line `json:"items"`
}

// NewResult keeps the lines with a positive amount and totals them.
// PRE: none
// POST: Amount == sum(Items.Amount), ItemCount == len(Items)
func NewResult(instructorID, name string, lines []Line) Result {
	r := Result{InstructorID: instructorID, InstructorName: name, Items: []Line{}}
	for _, l := range lines {
		if l.Amount <= 0 {
			continue
		}
		r.Items = append(r.Items, l)
		r.Amount += l.Amount
	}
	r.ItemCount = len(r.Items)
	return r
}

// ItemDetails is the JSON document stored with each payroll item.
type ItemDetails struct {
	Note  string `json:"note"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Item is a persisted Line belonging to exactly one Payout.
type Item struct {
	ID          string      `json:"id"`
	PayoutID    string      `json:"payout_id"`
	Type        string      `json:"type"`
	ReferenceID string      `json:"reference_id"`
	Amount      int64       `json:"amount"`
	Details     ItemDetails `json:"details"`
}

// Payout is one committed batch of money owed to an instructor for a period.
type Payout struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	InstructorID   string     `json:"instructor_id"`
	InstructorName string     `json:"instructor_name"` // joined for display, not persisted on the payout row
	RunID          string     `json:"run_id"`
	Amount         int64      `json:"amount"`
	PeriodStart    time.Time  `json:"period_start"`
	PeriodEnd      time.Time  `json:"period_end"`
	Status         string     `json:"status"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	Items          []Item     `json:"items,omitempty"`
}

// Validate checks the payout invariants before it is written.
// PRE: Items are attached
// POST: Returns ErrAmountMismatch when Amount != sum(Items.Amount)
func (p *Payout) Validate() error {
	if p.TenantID == "" {
		return ErrEmptyTenant
	}
	if p.InstructorID == "" {
		return ErrEmptyMemberID
	}
	if !p.PeriodEnd.After(p.PeriodStart) {
		return ErrInvalidPeriod
	}
	var sum int64
	seen := make(map[string]bool, len(p.Items))
	for _, it := range p.Items {
		key := it.Type + "/" + it.ReferenceID
		if seen[key] {
			return ErrDuplicateItem
		}
		seen[key] = true
		sum += it.Amount
	}
	if sum != p.Amount {
		return ErrAmountMismatch
	}
	return nil
}

// Approve marks the payout paid. It does not check the prior status.
// POST: Status is paid, PaidAt is now, Notes is note
func (p *Payout) Approve(now time.Time, note string) {
	p.Status = StatusPaid
	paidAt := now
	p.PaidAt = &paidAt
	p.Notes = note
}

// Overlaps reports whether [start, end) intersects the payout period.
func (p *Payout) Overlaps(start, end time.Time) bool {
	return p.PeriodStart.Before(end) && start.Before(p.PeriodEnd)
}

// BuildPayout converts a computed Result into a Payout with items.
// PRE: r came from NewResult; newID yields unique IDs
// POST: Payout is in processing status with Amount recomputed from its items
func BuildPayout(r Result, tenantID, runID string, start, end, now time.Time, newID func() string) Payout {
	p := Payout{
		ID:           newID(),
		TenantID:     tenantID,
		InstructorID: r.InstructorID,
		RunID:        runID,
		PeriodStart:  start,
		PeriodEnd:    end,
		Status:       StatusProcessing,
		CreatedAt:    now,
	}
	for _, l := range r.Items {
		p.Items = append(p.Items, Item{
			ID:          newID(),
			PayoutID:    p.ID,
			Type:        l.Type,
			ReferenceID: l.ReferenceID,
			Amount:      l.Amount,
			Details: ItemDetails{
				Note:  l.Details,
				Title: l.Title,
				Date:  l.Date.UTC().Format(time.RFC3339),
			},
		})
		p.Amount += l.Amount
	}
	return p
}

// Period is a half-open [Start, End) interval.
type Period struct {
	Start time.Time
	End   time.Time
}

// Validate checks that the period is non-empty.
func (p Period) Validate() error {
	if !p.End.After(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// ParsePeriod reads a [start, end) period from text. Each bound is either a date
// (YYYY-MM-DD, midnight UTC) or an RFC3339 timestamp.
// PRE: none
// POST: Returns a valid Period or ErrInvalidPeriodBound / ErrInvalidPeriod
func ParsePeriod(start, end string) (Period, error) {
	s, err := parseBound(start)
	if err != nil {
		return Period{}, err
	}
	e, err := parseBound(end)
	if err != nil {
		return Period{}, err
	}
	p := Period{Start: s, End: e}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func parseBound(v string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, ErrInvalidPeriodBound
	}
	return t.UTC(), nil
}

// Contains reports whether t falls in [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Run records one committed payroll batch. Every payout written by the batch carries its ID.
type Run struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Token       string    `json:"token"`
	CreatedAt   time.Time `json:"created_at"`
}

// Preview is a computed but uncommitted payroll for a period.
// Token identifies the exact numbers so a commit can detect that they changed.
type Preview struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Results []Result  `json:"results"`
	Token   string    `json:"token"`
}

// Total sums every result's amount.
func (p Preview) Total() int64 {
	var total int64
	for _, r := range p.Results {
		total += r.Amount
	}
	return total
}

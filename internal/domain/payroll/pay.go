package payroll

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"studio/internal/domain/appointment"
	"studio/internal/domain/booking"
	"studio/internal/domain/classevent"
)

// FeePolicy estimates card-processor fees deducted from revenue on a net basis.
type FeePolicy struct {
	Rate       float64 // fraction of gross, e.g. 0.029
	FixedCents int64   // per drop-in charge
}

// DefaultFeePolicy approximates a 2.9% + 30¢ card processor.
var DefaultFeePolicy = FeePolicy{Rate: 0.029, FixedCents: 30}

// Deduction returns floor(gross × Rate) + FixedCents × dropIns.
func (f FeePolicy) Deduction(gross float64, dropIns int) float64 {
	return math.Floor(gross*f.Rate) + float64(f.FixedCents)*float64(dropIns)
}

// Net returns gross minus the estimated fee deduction.
func (f FeePolicy) Net(gross float64, dropIns int) float64 {
	return gross - f.Deduction(gross, dropIns)
}

// Revenue is the reconstructed takings of one class.
type Revenue struct {
	Gross    float64
	DropIns  int
	Bookings int
}

// ClassRevenue reconstructs gross revenue for a class from its confirmed bookings.
// Drop-ins count the class price; credit bookings count an equal share of the pack used.
// Credit bookings whose pack is not in packs contribute nothing.
// PRE: bookings belong to c
// POST: Returns booking.ErrInvalidPack if a referenced pack has no credits
func ClassRevenue(c classevent.ClassEvent, bookings []booking.Booking, packs map[string]booking.ClassPack) (Revenue, error) {
	var rev Revenue
	for _, b := range bookings {
		if !b.IsConfirmed() || b.ClassID != c.ID {
			continue
		}
		switch b.PaymentMethod {
		case booking.PaymentDropIn:
			rev.Gross += float64(c.Price)
			rev.DropIns++
			rev.Bookings++
		case booking.PaymentCredit:
			pack, ok := packs[b.UsedPackID]
			if !ok {
				continue
			}
			v, err := pack.CreditValue()
			if err != nil {
				return Revenue{}, fmt.Errorf("pack %s: %w", pack.ID, err)
			}
			rev.Gross += v
			rev.Bookings++
		}
	}
	return rev, nil
}

// Basis picks the revenue figure a percentage config is paid on.
func (r Revenue) Basis(payoutBasis string, fees FeePolicy) float64 {
	if payoutBasis == BasisNet {
		return fees.Net(r.Gross, r.DropIns)
	}
	return r.Gross
}

// FlatPay pays the rate per item regardless of duration.
func FlatPay(rate int64) int64 {
	return rate
}

// HourlyPay returns round(rate × minutes / 60).
func HourlyPay(rate, minutes int64) int64 {
	return roundCents(float64(rate) * float64(minutes) / 60)
}

// PercentagePay returns round(basis × rateBps / 10000).
func PercentagePay(basis float64, rateBps int64) int64 {
	return roundCents(basis * float64(rateBps) / 10000)
}

func roundCents(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Round(v))
}

// ClassLine computes a config's pay for one class.
// PRE: cfg is valid; rev was built by ClassRevenue for c
// POST: Returns a Line; callers drop non-positive amounts
func ClassLine(cfg Config, c classevent.ClassEvent, rev Revenue, fees FeePolicy) Line {
	l := Line{Type: ItemClass, ReferenceID: c.ID, Title: c.Title, Date: c.StartTime}
	switch cfg.PayModel {
	case PayModelFlat:
		l.Amount = FlatPay(cfg.Rate)
		l.Details = "Flat rate " + FormatCents(cfg.Rate)
	case PayModelHourly:
		mins := c.DurationMinutes()
		l.Amount = HourlyPay(cfg.Rate, mins)
		l.Details = fmt.Sprintf("%d min at %s/hr", mins, FormatCents(cfg.Rate))
	case PayModelPercentage:
		basis := rev.Basis(cfg.PayoutBasis, fees)
		l.Amount = PercentagePay(basis, cfg.Rate)
		l.Details = percentDetails(cfg, basis, rev.Bookings)
	}
	return l
}

// AppointmentLine computes a config's pay for one appointment.
// Under the percentage model the appointment price is the gross, charged as one card payment.
func AppointmentLine(cfg Config, a appointment.Appointment, fees FeePolicy) Line {
	l := Line{Type: ItemAppointment, ReferenceID: a.ID, Title: a.Title(), Date: a.StartTime}
	switch cfg.PayModel {
	case PayModelFlat:
		l.Amount = FlatPay(cfg.Rate)
		l.Details = "Flat rate " + FormatCents(cfg.Rate)
	case PayModelHourly:
		mins := a.DurationMinutes()
		l.Amount = HourlyPay(cfg.Rate, mins)
		l.Details = fmt.Sprintf("%d min at %s/hr", mins, FormatCents(cfg.Rate))
	case PayModelPercentage:
		rev := Revenue{Gross: float64(a.Price), DropIns: 1, Bookings: 1}
		basis := rev.Basis(cfg.PayoutBasis, fees)
		l.Amount = PercentagePay(basis, cfg.Rate)
		l.Details = percentDetails(cfg, basis, 1)
	}
	return l
}

func percentDetails(cfg Config, basis float64, bookings int) string {
	pct := decimal.New(cfg.Rate, -2).StringFixed(2)
	amount := decimal.NewFromFloat(basis).Div(decimal.NewFromInt(100)).StringFixed(2)
	return fmt.Sprintf("%s%% of $%s %s revenue (%d bookings)", pct, amount, cfg.PayoutBasis, bookings)
}

// FormatCents renders minor units as a dollar amount, e.g. 6000 -> "$60.00".
func FormatCents(cents int64) string {
	return "$" + CentsToDecimal(cents)
}

// CentsToDecimal renders minor units as a plain decimal string, e.g. 12345 -> "123.45".
func CentsToDecimal(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

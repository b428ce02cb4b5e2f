package payroll

import "math"

// Profitability compares the revenue an instructor's classes generated with what they were paid.
type Profitability struct {
	InstructorID string  `json:"instructor_id"`
	Name         string  `json:"name"`
	Revenue      int64   `json:"revenue"`
	Cost         int64   `json:"cost"`
	Profit       int64   `json:"profit"`
	Margin       float64 `json:"margin"`
}

// NewProfitability derives profit and margin; margin is 0 when there is no revenue.
func NewProfitability(instructorID, name string, revenue float64, cost int64) Profitability {
	rev := int64(math.Round(revenue))
	p := Profitability{
		InstructorID: instructorID,
		Name:         name,
		Revenue:      rev,
		Cost:         cost,
		Profit:       rev - cost,
	}
	if rev != 0 {
		p.Margin = float64(p.Profit) / float64(rev) * 100
	}
	return p
}

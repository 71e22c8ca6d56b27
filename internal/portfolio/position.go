package portfolio

import "time"

// Position is one open holding in one instrument. It is an immutable value:
// partial buys and sells replace the stored Position with a new one rather
// than mutating fields, which keeps the average-cost arithmetic auditable.
type Position struct {
	Symbol     string    `json:"symbol"`
	Shares     float64   `json:"shares"`
	EntryPrice float64   `json:"entry_price"` // volume-weighted average cost
	EntryDate  time.Time `json:"entry_date"`  // date of the first buy, preserved across merges
}

// CostBasis returns the total cost of the position at average entry price.
func (p Position) CostBasis() float64 {
	return p.Shares * p.EntryPrice
}

// CurrentValue returns the mark-to-market value at the given price.
func (p Position) CurrentValue(price float64) float64 {
	return p.Shares * price
}

// UnrealizedPnL returns the open profit or loss at the given price.
func (p Position) UnrealizedPnL(price float64) float64 {
	return p.CurrentValue(price) - p.CostBasis()
}

// UnrealizedPnLPct returns the open profit or loss relative to cost basis.
// Returns 0 when the cost basis is 0.
func (p Position) UnrealizedPnLPct(price float64) float64 {
	basis := p.CostBasis()
	if basis == 0 {
		return 0
	}
	return p.UnrealizedPnL(price) / basis
}

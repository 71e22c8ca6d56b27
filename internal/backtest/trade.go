package backtest

import (
	"fmt"
	"time"
)

// Side is the direction of a trade. Only long trades are produced by the
// engine; the field exists so the P&L arithmetic states its assumption.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Trade is one completed round trip: a matched entry and exit fully closing
// a position. It is immutable once created; everything else is derived.
type Trade struct {
	Symbol          string    `json:"symbol"`
	Side            Side      `json:"side"`
	EntryDate       time.Time `json:"entry_date"`
	EntryPrice      float64   `json:"entry_price"`
	ExitDate        time.Time `json:"exit_date"`
	ExitPrice       float64   `json:"exit_price"`
	Shares          float64   `json:"shares"`
	EntryCommission float64   `json:"entry_commission"`
	ExitCommission  float64   `json:"exit_commission"`
}

// HoldingPeriod is the time between entry and exit.
func (t Trade) HoldingPeriod() time.Duration {
	return t.ExitDate.Sub(t.EntryDate)
}

// HoldingDays is the holding period in whole days.
func (t Trade) HoldingDays() int {
	return int(t.HoldingPeriod().Hours() / 24)
}

// EntryValue is the total cost of entry including commission.
func (t Trade) EntryValue() float64 {
	return t.Shares*t.EntryPrice + t.EntryCommission
}

// ExitValue is the total proceeds from exit net of commission.
func (t Trade) ExitValue() float64 {
	return t.Shares*t.ExitPrice - t.ExitCommission
}

// GrossPnL is the profit or loss before commissions.
func (t Trade) GrossPnL() float64 {
	if t.Side == SideShort {
		return t.Shares * (t.EntryPrice - t.ExitPrice)
	}
	return t.Shares * (t.ExitPrice - t.EntryPrice)
}

// CommissionPaid is the total commission across both legs.
func (t Trade) CommissionPaid() float64 {
	return t.EntryCommission + t.ExitCommission
}

// NetPnL is the profit or loss after commissions.
func (t Trade) NetPnL() float64 {
	return t.GrossPnL() - t.CommissionPaid()
}

// ReturnPct is the net P&L relative to the entry value. Returns 0 when the
// entry value is 0.
func (t Trade) ReturnPct() float64 {
	entry := t.EntryValue()
	if entry == 0 {
		return 0
	}
	return t.NetPnL() / entry
}

// IsWinner reports whether the trade was profitable after commissions.
func (t Trade) IsWinner() bool {
	return t.NetPnL() > 0
}

// String implements fmt.Stringer.
func (t Trade) String() string {
	return fmt.Sprintf("Trade(%s %s: %s -> %s, P&L: $%.2f (%.2f%%))",
		t.Symbol, t.Side,
		t.EntryDate.Format("2006-01-02"), t.ExitDate.Format("2006-01-02"),
		t.NetPnL(), t.ReturnPct()*100)
}

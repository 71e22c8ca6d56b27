package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidemark/tidemark/internal/portfolio"
)

// Result is the immutable report of one backtest run. Trade statistics are
// derived on demand rather than stored, so the trade list stays the single
// source of truth.
type Result struct {
	Strategy       string               `json:"strategy"`
	Symbol         string               `json:"symbol"`
	StartDate      time.Time            `json:"start_date"`
	EndDate        time.Time            `json:"end_date"`
	InitialCapital float64              `json:"initial_capital"`
	FinalCapital   float64              `json:"final_capital"`
	EquityCurve    []portfolio.Snapshot `json:"equity_curve"`
	Trades         []Trade              `json:"trades"`
	Metrics        map[string]float64   `json:"metrics"`
}

// TotalReturn is the overall return on initial capital.
func (r *Result) TotalReturn() float64 {
	if r.InitialCapital == 0 {
		return 0
	}
	return (r.FinalCapital - r.InitialCapital) / r.InitialCapital
}

// NumTrades is the number of completed round trips.
func (r *Result) NumTrades() int {
	return len(r.Trades)
}

// WinningTrades returns the profitable trades.
func (r *Result) WinningTrades() []Trade {
	var winners []Trade
	for _, t := range r.Trades {
		if t.IsWinner() {
			winners = append(winners, t)
		}
	}
	return winners
}

// LosingTrades returns the unprofitable trades.
func (r *Result) LosingTrades() []Trade {
	var losers []Trade
	for _, t := range r.Trades {
		if !t.IsWinner() {
			losers = append(losers, t)
		}
	}
	return losers
}

// WinRate is the share of winning trades, in [0, 1]. It is 0 for an empty
// trade list.
func (r *Result) WinRate() float64 {
	if len(r.Trades) == 0 {
		return 0
	}
	return float64(len(r.WinningTrades())) / float64(len(r.Trades))
}

// AvgWin is the mean net P&L of winning trades, 0 when there are none.
func (r *Result) AvgWin() float64 {
	winners := r.WinningTrades()
	if len(winners) == 0 {
		return 0
	}
	var sum float64
	for _, t := range winners {
		sum += t.NetPnL()
	}
	return sum / float64(len(winners))
}

// AvgLoss is the mean net P&L of losing trades, 0 when there are none.
func (r *Result) AvgLoss() float64 {
	losers := r.LosingTrades()
	if len(losers) == 0 {
		return 0
	}
	var sum float64
	for _, t := range losers {
		sum += t.NetPnL()
	}
	return sum / float64(len(losers))
}

// ProfitFactor is gross wins over gross losses. It is +Inf when there are
// wins but no losses, and 0 when there is neither.
func (r *Result) ProfitFactor() float64 {
	var grossWins, grossLosses float64
	for _, t := range r.Trades {
		pnl := t.NetPnL()
		if pnl > 0 {
			grossWins += pnl
		} else {
			grossLosses += -pnl
		}
	}
	if grossLosses == 0 {
		if grossWins > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossWins / grossLosses
}

// AvgHoldingPeriod is the mean holding period in days, 0 with no trades.
func (r *Result) AvgHoldingPeriod() float64 {
	if len(r.Trades) == 0 {
		return 0
	}
	var sum float64
	for _, t := range r.Trades {
		sum += float64(t.HoldingDays())
	}
	return sum / float64(len(r.Trades))
}

// tradeHeader is the column order of the tabular trade export.
var tradeHeader = []string{
	"symbol", "side", "entry_date", "entry_price", "exit_date", "exit_price",
	"shares", "holding_days", "entry_value", "exit_value", "gross_pnl",
	"commission_paid", "net_pnl", "return_pct", "is_winner",
}

// TradeRecords returns the trades as a table, header row first.
func (r *Result) TradeRecords() [][]string {
	records := make([][]string, 0, len(r.Trades)+1)
	records = append(records, tradeHeader)
	for _, t := range r.Trades {
		records = append(records, []string{
			t.Symbol,
			string(t.Side),
			t.EntryDate.Format(time.RFC3339),
			formatFloat(t.EntryPrice),
			t.ExitDate.Format(time.RFC3339),
			formatFloat(t.ExitPrice),
			formatFloat(t.Shares),
			strconv.Itoa(t.HoldingDays()),
			formatFloat(t.EntryValue()),
			formatFloat(t.ExitValue()),
			formatFloat(t.GrossPnL()),
			formatFloat(t.CommissionPaid()),
			formatFloat(t.NetPnL()),
			formatFloat(t.ReturnPct()),
			strconv.FormatBool(t.IsWinner()),
		})
	}
	return records
}

// WriteTradesCSV writes the trade table as CSV.
func (r *Result) WriteTradesCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(r.TradeRecords()); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Summary renders a formatted textual report of the run.
func (r *Result) Summary() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 60)

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "backtest results: %s\n", r.Strategy)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "symbol:          %s\n", r.Symbol)
	fmt.Fprintf(&b, "period:          %s to %s\n",
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "duration:        %d days\n", int(r.EndDate.Sub(r.StartDate).Hours()/24))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "performance")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "initial capital: $%.2f\n", r.InitialCapital)
	fmt.Fprintf(&b, "final capital:   $%.2f\n", r.FinalCapital)
	fmt.Fprintf(&b, "total return:    %8.2f%%\n", r.TotalReturn()*100)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "metrics")
	fmt.Fprintln(&b, thin)
	for _, key := range sortedKeys(r.Metrics) {
		value := r.Metrics[key]
		if strings.Contains(key, "ratio") || key == "win_rate" || key == "profit_factor" || key == "num_periods" {
			fmt.Fprintf(&b, "%-20s: %8.2f\n", key, value)
		} else {
			fmt.Fprintf(&b, "%-20s: %8.2f%%\n", key, value*100)
		}
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "trades")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "total trades:    %d\n", r.NumTrades())
	fmt.Fprintf(&b, "winners:         %d (%.1f%%)\n", len(r.WinningTrades()), r.WinRate()*100)
	fmt.Fprintf(&b, "losers:          %d\n", len(r.LosingTrades()))
	fmt.Fprintf(&b, "profit factor:   %.2f\n", r.ProfitFactor())
	fmt.Fprintf(&b, "avg win:         $%.2f\n", r.AvgWin())
	fmt.Fprintf(&b, "avg loss:        $%.2f\n", r.AvgLoss())
	fmt.Fprintf(&b, "avg hold period: %.1f days\n", r.AvgHoldingPeriod())
	fmt.Fprintln(&b, rule)

	return b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String implements fmt.Stringer.
func (r *Result) String() string {
	return fmt.Sprintf("Result(%s, return=%.2f%%, trades=%d)",
		r.Strategy, r.TotalReturn()*100, r.NumTrades())
}

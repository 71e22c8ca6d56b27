// Package portfolio tracks cash, open positions, and the equity history of
// one backtest run.
package portfolio

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Snapshot is one point of the portfolio history, recorded once per bar.
type Snapshot struct {
	Date          time.Time `json:"date"`
	Cash          float64   `json:"cash"`
	PositionValue float64   `json:"position_value"`
	TotalValue    float64   `json:"total_value"`
}

// Portfolio owns the cash balance and the symbol->Position mapping of a
// single run. All mutation goes through Buy, Sell, and UpdateHistory.
// It is not safe for concurrent use; each run owns its own instance.
type Portfolio struct {
	initialCash float64
	cash        float64
	positions   map[string]Position
	history     []Snapshot
	logger      *zap.Logger
}

// New creates a portfolio with the given starting cash.
func New(initialCash float64, logger *zap.Logger) *Portfolio {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Portfolio{
		initialCash: initialCash,
		cash:        initialCash,
		positions:   make(map[string]Position),
		logger:      logger,
	}
}

// InitialCash returns the starting cash balance.
func (p *Portfolio) InitialCash() float64 {
	return p.initialCash
}

// Cash returns the current cash balance. It never goes negative: Buy
// rejects any order whose cost exceeds it.
func (p *Portfolio) Cash() float64 {
	return p.cash
}

// PositionValue returns the total cost basis of all open positions.
func (p *Portfolio) PositionValue() float64 {
	var total float64
	for _, pos := range p.positions {
		total += pos.CostBasis()
	}
	return total
}

// TotalValue returns cash plus position value at cost basis.
func (p *Portfolio) TotalValue() float64 {
	return p.cash + p.PositionValue()
}

// MarketValue returns cash plus mark-to-market position value. Positions
// without a quote in prices fall back to their entry price.
func (p *Portfolio) MarketValue(prices map[string]float64) float64 {
	return p.cash + p.markedPositionValue(prices)
}

func (p *Portfolio) markedPositionValue(prices map[string]float64) float64 {
	var total float64
	for _, pos := range p.positions {
		price, ok := prices[pos.Symbol]
		if !ok {
			price = pos.EntryPrice
		}
		total += pos.CurrentValue(price)
	}
	return total
}

// HasPosition reports whether an open position exists for the symbol.
func (p *Portfolio) HasPosition(symbol string) bool {
	pos, ok := p.positions[symbol]
	return ok && pos.Shares > 0
}

// Position returns the open position for the symbol, if any.
func (p *Portfolio) Position(symbol string) (Position, bool) {
	pos, ok := p.positions[symbol]
	return pos, ok
}

// OpenPositions returns the number of open positions.
func (p *Portfolio) OpenPositions() int {
	return len(p.positions)
}

// Buy debits cash and opens or adds to a position. It returns false and
// leaves all state untouched when the total cost exceeds available cash;
// insolvency is rejected here, never raised.
//
// Adding to an existing position merges at the volume-weighted average
// price and preserves the original entry date.
func (p *Portfolio) Buy(symbol string, shares, price float64, date time.Time, commission float64) bool {
	cost := shares*price + commission
	if cost > p.cash {
		p.logger.Debug("buy rejected, insufficient cash",
			zap.String("symbol", symbol),
			zap.Float64("cost", cost),
			zap.Float64("cash", p.cash))
		return false
	}

	p.cash -= cost

	if existing, ok := p.positions[symbol]; ok {
		totalShares := existing.Shares + shares
		totalCost := existing.CostBasis() + shares*price
		p.positions[symbol] = Position{
			Symbol:     symbol,
			Shares:     totalShares,
			EntryPrice: totalCost / totalShares,
			EntryDate:  existing.EntryDate,
		}
	} else {
		p.positions[symbol] = Position{
			Symbol:     symbol,
			Shares:     shares,
			EntryPrice: price,
			EntryDate:  date,
		}
	}

	return true
}

// Sell credits cash with the proceeds and reduces or closes a position.
// shares <= 0 sells the whole position; requests above the held amount are
// clamped to it. The second return is false when no position exists for
// the symbol. The realized P&L is proceeds minus the cost basis of the
// shares sold.
//
// A partial sell keeps the average entry price unchanged; a full sell
// removes the mapping entry so a zero-share position is never stored.
func (p *Portfolio) Sell(symbol string, shares, price float64, date time.Time, commission float64) (float64, bool) {
	if !p.HasPosition(symbol) {
		return 0, false
	}

	position := p.positions[symbol]
	sharesToSell := shares
	if sharesToSell <= 0 || sharesToSell > position.Shares {
		sharesToSell = position.Shares
	}

	proceeds := sharesToSell*price - commission
	costBasisSold := sharesToSell * position.EntryPrice
	realizedPnL := proceeds - costBasisSold

	p.cash += proceeds

	if sharesToSell >= position.Shares {
		delete(p.positions, symbol)
	} else {
		p.positions[symbol] = Position{
			Symbol:     symbol,
			Shares:     position.Shares - sharesToSell,
			EntryPrice: position.EntryPrice,
			EntryDate:  position.EntryDate,
		}
	}

	return realizedPnL, true
}

// UpdateHistory appends one mark-to-market snapshot. Call it exactly once
// per bar, in timestamp order, to produce a well-formed equity curve.
func (p *Portfolio) UpdateHistory(date time.Time, prices map[string]float64) {
	positionValue := p.markedPositionValue(prices)
	p.history = append(p.history, Snapshot{
		Date:          date,
		Cash:          p.cash,
		PositionValue: positionValue,
		TotalValue:    p.cash + positionValue,
	})
}

// History returns the recorded snapshots in order.
func (p *Portfolio) History() []Snapshot {
	return p.history
}

// EquityCurve returns the total-value series of the recorded history.
func (p *Portfolio) EquityCurve() []float64 {
	equity := make([]float64, len(p.history))
	for i, s := range p.history {
		equity[i] = s.TotalValue
	}
	return equity
}

// Returns computes period-over-period returns from the equity curve. The
// first snapshot is dropped since it has no prior.
func (p *Portfolio) Returns() []float64 {
	if len(p.history) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(p.history)-1)
	for i := 1; i < len(p.history); i++ {
		prev := p.history[i-1].TotalValue
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, p.history[i].TotalValue/prev-1)
	}
	return returns
}

// PositionSummary describes one open position marked at the given price.
type PositionSummary struct {
	Symbol           string    `json:"symbol"`
	Shares           float64   `json:"shares"`
	EntryPrice       float64   `json:"entry_price"`
	CurrentPrice     float64   `json:"current_price"`
	CostBasis        float64   `json:"cost_basis"`
	CurrentValue     float64   `json:"current_value"`
	UnrealizedPnL    float64   `json:"unrealized_pnl"`
	UnrealizedPnLPct float64   `json:"unrealized_pnl_pct"`
	EntryDate        time.Time `json:"entry_date"`
}

// Summary describes the whole portfolio marked at the given prices.
type Summary struct {
	InitialCash   float64           `json:"initial_cash"`
	CurrentCash   float64           `json:"current_cash"`
	PositionValue float64           `json:"position_value"`
	TotalValue    float64           `json:"total_value"`
	TotalReturn   float64           `json:"total_return"`
	NumPositions  int               `json:"num_positions"`
	Positions     []PositionSummary `json:"positions"`
}

// Summarize builds a point-in-time report of the portfolio.
func (p *Portfolio) Summarize(prices map[string]float64) Summary {
	total := p.MarketValue(prices)

	summary := Summary{
		InitialCash:  p.initialCash,
		CurrentCash:  p.cash,
		TotalValue:   total,
		NumPositions: len(p.positions),
	}
	if p.initialCash != 0 {
		summary.TotalReturn = (total - p.initialCash) / p.initialCash
	}

	for _, pos := range p.positions {
		price, ok := prices[pos.Symbol]
		if !ok {
			price = pos.EntryPrice
		}
		ps := PositionSummary{
			Symbol:           pos.Symbol,
			Shares:           pos.Shares,
			EntryPrice:       pos.EntryPrice,
			CurrentPrice:     price,
			CostBasis:        pos.CostBasis(),
			CurrentValue:     pos.CurrentValue(price),
			UnrealizedPnL:    pos.UnrealizedPnL(price),
			UnrealizedPnLPct: pos.UnrealizedPnLPct(price),
			EntryDate:        pos.EntryDate,
		}
		summary.Positions = append(summary.Positions, ps)
		summary.PositionValue += ps.CurrentValue
	}

	return summary
}

// String implements fmt.Stringer.
func (p *Portfolio) String() string {
	return fmt.Sprintf("Portfolio(cash=$%.2f, positions=%d, value=$%.2f)",
		p.cash, len(p.positions), p.TotalValue())
}

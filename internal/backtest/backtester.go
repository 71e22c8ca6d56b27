// Package backtest simulates order execution for a strategy over a
// historical price series: it converts signals into fills with commission
// and slippage, drives the portfolio state bar by bar, and reconstructs
// round-trip trades from the signal stream.
package backtest

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/tidemark/tidemark/internal/core"
	"github.com/tidemark/tidemark/internal/perf"
	"github.com/tidemark/tidemark/internal/portfolio"
	"github.com/tidemark/tidemark/internal/strategy"
)

// defaultSymbol is used when the caller does not name the instrument.
const defaultSymbol = "UNKNOWN"

// MetricsFunc maps a return series to named performance metrics. It is
// called once per run with the run's derived returns, which may be empty.
type MetricsFunc func(returns []float64) map[string]float64

// Config holds the execution-cost model of the simulation.
type Config struct {
	InitialCapital  float64 // starting cash
	CommissionPct   float64 // commission as a fraction of trade value
	SlippagePct     float64 // execution-price penalty as a fraction of the close
	PositionSizePct float64 // fraction of available cash committed per entry
}

// DefaultConfig returns the standard cost model: $100k capital, 0.1%
// commission, 0.05% slippage, full-cash position sizing.
func DefaultConfig() Config {
	return Config{
		InitialCapital:  100000,
		CommissionPct:   0.001,
		SlippagePct:     0.0005,
		PositionSizePct: 1.0,
	}
}

// entryRecord is the provisional half of a future Trade, kept from the
// moment a buy fills until the matching exit.
type entryRecord struct {
	date       time.Time
	price      float64
	shares     float64
	commission float64
}

// Backtester drives one simulation at a time. The per-run state (portfolio,
// trade list, open entries) is reset at the start of every Run, so a single
// instance can be reused sequentially; concurrent callers need their own
// instances.
type Backtester struct {
	cfg       Config
	metricsFn MetricsFunc
	logger    *zap.Logger

	pf          *portfolio.Portfolio
	trades      []Trade
	openEntries map[string]entryRecord
}

// Option configures a Backtester.
type Option func(*Backtester)

// WithLogger attaches a zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backtester) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetricsFunc replaces the default performance-metric computation.
func WithMetricsFunc(fn MetricsFunc) Option {
	return func(b *Backtester) {
		if fn != nil {
			b.metricsFn = fn
		}
	}
}

// New creates a Backtester with the given cost model.
func New(cfg Config, opts ...Option) *Backtester {
	b := &Backtester{
		cfg:       cfg,
		metricsFn: perf.CalculateAll,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CalculateShares returns the largest whole-share quantity affordable with
// the given capital at the given price, reserving room for commission.
func (b *Backtester) CalculateShares(price, availableCapital float64) float64 {
	if price <= 0 || availableCapital <= 0 {
		return 0
	}
	return math.Floor(availableCapital / (price * (1 + b.cfg.CommissionPct)))
}

// CalculateCommission returns the commission for a fill of the given size.
func (b *Backtester) CalculateCommission(shares, price float64) float64 {
	return shares * price * b.cfg.CommissionPct
}

// ApplySlippage adjusts the quoted price in the direction unfavorable to
// the trader: buys pay more, sells receive less.
func (b *Backtester) ApplySlippage(price float64, side Side) float64 {
	if side == SideLong {
		return price * (1 + b.cfg.SlippagePct)
	}
	return price * (1 - b.cfg.SlippagePct)
}

// Run executes the strategy over the series and returns the assembled
// result. It fails fast, before any state mutation, when the series is
// empty, unordered, or missing close prices, and when the strategy cannot
// produce signals. Insufficient cash, absent signals, and sells without a
// position are normal conditions and are skipped silently.
func (b *Backtester) Run(strat strategy.Strategy, series core.Series, symbol string) (*Result, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if symbol == "" {
		symbol = defaultSymbol
	}

	signals, err := strat.Signals(series)
	if err != nil {
		return nil, err
	}

	b.pf = portfolio.New(b.cfg.InitialCapital, b.logger)
	b.trades = nil
	b.openEntries = make(map[string]entryRecord)

	for _, bar := range series.Bars {
		price := bar.Close

		switch signals[bar.Time] { // absent timestamps read as hold
		case core.SignalBuy:
			b.processBuySignal(symbol, bar.Time, price)
		case core.SignalSell:
			b.processSellSignal(symbol, bar.Time, price)
		}

		// History marks positions at the bar close, not the fill price.
		b.pf.UpdateHistory(bar.Time, map[string]float64{symbol: price})
	}

	// Force-close anything still open at the final bar so every run ends
	// with a fully realized trade list.
	if b.pf.HasPosition(symbol) {
		last := series.Bars[len(series.Bars)-1]
		b.processSellSignal(symbol, last.Time, last.Close)
	}

	returns := b.pf.Returns()
	metrics := map[string]float64{}
	if len(returns) > 0 {
		metrics = b.metricsFn(returns)
	}

	history := b.pf.History()
	equity := make([]portfolio.Snapshot, len(history))
	copy(equity, history)

	result := &Result{
		Strategy:       strat.Name(),
		Symbol:         symbol,
		StartDate:      series.Start(),
		EndDate:        series.End(),
		InitialCapital: b.cfg.InitialCapital,
		FinalCapital:   b.pf.TotalValue(),
		EquityCurve:    equity,
		Trades:         b.trades,
		Metrics:        metrics,
	}

	b.logger.Info("backtest complete",
		zap.String("strategy", strat.Name()),
		zap.String("symbol", symbol),
		zap.Int("bars", series.Len()),
		zap.Int("trades", result.NumTrades()),
		zap.Float64("total_return", result.TotalReturn()))

	return result, nil
}

// processBuySignal opens a position if none exists and cash allows.
func (b *Backtester) processBuySignal(symbol string, date time.Time, price float64) {
	if b.pf.HasPosition(symbol) {
		return // one position per symbol; extra buy signals are no-ops
	}

	executionPrice := b.ApplySlippage(price, SideLong)
	availableCapital := b.pf.Cash() * b.cfg.PositionSizePct
	shares := b.CalculateShares(executionPrice, availableCapital)
	if shares <= 0 {
		return
	}

	commission := b.CalculateCommission(shares, executionPrice)
	if !b.pf.Buy(symbol, shares, executionPrice, date, commission) {
		return
	}

	b.openEntries[symbol] = entryRecord{
		date:       date,
		price:      executionPrice,
		shares:     shares,
		commission: commission,
	}

	b.logger.Debug("entry filled",
		zap.String("symbol", symbol),
		zap.Time("date", date),
		zap.Float64("price", executionPrice),
		zap.Float64("shares", shares))
}

// processSellSignal closes the whole position and records the round trip.
func (b *Backtester) processSellSignal(symbol string, date time.Time, price float64) {
	if !b.pf.HasPosition(symbol) {
		return
	}

	executionPrice := b.ApplySlippage(price, SideShort)
	position, _ := b.pf.Position(symbol)
	shares := position.Shares
	commission := b.CalculateCommission(shares, executionPrice)

	if _, ok := b.pf.Sell(symbol, 0, executionPrice, date, commission); !ok {
		return
	}

	entry, ok := b.openEntries[symbol]
	if !ok {
		return // no matching entry, nothing to reconstruct
	}

	b.trades = append(b.trades, Trade{
		Symbol:          symbol,
		Side:            SideLong,
		EntryDate:       entry.date,
		EntryPrice:      entry.price,
		ExitDate:        date,
		ExitPrice:       executionPrice,
		Shares:          shares,
		EntryCommission: entry.commission,
		ExitCommission:  commission,
	})
	delete(b.openEntries, symbol)

	b.logger.Debug("exit filled",
		zap.String("symbol", symbol),
		zap.Time("date", date),
		zap.Float64("price", executionPrice),
		zap.Float64("shares", shares))
}

// RunMultiple runs each strategy independently over the same data and
// returns the results keyed by strategy name. Runs share no state.
func (b *Backtester) RunMultiple(strats []strategy.Strategy, series core.Series, symbol string) (map[string]*Result, error) {
	results := make(map[string]*Result, len(strats))
	for _, strat := range strats {
		result, err := b.Run(strat, series, symbol)
		if err != nil {
			return nil, err
		}
		results[strat.Name()] = result
	}
	return results, nil
}

// WalkForward partitions the series into rolling (train, test) windows and
// backtests each test window independently. Train windows are reserved for
// strategy fitting outside the engine and are not touched here. Windows
// stop once train+test no longer fits in the remaining series.
func (b *Backtester) WalkForward(strat strategy.Strategy, series core.Series, trainSize, testSize, stepSize int, symbol string) ([]*Result, error) {
	if trainSize <= 0 || testSize <= 0 || stepSize <= 0 {
		return nil, core.ErrInvalidWindow
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	var results []*Result
	for start := 0; start+trainSize+testSize <= series.Len(); start += stepSize {
		trainEnd := start + trainSize
		testEnd := trainEnd + testSize

		result, err := b.Run(strat, series.Slice(trainEnd, testEnd), symbol)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

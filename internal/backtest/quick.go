package backtest

import (
	"context"
	"time"

	"github.com/tidemark/tidemark/internal/collector"
	"github.com/tidemark/tidemark/internal/collector/yahoo"
	"github.com/tidemark/tidemark/internal/strategy"
)

// Quick fetches daily data for the symbol and runs one backtest with the
// default cost model. It is pure composition over Loader and Backtester
// and keeps no state between calls.
func Quick(ctx context.Context, strat strategy.Strategy, symbol string, start, end time.Time, initialCapital float64) (*Result, error) {
	loader, err := collector.NewLoader(yahoo.New(), collector.LoaderOptions{})
	if err != nil {
		return nil, err
	}

	series, err := loader.Load(ctx, symbol, start, end, "1d")
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if initialCapital > 0 {
		cfg.InitialCapital = initialCapital
	}
	return New(cfg).Run(strat, series, symbol)
}

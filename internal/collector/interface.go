// Package collector loads historical price series from market-data
// providers, with a two-tier cache in front of them.
package collector

import (
	"context"
	"time"

	"github.com/tidemark/tidemark/internal/core"
)

// Provider fetches historical OHLCV data for one symbol. Implementations
// own their transport; the engine only ever sees bars.
type Provider interface {
	Name() string
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.Bar, error)
}

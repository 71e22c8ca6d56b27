// Package strategy defines the signal-generation interface consumed by the
// backtest engine, and a registry for constructing strategies by name.
package strategy

import (
	"time"

	"github.com/tidemark/tidemark/internal/core"
)

// Strategy turns a price series into per-bar trading signals.
//
// Signals returns a map keyed by bar timestamp; a bar without an entry is
// treated as hold by the engine. Implementations must be pure: no state
// carried between calls, no side effects.
type Strategy interface {
	Name() string
	Parameters() map[string]any
	Signals(series core.Series) (map[time.Time]core.Signal, error)
}

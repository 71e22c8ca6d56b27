// Package ma_crossover implements a moving average crossover strategy:
// buy when the fast MA crosses above the slow MA, sell when it crosses
// below.
package ma_crossover

import (
	"fmt"
	"time"

	"github.com/tidemark/tidemark/internal/core"
	"github.com/tidemark/tidemark/internal/indicator"
	"github.com/tidemark/tidemark/internal/strategy"
)

// Default lookback windows in bars.
const (
	DefaultFastPeriod = 20
	DefaultSlowPeriod = 50
)

// MACrossover generates crossover signals from two simple moving averages.
type MACrossover struct {
	fastPeriod int
	slowPeriod int
}

// New creates the strategy, validating that both windows are positive and
// the fast window is shorter than the slow one.
func New(fastPeriod, slowPeriod int) (*MACrossover, error) {
	if fastPeriod <= 0 || slowPeriod <= 0 {
		return nil, core.WrapError(core.ErrInvalidParams,
			fmt.Errorf("fast_period and slow_period must be positive, got %d/%d", fastPeriod, slowPeriod))
	}
	if fastPeriod >= slowPeriod {
		return nil, core.WrapError(core.ErrInvalidParams,
			fmt.Errorf("fast_period (%d) must be less than slow_period (%d)", fastPeriod, slowPeriod))
	}
	return &MACrossover{fastPeriod: fastPeriod, slowPeriod: slowPeriod}, nil
}

// NewFromParams builds the strategy from free-form parameters; it is the
// strategy.Factory registered under "ma_crossover".
func NewFromParams(params map[string]any) (strategy.Strategy, error) {
	fast := intParam(params, "fast_period", DefaultFastPeriod)
	slow := intParam(params, "slow_period", DefaultSlowPeriod)
	return New(fast, slow)
}

// intParam reads an integer parameter, tolerating the float64 values that
// JSON and YAML decoding produce.
func intParam(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func (m *MACrossover) Name() string {
	return "ma_crossover"
}

func (m *MACrossover) Parameters() map[string]any {
	return map[string]any{
		"fast_period": m.fastPeriod,
		"slow_period": m.slowPeriod,
	}
}

// Signals emits +1 on a golden cross and -1 on a death cross, keyed by bar
// timestamp. Bars inside the slow warm-up window stay flat, so the first
// possible signal is the first bar where both averages exist and the
// relative ordering of the averages changed from the previous bar.
func (m *MACrossover) Signals(series core.Series) (map[time.Time]core.Signal, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	closes := series.Closes()
	fast, fastOK := indicator.AlignedSMA(closes, m.fastPeriod)
	slow, slowOK := indicator.AlignedSMA(closes, m.slowPeriod)

	// Stance per bar: +1 while fast above slow, -1 while below, 0 during
	// warm-up or when equal.
	stance := make([]int, len(closes))
	for i := range closes {
		if !fastOK[i] || !slowOK[i] {
			continue
		}
		switch {
		case fast[i] > slow[i]:
			stance[i] = 1
		case fast[i] < slow[i]:
			stance[i] = -1
		}
	}

	// A signal fires only when the stance changes.
	signals := make(map[time.Time]core.Signal, len(closes))
	for i, bar := range series.Bars {
		if i == 0 {
			signals[bar.Time] = core.SignalHold
			continue
		}
		diff := stance[i] - stance[i-1]
		switch {
		case diff > 0:
			signals[bar.Time] = core.SignalBuy
		case diff < 0:
			signals[bar.Time] = core.SignalSell
		default:
			signals[bar.Time] = core.SignalHold
		}
	}

	return signals, nil
}

// String implements fmt.Stringer.
func (m *MACrossover) String() string {
	return fmt.Sprintf("MACrossover(fast_period=%d, slow_period=%d)", m.fastPeriod, m.slowPeriod)
}

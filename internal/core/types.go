// Package core holds the shared market-data types and errors used across
// the engine.
package core

import (
	"math"
	"time"
)

// Bar represents one OHLCV candlestick.
type Bar struct {
	Symbol   string    `json:"symbol,omitempty"`
	Interval string    `json:"interval,omitempty"` // "1d", "1h", ...
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	Time     time.Time `json:"time"`
}

// Signal is a per-bar strategy decision.
type Signal int8

const (
	SignalSell Signal = -1
	SignalHold Signal = 0
	SignalBuy  Signal = 1
)

// String returns the human-readable signal name.
func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	default:
		return "hold"
	}
}

// Series is a time-ordered sequence of bars. The zero value is an empty
// series. Bars are expected in ascending timestamp order; Validate enforces
// it before a backtest mutates any state.
type Series struct {
	Bars []Bar
}

// NewSeries wraps bars in a Series without copying.
func NewSeries(bars []Bar) Series {
	return Series{Bars: bars}
}

// Len returns the number of bars.
func (s Series) Len() int {
	return len(s.Bars)
}

// Validate checks that the series is usable for a backtest: non-empty,
// every bar carries a positive close, and timestamps strictly increase.
func (s Series) Validate() error {
	if len(s.Bars) == 0 {
		return ErrNoData
	}
	for i, b := range s.Bars {
		if math.IsNaN(b.Close) || b.Close <= 0 {
			return ErrMissingClose
		}
		if i > 0 && !s.Bars[i-1].Time.Before(b.Time) {
			return ErrUnorderedSeries
		}
	}
	return nil
}

// Closes returns the close prices in bar order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Slice returns the half-open window [i, j) as a new Series sharing the
// underlying bars.
func (s Series) Slice(i, j int) Series {
	return Series{Bars: s.Bars[i:j]}
}

// Start returns the timestamp of the first bar, or the zero time when empty.
func (s Series) Start() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[0].Time
}

// End returns the timestamp of the last bar, or the zero time when empty.
func (s Series) End() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Time
}

package ma_crossover

import (
	"errors"
	"testing"
	"time"

	"github.com/tidemark/tidemark/internal/core"
)

func dailySeries(closes []float64) core.Series {
	bars := make([]core.Bar, len(closes))
	for i, c := range closes {
		bars[i] = core.Bar{
			Close: c,
			Time:  time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
		}
	}
	return core.NewSeries(bars)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		fast, slow int
		wantErr    bool
	}{
		{20, 50, false},
		{0, 50, true},
		{20, 0, true},
		{-5, 50, true},
		{50, 20, true},
		{20, 20, true},
	}
	for _, tt := range tests {
		_, err := New(tt.fast, tt.slow)
		if tt.wantErr && !errors.Is(err, core.ErrInvalidParams) {
			t.Errorf("New(%d, %d) error = %v, want ErrInvalidParams", tt.fast, tt.slow, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("New(%d, %d) error = %v, want nil", tt.fast, tt.slow, err)
		}
	}
}

func TestNewFromParams(t *testing.T) {
	strat, err := NewFromParams(map[string]any{"fast_period": float64(5), "slow_period": 10})
	if err != nil {
		t.Fatalf("NewFromParams() error = %v", err)
	}
	params := strat.Parameters()
	if params["fast_period"] != 5 || params["slow_period"] != 10 {
		t.Errorf("Parameters() = %v, want fast 5 slow 10", params)
	}
}

func TestNewFromParams_Defaults(t *testing.T) {
	strat, err := NewFromParams(nil)
	if err != nil {
		t.Fatalf("NewFromParams(nil) error = %v", err)
	}
	params := strat.Parameters()
	if params["fast_period"] != DefaultFastPeriod || params["slow_period"] != DefaultSlowPeriod {
		t.Errorf("Parameters() = %v, want defaults %d/%d", params, DefaultFastPeriod, DefaultSlowPeriod)
	}
}

func TestSignals_Crossovers(t *testing.T) {
	// Declining into the warm-up exit (fast below slow), then a sharp rally
	// pushes the fast average over the slow one.
	series := dailySeries([]float64{10, 9, 8, 7, 20, 30})
	strat, err := New(2, 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	signals, err := strat.Signals(series)
	if err != nil {
		t.Fatalf("Signals() error = %v", err)
	}
	if len(signals) != series.Len() {
		t.Fatalf("len(signals) = %d, want %d", len(signals), series.Len())
	}

	want := []core.Signal{
		core.SignalHold, // first bar is always flat
		core.SignalHold,
		core.SignalSell, // warm-up ends with fast below slow
		core.SignalHold,
		core.SignalBuy, // golden cross on the rally
		core.SignalHold,
	}
	for i, bar := range series.Bars {
		if got := signals[bar.Time]; got != want[i] {
			t.Errorf("signals[%d] = %v, want %v", i, got, want[i])
		}
	}
}

func TestSignals_FlatPrices(t *testing.T) {
	series := dailySeries([]float64{5, 5, 5, 5, 5, 5})
	strat, _ := New(2, 3)

	signals, err := strat.Signals(series)
	if err != nil {
		t.Fatalf("Signals() error = %v", err)
	}
	for i, bar := range series.Bars {
		if signals[bar.Time] != core.SignalHold {
			t.Errorf("signals[%d] = %v, want hold for equal averages", i, signals[bar.Time])
		}
	}
}

func TestSignals_SeriesShorterThanSlowWindow(t *testing.T) {
	series := dailySeries([]float64{10, 11})
	strat, _ := New(2, 5)

	signals, err := strat.Signals(series)
	if err != nil {
		t.Fatalf("Signals() error = %v", err)
	}
	for _, s := range signals {
		if s != core.SignalHold {
			t.Errorf("signal = %v inside warm-up, want hold", s)
		}
	}
}

func TestSignals_InvalidSeries(t *testing.T) {
	strat, _ := New(2, 3)
	if _, err := strat.Signals(core.Series{}); !errors.Is(err, core.ErrNoData) {
		t.Errorf("Signals(empty) error = %v, want ErrNoData", err)
	}
}

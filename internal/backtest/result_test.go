package backtest

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

func sampleTrade(entry, exit float64) Trade {
	return Trade{
		Symbol:     "TEST",
		Side:       SideLong,
		EntryDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EntryPrice: entry,
		ExitDate:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		ExitPrice:  exit,
		Shares:     10,
	}
}

func TestResult_TotalReturn(t *testing.T) {
	r := &Result{InitialCapital: 100000, FinalCapital: 110000}
	if got := r.TotalReturn(); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("TotalReturn() = %f, want 0.1", got)
	}

	r = &Result{InitialCapital: 0, FinalCapital: 100}
	if got := r.TotalReturn(); got != 0 {
		t.Errorf("TotalReturn() with zero capital = %f, want 0", got)
	}
}

func TestResult_WinRate(t *testing.T) {
	r := &Result{Trades: []Trade{
		sampleTrade(100, 110),
		sampleTrade(100, 120),
		sampleTrade(100, 110),
		sampleTrade(100, 90),
	}}

	if got := r.WinRate(); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("WinRate() = %f, want 0.75", got)
	}
	if got := (&Result{}).WinRate(); got != 0 {
		t.Errorf("WinRate() with no trades = %f, want 0", got)
	}
}

func TestResult_WinRateBounds(t *testing.T) {
	r := &Result{Trades: []Trade{sampleTrade(100, 110), sampleTrade(100, 90)}}
	if got := r.WinRate(); got < 0 || got > 1 {
		t.Errorf("WinRate() = %f, want within [0, 1]", got)
	}
}

func TestResult_AvgWinAvgLoss(t *testing.T) {
	r := &Result{Trades: []Trade{
		sampleTrade(100, 110), // +100
		sampleTrade(100, 130), // +300
		sampleTrade(100, 90),  // -100
	}}

	if got := r.AvgWin(); math.Abs(got-200) > 1e-9 {
		t.Errorf("AvgWin() = %f, want 200", got)
	}
	if got := r.AvgLoss(); math.Abs(got-(-100)) > 1e-9 {
		t.Errorf("AvgLoss() = %f, want -100", got)
	}
	if got := (&Result{}).AvgWin(); got != 0 {
		t.Errorf("AvgWin() with no trades = %f, want 0", got)
	}
}

func TestResult_ProfitFactor(t *testing.T) {
	r := &Result{Trades: []Trade{
		sampleTrade(100, 120), // +200
		sampleTrade(100, 90),  // -100
	}}
	if got := r.ProfitFactor(); math.Abs(got-2) > 1e-9 {
		t.Errorf("ProfitFactor() = %f, want 2", got)
	}

	r = &Result{Trades: []Trade{sampleTrade(100, 110)}}
	if got := r.ProfitFactor(); !math.IsInf(got, 1) {
		t.Errorf("ProfitFactor() with only wins = %f, want +Inf", got)
	}

	if got := (&Result{}).ProfitFactor(); got != 0 {
		t.Errorf("ProfitFactor() with no trades = %f, want 0", got)
	}
}

func TestResult_AvgHoldingPeriod(t *testing.T) {
	r := &Result{Trades: []Trade{sampleTrade(100, 110)}}
	if got := r.AvgHoldingPeriod(); math.Abs(got-4) > 1e-9 {
		t.Errorf("AvgHoldingPeriod() = %f, want 4", got)
	}
}

func TestResult_TradeRecords(t *testing.T) {
	r := &Result{Trades: []Trade{sampleTrade(100, 110), sampleTrade(100, 90)}}

	records := r.TradeRecords()
	if len(records) != 3 {
		t.Fatalf("len(TradeRecords()) = %d, want 3 (header + 2 trades)", len(records))
	}
	if records[0][0] != "symbol" {
		t.Errorf("header[0] = %q, want symbol", records[0][0])
	}
	for i, row := range records[1:] {
		if len(row) != len(records[0]) {
			t.Errorf("row %d has %d columns, want %d", i, len(row), len(records[0]))
		}
	}
	if records[1][14] != "true" {
		t.Errorf("is_winner = %q for a winning trade, want true", records[1][14])
	}
	if records[2][14] != "false" {
		t.Errorf("is_winner = %q for a losing trade, want false", records[2][14])
	}
}

func TestResult_WriteTradesCSV(t *testing.T) {
	r := &Result{Trades: []Trade{sampleTrade(100, 110)}}

	var buf bytes.Buffer
	if err := r.WriteTradesCSV(&buf); err != nil {
		t.Fatalf("WriteTradesCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv has %d lines, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "symbol,side,entry_date") {
		t.Errorf("csv header = %q, want symbol,side,entry_date prefix", lines[0])
	}
	if !strings.Contains(lines[1], "TEST,long") {
		t.Errorf("csv row = %q, want TEST,long", lines[1])
	}
}

func TestResult_Summary(t *testing.T) {
	r := &Result{
		Strategy:       "ma_crossover",
		Symbol:         "AAPL",
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		InitialCapital: 100000,
		FinalCapital:   112000,
		Trades:         []Trade{sampleTrade(100, 110)},
		Metrics: map[string]float64{
			"sharpe_ratio": 1.5,
			"total_return": 0.12,
		},
	}

	summary := r.Summary()
	for _, want := range []string{
		"ma_crossover",
		"AAPL",
		"2024-01-01 to 2024-06-30",
		"initial capital: $100000.00",
		"final capital:   $112000.00",
		"sharpe_ratio",
		"total_return",
		"total trades:    1",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() missing %q", want)
		}
	}
}

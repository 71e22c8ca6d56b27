package archive_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark/tidemark/internal/backtest"
	"github.com/tidemark/tidemark/internal/storage/archive"
)

func newLocalFS(t *testing.T) *archive.LocalFS {
	t.Helper()
	fs, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestLocalFS_WriteRead(t *testing.T) {
	fs := newLocalFS(t)
	ctx := context.Background()

	require.NoError(t, fs.Write(ctx, "nested/dir/file.json", []byte(`{"ok":true}`)))

	data, err := fs.Read(ctx, "nested/dir/file.json")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestLocalFS_Exists(t *testing.T) {
	fs := newLocalFS(t)
	ctx := context.Background()

	exists, err := fs.Exists(ctx, "missing.json")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, fs.Write(ctx, "present.json", []byte("x")))
	exists, err = fs.Exists(ctx, "present.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalFS_List(t *testing.T) {
	fs := newLocalFS(t)
	ctx := context.Background()

	require.NoError(t, fs.Write(ctx, "a/one.json", []byte("1")))
	require.NoError(t, fs.Write(ctx, "a/two.json", []byte("2")))
	require.NoError(t, fs.Write(ctx, "b/three.json", []byte("3")))

	paths, err := fs.List(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	paths, err = fs.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLocalFS_Delete(t *testing.T) {
	fs := newLocalFS(t)
	ctx := context.Background()

	require.NoError(t, fs.Write(ctx, "gone.json", []byte("x")))
	require.NoError(t, fs.Delete(ctx, "gone.json"))

	exists, err := fs.Exists(ctx, "gone.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveResult(t *testing.T) {
	fs := newLocalFS(t)
	ctx := context.Background()

	result := &backtest.Result{
		Strategy:       "ma_crossover",
		Symbol:         "AAPL",
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		InitialCapital: 100000,
		FinalCapital:   108000,
		Trades: []backtest.Trade{{
			Symbol:     "AAPL",
			Side:       backtest.SideLong,
			EntryDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			EntryPrice: 100,
			ExitDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			ExitPrice:  110,
			Shares:     100,
		}},
		Metrics: map[string]float64{"total_return": 0.08},
	}

	base, err := archive.SaveResult(ctx, fs, result)
	require.NoError(t, err)
	assert.Equal(t, "backtests/AAPL/ma_crossover_2024-06-30", base)

	data, err := fs.Read(ctx, base+".json")
	require.NoError(t, err)

	var decoded backtest.Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result.Symbol, decoded.Symbol)
	assert.Equal(t, result.FinalCapital, decoded.FinalCapital)

	csvData, err := fs.Read(ctx, base+"_trades.csv")
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "AAPL,long")
}

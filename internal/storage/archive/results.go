package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidemark/tidemark/internal/backtest"
)

// SaveResult persists one backtest result to the archive: the full result
// as JSON and the trade list as CSV, under
// backtests/<symbol>/<strategy>_<end-date>. It returns the base path the
// artifacts were written to.
func SaveResult(ctx context.Context, st Storage, result *backtest.Result) (string, error) {
	base := fmt.Sprintf("backtests/%s/%s_%s",
		result.Symbol, result.Strategy, result.EndDate.Format("2006-01-02"))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	if err := st.Write(ctx, base+".json", data); err != nil {
		return "", fmt.Errorf("writing result: %w", err)
	}

	var buf bytes.Buffer
	if err := result.WriteTradesCSV(&buf); err != nil {
		return "", fmt.Errorf("encoding trades: %w", err)
	}
	if err := st.Write(ctx, base+"_trades.csv", buf.Bytes()); err != nil {
		return "", fmt.Errorf("writing trades: %w", err)
	}

	return base, nil
}

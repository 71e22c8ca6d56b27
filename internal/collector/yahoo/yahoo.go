// Package yahoo implements a collector.Provider backed by the Yahoo
// Finance v8 chart API.
package yahoo

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tidemark/tidemark/internal/core"
)

const (
	baseURL        = "https://query1.finance.yahoo.com/v8/finance/chart"
	requestTimeout = 10 * time.Second
)

// validSymbol matches stock symbols like AAPL, MSFT, 600519.SH, 0700.HK
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9]{1,10}(\.[A-Za-z]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// Yahoo fetches daily bars from the Yahoo chart endpoint.
type Yahoo struct {
	client *resty.Client
}

// Option configures the provider.
type Option func(*Yahoo)

// WithBaseURL points the provider at an alternate chart endpoint.
func WithBaseURL(url string) Option {
	return func(y *Yahoo) {
		y.client.SetBaseURL(url)
	}
}

// New creates a new Yahoo provider.
func New(opts ...Option) *Yahoo {
	y := &Yahoo{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(requestTimeout).
			SetHeader("Accept", "application/json"),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

// toYahooSymbol converts internal symbol format to Yahoo format.
// Shanghai stocks: 600519.SH -> 600519.SS
func (y *Yahoo) toYahooSymbol(symbol string) string {
	if strings.HasSuffix(symbol, ".SH") {
		return strings.TrimSuffix(symbol, ".SH") + ".SS"
	}
	return symbol
}

func (y *Yahoo) toYahooInterval(interval string) string {
	switch interval {
	case "1m", "5m", "1h", "1d", "1wk":
		return interval
	default:
		return "1d"
	}
}

// FetchHistory fetches historical OHLCV bars. Rows with null quotes are
// skipped, matching Yahoo's representation of halted sessions.
func (y *Yahoo) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.Bar, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}

	var result chartResponse
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"interval": y.toYahooInterval(interval),
			"period1":  strconv.FormatInt(start.Unix(), 10),
			"period2":  strconv.FormatInt(end.Unix(), 10),
		}).
		SetResult(&result).
		Get("/" + y.toYahooSymbol(symbol))
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	if resp.IsError() {
		return nil, core.WrapError(core.ErrProviderFailed,
			fmt.Errorf("unexpected status: %d", resp.StatusCode()))
	}

	if result.Chart.Error != nil {
		return nil, core.WrapError(core.ErrProviderFailed,
			fmt.Errorf("yahoo error: %s", result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.WrapError(core.ErrSymbolNotFound,
			fmt.Errorf("no data for symbol: %s", symbol))
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, core.WrapError(core.ErrProviderFailed,
			fmt.Errorf("no quote data for symbol: %s", symbol))
	}
	quotes := r.Indicators.Quote[0]

	bars := make([]core.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(quotes.Close) || quotes.Close[i] == nil || quotes.Open[i] == nil {
			continue // skip missing rows
		}
		var volume int64
		if quotes.Volume[i] != nil {
			volume = int64(*quotes.Volume[i])
		}
		bars = append(bars, core.Bar{
			Symbol:   symbol,
			Interval: interval,
			Open:     *quotes.Open[i],
			High:     *quotes.High[i],
			Low:      *quotes.Low[i],
			Close:    *quotes.Close[i],
			Volume:   volume,
			Time:     time.Unix(int64(ts), 0).UTC(),
		})
	}

	return bars, nil
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int     `json:"volume"`
}

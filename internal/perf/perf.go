// Package perf computes risk/return statistics over a return series.
// All functions are pure reductions: zero-length or degenerate input
// degrades to zero instead of failing.
package perf

import "math"

// TradingDaysPerYear is the default annualization factor for daily bars.
const TradingDaysPerYear = 252

// Returns computes period-over-period percentage returns from a price or
// equity series. The first observation is dropped since it has no prior.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, prices[i]/prices[i-1]-1)
	}
	return returns
}

// CumulativeReturns compounds period returns into a running total return.
func CumulativeReturns(returns []float64) []float64 {
	result := make([]float64, len(returns))
	cumulative := 1.0
	for i, r := range returns {
		cumulative *= 1 + r
		result[i] = cumulative - 1
	}
	return result
}

// TotalReturn compounds the full series into one total return.
func TotalReturn(returns []float64) float64 {
	total := 1.0
	for _, r := range returns {
		total *= 1 + r
	}
	return total - 1
}

// mean returns the arithmetic mean, 0 for empty input.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdDev returns the sample standard deviation, 0 when fewer than two values.
func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var variance float64
	for _, x := range xs {
		variance += (x - m) * (x - m)
	}
	return math.Sqrt(variance / float64(len(xs)-1))
}

// SharpeRatio measures excess return per unit of total volatility,
// annualized by periodsPerYear.
func SharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	sd := stdDev(returns)
	if sd == 0 {
		return 0
	}
	periodRiskFree := riskFreeRate / float64(periodsPerYear)
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - periodRiskFree
	}
	return math.Sqrt(float64(periodsPerYear)) * mean(excess) / sd
}

// SortinoRatio measures excess return per unit of downside volatility.
func SortinoRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	dsd := stdDev(downside)
	if dsd == 0 {
		return 0
	}
	periodRiskFree := riskFreeRate / float64(periodsPerYear)
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - periodRiskFree
	}
	return math.Sqrt(float64(periodsPerYear)) * mean(excess) / dsd
}

// MaxDrawdown finds the largest peak-to-trough decline of the compounded
// series. The result is negative or zero.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	cumulative := 1.0
	peak := 1.0
	var maxDD float64
	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
		}
		dd := (cumulative - peak) / peak
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// CalmarRatio relates annualized return to the magnitude of the maximum
// drawdown.
func CalmarRatio(returns []float64, periodsPerYear int) float64 {
	maxDD := MaxDrawdown(returns)
	if maxDD == 0 {
		return 0
	}
	annual := math.Pow(1+mean(returns), float64(periodsPerYear)) - 1
	return annual / math.Abs(maxDD)
}

// WinRate is the share of positive periods among all non-zero periods.
func WinRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var winning, nonZero int
	for _, r := range returns {
		if r > 0 {
			winning++
		}
		if r != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		return 0
	}
	return float64(winning) / float64(nonZero)
}

// ProfitFactor is the ratio of summed gains to summed losses. It is +Inf
// when there are gains but no losses, and 0 when there is neither.
func ProfitFactor(returns []float64) float64 {
	var grossProfit, grossLoss float64
	for _, r := range returns {
		if r > 0 {
			grossProfit += r
		} else if r < 0 {
			grossLoss += -r
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

// AnnualReturn compounds the series and rescales it to a yearly rate.
func AnnualReturn(returns []float64, periodsPerYear int) float64 {
	if len(returns) == 0 {
		return 0
	}
	total := TotalReturn(returns)
	years := float64(len(returns)) / float64(periodsPerYear)
	if years == 0 {
		return 0
	}
	return math.Pow(1+total, 1/years) - 1
}

// Volatility is the annualized standard deviation of returns.
func Volatility(returns []float64, periodsPerYear int) float64 {
	return stdDev(returns) * math.Sqrt(float64(periodsPerYear))
}

// CalculateAll computes the full metric set with default risk-free rate 0
// and daily annualization. Keys are stable and consumed by the reporting
// layer.
func CalculateAll(returns []float64) map[string]float64 {
	return CalculateAllWith(returns, 0, TradingDaysPerYear)
}

// CalculateAllWith computes the full metric set with explicit risk-free
// rate and annualization factor.
func CalculateAllWith(returns []float64, riskFreeRate float64, periodsPerYear int) map[string]float64 {
	return map[string]float64{
		"annual_return": AnnualReturn(returns, periodsPerYear),
		"volatility":    Volatility(returns, periodsPerYear),
		"sharpe_ratio":  SharpeRatio(returns, riskFreeRate, periodsPerYear),
		"sortino_ratio": SortinoRatio(returns, riskFreeRate, periodsPerYear),
		"max_drawdown":  MaxDrawdown(returns),
		"calmar_ratio":  CalmarRatio(returns, periodsPerYear),
		"win_rate":      WinRate(returns),
		"profit_factor": ProfitFactor(returns),
		"total_return":  TotalReturn(returns),
		"num_periods":   float64(len(returns)),
	}
}

// Package indicator provides rolling technical indicators over price slices.
package indicator

// SMA calculates Simple Moving Average.
// Returns slice of length: len(prices) - period + 1.
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	result = append(result, sum/float64(period))

	// Rolling calculation
	for i := period; i < len(prices); i++ {
		sum = sum - prices[i-period] + prices[i]
		result = append(result, sum/float64(period))
	}

	return result
}

// EMA calculates Exponential Moving Average, seeded with the SMA of the
// first period values.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)
	multiplier := 2.0 / float64(period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)
	result = append(result, ema)

	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		result = append(result, ema)
	}

	return result
}

// AlignedSMA calculates an SMA aligned to the input length: the first
// period-1 entries are filled with NaN markers via the valid flag slice.
// It keeps crossover arithmetic index-aligned with the bar series.
func AlignedSMA(prices []float64, period int) (values []float64, valid []bool) {
	values = make([]float64, len(prices))
	valid = make([]bool, len(prices))

	rolled := SMA(prices, period)
	for i, v := range rolled {
		values[period-1+i] = v
		valid[period-1+i] = true
	}
	return values, valid
}

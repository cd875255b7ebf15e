package indicators

// MACD returns the latest MACD line, signal line and histogram values.
// The MACD line is the fast EMA minus the slow EMA; the signal line is
// an EMA over the MACD series itself, so the full series is carried
// through instead of collapsing to a single value early.
func MACD(closes []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, hist float64, ok bool) {
	if len(closes) == 0 || fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 {
		return 0, 0, 0, false
	}

	emaFast := emaSeries(closes, fastPeriod)
	emaSlow := emaSeries(closes, slowPeriod)

	macdSeries := make([]float64, len(closes))
	for i := range closes {
		macdSeries[i] = emaFast[i] - emaSlow[i]
	}
	signalSeries := emaSeries(macdSeries, signalPeriod)

	last := len(closes) - 1
	return macdSeries[last], signalSeries[last], macdSeries[last] - signalSeries[last], true
}

// emaSeries computes the exponentially weighted series seeded with the
// first element: ema[i] = (series[i]-ema[i-1])*k + ema[i-1] where
// k = 2/(period+1).
func emaSeries(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	multiplier := 2.0 / (float64(period) + 1)
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = (series[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

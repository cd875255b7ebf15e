package indicators

import (
	"math"

	"github.com/markcheno/go-talib"
)

// RSI returns the Relative Strength Index computed with simple moving
// averages of gains and losses (Cutler's variant). Needs period+1
// closes so that a full window of deltas exists behind the last bar.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	avgGain := lastValue(talib.Sma(gains, period))
	avgLoss := lastValue(talib.Sma(losses, period))

	// A lossless window pins RSI at 100
	rs := math.Inf(1)
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	return 100.0 - (100.0 / (1 + rs)), true
}

func lastValue(values []float64) float64 {
	return values[len(values)-1]
}

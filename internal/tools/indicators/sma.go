package indicators

import (
	"github.com/markcheno/go-talib"
)

// SMA returns the simple moving average over the trailing period.
// The series must be in chronological order (oldest first). Returns
// false when the series is shorter than the period.
func SMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}
	values := talib.Sma(closes, period)
	return values[len(values)-1], true
}

package indicators

import (
	"tribunal/internal/domain/market"
)

// Default windows for daily bars
const (
	SMAShortPeriod   = 50
	SMALongPeriod    = 200
	RSIPeriod        = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
)

// Snapshot computes every reported indicator over a chronological
// close series. Indicators without enough history behind them are
// left unset rather than zeroed.
func Snapshot(closes []float64) market.IndicatorSnapshot {
	var snap market.IndicatorSnapshot

	if v, ok := SMA(closes, SMAShortPeriod); ok {
		snap.SMA50 = market.Float(v)
	}
	if v, ok := SMA(closes, SMALongPeriod); ok {
		snap.SMA200 = market.Float(v)
	}
	if v, ok := RSI(closes, RSIPeriod); ok {
		snap.RSI = market.Float(v)
	}
	if m, s, h, ok := MACD(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod); ok {
		snap.MACD = market.Float(m)
		snap.MACDSignal = market.Float(s)
		snap.MACDHist = market.Float(h)
	}
	return snap
}

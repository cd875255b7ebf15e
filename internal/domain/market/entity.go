package market

import (
	"fmt"
	"strings"
	"time"
)

// NewsItem represents a single published headline for a ticker
type NewsItem struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Link        string    `json:"link,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// IndicatorSnapshot holds the latest value of each technical indicator.
// Fields are pointers because an indicator stays unset when the price
// history is too short for its window.
type IndicatorSnapshot struct {
	SMA50      *float64 `json:"SMA50"`
	SMA200     *float64 `json:"SMA200"`
	RSI        *float64 `json:"RSI"`
	MACD       *float64 `json:"MACD"`
	MACDSignal *float64 `json:"MACD_signal"`
	MACDHist   *float64 `json:"MACD_hist"`
}

// String renders the snapshot as a compact key/value report with a
// stable key order. Unset indicators render as null.
func (s IndicatorSnapshot) String() string {
	var b strings.Builder
	b.WriteString("{")
	b.WriteString(fmt.Sprintf("'SMA50': %s, ", formatIndicator(s.SMA50)))
	b.WriteString(fmt.Sprintf("'SMA200': %s, ", formatIndicator(s.SMA200)))
	b.WriteString(fmt.Sprintf("'RSI': %s, ", formatIndicator(s.RSI)))
	b.WriteString(fmt.Sprintf("'MACD': %s, ", formatIndicator(s.MACD)))
	b.WriteString(fmt.Sprintf("'MACD_signal': %s, ", formatIndicator(s.MACDSignal)))
	b.WriteString(fmt.Sprintf("'MACD_hist': %s", formatIndicator(s.MACDHist)))
	b.WriteString("}")
	return b.String()
}

func formatIndicator(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%.4f", *v)
}

// Float pointer helper for building snapshots
func Float(v float64) *float64 {
	return &v
}

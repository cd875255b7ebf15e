package marketdata

import (
	"context"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"tribunal/internal/metrics"
	"tribunal/pkg/errors"
	"tribunal/pkg/logger"
)

// YahooProvider loads daily price history from Yahoo Finance
type YahooProvider struct {
	log *logger.Logger
}

// NewYahooProvider creates a new Yahoo Finance history provider
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{
		log: logger.Component("yahoo_provider"),
	}
}

// DailyCloses returns daily closing prices for the trailing window in
// chronological order (oldest first)
func (p *YahooProvider) DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	fetchStart := time.Now()
	iter := chart.Get(params)
	bars := make([]decimal.Decimal, 0, days)
	for iter.Next() {
		bars = append(bars, iter.Bar().Close)
	}
	err := iter.Err()
	metrics.RecordFetch("yahoo_chart", time.Since(fetchStart), err)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch daily bars for %s", symbol)
	}
	if len(bars) == 0 {
		return nil, errors.Wrapf(errors.ErrNoPriceHistory, "symbol %s", symbol)
	}

	p.log.Debugf("fetched %d daily closes for %s", len(bars), symbol)
	return toFloats(bars), nil
}

// toFloats converts decimal bar values to float64 for indicator math
func toFloats(values []decimal.Decimal) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		f, _ := v.Float64()
		out[i] = f
	}
	return out
}

package market

import (
	"context"
)

// QuoteProvider defines the interface for daily price history access
type QuoteProvider interface {
	// DailyCloses returns closing prices for the trailing window in
	// chronological order (oldest first)
	DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error)
}

// HeadlineProvider defines the interface for recent news access
type HeadlineProvider interface {
	// Headlines returns up to limit recent articles for the symbol,
	// newest first
	Headlines(ctx context.Context, symbol string, limit int) ([]NewsItem, error)
}

package tools

import (
	"tribunal/internal/domain/market"
)

// CatalogConfig carries the provider settings for the built-in tools.
type CatalogConfig struct {
	// HistoryDays is the daily close lookback for technical analysis
	HistoryDays int
	// MaxArticles caps the news digest length
	MaxArticles int
}

// NewCatalog builds the registry of tools exposed over the gateway.
// Registration order is the order tools are advertised in.
func NewCatalog(quotes market.QuoteProvider, headlines market.HeadlineProvider, cfg CatalogConfig) *Registry {
	registry := NewRegistry()
	registry.Register(NewNewsSentimentTool(headlines, cfg.MaxArticles))
	registry.Register(NewTechnicalAnalysisTool(quotes, cfg.HistoryDays))
	return registry
}

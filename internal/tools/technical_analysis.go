package tools

import (
	"context"
	"fmt"

	"tribunal/internal/domain/market"
	"tribunal/internal/tools/indicators"
	"tribunal/pkg/logger"
)

// ToolTechnicalAnalysis is the wire name of the technical analysis tool.
const ToolTechnicalAnalysis = "technical_analysis_tool"

// TechnicalAnalysisTool computes moving average, momentum and trend
// indicators over a year of daily closes.
type TechnicalAnalysisTool struct {
	quotes      market.QuoteProvider
	historyDays int
	log         *logger.Logger
}

// NewTechnicalAnalysisTool creates the technical analysis tool.
func NewTechnicalAnalysisTool(quotes market.QuoteProvider, historyDays int) *TechnicalAnalysisTool {
	return &TechnicalAnalysisTool{
		quotes:      quotes,
		historyDays: historyDays,
		log:         logger.Get().With("tool", ToolTechnicalAnalysis),
	}
}

// Name returns the tool identifier.
func (t *TechnicalAnalysisTool) Name() string { return ToolTechnicalAnalysis }

// Description returns a human description of the tool.
func (t *TechnicalAnalysisTool) Description() string {
	return "Perform technical analysis for a given stock ticker"
}

// InputSchema returns the argument schema.
func (t *TechnicalAnalysisTool) InputSchema() map[string]interface{} {
	return TickerSchema()
}

// Execute loads price history, computes the indicator snapshot and
// returns it as text. Provider faults become part of the result text
// instead of failing the call.
func (t *TechnicalAnalysisTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	ticker, err := tickerArg(args)
	if err != nil {
		return "", err
	}

	t.log.Debugf("computing indicators for %s", ticker)
	return fmt.Sprintf("Technical analysis for %s: %s", ticker, t.report(ctx, ticker)), nil
}

func (t *TechnicalAnalysisTool) report(ctx context.Context, ticker string) string {
	closes, err := t.quotes.DailyCloses(ctx, ticker, t.historyDays)
	if err != nil {
		return fmt.Sprintf("Error fetching technical analysis: %v", err)
	}
	return indicators.Snapshot(closes).String()
}

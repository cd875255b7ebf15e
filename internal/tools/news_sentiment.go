package tools

import (
	"context"
	"fmt"
	"strings"

	"tribunal/internal/domain/market"
	"tribunal/pkg/logger"
)

// ToolNewsSentiment is the wire name of the news sentiment tool.
const ToolNewsSentiment = "news_sentiment_tool"

// NewsSentimentTool fetches recent headlines for a ticker and renders
// them as a numbered digest for the sentiment analyst.
type NewsSentimentTool struct {
	headlines   market.HeadlineProvider
	maxArticles int
	log         *logger.Logger
}

// NewNewsSentimentTool creates the news sentiment tool.
func NewNewsSentimentTool(headlines market.HeadlineProvider, maxArticles int) *NewsSentimentTool {
	return &NewsSentimentTool{
		headlines:   headlines,
		maxArticles: maxArticles,
		log:         logger.Get().With("tool", ToolNewsSentiment),
	}
}

// Name returns the tool identifier.
func (t *NewsSentimentTool) Name() string { return ToolNewsSentiment }

// Description returns a human description of the tool.
func (t *NewsSentimentTool) Description() string {
	return "Analyze news sentiment for a given stock ticker"
}

// InputSchema returns the argument schema.
func (t *NewsSentimentTool) InputSchema() map[string]interface{} {
	return TickerSchema()
}

// Execute fetches headlines and returns the digest text. Provider
// faults become part of the result text instead of failing the call.
func (t *NewsSentimentTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	ticker, err := tickerArg(args)
	if err != nil {
		return "", err
	}

	t.log.Debugf("fetching news digest for %s", ticker)
	return fmt.Sprintf("News sentiment analysis for %s: %s", ticker, t.digest(ctx, ticker)), nil
}

func (t *NewsSentimentTool) digest(ctx context.Context, ticker string) string {
	items, err := t.headlines.Headlines(ctx, ticker, t.maxArticles)
	if err != nil {
		return fmt.Sprintf("Error fetching news articles: %v", err)
	}
	if len(items) == 0 {
		return "No recent news available for this ticker."
	}

	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("Article #%d. %s - %s", i+1, item.Title, item.Summary))
	}
	return strings.Join(lines, "\n")
}

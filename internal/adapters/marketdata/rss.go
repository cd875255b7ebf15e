package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"tribunal/internal/domain/market"
	"tribunal/internal/metrics"
	"tribunal/pkg/errors"
	"tribunal/pkg/logger"
)

// RSSProvider loads recent headlines from the Yahoo Finance RSS feed
type RSSProvider struct {
	baseURL string
	timeout time.Duration
	log     *logger.Logger
}

// NewRSSProvider creates a headline provider backed by the per-ticker
// RSS feed at baseURL
func NewRSSProvider(baseURL string, fetchTimeout time.Duration) *RSSProvider {
	return &RSSProvider{
		baseURL: baseURL,
		timeout: fetchTimeout,
		log:     logger.Component("rss_provider"),
	}
}

// Headlines returns up to limit recent articles for the symbol, newest
// first. An empty feed is not an error.
func (p *RSSProvider) Headlines(ctx context.Context, symbol string, limit int) ([]market.NewsItem, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	feedURL := fmt.Sprintf("%s?s=%s&region=US&lang=en-US", p.baseURL, url.QueryEscape(symbol))

	fetchStart := time.Now()
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	metrics.RecordFetch("yahoo_rss", time.Since(fetchStart), err)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrFeedUnavailable, "parse news feed for %s: %v", symbol, err)
	}

	// Sort items by published date descending
	sort.SliceStable(feed.Items, func(i, j int) bool {
		if feed.Items[i].PublishedParsed == nil || feed.Items[j].PublishedParsed == nil {
			return false
		}
		return feed.Items[i].PublishedParsed.After(*feed.Items[j].PublishedParsed)
	})

	items := make([]market.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		ni := market.NewsItem{
			Title:   item.Title,
			Summary: item.Description,
			Link:    item.Link,
		}
		if item.PublishedParsed != nil {
			ni.PublishedAt = *item.PublishedParsed
		}
		items = append(items, ni)
	}

	p.log.Debugf("fetched %d headlines for %s", len(items), symbol)
	return items, nil
}

package fundjson

import (
	"context"
	"fmt"
	"time"

	invest "github.com/miluoalbert/invest-master"
	"github.com/miluoalbert/invest-master/date"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
	"resty.dev/v3"
)

// Feed is one configured provider endpoint: where to fetch a fund's
// holdings and how to read the response.
type Feed struct {
	Parent  string  `yaml:"parent"` // fund ticker the holdings belong to
	URL     string  `yaml:"url"`
	Mapping Mapping `yaml:"mapping"`
}

// Fetcher downloads composition feeds, politely. Provider APIs throttle
// aggressively, so requests share a rate limiter.
type Fetcher struct {
	client *resty.Client
	limit  ratelimit.Limiter
	log    *zap.SugaredLogger
}

// NewFetcher builds a fetcher capped at 'rps' requests per second.
func NewFetcher(rps int, log *zap.SugaredLogger) *Fetcher {
	if rps < 1 {
		rps = 1
	}
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2)
	return &Fetcher{
		client: client,
		limit:  ratelimit.New(rps),
		log:    log,
	}
}

// Close releases the underlying HTTP client.
func (f *Fetcher) Close() error { return f.client.Close() }

// Fetch downloads one feed and extracts its composition, stamped with the
// report date.
func (f *Fetcher) Fetch(ctx context.Context, feed Feed, reportDate date.Date) ([]invest.Component, error) {
	f.limit.Take()

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(feed.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching holdings of %s: %w", feed.Parent, err)
	}
	defer resp.Body.Close()

	f.log.Debugw("holdings fetched", "parent", feed.Parent, "status", resp.Status(), "duration", resp.Duration())
	if resp.IsError() {
		return nil, fmt.Errorf("fetching holdings of %s: %s", feed.Parent, resp.Status())
	}
	return Parse(resp.Bytes(), feed.Parent, reportDate, feed.Mapping)
}

// FetchAll downloads every feed, skipping none: the first failure aborts so
// a half-refreshed composition set is never stored.
func (f *Fetcher) FetchAll(ctx context.Context, feeds []Feed, reportDate date.Date) ([]invest.Component, error) {
	var comps []invest.Component
	for _, feed := range feeds {
		rows, err := f.Fetch(ctx, feed, reportDate)
		if err != nil {
			return nil, err
		}
		comps = append(comps, rows...)
	}
	return comps, nil
}

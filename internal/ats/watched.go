package ats

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/jobs"
)

// WatchedScraper rebuilds the adapter registry from the watch list before
// every sweep, so companies added at runtime are scraped without a restart.
type WatchedScraper struct {
	watch  WatchList
	client *Client
	logger *zap.Logger
}

func NewWatchedScraper(watch WatchList, client *Client, logger *zap.Logger) *WatchedScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WatchedScraper{watch: watch, client: client, logger: logger}
}

func (w *WatchedScraper) ScrapeAll(ctx context.Context) []jobs.Posting {
	return w.aggregator(ctx).ScrapeAll(ctx)
}

func (w *WatchedScraper) ScrapeCompanies(ctx context.Context, names []string) []jobs.Posting {
	return w.aggregator(ctx).ScrapeCompanies(ctx, names)
}

// aggregator never fails: an unreadable watch list yields an empty registry.
func (w *WatchedScraper) aggregator(ctx context.Context) *Aggregator {
	companies, err := w.watch.ListCompanies(ctx, false)
	if err != nil {
		w.logger.Error("failed to read watch list", zap.Error(err))
		return NewAggregator(NewRegistry(w.logger), w.watch, w.logger)
	}

	registry := BuildRegistry(companies, w.client, w.logger)
	w.logger.Debug("adapter registry built", zap.Int("adapters", registry.Len()), zap.Int("watched", len(companies)))
	return NewAggregator(registry, w.watch, w.logger)
}

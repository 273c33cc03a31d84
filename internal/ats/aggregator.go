package ats

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/jobs"
)

// WatchList is the part of the store the aggregator needs.
type WatchList interface {
	ListCompanies(ctx context.Context, activeOnly bool) ([]jobs.CompanyWatch, error)
	TouchCompany(ctx context.Context, name string, now time.Time) error
}

// Aggregator runs adapters one after another and concatenates their output.
type Aggregator struct {
	registry *Registry
	watch    WatchList
	logger   *zap.Logger
	now      func() time.Time
}

// NewAggregator creates an aggregator. watch may be nil, in which case every
// adapter is considered active and nothing is touched.
func NewAggregator(registry *Registry, watch WatchList, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{registry: registry, watch: watch, logger: logger, now: time.Now}
}

// ScrapeAll runs every registered adapter except those whose company is
// watched and inactive.
func (a *Aggregator) ScrapeAll(ctx context.Context) []jobs.Posting {
	inactive := a.inactiveCompanies(ctx)

	var results []jobs.Posting
	for _, adapter := range a.registry.Adapters() {
		if ctx.Err() != nil {
			a.logger.Warn("sweep interrupted", zap.Error(ctx.Err()))
			break
		}
		if inactive[jobs.NormalizeCompany(adapter.Company)] {
			a.logger.Debug("skipping inactive company", zap.String("company", adapter.Company))
			continue
		}
		results = append(results, a.run(ctx, adapter)...)
	}

	return results
}

// ScrapeCompanies runs the adapters of the named companies regardless of their
// active flag. Unknown names are logged and skipped.
func (a *Aggregator) ScrapeCompanies(ctx context.Context, names []string) []jobs.Posting {
	var results []jobs.Posting
	for _, name := range names {
		adapter, ok := a.registry.Lookup(name)
		if !ok {
			a.logger.Warn("no adapter found", zap.String("company", name))
			continue
		}
		results = append(results, a.run(ctx, adapter)...)
	}

	return results
}

func (a *Aggregator) run(ctx context.Context, adapter *Adapter) []jobs.Posting {
	a.logger.Info("scraping company", zap.String("company", adapter.Company))

	postings := adapter.Scrape(ctx)

	a.logger.Info("relevant jobs found", zap.String("company", adapter.Company), zap.Int("count", len(postings)))

	if a.watch != nil {
		if err := a.watch.TouchCompany(ctx, adapter.Company, a.now()); err != nil {
			a.logger.Warn("failed to update last checked", zap.String("company", adapter.Company), zap.Error(err))
		}
	}

	return postings
}

func (a *Aggregator) inactiveCompanies(ctx context.Context) map[string]bool {
	inactive := make(map[string]bool)
	if a.watch == nil {
		return inactive
	}

	companies, err := a.watch.ListCompanies(ctx, false)
	if err != nil {
		a.logger.Warn("failed to read watch list, scraping every adapter", zap.Error(err))
		return inactive
	}

	for _, c := range companies {
		if !c.Active {
			inactive[jobs.NormalizeCompany(c.Name)] = true
		}
	}

	return inactive
}

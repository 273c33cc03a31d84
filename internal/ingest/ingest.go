// Package ingest stores newly discovered postings, skipping those already known.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/events"
	"github.com/spigell/job-research/internal/filtering"
	"github.com/spigell/job-research/internal/jobs"
)

// Store is the storage operation ingestion relies on.
type Store interface {
	InsertIfAbsent(ctx context.Context, p jobs.Posting, now time.Time) (jobs.Job, bool, error)
}

// Scraper produces postings from the configured job boards.
type Scraper interface {
	ScrapeAll(ctx context.Context) []jobs.Posting
	ScrapeCompanies(ctx context.Context, names []string) []jobs.Posting
}

type Ingester struct {
	// mu serializes sweeps; filter steps keep per-run state.
	mu sync.Mutex

	store     Store
	scraper   Scraper
	publisher events.Publisher
	filters   []filtering.Filter
	filterCfg *filtering.Config
	logger    *zap.Logger
	now       func() time.Time
}

func New(store Store, scraper Scraper, publisher events.Publisher, logger *zap.Logger) *Ingester {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		store:     store,
		scraper:   scraper,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithFilters sets the steps run between scraping and ingestion.
func (i *Ingester) WithFilters(cfg *filtering.Config, steps []filtering.Filter) *Ingester {
	i.filterCfg = cfg
	i.filters = steps
	return i
}

// Ingest inserts the postings that are not stored yet and returns them.
// Known postings are left untouched.
func (i *Ingester) Ingest(ctx context.Context, postings []jobs.Posting) ([]jobs.Job, error) {
	inserted := make([]jobs.Job, 0, len(postings))

	for _, p := range postings {
		if p.ID == "" {
			p.ID = jobs.DeriveID(p.Company, p.Title)
		}

		job, created, err := i.store.InsertIfAbsent(ctx, p, i.now())
		if err != nil {
			return inserted, fmt.Errorf("ingest %s: %w", p.ID, err)
		}
		if !created {
			continue
		}

		inserted = append(inserted, job)

		e := events.New(events.TypeJobDiscovered, job.ID)
		e.Company, e.Title = job.Company, job.Title
		i.publisher.Publish(ctx, e)
	}

	i.logger.Info("postings ingested",
		zap.Int("received", len(postings)),
		zap.Int("new", len(inserted)),
	)

	return inserted, nil
}

// Search scrapes the named companies, or every active company when names is
// empty, filters the result and ingests it.
func (i *Ingester) Search(ctx context.Context, companies []string) ([]jobs.Job, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var postings []jobs.Posting
	if len(companies) > 0 {
		postings = i.scraper.ScrapeCompanies(ctx, companies)
	} else {
		postings = i.scraper.ScrapeAll(ctx)
	}

	if len(i.filters) > 0 {
		filtered, err := filtering.Run(ctx, i.filterCfg, filtering.Deps{Logger: i.logger}, i.filters, postings)
		if err != nil {
			return nil, fmt.Errorf("filter postings: %w", err)
		}
		postings = filtered
	}

	return i.Ingest(ctx, postings)
}

package ats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/jobs"
)

// Adapter binds a company to the vendor board it publishes postings on.
type Adapter struct {
	Company    string
	CareersURL string
	Board      string
	Source     Source

	logger *zap.Logger
}

// Scrape fetches the board and returns the relevant postings. Failures are
// logged and produce no postings.
func (a *Adapter) Scrape(ctx context.Context) []jobs.Posting {
	logger := a.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("company", a.Company), zap.String("vendor", a.Source.Vendor()))

	listings, err := a.Source.FetchListings(ctx, a.Board)
	if err != nil {
		logger.Warn("failed to fetch postings", zap.Error(err))
		return nil
	}

	postings := make([]jobs.Posting, 0, len(listings))
	for _, l := range listings {
		if !IsRelevantRole(l.Title) {
			continue
		}
		postings = append(postings, a.normalize(l))
	}

	logger.Debug("board scraped", zap.Int("listings", len(listings)), zap.Int("relevant", len(postings)))

	return postings
}

func (a *Adapter) normalize(l Listing) jobs.Posting {
	location := strings.TrimSpace(l.Location)
	remote := IsRemote(location) || IsRemote(l.Text)
	if location == "" {
		location = defaultLocation
	}

	return jobs.Posting{
		ID:           jobs.DeriveID(a.Company, l.Title),
		Company:      a.Company,
		Title:        l.Title,
		URL:          l.URL,
		Description:  l.Text,
		Requirements: ExtractRequirements(l.Text),
		TechStack:    ExtractTechStack(l.Text),
		Location:     location,
		Remote:       remote,
	}
}

// Registry maps normalized company names to adapters. It is built once at
// start and is not safe for concurrent mutation.
type Registry struct {
	adapters map[string]*Adapter
	order    []string
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{adapters: make(map[string]*Adapter), logger: logger}
}

// Register adds an adapter. Names colliding after normalization are rejected.
func (r *Registry) Register(a *Adapter) error {
	if a == nil || a.Source == nil {
		return errors.New("adapter without source")
	}
	key := jobs.NormalizeCompany(a.Company)
	if key == "" {
		return errors.New("adapter without company name")
	}
	if _, ok := r.adapters[key]; ok {
		return fmt.Errorf("adapter for %s already registered", a.Company)
	}

	if a.logger == nil {
		a.logger = r.logger
	}
	r.adapters[key] = a
	r.order = append(r.order, key)

	return nil
}

// Lookup finds the adapter of a company by any casing or spacing of its name.
func (r *Registry) Lookup(company string) (*Adapter, bool) {
	a, ok := r.adapters[jobs.NormalizeCompany(company)]
	return a, ok
}

// Adapters returns the adapters in registration order.
func (r *Registry) Adapters() []*Adapter {
	result := make([]*Adapter, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, r.adapters[key])
	}
	return result
}

func (r *Registry) Len() int { return len(r.order) }

// BuildRegistry creates one adapter per watched company that names a vendor
// board. Companies without a vendor are watched by careers page only. A bad
// entry is logged and skipped so the other companies are still scraped.
func BuildRegistry(companies []jobs.CompanyWatch, client *Client, logger *zap.Logger) *Registry {
	registry := NewRegistry(logger)

	for _, c := range companies {
		if strings.TrimSpace(c.Vendor) == "" {
			registry.logger.Debug("company has no job board configured", zap.String("company", c.Name))
			continue
		}

		source, err := NewSource(c.Vendor, client)
		if err != nil {
			registry.logger.Warn("skipping watched company", zap.String("company", c.Name), zap.Error(err))
			continue
		}

		board := c.Board
		if board == "" {
			board = jobs.NormalizeCompany(c.Name)
		}

		if err := registry.Register(&Adapter{
			Company:    c.Name,
			CareersURL: c.CareersURL,
			Board:      board,
			Source:     source,
		}); err != nil {
			registry.logger.Warn("skipping watched company", zap.String("company", c.Name), zap.Error(err))
		}
	}

	return registry
}

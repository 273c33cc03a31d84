package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spigell/job-research/internal/events"
	"github.com/spigell/job-research/internal/filtering"
	"github.com/spigell/job-research/internal/jobs"
	"github.com/spigell/job-research/internal/store"
)

type recorder struct {
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) {
	r.events = append(r.events, e)
}

type fakeScraper struct {
	all       []jobs.Posting
	companies []string
}

func (f *fakeScraper) ScrapeAll(context.Context) []jobs.Posting { return f.all }

func (f *fakeScraper) ScrapeCompanies(_ context.Context, names []string) []jobs.Posting {
	f.companies = names
	var result []jobs.Posting
	for _, p := range f.all {
		for _, n := range names {
			if jobs.NormalizeCompany(n) == jobs.NormalizeCompany(p.Company) {
				result = append(result, p)
			}
		}
	}
	return result
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestIngestReturnsOnlyNewJobs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	rec := &recorder{}
	ing := New(s, &fakeScraper{}, rec, nil)

	first := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ing.now = func() time.Time { return first }

	posting := jobs.Posting{Company: "Acme", Title: "Design Systems Engineer", URL: "https://acme/1", Description: "design system"}

	created, err := ing.Ingest(ctx, []jobs.Posting{posting})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(created) != 1 || created[0].ID != "acme-design-systems-engineer" {
		t.Fatalf("unexpected ingest result %+v", created)
	}

	ing.now = func() time.Time { return first.Add(24 * time.Hour) }
	created, err = ing.Ingest(ctx, []jobs.Posting{posting, posting})
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected duplicates to be ignored, got %d", len(created))
	}

	all, err := s.Query(ctx, jobs.Filters{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one stored job, got %d", len(all))
	}
	if !all[0].FoundDate.Equal(first) {
		t.Fatalf("expected found date to stay %v, got %v", first, all[0].FoundDate)
	}

	if len(rec.events) != 1 || rec.events[0].Type != events.TypeJobDiscovered {
		t.Fatalf("expected exactly one discovery event, got %+v", rec.events)
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	scraper := &fakeScraper{all: []jobs.Posting{
		{Company: "Acme", Title: "Platform Engineer", Remote: true},
		{Company: "Globex", Title: "AI Engineer"},
		{Company: "Globex", Title: "Tooling Engineer", Remote: true},
	}}

	tests := []struct {
		name      string
		companies []string
		cfg       *filtering.Config
		expect    int
	}{
		{name: "full sweep", expect: 3},
		{name: "selected companies", companies: []string{"globex"}, expect: 2},
		{name: "remote only", cfg: &filtering.Config{RemoteOnly: true}, expect: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing := New(newStore(t), scraper, nil, nil).WithFilters(tt.cfg, filtering.Default())

			created, err := ing.Search(ctx, tt.companies)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(created) != tt.expect {
				t.Fatalf("expected %d new jobs, got %d", tt.expect, len(created))
			}
		})
	}
}

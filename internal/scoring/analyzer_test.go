package scoring

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-research/internal/jobs"
	"github.com/spigell/job-research/internal/store"
)

func seededStore(t *testing.T, postings ...jobs.Posting) *store.Store {
	t.Helper()

	s, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	for _, p := range postings {
		if _, _, err := s.InsertIfAbsent(context.Background(), p, time.Now()); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return s
}

func TestAnalyzeEndToEnd(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t, jobs.Posting{
		Company:     "Acme",
		Title:       "Design Systems Engineer",
		Description: "Own our design system and the figma libraries behind it.",
	})
	analyzer := NewAnalyzer(s, DefaultTable(), nil, nil)

	result, err := analyzer.Analyze(ctx, jobs.DeriveID("Acme", "Design Systems Engineer"), "I built a design system.")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if result.Score != 10 || result.Recommendation != TierLow {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.StrongMatches) != 1 || result.StrongMatches[0] != "design system" {
		t.Fatalf("unexpected strong matches %v", result.StrongMatches)
	}
	if len(result.Gaps) != 1 || result.Gaps[0] != "figma" {
		t.Fatalf("unexpected gaps %v", result.Gaps)
	}

	stored, err := s.Get(ctx, result.JobID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.AlignmentScore == nil || *stored.AlignmentScore != 10 {
		t.Fatalf("expected stored score 10, got %v", stored.AlignmentScore)
	}

	again, err := analyzer.Analyze(ctx, result.JobID, "I built a design system.")
	if err != nil {
		t.Fatalf("analyze again: %v", err)
	}
	if again.Score != result.Score {
		t.Fatalf("expected repeated scoring to be stable, got %d and %d", result.Score, again.Score)
	}
}

func TestAnalyzeMissingJob(t *testing.T) {
	_, err := NewAnalyzer(seededStore(t), DefaultTable(), nil, nil).Analyze(context.Background(), "missing", "")
	if !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalyzeBatchSkipsMissing(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	s := seededStore(t,
		jobs.Posting{Company: "Acme", Title: "Platform Engineer", Description: "platform work"},
		jobs.Posting{Company: "Globex", Title: "Design Engineer", Description: "design tokens"},
	)
	analyzer := NewAnalyzer(s, DefaultTable(), nil, zap.New(core))

	results := analyzer.AnalyzeBatch(context.Background(), []string{"acme-platform-engineer", "missing", "globex-design-engineer"}, "platform")

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].JobID != "acme-platform-engineer" || results[1].JobID != "globex-design-engineer" {
		t.Fatalf("unexpected results order %+v", results)
	}
	if observed.FilterMessage("skipping job in batch analysis").Len() != 1 {
		t.Fatal("expected the missing job to be logged")
	}
}

func TestProfileLoader(t *testing.T) {
	dir := t.TempDir()
	cv := filepath.Join(dir, "cv.txt")
	if err := os.WriteFile(cv, []byte("design system lead"), 0o600); err != nil {
		t.Fatalf("write cv: %v", err)
	}
	fallback := filepath.Join(dir, "default.txt")
	if err := os.WriteFile(fallback, []byte("default cv"), 0o600); err != nil {
		t.Fatalf("write default cv: %v", err)
	}

	tests := []struct {
		name   string
		loader ProfileLoader
		path   string
		expect string
	}{
		{name: "explicit path", loader: ProfileLoader{DefaultPath: fallback}, path: cv, expect: "design system lead"},
		{name: "default path", loader: ProfileLoader{DefaultPath: fallback}, expect: "default cv"},
		{name: "default text", loader: ProfileLoader{DefaultText: "inline profile"}, expect: "inline profile"},
		{name: "unreadable file", loader: ProfileLoader{DefaultText: "inline profile"}, path: filepath.Join(dir, "nope.txt"), expect: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loader.Load(tt.path); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

package cmd

import (
	"strings"
	"testing"

	"github.com/spigell/job-research/internal/jobs"
	"github.com/spigell/job-research/internal/store"
)

func TestParseToolArgs(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		stdin   string
		want    int
		wantErr bool
	}{
		{name: "empty", raw: "", want: 0},
		{name: "inline", raw: `{"job_id":"acme-engineer","notes":"sent"}`, want: 2},
		{name: "stdin", raw: "-", stdin: ` {"job_ids":["a","b"]} `, want: 1},
		{name: "empty stdin", raw: "-", stdin: "", want: 0},
		{name: "null", raw: "null", want: 0},
		{name: "array", raw: `["a"]`, wantErr: true},
		{name: "malformed", raw: `{"job_id":`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseToolArgs(tc.raw, strings.NewReader(tc.stdin))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil || len(got) != tc.want {
				t.Fatalf("expected %d arguments, got %v", tc.want, got)
			}
		})
	}
}

func TestWatchList(t *testing.T) {
	if got := watchList(nil); len(got) != len(defaultCompanies) {
		t.Fatalf("expected the default companies, got %d", len(got))
	}

	inactive := false
	got := watchList([]CompanyConfig{
		{Name: " Acme ", CareersURL: "https://acme.example/careers", Vendor: " Lever ", Board: "acme"},
		{Name: "Globex", Vendor: "greenhouse", Active: &inactive},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(got))
	}
	if got[0].Name != "Acme" || got[0].Vendor != "lever" || !got[0].Active {
		t.Fatalf("unexpected first company %+v", got[0])
	}
	if got[1].Active {
		t.Fatal("expected explicit active=false to be kept")
	}
}

func TestRedacted(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Driver: store.DriverPostgres, DSN: "postgres://user:pass@db/jobs"},
		Events:   EventsConfig{RedisURL: "redis://:secret@localhost:6379/0"},
		AI:       AIConfig{Gemini: GeminiConfig{APIKey: "key"}},
	}

	got := redacted(cfg)
	if got.Database.DSN != "***" || got.Events.RedisURL != "***" || got.AI.Gemini.APIKey != "***" {
		t.Fatalf("expected secrets to be hidden, got %+v", got)
	}
	if cfg.AI.Gemini.APIKey != "key" {
		t.Fatal("redacted must not modify the original config")
	}

	sqlite := redacted(Config{Database: DatabaseConfig{Driver: "sqlite", DSN: "job-research.db"}})
	if sqlite.Database.DSN != "job-research.db" {
		t.Fatalf("sqlite path should stay visible, got %q", sqlite.Database.DSN)
	}
}

func TestTriageLabels(t *testing.T) {
	score := 72
	j := jobs.Job{ID: "acme-platform-engineer", Title: "Platform Engineer", Company: "Acme", Priority: jobs.PriorityHigh, AlignmentScore: &score}

	label := jobLabel(j)
	if label != "acme-platform-engineer Platform Engineer / Acme / high / 72" {
		t.Fatalf("unexpected label %q", label)
	}
	if id := strings.Split(label, " ")[0]; id != j.ID {
		t.Fatalf("label must start with the job id, got %q", id)
	}

	j.AlignmentScore = nil
	j.Title = strings.Repeat("x", maxTitleLabelLength+10)
	label = jobLabel(j)
	if !strings.Contains(label, "...") || !strings.HasSuffix(label, unscoredLabel) {
		t.Fatalf("expected truncated unscored label, got %q", label)
	}

	list := removeJob([]jobs.Job{{ID: "a"}, {ID: "b"}, {ID: "c"}}, "b")
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "c" {
		t.Fatalf("unexpected list after remove %+v", list)
	}
}

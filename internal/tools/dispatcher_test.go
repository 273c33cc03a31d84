package tools

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/ai"
	"github.com/spigell/job-research/internal/jobs"
	"github.com/spigell/job-research/internal/scoring"
	"github.com/spigell/job-research/internal/store"
	"github.com/spigell/job-research/internal/tracking"
)

type fakeSearcher struct {
	companies []string
	found     []jobs.Job
}

func (f *fakeSearcher) Search(_ context.Context, companies []string) ([]jobs.Job, error) {
	f.companies = companies
	return f.found, nil
}

type recordingAgent struct {
	req ai.Request
}

func (r *recordingAgent) Invoke(_ context.Context, req ai.Request) (*ai.Response, error) {
	r.req = req
	return &ai.Response{AgentType: req.AgentType, Prompt: req.Prompt, Message: "done", Output: "analysis"}, nil
}

type testEnv struct {
	dispatcher *Dispatcher
	store      *store.Store
	searcher   *fakeSearcher
}

func newTestEnv(t *testing.T, agent ai.Agent) testEnv {
	t.Helper()

	s, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, p := range []jobs.Posting{
		{Company: "Acme", Title: "Design Systems Engineer", Description: "React TypeScript design system with AI tooling"},
		{Company: "Globex", Title: "Platform Engineer", Description: "Kubernetes and Go"},
	} {
		p.ID = jobs.DeriveID(p.Company, p.Title)
		if _, _, err := s.InsertIfAbsent(ctx, p, now.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("seed job: %v", err)
		}
	}

	searcher := &fakeSearcher{}
	d := NewDispatcher(Deps{
		Searcher:  searcher,
		Analyzer:  scoring.NewAnalyzer(s, scoring.DefaultTable(), nil, zap.NewNop()),
		Tracker:   tracking.New(s, nil, zap.NewNop()),
		WatchList: s,
		Profiles:  scoring.ProfileLoader{DefaultText: "design systems engineer, React, TypeScript"},
		Agent:     agent,
	})
	return testEnv{dispatcher: d, store: s, searcher: searcher}
}

func TestCatalogueMatchesHandlers(t *testing.T) {
	env := newTestEnv(t, nil)

	seen := map[string]bool{}
	for _, tool := range Catalogue() {
		if seen[tool.Name] {
			t.Fatalf("duplicate tool %q", tool.Name)
		}
		seen[tool.Name] = true
		if _, ok := env.dispatcher.handlers[tool.Name]; !ok {
			t.Fatalf("tool %q has no handler", tool.Name)
		}
		if tool.InputSchema.Type != "object" || tool.Description == "" {
			t.Fatalf("tool %q has incomplete schema", tool.Name)
		}
		for _, required := range tool.InputSchema.Required {
			if _, ok := tool.InputSchema.Properties[required]; !ok {
				t.Fatalf("tool %q requires undeclared property %q", tool.Name, required)
			}
		}
	}
	if len(seen) != len(env.dispatcher.handlers) {
		t.Fatalf("catalogue has %d tools, dispatcher %d", len(seen), len(env.dispatcher.handlers))
	}
}

func TestCallUnknownTool(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.dispatcher.Call(context.Background(), "delete_everything", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestCallValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name string
		tool string
		args map[string]any
	}{
		{name: "missing job id", tool: GetJobDetails, args: nil},
		{name: "blank job id", tool: MarkJobApplied, args: map[string]any{"job_id": "  "}},
		{name: "unknown status", tool: GetJobs, args: map[string]any{"status": "ghosted"}},
		{name: "unknown priority", tool: MarkJobReviewed, args: map[string]any{"job_id": "acme-design-systems-engineer", "priority": "urgent"}},
		{name: "missing status", tool: UpdateJobStatus, args: map[string]any{"job_id": "acme-design-systems-engineer"}},
		{name: "empty batch", tool: BatchAnalyzeJobs, args: map[string]any{"job_ids": []any{}}},
		{name: "wrong type", tool: BatchAnalyzeJobs, args: map[string]any{"job_ids": map[string]any{"a": 1}}},
		{name: "unknown agent", tool: InvokeAgent, args: map[string]any{"agent_type": "recruiter", "prompt": "hi"}},
		{name: "watch without url", tool: WatchCompany, args: map[string]any{"company": "Initech"}},
		{name: "unsupported vendor", tool: WatchCompany, args: map[string]any{"company": "Initech", "careers_url": "https://initech.example/jobs", "vendor": "workday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.dispatcher.Call(context.Background(), tt.tool, tt.args)
			var validation *jobs.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetJobsFilters(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	result, err := env.dispatcher.Call(ctx, GetJobs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := result.([]jobs.Job)
	if len(all) != 2 || all[0].Company != "Globex" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	result, err = env.dispatcher.Call(ctx, GetJobs, map[string]any{"company": "Acme", "status": "new"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.([]jobs.Job); len(got) != 1 || got[0].ID != "acme-design-systems-engineer" {
		t.Fatalf("unexpected filtered jobs %+v", got)
	}

	result, err = env.dispatcher.Call(ctx, GetJobs, map[string]any{"minAlignment": float64(1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.([]jobs.Job); len(got) != 0 {
		t.Fatalf("expected unscored jobs to be excluded, got %d", len(got))
	}
}

func TestGetJobDetails(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	result, err := env.dispatcher.Call(ctx, GetJobDetails, map[string]any{"job_id": "globex-platform-engineer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job, ok := result.(jobs.Job); !ok || job.Title != "Platform Engineer" {
		t.Fatalf("unexpected result %#v", result)
	}

	result, err = env.dispatcher.Call(ctx, GetJobDetails, map[string]any{"job_id": "missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "Job not found" {
		t.Fatalf("expected not found text, got %#v", result)
	}
}

func TestStatusTools(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	id := "acme-design-systems-engineer"

	tests := []struct {
		name   string
		tool   string
		args   map[string]any
		expect string
		status jobs.Status
	}{
		{
			name:   "reviewed with priority",
			tool:   MarkJobReviewed,
			args:   map[string]any{"job_id": id, "priority": "high", "notes": "looks great"},
			expect: "Marked Design Systems Engineer as reviewed",
			status: jobs.StatusReviewed,
		},
		{
			name:   "applied",
			tool:   MarkJobApplied,
			args:   map[string]any{"job_id": id},
			expect: "Marked Design Systems Engineer as applied",
			status: jobs.StatusApplied,
		},
		{
			name:   "interview",
			tool:   UpdateJobStatus,
			args:   map[string]any{"job_id": id, "status": "interview"},
			expect: "Marked Design Systems Engineer as interview",
			status: jobs.StatusInterview,
		},
		{
			name:   "archived",
			tool:   ArchiveJob,
			args:   map[string]any{"job_id": id, "reason": "position filled"},
			expect: "Archived Design Systems Engineer",
			status: jobs.StatusArchived,
		},
		{
			name:   "missing job",
			tool:   MarkJobApplied,
			args:   map[string]any{"job_id": "nope"},
			expect: "Job not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.dispatcher.Call(ctx, tt.tool, tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expect {
				t.Fatalf("expected %q, got %#v", tt.expect, result)
			}
			if tt.status == "" {
				return
			}
			job, err := env.store.Get(ctx, id)
			if err != nil {
				t.Fatalf("get job: %v", err)
			}
			if job.Status != tt.status {
				t.Fatalf("expected status %s, got %s", tt.status, job.Status)
			}
		})
	}

	job, err := env.store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Priority != jobs.PriorityHigh {
		t.Fatalf("expected review priority to persist, got %s", job.Priority)
	}
	if job.Notes == nil || *job.Notes != "position filled" {
		t.Fatalf("expected archive reason in notes, got %v", job.Notes)
	}
}

func TestAnalyzeTools(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	result, err := env.dispatcher.Call(ctx, AnalyzeJobFit, map[string]any{"job_id": "acme-design-systems-engineer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	analysis := result.(scoring.Result)
	if analysis.Score <= 0 || analysis.JobID != "acme-design-systems-engineer" {
		t.Fatalf("unexpected analysis %+v", analysis)
	}

	_, err = env.dispatcher.Call(ctx, AnalyzeJobFit, map[string]any{"job_id": "missing"})
	if !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	result, err = env.dispatcher.Call(ctx, BatchAnalyzeJobs, map[string]any{
		"job_ids": []any{"acme-design-systems-engineer", "missing", "globex-platform-engineer"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.([]scoring.Result); len(got) != 2 {
		t.Fatalf("expected missing id to be skipped, got %d results", len(got))
	}
}

func TestSearchAndWatchTools(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.searcher.found = []jobs.Job{{ID: "initech-ai-engineer"}}

	result, err := env.dispatcher.Call(ctx, SearchJobs, map[string]any{"companies": []any{"Anthropic", "Vercel"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.([]jobs.Job); len(got) != 1 {
		t.Fatalf("unexpected search result %+v", got)
	}
	if strings.Join(env.searcher.companies, ",") != "Anthropic,Vercel" {
		t.Fatalf("unexpected companies %v", env.searcher.companies)
	}

	result, err = env.dispatcher.Call(ctx, WatchCompany, map[string]any{
		"company":     "Initech",
		"careers_url": "https://initech.example/jobs",
		"vendor":      "Lever",
		"board":       "initech",
		"active":      false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "Watching Initech" {
		t.Fatalf("unexpected result %#v", result)
	}

	result, err = env.dispatcher.Call(ctx, WatchedCompanies, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	companies := result.([]jobs.CompanyWatch)
	if len(companies) != 1 || companies[0].Vendor != "lever" || companies[0].Active {
		t.Fatalf("unexpected watch list %+v", companies)
	}

	result, err = env.dispatcher.Call(ctx, WatchedCompanies, map[string]any{"active_only": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.([]jobs.CompanyWatch); len(got) != 0 {
		t.Fatalf("expected inactive company to be hidden, got %+v", got)
	}

	_, err = env.dispatcher.Call(ctx, WatchCompany, map[string]any{
		"company":     "INI tech",
		"careers_url": "https://initech.example/jobs",
		"vendor":      "greenhouse",
	})
	var validation *jobs.ValidationError
	if !errors.As(err, &validation) || !strings.Contains(err.Error(), `already watched as "Initech"`) {
		t.Fatalf("expected a name clash to be rejected, got %v", err)
	}

	// the same name updates the entry
	if _, err := env.dispatcher.Call(ctx, WatchCompany, map[string]any{
		"company":     "Initech",
		"careers_url": "https://initech.example/careers",
	}); err != nil {
		t.Fatalf("unexpected error re-watching: %v", err)
	}
}

func TestStatsAndAttentionTools(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	result, err := env.dispatcher.Call(ctx, ApplicationStats, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats := result.(tracking.Stats); stats.Total != 2 || stats.ByStatus["new"] != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	result, err = env.dispatcher.Call(ctx, JobsNeedAttention, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attention := result.(tracking.Attention); len(attention.NewJobs) != 2 {
		t.Fatalf("unexpected attention %+v", attention)
	}
}

func TestInvokeAgent(t *testing.T) {
	t.Run("placeholder", func(t *testing.T) {
		env := newTestEnv(t, nil)

		result, err := env.dispatcher.Call(context.Background(), InvokeAgent, map[string]any{
			"agent_type": "cv-optimizer",
			"prompt":     "tailor my CV",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp := result.(*ai.Response)
		if resp.AgentType != "cv-optimizer" || resp.Prompt != "tailor my CV" || resp.Message == "" {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("with job context", func(t *testing.T) {
		agent := &recordingAgent{}
		env := newTestEnv(t, agent)

		_, err := env.dispatcher.Call(context.Background(), InvokeAgent, map[string]any{
			"agent_type": "job-analyzer",
			"prompt":     "how do I fit?",
			"job_id":     "globex-platform-engineer",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if agent.req.Job == nil || agent.req.Job.Company != "Globex" {
			t.Fatalf("expected job context, got %+v", agent.req.Job)
		}
		if !strings.Contains(agent.req.Profile, "design systems") {
			t.Fatalf("expected default profile, got %q", agent.req.Profile)
		}

		_, err = env.dispatcher.Call(context.Background(), InvokeAgent, map[string]any{
			"agent_type": "job-analyzer",
			"prompt":     "how do I fit?",
			"job_id":     "missing",
		})
		if !errors.Is(err, jobs.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

package tools

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/ai"
	"github.com/spigell/job-research/internal/ats"
	"github.com/spigell/job-research/internal/jobs"
	"github.com/spigell/job-research/internal/scoring"
	"github.com/spigell/job-research/internal/tracking"
)

const notFoundText = "Job not found"

// ErrUnknownTool is returned by Call for names outside the catalogue.
var ErrUnknownTool = errors.New("unknown tool")

type Searcher interface {
	Search(ctx context.Context, companies []string) ([]jobs.Job, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, id, profile string) (scoring.Result, error)
	AnalyzeBatch(ctx context.Context, ids []string, profile string) []scoring.Result
}

type Tracker interface {
	List(ctx context.Context, f jobs.Filters) ([]jobs.Job, error)
	Get(ctx context.Context, id string) (jobs.Job, error)
	UpdateStatus(ctx context.Context, id string, status jobs.Status, notes *string) (jobs.Job, error)
	MarkApplied(ctx context.Context, id string, notes *string) (jobs.Job, error)
	MarkReviewed(ctx context.Context, id string, priority jobs.Priority, notes *string) (jobs.Job, error)
	Archive(ctx context.Context, id string, reason *string) (jobs.Job, error)
	Stats(ctx context.Context) (tracking.Stats, error)
	Attention(ctx context.Context) (tracking.Attention, error)
}

type WatchList interface {
	ListCompanies(ctx context.Context, activeOnly bool) ([]jobs.CompanyWatch, error)
	UpsertCompany(ctx context.Context, c jobs.CompanyWatch) error
}

type ProfileSource interface {
	Load(cvPath string) string
}

// Deps are the services behind the tools. Agent falls back to ai.Placeholder.
type Deps struct {
	Searcher  Searcher
	Analyzer  Analyzer
	Tracker   Tracker
	WatchList WatchList
	Profiles  ProfileSource
	Agent     ai.Agent
	Logger    *zap.Logger
}

type handler func(ctx context.Context, args map[string]any) (any, error)

// Dispatcher routes tool calls to the services.
type Dispatcher struct {
	deps     Deps
	handlers map[string]handler
}

func NewDispatcher(deps Deps) *Dispatcher {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Agent == nil {
		deps.Agent = ai.Placeholder{}
	}

	d := &Dispatcher{deps: deps}
	d.handlers = map[string]handler{
		SearchJobs:        d.searchJobs,
		GetJobs:           d.getJobs,
		GetJobDetails:     d.getJobDetails,
		AnalyzeJobFit:     d.analyzeJobFit,
		BatchAnalyzeJobs:  d.batchAnalyzeJobs,
		UpdateJobStatus:   d.updateJobStatus,
		MarkJobApplied:    d.markJobApplied,
		MarkJobReviewed:   d.markJobReviewed,
		ArchiveJob:        d.archiveJob,
		ApplicationStats:  d.applicationStats,
		JobsNeedAttention: d.jobsNeedingAttention,
		WatchedCompanies:  d.watchedCompanies,
		WatchCompany:      d.watchCompany,
		InvokeAgent:       d.invokeAgent,
	}
	return d
}

// Call runs the named tool. args may be nil.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	h, ok := d.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}

	d.deps.Logger.Debug("calling tool", zap.String("tool", name), zap.Int("args", len(args)))

	result, err := h(ctx, args)
	if err != nil {
		d.deps.Logger.Debug("tool failed", zap.String("tool", name), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func decode(args map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(args); err != nil {
		return &jobs.ValidationError{Msg: fmt.Sprintf("invalid arguments: %v", err)}
	}
	return nil
}

func requireJobID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", &jobs.ValidationError{Msg: "job_id is required"}
	}
	return id, nil
}

type jobRef struct {
	JobID string `mapstructure:"job_id"`
}

func (d *Dispatcher) searchJobs(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		Companies []string `mapstructure:"companies"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	return d.deps.Searcher.Search(ctx, in.Companies)
}

func (d *Dispatcher) getJobs(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		Status       string `mapstructure:"status"`
		Priority     string `mapstructure:"priority"`
		Company      string `mapstructure:"company"`
		MinAlignment int    `mapstructure:"minAlignment"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}

	f := jobs.Filters{Company: strings.TrimSpace(in.Company), MinScore: in.MinAlignment}
	if in.Status != "" {
		status, err := jobs.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		f.Status = status
	}
	if in.Priority != "" {
		priority, err := jobs.ParsePriority(in.Priority)
		if err != nil {
			return nil, err
		}
		f.Priority = priority
	}

	return d.deps.Tracker.List(ctx, f)
}

func (d *Dispatcher) getJobDetails(ctx context.Context, args map[string]any) (any, error) {
	var in jobRef
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	id, err := requireJobID(in.JobID)
	if err != nil {
		return nil, err
	}

	job, err := d.deps.Tracker.Get(ctx, id)
	if errors.Is(err, jobs.ErrNotFound) {
		return notFoundText, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (d *Dispatcher) analyzeJobFit(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		JobID  string `mapstructure:"job_id"`
		CVPath string `mapstructure:"cv_path"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	id, err := requireJobID(in.JobID)
	if err != nil {
		return nil, err
	}

	return d.deps.Analyzer.Analyze(ctx, id, d.deps.Profiles.Load(in.CVPath))
}

func (d *Dispatcher) batchAnalyzeJobs(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		JobIDs []string `mapstructure:"job_ids"`
		CVPath string   `mapstructure:"cv_path"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if len(in.JobIDs) == 0 {
		return nil, &jobs.ValidationError{Msg: "job_ids is required"}
	}

	return d.deps.Analyzer.AnalyzeBatch(ctx, in.JobIDs, d.deps.Profiles.Load(in.CVPath)), nil
}

func (d *Dispatcher) updateJobStatus(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		JobID  string  `mapstructure:"job_id"`
		Status string  `mapstructure:"status"`
		Notes  *string `mapstructure:"notes"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	id, err := requireJobID(in.JobID)
	if err != nil {
		return nil, err
	}
	status, err := jobs.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	job, err := d.deps.Tracker.UpdateStatus(ctx, id, status, in.Notes)
	return confirm(job, err, func(j jobs.Job) string {
		return fmt.Sprintf("Marked %s as %s", j.Title, j.Status)
	})
}

func (d *Dispatcher) markJobApplied(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		JobID string  `mapstructure:"job_id"`
		Notes *string `mapstructure:"notes"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	id, err := requireJobID(in.JobID)
	if err != nil {
		return nil, err
	}

	job, err := d.deps.Tracker.MarkApplied(ctx, id, in.Notes)
	return confirm(job, err, func(j jobs.Job) string {
		return fmt.Sprintf("Marked %s as applied", j.Title)
	})
}

func (d *Dispatcher) markJobReviewed(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		JobID    string  `mapstructure:"job_id"`
		Priority string  `mapstructure:"priority"`
		Notes    *string `mapstructure:"notes"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	id, err := requireJobID(in.JobID)
	if err != nil {
		return nil, err
	}

	var priority jobs.Priority
	if in.Priority != "" {
		if priority, err = jobs.ParsePriority(in.Priority); err != nil {
			return nil, err
		}
	}

	job, err := d.deps.Tracker.MarkReviewed(ctx, id, priority, in.Notes)
	return confirm(job, err, func(j jobs.Job) string {
		return fmt.Sprintf("Marked %s as reviewed", j.Title)
	})
}

func (d *Dispatcher) archiveJob(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		JobID  string  `mapstructure:"job_id"`
		Reason *string `mapstructure:"reason"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	id, err := requireJobID(in.JobID)
	if err != nil {
		return nil, err
	}

	job, err := d.deps.Tracker.Archive(ctx, id, in.Reason)
	return confirm(job, err, func(j jobs.Job) string {
		return fmt.Sprintf("Archived %s", j.Title)
	})
}

func confirm(job jobs.Job, err error, text func(jobs.Job) string) (any, error) {
	if errors.Is(err, jobs.ErrNotFound) {
		return notFoundText, nil
	}
	if err != nil {
		return nil, err
	}
	return text(job), nil
}

func (d *Dispatcher) applicationStats(ctx context.Context, _ map[string]any) (any, error) {
	return d.deps.Tracker.Stats(ctx)
}

func (d *Dispatcher) jobsNeedingAttention(ctx context.Context, _ map[string]any) (any, error) {
	return d.deps.Tracker.Attention(ctx)
}

func (d *Dispatcher) watchedCompanies(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		ActiveOnly bool `mapstructure:"active_only"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	return d.deps.WatchList.ListCompanies(ctx, in.ActiveOnly)
}

func (d *Dispatcher) watchCompany(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		Company    string `mapstructure:"company"`
		CareersURL string `mapstructure:"careers_url"`
		Vendor     string `mapstructure:"vendor"`
		Board      string `mapstructure:"board"`
		Active     *bool  `mapstructure:"active"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}

	c := jobs.CompanyWatch{
		Name:       strings.TrimSpace(in.Company),
		CareersURL: strings.TrimSpace(in.CareersURL),
		Vendor:     strings.ToLower(strings.TrimSpace(in.Vendor)),
		Board:      strings.TrimSpace(in.Board),
		Active:     in.Active == nil || *in.Active,
	}
	if c.Name == "" || c.CareersURL == "" {
		return nil, &jobs.ValidationError{Msg: "company and careers_url are required"}
	}
	if c.Vendor != "" && !slices.Contains(ats.Vendors, c.Vendor) {
		return nil, &jobs.ValidationError{Msg: fmt.Sprintf("unsupported vendor %q", in.Vendor)}
	}

	watched, err := d.deps.WatchList.ListCompanies(ctx, false)
	if err != nil {
		return nil, err
	}
	key := jobs.NormalizeCompany(c.Name)
	for _, w := range watched {
		if w.Name != c.Name && jobs.NormalizeCompany(w.Name) == key {
			return nil, &jobs.ValidationError{Msg: fmt.Sprintf("company %q is already watched as %q", c.Name, w.Name)}
		}
	}

	if err := d.deps.WatchList.UpsertCompany(ctx, c); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Watching %s", c.Name), nil
}

func (d *Dispatcher) invokeAgent(ctx context.Context, args map[string]any) (any, error) {
	var in struct {
		AgentType string `mapstructure:"agent_type"`
		Prompt    string `mapstructure:"prompt"`
		JobID     string `mapstructure:"job_id"`
		CVPath    string `mapstructure:"cv_path"`
	}
	if err := decode(args, &in); err != nil {
		return nil, err
	}
	if err := ai.ValidateAgentType(in.AgentType); err != nil {
		return nil, err
	}

	req := ai.Request{AgentType: in.AgentType, Prompt: in.Prompt}
	if _, placeholder := d.deps.Agent.(ai.Placeholder); !placeholder {
		if id := strings.TrimSpace(in.JobID); id != "" {
			job, err := d.deps.Tracker.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			req.Job = &job
		}
		req.Profile = d.deps.Profiles.Load(in.CVPath)
	}

	return d.deps.Agent.Invoke(ctx, req)
}

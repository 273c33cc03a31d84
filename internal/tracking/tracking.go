// Package tracking implements status transitions and read models over stored jobs.
package tracking

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/events"
	"github.com/spigell/job-research/internal/jobs"
)

// Store is the storage the tracker works on.
type Store interface {
	Get(ctx context.Context, id string) (jobs.Job, error)
	Query(ctx context.Context, f jobs.Filters) ([]jobs.Job, error)
	Transition(ctx context.Context, id string, status jobs.Status, priority jobs.Priority, notes *string, now time.Time) error
}

// Stats aggregates every stored job.
type Stats struct {
	Total            int            `json:"total"`
	ByStatus         map[string]int `json:"by_status"`
	ByPriority       map[string]int `json:"by_priority"`
	ByCompany        map[string]int `json:"by_company"`
	AverageAlignment int            `json:"average_alignment"`
}

// Attention groups jobs that need a follow-up. A job may be in several groups.
type Attention struct {
	NewJobs                []jobs.Job `json:"new_jobs"`
	HighPriorityNotApplied []jobs.Job `json:"high_priority_not_applied"`
	Interviews             []jobs.Job `json:"interviews"`
}

type Tracker struct {
	store     Store
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func New(store Store, publisher events.Publisher, logger *zap.Logger) *Tracker {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, publisher: publisher, logger: logger, now: time.Now}
}

// UpdateStatus moves a job to status. Notes replace the stored ones only when
// not nil. The updated job is returned.
func (t *Tracker) UpdateStatus(ctx context.Context, id string, status jobs.Status, notes *string) (jobs.Job, error) {
	return t.transition(ctx, id, status, "", notes)
}

func (t *Tracker) MarkApplied(ctx context.Context, id string, notes *string) (jobs.Job, error) {
	return t.transition(ctx, id, jobs.StatusApplied, "", notes)
}

// MarkReviewed sets the reviewed status and, when priority is not empty, the priority.
func (t *Tracker) MarkReviewed(ctx context.Context, id string, priority jobs.Priority, notes *string) (jobs.Job, error) {
	return t.transition(ctx, id, jobs.StatusReviewed, priority, notes)
}

// Archive is the terminal transition. The reason is kept as notes.
func (t *Tracker) Archive(ctx context.Context, id string, reason *string) (jobs.Job, error) {
	return t.transition(ctx, id, jobs.StatusArchived, "", reason)
}

func (t *Tracker) transition(ctx context.Context, id string, status jobs.Status, priority jobs.Priority, notes *string) (jobs.Job, error) {
	before, err := t.store.Get(ctx, id)
	if err != nil {
		return jobs.Job{}, err
	}

	if err := t.store.Transition(ctx, id, status, priority, notes, t.now()); err != nil {
		return jobs.Job{}, fmt.Errorf("update status: %w", err)
	}

	after, err := t.store.Get(ctx, id)
	if err != nil {
		return jobs.Job{}, err
	}

	t.logger.Info("job status changed",
		zap.String("job_id", id),
		zap.String("from", string(before.Status)),
		zap.String("to", string(after.Status)),
	)

	e := events.New(events.TypeJobStatusChanged, id)
	e.Company, e.Title = after.Company, after.Title
	e.FromStatus, e.ToStatus = string(before.Status), string(after.Status)
	t.publisher.Publish(ctx, e)

	return after, nil
}

func (t *Tracker) List(ctx context.Context, f jobs.Filters) ([]jobs.Job, error) {
	return t.store.Query(ctx, f)
}

func (t *Tracker) Get(ctx context.Context, id string) (jobs.Job, error) {
	return t.store.Get(ctx, id)
}

// Stats counts jobs by status, priority and company and averages the scored ones.
func (t *Tracker) Stats(ctx context.Context) (Stats, error) {
	all, err := t.store.Query(ctx, jobs.Filters{})
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Total:      len(all),
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
		ByCompany:  make(map[string]int),
	}

	sum, scored := 0, 0
	for _, j := range all {
		stats.ByStatus[string(j.Status)]++
		stats.ByPriority[string(j.Priority)]++
		stats.ByCompany[j.Company]++
		if j.AlignmentScore != nil {
			sum += *j.AlignmentScore
			scored++
		}
	}
	if scored > 0 {
		stats.AverageAlignment = int(math.Round(float64(sum) / float64(scored)))
	}

	return stats, nil
}

// Attention returns new jobs, high priority jobs not applied to nor archived,
// and jobs at the interview stage.
func (t *Tracker) Attention(ctx context.Context) (Attention, error) {
	all, err := t.store.Query(ctx, jobs.Filters{})
	if err != nil {
		return Attention{}, err
	}

	result := Attention{
		NewJobs:                []jobs.Job{},
		HighPriorityNotApplied: []jobs.Job{},
		Interviews:             []jobs.Job{},
	}
	for _, j := range all {
		if j.Status == jobs.StatusNew {
			result.NewJobs = append(result.NewJobs, j)
		}
		if j.Priority == jobs.PriorityHigh && j.Status != jobs.StatusApplied && j.Status != jobs.StatusArchived {
			result.HighPriorityNotApplied = append(result.HighPriorityNotApplied, j)
		}
		if j.Status == jobs.StatusInterview {
			result.Interviews = append(result.Interviews, j)
		}
	}

	return result, nil
}

package scoring

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/events"
	"github.com/spigell/job-research/internal/jobs"
)

// Store is the storage the analyzer reads jobs from and writes scores to.
type Store interface {
	Get(ctx context.Context, id string) (jobs.Job, error)
	UpdateScore(ctx context.Context, id string, score int, now time.Time) error
}

// Analyzer scores stored jobs and persists the result.
type Analyzer struct {
	store     Store
	table     Table
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewAnalyzer(store Store, table Table, publisher events.Publisher, logger *zap.Logger) *Analyzer {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{store: store, table: table, publisher: publisher, logger: logger, now: time.Now}
}

// Analyze scores the job and overwrites its stored score. A missing job yields
// an error wrapping jobs.ErrNotFound.
func (a *Analyzer) Analyze(ctx context.Context, id, profile string) (Result, error) {
	job, err := a.store.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}

	result := Score(a.table, job, profile)

	if err := a.store.UpdateScore(ctx, id, result.Score, a.now()); err != nil {
		return Result{}, fmt.Errorf("save score: %w", err)
	}

	a.logger.Debug("job scored",
		zap.String("job_id", id),
		zap.Int("score", result.Score),
		zap.String("recommendation", string(result.Recommendation)),
	)

	e := events.New(events.TypeJobScored, id)
	e.Company, e.Title = job.Company, job.Title
	e.Score = &result.Score
	a.publisher.Publish(ctx, e)

	return result, nil
}

// AnalyzeBatch scores every id it can. Failing ids are logged and left out of
// the result.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, ids []string, profile string) []Result {
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		result, err := a.Analyze(ctx, id, profile)
		if err != nil {
			a.logger.Warn("skipping job in batch analysis", zap.String("job_id", id), zap.Error(err))
			continue
		}
		results = append(results, result)
	}
	return results
}

// ProfileLoader resolves the profile text used for scoring.
type ProfileLoader struct {
	// DefaultPath is read when a request names no CV file.
	DefaultPath string
	// DefaultText is used when neither a request nor DefaultPath provide a profile.
	DefaultText string

	Logger *zap.Logger
}

// Load returns the contents of cvPath, falling back to the defaults when it is
// empty. An unreadable file is logged and yields an empty profile.
func (l ProfileLoader) Load(cvPath string) string {
	path := strings.TrimSpace(cvPath)
	if path == "" {
		path = strings.TrimSpace(l.DefaultPath)
	}
	if path == "" {
		return l.DefaultText
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if l.Logger != nil {
			l.Logger.Warn("could not read CV", zap.String("path", path), zap.Error(err))
		}
		return ""
	}
	return string(data)
}

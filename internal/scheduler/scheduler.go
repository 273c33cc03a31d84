// Package scheduler runs the periodic search sweep over the watch list.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/jobs"
)

// Searcher runs one sweep. A nil company list means every watched company.
type Searcher interface {
	Search(ctx context.Context, companies []string) ([]jobs.Job, error)
}

// Scheduler wraps robfig/cron. Overlapping sweeps are skipped.
type Scheduler struct {
	cron       *cron.Cron
	searcher   Searcher
	spec       string
	runOnStart bool
	logger     *zap.Logger
	entry      cron.EntryID
}

func New(searcher Searcher, interval time.Duration, runOnStart bool, logger *zap.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("schedule interval must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")

	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		searcher:   searcher,
		spec:       fmt.Sprintf("@every %s", interval),
		runOnStart: runOnStart,
		logger:     logger,
	}, nil
}

// Start registers the sweep and starts the cron loop. With runOnStart the
// first sweep runs right away in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.spec, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.entry = id

	s.cron.Start()
	s.logger.Info("cron started", zap.String("spec", s.spec))

	if s.runOnStart {
		go s.cron.Entry(id).WrappedJob.Run()
	}

	return nil
}

// Stop stops the cron loop. The returned context is done once a running sweep finishes.
func (s *Scheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	s.logger.Info("cron stopped")
	return ctx
}

func (s *Scheduler) Spec() string {
	return s.spec
}

func (s *Scheduler) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	s.logger.Info("search sweep started")

	found, err := s.searcher.Search(ctx, nil)
	if err != nil {
		s.logger.Error("search sweep failed", zap.Error(err))
		return
	}

	s.logger.Info("search sweep complete",
		zap.Int("new_jobs", len(found)),
		zap.Duration("took", time.Since(start)),
	)
}

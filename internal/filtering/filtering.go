// Package filtering drops aggregated postings before they are ingested.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/jobs"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, postings []jobs.Posting) ([]jobs.Posting, Step, error)
}

// Deps is passed to every step.
type Deps struct {
	Logger *zap.Logger
}

// Step counts the postings a filter saw, removed and kept.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config is the filters section of the config file.
type Config struct {
	RedFlags          []string `mapstructure:"red-flags"`
	RemoteOnly        bool     `mapstructure:"remote-only"`
	ExcludedCompanies []string `mapstructure:"excluded-companies"`
}

// Status is what `Describe` reports for one filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider lets a filter add details to its Status.
type statusProvider interface {
	Status() Status
}

// Default returns the filters in the order they run.
func Default() []Filter {
	return []Filter{NewExcludedCompanies(), NewRedFlags(), NewRemoteOnly()}
}

// DisableByName turns off the named filter. It stays in the list so Describe still shows it.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the postings left.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, postings []jobs.Posting) ([]jobs.Posting, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, postings)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		postings = next
	}

	return postings, nil
}

// Describe lists every filter with its enabled state.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns the postings for which drop is false and the ids of the dropped ones.
func keep(postings []jobs.Posting, drop func(jobs.Posting) bool) ([]jobs.Posting, []string) {
	left := make([]jobs.Posting, 0, len(postings))
	var dropped []string
	for _, p := range postings {
		if drop(p) {
			dropped = append(dropped, p.ID)
			continue
		}
		left = append(left, p)
	}
	return left, dropped
}

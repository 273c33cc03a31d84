package filtering

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/jobs"
)

type excludedCompaniesFilter struct {
	companies map[string]bool
	names     []string
}

// NewExcludedCompanies creates a filter that removes postings by companies configured in the config.
func NewExcludedCompanies() Filter {
	return &excludedCompaniesFilter{}
}

func (f *excludedCompaniesFilter) Name() string { return "excluded_companies" }

func (f *excludedCompaniesFilter) Disable(string) {}

func (f *excludedCompaniesFilter) IsEnabled() bool { return true }

func (f *excludedCompaniesFilter) Validate(cfg *Config) error {
	f.companies = make(map[string]bool)
	f.names = nil
	if cfg == nil {
		return nil
	}
	for _, c := range cfg.ExcludedCompanies {
		if key := jobs.NormalizeCompany(c); key != "" {
			f.companies[key] = true
			f.names = append(f.names, strings.TrimSpace(c))
		}
	}
	return nil
}

func (f *excludedCompaniesFilter) Apply(_ context.Context, deps Deps, postings []jobs.Posting) ([]jobs.Posting, Step, error) {
	initial := len(postings)
	if len(f.companies) == 0 {
		return postings, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	left, excluded := keep(postings, func(p jobs.Posting) bool {
		return f.companies[jobs.NormalizeCompany(p.Company)]
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings by companies",
			zap.Strings("excluded_companies", f.names),
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", len(left)),
		)
	}

	return left, Step{Initial: initial, Dropped: len(excluded), Left: len(left)}, nil
}

func (f *excludedCompaniesFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["companies"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type redFlagsFilter struct {
	disabled bool
	reason   string
	flags    []string
}

// NewRedFlags creates a filter that removes postings mentioning any configured red flag term
// in their title, company or description.
func NewRedFlags() Filter {
	return &redFlagsFilter{}
}

func (f *redFlagsFilter) Name() string { return "red_flags" }

func (f *redFlagsFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *redFlagsFilter) IsEnabled() bool { return !f.disabled }

func (f *redFlagsFilter) Validate(cfg *Config) error {
	f.flags = nil
	if cfg == nil {
		return nil
	}
	for _, flag := range cfg.RedFlags {
		if flag = strings.ToLower(strings.TrimSpace(flag)); flag != "" {
			f.flags = append(f.flags, flag)
		}
	}
	return nil
}

func (f *redFlagsFilter) Apply(_ context.Context, deps Deps, postings []jobs.Posting) ([]jobs.Posting, Step, error) {
	initial := len(postings)
	if len(f.flags) == 0 {
		return postings, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	left, excluded := keep(postings, func(p jobs.Posting) bool {
		return ContainsRedFlag(p.Title, p.Company, p.Description, f.flags)
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings with red flags",
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", len(left)),
		)
	}

	return left, Step{Initial: initial, Dropped: len(excluded), Left: len(left)}, nil
}

func (f *redFlagsFilter) Status() Status {
	details := map[string]string{"terms": strconv.Itoa(len(f.flags))}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

// ContainsRedFlag reports whether any term appears (case-insensitive) in the
// combined title, company and description.
func ContainsRedFlag(title, company, description string, redFlags []string) bool {
	if len(redFlags) == 0 {
		return false
	}
	combined := strings.ToLower(title + " " + company + " " + description)
	for _, flag := range redFlags {
		if flag == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(flag)) {
			return true
		}
	}
	return false
}

type remoteOnlyFilter struct {
	disabled   bool
	reason     string
	remoteOnly bool
}

// NewRemoteOnly creates a filter that removes postings not detected as remote when
// remote-only is configured.
func NewRemoteOnly() Filter {
	return &remoteOnlyFilter{}
}

func (f *remoteOnlyFilter) Name() string { return "remote_only" }

func (f *remoteOnlyFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *remoteOnlyFilter) IsEnabled() bool { return !f.disabled }

func (f *remoteOnlyFilter) Validate(cfg *Config) error {
	f.remoteOnly = cfg != nil && cfg.RemoteOnly
	return nil
}

func (f *remoteOnlyFilter) Apply(_ context.Context, deps Deps, postings []jobs.Posting) ([]jobs.Posting, Step, error) {
	initial := len(postings)
	if !f.remoteOnly {
		return postings, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	left, excluded := keep(postings, func(p jobs.Posting) bool { return !p.Remote })
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding on-site postings",
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", len(left)),
		)
	}

	return left, Step{Initial: initial, Dropped: len(excluded), Left: len(left)}, nil
}

func (f *remoteOnlyFilter) Status() Status {
	details := map[string]string{"remote_only": strconv.FormatBool(f.remoteOnly)}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

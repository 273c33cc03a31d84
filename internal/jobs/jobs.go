// Package jobs holds the domain model shared by adapters, storage, scoring and tracking.
package jobs

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Status values of a tracked job.
type Status string

const (
	StatusNew       Status = "new"
	StatusReviewed  Status = "reviewed"
	StatusApplied   Status = "applied"
	StatusRejected  Status = "rejected"
	StatusInterview Status = "interview"
	StatusArchived  Status = "archived"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusNew, StatusReviewed, StatusApplied, StatusRejected, StatusInterview, StatusArchived,
}

// Priority of a tracked job.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// ErrNotFound is returned when no job (or watched company) matches the identifier.
var ErrNotFound = errors.New("job not found")

// ValidationError wraps a user-facing argument error.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Posting is the canonical record produced by a source adapter before storage.
type Posting struct {
	ID           string `json:"job_id"`
	Company      string `json:"company"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	TechStack    string `json:"tech_stack"`
	Location     string `json:"location"`
	Remote       bool   `json:"remote"`
}

// Job is a stored posting together with its tracking state.
type Job struct {
	ID             string    `json:"job_id"`
	Company        string    `json:"company"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Description    string    `json:"description"`
	Requirements   string    `json:"requirements"`
	TechStack      string    `json:"tech_stack"`
	Location       string    `json:"location"`
	Remote         bool      `json:"remote"`
	AlignmentScore *int      `json:"alignment_score"`
	Status         Status    `json:"status"`
	Priority       Priority  `json:"priority"`
	Notes          *string   `json:"notes"`
	FoundDate      time.Time `json:"found_date"`
	LastUpdated    time.Time `json:"last_updated"`
}

// CompanyWatch is a monitored employer.
type CompanyWatch struct {
	Name        string     `json:"company"`
	CareersURL  string     `json:"careers_url"`
	Vendor      string     `json:"vendor,omitempty"`
	Board       string     `json:"board,omitempty"`
	LastChecked *time.Time `json:"last_checked"`
	Active      bool       `json:"active"`
}

// Filters narrows a job query. Zero values mean "no constraint".
type Filters struct {
	Status   Status
	Company  string
	Priority Priority
	MinScore int
}

var idRe = regexp.MustCompile(`[^a-z0-9]+`)

// DeriveID computes the de-duplication key for a (company, title) pair.
func DeriveID(company, title string) string {
	return idRe.ReplaceAllString(strings.ToLower(company+"-"+title), "-")
}

// NormalizeCompany is the lookup key used by the adapter registry.
func NormalizeCompany(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "")
}

// ParseStatus converts a raw string to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", &ValidationError{Msg: fmt.Sprintf("unknown job status %q", s)}
}

// ParsePriority converts a raw string to a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Priorities {
		if p == known {
			return p, nil
		}
	}
	return "", &ValidationError{Msg: fmt.Sprintf("unknown job priority %q", s)}
}

// NewJob attaches the initial tracking state to a freshly discovered posting.
func NewJob(p Posting, now time.Time) Job {
	id := p.ID
	if id == "" {
		id = DeriveID(p.Company, p.Title)
	}
	return Job{
		ID:           id,
		Company:      p.Company,
		Title:        p.Title,
		URL:          p.URL,
		Description:  p.Description,
		Requirements: p.Requirements,
		TechStack:    p.TechStack,
		Location:     p.Location,
		Remote:       p.Remote,
		Status:       StatusNew,
		Priority:     PriorityMedium,
		FoundDate:    now,
		LastUpdated:  now,
	}
}

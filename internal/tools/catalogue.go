// Package tools exposes job research operations as named tools with declared
// input schemas, shared by the CLI and the HTTP facade.
package tools

import (
	"github.com/spigell/job-research/internal/ai"
	"github.com/spigell/job-research/internal/ats"
	"github.com/spigell/job-research/internal/jobs"
)

// Tool names.
const (
	SearchJobs        = "search_ai_jobs"
	GetJobs           = "get_jobs"
	GetJobDetails     = "get_job_details"
	AnalyzeJobFit     = "analyze_job_fit"
	BatchAnalyzeJobs  = "batch_analyze_jobs"
	UpdateJobStatus   = "update_job_status"
	MarkJobApplied    = "mark_job_applied"
	MarkJobReviewed   = "mark_job_reviewed"
	ArchiveJob        = "archive_job"
	ApplicationStats  = "get_application_stats"
	JobsNeedAttention = "get_jobs_needing_attention"
	WatchedCompanies  = "get_watched_companies"
	WatchCompany      = "watch_company"
	InvokeAgent       = "invoke_agent"
)

const (
	objectType         = "object"
	jobIDPropertyName  = "job_id"
	cvPathPropertyName = "cv_path"
	jobIDDescription   = "Job ID"
	cvPathDescription  = "Optional: Path to CV file"
	notesDescription   = "Optional notes"
)

// Tool describes one callable operation.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"inputSchema"`
}

type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

func stringProp(description string) Property {
	return Property{Type: "string", Description: description}
}

func enumProp(description string, values []string) Property {
	return Property{Type: "string", Description: description, Enum: values}
}

func stringArrayProp(description string) Property {
	return Property{Type: "array", Description: description, Items: &Property{Type: "string"}}
}

func statusValues() []string {
	values := make([]string, 0, len(jobs.Statuses))
	for _, s := range jobs.Statuses {
		values = append(values, string(s))
	}
	return values
}

func priorityValues() []string {
	values := make([]string, 0, len(jobs.Priorities))
	for _, p := range jobs.Priorities {
		values = append(values, string(p))
	}
	return values
}

// Catalogue returns every tool in display order.
func Catalogue() []Tool {
	return []Tool{
		{
			Name:        SearchJobs,
			Description: "Search for new AI/design system jobs from watched companies. Returns newly found jobs.",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{
				"companies": stringArrayProp(`Optional: Filter by specific companies (e.g., ["Anthropic", "Vercel"])`),
			}},
		},
		{
			Name:        GetJobs,
			Description: "Get jobs from database with optional filters",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{
				"status":       enumProp("Filter by application status", statusValues()),
				"priority":     enumProp("Filter by priority level", priorityValues()),
				"company":      stringProp("Filter by company name"),
				"minAlignment": {Type: "number", Description: "Minimum alignment score (0-100)"},
			}},
		},
		{
			Name:        GetJobDetails,
			Description: "Get full details for a specific job",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{
				jobIDPropertyName: stringProp("Job ID to retrieve"),
			}, Required: []string{jobIDPropertyName}},
		},
		{
			Name:        AnalyzeJobFit,
			Description: "Analyze how well a job matches your CV. Returns alignment score, strong matches, and gaps.",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{
				jobIDPropertyName:  stringProp("Job ID to analyze"),
				cvPathPropertyName: stringProp("Optional: Path to CV file for detailed analysis"),
			}, Required: []string{jobIDPropertyName}},
		},
		{
			Name:        BatchAnalyzeJobs,
			Description: "Analyze multiple jobs at once",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{
				"job_ids":          stringArrayProp("Array of job IDs to analyze"),
				cvPathPropertyName: stringProp(cvPathDescription),
			}, Required: []string{"job_ids"}},
		},
		{
			Name:        UpdateJobStatus,
			Description: "Set the application status of a job",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{
				jobIDPropertyName: stringProp(jobIDDescription),
				"status":          enumProp("New application status", statusValues()),
				"notes":           stringProp(notesDescription),
			}, Required: []string{jobIDPropertyName, "status"}},
		},
		{
			Name:        MarkJobApplied,
			Description: "Mark a job as applied with optional notes",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{
				jobIDPropertyName: stringProp(jobIDDescription),
				"notes":           stringProp("Optional notes about the application"),
			}, Required: []string{jobIDPropertyName}},
		},
		{
			Name:        MarkJobReviewed,
			Description: "Mark a job as reviewed",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{
				jobIDPropertyName: stringProp(jobIDDescription),
				"priority":        enumProp("Set priority level", priorityValues()),
				"notes":           stringProp("Optional review notes"),
			}, Required: []string{jobIDPropertyName}},
		},
		{
			Name:        ArchiveJob,
			Description: "Archive a job (no longer interested)",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{
				jobIDPropertyName: stringProp(jobIDDescription),
				"reason":          stringProp("Optional reason for archiving"),
			}, Required: []string{jobIDPropertyName}},
		},
		{
			Name:        ApplicationStats,
			Description: "Get statistics about job applications (total, by status, by company, etc)",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{}},
		},
		{
			Name:        JobsNeedAttention,
			Description: "Get jobs that need attention: new jobs, high-priority not applied, and upcoming interviews",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{}},
		},
		{
			Name:        WatchedCompanies,
			Description: "List the companies on the watch list",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{
				"active_only": {Type: "boolean", Description: "Only return companies that are actively scraped"},
			}},
		},
		{
			Name:        WatchCompany,
			Description: "Add or update a company on the watch list",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{
				"company":     stringProp("Company name"),
				"careers_url": stringProp("Public careers page"),
				"vendor":      enumProp("Job board vendor used to fetch postings", ats.Vendors),
				"board":       stringProp("Board token on the vendor (feed URL for rss)"),
				"active":      {Type: "boolean", Description: "Include the company in scheduled searches (default true)"},
			}, Required: []string{"company", "careers_url"}},
		},
		{
			Name:        InvokeAgent,
			Description: "Run an AI agent on a job or on your CV",
			InputSchema: Schema{Type: objectType, Properties: map[string]Property{
				"agent_type":       enumProp("Agent to run", ai.AgentTypes),
				"prompt":           stringProp("Instructions for the agent"),
				jobIDPropertyName:  stringProp("Optional: Job ID to give the agent as context"),
				cvPathPropertyName: stringProp(cvPathDescription),
			}, Required: []string{"agent_type", "prompt"}},
		},
	}
}

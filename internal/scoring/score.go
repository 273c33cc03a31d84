// Package scoring rates how well a job matches a candidate profile.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/job-research/internal/jobs"
)

// Tier is the recommendation bucket of a score.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Result is the outcome of scoring one job.
type Result struct {
	JobID          string   `json:"job_id"`
	Company        string   `json:"company"`
	Title          string   `json:"title"`
	Score          int      `json:"alignment_score"`
	StrongMatches  []string `json:"strong_matches"`
	Gaps           []string `json:"gaps"`
	Recommendation Tier     `json:"recommendation"`
	Reasoning      string   `json:"reasoning"`
}

// Score computes the alignment of job against the profile text. It has no
// side effects and the same inputs always give the same result.
func Score(t Table, job jobs.Job, profile string) Result {
	haystack := strings.ToLower(job.Title + " " + job.Description + " " + job.Requirements)
	cv := strings.ToLower(profile)

	matches := make([]string, 0)
	gaps := make([]string, 0)
	raw := 0

	for _, k := range t.keywords {
		if !strings.Contains(haystack, k.Term) {
			continue
		}
		if strings.Contains(cv, k.Term) || strings.Contains(cv, removeSpaces(k.Term)) {
			raw += k.Weight
			matches = append(matches, k.Term)
		} else {
			gaps = append(gaps, k.Term)
		}
	}

	stack := strings.ToLower(job.TechStack)
	for _, tech := range t.techTerms {
		if strings.Contains(stack, tech) && strings.Contains(cv, tech) {
			raw += t.techBonus
		}
	}

	score := normalize(raw, t.MaxScore())
	tier, reasoning := recommend(score)

	return Result{
		JobID:          job.ID,
		Company:        job.Company,
		Title:          job.Title,
		Score:          score,
		StrongMatches:  limit(matches, t.maxMatches),
		Gaps:           limit(gaps, t.maxGaps),
		Recommendation: tier,
		Reasoning:      reasoning,
	}
}

func normalize(raw, maxScore int) int {
	if maxScore <= 0 || raw <= 0 {
		return 0
	}
	score := int(math.Round(100 * float64(raw) / float64(maxScore)))
	if score > 100 {
		return 100
	}
	return score
}

func recommend(score int) (Tier, string) {
	switch {
	case score >= 70:
		return TierHigh, fmt.Sprintf("Strong alignment (%d%%). Your experience closely matches requirements.", score)
	case score >= 50:
		return TierMedium, fmt.Sprintf("Good alignment (%d%%) with some gaps. Consider emphasizing transferable skills.", score)
	default:
		return TierLow, fmt.Sprintf("Limited alignment (%d%%). Significant gaps in key requirements.", score)
	}
}

func removeSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func limit(items []string, n int) []string {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

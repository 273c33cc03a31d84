package ats

import (
	"regexp"
	"strings"
)

const requirementsLimit = 500

var (
	relevantRoleKeywords = []string{
		"design system",
		"developer experience",
		"design ops",
		"design engineer",
		"product designer",
		"staff designer",
		"senior designer",
		"principal designer",
		"ai",
		"platform",
		"tooling",
		"infrastructure",
		"technical program",
	}

	techKeywords = []string{
		"React", "TypeScript", "JavaScript", "Node.js", "Python", "Figma",
		"Storybook", "Design Tokens", "CSS", "HTML", "GraphQL", "REST",
		"Docker", "Kubernetes", "AWS", "GCP", "Azure", "MongoDB", "PostgreSQL",
		"Git", "CI/CD", "TDD", "Agile", "Scrum",
	}

	remoteKeywords = []string{"remote", "work from home", "distributed", "anywhere"}

	tagRe          = regexp.MustCompile(`<[^>]*>`)
	spaceRe        = regexp.MustCompile(`\s+`)
	requirementsRe = regexp.MustCompile(`(?is)requirements?:?(.*?)(?:responsibilities|qualifications|about|$)`)
)

// IsRelevantRole reports whether the title contains one of the role keywords.
func IsRelevantRole(title string) bool {
	return containsAny(strings.ToLower(title), relevantRoleKeywords)
}

// ExtractTechStack returns the known technology terms found in text, comma joined,
// in vocabulary order.
func ExtractTechStack(text string) string {
	lower := strings.ToLower(text)
	found := make([]string, 0, len(techKeywords))
	for _, tech := range techKeywords {
		if strings.Contains(lower, strings.ToLower(tech)) {
			found = append(found, tech)
		}
	}
	return strings.Join(found, ", ")
}

// IsRemote reports whether text mentions remote work.
func IsRemote(text string) bool {
	return containsAny(strings.ToLower(text), remoteKeywords)
}

// StripHTML removes tags and collapses whitespace. Entities are left as is.
func StripHTML(html string) string {
	text := tagRe.ReplaceAllString(html, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// ExtractRequirements returns the text following a "requirements" marker up to
// the next section marker, or the beginning of text when there is no marker.
func ExtractRequirements(text string) string {
	if m := requirementsRe.FindStringSubmatch(text); m != nil {
		return truncateRunes(strings.TrimSpace(m[1]), requirementsLimit)
	}
	return truncateRunes(text, requirementsLimit)
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

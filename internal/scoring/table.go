package scoring

import (
	"fmt"
	"strings"
)

// Keyword is a weighted term looked up in the job text.
type Keyword struct {
	Term   string `mapstructure:"term" json:"term"`
	Weight int    `mapstructure:"weight" json:"weight"`
}

// Table is the immutable scoring configuration. Build it with NewTable or DefaultTable.
type Table struct {
	keywords   []Keyword
	techTerms  []string
	techBonus  int
	maxMatches int
	maxGaps    int
}

const (
	defaultTechBonus  = 5
	defaultMaxMatches = 10
	defaultMaxGaps    = 5
)

var defaultKeywords = []Keyword{
	{Term: "design system", Weight: 20},
	{Term: "enterprise scale", Weight: 15},
	{Term: "cross-functional", Weight: 10},
	{Term: "governance", Weight: 10},
	{Term: "accessibility", Weight: 10},
	{Term: "wcag", Weight: 10},
	{Term: "figma", Weight: 8},
	{Term: "react", Weight: 8},
	{Term: "typescript", Weight: 8},
	{Term: "storybook", Weight: 8},
	{Term: "design tokens", Weight: 12},
	{Term: "ai", Weight: 15},
	{Term: "llm", Weight: 12},
	{Term: "claude", Weight: 10},
	{Term: "developer experience", Weight: 15},
	{Term: "platform", Weight: 10},
	{Term: "technical leadership", Weight: 15},
}

var defaultTechTerms = []string{
	"react", "typescript", "javascript", "figma", "css", "html",
	"storybook", "git", "node", "python",
}

// DefaultTable returns the stock weights (maximum 196) with a flat bonus of 5
// per shared technology term.
func DefaultTable() Table {
	t, err := NewTable(defaultKeywords, defaultTechTerms, defaultTechBonus)
	if err != nil {
		panic(err)
	}
	return t
}

// NewTable validates and copies the given configuration. Keyword order is kept
// and determines the order of matches and gaps in results.
func NewTable(keywords []Keyword, techTerms []string, techBonus int) (Table, error) {
	if len(keywords) == 0 {
		return Table{}, fmt.Errorf("scoring table needs at least one keyword")
	}
	if techBonus < 0 {
		return Table{}, fmt.Errorf("tech bonus must not be negative: %d", techBonus)
	}

	seen := make(map[string]bool, len(keywords))
	kw := make([]Keyword, 0, len(keywords))
	for _, k := range keywords {
		term := strings.ToLower(strings.TrimSpace(k.Term))
		if term == "" {
			return Table{}, fmt.Errorf("keyword with empty term")
		}
		if k.Weight <= 0 {
			return Table{}, fmt.Errorf("keyword %q: weight must be positive, got %d", term, k.Weight)
		}
		if seen[term] {
			return Table{}, fmt.Errorf("duplicate keyword %q", term)
		}
		seen[term] = true
		kw = append(kw, Keyword{Term: term, Weight: k.Weight})
	}

	tech := make([]string, 0, len(techTerms))
	for _, term := range techTerms {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			tech = append(tech, term)
		}
	}

	return Table{
		keywords:   kw,
		techTerms:  tech,
		techBonus:  techBonus,
		maxMatches: defaultMaxMatches,
		maxGaps:    defaultMaxGaps,
	}, nil
}

// WithWeights returns a copy of t where the weights of the named keywords are
// replaced. Unknown keywords are appended in the given order.
func (t Table) WithWeights(overrides []Keyword) (Table, error) {
	keywords := t.Keywords()
	index := make(map[string]int, len(keywords))
	for i, k := range keywords {
		index[k.Term] = i
	}

	for _, o := range overrides {
		term := strings.ToLower(strings.TrimSpace(o.Term))
		if i, ok := index[term]; ok {
			keywords[i].Weight = o.Weight
			continue
		}
		index[term] = len(keywords)
		keywords = append(keywords, Keyword{Term: term, Weight: o.Weight})
	}

	return NewTable(keywords, t.techTerms, t.techBonus)
}

// Keywords returns a copy of the weighted keywords.
func (t Table) Keywords() []Keyword {
	return append([]Keyword(nil), t.keywords...)
}

// MaxScore is the sum of all keyword weights.
func (t Table) MaxScore() int {
	total := 0
	for _, k := range t.keywords {
		total += k.Weight
	}
	return total
}

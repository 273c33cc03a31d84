// Package report exports the tracked jobs as a DOCX document.
package report

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gingfrederik/docx"
	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/jobs"
	"github.com/spigell/job-research/internal/tracking"
)

const (
	titleSize   = 20
	headingSize = 16
	jobSize     = 13
	metaSize    = 10
	metaColor   = "808080"
	linkColor   = "0000FF"
	separator   = "--------------------------------------------------"
	notScored   = "not scored"
)

// Source provides the data of a report.
type Source interface {
	Stats(ctx context.Context) (tracking.Stats, error)
	List(ctx context.Context, f jobs.Filters) ([]jobs.Job, error)
}

type Exporter struct {
	source Source
	logger *zap.Logger
	now    func() time.Time
}

func New(source Source, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{source: source, logger: logger, now: time.Now}
}

// Export writes the statistics and the jobs matching f to path and returns
// the number of jobs written.
func (e *Exporter) Export(ctx context.Context, path string, f jobs.Filters) (int, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, errors.New("report path is required")
	}

	stats, err := e.source.Stats(ctx)
	if err != nil {
		return 0, fmt.Errorf("load stats: %w", err)
	}
	list, err := e.source.List(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("load jobs: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create report dir: %w", err)
		}
	}

	file := build(stats, list, e.now())
	if err := file.Save(path); err != nil {
		return 0, fmt.Errorf("save report: %w", err)
	}

	e.logger.Info("report exported", zap.String("path", path), zap.Int("jobs", len(list)))
	return len(list), nil
}

func build(stats tracking.Stats, list []jobs.Job, generated time.Time) *docx.File {
	f := docx.NewFile()

	addText(f, "Job Research Report", titleSize, "")
	addText(f, "Generated: "+generated.Format("2006-01-02 15:04"), metaSize, metaColor)
	f.AddParagraph()

	addText(f, "Summary", headingSize, "")
	f.AddParagraph().AddText(fmt.Sprintf("Total jobs: %d", stats.Total))
	f.AddParagraph().AddText(fmt.Sprintf("Average alignment: %d", stats.AverageAlignment))
	addCounts(f, "By status", stats.ByStatus)
	addCounts(f, "By priority", stats.ByPriority)
	addCounts(f, "By company", stats.ByCompany)
	f.AddParagraph()

	addText(f, fmt.Sprintf("Jobs (%d)", len(list)), headingSize, "")
	for _, job := range list {
		addText(f, fmt.Sprintf("%s at %s", job.Title, job.Company), jobSize, "")

		score := notScored
		if job.AlignmentScore != nil {
			score = fmt.Sprintf("%d", *job.AlignmentScore)
		}
		meta := fmt.Sprintf("Status: %s | Priority: %s | Alignment: %s | Location: %s | Found: %s",
			job.Status, job.Priority, score, job.Location, job.FoundDate.Format("2006-01-02"))
		addText(f, meta, metaSize, metaColor)

		if job.URL != "" {
			addText(f, job.URL, metaSize, linkColor)
		}
		if job.TechStack != "" {
			f.AddParagraph().AddText("Tech stack: " + job.TechStack)
		}
		if job.Notes != nil && strings.TrimSpace(*job.Notes) != "" {
			f.AddParagraph().AddText("Notes: " + strings.TrimSpace(*job.Notes))
		}
		f.AddParagraph().AddText(separator)
	}

	return f
}

func addText(f *docx.File, text string, size int, color string) {
	run := f.AddParagraph().AddText(text)
	if size > 0 {
		run.Size(size)
	}
	if color != "" {
		run.Color(color)
	}
}

func addCounts(f *docx.File, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	f.AddParagraph().AddText(title + ":")
	for _, key := range slices.Sorted(maps.Keys(counts)) {
		f.AddParagraph().AddText(fmt.Sprintf("- %s: %d", key, counts[key]))
	}
}

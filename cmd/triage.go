package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/jobs"
	"github.com/spigell/job-research/internal/tools"
	"github.com/spigell/job-research/internal/tracking"
)

const (
	PromptBack          = "back"
	PromptExit          = "Exit"
	PromptStats         = "Show statistics"
	PromptDetails       = "Show details"
	PromptAnalyze       = "Analyze fit"
	PromptReviewHigh    = "Mark reviewed, high priority"
	PromptReviewMedium  = "Mark reviewed, medium priority"
	PromptReviewLow     = "Mark reviewed, low priority"
	PromptApplied       = "Mark applied"
	PromptInterview     = "Move to interview"
	PromptArchive       = "Archive"
	bucketNew           = "New jobs"
	bucketHighPriority  = "High priority, not applied"
	bucketInterviews    = "Interviews"
	unscoredLabel       = "--"
	maxTitleLabelLength = 60
)

var errExit = errors.New("exit requested")

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Walk through the jobs that need attention interactively",
	Run: func(_ *cobra.Command, _ []string) {
		triage()
	},
}

func init() {
	rootCmd.AddCommand(triageCmd)
}

func triage() {
	ctx := context.Background()

	a := newApplication(ctx)
	defer a.Close()

	for {
		attention, err := a.tracker.Attention(ctx)
		if err != nil {
			a.logger.Fatal("loading jobs needing attention", zap.Error(err))
		}

		a.logger.Debug("jobs needing attention", zap.Int("total", attentionTotal(attention)))

		buckets := map[string][]jobs.Job{
			bucketNew:          attention.NewJobs,
			bucketHighPriority: attention.HighPriorityNotApplied,
			bucketInterviews:   attention.Interviews,
		}

		items := []string{
			bucketLabel(bucketNew, attention.NewJobs),
			bucketLabel(bucketHighPriority, attention.HighPriorityNotApplied),
			bucketLabel(bucketInterviews, attention.Interviews),
			PromptStats,
			PromptExit,
		}

		prompt := promptui.Select{Label: "What do you want to look at?", Items: items}
		idx, selected, err := prompt.Run()
		if err != nil {
			a.logger.Info("exiting", zap.Error(err))
			return
		}

		switch selected {
		case PromptExit:
			a.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
			return
		case PromptStats:
			if err := a.printTool(ctx, tools.ApplicationStats, nil); err != nil {
				a.logger.Error("loading statistics", zap.Error(err))
			}
			continue
		}

		name := []string{bucketNew, bucketHighPriority, bucketInterviews}[idx]
		if err := a.triageBucket(ctx, buckets[name]); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			a.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func bucketLabel(name string, list []jobs.Job) string {
	return fmt.Sprintf("%s (%d)", name, len(list))
}

func jobLabel(j jobs.Job) string {
	score := unscoredLabel
	if j.AlignmentScore != nil {
		score = fmt.Sprintf("%d", *j.AlignmentScore)
	}
	title := j.Title
	if runes := []rune(title); len(runes) > maxTitleLabelLength {
		title = string(runes[:maxTitleLabelLength]) + "..."
	}
	return fmt.Sprintf("%s %s / %s / %s / %s", j.ID, title, j.Company, j.Priority, score)
}

func (a *application) triageBucket(ctx context.Context, list []jobs.Job) error {
	for {
		if len(list) == 0 {
			a.logger.Info("nothing to triage here")
			return nil
		}

		items := make([]string, 0, len(list)+1)
		for _, j := range list {
			items = append(items, jobLabel(j))
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
			Size:  15,
		}

		_, selected, err := jobPrompt.Run()
		if err != nil {
			return errExit
		}
		if selected == PromptBack {
			return nil
		}

		id := strings.Split(selected, " ")[0]
		done, err := a.triageJob(ctx, id)
		if err != nil {
			return err
		}
		if done {
			list = removeJob(list, id)
		}
	}
}

// triageJob runs one action on the job. It reports whether the job left the bucket.
func (a *application) triageJob(ctx context.Context, id string) (bool, error) {
	actionPrompt := promptui.Select{
		Label: "Action for " + id,
		Items: []string{
			PromptDetails, PromptAnalyze,
			PromptReviewHigh, PromptReviewMedium, PromptReviewLow,
			PromptApplied, PromptInterview, PromptArchive, PromptBack,
		},
	}

	_, action, err := actionPrompt.Run()
	if err != nil {
		return false, errExit
	}

	args := map[string]any{"job_id": id}
	switch action {
	case PromptBack:
		return false, nil
	case PromptDetails:
		return false, a.printTool(ctx, tools.GetJobDetails, args)
	case PromptAnalyze:
		return false, a.printTool(ctx, tools.AnalyzeJobFit, args)
	case PromptReviewHigh, PromptReviewMedium, PromptReviewLow:
		args["priority"] = strings.TrimSuffix(strings.TrimPrefix(action, "Mark reviewed, "), " priority")
		return true, a.runTool(ctx, tools.MarkJobReviewed, args)
	case PromptApplied:
		if notes := askOptional("Notes"); notes != "" {
			args["notes"] = notes
		}
		return true, a.runTool(ctx, tools.MarkJobApplied, args)
	case PromptInterview:
		args["status"] = string(jobs.StatusInterview)
		return true, a.runTool(ctx, tools.UpdateJobStatus, args)
	case PromptArchive:
		if reason := askOptional("Reason"); reason != "" {
			args["reason"] = reason
		}
		return true, a.runTool(ctx, tools.ArchiveJob, args)
	default:
		return false, fmt.Errorf("invalid action: %s", action)
	}
}

func (a *application) runTool(ctx context.Context, name string, args map[string]any) error {
	result, err := a.dispatcher.Call(ctx, name, args)
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprint(result), zap.String("tool", name))
	return nil
}

func (a *application) printTool(ctx context.Context, name string, args map[string]any) error {
	result, err := a.dispatcher.Call(ctx, name, args)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, result)
}

func askOptional(label string) string {
	prompt := promptui.Prompt{Label: label + " (optional)"}
	value, err := prompt.Run()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

func removeJob(list []jobs.Job, id string) []jobs.Job {
	result := make([]jobs.Job, 0, len(list))
	for _, j := range list {
		if j.ID != id {
			result = append(result, j)
		}
	}
	return result
}

func attentionTotal(a tracking.Attention) int {
	return len(a.NewJobs) + len(a.HighPriorityNotApplied) + len(a.Interviews)
}

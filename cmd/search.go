package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/filtering"
)

var searchCmd = &cobra.Command{
	Use:   "search [company...]",
	Short: "Fetch new postings from the watched companies",
	Long:  "Fetch new postings from every active watched company, or only from the named ones, and print the jobs that were not known yet.",
	Run: func(cmd *cobra.Command, args []string) {
		search(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolP("analyze", "a", false, "score the new jobs against the configured profile")
	searchCmd.Flags().StringSlice("skip-filter", nil, "filters to skip for this run (red_flags, remote_only)")
}

func search(cmd *cobra.Command, companies []string) {
	ctx := context.Background()

	a := newApplication(ctx)
	defer a.Close()

	skipped, _ := cmd.Flags().GetStringSlice("skip-filter")
	for _, name := range skipped {
		filtering.DisableByName(a.filters, name, "skipped with --skip-filter")
	}

	found, err := a.ingester.Search(ctx, companies)
	if err != nil {
		a.logger.Fatal("searching jobs", zap.Error(err))
	}

	a.logger.Info("search complete", zap.Int("new_jobs", len(found)))

	var result any = found
	if analyze, _ := cmd.Flags().GetBool("analyze"); analyze && len(found) > 0 {
		ids := make([]string, 0, len(found))
		for _, j := range found {
			ids = append(ids, j.ID)
		}
		result = a.analyzer.AnalyzeBatch(ctx, ids, a.profiles.Load(""))
	}

	if err := printJSON(os.Stdout, result); err != nil {
		a.logger.Fatal("printing result", zap.Error(err))
	}
}

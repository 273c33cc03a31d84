package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/jobs"
)

const defaultReportPath = "job-research-report.docx"

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export the tracked jobs to a DOCX report",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		export(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("status", "s", "", "only jobs with this status")
	exportCmd.Flags().StringP("priority", "p", "", "only jobs with this priority")
	exportCmd.Flags().StringP("company", "c", "", "only jobs of this company")
	exportCmd.Flags().IntP("min-score", "m", 0, "only jobs with at least this alignment score")
}

func export(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	a := newApplication(ctx)
	defer a.Close()

	filters, err := exportFilters(cmd)
	if err != nil {
		a.logger.Fatal("invalid filter", zap.Error(err))
	}

	path := defaultReportPath
	if len(args) == 1 {
		path = args[0]
	}

	count, err := a.exporter.Export(ctx, path, filters)
	if err != nil {
		a.logger.Fatal("exporting report", zap.Error(err))
	}

	a.logger.Info("report written", zap.String("path", path), zap.Int("jobs", count))
}

func exportFilters(cmd *cobra.Command) (jobs.Filters, error) {
	var f jobs.Filters

	if s, _ := cmd.Flags().GetString("status"); s != "" {
		status, err := jobs.ParseStatus(s)
		if err != nil {
			return f, err
		}
		f.Status = status
	}
	if p, _ := cmd.Flags().GetString("priority"); p != "" {
		priority, err := jobs.ParsePriority(p)
		if err != nil {
			return f, err
		}
		f.Priority = priority
	}
	f.Company, _ = cmd.Flags().GetString("company")
	f.MinScore, _ = cmd.Flags().GetInt("min-score")

	return f, nil
}

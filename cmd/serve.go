package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-research/internal/api"
	"github.com/spigell/job-research/internal/scheduler"
	"github.com/spigell/job-research/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tools over HTTP for the browser UI",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default is :3001)")
	serveCmd.Flags().Bool("schedule", false, "run the periodic search sweep")

	viper.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("schedule.enabled", serveCmd.Flags().Lookup("schedule"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApplication(ctx)
	defer a.Close()

	a.logger.Info("starting the job-research api", zap.String("version", version))

	if a.config.Schedule.Enabled {
		s, err := scheduler.New(a.ingester, a.config.Schedule.Interval, a.config.Schedule.RunOnStart, a.logger)
		if err != nil {
			a.logger.Error("configuring the scheduler", zap.Error(err))
			return
		}
		if err := s.Start(ctx); err != nil {
			a.logger.Error("starting the scheduler", zap.Error(err))
			return
		}
		defer func() { <-s.Stop().Done() }()
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := api.NewServer(a.dispatcher, tools.Catalogue(), a.logger.Named("api"))
	if err := srv.Run(ctx, a.config.HTTP.Addr); err != nil {
		a.logger.Error("http api stopped", zap.Error(err))
	}
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"economist-podcast/internal/chapters"
	"economist-podcast/internal/config"
	"economist-podcast/internal/publish"
	"economist-podcast/internal/splitter"
	"economist-podcast/internal/workflow"
)

func newRunCommand(configFlag *string) *cobra.Command {
	var noPublish bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process dropped audio, rebuild the feed and push once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := newLogger()
			runner := newRunner(cfg, noPublish)
			results := runner.Run(ctx)

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(results))
			logger.Printf("feed URL: %s", cfg.FeedURL())
			return nil
		},
	}

	cmd.Flags().BoolVar(&noPublish, "no-publish", false, "Skip the git stage/commit/push step")

	return cmd
}

func newRunner(cfg config.Config, noPublish bool) *workflow.Runner {
	logger := newLogger()

	var publisher workflow.Publisher
	if !noPublish {
		publisher = publish.NewGateway(cfg.BaseDir, logger)
	}

	return workflow.NewRunner(
		cfg,
		chapters.ID3Reader{},
		splitter.FFmpeg{Binary: cfg.FFmpeg},
		publisher,
		logger,
	)
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"economist-podcast/internal/watch"
)

func newWatchCommand(configFlag *string) *cobra.Command {
	var noPublish bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the drop directory and run on every new MP3",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := newLogger()
			runner := newRunner(cfg, noPublish)

			// Capacity one: triggers landing mid-run coalesce into a single
			// follow-up run, keeping runs strictly sequential.
			runs := make(chan struct{}, 1)
			trigger := func() {
				select {
				case runs <- struct{}{}:
				default:
				}
			}

			watcher, err := watch.New(cfg.BaseDir, cfg.Debounce, trigger, logger)
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer func() {
				if err := watcher.Close(); err != nil {
					logger.Printf("error closing watcher: %v", err)
				}
			}()

			logger.Printf("watching %s for new MP3 files", cfg.BaseDir)
			trigger() // pick up anything already dropped

			for {
				select {
				case <-ctx.Done():
					logger.Println("shutdown complete")
					return nil
				case <-runs:
					results := runner.Run(ctx)
					fmt.Fprintln(cmd.OutOrStdout(), renderSummary(results))
				}
			}
		},
	}

	cmd.Flags().BoolVar(&noPublish, "no-publish", false, "Skip the git stage/commit/push step")

	return cmd
}

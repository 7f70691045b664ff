package main

import (
	"time"

	"github.com/spf13/cobra"

	"economist-podcast/internal/feed"
)

func newFeedCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "Rebuild feed.xml from the current tree without processing or publishing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}

			logger := newLogger()
			builder := feed.NewBuilder(cfg.BaseDir, cfg.SiteURL(), feed.Metadata{
				Title:       cfg.Feed.Title,
				Description: cfg.Feed.Description,
				Language:    cfg.Feed.Language,
				Author:      cfg.Feed.Author,
				Explicit:    cfg.Feed.Explicit,
			}, logger)

			items, err := builder.Write(time.Now())
			if err != nil {
				return err
			}

			logger.Printf("feed rebuilt with %d item(s): %s", items, cfg.FeedURL())
			return nil
		},
	}
}

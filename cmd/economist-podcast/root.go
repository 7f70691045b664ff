package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"economist-podcast/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "economist-podcast",
		Short:         "Split chaptered Economist audio into a podcast feed",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(&configFlag))
	rootCmd.AddCommand(newWatchCommand(&configFlag))
	rootCmd.AddCommand(newFeedCommand(&configFlag))

	return rootCmd
}

func newLogger() *log.Logger {
	return log.New(os.Stdout, "economist-podcast ", log.LstdFlags|log.Lmsgprefix)
}

func loadConfig(configFlag *string) (config.Config, error) {
	path := ""
	if configFlag != nil {
		path = *configFlag
	}
	return config.Load(path)
}

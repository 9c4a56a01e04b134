package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// createRootCommand создает корневую команду с настроенными подкомандами.
// Без подкоманды запускается TUI
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "playlist",
		Short:         "A single-user playlist manager",
		Long:          `Manage an ordered playlist of audio tracks: add, remove, navigate and play them from the terminal or over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI()
		},
	}

	rootCmd.AddCommand(app.createTUICommand())
	rootCmd.AddCommand(app.createServeCommand(ctx))
	rootCmd.AddCommand(app.createVersionCommand())

	return rootCmd
}

// createVersionCommand создает команду version
func (app *Application) createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "playlist %s\n", version)
		},
	}
}

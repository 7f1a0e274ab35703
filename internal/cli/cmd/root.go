// Package cmd provides Cobra CLI commands for cyberdark.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mxnstrexgl/cyberdark/internal/cli"
)

var (
	app       *cli.App
	buildInfo cli.BuildInfo
	rootCmd   = &cobra.Command{
		Use:   "cyberdark",
		Short: "A cyberpunk dark theme engine for the web",
		Long: `Cyberdark - a dark theme engine with a daemon and a CLI.

Turns pages dark with a palette you control, per-site overrides, an
automatic schedule, and color-blind friendly palettes.

Features:
  - Sanitized settings record, synced whole and signed on export
  - Per-site overrides and a site blacklist with subdomain matching
  - Overnight schedules (e.g. 20:00 - 07:00)
  - Color-blind palettes (protanopia, deuteranopia, tritanopia, achromatopsia)
  - Resource monitor with long-task and memory warnings
  - Localhost control API for page contexts and this CLI

Use 'cyberdark daemon' to run the background service, or explore the
subcommands for settings, sites and previews.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			// Set build info from main.go
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info cli.BuildInfo) {
	buildInfo = info
}

package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mxnstrexgl/cyberdark/internal/cli/styles"
)

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Turn dark mode on",
	RunE: func(_ *cobra.Command, _ []string) error {
		return setEnabled(true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Turn dark mode off",
	RunE: func(_ *cobra.Command, _ []string) error {
		return setEnabled(false)
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

func setEnabled(enabled bool) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()
	t := app.Theme

	if err := app.SetEnabled(ctx, enabled); err != nil {
		iconStyle := lipgloss.NewStyle().Foreground(t.Error)
		fmt.Printf("\n  %s %v\n", iconStyle.Render(styles.IconX), err)
		return nil
	}

	if enabled {
		iconStyle := lipgloss.NewStyle().Foreground(t.Success)
		fmt.Printf("\n  %s Dark mode enabled\n", iconStyle.Render(styles.IconMoon))
	} else {
		fmt.Printf("\n  %s Dark mode disabled\n", t.Subtle.Render(styles.IconStop))
	}
	return nil
}

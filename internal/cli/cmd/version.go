package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mxnstrexgl/cyberdark/internal/cli/styles"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	t := app.Theme
	info := app.BuildInfo
	iconStyle := lipgloss.NewStyle().Foreground(t.Accent)

	line := func(icon, label, value string) string {
		return fmt.Sprintf("%s %s %s",
			iconStyle.Render(icon),
			t.Subtle.Render(label+":"),
			t.Highlight.Render(value),
		)
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		t.Title.Render(styles.IconMoon+" cyberdark"),
		"",
		line(styles.IconVersion, "Version", info.Version),
		line(styles.IconConfig, "Commit", info.Commit),
		line(styles.IconClock, "Built", info.BuildDate),
		line(styles.IconGo, "Go", info.GoVersion),
	)
	fmt.Println("\n" + t.Box.Render(content))
	return nil
}

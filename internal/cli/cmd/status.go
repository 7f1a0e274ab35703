package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mxnstrexgl/cyberdark/internal/background"
	"github.com/mxnstrexgl/cyberdark/internal/cli"
	"github.com/mxnstrexgl/cyberdark/internal/cli/model"
	"github.com/mxnstrexgl/cyberdark/internal/cli/styles"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dark mode status",
	Long: `Show the current dark mode state, schedule, and site counts.

Asks the running daemon when there is one, otherwise computes the summary
from the local settings store.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "live-update the status view")
}

func runStatus(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.Ctx()
	renderer := styles.NewStatusRenderer(app.Theme)

	if statusWatch {
		m := model.NewStatusModel(app.Theme, func(ctx context.Context) (background.StatusResponse, string, error) {
			return fetchStatus(ctx, app)
		})
		p := tea.NewProgram(m)
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("status watch failed: %w", err)
		}
		return nil
	}

	status, source, err := fetchStatus(ctx, app)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return nil
	}
	fmt.Println(renderer.RenderStatus(status, source))
	return nil
}

// fetchStatus asks the daemon, computing the summary locally when none runs.
func fetchStatus(ctx context.Context, app *cli.App) (background.StatusResponse, string, error) {
	if app.Daemon.Healthy(ctx) {
		status, err := app.Daemon.Status(ctx)
		return status, "served by the daemon at " + app.Config.API.ListenAddr, err
	}

	st, err := app.Store(ctx)
	if err != nil {
		return background.StatusResponse{}, "", err
	}
	record, err := st.Settings(ctx)
	if err != nil {
		return background.StatusResponse{}, "", err
	}
	enabled, err := st.Enabled(ctx)
	if err != nil {
		return background.StatusResponse{}, "", err
	}

	return background.StatusResponse{
		Version:         app.BuildInfo.Version,
		Enabled:         enabled,
		ScheduleEnabled: record.Schedule.Enabled,
		InSchedule:      !record.Schedule.Enabled || record.Schedule.Allows(time.Now()),
		BlacklistSize:   len(record.Blacklist),
		OverrideCount:   record.PerSiteOverrides.Len(),
	}, "computed from the local store (daemon not running)", nil
}

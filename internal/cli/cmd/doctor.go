package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mxnstrexgl/cyberdark/internal/cli"
	"github.com/mxnstrexgl/cyberdark/internal/cli/styles"
	"github.com/mxnstrexgl/cyberdark/internal/config"
	"github.com/mxnstrexgl/cyberdark/internal/settings"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, storage and daemon health",
	Long: `Doctor verifies that cyberdark can do its job on this machine.

It runs three groups of checks:
- Config: the config file parses and validates
- Store: the settings store opens, the record sanitizes and fits the
  sync quota
- Daemon: whether the background service is reachable

Examples:
  cyberdark doctor`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	report := styles.DoctorReport{OverallOK: true}

	configSection := styles.DoctorSection{Name: "Config"}
	configSection.Checks = append(configSection.Checks, checkConfig())
	report.Sections = append(report.Sections, configSection)

	storeSection := styles.DoctorSection{Name: "Store"}
	storeSection.Checks = append(storeSection.Checks, checkStore(app)...)
	report.Sections = append(report.Sections, storeSection)

	daemonSection := styles.DoctorSection{Name: "Daemon"}
	daemonSection.Checks = append(daemonSection.Checks, checkDaemon(app))
	report.Sections = append(report.Sections, daemonSection)

	for _, section := range report.Sections {
		for _, check := range section.Checks {
			if !check.OK {
				report.OverallOK = false
			}
		}
	}

	renderer := styles.NewDoctorRenderer(app.Theme)
	fmt.Println(renderer.Render(report))

	if !report.OverallOK {
		return fmt.Errorf("health checks failed")
	}
	return nil
}

func checkConfig() styles.DoctorCheck {
	check := styles.DoctorCheck{Name: "config loads"}

	manager, err := config.NewManager()
	if err == nil {
		err = manager.Load()
	}
	if err != nil {
		check.Detail = err.Error()
		check.Hint = "fix or delete the config file; a default is recreated on the next run"
		return check
	}

	check.OK = true
	if path, pathErr := config.GetConfigFile(); pathErr == nil {
		check.Detail = path
	}
	return check
}

func checkStore(app *cli.App) []styles.DoctorCheck {
	ctx := app.Ctx()

	open := styles.DoctorCheck{
		Name:   "store opens",
		Detail: fmt.Sprintf("%s backend at %s", app.Config.Store.Backend, app.Config.Store.Path),
	}
	st, err := app.Store(ctx)
	if err != nil {
		open.Detail = err.Error()
		open.Hint = "check store.path permissions in the config"
		return []styles.DoctorCheck{open}
	}
	open.OK = true

	record := styles.DoctorCheck{Name: "settings record loads"}
	rec, err := st.Settings(ctx)
	if err != nil {
		record.Detail = err.Error()
		return []styles.DoctorCheck{open, record}
	}
	record.OK = true
	record.Detail = fmt.Sprintf("%d blocked sites, %d overrides", len(rec.Blacklist), rec.PerSiteOverrides.Len())

	quota := styles.DoctorCheck{Name: "record fits the sync quota"}
	used := settings.SyncQuotaUsage(rec)
	quota.Detail = fmt.Sprintf("%d of %d bytes", used, settings.SyncQuotaBytes)
	if settings.FitsInSyncQuota(rec) {
		quota.OK = true
	} else {
		quota.Hint = "trim the blacklist or per-site overrides"
	}

	return []styles.DoctorCheck{open, record, quota}
}

func checkDaemon(app *cli.App) styles.DoctorCheck {
	ctx := app.Ctx()

	check := styles.DoctorCheck{Name: "daemon reachable", OK: true}
	if !app.Daemon.Healthy(ctx) {
		check.Detail = "not running (commands fall back to the store)"
		return check
	}

	check.Detail = app.Config.API.ListenAddr
	if status, err := app.Daemon.Status(ctx); err == nil {
		check.Detail = fmt.Sprintf("%s, version %s, up %ds", app.Config.API.ListenAddr, status.Version, status.UptimeSeconds)
	}
	return check
}

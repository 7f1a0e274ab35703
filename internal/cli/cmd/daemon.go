package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mxnstrexgl/cyberdark/internal/background"
	"github.com/mxnstrexgl/cyberdark/internal/config"
	"github.com/mxnstrexgl/cyberdark/internal/logging"
	"github.com/mxnstrexgl/cyberdark/internal/monitor"
	"github.com/mxnstrexgl/cyberdark/internal/settings"
	"github.com/mxnstrexgl/cyberdark/internal/store"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background service",
	Long: `Run the cyberdark background service.

The daemon keeps the settings cache warm, answers state queries on the
localhost control API, fires schedule boundary checks, and emits resource
warnings when the monitor is enabled. It runs until interrupted.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	if app.Config.Logging.FileEnabled {
		closeLog, err := wireFileLog(app.Config)
		if err != nil {
			logging.Warn(fmt.Sprintf("File logging disabled: %v", err))
		} else {
			defer closeLog()
		}
	}

	ctx, stop := signal.NotifyContext(app.Ctx(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := app.Store(ctx)
	if err != nil {
		return err
	}

	d, err := background.NewDaemon(ctx, st, app.Config.API.ListenAddr, app.BuildInfo.Version)
	if err != nil {
		return err
	}

	if app.Config.Monitor.Enabled {
		stopMonitor := wireMonitor(ctx, app.Config.Monitor.LongTaskMillis, app.Config.Monitor.MemoryLimitMiB, st)
		defer stopMonitor()
	}

	logging.Info(fmt.Sprintf("Daemon listening on %s", app.Config.API.ListenAddr))
	return d.Run(ctx)
}

// wireFileLog mirrors daemon logs into a rotating file, by default under
// the XDG state directory.
func wireFileLog(cfg *config.Config) (func(), error) {
	dir := cfg.Logging.Dir
	if dir == "" {
		stateDir, err := config.GetStateDir()
		if err != nil {
			return nil, err
		}
		dir = stateDir
	}

	rot, err := logging.NewRotator(dir,
		cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups, cfg.Logging.MaxAgeDays,
		cfg.Logging.Compress)
	if err != nil {
		return nil, err
	}

	logging.Setup(logging.NewWithFile(logging.Config{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		TimeFormat: "15:04:05",
	}, rot))

	return func() { _ = rot.Close() }, nil
}

// wireMonitor runs the resource monitor while the record's
// resourceMonitorEnabled flag is set, following flips as they happen.
func wireMonitor(ctx context.Context, longTaskMillis, memoryLimitMiB int, st store.Store) func() {
	mon := monitor.New(monitor.Options{
		LongTaskThreshold: time.Duration(longTaskMillis) * time.Millisecond,
		MemoryLimit:       uint64(memoryLimitMiB) << 20,
	})

	if record, err := st.Settings(ctx); err == nil && record.ResourceMonitorEnabled {
		mon.Start(ctx)
	}

	unsubscribe := st.Subscribe(func(ch store.Change) {
		if ch.Key != store.KeySettings {
			return
		}
		record, ok := ch.NewValue.(*settings.Settings)
		if !ok {
			return
		}
		if record.ResourceMonitorEnabled {
			mon.Start(ctx)
		} else {
			mon.Stop()
		}
	})

	return func() {
		unsubscribe()
		mon.Stop()
	}
}

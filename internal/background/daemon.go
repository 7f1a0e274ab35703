package background

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mxnstrexgl/cyberdark/internal/logging"
	"github.com/mxnstrexgl/cyberdark/internal/store"
)

const shutdownGrace = 5 * time.Second

// Daemon ties the background pieces together: store mirror, schedule
// watcher and control API on one listen address.
type Daemon struct {
	st      store.Store
	cache   *Cache
	sched   *Scheduler
	api     *API
	addr    string
	version string
}

// NewDaemon wires a daemon over st listening on addr.
func NewDaemon(ctx context.Context, st store.Store, addr, version string) (*Daemon, error) {
	cache, err := NewCache(ctx, st)
	if err != nil {
		return nil, err
	}
	d := &Daemon{
		st:      st,
		cache:   cache,
		addr:    addr,
		version: version,
	}
	d.sched = NewScheduler(st, d.logBoundary)
	d.api = NewAPI(st, cache, version)
	return d, nil
}

func (d *Daemon) logBoundary(now time.Time) {
	record := d.cache.Record()
	state := "outside"
	if record.Schedule.Allows(now) {
		state = "inside"
	}
	logging.Info(fmt.Sprintf("Automatic schedule now %s its active window", state))
}

// Run serves until ctx is canceled, then shuts everything down in order.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.sched.Start(ctx); err != nil {
		return fmt.Errorf("start schedule watcher: %w", err)
	}
	defer d.sched.Stop()
	defer d.cache.Close()

	srv := &http.Server{
		Addr:              d.addr,
		Handler:           d.api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info(fmt.Sprintf("Control API listening on %s", d.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn(fmt.Sprintf("Forced server close: %v", err))
			return srv.Close()
		}
		return nil
	})
	err := g.Wait()
	logging.Info("Daemon stopped")
	return err
}

// Cache exposes the store mirror, mainly for in-process page contexts.
func (d *Daemon) Cache() *Cache {
	return d.cache
}

// Status reports the same summary the HTTP status endpoint serves.
func (d *Daemon) Status() StatusResponse {
	record := d.cache.Record()
	return StatusResponse{
		Version:         d.version,
		Enabled:         d.cache.Enabled(),
		ScheduleEnabled: record.Schedule.Enabled,
		InSchedule:      !record.Schedule.Enabled || record.Schedule.Allows(time.Now()),
		BlacklistSize:   len(record.Blacklist),
		OverrideCount:   record.PerSiteOverrides.Len(),
	}
}

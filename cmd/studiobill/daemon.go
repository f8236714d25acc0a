package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	appLog "studiobill/internal/log"
	"studiobill/internal/web"
)

func newDaemonCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run billing passes on a cron schedule",
		Long: `Run one billing pass at startup, then one per tick of the configured
schedule (cron syntax, e.g. "0 * * * *"). A pass still running when the next
tick fires makes that tick a no-op.

If listen is set, a read-only status endpoint is served:
  GET /health                  liveness
  GET /api/summary             client totals of the last pass
  GET /api/ledger?year=2026    rows of one year sheet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDaemon(cmd.Context())
		},
	}
}

func (a *app) runDaemon(parent context.Context) error {
	r, err := a.newRunner()
	if err != nil {
		return err
	}
	loc, _ := a.cfg.Location()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status := web.NewServer()
	pass := func() {
		res, err := runPass(ctx, r, a.cfg.Workbook, false)
		if err != nil {
			appLog.Error("billing pass failed", err, "workbook", a.cfg.Workbook)
		}
		status.Record(res, err)
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(a.cfg.Schedule, pass); err != nil {
		return fmt.Errorf("schedule %q: %w", a.cfg.Schedule, err)
	}

	var srv *http.Server
	if a.cfg.Listen != "" {
		srv = &http.Server{
			Addr:              a.cfg.Listen,
			Handler:           status.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			appLog.Info("starting status server", "listen", "http://"+a.cfg.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLog.Error("status server stopped", err, "listen", a.cfg.Listen)
			}
		}()
	}

	appLog.Info("daemon started", "schedule", a.cfg.Schedule, "timezone", loc.String())
	pass()
	c.Start()

	<-ctx.Done()
	appLog.Info("shutting down")

	stopped := c.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("status server shutdown", err)
		}
	}
	select {
	case <-stopped.Done():
	case <-shutdownCtx.Done():
		appLog.Warn("billing pass still running at exit")
	}

	appLog.Info("studiobill exiting", "pid", os.Getpid())
	return nil
}

// cronLogger routes cron's own logging through the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}

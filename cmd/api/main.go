package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/statuspulse/internal/config"
	"github.com/hamed0406/statuspulse/internal/httpapi"
	apimw "github.com/hamed0406/statuspulse/internal/httpapi/middleware"
	"github.com/hamed0406/statuspulse/internal/logging"
	"github.com/hamed0406/statuspulse/internal/monitor"
	"github.com/hamed0406/statuspulse/internal/probe"
	"github.com/hamed0406/statuspulse/internal/repo"
	"github.com/hamed0406/statuspulse/internal/scheduler"
)

func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := openKV(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store_open_failed", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	docs := repo.NewDocuments(kv, cfg.SnapshotKey, cfg.SitesKey, cfg.Sites)
	checker := probe.NewDiagnosingChecker(probe.NewHTTPChecker(cfg.ProbeTimeout, cfg.UserAgent), logger)
	policy := monitor.Policy{
		IncidentCap:       cfg.IncidentCap,
		DetailedRetention: cfg.DetailedRetention,
		HourlyRetention:   cfg.HourlyRetention,
	}
	engine := monitor.NewEngine(logger, checker, policy, cfg.ProbeTimeout, cfg.Concurrency)
	controller := monitor.NewController(logger, engine, docs, docs)

	sched, err := scheduler.New(logger, controller, cfg.CheckSchedule)
	if err != nil {
		logger.Fatal("scheduler_init_failed", zap.Error(err))
	}
	schedDone := startScheduler(ctx, sched)

	gate := apimw.NewGate(cfg.AdminPasswordHash)
	if !gate.Enabled() {
		logger.Warn("admin_password_unset", zap.String("hint", "run-check and update-sites will answer 401"))
	}
	api := httpapi.NewServer(logger, docs, docs, controller, gate)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("api_listen",
			zap.String("addr", cfg.Addr),
			zap.String("store", cfg.StoreDriver),
			zap.String("schedule", cfg.CheckSchedule),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("api_listen_failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := shutdown(shutdownCtx, srv, schedDone, closeKV); err != nil {
		logger.Warn("shutdown_error", zap.Error(err))
		return
	}
	logger.Info("shutdown_complete")
}

// startScheduler runs s until ctx is done. The returned channel is closed
// once the last cycle has finished.
func startScheduler(ctx context.Context, s *scheduler.Scheduler) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return done
}

// shutdown stops the HTTP server, waits for the scheduler and only then
// closes the store. Every failure is reported.
func shutdown(ctx context.Context, srv *http.Server, schedDone <-chan struct{}, closeKV func() error) error {
	var err error
	if e := srv.Shutdown(ctx); e != nil {
		err = multierr.Append(err, fmt.Errorf("http shutdown: %w", e))
	}
	select {
	case <-schedDone:
	case <-ctx.Done():
		err = multierr.Append(err, fmt.Errorf("scheduler still running: %w", ctx.Err()))
	}
	if e := closeKV(); e != nil {
		err = multierr.Append(err, fmt.Errorf("close store: %w", e))
	}
	return err
}

package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hamed0406/statuspulse/internal/domain"
)

// Runner executes one check cycle.
type Runner interface {
	Run(ctx context.Context) (domain.Snapshot, error)
}

// Scheduler triggers the cycle on a cron schedule. Failed cycles are
// logged and retried only at the next tick.
type Scheduler struct {
	Logger   *zap.Logger
	Runner   Runner
	Spec     string
	schedule cron.Schedule
}

// New parses spec, which may be a standard 5-field cron expression or a
// descriptor such as "@every 5m" or "@hourly". An empty spec or "off"
// yields a disabled scheduler.
func New(logger *zap.Logger, runner Runner, spec string) (*Scheduler, error) {
	s := &Scheduler{Logger: logger, Runner: runner, Spec: strings.TrimSpace(spec)}
	if s.disabled() {
		return s, nil
	}
	sched, err := cron.ParseStandard(s.Spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", s.Spec, err)
	}
	s.schedule = sched
	return s, nil
}

func (s *Scheduler) disabled() bool {
	return s.Spec == "" || strings.EqualFold(s.Spec, "off")
}

// Run does an immediate pass, then runs on every tick until ctx is
// cancelled. Ticks that fire while a cycle is still running are skipped.
func (s *Scheduler) Run(ctx context.Context) {
	if s.disabled() {
		s.Logger.Info("scheduler_disabled")
		return
	}

	s.runOnce(ctx)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(s.schedule, cron.FuncJob(func() { s.runOnce(ctx) }))
	c.Start()
	s.Logger.Info("scheduler_started", zap.String("spec", s.Spec))

	<-ctx.Done()
	<-c.Stop().Done()
	s.Logger.Info("scheduler_stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.Runner.Run(ctx); err != nil {
		s.Logger.Warn("scheduled_cycle_error", zap.Error(err))
	}
}

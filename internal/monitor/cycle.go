package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statuspulse/internal/domain"
	"github.com/hamed0406/statuspulse/internal/probe"
)

// Engine turns one snapshot into the next by probing every site.
type Engine struct {
	Logger      *zap.Logger
	Checker     probe.Checker
	Policy      Policy
	Timeout     time.Duration
	Concurrency int
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func NewEngine(logger *zap.Logger, checker probe.Checker, policy Policy, timeout time.Duration, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Logger:      logger,
		Checker:     checker,
		Policy:      policy,
		Timeout:     timeout,
		Concurrency: concurrency,
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Apply probes every site and returns the next snapshot; prev is left
// untouched. Probes run concurrently, but results are folded into the
// snapshot one site at a time in the order of sites. Apply only fails if
// ctx is cancelled, in which case the partial snapshot must not be
// persisted.
func (e *Engine) Apply(ctx context.Context, prev domain.Snapshot, sites []domain.Site) (domain.Snapshot, error) {
	now := e.now()
	results := e.probeAll(ctx, sites)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	next := prev.Clone()
	for i, site := range sites {
		m := Ensure(next, site)
		Apply(m, results[i], now, e.Policy)
	}
	return next, nil
}

func (e *Engine) probeAll(ctx context.Context, sites []domain.Site) []domain.ProbeResult {
	results := make([]domain.ProbeResult, len(sites))
	sem := make(chan struct{}, e.Concurrency)
	var wg sync.WaitGroup

	for i, site := range sites {
		i, site := i, site
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()
			results[i] = e.probeOne(ctx, site)
		}()
	}

	wg.Wait()
	return results
}

func (e *Engine) probeOne(ctx context.Context, site domain.Site) domain.ProbeResult {
	cctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	at := e.now()
	out := e.Checker.Check(cctx, site.URL)

	r := domain.ProbeResult{
		Time:   domain.Millis(at),
		Status: domain.Status(out.StatusCode),
		Reason: out.Message,
	}
	r.OK = r.Status != domain.StatusError && Classify(r.Status)
	if r.Status != domain.StatusError {
		r.ResponseTime = out.LatencyMS
	}

	if r.OK {
		e.Logger.Debug("probe_ok",
			zap.String("target_id", string(site.ID)),
			zap.String("url", site.URL),
			zap.Int("status", out.StatusCode),
			zap.Float64("latency_ms", out.LatencyMS),
		)
	} else {
		e.Logger.Warn("probe_failed",
			zap.String("target_id", string(site.ID)),
			zap.String("url", site.URL),
			zap.String("status", r.Status.String()),
			zap.String("reason", out.Message),
		)
	}
	return r
}

// SnapshotStore persists the snapshot as a whole.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context) (domain.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap domain.Snapshot) error
}

// SiteSource yields the currently configured sites.
type SiteSource interface {
	Sites(ctx context.Context) ([]domain.Site, error)
}

// Controller runs full check cycles: read snapshot, apply, write. Cycles
// started through the same Controller never overlap.
type Controller struct {
	Logger *zap.Logger
	Engine *Engine
	Store  SnapshotStore
	Sites  SiteSource

	mu sync.Mutex
}

func NewController(logger *zap.Logger, engine *Engine, store SnapshotStore, sites SiteSource) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{Logger: logger, Engine: engine, Store: store, Sites: sites}
}

// Run executes one cycle and returns the persisted snapshot. Probe
// failures are recorded as data; only storage errors fail the cycle, and
// then nothing is written.
func (c *Controller) Run(ctx context.Context) (domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	prev, err := c.Store.LoadSnapshot(ctx)
	if err != nil {
		c.Logger.Error("cycle_load_error", zap.Error(err))
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	sites, err := c.Sites.Sites(ctx)
	if err != nil {
		c.Logger.Error("cycle_sites_error", zap.Error(err))
		return nil, fmt.Errorf("load sites: %w", err)
	}

	next, err := c.Engine.Apply(ctx, prev, sites)
	if err != nil {
		c.Logger.Warn("cycle_aborted", zap.Error(err))
		return nil, fmt.Errorf("apply cycle: %w", err)
	}

	if err := c.Store.SaveSnapshot(ctx, next); err != nil {
		c.Logger.Error("cycle_save_error", zap.Error(err))
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	down := 0
	for _, s := range sites {
		if m := next[s.ID]; m != nil && m.LastStatus != nil && !m.LastStatus.OK {
			down++
		}
	}
	c.Logger.Info("cycle_done",
		zap.Int("targets", len(sites)),
		zap.Int("down", down),
		zap.Duration("took", time.Since(start)),
	)
	return next, nil
}

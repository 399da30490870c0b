package refresher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"weathercard/internal/widget"
)

// Looker is the part of widget.Service the refresher drives.
type Looker interface {
	Lookup(ctx context.Context, rawCity string) (widget.Fields, error)
}

// Refresher repeats the lookup for one configured city on a fixed interval.
// A failed tick is logged and the next tick proceeds as normal.
type Refresher struct {
	service  Looker
	city     string
	interval time.Duration
	enabled  bool
	logger   *slog.Logger

	mu        sync.RWMutex
	running   bool
	lastRun   time.Time
	lastError error
}

type Config struct {
	Service  Looker
	City     string
	Interval time.Duration
	Enabled  bool
	Logger   *slog.Logger
}

func New(cfg Config) *Refresher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		service:  cfg.Service,
		city:     cfg.City,
		interval: interval,
		enabled:  cfg.Enabled,
		logger:   logger.With("component", "refresher"),
	}
}

// Start blocks until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) error {
	if !r.enabled || r.city == "" {
		r.logger.Info("refresher is disabled")
		return nil
	}

	r.setRunning(true)
	defer r.setRunning(false)

	r.logger.Info("starting refresher", "interval", r.interval)

	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopped")
			return nil
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	fields, err := r.service.Lookup(ctx, r.city)

	r.mu.Lock()
	r.lastRun = time.Now()
	r.lastError = err
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("refresh failed", "message", widget.UserMessage(err), "error", err)
		return
	}
	r.logger.Debug("refreshed", "city", fields.City, "today", fields.Today)
}

func (r *Refresher) setRunning(v bool) {
	r.mu.Lock()
	r.running = v
	r.mu.Unlock()
}

func (r *Refresher) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// LastRun returns when the last refresh finished and its error, if any.
func (r *Refresher) LastRun() (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRun, r.lastError
}

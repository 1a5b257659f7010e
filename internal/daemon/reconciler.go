package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/exert/internal/platform"
)

// Tracker is the part of the window manager the reconciler corrects.
type Tracker interface {
	Managed() ([]platform.WindowID, error)
	WindowDestroyed(id platform.WindowID)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops windows that vanished without the display
// server telling us.
type Reconciler struct {
	interval    time.Duration
	tracker     Tracker
	listWindows WindowLister
	logger      *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, tracker Tracker, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:    interval,
		tracker:     tracker,
		listWindows: listWindows,
		logger:      logger,
	}
}

func (r *Reconciler) String() string {
	return "reconciler"
}

// Serve runs the reconciliation loop until ctx is cancelled.
func (r *Reconciler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("reconciler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.ReconcileNow(); err != nil {
				r.logger.Warn("reconcile failed", "error", err)
			}
		}
	}
}

// ReconcileNow performs a single pass and returns the first error, if any.
// The managed set is read before the server listing, so a window mapped in
// between is absent from the snapshot and cannot be mistaken for a vanished
// one.
func (r *Reconciler) ReconcileNow() error {
	managed, err := r.tracker.Managed()
	if err != nil {
		return fmt.Errorf("managed windows: %w", err)
	}
	actual, err := r.listWindows()
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}

	present := make(map[platform.WindowID]bool, len(actual))
	for _, id := range actual {
		present[id] = true
	}

	for _, id := range managed {
		if present[id] {
			continue
		}
		r.logger.Info("reconciler: dropping vanished window", "window", uint32(id))
		r.tracker.WindowDestroyed(id)
	}
	return nil
}

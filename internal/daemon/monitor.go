// Package daemon holds the background producers that feed the dispatch loop.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/wtm/internal/event"
	"github.com/1broseidon/wtm/internal/platform"
)

// DefaultMonitorInterval is how often the active display is sampled.
const DefaultMonitorInterval = 10 * time.Millisecond

// Sink receives produced events. Send reports false once the consumer is gone.
type Sink interface {
	Send(ev event.Event) bool
}

// DisplaySource resolves the display the user is working on.
type DisplaySource interface {
	ActiveDisplay() (platform.Display, error)
}

// MonitorWatcherConfig holds configuration for the monitor watcher.
type MonitorWatcherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// MonitorWatcher polls the active display and reports identity changes.
type MonitorWatcher struct {
	interval time.Duration
	displays DisplaySource
	sink     Sink
	logger   *slog.Logger

	current string
}

// NewMonitorWatcher creates a watcher. The display active at construction
// time is the baseline; it does not produce an event.
func NewMonitorWatcher(cfg MonitorWatcherConfig, displays DisplaySource, sink Sink) *MonitorWatcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &MonitorWatcher{
		interval: interval,
		displays: displays,
		sink:     sink,
		logger:   logger,
	}
	if d, err := displays.ActiveDisplay(); err == nil {
		w.current = d.ID
	}
	return w
}

// Current returns the last seen display ID. It is not synchronised with Run
// and exists for tests that step the watcher with Poll.
func (w *MonitorWatcher) Current() string {
	return w.current
}

// Run polls until ctx is cancelled or the sink is closed.
func (w *MonitorWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Debug("monitor watcher started", "interval", w.interval, "display", w.current)

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("monitor watcher stopped")
			return
		case <-ticker.C:
			if !w.Poll() {
				w.logger.Info("monitor watcher: event channel closed, stopping")
				return
			}
		}
	}
}

// Poll samples the display once. It returns false when the sink refused
// an event.
func (w *MonitorWatcher) Poll() (ok bool) {
	ok = true
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("monitor watcher panic recovered", "error", err)
		}
	}()

	d, err := w.displays.ActiveDisplay()
	if err != nil {
		w.logger.Debug("monitor watcher: no display", "error", err)
		return true
	}
	if d.ID == w.current {
		return true
	}

	w.logger.Info("active display changed", "from", w.current, "to", d.ID, "name", d.Name)
	w.current = d.ID
	return w.sink.Send(event.MonitorChange{})
}

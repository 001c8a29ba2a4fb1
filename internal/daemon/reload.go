package daemon

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/1broseidon/wtm/internal/config"
	"github.com/1broseidon/wtm/internal/event"
)

// ErrSinkClosed is returned when the dispatch loop no longer accepts events.
var ErrSinkClosed = errors.New("event channel closed")

// ConfigLoader reads the current configuration from disk.
type ConfigLoader func() (*config.Config, error)

// Reloader re-reads the configuration on demand and hands it to the dispatch
// loop as a ReloadConfig event. A config that fails to load or validate is
// logged and the running one is kept.
type Reloader struct {
	load   ConfigLoader
	sink   Sink
	logger *slog.Logger
}

// NewReloader creates a reloader.
func NewReloader(load ConfigLoader, sink Sink, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader{load: load, sink: sink, logger: logger}
}

// ReloadNow loads the configuration once.
func (r *Reloader) ReloadNow() error {
	cfg, err := r.load()
	if err != nil {
		r.logger.Error("config reload failed, keeping current config", "error", err)
		return err
	}
	if !r.sink.Send(event.ReloadConfig{Config: cfg}) {
		return ErrSinkClosed
	}
	r.logger.Info("config reloaded")
	return nil
}

// Run reloads on every signal until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context, signals <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			r.logger.Debug("reload requested", "signal", sig)
			if err := r.ReloadNow(); errors.Is(err, ErrSinkClosed) {
				return
			}
		}
	}
}

package daemon

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/1broseidon/wtm/internal/event"
	"github.com/1broseidon/wtm/internal/platform"
)

// ForegroundSource delivers foreground-window changes.
type ForegroundSource interface {
	WatchForeground(ctx context.Context, fn func(platform.WindowID)) error
}

// WatchForeground forwards foreground changes as ActiveWindowChange events
// until ctx ends. Changes to the window returned by ignore (the picker) are
// dropped so that focusing the picker never replaces the window being placed.
func WatchForeground(ctx context.Context, src ForegroundSource, ignore func() platform.WindowID, sink Sink, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	var closed atomic.Bool

	return src.WatchForeground(ctx, func(id platform.WindowID) {
		if id == 0 || closed.Load() {
			return
		}
		if ignore != nil && id == ignore() {
			return
		}
		if !sink.Send(event.ActiveWindowChange{ID: id}) {
			closed.Store(true)
			logger.Info("foreground watcher: event channel closed, stopping")
		}
	})
}

//go:build !linux && !windows

package platform

import (
	"fmt"
	"log/slog"
	"runtime"
)

// NewBackend reports that no window system backend exists for this OS.
func NewBackend(logger *slog.Logger) (Backend, error) {
	return nil, fmt.Errorf("%s: %w", runtime.GOOS, ErrUnsupported)
}

package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/1broseidon/wtm/internal/config"
	"github.com/1broseidon/wtm/internal/event"
	"github.com/1broseidon/wtm/internal/platform"
	"github.com/1broseidon/wtm/internal/platform/platformtest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func display(id string) platform.Display {
	area := platform.Rect{Width: 1920, Height: 1080}
	return platform.Display{ID: id, Name: id, Bounds: area, WorkArea: area}
}

func TestMonitorWatcher_EmitsOnlyOnIdentityChange(t *testing.T) {
	b := platformtest.New()
	b.SetDisplay(display("A"))
	ch := event.NewChannel()

	w := NewMonitorWatcher(MonitorWatcherConfig{Logger: quietLogger()}, b, ch)
	if w.Current() != "A" {
		t.Fatalf("baseline = %q, want A", w.Current())
	}

	w.Poll()
	if _, ok := ch.TryRecv(); ok {
		t.Fatalf("unchanged display produced an event")
	}

	b.SetDisplay(display("B"))
	w.Poll()
	ev, ok := ch.TryRecv()
	if !ok {
		t.Fatalf("display change produced no event")
	}
	if _, isMonitor := ev.(event.MonitorChange); !isMonitor {
		t.Fatalf("got %T, want MonitorChange", ev)
	}

	w.Poll()
	if _, ok := ch.TryRecv(); ok {
		t.Fatalf("second poll on same display produced an event")
	}
}

func TestMonitorWatcher_DisplayErrorIsIgnored(t *testing.T) {
	b := platformtest.New()
	b.SetDisplay(display("A"))
	ch := event.NewChannel()
	w := NewMonitorWatcher(MonitorWatcherConfig{Logger: quietLogger()}, b, ch)

	b.SetDisplayError(platform.ErrNoDisplay)
	if !w.Poll() {
		t.Fatalf("Poll() = false on display error")
	}
	if _, ok := ch.TryRecv(); ok {
		t.Fatalf("display error produced an event")
	}
	if w.Current() != "A" {
		t.Fatalf("display error changed baseline to %q", w.Current())
	}
}

func TestMonitorWatcher_RunStopsWhenChannelCloses(t *testing.T) {
	b := platformtest.New()
	b.SetDisplay(display("A"))
	ch := event.NewChannel()
	w := NewMonitorWatcher(MonitorWatcherConfig{Interval: time.Millisecond, Logger: quietLogger()}, b, ch)

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	ch.Close()
	b.SetDisplay(display("B"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run() did not return after the channel closed")
	}
}

func TestMonitorWatcher_RunStopsOnCancel(t *testing.T) {
	b := platformtest.New()
	ch := event.NewChannel()
	w := NewMonitorWatcher(MonitorWatcherConfig{Interval: time.Millisecond, Logger: quietLogger()}, b, ch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run() did not return after cancel")
	}
}

type panicDisplays struct{}

func (panicDisplays) ActiveDisplay() (platform.Display, error) {
	panic("boom")
}

func TestMonitorWatcher_PollRecoversPanics(t *testing.T) {
	w := &MonitorWatcher{displays: panicDisplays{}, sink: event.NewChannel(), logger: quietLogger()}
	if !w.Poll() {
		t.Fatalf("Poll() = false after recovered panic")
	}
}

func TestWatchForeground_FiltersPicker(t *testing.T) {
	b := platformtest.New()
	ch := event.NewChannel()
	picker := platform.WindowID(42)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := WatchForeground(ctx, b, func() platform.WindowID { return picker }, ch, quietLogger()); err != nil {
		t.Fatalf("WatchForeground() error: %v", err)
	}

	b.SetForeground(picker)
	b.SetForeground(0)
	b.SetForeground(7)

	ev, ok := ch.TryRecv()
	if !ok {
		t.Fatalf("no event for a regular window")
	}
	if got, want := ev, (event.ActiveWindowChange{ID: 7}); got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	if _, ok := ch.TryRecv(); ok {
		t.Fatalf("picker or null window produced an event")
	}

	cancel()
	if b.LiveWatchers() != 0 {
		t.Fatalf("watcher still live after cancel")
	}
}

func TestReloader_SendsLoadedConfig(t *testing.T) {
	ch := event.NewChannel()
	cfg := config.DefaultConfig()
	cfg.Margin = 3
	r := NewReloader(func() (*config.Config, error) { return cfg, nil }, ch, quietLogger())

	if err := r.ReloadNow(); err != nil {
		t.Fatalf("ReloadNow() error: %v", err)
	}
	ev, ok := ch.TryRecv()
	if !ok {
		t.Fatalf("no event after reload")
	}
	reload, isReload := ev.(event.ReloadConfig)
	if !isReload || reload.Config.Margin != 3 {
		t.Fatalf("got %#v, want ReloadConfig with margin 3", ev)
	}
}

func TestReloader_KeepsRunningConfigOnError(t *testing.T) {
	ch := event.NewChannel()
	loadErr := errors.New("bad yaml")
	r := NewReloader(func() (*config.Config, error) { return nil, loadErr }, ch, quietLogger())

	if err := r.ReloadNow(); !errors.Is(err, loadErr) {
		t.Fatalf("ReloadNow() error = %v, want %v", err, loadErr)
	}
	if _, ok := ch.TryRecv(); ok {
		t.Fatalf("failed reload produced an event")
	}
}

func TestReloader_RunReloadsPerSignal(t *testing.T) {
	ch := event.NewChannel()
	loads := 0
	r := NewReloader(func() (*config.Config, error) {
		loads++
		return config.DefaultConfig(), nil
	}, ch, quietLogger())

	signals := make(chan os.Signal, 2)
	signals <- syscall.SIGHUP
	signals <- syscall.SIGHUP
	close(signals)

	r.Run(context.Background(), signals)
	if loads != 2 {
		t.Fatalf("loads = %d, want 2", loads)
	}
	for i := 0; i < 2; i++ {
		if _, ok := ch.TryRecv(); !ok {
			t.Fatalf("missing reload event %d", i)
		}
	}
}

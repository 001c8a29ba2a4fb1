// Package manager runs the dispatch loop: it owns the zone grid, reacts to
// every event produced by hotkeys, watchers, IPC and the picker window, and
// issues window placement calls through the platform backend.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/wtm/internal/config"
	"github.com/1broseidon/wtm/internal/daemon"
	"github.com/1broseidon/wtm/internal/event"
	"github.com/1broseidon/wtm/internal/grid"
	"github.com/1broseidon/wtm/internal/platform"
)

// Options configure a TilingManager.
type Options struct {
	Backend platform.Backend
	Events  *event.Channel
	Config  *config.Config
	// Cache remembers grid sizes; nil keeps them in memory only.
	Cache  *grid.Cache
	Logger *slog.Logger
	// MonitorInterval overrides the display poll interval of picker sessions.
	MonitorInterval time.Duration
}

// session is one open picker. Its context ends when the picker closes.
type session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// TilingManager is the single consumer of the event channel. Every field
// below is owned by the dispatch goroutine except the atomics.
type TilingManager struct {
	backend         platform.Backend
	events          *event.Channel
	cache           *grid.Cache
	logger          *slog.Logger
	monitorInterval time.Duration

	cfg     *config.Config
	profile string
	display platform.Display

	grid          *grid.Grid
	session       *session
	previewWindow platform.WindowID
	gridWindow    platform.WindowID
	trackMouse    bool

	frame         atomic.Pointer[grid.Frame]
	status        atomic.Pointer[Status]
	activeSession atomic.Pointer[session]
	pickerWindow  atomic.Uintptr
}

// New creates a manager with a grid for the current display and the
// configuration's default profile.
func New(opts Options) *TilingManager {
	if opts.Backend == nil {
		panic("manager: New requires a Backend")
	}
	if opts.Events == nil {
		panic("manager: New requires an event channel")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cache := opts.Cache
	if cache == nil {
		cache, _ = grid.LoadCache("")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &TilingManager{
		backend:         opts.Backend,
		events:          opts.Events,
		cache:           cache,
		logger:          logger,
		monitorInterval: opts.MonitorInterval,
		cfg:             cfg,
		profile:         cfg.DefaultProfile(),
	}
	m.rebuild(false)
	m.publish()
	return m
}

// Run dispatches events until ctx is cancelled, an Exit event arrives or the
// channel is closed. On return the picker is closed and the channel is
// closed so producers stop.
func (m *TilingManager) Run(ctx context.Context) error {
	defer m.shutdown()

	m.logger.Info("dispatch loop started", "profile", m.profile, "display", m.display.ID)
	for {
		ev, ok := m.events.Recv(ctx)
		if !ok {
			if err := ctx.Err(); err != nil {
				m.logger.Info("dispatch loop stopped", "reason", err)
			} else {
				m.logger.Info("dispatch loop stopped", "reason", "event channel closed")
			}
			return nil
		}
		if !m.Handle(ev) {
			m.logger.Info("dispatch loop stopped", "reason", "exit requested")
			return nil
		}
	}
}

func (m *TilingManager) shutdown() {
	if m.session != nil {
		m.closeWindows()
	}
	m.events.Close()
}

// Handle processes one event to completion. It returns false for Exit.
func (m *TilingManager) Handle(ev event.Event) bool {
	defer m.publishStatus()

	switch ev := ev.(type) {
	case event.InitializeWindows:
		m.initializeWindows()
	case event.GridWindow:
		m.onGridWindow(ev.ID)
	case event.PreviewWindow:
		m.onPreviewWindow(ev.ID)
	case event.HighlightZone:
		m.highlightZone(ev.Rect)
	case event.HotkeyPressed:
		m.onHotkey(ev.Kind)
	case event.TrackMouse:
		m.onTrackMouse(ev.ID)
	case event.MouseLeft:
		m.onMouseLeft()
	case event.ActiveWindowChange:
		m.onActiveWindowChange(ev.ID)
	case event.MonitorChange:
		m.rebuildAndReposition("monitor change")
	case event.ProfileChange:
		m.onProfileChange(ev.Name)
	case event.CloseWindows:
		m.closeWindows()
	case event.KeyDown:
		m.onKeyDown(ev.Key)
	case event.KeyUp:
		m.onKeyUp(ev.Key)
	case event.MouseMove:
		m.onMouseMove(ev.Point)
	case event.MouseDown:
		m.onMouseDown(ev.Point)
	case event.MouseUp:
		m.onMouseUp()
	case event.ReloadConfig:
		m.onReloadConfig(ev.Config)
	case event.Exit:
		return false
	default:
		m.logger.Warn("unhandled event", "type", fmt.Sprintf("%T", ev))
	}
	return true
}

func (m *TilingManager) log() *slog.Logger {
	if m.session != nil {
		return m.session.logger
	}
	return m.logger
}

// initializeWindows rebuilds the grid and opens the picker. The picker
// reports back through GridWindow once it exists.
func (m *TilingManager) initializeWindows() {
	if m.session != nil {
		m.log().Debug("picker already open")
		return
	}

	quickResize := m.grid.QuickResize
	previousResize := m.grid.PreviousResize
	m.rebuild(false)
	m.grid.QuickResize = quickResize
	m.grid.PreviousResize = previousResize

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	s := &session{
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		logger: m.logger.With("session", id),
	}
	m.session = s
	m.activeSession.Store(s)
	m.publish()

	s.logger.Info("opening picker",
		"rows", m.grid.Rows(),
		"columns", m.grid.Columns(),
		"quick_resize", quickResize,
		"profile", m.profile)

	if err := m.backend.SpawnPickerWindow(ctx, m.grid.PickerBounds(), &pickerInput{m: m, session: s}); err != nil {
		s.logger.Error("failed to create picker window", "error", err)
		m.closeWindows()
	}
}

func (m *TilingManager) onGridWindow(id platform.WindowID) {
	if m.session == nil || m.gridWindow != 0 {
		m.log().Debug("ignoring stale picker window", "window", id)
		return
	}
	m.gridWindow = id
	m.pickerWindow.Store(uintptr(id))
	m.grid.GridWindow = id

	fg, err := m.backend.ForegroundWindow()
	if err != nil {
		m.log().Warn("failed to read foreground window", "error", err)
	} else {
		m.grid.ActiveWindow = fg
	}

	watcher := daemon.NewMonitorWatcher(daemon.MonitorWatcherConfig{
		Interval: m.monitorInterval,
		Logger:   m.session.logger,
	}, m.backend, m.events)
	go watcher.Run(m.session.ctx)

	s := m.session
	if err := m.backend.SpawnPreviewWindow(s.ctx, func(preview platform.WindowID) {
		if m.activeSession.Load() == s {
			m.events.Send(event.PreviewWindow{ID: preview})
		}
	}); err != nil {
		s.logger.Error("failed to create preview window", "error", err)
	}
	m.publish()
}

func (m *TilingManager) onPreviewWindow(id platform.WindowID) {
	if m.session == nil || m.gridWindow == 0 {
		m.log().Debug("ignoring stale preview window", "window", id)
		return
	}
	m.previewWindow = id

	if err := daemon.WatchForeground(m.session.ctx, m.backend, m.PickerWindow, m.events, m.session.logger); err != nil {
		m.log().Error("failed to watch foreground window", "error", err)
	}
	if err := m.backend.ShowAndFocus(m.gridWindow); err != nil {
		m.log().Error("failed to show picker", "error", err)
	}
}

func (m *TilingManager) highlightZone(r platform.Rect) {
	if m.previewWindow == 0 {
		return
	}
	if err := m.backend.MoveResize(m.previewWindow, r.Normalize(), m.gridWindow); err != nil {
		m.log().Warn("failed to move preview", "error", err)
	}
}

func (m *TilingManager) onHotkey(kind event.HotkeyKind) {
	m.log().Debug("hotkey", "kind", kind.String())

	switch kind {
	case event.Main:
		if m.session != nil {
			m.closeWindows()
		} else {
			m.initializeWindows()
		}
	case event.QuickResize:
		m.grid.QuickResize = true
		m.initializeWindows()
	case event.Maximize:
		m.maximize()
	case event.Minimize:
		fg, err := m.backend.ForegroundWindow()
		if err != nil || fg == 0 {
			m.log().Warn("no foreground window to minimize", "error", err)
			return
		}
		if err := m.backend.Minimize(fg); err != nil {
			m.log().Warn("failed to minimize window", "window", fg, "error", err)
		}
	}
}

func (m *TilingManager) onTrackMouse(id platform.WindowID) {
	if m.trackMouse {
		return
	}
	if err := m.backend.TrackMouseLeave(id); err != nil {
		m.log().Debug("failed to track mouse leave", "error", err)
		return
	}
	m.trackMouse = true
}

func (m *TilingManager) onMouseLeft() {
	m.trackMouse = false
	if m.gridWindow == 0 {
		return
	}
	m.grid.UnhighlightAllTiles()
	m.highlightZone(platform.Zero())
	m.repaint()
}

func (m *TilingManager) onActiveWindowChange(id platform.WindowID) {
	if id == m.grid.GridWindow || id == m.grid.ActiveWindow {
		return
	}
	if id == m.previewWindow && id != 0 {
		return
	}
	m.log().Debug("active window changed", "window", id)
	m.grid.ActiveWindow = id
}

func (m *TilingManager) onProfileChange(name string) {
	if name == m.profile {
		return
	}
	m.log().Info("profile changed", "from", m.profile, "to", name)
	m.profile = name
	m.rebuildAndReposition("profile change")
}

func (m *TilingManager) onReloadConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.cfg = cfg
	if !slices.Contains(cfg.Profiles, m.profile) {
		m.profile = cfg.DefaultProfile()
	}
	m.rebuildAndReposition("config reload")
}

// closeWindows ends the picker session. The active window and the previous
// resize survive for the next session and for maximize toggling.
func (m *TilingManager) closeWindows() {
	if m.session != nil {
		m.session.logger.Info("closing picker")
		m.session.cancel()
	}
	m.session = nil
	m.activeSession.Store(nil)
	m.previewWindow = 0
	m.gridWindow = 0
	m.pickerWindow.Store(0)
	m.grid.Reset()
	m.trackMouse = false
	m.publish()
}

// rebuildAndReposition replaces the grid for the current display, profile
// and config, carrying the transient state, and recenters an open picker.
func (m *TilingManager) rebuildAndReposition(reason string) {
	m.rebuild(true)
	m.log().Debug("grid rebuilt", "reason", reason, "rows", m.grid.Rows(), "columns", m.grid.Columns(), "display", m.display.ID)
	m.reposition()
	m.repaint()
}

// rebuild constructs a new grid. With carry, the picker window, active
// window, previous resize and quick resize flag move to the new grid.
func (m *TilingManager) rebuild(carry bool) {
	m.refreshDisplay()

	size := m.cache.Get(m.cacheKey())
	opts := grid.Options{
		GridMargin:   grid.DefaultGridMargin,
		ZoneMargin:   m.cfg.Margin,
		BorderMargin: m.cfg.Padding,
		Rows:         size.Rows,
		Columns:      size.Columns,
		WorkArea:     m.workArea,
		Placer:       m.backend,
		OnResize:     m.rememberSize,
	}
	g := grid.New(opts)

	if carry && m.grid != nil {
		g.GridWindow = m.grid.GridWindow
		g.ActiveWindow = m.grid.ActiveWindow
		g.PreviousResize = m.grid.PreviousResize
		g.QuickResize = m.grid.QuickResize
	}
	m.grid = g
}

func (m *TilingManager) refreshDisplay() {
	d, err := m.backend.ActiveDisplay()
	if err != nil {
		m.log().Warn("failed to resolve active display, keeping previous", "error", err)
		return
	}
	m.display = d
}

func (m *TilingManager) workArea() platform.Rect {
	return m.display.WorkArea
}

func (m *TilingManager) cacheKey() grid.Key {
	return grid.Key{Monitor: m.display.ID, Profile: m.profile}
}

func (m *TilingManager) rememberSize(rows, columns int) {
	if err := m.cache.Put(m.cacheKey(), grid.Size{Rows: rows, Columns: columns}); err != nil {
		m.log().Warn("failed to save grid size", "error", err)
	}
}

func (m *TilingManager) reposition() {
	if m.grid.GridWindow == 0 {
		return
	}
	if err := m.grid.Reposition(); err != nil {
		m.log().Warn("failed to reposition picker", "error", err)
	}
}

// repaint publishes a fresh frame and asks the picker to redraw.
func (m *TilingManager) repaint() {
	m.publish()
	if m.gridWindow == 0 {
		return
	}
	if err := m.backend.Invalidate(m.gridWindow); err != nil {
		m.log().Debug("failed to invalidate picker", "error", err)
	}
}

func (m *TilingManager) publish() {
	m.frame.Store(m.grid.Frame())
	m.publishStatus()
}

// PickerWindow returns the open picker window, or zero. Safe for use from
// any goroutine.
func (m *TilingManager) PickerWindow() platform.WindowID {
	return platform.WindowID(m.pickerWindow.Load())
}

// Frame returns the tile matrix last published for painting.
func (m *TilingManager) Frame() *grid.Frame {
	return m.frame.Load()
}

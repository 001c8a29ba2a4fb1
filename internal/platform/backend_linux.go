//go:build linux

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/wtm/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend drives an X11 session. The picker and the preview are
// override-redirect windows owned by the backend; everything else is a
// managed client moved through EWMH requests.
type LinuxBackend struct {
	conn   *x11.Connection
	logger *slog.Logger

	mu       sync.Mutex
	overlays map[WindowID]*x11.Overlay
}

var _ Backend = (*LinuxBackend)(nil)

// NewBackend connects to the X server named by $DISPLAY.
func NewBackend(logger *slog.Logger) (Backend, error) {
	return NewLinuxBackend(logger)
}

// NewLinuxBackend creates a Linux backend by opening a fresh X11 connection.
func NewLinuxBackend(logger *slog.Logger) (*LinuxBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{
		conn:     conn,
		logger:   logger.With("component", "x11"),
		overlays: make(map[WindowID]*x11.Overlay),
	}, nil
}

// Run services X events until ctx is cancelled.
func (b *LinuxBackend) Run(ctx context.Context) error {
	b.conn.Run(ctx)
	return ctx.Err()
}

// Close destroys any overlay still alive and disconnects.
func (b *LinuxBackend) Close() {
	b.mu.Lock()
	overlays := b.overlays
	b.overlays = make(map[WindowID]*x11.Overlay)
	b.mu.Unlock()

	for _, o := range overlays {
		o.Destroy()
	}
	b.conn.Close()
}

// ActiveDisplay returns the monitor under the pointer.
func (b *LinuxBackend) ActiveDisplay() (Display, error) {
	m, err := b.conn.GetActiveMonitor()
	if err != nil {
		return Display{}, fmt.Errorf("%w: %v", ErrNoDisplay, err)
	}
	return displayFromMonitor(*m), nil
}

func (b *LinuxBackend) ForegroundWindow() (WindowID, error) {
	win, err := b.conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(win), nil
}

func (b *LinuxBackend) WindowRect(id WindowID) (Rect, error) {
	r, err := b.conn.OuterRect(xproto.Window(id))
	if err != nil {
		return Rect{}, err
	}
	return fromX11(r), nil
}

func (b *LinuxBackend) MoveResize(id WindowID, bounds Rect, insertAfter WindowID) error {
	if o := b.overlay(id); o != nil {
		o.MoveResize(toX11(bounds))
		if insertAfter != 0 {
			o.StackBelow(xproto.Window(insertAfter))
		}
		return nil
	}
	return b.conn.MoveResizeWindow(xproto.Window(id), bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

func (b *LinuxBackend) Restore(id WindowID) error {
	return b.conn.Restore(xproto.Window(id))
}

func (b *LinuxBackend) Minimize(id WindowID) error {
	return b.conn.Minimize(xproto.Window(id))
}

// TransparentBorder reports the client-side shadow of GTK windows. The
// window grows by the left shadow on both sides and by the bottom shadow.
func (b *LinuxBackend) TransparentBorder(id WindowID) (int, int, error) {
	ext, err := b.conn.ShadowExtents(xproto.Window(id))
	if err != nil {
		return 0, 0, err
	}
	return ext.Left, ext.Bottom, nil
}

func (b *LinuxBackend) ShowAndFocus(id WindowID) error {
	if o := b.overlay(id); o != nil {
		return o.Show()
	}
	return b.conn.Activate(xproto.Window(id))
}

func (b *LinuxBackend) Invalidate(id WindowID) error {
	o := b.overlay(id)
	if o == nil {
		return fmt.Errorf("invalidate window %d: %w", id, ErrUnsupported)
	}
	o.Invalidate()
	return nil
}

// TrackMouseLeave is a no-op: X delivers LeaveNotify to every window that
// selects it.
func (b *LinuxBackend) TrackMouseLeave(WindowID) error {
	return nil
}

func (b *LinuxBackend) SpawnPickerWindow(ctx context.Context, bounds Rect, in PickerInput) error {
	o, err := b.conn.CreateOverlay(toX11(bounds), PickerBackground.Pixel(), pickerHandlers(in))
	if err != nil {
		return err
	}
	id := b.adopt(ctx, o)
	b.logger.Debug("picker window created", "window", id, "bounds", bounds.String())
	in.WindowCreated(id)
	return nil
}

func (b *LinuxBackend) SpawnPreviewWindow(ctx context.Context, created func(WindowID)) error {
	o, err := b.conn.CreateOverlay(x11.Rect{Width: 1, Height: 1}, PreviewColor.Pixel(), x11.OverlayHandlers{})
	if err != nil {
		return err
	}
	if err := o.SetOpacity(PreviewAlpha); err != nil {
		b.logger.Debug("failed to set preview opacity", "error", err)
	}
	id := b.adopt(ctx, o)
	created(id)
	return nil
}

// WatchForeground reports managed application windows only; desktops,
// docks and the backend's own overlays are skipped.
func (b *LinuxBackend) WatchForeground(ctx context.Context, fn func(WindowID)) error {
	b.conn.WatchActiveWindow(ctx, func(win xproto.Window) {
		if win == 0 || b.overlay(WindowID(win)) != nil || !b.conn.IsNormalWindow(win) {
			return
		}
		fn(WindowID(win))
	})
	return nil
}

func (b *LinuxBackend) RegisterHotkey(hk Hotkey, fn func()) error {
	return b.conn.GrabHotkey(hk.KeySequence(), fn)
}

func (b *LinuxBackend) adopt(ctx context.Context, o *x11.Overlay) WindowID {
	id := WindowID(o.ID())
	b.mu.Lock()
	b.overlays[id] = o
	b.mu.Unlock()

	context.AfterFunc(ctx, func() {
		b.mu.Lock()
		delete(b.overlays, id)
		b.mu.Unlock()
		o.Destroy()
	})
	return id
}

func (b *LinuxBackend) overlay(id WindowID) *x11.Overlay {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overlays[id]
}

func pickerHandlers(in PickerInput) x11.OverlayHandlers {
	key := func(fn func(Key)) func(string) {
		return func(keysym string) {
			if k := keyFromKeysym(keysym); k != KeyUnknown {
				fn(k)
			}
		}
	}
	return x11.OverlayHandlers{
		KeyPress:      key(in.KeyDown),
		KeyRelease:    key(in.KeyUp),
		Motion:        func(x, y int) { in.MouseMove(Point{X: x, Y: y}) },
		ButtonPress:   func(x, y int) { in.MouseDown(Point{X: x, Y: y}) },
		ButtonRelease: func(x, y int) { in.MouseUp(Point{X: x, Y: y}) },
		Leave:         in.MouseLeave,
		Expose:        func(p *x11.Painter) { in.Paint(painterCanvas{p}) },
	}
}

func keyFromKeysym(keysym string) Key {
	switch keysym {
	case "Escape":
		return KeyEscape
	case "Control_L", "Control_R":
		return KeyControl
	case "Shift_L", "Shift_R":
		return KeyShift
	case "Left":
		return KeyLeft
	case "Right":
		return KeyRight
	case "Up":
		return KeyUp
	case "Down":
		return KeyDown
	case "F1":
		return KeyF1
	case "F2":
		return KeyF2
	case "F3":
		return KeyF3
	case "F4":
		return KeyF4
	case "F5":
		return KeyF5
	case "F6":
		return KeyF6
	}
	return KeyUnknown
}

type painterCanvas struct {
	p *x11.Painter
}

func (c painterCanvas) FillRect(r Rect, col Color)  { c.p.FillRect(toX11(r), col.Pixel()) }
func (c painterCanvas) FrameRect(r Rect, col Color) { c.p.FrameRect(toX11(r), col.Pixel()) }

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:       m.Name,
		Name:     m.Name,
		Bounds:   fromX11(m.Bounds),
		WorkArea: fromX11(m.WorkArea),
	}
}

func toX11(r Rect) x11.Rect {
	return x11.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func fromX11(r x11.Rect) Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

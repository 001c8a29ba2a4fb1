package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// OverlayHandlers receive the input of an overlay window. Nil handlers are
// skipped; the window then does not select the matching events. Handlers run
// on the event loop goroutine.
type OverlayHandlers struct {
	// KeyPress and KeyRelease get the unshifted keysym name, e.g. "Escape",
	// "Control_L" or "F3".
	KeyPress      func(keysym string)
	KeyRelease    func(keysym string)
	Motion        func(x, y int)
	ButtonPress   func(x, y int)
	ButtonRelease func(x, y int)
	Leave         func()
	Expose        func(p *Painter)
}

// Overlay is an override-redirect window owned by this process. The window
// manager never reparents or decorates it, so its geometry is exact.
type Overlay struct {
	conn *Connection
	win  *xwindow.Window
	gc   xproto.Gcontext

	destroyOnce sync.Once
}

// CreateOverlay creates an unmapped override-redirect window filled with the
// background pixel (0xRRGGBB).
func (c *Connection) CreateOverlay(r Rect, background uint32, h OverlayHandlers) (*Overlay, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	var mask uint32 = xproto.EventMaskExposure
	if h.KeyPress != nil {
		mask |= xproto.EventMaskKeyPress
	}
	if h.KeyRelease != nil {
		mask |= xproto.EventMaskKeyRelease
	}
	if h.Motion != nil {
		mask |= xproto.EventMaskPointerMotion
	}
	if h.ButtonPress != nil {
		mask |= xproto.EventMaskButtonPress
	}
	if h.ButtonRelease != nil {
		mask |= xproto.EventMaskButtonRelease
	}
	if h.Leave != nil {
		mask |= xproto.EventMaskLeaveWindow
	}

	// Value order follows the Cw* bit order.
	if err := win.CreateChecked(c.Root, r.X, r.Y, max(r.Width, 1), max(r.Height, 1),
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		background, 1, mask); err != nil {
		return nil, fmt.Errorf("failed to create overlay window: %w", err)
	}

	gc, err := xproto.NewGcontextId(c.XUtil.Conn())
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to allocate graphics context: %w", err)
	}
	if err := xproto.CreateGCChecked(c.XUtil.Conn(), gc, xproto.Drawable(win.Id),
		xproto.GcForeground, []uint32{background}).Check(); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to create graphics context: %w", err)
	}

	// Keeps compositors from treating the overlay as a normal client.
	_ = ewmh.WmWindowTypeSet(c.XUtil, win.Id, []string{"_NET_WM_WINDOW_TYPE_UTILITY"})

	o := &Overlay{conn: c, win: win, gc: gc}
	o.connect(h)
	return o, nil
}

func (o *Overlay) connect(h OverlayHandlers) {
	xu := o.conn.XUtil
	id := o.win.Id

	if h.KeyPress != nil {
		xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
			h.KeyPress(keysymName(xu, ev.Detail))
		}).Connect(xu, id)
	}
	if h.KeyRelease != nil {
		xevent.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
			h.KeyRelease(keysymName(xu, ev.Detail))
		}).Connect(xu, id)
	}
	if h.Motion != nil {
		xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
			h.Motion(int(ev.EventX), int(ev.EventY))
		}).Connect(xu, id)
	}
	if h.ButtonPress != nil {
		xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
			if ev.Detail == xproto.ButtonIndex1 {
				h.ButtonPress(int(ev.EventX), int(ev.EventY))
			}
		}).Connect(xu, id)
	}
	if h.ButtonRelease != nil {
		xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
			if ev.Detail == xproto.ButtonIndex1 {
				h.ButtonRelease(int(ev.EventX), int(ev.EventY))
			}
		}).Connect(xu, id)
	}
	if h.Leave != nil {
		xevent.LeaveNotifyFun(func(xu *xgbutil.XUtil, ev xevent.LeaveNotifyEvent) {
			if ev.Mode == xproto.NotifyModeNormal {
				h.Leave()
			}
		}).Connect(xu, id)
	}
	if h.Expose != nil {
		xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
			// Only the last event of a burst repaints.
			if ev.Count == 0 {
				h.Expose(&Painter{overlay: o})
			}
		}).Connect(xu, id)
	}
}

func keysymName(xu *xgbutil.XUtil, keycode xproto.Keycode) string {
	return keybind.KeysymToStr(keybind.KeysymGet(xu, keycode, 0))
}

// ID returns the X window id.
func (o *Overlay) ID() xproto.Window {
	return o.win.Id
}

// SetOpacity sets _NET_WM_WINDOW_OPACITY; compositors blend the window at
// alpha/255.
func (o *Overlay) SetOpacity(alpha uint8) error {
	value := uint(alpha) * 0x01010101
	return xprop.ChangeProp32(o.conn.XUtil, o.win.Id, "_NET_WM_WINDOW_OPACITY", "CARDINAL", value)
}

// MoveResize sets the window geometry. A zero-sized rectangle unmaps it,
// since X windows cannot be empty.
func (o *Overlay) MoveResize(r Rect) {
	if r.Width <= 0 || r.Height <= 0 {
		o.win.Unmap()
		return
	}
	o.win.MoveResize(r.X, r.Y, r.Width, r.Height)
	o.win.Map()
}

// StackBelow restacks the window directly below sibling.
func (o *Overlay) StackBelow(sibling xproto.Window) {
	o.win.StackSibling(sibling, xproto.StackModeBelow)
}

// Show maps and raises the window and gives it keyboard focus.
func (o *Overlay) Show() error {
	o.win.Map()
	o.win.Stack(xproto.StackModeAbove)
	return xproto.SetInputFocusChecked(o.conn.XUtil.Conn(), xproto.InputFocusPointerRoot,
		o.win.Id, xproto.TimeCurrentTime).Check()
}

// Invalidate clears the window and requests an Expose.
func (o *Overlay) Invalidate() {
	xproto.ClearArea(o.conn.XUtil.Conn(), true, o.win.Id, 0, 0, 0, 0)
}

// Destroy detaches all handlers and destroys the window. Safe to call twice.
func (o *Overlay) Destroy() {
	o.destroyOnce.Do(func() {
		xproto.FreeGC(o.conn.XUtil.Conn(), o.gc)
		o.win.Destroy()
	})
}

// Painter draws into an overlay during an Expose handler.
type Painter struct {
	overlay *Overlay
}

// FillRect fills r with the pixel value.
func (p *Painter) FillRect(r Rect, pixel uint32) {
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	o := p.overlay
	xproto.ChangeGC(o.conn.XUtil.Conn(), o.gc, xproto.GcForeground, []uint32{pixel})
	xproto.PolyFillRectangle(o.conn.XUtil.Conn(), xproto.Drawable(o.win.Id), o.gc,
		[]xproto.Rectangle{toXRect(r, 0)})
}

// FrameRect draws a one pixel outline just inside r.
func (p *Painter) FrameRect(r Rect, pixel uint32) {
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	o := p.overlay
	xproto.ChangeGC(o.conn.XUtil.Conn(), o.gc, xproto.GcForeground, []uint32{pixel})
	// X outlines cover width+1 pixels.
	xproto.PolyRectangle(o.conn.XUtil.Conn(), xproto.Drawable(o.win.Id), o.gc,
		[]xproto.Rectangle{toXRect(r, 1)})
}

func toXRect(r Rect, shrink int) xproto.Rectangle {
	return xproto.Rectangle{
		X:      int16(r.X),
		Y:      int16(r.Y),
		Width:  uint16(max(r.Width-shrink, 0)),
		Height: uint16(max(r.Height-shrink, 0)),
	}
}

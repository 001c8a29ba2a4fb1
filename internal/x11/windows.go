package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// FrameExtents are the decoration sizes a window manager adds around a client.
type FrameExtents struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// MoveResizeWindow moves and resizes a managed window so that its frame
// (decorations included) covers the given geometry.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Some window managers ignore geometry requests on maximized windows.
	_ = c.Unmaximize(windowID)

	ext := c.FrameExtents(windowID)
	width = max(width-ext.Left-ext.Right, 1)
	height = max(height-ext.Top-ext.Bottom, 1)

	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// Unmaximize removes the maximized state from a window if it carries one.
func (c *Connection) Unmaximize(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// Restore brings a window out of the maximized or iconic state.
func (c *Connection) Restore(windowID xproto.Window) error {
	if err := c.Unmaximize(windowID); err != nil {
		return err
	}
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err == nil {
		for _, state := range states {
			if state == "_NET_WM_STATE_HIDDEN" {
				return ewmh.ActiveWindowReq(c.XUtil, windowID)
			}
		}
	}
	return nil
}

// Minimize iconifies a window via WM_CHANGE_STATE.
func (c *Connection) Minimize(windowID xproto.Window) error {
	atom, err := xprop.Atm(c.XUtil, "WM_CHANGE_STATE")
	if err != nil {
		return err
	}

	const iconicState = 3
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{iconicState, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// FrameExtents returns the window decoration sizes, or zeros when the
// window manager does not publish them.
func (c *Connection) FrameExtents(windowID xproto.Window) FrameExtents {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return FrameExtents{}
	}
	return FrameExtents{
		Left:   int(extents.Left),
		Right:  int(extents.Right),
		Top:    int(extents.Top),
		Bottom: int(extents.Bottom),
	}
}

// ShadowExtents reads _GTK_FRAME_EXTENTS, the invisible shadow region a
// client-side decorated window draws around itself. Order is left, right,
// top, bottom.
func (c *Connection) ShadowExtents(windowID xproto.Window) (FrameExtents, error) {
	reply, err := xprop.GetProperty(c.XUtil, windowID, "_GTK_FRAME_EXTENTS")
	if err != nil {
		return FrameExtents{}, nil
	}
	nums, err := xprop.PropValNums(reply, nil)
	if err != nil {
		return FrameExtents{}, err
	}
	if len(nums) != 4 {
		return FrameExtents{}, fmt.Errorf("_GTK_FRAME_EXTENTS has %d values, want 4", len(nums))
	}
	return FrameExtents{
		Left:   int(nums[0]),
		Right:  int(nums[1]),
		Top:    int(nums[2]),
		Bottom: int(nums[3]),
	}, nil
}

// OuterRect returns the window's frame rectangle in root coordinates.
func (c *Connection) OuterRect(windowID xproto.Window) (Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Rect{}, err
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return Rect{}, err
	}

	ext := c.FrameExtents(windowID)
	return Rect{
		X:      int(translate.DstX) - ext.Left,
		Y:      int(translate.DstY) - ext.Top,
		Width:  int(geom.Width) + ext.Left + ext.Right,
		Height: int(geom.Height) + ext.Top + ext.Bottom,
	}, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	return len(types) == 0
}

// GetActiveWindow returns _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// Activate asks the window manager to raise and focus a managed window.
func (c *Connection) Activate(windowID xproto.Window) error {
	return ewmh.ActiveWindowReq(c.XUtil, windowID)
}

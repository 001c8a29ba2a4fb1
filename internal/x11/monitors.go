package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Rect is a screen rectangle in root window coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Monitor represents a physical display. WorkArea is Bounds minus dock
// struts and panels; it is only filled in by GetActiveMonitor.
type Monitor struct {
	Index    int
	Name     string
	Bounds   Rect
	WorkArea Rect
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	// Initialize RandR if not already done
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	// Get screen resources
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		// Get output name
		outputName := fmt.Sprintf("Monitor%d", i)
		if len(crtcInfo.Outputs) > 0 {
			outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
			if err == nil {
				outputName = string(outputInfo.Name)
			}
		}

		bounds := Rect{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		monitors = append(monitors, Monitor{
			Index:    i,
			Name:     outputName,
			Bounds:   bounds,
			WorkArea: bounds,
		})
	}

	return monitors, nil
}

// GetActiveMonitor returns the monitor under the mouse cursor, falling back
// to the monitor holding the focused window and then the first monitor. Its
// WorkArea excludes panels and docks.
func (c *Connection) GetActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	var active *Monitor
	if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		active = monitorAt(monitors, int(pointer.RootX), int(pointer.RootY))
	}
	if active == nil {
		if win, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && win != 0 {
			if x, y, ok := c.windowCenter(win); ok {
				active = monitorAt(monitors, x, y)
			}
		}
	}
	if active == nil {
		active = &monitors[0]
	}

	active.WorkArea = c.workArea(active.Bounds)
	return active, nil
}

func monitorAt(monitors []Monitor, x, y int) *Monitor {
	for i := range monitors {
		if monitors[i].Bounds.contains(x, y) {
			return &monitors[i]
		}
	}
	return nil
}

func (c *Connection) windowCenter(win xproto.Window) (int, int, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, false
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, false
	}
	return int(translate.DstX) + int(geom.Width)/2, int(translate.DstY) + int(geom.Height)/2, true
}

// workArea shrinks bounds by the dock struts that overlap it. Without docks
// it falls back to the desktop's _NET_WORKAREA clipped to bounds.
func (c *Connection) workArea(bounds Rect) Rect {
	if struts, ok := c.dockStruts(bounds); ok {
		return shrinkByStruts(bounds, struts)
	}

	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return bounds
	}
	desktop := 0
	if cur, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(cur) < len(areas) {
		desktop = int(cur)
	}
	wa := areas[desktop]
	if isect, ok := intersectRect(bounds, Rect{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}); ok {
		return isect
	}
	return bounds
}

func intersectRect(a, b Rect) (Rect, bool) {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}, false
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// dockStruts is the space reserved at each edge of one monitor.
type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func (c *Connection) dockStruts(bounds Rect) (dockStruts, bool) {
	var struts dockStruts

	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return struts, false
	}
	rootW, rootH := int(rootGeom.Width), int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return struts, false
	}
	for _, win := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
		if err != nil || !slices.Contains(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			struts.add(bounds, sp, rootW, rootH)
		} else if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			struts.add(bounds, fullWidthStrut(s, rootW, rootH), rootW, rootH)
		}
	}
	return struts, struts != dockStruts{}
}

// fullWidthStrut widens a legacy _NET_WM_STRUT to span the whole root edge.
func fullWidthStrut(s *ewmh.WmStrut, rootW, rootH int) *ewmh.WmStrutPartial {
	return &ewmh.WmStrutPartial{
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		LeftEndY:   uint(rootH - 1),
		RightEndY:  uint(rootH - 1),
		TopEndX:    uint(rootW - 1),
		BottomEndX: uint(rootW - 1),
	}
}

// add accumulates the part of sp that falls on bounds. Strut ranges are
// inclusive root coordinates.
func (s *dockStruts) add(bounds Rect, sp *ewmh.WmStrutPartial, rootW, rootH int) {
	reserved := func(x1, y1, x2, y2 int) (Rect, bool) {
		return intersectRect(bounds, Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1})
	}

	if sp.Top > 0 {
		if r, ok := reserved(int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top)); ok {
			s.top = max(s.top, r.Height)
		}
	}
	if sp.Bottom > 0 {
		if r, ok := reserved(int(sp.BottomStartX), rootH-int(sp.Bottom), int(sp.BottomEndX)+1, rootH); ok {
			s.bottom = max(s.bottom, r.Height)
		}
	}
	if sp.Left > 0 {
		if r, ok := reserved(0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1); ok {
			s.left = max(s.left, r.Width)
		}
	}
	if sp.Right > 0 {
		if r, ok := reserved(rootW-int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY)+1); ok {
			s.right = max(s.right, r.Width)
		}
	}
}

func shrinkByStruts(bounds Rect, struts dockStruts) Rect {
	return Rect{
		X:      bounds.X + struts.left,
		Y:      bounds.Y + struts.top,
		Width:  max(bounds.Width-struts.left-struts.right, 1),
		Height: max(bounds.Height-struts.top-struts.bottom, 1),
	}
}

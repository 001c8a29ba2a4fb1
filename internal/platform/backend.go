package platform

import (
	"context"
	"errors"
)

// WindowID is an opaque handle to a top-level window. The window system owns
// the window; a WindowID is only a lookup key and is never freed here.
type WindowID uintptr

// Point is a position in window or screen coordinates.
type Point struct {
	X int
	Y int
}

// Display describes the monitor the user is currently working on.
type Display struct {
	// ID is a stable identity used for change detection.
	ID       string
	Name     string
	Bounds   Rect
	WorkArea Rect
}

// Color is a 24-bit RGB colour.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// RGB builds a Color from its components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Pixel returns the colour as 0xRRGGBB.
func (c Color) Pixel() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// COLORREF returns the colour in Win32 0x00BBGGRR order.
func (c Color) COLORREF() uint32 {
	return uint32(c.B)<<16 | uint32(c.G)<<8 | uint32(c.R)
}

// Overlay appearance shared by the native backends.
var (
	PickerBackground = RGB(44, 44, 44)
	PreviewColor     = RGB(0, 77, 128)
)

// PreviewAlpha is the opacity (0-255) of the zone preview overlay.
const PreviewAlpha = 107

// Canvas receives draw calls while a picker window is being painted.
type Canvas interface {
	FillRect(r Rect, c Color)
	FrameRect(r Rect, c Color)
}

// PickerInput receives the native input of a picker window. Calls arrive on
// the goroutine that owns the window; implementations must not block.
type PickerInput interface {
	WindowCreated(id WindowID)
	KeyDown(k Key)
	KeyUp(k Key)
	MouseMove(p Point)
	MouseDown(p Point)
	MouseUp(p Point)
	MouseLeave()
	Paint(c Canvas)
}

var (
	// ErrNoDisplay is returned when no monitor could be resolved.
	ErrNoDisplay = errors.New("no active display")
	// ErrUnsupported is returned by backends that cannot perform an operation.
	ErrUnsupported = errors.New("operation not supported by this backend")
)

// Backend abstracts the window-system operations the tiling manager needs.
type Backend interface {
	ActiveDisplay() (Display, error)
	ForegroundWindow() (WindowID, error)
	WindowRect(id WindowID) (Rect, error)
	// MoveResize places a window. A non-zero insertAfter also restacks the
	// window directly below that sibling.
	MoveResize(id WindowID, bounds Rect, insertAfter WindowID) error
	Restore(id WindowID) error
	Minimize(id WindowID) error
	// TransparentBorder reports the invisible border a window's outer rect
	// carries around its visible frame.
	TransparentBorder(id WindowID) (dx, dy int, err error)
	ShowAndFocus(id WindowID) error
	Invalidate(id WindowID) error
	TrackMouseLeave(id WindowID) error

	// SpawnPickerWindow creates the zone picker. It returns once the window
	// exists; the window lives until ctx is cancelled.
	SpawnPickerWindow(ctx context.Context, bounds Rect, in PickerInput) error
	// SpawnPreviewWindow creates the translucent zone preview overlay.
	SpawnPreviewWindow(ctx context.Context, created func(WindowID)) error
	// WatchForeground calls fn for every foreground change until ctx ends.
	WatchForeground(ctx context.Context, fn func(WindowID)) error
	RegisterHotkey(hk Hotkey, fn func()) error

	// Run services the window system until ctx is cancelled.
	Run(ctx context.Context) error
	Close()
}

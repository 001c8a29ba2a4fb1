//go:build linux

package platform

import (
	"testing"

	"github.com/1broseidon/wtm/internal/x11"
)

func TestKeyFromKeysym(t *testing.T) {
	tests := map[string]Key{
		"Escape":    KeyEscape,
		"Control_L": KeyControl,
		"Control_R": KeyControl,
		"Shift_R":   KeyShift,
		"Left":      KeyLeft,
		"Down":      KeyDown,
		"F1":        KeyF1,
		"F6":        KeyF6,
		"F7":        KeyUnknown,
		"a":         KeyUnknown,
		"":          KeyUnknown,
	}
	for keysym, want := range tests {
		if got := keyFromKeysym(keysym); got != want {
			t.Errorf("keyFromKeysym(%q) = %v, want %v", keysym, got, want)
		}
	}
}

func TestDisplayFromMonitor(t *testing.T) {
	m := x11.Monitor{
		Name:     "DP-1",
		Bounds:   x11.Rect{X: 1920, Y: 0, Width: 2560, Height: 1440},
		WorkArea: x11.Rect{X: 1920, Y: 32, Width: 2560, Height: 1408},
	}
	d := displayFromMonitor(m)
	if d.ID != "DP-1" || d.Name != "DP-1" {
		t.Fatalf("display identity = %q/%q, want DP-1", d.ID, d.Name)
	}
	if want := (Rect{X: 1920, Y: 32, Width: 2560, Height: 1408}); d.WorkArea != want {
		t.Fatalf("WorkArea = %+v, want %+v", d.WorkArea, want)
	}
	if d.Bounds.Width != 2560 {
		t.Fatalf("Bounds = %+v", d.Bounds)
	}
}

type recordingInput struct {
	down []Key
	up   []Key
}

func (r *recordingInput) WindowCreated(WindowID) {}
func (r *recordingInput) KeyDown(k Key)          { r.down = append(r.down, k) }
func (r *recordingInput) KeyUp(k Key)            { r.up = append(r.up, k) }
func (r *recordingInput) MouseMove(Point)        {}
func (r *recordingInput) MouseDown(Point)        {}
func (r *recordingInput) MouseUp(Point)          {}
func (r *recordingInput) MouseLeave()            {}
func (r *recordingInput) Paint(Canvas)           {}

func TestPickerHandlersDropUnknownKeys(t *testing.T) {
	in := &recordingInput{}
	h := pickerHandlers(in)

	h.KeyPress("Control_L")
	h.KeyPress("q")
	h.KeyRelease("Control_L")

	if len(in.down) != 1 || in.down[0] != KeyControl {
		t.Fatalf("down = %v, want [Control]", in.down)
	}
	if len(in.up) != 1 || in.up[0] != KeyControl {
		t.Fatalf("up = %v, want [Control]", in.up)
	}
}

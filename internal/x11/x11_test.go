package x11

import (
	"slices"
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
)

func TestIgnoreMasks(t *testing.T) {
	tests := []struct {
		name string
		base []uint16
		want []uint16
	}{
		{name: "caps only", base: []uint16{2}, want: []uint16{0, 2}},
		{name: "caps and numlock", base: []uint16{2, 16}, want: []uint16{0, 2, 16, 18}},
		{name: "three locks", base: []uint16{2, 16, 128}, want: []uint16{0, 2, 16, 18, 128, 130, 144, 146}},
		{name: "duplicates collapse", base: []uint16{2, 2}, want: []uint16{0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ignoreMasks(tt.base)
			slices.Sort(got)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("ignoreMasks(%v) = %v, want %v", tt.base, got, tt.want)
			}
		})
	}
}

func TestIntersectRect(t *testing.T) {
	mon := Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}

	got, ok := intersectRect(mon, Rect{X: 0, Y: 32, Width: 3840, Height: 1048})
	if !ok {
		t.Fatal("expected overlap")
	}
	want := Rect{X: 1920, Y: 32, Width: 1920, Height: 1048}
	if got != want {
		t.Fatalf("intersectRect = %+v, want %+v", got, want)
	}

	if _, ok := intersectRect(mon, Rect{X: 0, Y: 0, Width: 1920, Height: 1080}); ok {
		t.Fatal("adjacent rectangles should not overlap")
	}
}

func TestDockStrutsOnlyApplyToTheirMonitor(t *testing.T) {
	left := &Monitor{Bounds: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}}
	right := &Monitor{Bounds: Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}}

	// A 32px top panel spanning only the left monitor.
	panel := &ewmh.WmStrutPartial{Top: 32, TopStartX: 0, TopEndX: 1919}

	var leftStruts, rightStruts dockStruts
	leftStruts.add(left.Bounds, panel, 3840, 1080)
	rightStruts.add(right.Bounds, panel, 3840, 1080)

	if leftStruts.top != 32 {
		t.Fatalf("left top strut = %d, want 32", leftStruts.top)
	}
	if rightStruts != (dockStruts{}) {
		t.Fatalf("right monitor struts = %+v, want none", rightStruts)
	}

	got := shrinkByStruts(left.Bounds, leftStruts)
	want := Rect{X: 0, Y: 32, Width: 1920, Height: 1048}
	if got != want {
		t.Fatalf("work area = %+v, want %+v", got, want)
	}
}

func TestShrinkByStrutsKeepsMinimumSize(t *testing.T) {
	got := shrinkByStruts(Rect{Width: 100, Height: 100}, dockStruts{left: 80, right: 80, bottom: 200})
	if got.Width != 1 || got.Height != 1 {
		t.Fatalf("shrinkByStruts = %+v, want 1x1", got)
	}
}

func TestRectContainsIsHalfOpen(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 10, Height: 10}
	if !r.contains(10, 10) {
		t.Fatal("top-left corner should be inside")
	}
	if r.contains(20, 15) {
		t.Fatal("right edge should be outside")
	}
}

func TestLegacyStrutSpansEveryMonitor(t *testing.T) {
	right := Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}
	sp := fullWidthStrut(&ewmh.WmStrut{Bottom: 40}, 3840, 1080)

	var struts dockStruts
	struts.add(right, sp, 3840, 1080)
	if struts != (dockStruts{bottom: 40}) {
		t.Fatalf("struts = %+v, want bottom 40", struts)
	}
}

func TestRightStrutOnStackedMonitors(t *testing.T) {
	// Two monitors stacked vertically; a right dock covers only the lower one.
	upper := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	lower := Rect{X: 0, Y: 1080, Width: 1920, Height: 1080}
	sp := &ewmh.WmStrutPartial{Right: 48, RightStartY: 1080, RightEndY: 2159}

	var up, down dockStruts
	up.add(upper, sp, 1920, 2160)
	down.add(lower, sp, 1920, 2160)
	if up != (dockStruts{}) {
		t.Fatalf("upper struts = %+v, want none", up)
	}
	if down.right != 48 {
		t.Fatalf("lower right strut = %d, want 48", down.right)
	}
}

func TestMonitorAt(t *testing.T) {
	monitors := []Monitor{
		{Name: "DP-1", Bounds: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{Name: "DP-2", Bounds: Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}},
	}
	if m := monitorAt(monitors, 1920, 500); m == nil || m.Name != "DP-2" {
		t.Fatalf("monitorAt(1920, 500) = %+v, want DP-2", m)
	}
	if m := monitorAt(monitors, 100, 1200); m != nil {
		t.Fatalf("monitorAt outside every monitor = %+v, want nil", m)
	}
}

package grid

import (
	"testing"

	"github.com/1broseidon/wtm/internal/platform"
	"github.com/1broseidon/wtm/internal/platform/platformtest"
)

func fixedArea(r platform.Rect) WorkAreaFunc {
	return func() platform.Rect { return r }
}

func newTestGrid(t *testing.T, rows, columns int) (*Grid, *platformtest.Backend) {
	t.Helper()
	backend := platformtest.New()
	opts := DefaultOptions()
	opts.Rows = rows
	opts.Columns = columns
	opts.WorkArea = fixedArea(platform.Rect{X: 0, Y: 0, Width: 1000, Height: 800})
	opts.Placer = backend
	return New(opts), backend
}

// centre of the picker tile at row, column
func tilePoint(g *Grid, row, column int) platform.Point {
	area := g.TileArea(row, column)
	return platform.Point{X: area.X + area.Width/2, Y: area.Y + area.Height/2}
}

func TestZoneArea_TwoByTwo(t *testing.T) {
	g, _ := newTestGrid(t, 2, 2)

	tests := []struct {
		row, column int
		want        platform.Rect
	}{
		{0, 0, platform.Rect{X: 10, Y: 10, Width: 485, Height: 385}},
		{0, 1, platform.Rect{X: 505, Y: 10, Width: 485, Height: 385}},
		{1, 0, platform.Rect{X: 10, Y: 405, Width: 485, Height: 385}},
		{1, 1, platform.Rect{X: 505, Y: 405, Width: 485, Height: 385}},
	}
	for _, tt := range tests {
		if got := g.ZoneArea(tt.row, tt.column); got != tt.want {
			t.Errorf("ZoneArea(%d, %d) = %+v, want %+v", tt.row, tt.column, got, tt.want)
		}
	}
}

func TestZoneArea_OffsetWorkAreaAndRemainder(t *testing.T) {
	opts := DefaultOptions()
	opts.Rows = 1
	opts.Columns = 3
	opts.WorkArea = fixedArea(platform.Rect{X: 1920, Y: 40, Width: 1001, Height: 500})
	g := New(opts)

	// (1001 - 20 - 20) / 3 = 320 with one pixel dropped
	got := g.ZoneArea(0, 2)
	want := platform.Rect{X: 1920 + 2*320 + 10 + 2*10, Y: 50, Width: 320, Height: 480}
	if got != want {
		t.Fatalf("ZoneArea(0, 2) = %+v, want %+v", got, want)
	}
	if right := got.Right(); right != 1920+1001-10-1 {
		t.Fatalf("right edge = %d, want remainder pixel left unused", right)
	}
}

func TestZoneArea_PartitionsWithoutOverlap(t *testing.T) {
	area := platform.Rect{X: 0, Y: 0, Width: 1000, Height: 800}
	for rows := 1; rows <= 6; rows++ {
		for columns := 1; columns <= 6; columns++ {
			opts := DefaultOptions()
			opts.Rows = rows
			opts.Columns = columns
			opts.WorkArea = fixedArea(area)
			g := New(opts)

			var zones []platform.Rect
			for r := 0; r < rows; r++ {
				for c := 0; c < columns; c++ {
					z := g.ZoneArea(r, c)
					if z.X < area.X+DefaultBorderMargin || z.Y < area.Y+DefaultBorderMargin ||
						z.Right() > area.Right()-DefaultBorderMargin || z.Bottom() > area.Bottom()-DefaultBorderMargin {
						t.Fatalf("%dx%d zone (%d,%d) = %+v outside bordered work area", rows, columns, r, c, z)
					}
					zones = append(zones, z)
				}
			}
			for i := range zones {
				for j := i + 1; j < len(zones); j++ {
					a, b := zones[i], zones[j]
					if a.X < b.Right() && b.X < a.Right() && a.Y < b.Bottom() && b.Y < a.Bottom() {
						t.Fatalf("%dx%d zones overlap: %+v and %+v", rows, columns, a, b)
					}
				}
			}
		}
	}
}

func TestTileAreaAndDimensions(t *testing.T) {
	g, _ := newTestGrid(t, 2, 3)

	if got, want := g.TileArea(1, 2), (platform.Rect{X: 2*48 + 3*3, Y: 48 + 2*3, Width: 48, Height: 48}); got != want {
		t.Fatalf("TileArea(1, 2) = %+v, want %+v", got, want)
	}
	w, h := g.Dimensions()
	if w != 3*48+4*3 || h != 2*48+3*3 {
		t.Fatalf("Dimensions() = %dx%d, want %dx%d", w, h, 3*48+4*3, 2*48+3*3)
	}
}

func TestAddRemove_ShapeAndFloor(t *testing.T) {
	var resizes [][2]int
	opts := DefaultOptions()
	opts.WorkArea = fixedArea(platform.Rect{Width: 1000, Height: 800})
	opts.OnResize = func(rows, columns int) { resizes = append(resizes, [2]int{rows, columns}) }
	g := New(opts)

	g.AddRow()
	g.AddColumn()
	if g.Rows() != 3 || g.Columns() != 3 {
		t.Fatalf("after add: %dx%d, want 3x3", g.Rows(), g.Columns())
	}
	for r := 0; r < g.Rows(); r++ {
		if len(g.tiles[r]) != g.Columns() {
			t.Fatalf("row %d has %d tiles, want %d", r, len(g.tiles[r]), g.Columns())
		}
	}

	g.RemoveRow()
	g.RemoveColumn()
	if g.Rows() != 2 || g.Columns() != 2 {
		t.Fatalf("after remove: %dx%d, want 2x2", g.Rows(), g.Columns())
	}

	for i := 0; i < 3; i++ {
		g.RemoveRow()
		g.RemoveColumn()
	}
	if g.Rows() != 1 || g.Columns() != 1 {
		t.Fatalf("floor: %dx%d, want 1x1", g.Rows(), g.Columns())
	}
	g.RemoveRow()
	g.RemoveColumn()
	if g.Rows() != 1 || g.Columns() != 1 {
		t.Fatalf("remove at floor changed shape to %dx%d", g.Rows(), g.Columns())
	}

	if len(resizes) == 0 || resizes[len(resizes)-1] != [2]int{1, 1} {
		t.Fatalf("OnResize calls = %v, want last {1 1}", resizes)
	}
}

func TestAddRowThenRemoveRowRestoresMatrix(t *testing.T) {
	g, _ := newTestGrid(t, 2, 2)
	g.SelectTile(tilePoint(g, 1, 0))
	before := g.snapshotTiles()

	g.AddRow()
	g.RemoveRow()

	if !tilesEqual(before, g.tiles) {
		t.Fatalf("matrix changed after AddRow+RemoveRow: %v -> %v", before, g.tiles)
	}
}

func TestStructuralChangeDoesNotReposition(t *testing.T) {
	g, backend := newTestGrid(t, 2, 2)
	g.GridWindow = 77

	g.AddColumn()
	g.AddRow()
	if len(backend.Moves) != 0 {
		t.Fatalf("structural change moved windows: %+v", backend.Moves)
	}

	if err := g.Reposition(); err != nil {
		t.Fatalf("Reposition() error: %v", err)
	}
	move, ok := backend.LastMove(77)
	if !ok {
		t.Fatal("Reposition() did not move the grid window")
	}
	w, h := g.Dimensions()
	want := platform.Rect{X: 500 - w/2, Y: 400 - h/2, Width: w, Height: h}
	if move.Bounds != want || move.InsertAfter != 0 {
		t.Fatalf("Reposition() move = %+v, want bounds %+v and no sibling", move, want)
	}
}

func TestRepositionWithoutGridWindowPanics(t *testing.T) {
	g, _ := newTestGrid(t, 2, 2)
	defer func() {
		if recover() == nil {
			t.Fatal("Reposition() without grid window did not panic")
		}
	}()
	_ = g.Reposition()
}

func TestHighlightTiles_NoChangeReturnsFalse(t *testing.T) {
	g, _ := newTestGrid(t, 2, 2)
	p := tilePoint(g, 0, 1)

	rect, ok := g.HighlightTiles(p)
	if !ok {
		t.Fatal("first HighlightTiles() reported no change")
	}
	if rect != g.ZoneArea(0, 1) {
		t.Fatalf("HighlightTiles() = %+v, want %+v", rect, g.ZoneArea(0, 1))
	}
	if !g.Tile(0, 1).Hovered || g.Tile(0, 0).Hovered {
		t.Fatal("hover flags not set on exactly the tile under the cursor")
	}

	if _, ok := g.HighlightTiles(p); ok {
		t.Fatal("second HighlightTiles() at the same point reported a change")
	}
}

func TestHighlightTiles_GapKeepsHoveredTile(t *testing.T) {
	g, _ := newTestGrid(t, 2, 2)
	g.HighlightTiles(tilePoint(g, 0, 0))

	// between the two columns
	if _, ok := g.HighlightTiles(platform.Point{X: 52, Y: 20}); ok {
		t.Fatal("leaving all tiles should not yield a preview rect")
	}
	if g.Tile(0, 0).Hovered {
		t.Fatal("tile still hovered after cursor left it")
	}
	if g.HoveredTile == nil || *g.HoveredTile != (Cell{0, 0}) {
		t.Fatalf("HoveredTile = %v, want last hovered cell kept", g.HoveredTile)
	}
}

func TestShiftSpan_TopLeftToBottomRightIsMaxArea(t *testing.T) {
	g, _ := newTestGrid(t, 2, 2)
	g.SelectTile(tilePoint(g, 0, 0))
	g.ShiftDown = true

	rect, ok := g.HighlightTiles(tilePoint(g, 1, 1))
	if !ok {
		t.Fatal("HighlightTiles() reported no change")
	}
	if rect != g.MaxArea() {
		t.Fatalf("span = %+v, want MaxArea %+v", rect, g.MaxArea())
	}
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			if !g.Tile(r, c).Hovered {
				t.Fatalf("tile (%d,%d) not hovered inside span", r, c)
			}
		}
	}

	area, ok := g.SelectedArea()
	if !ok || area != g.MaxArea() {
		t.Fatalf("SelectedArea() = %+v, %v, want MaxArea", area, ok)
	}
}

func TestShiftSpan_IsSymmetric(t *testing.T) {
	const size = 3
	for ar := 0; ar < size; ar++ {
		for ac := 0; ac < size; ac++ {
			for br := 0; br < size; br++ {
				for bc := 0; bc < size; bc++ {
					ab := spanBetween(t, size, ar, ac, br, bc)
					ba := spanBetween(t, size, br, bc, ar, ac)
					if ab != ba {
						t.Fatalf("span (%d,%d)->(%d,%d) = %+v, reverse = %+v", ar, ac, br, bc, ab, ba)
					}
				}
			}
		}
	}
}

func TestShiftSpan_QuadrantBranches(t *testing.T) {
	g, _ := newTestGrid(t, 3, 3)
	tests := []struct {
		name     string
		selected Cell
		hovered  Cell
		from, to Cell
	}{
		{"down-left", Cell{0, 2}, Cell{2, 0}, Cell{0, 0}, Cell{2, 2}},
		{"up-right", Cell{2, 0}, Cell{0, 2}, Cell{0, 0}, Cell{2, 2}},
		{"down-right", Cell{1, 1}, Cell{2, 2}, Cell{1, 1}, Cell{2, 2}},
		{"same row right", Cell{1, 0}, Cell{1, 2}, Cell{1, 0}, Cell{1, 2}},
		{"up-left", Cell{2, 2}, Cell{1, 0}, Cell{1, 0}, Cell{2, 2}},
		{"same tile", Cell{1, 1}, Cell{1, 1}, Cell{1, 1}, Cell{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.Reset()
			g.SelectTile(tilePoint(g, tt.selected.Row, tt.selected.Column))
			g.CursorDown = true
			g.HighlightTiles(tilePoint(g, tt.hovered.Row, tt.hovered.Column))

			got, ok := g.SelectedArea()
			want := platform.Span(g.ZoneArea(tt.from.Row, tt.from.Column), g.ZoneArea(tt.to.Row, tt.to.Column))
			if !ok || got != want {
				t.Fatalf("SelectedArea() = %+v, %v, want %+v", got, ok, want)
			}
			for r := 0; r < 3; r++ {
				for c := 0; c < 3; c++ {
					in := r >= tt.from.Row && r <= tt.to.Row && c >= tt.from.Column && c <= tt.to.Column
					if g.Tile(r, c).Hovered != in {
						t.Fatalf("tile (%d,%d) hovered = %v, want %v", r, c, g.Tile(r, c).Hovered, in)
					}
				}
			}
		})
	}
}

func spanBetween(t *testing.T, size, sr, sc, hr, hc int) platform.Rect {
	t.Helper()
	g, _ := newTestGrid(t, size, size)
	g.SelectTile(tilePoint(g, sr, sc))
	g.ShiftDown = true
	g.HighlightTiles(tilePoint(g, hr, hc))
	rect, ok := g.SelectedArea()
	if !ok {
		t.Fatalf("no selected area for (%d,%d)->(%d,%d)", sr, sc, hr, hc)
	}
	return rect
}

func TestSelectTile(t *testing.T) {
	g, _ := newTestGrid(t, 2, 2)

	if !g.SelectTile(tilePoint(g, 1, 0)) {
		t.Fatal("first selection reported no change")
	}
	if g.SelectTile(tilePoint(g, 1, 0)) {
		t.Fatal("reselecting the same tile reported a change")
	}
	if !g.Tile(1, 0).Selected || g.Tile(0, 0).Selected {
		t.Fatal("selection flags wrong")
	}

	g.CursorDown = true
	if g.SelectTile(tilePoint(g, 0, 0)) {
		t.Fatal("selection changed while the mouse button was down")
	}
	g.CursorDown = false
	g.ShiftDown = true
	if g.SelectTile(tilePoint(g, 0, 0)) {
		t.Fatal("selection changed while shift was down")
	}
	if *g.SelectedTile != (Cell{1, 0}) {
		t.Fatalf("SelectedTile = %v, want {1 0}", *g.SelectedTile)
	}

	g.ShiftDown = false
	area, ok := g.SelectedArea()
	if !ok || area != g.ZoneArea(1, 0) {
		t.Fatalf("SelectedArea() = %+v, %v, want zone (1,0)", area, ok)
	}
}

func TestSelectedArea_NoneWithoutSelection(t *testing.T) {
	g, _ := newTestGrid(t, 2, 2)
	if _, ok := g.SelectedArea(); ok {
		t.Fatal("SelectedArea() without selection returned a rect")
	}
}

func TestReset_KeepsActiveWindowAndPreviousResize(t *testing.T) {
	g, _ := newTestGrid(t, 2, 2)
	g.GridWindow = 5
	g.ActiveWindow = 9
	g.PreviousResize = &Resize{Window: 9, Rect: platform.Rect{X: 1, Y: 2, Width: 3, Height: 4}}
	g.QuickResize = true
	g.SelectTile(tilePoint(g, 0, 0))
	g.ShiftDown, g.ControlDown, g.CursorDown = true, true, true
	g.HighlightTiles(tilePoint(g, 1, 1))

	g.Reset()

	if g.GridWindow != 0 || g.SelectedTile != nil || g.HoveredTile != nil || g.QuickResize {
		t.Fatalf("Reset() left session state: %+v", g)
	}
	if g.ShiftDown || g.ControlDown || g.CursorDown {
		t.Fatal("Reset() left modifier state")
	}
	if g.ActiveWindow != 9 || g.PreviousResize == nil || g.PreviousResize.Window != 9 {
		t.Fatal("Reset() cleared active window or previous resize")
	}
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			if g.Tile(r, c) != (Tile{}) {
				t.Fatalf("tile (%d,%d) = %+v after Reset()", r, c, g.Tile(r, c))
			}
		}
	}
}

func TestUnhighlightAndUnselect(t *testing.T) {
	g, _ := newTestGrid(t, 2, 2)
	g.SelectTile(tilePoint(g, 0, 0))
	g.HighlightTiles(tilePoint(g, 0, 0))

	g.UnhighlightAllTiles()
	if g.Tile(0, 0).Hovered || !g.Tile(0, 0).Selected {
		t.Fatal("UnhighlightAllTiles() touched the wrong flag")
	}
	g.UnselectAllTiles()
	if g.Tile(0, 0).Selected {
		t.Fatal("UnselectAllTiles() left a selected tile")
	}
}

func TestDraw_ColorPriority(t *testing.T) {
	g, _ := newTestGrid(t, 1, 3)
	g.SelectTile(tilePoint(g, 0, 0))
	g.HighlightTiles(tilePoint(g, 0, 0))
	g.tiles[0][1].Hovered = true

	var rec platformtest.Recorder
	g.Draw(&rec)

	if len(rec.Fills) != 3 || len(rec.Frames) != 3 {
		t.Fatalf("draw calls: %d fills, %d frames, want 3 each", len(rec.Fills), len(rec.Frames))
	}
	wantColors := []platform.Color{ColorSelected, ColorHovered, ColorTile}
	for i, want := range wantColors {
		if rec.Fills[i].Color != want {
			t.Errorf("tile %d fill = %+v, want %+v", i, rec.Fills[i].Color, want)
		}
		if rec.Fills[i].Rect != g.TileArea(0, i) {
			t.Errorf("tile %d fill rect = %+v, want %+v", i, rec.Fills[i].Rect, g.TileArea(0, i))
		}
		if rec.Frames[i].Color != ColorFrame {
			t.Errorf("tile %d frame colour = %+v", i, rec.Frames[i].Color)
		}
	}
}

func TestRemoveColumnForgetsCellsOutsideMatrix(t *testing.T) {
	g, _ := newTestGrid(t, 2, 3)
	g.SelectTile(tilePoint(g, 0, 2))
	g.HighlightTiles(tilePoint(g, 1, 2))

	g.RemoveColumn()
	if g.SelectedTile != nil || g.HoveredTile != nil {
		t.Fatalf("cells outside the matrix kept: selected=%v hovered=%v", g.SelectedTile, g.HoveredTile)
	}
	g.ShiftDown = true
	if _, ok := g.SelectedArea(); ok {
		t.Fatal("SelectedArea() after dropping the selected column")
	}
}

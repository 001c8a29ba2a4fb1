// Package grid implements the zone grid: the tile matrix shown in the picker
// window and the screen zones each tile maps to.
package grid

import (
	"github.com/1broseidon/wtm/internal/platform"
)

const (
	DefaultGridMargin   = 3
	DefaultZoneMargin   = 10
	DefaultBorderMargin = 10
	DefaultRows         = 2
	DefaultColumns      = 2
)

// WorkAreaFunc returns the usable area of the active monitor.
type WorkAreaFunc func() platform.Rect

// Placer moves windows on screen.
type Placer interface {
	MoveResize(id platform.WindowID, bounds platform.Rect, insertAfter platform.WindowID) error
}

// Resize remembers the rect a window occupied around its last placement.
type Resize struct {
	Window platform.WindowID
	Rect   platform.Rect
}

// Options configure a new Grid. Zero margins are taken literally; use
// DefaultOptions for the stock values.
type Options struct {
	GridMargin   int
	ZoneMargin   int
	BorderMargin int
	Rows         int
	Columns      int

	WorkArea WorkAreaFunc
	Placer   Placer
	// OnResize is called after every structural change.
	OnResize func(rows, columns int)
}

// DefaultOptions returns the stock margins with a 2x2 matrix.
func DefaultOptions() Options {
	return Options{
		GridMargin:   DefaultGridMargin,
		ZoneMargin:   DefaultZoneMargin,
		BorderMargin: DefaultBorderMargin,
		Rows:         DefaultRows,
		Columns:      DefaultColumns,
	}
}

// Grid owns the tile matrix and the interaction state of one picker session.
// It is not safe for concurrent use; the dispatch loop is its only writer.
type Grid struct {
	ShiftDown   bool
	ControlDown bool
	CursorDown  bool

	SelectedTile *Cell
	HoveredTile  *Cell

	// ActiveWindow receives placements. Zero means none.
	ActiveWindow platform.WindowID
	// GridWindow is the picker window. Zero while the picker is closed.
	GridWindow     platform.WindowID
	PreviousResize *Resize
	QuickResize    bool

	gridMargin   int
	zoneMargin   int
	borderMargin int
	tiles        [][]Tile // tiles[row][column]

	workArea WorkAreaFunc
	placer   Placer
	onResize func(rows, columns int)
}

// New builds a grid. Rows and columns below one are raised to one so the
// matrix is never empty.
func New(opts Options) *Grid {
	if opts.WorkArea == nil {
		panic("grid: New requires a WorkArea source")
	}
	rows := max(opts.Rows, 1)
	columns := max(opts.Columns, 1)

	tiles := make([][]Tile, rows)
	for i := range tiles {
		tiles[i] = make([]Tile, columns)
	}

	return &Grid{
		gridMargin:   opts.GridMargin,
		zoneMargin:   opts.ZoneMargin,
		borderMargin: opts.BorderMargin,
		tiles:        tiles,
		workArea:     opts.WorkArea,
		placer:       opts.Placer,
		onResize:     opts.OnResize,
	}
}

// Rows returns the number of tile rows.
func (g *Grid) Rows() int {
	return len(g.tiles)
}

// Columns returns the number of tile columns.
func (g *Grid) Columns() int {
	return len(g.tiles[0])
}

// Tile returns the tile at row, column.
func (g *Grid) Tile(row, column int) Tile {
	return g.tiles[row][column]
}

// Reset clears the interaction state of a closed picker session. The active
// window and the previous resize survive so maximize toggling keeps working.
func (g *Grid) Reset() {
	g.ShiftDown = false
	g.ControlDown = false
	g.CursorDown = false
	g.SelectedTile = nil
	g.HoveredTile = nil
	g.GridWindow = 0
	g.QuickResize = false

	for row := range g.tiles {
		for column := range g.tiles[row] {
			g.tiles[row][column] = Tile{}
		}
	}
}

// Dimensions returns the picker window size.
func (g *Grid) Dimensions() (width, height int) {
	return dimensions(g.Rows(), g.Columns(), g.gridMargin)
}

// ZoneArea returns the screen zone a tile maps to. Remainder pixels of the
// integer division are left unused at the right and bottom edges.
func (g *Grid) ZoneArea(row, column int) platform.Rect {
	area := g.workArea()
	rows, columns := g.Rows(), g.Columns()

	zoneWidth := (area.Width - g.borderMargin*2 - (columns-1)*g.zoneMargin) / columns
	zoneHeight := (area.Height - g.borderMargin*2 - (rows-1)*g.zoneMargin) / rows

	return platform.Rect{
		X:      column*zoneWidth + g.borderMargin + column*g.zoneMargin + area.X,
		Y:      row*zoneHeight + g.borderMargin + row*g.zoneMargin + area.Y,
		Width:  zoneWidth,
		Height: zoneHeight,
	}
}

// TileArea returns a tile's hit box inside the picker window.
func (g *Grid) TileArea(row, column int) platform.Rect {
	return tileArea(row, column, g.gridMargin)
}

// AddRow appends a row of blank tiles.
func (g *Grid) AddRow() {
	g.tiles = append(g.tiles, make([]Tile, g.Columns()))
	g.resized()
}

// AddColumn appends a blank tile to every row.
func (g *Grid) AddColumn() {
	for row := range g.tiles {
		g.tiles[row] = append(g.tiles[row], Tile{})
	}
	g.resized()
}

// RemoveRow drops the last row unless only one is left.
func (g *Grid) RemoveRow() {
	if g.Rows() > 1 {
		g.tiles = g.tiles[:len(g.tiles)-1]
	}
	g.clampCells()
	g.resized()
}

// RemoveColumn drops the last column unless only one is left.
func (g *Grid) RemoveColumn() {
	if g.Columns() > 1 {
		for row := range g.tiles {
			g.tiles[row] = g.tiles[row][:len(g.tiles[row])-1]
		}
	}
	g.clampCells()
	g.resized()
}

// clampCells forgets selected or hovered cells that fell off the matrix.
func (g *Grid) clampCells() {
	inside := func(c *Cell) bool {
		return c != nil && c.Row < g.Rows() && c.Column < g.Columns()
	}
	if g.SelectedTile != nil && !inside(g.SelectedTile) {
		g.SelectedTile = nil
	}
	if g.HoveredTile != nil && !inside(g.HoveredTile) {
		g.HoveredTile = nil
	}
}

func (g *Grid) resized() {
	if g.onResize != nil {
		g.onResize(g.Rows(), g.Columns())
	}
}

// Reposition centers the picker window on the work area at its current size.
// Callers must do this themselves after AddRow and friends. It panics when no
// picker window exists.
func (g *Grid) Reposition() error {
	if g.GridWindow == 0 {
		panic("grid: Reposition called without a grid window")
	}
	if g.placer == nil {
		panic("grid: Reposition called without a Placer")
	}
	return g.placer.MoveResize(g.GridWindow, g.PickerBounds(), 0)
}

// PickerBounds returns the work-area centered rectangle for the picker.
func (g *Grid) PickerBounds() platform.Rect {
	area := g.workArea()
	width, height := g.Dimensions()
	return platform.Rect{
		X:      area.Width/2 - width/2 + area.X,
		Y:      area.Height/2 - height/2 + area.Y,
		Width:  width,
		Height: height,
	}
}

// HighlightTiles hovers the tile under p and, while a span is being dragged,
// every tile of the span. It returns the zone to preview, or false when no
// tile changed since the previous call.
func (g *Grid) HighlightTiles(p platform.Point) (platform.Rect, bool) {
	original := g.snapshotTiles()
	var hovered *platform.Rect

	for row := range g.tiles {
		for column := range g.tiles[row] {
			if g.TileArea(row, column).ContainsPoint(p) {
				g.tiles[row][column].Hovered = true
				g.HoveredTile = &Cell{Row: row, Column: column}
				zone := g.ZoneArea(row, column)
				hovered = &zone
			} else {
				g.tiles[row][column].Hovered = false
			}
		}
	}

	if span, ok := g.shiftHoverAndCalcRect(true); ok {
		hovered = &span
	}

	if tilesEqual(original, g.tiles) || hovered == nil {
		return platform.Rect{}, false
	}
	return *hovered, true
}

// shiftHoverAndCalcRect computes the zone span between the selected and the
// hovered tile while shift or the mouse button is held. The branch order
// decides which corner anchors the span and must not be collapsed into a
// min/max bounding box.
func (g *Grid) shiftHoverAndCalcRect(highlight bool) (platform.Rect, bool) {
	if !g.ShiftDown && !g.CursorDown {
		return platform.Rect{}, false
	}
	if g.SelectedTile == nil || g.HoveredTile == nil {
		return platform.Rect{}, false
	}

	selected, hovered := *g.SelectedTile, *g.HoveredTile
	selectedZone := g.ZoneArea(selected.Row, selected.Column)
	hoveredZone := g.ZoneArea(hovered.Row, hovered.Column)

	var from, to Cell
	var rect platform.Rect

	switch {
	case hoveredZone.X < selectedZone.X && hoveredZone.Y > selectedZone.Y:
		// down-left
		from = Cell{Row: selected.Row, Column: hovered.Column}
		to = Cell{Row: hovered.Row, Column: selected.Column}
		rect = platform.Span(g.ZoneArea(from.Row, from.Column), g.ZoneArea(to.Row, to.Column))
	case hoveredZone.Y < selectedZone.Y && hoveredZone.X > selectedZone.X:
		// up-right
		from = Cell{Row: hovered.Row, Column: selected.Column}
		to = Cell{Row: selected.Row, Column: hovered.Column}
		rect = platform.Span(g.ZoneArea(from.Row, from.Column), g.ZoneArea(to.Row, to.Column))
	case hoveredZone.X > selectedZone.X || hoveredZone.Y > selectedZone.Y:
		from, to = selected, hovered
		rect = platform.Span(selectedZone, hoveredZone)
	default:
		from, to = hovered, selected
		rect = platform.Span(hoveredZone, selectedZone)
	}

	if highlight {
		for row := from.Row; row <= to.Row; row++ {
			for column := from.Column; column <= to.Column; column++ {
				g.tiles[row][column].Hovered = true
			}
		}
	}

	return rect, true
}

// SelectTile selects the tile under p. Selection is locked while shift or the
// mouse button is down. It reports whether the selected tile changed.
func (g *Grid) SelectTile(p platform.Point) bool {
	if g.CursorDown || g.ShiftDown {
		return false
	}

	previous := g.SelectedTile

	for row := range g.tiles {
		for column := range g.tiles[row] {
			if g.TileArea(row, column).ContainsPoint(p) {
				g.tiles[row][column].Selected = true
				g.SelectedTile = &Cell{Row: row, Column: column}
			} else {
				g.tiles[row][column].Selected = false
			}
		}
	}

	return !sameCell(g.SelectedTile, previous)
}

// MaxArea spans every zone of the grid.
func (g *Grid) MaxArea() platform.Rect {
	return platform.Span(g.ZoneArea(0, 0), g.ZoneArea(g.Rows()-1, g.Columns()-1))
}

// SelectedArea returns the span being dragged, else the selected zone.
func (g *Grid) SelectedArea() (platform.Rect, bool) {
	if span, ok := g.shiftHoverAndCalcRect(false); ok {
		return span, true
	}
	if g.SelectedTile != nil {
		return g.ZoneArea(g.SelectedTile.Row, g.SelectedTile.Column), true
	}
	return platform.Rect{}, false
}

// UnhighlightAllTiles clears every hover flag.
func (g *Grid) UnhighlightAllTiles() {
	for row := range g.tiles {
		for column := range g.tiles[row] {
			g.tiles[row][column].Hovered = false
		}
	}
}

// UnselectAllTiles clears every selection flag.
func (g *Grid) UnselectAllTiles() {
	for row := range g.tiles {
		for column := range g.tiles[row] {
			g.tiles[row][column].Selected = false
		}
	}
}

// Frame copies the tile matrix for painting.
func (g *Grid) Frame() *Frame {
	return &Frame{tiles: g.snapshotTiles(), gridMargin: g.gridMargin}
}

// Draw paints every tile onto c.
func (g *Grid) Draw(c platform.Canvas) {
	g.Frame().Draw(c)
}

func (g *Grid) snapshotTiles() [][]Tile {
	out := make([][]Tile, len(g.tiles))
	for i, row := range g.tiles {
		out[i] = append([]Tile(nil), row...)
	}
	return out
}

func tilesEqual(a, b [][]Tile) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

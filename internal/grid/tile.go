package grid

import "github.com/1broseidon/wtm/internal/platform"

// Picker tile size in pixels.
const (
	TileWidth  = 48
	TileHeight = 48
)

var (
	ColorSelected = platform.RGB(0, 77, 128)
	ColorHovered  = platform.RGB(0, 100, 148)
	ColorTile     = platform.RGB(178, 178, 178)
	ColorFrame    = platform.RGB(0, 0, 0)
)

// Tile is one cell of the picker. It has no identity beyond its position.
type Tile struct {
	Selected bool
	Hovered  bool
}

// Color picks the fill colour. Selected wins over hovered.
func (t Tile) Color() platform.Color {
	switch {
	case t.Selected:
		return ColorSelected
	case t.Hovered:
		return ColorHovered
	default:
		return ColorTile
	}
}

func (t Tile) draw(c platform.Canvas, area platform.Rect) {
	c.FillRect(area, t.Color())
	c.FrameRect(area, ColorFrame)
}

// Cell addresses a tile by row and column.
type Cell struct {
	Row    int
	Column int
}

func sameCell(a, b *Cell) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Frame is an immutable copy of the tile matrix used for painting outside the
// goroutine that owns the Grid.
type Frame struct {
	tiles      [][]Tile
	gridMargin int
}

// Draw fills and frames every tile.
func (f *Frame) Draw(c platform.Canvas) {
	if f == nil {
		return
	}
	for row := range f.tiles {
		for column, tile := range f.tiles[row] {
			tile.draw(c, tileArea(row, column, f.gridMargin))
		}
	}
}

func tileArea(row, column, gridMargin int) platform.Rect {
	return platform.Rect{
		X:      column*TileWidth + (column+1)*gridMargin,
		Y:      row*TileHeight + (row+1)*gridMargin,
		Width:  TileWidth,
		Height: TileHeight,
	}
}

func dimensions(rows, columns, gridMargin int) (int, int) {
	width := columns*TileWidth + (columns+1)*gridMargin
	height := rows*TileHeight + (rows+1)*gridMargin
	return width, height
}

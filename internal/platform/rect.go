package platform

import "fmt"

// Rect describes a rectangular region in screen coordinates with a top-left
// origin. Width and Height may go negative while a span is being computed.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Zero returns the empty rectangle.
func Zero() Rect {
	return Rect{}
}

// IsZero reports whether r is the empty rectangle.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// ContainsPoint is an inclusive bounds test on both edges.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// AdjustForBorder grows r to cover a window's invisible resize border. The
// border sits on the left, right and bottom edges only, so Y is unchanged.
func (r Rect) AdjustForBorder(dx, dy int) Rect {
	return Rect{
		X:      r.X - dx,
		Y:      r.Y,
		Width:  r.Width + 2*dx,
		Height: r.Height + dy,
	}
}

// Normalize flips negative extents so Width and Height are non-negative.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Right returns the x coordinate one past the right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the y coordinate one past the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Span returns the rectangle from the top-left of from to the bottom-right of to.
func Span(from, to Rect) Rect {
	return Rect{
		X:      from.X,
		Y:      from.Y,
		Width:  to.Right() - from.X,
		Height: to.Bottom() - from.Y,
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

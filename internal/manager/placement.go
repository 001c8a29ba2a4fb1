package manager

import (
	"github.com/1broseidon/wtm/internal/grid"
	"github.com/1broseidon/wtm/internal/platform"
)

// maximize toggles the target window between the full grid area and the
// rect it occupied before the previous placement. The rect read before the
// move is what gets remembered, so two presses in a row return the window
// to where it started.
func (m *TilingManager) maximize() {
	g := m.grid

	var win platform.WindowID
	if g.GridWindow != 0 {
		win = g.ActiveWindow
	} else {
		fg, err := m.backend.ForegroundWindow()
		if err != nil {
			m.log().Warn("failed to read foreground window", "error", err)
			return
		}
		g.ActiveWindow = fg
		win = fg
	}
	if win == 0 {
		m.log().Debug("maximize: no target window")
		return
	}

	current, err := m.backend.WindowRect(win)
	if err != nil {
		m.log().Warn("maximize: failed to read window rect", "window", win, "error", err)
		return
	}
	if err := m.backend.Restore(win); err != nil {
		m.log().Debug("maximize: restore failed", "window", win, "error", err)
	}

	maxRect := g.MaxArea().AdjustForBorder(m.border(win))

	target := maxRect
	if g.PreviousResize != nil && current == maxRect {
		target = g.PreviousResize.Rect
	}
	if err := m.backend.MoveResize(win, target.Normalize(), 0); err != nil {
		m.log().Warn("maximize: move failed", "window", win, "error", err)
		return
	}
	m.log().Debug("maximize", "window", win, "from", current, "to", target)

	g.PreviousResize = &grid.Resize{Window: win, Rect: current}
}

// commit places the active window on the selected area when the mouse
// button is released over the picker.
func (m *TilingManager) commit() (repaint, closePicker bool) {
	g := m.grid

	area, ok := g.SelectedArea()
	if !ok {
		return false, false
	}
	win := g.ActiveWindow
	if win == 0 {
		return true, false
	}

	target := area.AdjustForBorder(m.border(win))
	next := grid.Resize{Window: win, Rect: target}

	if g.PreviousResize == nil || *g.PreviousResize != next {
		if err := m.backend.Restore(win); err != nil {
			m.log().Debug("commit: restore failed", "window", win, "error", err)
		}
		if err := m.backend.MoveResize(win, target.Normalize(), 0); err != nil {
			m.log().Warn("commit: move failed", "window", win, "error", err)
		} else {
			m.log().Info("window placed", "window", win, "rect", target)
		}
		g.PreviousResize = &next
		closePicker = g.QuickResize
	}

	g.UnselectAllTiles()
	return true, closePicker
}

func (m *TilingManager) border(win platform.WindowID) (int, int) {
	dx, dy, err := m.backend.TransparentBorder(win)
	if err != nil {
		m.log().Debug("failed to read window border", "window", win, "error", err)
		return 0, 0
	}
	return dx, dy
}

package manager

import (
	"github.com/1broseidon/wtm/internal/event"
	"github.com/1broseidon/wtm/internal/platform"
)

// pickerInput turns native picker input into events. It runs on the
// backend's window goroutine, so it never touches the grid; painting reads
// the last published frame.
type pickerInput struct {
	m       *TilingManager
	session *session
}

var _ platform.PickerInput = (*pickerInput)(nil)

func (in *pickerInput) send(ev event.Event) {
	if in.m.activeSession.Load() != in.session {
		return
	}
	if !in.m.events.Send(ev) {
		in.session.logger.Debug("picker input dropped: event channel closed")
	}
}

func (in *pickerInput) WindowCreated(id platform.WindowID) {
	in.send(event.GridWindow{ID: id})
}

func (in *pickerInput) KeyDown(k platform.Key) { in.send(event.KeyDown{Key: k}) }
func (in *pickerInput) KeyUp(k platform.Key)   { in.send(event.KeyUp{Key: k}) }

func (in *pickerInput) MouseMove(p platform.Point) { in.send(event.MouseMove{Point: p}) }
func (in *pickerInput) MouseDown(p platform.Point) { in.send(event.MouseDown{Point: p}) }
func (in *pickerInput) MouseUp(p platform.Point)   { in.send(event.MouseUp{Point: p}) }
func (in *pickerInput) MouseLeave()                { in.send(event.MouseLeft{}) }

func (in *pickerInput) Paint(c platform.Canvas) {
	in.m.frame.Load().Draw(c)
}

func (m *TilingManager) onKeyDown(k platform.Key) {
	if m.gridWindow == 0 {
		return
	}
	g := m.grid

	switch k {
	case platform.KeyEscape:
		m.closeWindows()
		return
	case platform.KeyControl:
		g.ControlDown = true
		return
	case platform.KeyShift:
		g.ShiftDown = true
		return
	}

	if !g.ControlDown {
		return
	}
	switch k {
	case platform.KeyRight:
		g.AddColumn()
	case platform.KeyLeft:
		g.RemoveColumn()
	case platform.KeyUp:
		g.AddRow()
	case platform.KeyDown:
		g.RemoveRow()
	default:
		return
	}
	m.reposition()
	m.repaint()
}

func (m *TilingManager) onKeyUp(k platform.Key) {
	if m.gridWindow == 0 {
		return
	}
	switch k {
	case platform.KeyControl:
		m.grid.ControlDown = false
	case platform.KeyShift:
		m.grid.ShiftDown = false
	default:
		if i := k.FunctionIndex(); i >= 0 {
			if name, ok := m.cfg.ProfileForFunctionKey(i); ok {
				m.onProfileChange(name)
			}
		}
	}
}

func (m *TilingManager) onMouseMove(p platform.Point) {
	if m.gridWindow == 0 {
		return
	}
	m.onTrackMouse(m.gridWindow)

	if r, ok := m.grid.HighlightTiles(p); ok {
		m.highlightZone(r)
		m.repaint()
	}
}

func (m *TilingManager) onMouseDown(p platform.Point) {
	if m.gridWindow == 0 {
		return
	}
	changed := m.grid.SelectTile(p)
	m.grid.CursorDown = true
	if changed {
		m.repaint()
	}
}

func (m *TilingManager) onMouseUp() {
	if m.gridWindow == 0 {
		return
	}
	repaint, closePicker := m.commit()
	m.grid.CursorDown = false

	if closePicker {
		m.closeWindows()
		return
	}
	if repaint {
		m.repaint()
	}
}

package manager

import (
	"github.com/1broseidon/wtm/internal/platform"
)

// Status is a point-in-time view of the manager for IPC and MCP clients.
type Status struct {
	Profile        string         `json:"profile"`
	Profiles       []string       `json:"profiles"`
	Display        string         `json:"display"`
	WorkArea       platform.Rect  `json:"work_area"`
	Rows           int            `json:"rows"`
	Columns        int            `json:"columns"`
	PickerOpen     bool           `json:"picker_open"`
	SessionID      string         `json:"session_id,omitempty"`
	QuickResize    bool           `json:"quick_resize"`
	ActiveWindow   uint64         `json:"active_window,omitempty"`
	PreviousResize *platform.Rect `json:"previous_resize,omitempty"`
	Margin         int            `json:"margin"`
	Padding        int            `json:"padding"`
}

// Status returns the last published snapshot. Safe for use from any
// goroutine.
func (m *TilingManager) Status() Status {
	if s := m.status.Load(); s != nil {
		return *s
	}
	return Status{}
}

func (m *TilingManager) publishStatus() {
	g := m.grid
	s := &Status{
		Profile:     m.profile,
		Profiles:    append([]string(nil), m.cfg.Profiles...),
		Display:     m.display.ID,
		WorkArea:    m.display.WorkArea,
		Rows:        g.Rows(),
		Columns:     g.Columns(),
		PickerOpen:  m.session != nil,
		QuickResize: g.QuickResize,
		Margin:      m.cfg.Margin,
		Padding:     m.cfg.Padding,
	}
	if m.session != nil {
		s.SessionID = m.session.id
	}
	if g.ActiveWindow != 0 {
		s.ActiveWindow = uint64(g.ActiveWindow)
	}
	if g.PreviousResize != nil {
		r := g.PreviousResize.Rect
		s.PreviousResize = &r
	}
	m.status.Store(s)
}

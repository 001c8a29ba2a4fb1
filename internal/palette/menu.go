package palette

import (
	"fmt"
	"strings"

	"github.com/1broseidon/wtm/internal/config"
	"github.com/1broseidon/wtm/internal/manager"
)

// Actions understood by Dispatch. Profile rows carry "profile:<name>".
const (
	ActionOpen     = "open"
	ActionQuick    = "quick"
	ActionMaximize = "maximize"
	ActionMinimize = "minimize"
	ActionReload   = "reload"

	profilePrefix = "profile:"
)

// Controller is the daemon surface the palette drives.
type Controller interface {
	Status() (manager.Status, error)
	Hotkey(kind string) error
	SwitchProfile(name string) error
	Reload() error
}

// BuildItems lists the actions and the profiles of s, marking the active
// profile.
func BuildItems(s manager.Status) []Item {
	items := []Item{
		{Label: "Open zone picker", Action: ActionOpen},
		{Label: "Quick resize", Action: ActionQuick},
		{Label: "Maximize / restore window", Action: ActionMaximize},
		{Label: "Minimize window", Action: ActionMinimize},
		{Label: "Reload configuration", Action: ActionReload},
	}
	if len(s.Profiles) == 0 {
		return items
	}
	items = append(items, Item{Label: "Profiles", IsHeader: true})
	for i, name := range s.Profiles {
		items = append(items, Item{
			Label:    fmt.Sprintf("F%d  %s", i+1, name),
			Action:   profilePrefix + name,
			IsActive: name == s.Profile,
		})
	}
	return items
}

// Message summarises the grid state for the launcher's message bar.
func Message(s manager.Status) string {
	display := s.Display
	if display == "" {
		display = "unknown display"
	}
	return fmt.Sprintf("%s: %dx%d grid, profile %s", display, s.Rows, s.Columns, s.Profile)
}

// Dispatch performs action against ctl.
func Dispatch(ctl Controller, action string) error {
	switch action {
	case ActionOpen:
		return ctl.Hotkey(config.CommandMain)
	case ActionQuick:
		return ctl.Hotkey(config.CommandQuickResize)
	case ActionMaximize:
		return ctl.Hotkey(config.CommandMaximize)
	case ActionMinimize:
		return ctl.Hotkey(config.CommandMinimize)
	case ActionReload:
		return ctl.Reload()
	}
	if name, ok := strings.CutPrefix(action, profilePrefix); ok && name != "" {
		return ctl.SwitchProfile(name)
	}
	return fmt.Errorf("palette: unknown action %q", action)
}

// Run shows the menu once and dispatches the selection. Headers picked on
// launchers without non-selectable rows re-show the menu.
func Run(b Backend, ctl Controller) error {
	status, err := ctl.Status()
	if err != nil {
		return err
	}
	items := BuildItems(status)
	msg := Message(status)

	for {
		item, err := b.Show("wtm", items, msg)
		if err != nil {
			return err
		}
		if item.IsHeader {
			continue
		}
		return Dispatch(ctl, item.Action)
	}
}

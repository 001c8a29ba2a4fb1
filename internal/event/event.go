// Package event defines the messages that flow from producers (hotkeys, the
// picker window, monitor and foreground watchers, IPC) to the dispatch loop.
package event

import (
	"fmt"
	"strings"

	"github.com/1broseidon/wtm/internal/config"
	"github.com/1broseidon/wtm/internal/platform"
)

// Event is one message on the channel. The concrete type selects the handler.
type Event interface {
	isEvent()
}

// PreviewWindow reports that the zone preview overlay exists.
type PreviewWindow struct{ ID platform.WindowID }

// GridWindow reports that the picker window exists.
type GridWindow struct{ ID platform.WindowID }

// HighlightZone asks for the preview overlay to cover Rect.
type HighlightZone struct{ Rect platform.Rect }

// HotkeyPressed reports a global hotkey.
type HotkeyPressed struct{ Kind HotkeyKind }

// TrackMouse asks for a mouse-leave notification on the picker window.
type TrackMouse struct{ ID platform.WindowID }

// ActiveWindowChange reports a new foreground window.
type ActiveWindowChange struct{ ID platform.WindowID }

// ProfileChange switches the active grid profile.
type ProfileChange struct{ Name string }

// MonitorChange reports that the active display changed identity.
type MonitorChange struct{}

// MouseLeft reports that the cursor left the picker window.
type MouseLeft struct{}

// InitializeWindows opens the picker.
type InitializeWindows struct{}

// CloseWindows closes the picker and preview.
type CloseWindows struct{}

// KeyDown is a key press inside the picker.
type KeyDown struct{ Key platform.Key }

// KeyUp is a key release inside the picker.
type KeyUp struct{ Key platform.Key }

// MouseMove is a cursor move inside the picker, in window coordinates.
type MouseMove struct{ Point platform.Point }

// MouseDown is a button press inside the picker.
type MouseDown struct{ Point platform.Point }

// MouseUp is a button release inside the picker.
type MouseUp struct{ Point platform.Point }

// ReloadConfig swaps the running configuration.
type ReloadConfig struct{ Config *config.Config }

// Exit stops the dispatch loop.
type Exit struct{}

func (PreviewWindow) isEvent()      {}
func (GridWindow) isEvent()         {}
func (HighlightZone) isEvent()      {}
func (HotkeyPressed) isEvent()      {}
func (TrackMouse) isEvent()         {}
func (ActiveWindowChange) isEvent() {}
func (ProfileChange) isEvent()      {}
func (MonitorChange) isEvent()      {}
func (MouseLeft) isEvent()          {}
func (InitializeWindows) isEvent()  {}
func (CloseWindows) isEvent()       {}
func (KeyDown) isEvent()            {}
func (KeyUp) isEvent()              {}
func (MouseMove) isEvent()          {}
func (MouseDown) isEvent()          {}
func (MouseUp) isEvent()            {}
func (ReloadConfig) isEvent()       {}
func (Exit) isEvent()               {}

// HotkeyKind names the action bound to a global hotkey.
type HotkeyKind int

const (
	Main HotkeyKind = iota
	QuickResize
	Maximize
	Minimize
)

var hotkeyKindNames = map[HotkeyKind]string{
	Main:        config.CommandMain,
	QuickResize: config.CommandQuickResize,
	Maximize:    config.CommandMaximize,
	Minimize:    config.CommandMinimize,
}

func (k HotkeyKind) String() string {
	if name, ok := hotkeyKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("HotkeyKind(%d)", int(k))
}

// ParseHotkeyKind maps a keybind command name to its kind.
func ParseHotkeyKind(s string) (HotkeyKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for kind, n := range hotkeyKindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown hotkey command %q", s)
}

package mcp

import "github.com/1broseidon/wtm/internal/platform"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Profile        string         `json:"profile"`
	Profiles       []string       `json:"profiles"`
	Display        string         `json:"display"`
	WorkArea       platform.Rect  `json:"work_area"`
	Rows           int            `json:"rows"`
	Columns        int            `json:"columns"`
	PickerOpen     bool           `json:"picker_open"`
	QuickResize    bool           `json:"quick_resize"`
	ActiveWindow   uint64         `json:"active_window,omitempty"`
	PreviousResize *platform.Rect `json:"previous_resize,omitempty"`
	UptimeSeconds  int64          `json:"uptime_seconds"`
}

// ActionInput is the input for tools that take no arguments.
type ActionInput struct{}

// ActionOutput reports what an action tool did.
type ActionOutput struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// SwitchProfileInput is the input for the switch_profile tool.
type SwitchProfileInput struct {
	Name string `json:"name" jsonschema:"Profile name as listed by get_status (F1..F6 order)"`
}

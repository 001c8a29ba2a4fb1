package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/wtm/internal/platform"
)

// Keybind commands.
const (
	CommandMain        = "main"
	CommandQuickResize = "quick_resize"
	CommandMaximize    = "maximize"
	CommandMinimize    = "minimize"
)

// ProfileCount is the number of grid profiles reachable through F1..F6.
const ProfileCount = 6

// Keybind binds a global hotkey string (e.g. "CTRL+ALT+S") to a command.
type Keybind struct {
	Hotkey  string `yaml:"hotkey"`
	Command string `yaml:"command"`
}

// Config is the effective daemon configuration.
type Config struct {
	// Margin is the gap between zones in pixels.
	Margin int `yaml:"margin"`
	// Padding is the gap between the work area edge and the outer zones.
	Padding   int    `yaml:"padding"`
	AutoStart bool   `yaml:"auto_start"`
	LogLevel  string `yaml:"log_level"`
	// Display overrides $DISPLAY for the X11 backend.
	Display  string    `yaml:"display,omitempty"`
	Keybinds []Keybind `yaml:"keybinds"`
	// Profiles names the grid profiles selected by F1..F6.
	Profiles []string `yaml:"profiles"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Margin:    10,
		Padding:   10,
		AutoStart: false,
		LogLevel:  "info",
		Keybinds:  defaultKeybinds(),
		Profiles:  defaultProfiles(),
	}
}

func defaultKeybinds() []Keybind {
	return []Keybind{
		{Hotkey: "CTRL+ALT+S", Command: CommandMain},
		{Hotkey: "CTRL+ALT+Q", Command: CommandQuickResize},
		{Hotkey: "CTRL+ALT+F", Command: CommandMaximize},
		{Hotkey: "CTRL+ALT+M", Command: CommandMinimize},
	}
}

func defaultProfiles() []string {
	return []string{"Default", "Profile2", "Profile3", "Profile4", "Profile5", "Profile6"}
}

// DefaultProfile is the profile active at startup.
func (c *Config) DefaultProfile() string {
	if c == nil || len(c.Profiles) == 0 {
		return "Default"
	}
	return c.Profiles[0]
}

// ProfileForFunctionKey returns the profile bound to F1..F6 (index 0..5).
func (c *Config) ProfileForFunctionKey(index int) (string, bool) {
	if c == nil || index < 0 || index >= len(c.Profiles) {
		return "", false
	}
	return c.Profiles[index], true
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	if c == nil {
		return slog.LevelInfo
	}
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SaveTo validates and writes the configuration to path. Comments and
// includes of an existing file are not preserved.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Margin < 0 || c.Margin > 255 {
		return &ValidationError{Path: "margin", Err: fmt.Errorf("margin must be between 0 and 255")}
	}
	if c.Padding < 0 || c.Padding > 255 {
		return &ValidationError{Path: "padding", Err: fmt.Errorf("padding must be between 0 and 255")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}

	seen := make(map[string]int, len(c.Keybinds))
	for i, kb := range c.Keybinds {
		path := fmt.Sprintf("keybinds.%d", i)
		hk, err := platform.ParseHotkey(kb.Hotkey)
		if err != nil {
			return &ValidationError{Path: path + ".hotkey", Err: err}
		}
		switch kb.Command {
		case CommandMain, CommandQuickResize, CommandMaximize, CommandMinimize:
		default:
			return &ValidationError{Path: path + ".command", Err: fmt.Errorf("command must be one of: main, quick_resize, maximize, minimize")}
		}
		if prev, ok := seen[hk.String()]; ok {
			return &ValidationError{Path: path + ".hotkey", Err: fmt.Errorf("hotkey %s is already bound by keybinds.%d", hk, prev)}
		}
		seen[hk.String()] = i
	}

	if len(c.Profiles) != ProfileCount {
		return &ValidationError{Path: "profiles", Err: fmt.Errorf("profiles must list exactly %d names", ProfileCount)}
	}
	names := make(map[string]struct{}, len(c.Profiles))
	for i, name := range c.Profiles {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: fmt.Sprintf("profiles.%d", i), Err: fmt.Errorf("profile name must not be empty")}
		}
		if _, dup := names[name]; dup {
			return &ValidationError{Path: fmt.Sprintf("profiles.%d", i), Err: fmt.Errorf("duplicate profile name %q", name)}
		}
		names[name] = struct{}{}
	}

	return nil
}

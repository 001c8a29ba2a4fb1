package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one config file as written. Nil fields were not set and fall
// through to includes or defaults.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	Margin    *int       `yaml:"margin"`
	Padding   *int       `yaml:"padding"`
	AutoStart *bool      `yaml:"auto_start"`
	LogLevel  *string    `yaml:"log_level"`
	Display   *string    `yaml:"display"`
	Keybinds  *[]Keybind `yaml:"keybinds"`
	Profiles  *[]string  `yaml:"profiles"`
}

// merge overlays non-nil fields of overlay onto c. Lists replace wholesale.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.Margin != nil {
		out.Margin = overlay.Margin
	}
	if overlay.Padding != nil {
		out.Padding = overlay.Padding
	}
	if overlay.AutoStart != nil {
		out.AutoStart = overlay.AutoStart
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.Keybinds != nil {
		kb := append([]Keybind(nil), (*overlay.Keybinds)...)
		out.Keybinds = &kb
	}
	if overlay.Profiles != nil {
		p := append([]string(nil), (*overlay.Profiles)...)
		out.Profiles = &p
	}
	return out
}

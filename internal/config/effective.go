package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Margin != nil {
		cfg.Margin = *raw.Margin
	}
	if raw.Padding != nil {
		cfg.Padding = *raw.Padding
	}
	if raw.AutoStart != nil {
		cfg.AutoStart = *raw.AutoStart
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
		if cfg.LogLevel == "warn" {
			cfg.LogLevel = "warning"
		}
	}
	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.Keybinds != nil {
		cfg.Keybinds = make([]Keybind, 0, len(*raw.Keybinds))
		for _, kb := range *raw.Keybinds {
			cfg.Keybinds = append(cfg.Keybinds, Keybind{
				Hotkey:  strings.TrimSpace(kb.Hotkey),
				Command: strings.ToLower(strings.TrimSpace(kb.Command)),
			})
		}
	}
	if raw.Profiles != nil {
		profiles := *raw.Profiles
		if len(profiles) > ProfileCount {
			return nil, &ValidationError{Path: "profiles", Err: fmt.Errorf("at most %d profiles are supported", ProfileCount)}
		}
		// Short lists keep the default names for the remaining function keys.
		merged := defaultProfiles()
		for i, name := range profiles {
			merged[i] = strings.TrimSpace(name)
		}
		cfg.Profiles = merged
	}

	return cfg, nil
}

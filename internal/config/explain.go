package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	margin
//	padding
//	auto_start
//	log_level
//	display
//	keybinds
//	keybinds.<n>.hotkey
//	keybinds.<n>.command
//	profiles
//	profiles.<n>
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	scalar := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "margin":
		return scalar(cfg.Margin)
	case "padding":
		return scalar(cfg.Padding)
	case "auto_start":
		return scalar(cfg.AutoStart)
	case "log_level":
		return scalar(cfg.LogLevel)
	case "display":
		return scalar(cfg.Display)
	case "keybinds":
		if len(parts) == 1 {
			return cfg.Keybinds, nil
		}
		i, err := index(parts[1], len(cfg.Keybinds))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(parts) == 2 {
			return cfg.Keybinds[i], nil
		}
		if len(parts) == 3 {
			switch parts[2] {
			case "hotkey":
				return cfg.Keybinds[i].Hotkey, nil
			case "command":
				return cfg.Keybinds[i].Command, nil
			}
		}
	case "profiles":
		if len(parts) == 1 {
			return cfg.Profiles, nil
		}
		if len(parts) == 2 {
			i, err := index(parts[1], len(cfg.Profiles))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return cfg.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}

func index(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("index %q is not a number", s)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index %d out of range (have %d)", i, n)
	}
	return i, nil
}

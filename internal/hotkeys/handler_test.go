package hotkeys

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/1broseidon/wtm/internal/config"
	"github.com/1broseidon/wtm/internal/event"
	"github.com/1broseidon/wtm/internal/platform"
	"github.com/1broseidon/wtm/internal/platform/platformtest"
)

func newHandler(t *testing.T) (*Handler, *platformtest.Backend, *event.Channel) {
	t.Helper()
	b := platformtest.New()
	ch := event.NewChannel()
	return NewHandler(b, ch, slog.New(slog.NewTextHandler(io.Discard, nil))), b, ch
}

func TestRegisterAll_DefaultsSendHotkeyEvents(t *testing.T) {
	h, b, ch := newHandler(t)
	if err := h.RegisterAll(config.DefaultConfig().Keybinds); err != nil {
		t.Fatalf("RegisterAll() error: %v", err)
	}
	if got := len(b.Hotkeys()); got != 4 {
		t.Fatalf("registered %d hotkeys, want 4", got)
	}

	tests := []struct {
		hotkey string
		want   event.HotkeyKind
	}{
		{hotkey: "CTRL+ALT+S", want: event.Main},
		{hotkey: "CTRL+ALT+Q", want: event.QuickResize},
		{hotkey: "CTRL+ALT+F", want: event.Maximize},
		{hotkey: "CTRL+ALT+M", want: event.Minimize},
	}
	for _, tt := range tests {
		hk, err := platform.ParseHotkey(tt.hotkey)
		if err != nil {
			t.Fatalf("ParseHotkey(%q): %v", tt.hotkey, err)
		}
		if !b.PressHotkey(hk) {
			t.Fatalf("%s not registered", tt.hotkey)
		}
		ev, ok := ch.TryRecv()
		if !ok {
			t.Fatalf("%s produced no event", tt.hotkey)
		}
		if ev != (event.HotkeyPressed{Kind: tt.want}) {
			t.Fatalf("%s produced %#v, want kind %v", tt.hotkey, ev, tt.want)
		}
	}

	bindings := h.Bindings()
	if len(bindings) != 4 || bindings[0].Kind != event.Main {
		t.Fatalf("Bindings() = %#v", bindings)
	}
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name string
		kb   config.Keybind
		want string
	}{
		{name: "too short", kb: config.Keybind{Hotkey: "S", Command: "main"}, want: "invalid hotkey"},
		{name: "bad command", kb: config.Keybind{Hotkey: "CTRL+S", Command: "nope"}, want: "unknown hotkey command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newHandler(t)
			err := h.Register(tt.kb)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Register() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestRegister_DuplicateReportsAlreadyRunning(t *testing.T) {
	h, _, _ := newHandler(t)
	kb := config.Keybind{Hotkey: "CTRL+ALT+S", Command: "main"}
	if err := h.Register(kb); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}
	err := h.Register(kb)
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("second Register() error = %v", err)
	}
	if len(h.Bindings()) != 1 {
		t.Fatalf("failed registration was recorded")
	}
}

func TestHotkeyAfterChannelClosedDoesNotBlock(t *testing.T) {
	h, b, ch := newHandler(t)
	if err := h.Register(config.Keybind{Hotkey: "CTRL+ALT+S", Command: "main"}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	ch.Close()
	hk, _ := platform.ParseHotkey("CTRL+ALT+S")
	b.PressHotkey(hk)
}

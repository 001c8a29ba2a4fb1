package hotkeys

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/wtm/internal/config"
	"github.com/1broseidon/wtm/internal/event"
	"github.com/1broseidon/wtm/internal/platform"
)

// Registrar binds global hotkeys.
type Registrar interface {
	RegisterHotkey(hk platform.Hotkey, fn func()) error
}

// Sink receives hotkey events.
type Sink interface {
	Send(ev event.Event) bool
}

// Binding is one registered hotkey.
type Binding struct {
	Hotkey platform.Hotkey
	Kind   event.HotkeyKind
}

// Handler manages global keyboard shortcuts
type Handler struct {
	registrar Registrar
	sink      Sink
	logger    *slog.Logger
	bindings  []Binding
}

// NewHandler creates a new hotkey handler.
func NewHandler(registrar Registrar, sink Sink, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		registrar: registrar,
		sink:      sink,
		logger:    logger,
	}
}

// RegisterAll registers every keybind. It stops at the first failure; a
// failure usually means another program (or a second daemon) owns the combo.
func (h *Handler) RegisterAll(keybinds []config.Keybind) error {
	for _, kb := range keybinds {
		if err := h.Register(kb); err != nil {
			return err
		}
	}
	return nil
}

// Register binds one keybind to a HotkeyPressed event.
func (h *Handler) Register(kb config.Keybind) error {
	hk, err := platform.ParseHotkey(kb.Hotkey)
	if err != nil {
		return fmt.Errorf("invalid hotkey <%s>: %w", kb.Hotkey, err)
	}
	kind, err := event.ParseHotkeyKind(kb.Command)
	if err != nil {
		return fmt.Errorf("hotkey <%s>: %w", kb.Hotkey, err)
	}

	if err := h.RegisterFunc(hk, func() {
		h.logger.Debug("hotkey triggered", "hotkey", hk.String(), "command", kind.String())
		if !h.sink.Send(event.HotkeyPressed{Kind: kind}) {
			h.logger.Info("hotkey dropped: event channel closed", "hotkey", hk.String())
		}
	}); err != nil {
		return fmt.Errorf("failed to assign hotkey <%s>; either wtm is already running or the hotkey is taken by another program: %w", kb.Hotkey, err)
	}

	h.bindings = append(h.bindings, Binding{Hotkey: hk, Kind: kind})
	h.logger.Info("hotkey registered", "hotkey", hk.String(), "command", kind.String())
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(hk platform.Hotkey, callback func()) error {
	return h.registrar.RegisterHotkey(hk, callback)
}

// Bindings returns the registered hotkeys in registration order.
func (h *Handler) Bindings() []Binding {
	return append([]Binding(nil), h.bindings...)
}

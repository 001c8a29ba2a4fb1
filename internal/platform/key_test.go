package platform

import (
	"strings"
	"testing"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		in      string
		want    Hotkey
		wantSeq string
	}{
		{"CTRL+ALT+S", Hotkey{Modifiers: ModCtrl | ModAlt, Key: 'S'}, "Control-Mod1-s"},
		{"alt + q", Hotkey{Modifiers: ModAlt, Key: 'Q'}, "Mod1-q"},
		{"WIN+SHIFT+CTRL+ALT+M", Hotkey{Modifiers: ModWin | ModShift | ModCtrl | ModAlt, Key: 'M'}, "Control-Mod1-Shift-Mod4-m"},
		{"CTRL+ALT+,", Hotkey{Modifiers: ModCtrl | ModAlt, Key: ','}, "Control-Mod1-comma"},
		{"CTRL+-", Hotkey{Modifiers: ModCtrl, Key: '-'}, "Control-minus"},
		{"WIN+\\", Hotkey{Modifiers: ModWin, Key: '\\'}, "Mod4-backslash"},
		{"ALT+7", Hotkey{Modifiers: ModAlt, Key: '7'}, "Mod1-7"},
	}
	for _, tt := range tests {
		got, err := ParseHotkey(tt.in)
		if err != nil {
			t.Fatalf("ParseHotkey(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseHotkey(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
		if seq := got.KeySequence(); seq != tt.wantSeq {
			t.Errorf("KeySequence() = %q, want %q", seq, tt.wantSeq)
		}
	}
}

func TestParseHotkey_Errors(t *testing.T) {
	tests := []struct {
		in      string
		wantErr string
	}{
		{"S", "between 2 to 5"},
		{"CTRL+ALT+SHIFT+WIN+CTRL+S", "between 2 to 5"},
		{"HYPER+S", "unidentified modifier"},
		{"CTRL+Enter", "single character"},
		{"CTRL+", "single character"},
		{"CTRL+é", "ASCII punctuation"},
		{"CTRL+§", "ASCII punctuation"},
	}
	for _, tt := range tests {
		_, err := ParseHotkey(tt.in)
		if err == nil {
			t.Fatalf("ParseHotkey(%q) expected error", tt.in)
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("ParseHotkey(%q) error = %v, want substring %q", tt.in, err, tt.wantErr)
		}
	}
}

func TestHotkey_StringRoundTrip(t *testing.T) {
	hk, err := ParseHotkey("alt+ctrl+d")
	if err != nil {
		t.Fatalf("ParseHotkey error: %v", err)
	}
	if got := hk.String(); got != "CTRL+ALT+D" {
		t.Fatalf("String() = %q, want CTRL+ALT+D", got)
	}
}

func TestKey_FunctionIndex(t *testing.T) {
	if KeyF1.FunctionIndex() != 0 || KeyF6.FunctionIndex() != 5 {
		t.Fatalf("unexpected function index for F1/F6")
	}
	if KeyEscape.FunctionIndex() != -1 {
		t.Fatalf("Escape should not be a function key")
	}
	if KeyF3.String() != "F3" {
		t.Fatalf("KeyF3.String() = %q", KeyF3.String())
	}
}

func TestPunctuationKeysymsAreSingleTokens(t *testing.T) {
	for r, name := range punctuationKeysyms {
		if name == "" || strings.ContainsAny(name, "-+ ") {
			t.Errorf("keysym for %q = %q, want a bare keybind token", r, name)
		}
	}
}

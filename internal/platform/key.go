package platform

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Key identifies the picker keys the tiling manager reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyControl
	KeyShift
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
)

func (k Key) String() string {
	switch k {
	case KeyEscape:
		return "Escape"
	case KeyControl:
		return "Control"
	case KeyShift:
		return "Shift"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6:
		return fmt.Sprintf("F%d", int(k-KeyF1)+1)
	default:
		return "Unknown"
	}
}

// FunctionIndex returns 0 for F1 through 5 for F6, or -1 for any other key.
func (k Key) FunctionIndex() int {
	if k >= KeyF1 && k <= KeyF6 {
		return int(k - KeyF1)
	}
	return -1
}

// Modifier is a bit set of hotkey modifiers.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModWin
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "CTRL"},
	{ModAlt, "ALT"},
	{ModShift, "SHIFT"},
	{ModWin, "WIN"},
}

// Hotkey is a parsed global key combination such as CTRL+ALT+S.
type Hotkey struct {
	Modifiers Modifier
	// Key is the single upper-cased character that triggers the hotkey.
	Key rune
}

// ParseHotkey parses a MOD+MOD+KEY combination. Between 2 and 5 parts are
// accepted; every part but the last must be one of CTRL, ALT, SHIFT or WIN.
func ParseHotkey(s string) (Hotkey, error) {
	parts := strings.Split(s, "+")
	if len(parts) < 2 || len(parts) > 5 {
		return Hotkey{}, fmt.Errorf("invalid hotkey %q: combination must be between 2 to 5 keys long", s)
	}

	var hk Hotkey
	for _, part := range parts[:len(parts)-1] {
		name := strings.ToUpper(strings.TrimSpace(part))
		found := false
		for _, m := range modifierNames {
			if m.name == name {
				hk.Modifiers |= m.mod
				found = true
				break
			}
		}
		if !found {
			return Hotkey{}, fmt.Errorf("invalid hotkey %q: unidentified modifier %q (valid modifiers are CTRL, ALT, SHIFT, WIN)", s, strings.TrimSpace(part))
		}
	}

	last := strings.TrimSpace(parts[len(parts)-1])
	if utf8.RuneCountInString(last) != 1 {
		return Hotkey{}, fmt.Errorf("invalid hotkey %q: key %q must be a single character", s, last)
	}
	r, _ := utf8.DecodeRuneInString(last)
	if _, ok := keysymName(r); !ok {
		return Hotkey{}, fmt.Errorf("invalid hotkey %q: key %q must be a letter, digit or ASCII punctuation", s, last)
	}
	hk.Key = unicode.ToUpper(r)
	return hk, nil
}

// punctuationKeysyms names the X keysym of every ASCII punctuation key.
var punctuationKeysyms = map[rune]string{
	'!': "exclam", '"': "quotedbl", '#': "numbersign", '$': "dollar",
	'%': "percent", '&': "ampersand", '\'': "apostrophe", '(': "parenleft",
	')': "parenright", '*': "asterisk", ',': "comma", '-': "minus",
	'.': "period", '/': "slash", ':': "colon", ';': "semicolon",
	'<': "less", '=': "equal", '>': "greater", '?': "question",
	'@': "at", '[': "bracketleft", '\\': "backslash", ']': "bracketright",
	'^': "asciicircum", '_': "underscore", '`': "grave", '{': "braceleft",
	'|': "bar", '}': "braceright", '~': "asciitilde",
}

// keysymName returns the keysym spelling of r, or false when r cannot be
// bound on every backend.
func keysymName(r rune) (string, bool) {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return string(r), true
	case r >= 'A' && r <= 'Z':
		return string(unicode.ToLower(r)), true
	}
	name, ok := punctuationKeysyms[r]
	return name, ok
}

func (h Hotkey) String() string {
	var b strings.Builder
	for _, m := range modifierNames {
		if h.Modifiers&m.mod != 0 {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteRune(h.Key)
	return b.String()
}

// KeySequence renders the hotkey in xgbutil keybind notation, e.g.
// "Control-Mod1-s" or "Control-comma".
func (h Hotkey) KeySequence() string {
	var parts []string
	if h.Modifiers&ModCtrl != 0 {
		parts = append(parts, "Control")
	}
	if h.Modifiers&ModAlt != 0 {
		parts = append(parts, "Mod1")
	}
	if h.Modifiers&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if h.Modifiers&ModWin != 0 {
		parts = append(parts, "Mod4")
	}
	name, ok := keysymName(h.Key)
	if !ok {
		name = string(unicode.ToLower(h.Key))
	}
	parts = append(parts, name)
	return strings.Join(parts, "-")
}

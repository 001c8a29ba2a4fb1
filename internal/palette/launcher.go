package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

type launcherKind int

const (
	kindRofi launcherKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

// launcher runs a dmenu-compatible program with the items on stdin.
type launcher struct {
	command string
	kind    launcherKind
	// indexOutput launchers print the selected row index instead of its text.
	indexOutput bool
	markup      bool
}

func newLauncher(name string) (*launcher, bool) {
	switch name {
	case "rofi":
		return &launcher{command: "rofi", kind: kindRofi, indexOutput: true, markup: true}, true
	case "fuzzel":
		return &launcher{command: "fuzzel", kind: kindFuzzel, indexOutput: true}, true
	case "wofi":
		return &launcher{command: "wofi", kind: kindWofi, markup: true}, true
	case "dmenu":
		return &launcher{command: "dmenu", kind: kindDmenu}, true
	}
	return nil, false
}

func (l *launcher) Show(prompt string, items []Item, message string) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	rows := make([]Item, len(items))
	copy(rows, items)
	input, selected := l.formatInput(rows)

	cmd := exec.Command(l.command, l.buildArgs(prompt, message, rows, selected)...)
	cmd.Stdin = strings.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", l.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", l.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return l.parseSelection(selection, rows)
}

func (l *launcher) buildArgs(prompt, message string, rows []Item, selected int) []string {
	var args []string

	switch l.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-p", prompt, "-format", "i", "-no-custom", "-markup-rows"}
		var active []string
		for i, r := range rows {
			if r.IsActive && !r.IsHeader {
				active = append(active, strconv.Itoa(i))
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","))
		}
		if selected >= 0 {
			args = append(args, "-selected-row", strconv.Itoa(selected))
		}
		if message != "" {
			args = append(args, "-mesg", message)
		}
	case kindFuzzel:
		args = []string{"--dmenu", "--prompt", prompt, "--index"}
	case kindWofi:
		args = []string{"--dmenu", "--prompt", prompt, "--allow-markup"}
	case kindDmenu:
		args = []string{"-i", "-p", prompt}
	}
	return args
}

// formatInput renders one line per row and returns the row to preselect:
// the first active selectable row, else the first selectable one.
func (l *launcher) formatInput(rows []Item) (string, int) {
	// Text-output launchers select by label, so labels must be unique.
	if !l.indexOutput {
		seen := make(map[string]int)
		for i := range rows {
			if rows[i].IsHeader {
				continue
			}
			key := sanitizeLabel(rows[i].Label)
			if n := seen[key]; n > 0 {
				rows[i].Label = fmt.Sprintf("%s (%d)", key, n+1)
			}
			seen[key]++
		}
	}

	lines := make([]string, len(rows))
	first, firstActive := -1, -1
	for i, r := range rows {
		lines[i] = l.formatRow(r)
		if r.IsHeader {
			continue
		}
		if first == -1 {
			first = i
		}
		if r.IsActive && firstActive == -1 {
			firstActive = i
		}
	}
	if firstActive != -1 {
		return strings.Join(lines, "\n"), firstActive
	}
	return strings.Join(lines, "\n"), first
}

func (l *launcher) formatRow(r Item) string {
	display := sanitizeLabel(r.Label)
	if l.markup {
		display = html.EscapeString(display)
		if r.IsHeader {
			display = "<b>" + display + "</b>"
		}
	}
	// rofi row options: one NUL, then key\x1fvalue.
	if l.kind == kindRofi && r.IsHeader {
		return display + "\x00nonselectable\x1ftrue"
	}
	return display
}

func (l *launcher) parseSelection(selection string, rows []Item) (Item, error) {
	if l.indexOutput {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(rows) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return rows[idx], nil
		}
	}
	for _, r := range rows {
		if sanitizeLabel(r.Label) == selection {
			return r, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\x00", " ")
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

// isCancelExit reports the "no selection" (1) and Ctrl+C (130) exits.
func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	}
	return false
}

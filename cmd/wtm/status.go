package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/wtm/internal/ipc"
)

func runStatus(args []string, stdout io.Writer, client controlClient) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wtm status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprint(stdout, renderStatus(status, isTerminal(stdout)))
	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type statusRow struct {
	label string
	value string
}

func statusRows(s *ipc.StatusData) []statusRow {
	previous := "-"
	if s.PreviousResize != nil {
		previous = s.PreviousResize.String()
	}
	active := "-"
	if s.ActiveWindow != 0 {
		active = fmt.Sprintf("0x%x", s.ActiveWindow)
	}
	return []statusRow{
		{"daemon_running", strconv.FormatBool(s.DaemonRunning)},
		{"uptime_seconds", strconv.FormatInt(s.UptimeSeconds, 10)},
		{"profile", s.Profile},
		{"profiles", strings.Join(s.Profiles, ", ")},
		{"display", s.Display},
		{"work_area", s.WorkArea.String()},
		{"grid", fmt.Sprintf("%dx%d", s.Rows, s.Columns)},
		{"margin", strconv.Itoa(s.Margin)},
		{"padding", strconv.Itoa(s.Padding)},
		{"picker_open", strconv.FormatBool(s.PickerOpen)},
		{"quick_resize", strconv.FormatBool(s.QuickResize)},
		{"active_window", active},
		{"previous_resize", previous},
	}
}

// renderStatus prints one "label: value" line per field. Styled output is
// meant for terminals only.
func renderStatus(s *ipc.StatusData, styled bool) string {
	rows := statusRows(s)
	if !styled {
		var b strings.Builder
		for _, r := range rows {
			fmt.Fprintf(&b, "%-16s%s\n", r.label+":", r.value)
		}
		return b.String()
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(18).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("wtm")

	lines := []string{header, ""}
	for _, r := range rows {
		lines = append(lines, labelStyle.Render(r.label)+valueStyle.Render(r.value))
	}
	return strings.Join(lines, "\n") + "\n"
}

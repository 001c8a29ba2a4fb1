package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/wtm/internal/config"
	"github.com/1broseidon/wtm/internal/ipc"
)

// controlClient is the daemon surface the CLI drives; *ipc.Client in
// production.
type controlClient interface {
	GetStatus() (*ipc.StatusData, error)
	Hotkey(kind string) error
	SwitchProfile(name string) error
	Reload() error
	Stop() error
}

func newClient() controlClient {
	return ipc.NewClient()
}

var hotkeyCommands = map[string]struct {
	kind string
	help string
}{
	"open":     {config.CommandMain, "Toggle the zone picker on the active monitor."},
	"quick":    {config.CommandQuickResize, "Open the picker; it closes after the first placement."},
	"maximize": {config.CommandMaximize, "Maximize the foreground window to the work area, or restore it."},
	"minimize": {config.CommandMinimize, "Minimize the foreground window."},
}

func runHotkey(name string, args []string, client controlClient) int {
	cmd, ok := hotkeyCommands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
		return 2
	}
	return runSimple(name, cmd.help, args, func(c controlClient) error {
		return c.Hotkey(cmd.kind)
	}, client)
}

// runSimple parses a subcommand that takes no arguments and runs fn once.
func runSimple(name, help string, args []string, fn func(controlClient) error, client controlClient) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wtm %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, help)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	if err := fn(client); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runProfile(args []string, client controlClient) int {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wtm profile <name>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Switch the active grid profile. 'wtm status' lists the profiles.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "profile requires exactly one <name>")
		fs.Usage()
		return 2
	}

	if err := client.SwitchProfile(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

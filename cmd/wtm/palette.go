package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/wtm/internal/manager"
	"github.com/1broseidon/wtm/internal/palette"
)

// paletteController adapts the IPC client to palette.Controller.
type paletteController struct {
	controlClient
}

func (p paletteController) Status() (manager.Status, error) {
	s, err := p.GetStatus()
	if err != nil {
		return manager.Status{}, err
	}
	return s.Status, nil
}

func runPalette(args []string, client controlClient) int {
	fs := flag.NewFlagSet("palette", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	backendName := fs.String("backend", "auto", "Launcher: auto, rofi, fuzzel, wofi, dmenu")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wtm palette [--backend NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Pick a wtm action or profile from a dmenu-style launcher.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "palette takes no arguments")
		fs.Usage()
		return 2
	}

	backend, err := palette.NewBackend(*backendName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return paletteExitCode(palette.Run(backend, paletteController{client}))
}

func paletteExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, palette.ErrCancelled):
		return 0
	default:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}

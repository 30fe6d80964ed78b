package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/TimelordUK/hexdd/internal/config"
	"github.com/TimelordUK/hexdd/internal/fault"
	"github.com/TimelordUK/hexdd/internal/render"
)

// Terminal width assumed when stdout is not a terminal
const fallbackColumns = 80

// options holds the parsed command-line flags
type options struct {
	view   string
	width  string
	offset string
	dump   bool
	stdout bool
	out    string
}

// parseWidth reads the --width flag. An empty flag returns 0 and
// auto=false, leaving the width to the config file.
func parseWidth(s string) (int, bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return 0, false, nil
	case "auto", "a":
		return 0, true, nil
	}
	w, err := strconv.Atoi(s)
	if err != nil || w < 1 {
		return 0, false, fmt.Errorf("row width %q: %w", s, fault.ErrInvalidConfig)
	}
	return w, false, nil
}

// terminalColumns returns the width of stdout, or fallbackColumns
func terminalColumns() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallbackColumns
}

// resolveDisplay merges flags over the config file. Flags win; an explicit
// auto width, or row_width = 0 with no flag, fits the terminal.
func resolveDisplay(opts *options, cfg *config.Config, columns int) (render.DisplayConfig, error) {
	baseName := cfg.Display.Base
	if opts.view != "" {
		baseName = opts.view
	}
	base, err := render.ParseBase(baseName)
	if err != nil {
		return render.DisplayConfig{}, err
	}

	width, auto, err := parseWidth(opts.width)
	if err != nil {
		return render.DisplayConfig{}, err
	}
	if width == 0 && !auto {
		width = cfg.Display.RowWidth
		auto = width == 0
	}
	if auto {
		width = render.AutoRowWidth(columns)
	}

	display := render.DisplayConfig{Base: base, RowWidth: width}
	return display, display.Validate()
}

// resolveOffset parses --offset in the display base
func resolveOffset(s string, base render.Base) (int64, bool, error) {
	if strings.TrimSpace(s) == "" {
		return 0, false, nil
	}
	off, err := render.ParseOffset(s, base)
	if err != nil {
		return 0, false, err
	}
	return off, true, nil
}

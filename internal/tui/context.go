package tui

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

// Context carries the terminal facts every render stage needs, so nothing
// below the CLI reads global terminal state.
type Context struct {
	// Width is the terminal width in cells.
	Width int
	// Height is the number of rows available to the output: the terminal
	// height minus one row for the shell prompt.
	Height int

	Renderer *lipgloss.Renderer
	// Status receives the progress spinner; ShowProgress enables it.
	Status       io.Writer
	ShowProgress bool
	Log          *log.Logger
}

// NewContext probes stdout for its size and color support and stderr for
// progress display. colorMode is one of ColorModes.
func NewContext(colorMode string, logger *log.Logger) (*Context, error) {
	r := lipgloss.NewRenderer(os.Stdout)
	if err := SetColorMode(r, colorMode); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	w, h := TerminalSize(os.Stdout.Fd())
	return &Context{
		Width:        w,
		Height:       max(1, h-1),
		Renderer:     r,
		Status:       os.Stderr,
		ShowProgress: IsTerminal(os.Stderr),
		Log:          logger,
	}, nil
}

// MapBudget is the number of cells the map itself may use.
func (c *Context) MapBudget(borderless bool) (cols, rows int) {
	cols, rows = c.Width, c.Height
	if !borderless {
		cols, rows = cols-2, rows-2
	}
	return max(1, cols), max(1, rows)
}

// ColorModes lists the accepted --color values.
var ColorModes = []string{"auto", "truecolor", "ansi256", "ansi", "none"}

// SetColorMode forces the renderer's color profile; "auto" keeps detection.
func SetColorMode(r *lipgloss.Renderer, mode string) error {
	switch mode {
	case "", "auto":
	case "truecolor":
		r.SetColorProfile(termenv.TrueColor)
	case "ansi256":
		r.SetColorProfile(termenv.ANSI256)
	case "ansi":
		r.SetColorProfile(termenv.ANSI)
	case "none":
		r.SetColorProfile(termenv.Ascii)
	default:
		return fmt.Errorf("unknown color mode %q (available: auto, truecolor, ansi256, ansi, none)", mode)
	}
	return nil
}

// TerminalSize returns the size of the terminal on fd. COLUMNS and LINES
// override missing dimensions; 80x24 is the last resort.
func TerminalSize(fd uintptr) (width, height int) {
	if w, h, err := term.GetSize(fd); err == nil && w > 0 && h > 0 {
		return w, h
	}
	width, height = fallbackWidth, fallbackHeight
	if v, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && v > 0 {
		width = v
	}
	if v, err := strconv.Atoi(os.Getenv("LINES")); err == nil && v > 0 {
		height = v
	}
	return width, height
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

package cliutil

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Palette colors the parts of a validation report.
type Palette struct {
	OK       func(format string, a ...any) string
	Fail     func(format string, a ...any) string
	Location func(format string, a ...any) string
	Muted    func(format string, a ...any) string
}

// NewPalette returns a colored palette when w is a terminal and color is not
// disabled, and a plain one otherwise.
func NewPalette(w io.Writer, disabled bool) Palette {
	if disabled || !IsTerminal(w) {
		return PlainPalette()
	}
	ok := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	loc := color.New(color.FgCyan)
	muted := color.New(color.Faint)
	for _, c := range []*color.Color{ok, fail, loc, muted} {
		c.EnableColor()
	}
	return Palette{
		OK:       ok.Sprintf,
		Fail:     fail.Sprintf,
		Location: loc.Sprintf,
		Muted:    muted.Sprintf,
	}
}

// PlainPalette returns a palette that adds no escape sequences.
func PlainPalette() Palette {
	return Palette{OK: fmt.Sprintf, Fail: fmt.Sprintf, Location: fmt.Sprintf, Muted: fmt.Sprintf}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

package shell

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/josephlewis42/accsh/core/config"
	"github.com/mattn/go-isatty"
)

var dirColor = []color.Attribute{color.FgBlue, color.Bold}

// ColorPrinter decides whether output should be colorized.
type ColorPrinter struct {
	// Mode is one of config.ColorAlways, config.ColorAuto or config.ColorNever.
	Mode string
	// Out is checked for a terminal in auto mode.
	Out io.Writer
}

func (c *ColorPrinter) ShouldColor() bool {
	switch c.Mode {
	case config.ColorNever:
		return false
	case config.ColorAlways:
		return true
	default:
		return isTerminal(c.Out)
	}
}

// Sprint formats a with the given attributes if coloring is enabled.
func (c *ColorPrinter) Sprint(attrs []color.Attribute, a ...interface{}) string {
	if !c.ShouldColor() {
		return fmt.Sprint(a...)
	}

	printer := color.New(attrs...)
	printer.EnableColor()
	return printer.Sprint(a...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

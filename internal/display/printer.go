package display

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorEnabled reports whether w is a terminal that should get ANSI colors.
// NO_COLOR in the environment always wins.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer writes status lines to a writer.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a Printer. When color is false no escape codes are written.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

// Color reports whether the printer emits ANSI colors.
func (p *Printer) Color() bool { return p.color }

// Paint returns s in the given attributes, or s unchanged without color.
func (p *Printer) Paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if p.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// Printf writes a plain formatted line fragment.
func (p *Printer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format, args...)
}

// Success writes a line prefixed with a green check mark.
func (p *Printer) Success(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", p.Paint("✓", color.FgGreen), fmt.Sprintf(format, args...))
}

// Failure writes a line prefixed with a red cross.
func (p *Printer) Failure(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", p.Paint("✗", color.FgRed), fmt.Sprintf(format, args...))
}

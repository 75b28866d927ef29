package display

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
)

// ProgressIndicator manages multi-step progress display
type ProgressIndicator struct {
	p       *Printer
	total   int
	current int
}

// NewProgressIndicator creates a new progress indicator
func (p *Printer) NewProgressIndicator(total int) *ProgressIndicator {
	return &ProgressIndicator{p: p, total: total}
}

// Start displays the header message
func (pi *ProgressIndicator) Start(title string) {
	fmt.Fprintf(pi.p.w, "%s:\n", title)
}

// Step displays progress for current item: [N/Total] name (cyan)
func (pi *ProgressIndicator) Step(path string) {
	pi.current++
	line := fmt.Sprintf("  [%d/%d] %s", pi.current, pi.total, filepath.Base(path))
	fmt.Fprintln(pi.p.w, pi.p.Paint(line, color.FgCyan))
}

// Current returns the number of steps taken.
func (pi *ProgressIndicator) Current() int { return pi.current }

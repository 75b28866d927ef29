package display

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Details    []string // Related items or reasons (optional)
	Suggestion string   // Action to take (optional)
}

// Warning shows a formatted warning in yellow.
func (p *Printer) Warning(w Warning) {
	var b strings.Builder

	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	for i, d := range w.Details {
		b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, d))
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	fmt.Fprint(p.w, p.Paint(b.String(), color.FgYellow))
}

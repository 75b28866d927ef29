// Package report renders a session as a Markdown or HTML document.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/harrison/mchat/internal/models"
	"github.com/harrison/mchat/internal/session"
)

// Supported formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

const dateLayout = "2006-01-02"

// Markdown renders the session header, one table row per item and the summary.
func Markdown(s *session.Session) []byte {
	var b strings.Builder

	title := "Screening Report"
	if s.Instrument != nil && s.Instrument.Name != "" {
		title = s.Instrument.Name + " Report"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- **Session:** %s\n", s.ID)
	fmt.Fprintf(&b, "- **Started:** %s\n", s.CreatedAt.Format("2006-01-02 15:04"))
	if p := s.Participant; p.ChildName != "" {
		child := p.ChildName
		if !p.ChildBirthDate.IsZero() {
			child += " (born " + p.ChildBirthDate.Format(dateLayout) + ")"
		}
		fmt.Fprintf(&b, "- **Child:** %s\n", child)
	}
	if p := s.Participant; p.GuardianName != "" {
		guardian := p.GuardianName
		if p.Relationship != "" {
			guardian += " (" + p.Relationship + ")"
		}
		fmt.Fprintf(&b, "- **Caregiver:** %s\n", guardian)
	}

	b.WriteString("\n## Items\n\n")
	b.WriteString("| # | Item | Primary | Verdict | Tie-break | Evidence |\n")
	b.WriteString("|---|------|---------|---------|-----------|----------|\n")
	for _, m := range s.Items() {
		def := m.Definition()
		r := m.Result()
		if r == nil {
			fmt.Fprintf(&b, "| %d | %s | - | %s | - | - |\n", def.ID, cell(def.Key), m.State())
			continue
		}
		tie := r.TieBreak
		if tie == "" {
			tie = "-"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			def.ID, cell(def.Key), r.Primary, models.OutcomeOf(r.Verdict), tie, evidenceCell(r.Evidence))
	}

	sum := s.Summary()
	b.WriteString("\n## Summary\n\n")
	fmt.Fprintf(&b, "- **Answered:** %d/%d\n", sum.Answered, sum.Total)
	fmt.Fprintf(&b, "- **Follow-up score:** %d", sum.FollowUpScore)
	if len(sum.FailedItems) > 0 {
		fmt.Fprintf(&b, " (failed items: %s)", joinInts(sum.FailedItems))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- **Screen:** %s\n", sum.Screen)
	fmt.Fprintf(&b, "- **Initial risk:** %d (%s)\n", sum.InitialRisk, sum.RiskBand)
	if len(sum.Pending) > 0 {
		fmt.Fprintf(&b, "- **Pending items:** %s\n", joinInts(sum.Pending))
	}
	return []byte(b.String())
}

// HTML converts the Markdown report with GitHub-flavored tables.
func HTML(s *session.Session) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert(Markdown(s), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// Render produces the report in the named format.
func Render(s *session.Session, format string) ([]byte, error) {
	switch format {
	case "", FormatMarkdown:
		return Markdown(s), nil
	case FormatHTML:
		return HTML(s)
	default:
		return nil, fmt.Errorf("unknown report format %q (supported: %s, %s)", format, FormatMarkdown, FormatHTML)
	}
}

func evidenceCell(e models.EvidenceSummary) string {
	switch {
	case !e.Required.Required():
		return "-"
	case e.Present && e.Kind != "":
		return string(e.Kind)
	case e.Present:
		return "provided"
	case e.OptedOut:
		return "opted out"
	default:
		return "missing"
	}
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/mchat/internal/display"
	"github.com/harrison/mchat/internal/models"
	"github.com/harrison/mchat/internal/screening"
	"github.com/harrison/mchat/internal/session"
)

const interviewHelp = `Commands: y/n answer, "e <text>" give an example, "o" prefer not to say,
"r" restart this item, "r <item>" redo an earlier item, "q" stop and summarize.`

// interviewer asks the current item's prompt, reads one line per turn and
// feeds it to the item's machine until every item is committed or the
// caregiver quits.
type interviewer struct {
	in     *bufio.Scanner
	out    *display.Printer
	s      *session.Session
	onDone func(done, total int)
}

func newInterviewer(in io.Reader, out *display.Printer, s *session.Session) *interviewer {
	return &interviewer{in: bufio.NewScanner(in), out: out, s: s}
}

// run returns true when every item has a verdict.
func (iv *interviewer) run(ctx context.Context) (bool, error) {
	iv.out.Printf("%s\n\n", interviewHelp)
	total := len(iv.s.Items())

	for {
		m := iv.s.Current()
		if m == nil {
			return true, nil
		}
		if err := ctx.Err(); err != nil {
			return false, err
		}

		// A failed commit leaves the verdict scored but unsaved.
		if m.State() == models.StateScored {
			if err := m.Commit(ctx); err != nil {
				return false, err
			}
			continue
		}

		iv.ask(m, total)
		if !iv.in.Scan() {
			if err := iv.in.Err(); err != nil {
				return false, fmt.Errorf("failed to read answer: %w", err)
			}
			return false, nil
		}

		line := strings.TrimSpace(iv.in.Text())
		quit, err := iv.handle(ctx, m, line)
		if quit {
			return false, nil
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false, err
			}
			iv.out.Failure("%s", describe(err))
			continue
		}
		if m.Completed() && iv.onDone != nil {
			iv.onDone(total-len(iv.s.Summary().Pending), total)
		}
	}
}

func (iv *interviewer) ask(m *screening.Machine, total int) {
	def := m.Definition()
	step := m.Step()
	if step.Kind == models.StepAskPrimary {
		iv.out.Printf("%s\n", iv.out.Paint(fmt.Sprintf("Item %d of %d", def.ID, total), color.Bold))
	}
	if step.Kind == models.StepAskSubQuestion && step.Slot == 0 {
		if g, ok := def.Group(step.GroupID); ok && g.Lead != "" {
			iv.out.Printf("%s\n", g.Lead)
		}
	}

	switch step.Kind {
	case models.StepAskEvidenceGate:
		hint := `"e <example>"`
		if b := m.Branch(); b != nil && b.Evidence.AllowsOptOut() {
			hint += ` or "o"`
		}
		iv.out.Printf("%s [%s] ", iv.out.Paint(m.Prompt(), color.FgCyan), hint)
	case models.StepAskTieBreak:
		iv.out.Printf("%s\n", iv.out.Paint(m.Prompt(), color.FgCyan))
		for i, id := range step.Groups {
			iv.out.Printf("  %d) %s\n", i+1, groupSummary(def, id))
		}
		iv.out.Printf("[1-%d] ", len(step.Groups))
	default:
		iv.out.Printf("%s [y/n] ", iv.out.Paint(m.Prompt(), color.FgCyan))
	}
}

// handle applies one line of input. It returns quit=true for "q".
func (iv *interviewer) handle(ctx context.Context, m *screening.Machine, line string) (bool, error) {
	lower := strings.ToLower(line)
	switch {
	case lower == "q":
		return true, nil
	case lower == "?" || lower == "h":
		iv.out.Printf("%s\n", interviewHelp)
		return false, nil
	case lower == "r":
		return false, iv.restart(ctx, m)
	case strings.HasPrefix(lower, "r "):
		id, err := strconv.Atoi(strings.TrimSpace(line[2:]))
		if err != nil {
			return false, fmt.Errorf("invalid item number %q", strings.TrimSpace(line[2:]))
		}
		target, ok := iv.s.Item(id)
		if !ok {
			return false, fmt.Errorf("no item %d in this instrument", id)
		}
		return false, iv.restart(ctx, target)
	}

	step := m.Step()
	switch step.Kind {
	case models.StepAskEvidenceGate:
		return false, m.SupplyEvidence(ctx, parseEvidence(line))
	case models.StepAskTieBreak:
		id, err := pickGroup(step.Groups, line)
		if err != nil {
			return false, err
		}
		return false, m.ChooseTieBreak(ctx, id)
	}

	a, err := models.ParseAnswer(line)
	if err != nil {
		return false, err
	}
	if a == models.Unanswered {
		return false, errors.New("please answer y or n")
	}
	return false, m.Answer(ctx, a)
}

// restart clears one item, committed or not. The session asks it again
// once it is the first item without a result.
func (iv *interviewer) restart(ctx context.Context, m *screening.Machine) error {
	if err := m.Reset(ctx); err != nil {
		return err
	}
	iv.out.Printf("Item %d restarted.\n", m.Definition().ID)
	return nil
}

// parseEvidence turns "e <text>" into a text artifact and "o" into an opt-out.
// Anything else is treated as an empty capture.
func parseEvidence(line string) models.Evidence {
	switch {
	case strings.EqualFold(line, "o"):
		return models.Evidence{OptedOut: true}
	case len(line) > 2 && (line[0] == 'e' || line[0] == 'E') && line[1] == ' ':
		text := strings.TrimSpace(line[2:])
		return models.Evidence{Kind: models.EvidenceKindText, Handle: text, ArtifactPresent: text != ""}
	}
	return models.Evidence{}
}

// pickGroup accepts a 1-based choice number or a group id.
func pickGroup(groups []string, line string) (string, error) {
	if n, err := strconv.Atoi(line); err == nil {
		if n < 1 || n > len(groups) {
			return "", fmt.Errorf("choose a number from 1 to %d", len(groups))
		}
		return groups[n-1], nil
	}
	return line, nil
}

func groupSummary(def *models.ItemDefinition, id string) string {
	g, ok := def.Group(id)
	if !ok {
		return id
	}
	if g.Lead != "" {
		return g.Lead
	}
	if len(g.Prompts) > 0 {
		return g.Prompts[0]
	}
	return id
}

// describe maps engine errors to caregiver-facing text.
func describe(err error) string {
	switch {
	case errors.Is(err, screening.ErrEvidenceGateUnsatisfied):
		return "An example is needed before continuing with this question."
	case errors.Is(err, screening.ErrInvalidTieBreak):
		return "That is not one of the listed choices."
	default:
		return err.Error()
	}
}

package logger

import (
	"fmt"
	"strings"

	"github.com/harrison/mchat/internal/models"
)

// event is one rendered log line before decoration.
type event struct {
	level   string
	message string
	verdict models.Verdict // colors the line when set
}

func stepEvent(def *models.ItemDefinition, step models.Step) event {
	return event{level: "debug", message: fmt.Sprintf("%s: %s", def.Label(), step)}
}

func verdictEvent(def *models.ItemDefinition, r *models.ItemResult) event {
	msg := fmt.Sprintf("%s: %s (primary %s", def.Label(), models.OutcomeOf(r.Verdict), r.Primary)
	if r.TieBreak != "" {
		msg += ", tie-break " + r.TieBreak
	}
	return event{level: "info", message: msg + ")", verdict: r.Verdict}
}

func resetEvent(def *models.ItemDefinition) event {
	return event{level: "info", message: def.Label() + ": reset"}
}

func restoreEvent(def *models.ItemDefinition, state models.State, err error) event {
	switch {
	case err != nil:
		return event{level: "warn", message: fmt.Sprintf("%s: restore failed closed: %v", def.Label(), err)}
	case state == models.StateCommitted:
		return event{level: "debug", message: def.Label() + ": restored committed result"}
	default:
		return event{level: "trace", message: fmt.Sprintf("%s: nothing to restore (%s)", def.Label(), state)}
	}
}

// summaryLines renders a session summary, one line per entry.
func summaryLines(s models.Summary) []string {
	lines := []string{
		"=== Screening Summary ===",
		fmt.Sprintf("Session: %s", s.SessionID),
		fmt.Sprintf("Answered: %d/%d", s.Answered, s.Total),
		fmt.Sprintf("Passed: %d", s.Passed),
		fmt.Sprintf("Failed: %d", s.Failed),
	}
	if len(s.FailedItems) > 0 {
		ids := make([]string, len(s.FailedItems))
		for i, id := range s.FailedItems {
			ids[i] = fmt.Sprint(id)
		}
		lines = append(lines, "Failed items: "+strings.Join(ids, ", "))
	}
	lines = append(lines,
		fmt.Sprintf("Follow-up score: %d", s.FollowUpScore),
		fmt.Sprintf("Screen: %s", s.Screen),
		fmt.Sprintf("Initial risk: %d (%s)", s.InitialRisk, s.RiskBand),
	)
	return lines
}

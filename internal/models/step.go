package models

import (
	"fmt"
	"strings"
)

// StepKind is what the branch resolver wants to happen next.
type StepKind int

const (
	StepAskPrimary StepKind = iota
	StepAskEvidenceGate
	StepAskSubQuestion
	StepAskTieBreak
	StepScored
)

// String returns the step kind name.
func (k StepKind) String() string {
	switch k {
	case StepAskPrimary:
		return "ask-primary"
	case StepAskEvidenceGate:
		return "ask-evidence-gate"
	case StepAskSubQuestion:
		return "ask-sub-question"
	case StepAskTieBreak:
		return "ask-tie-break"
	case StepScored:
		return "scored"
	default:
		return "unknown"
	}
}

// Step is the branch resolver's answer to "what next?".
// GroupID and Slot are set for StepAskSubQuestion; Groups for StepAskTieBreak.
type Step struct {
	Kind    StepKind
	GroupID string
	Slot    int
	Groups  []string
}

// String renders the step for logs, e.g. "ask-sub-question(pass#1)".
func (s Step) String() string {
	switch s.Kind {
	case StepAskSubQuestion:
		return fmt.Sprintf("%s(%s#%d)", s.Kind, s.GroupID, s.Slot)
	case StepAskTieBreak:
		return fmt.Sprintf("%s(%s)", s.Kind, strings.Join(s.Groups, ","))
	default:
		return s.Kind.String()
	}
}

// State is the lifecycle position of one item's state machine.
type State int

const (
	StateUnanswered State = iota
	StatePrimaryAnswered
	StateEvidencePending
	StateSubQuestionsInProgress
	StateTieBreakPending
	StateScored
	StateCommitted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnanswered:
		return "unanswered"
	case StatePrimaryAnswered:
		return "primary-answered"
	case StateEvidencePending:
		return "evidence-pending"
	case StateSubQuestionsInProgress:
		return "sub-questions-in-progress"
	case StateTieBreakPending:
		return "tie-break-pending"
	case StateScored:
		return "scored"
	case StateCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

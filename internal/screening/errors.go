package screening

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncompleteLedger is returned when scoring is asked for before the
	// branch resolver reports the ledger as scorable.
	ErrIncompleteLedger = errors.New("incomplete ledger")

	// ErrMalformedRuleTable is returned when an item definition cannot reach
	// a terminal verdict for some reachable ledger.
	ErrMalformedRuleTable = errors.New("malformed rule table")

	// ErrSchemaMismatch is returned when a persisted ledger does not fit the
	// current item definition's slot layout.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrEvidenceGateUnsatisfied is returned when sub-questions are attempted
	// without an artifact or an allowed opt-out.
	ErrEvidenceGateUnsatisfied = errors.New("evidence gate unsatisfied")

	ErrInvalidTieBreak = errors.New("invalid tie-break selection")
	ErrTieBreakPending = errors.New("tie-break selection pending")
	ErrNoTieBreak      = errors.New("no tie-break pending")
	ErrAlreadyScored   = errors.New("item already scored")
	ErrInvalidAnswer   = errors.New("answer must be yes or no")
	ErrCrossItemWrite  = errors.New("write to another item's result")
)

// ItemError ties an engine failure to the item and operation that caused it.
type ItemError struct {
	ItemID int
	Op     string
	Err    error
}

// Error implements the error interface.
func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %s: %v", e.ItemID, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ItemError) Unwrap() error {
	return e.Err
}

func itemErr(id int, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ItemError{ItemID: id, Op: op, Err: err}
}

// MalformedRuleTableError lists every problem found in one item definition.
type MalformedRuleTableError struct {
	ItemID  int
	Reasons []string
}

// Error implements the error interface.
func (e *MalformedRuleTableError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("item %d: %s", e.ItemID, ErrMalformedRuleTable))
	if len(e.Reasons) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Reasons, "; "))
	}
	return sb.String()
}

// Unwrap lets errors.Is match ErrMalformedRuleTable.
func (e *MalformedRuleTableError) Unwrap() error {
	return ErrMalformedRuleTable
}

func (e *MalformedRuleTableError) addf(format string, args ...interface{}) {
	e.Reasons = append(e.Reasons, fmt.Sprintf(format, args...))
}

package screening

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harrison/mchat/internal/models"
)

// Logger receives item lifecycle events. Implementations must tolerate
// being called from a single goroutine in rapid succession; the engine
// never calls them concurrently.
type Logger interface {
	LogStep(def *models.ItemDefinition, step models.Step)
	LogVerdict(def *models.ItemDefinition, result *models.ItemResult)
	LogReset(def *models.ItemDefinition)
	LogRestore(def *models.ItemDefinition, state models.State, err error)
}

// Entry is one answered prompt, in the order it was asked.
type Entry struct {
	GroupID string // empty for the primary question
	Slot    int
	Prompt  string
	Answer  models.Answer
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger attaches a logger. A nil interface value leaves the machine
// silent. A typed nil is still called, so its methods must accept a nil
// receiver.
func WithLogger(l Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// WithClock overrides the time source used for CompletedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// transition carries the context of one state change. Restoration runs
// with restoring set and never writes to the store.
type transition struct {
	op        string
	restoring bool
}

// Machine drives one item from its primary question to a committed result.
// Every operation runs to completion before returning; a Machine is not
// safe for concurrent use.
type Machine struct {
	def    *models.ItemDefinition
	store  itemStore
	logger Logger
	now    func() time.Time

	ledger  *models.Ledger
	state   models.State
	step    models.Step
	verdict models.Verdict
	result  *models.ItemResult
}

// NewMachine validates def and returns a machine in the Unanswered state.
// Call Restore to pick up a previously committed result.
func NewMachine(def *models.ItemDefinition, store ResultStore, opts ...Option) (*Machine, error) {
	if store == nil {
		return nil, errors.New("result store cannot be nil")
	}
	if err := ValidateDefinition(def); err != nil {
		return nil, err
	}
	m := &Machine{
		def:    def,
		store:  itemStore{itemID: def.ID, inner: store},
		now:    time.Now,
		ledger: models.NewLedger(def),
		state:  models.StateUnanswered,
		step:   models.Step{Kind: models.StepAskPrimary},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Definition returns the item definition the machine interprets.
func (m *Machine) Definition() *models.ItemDefinition { return m.def }

// State returns the current lifecycle state.
func (m *Machine) State() models.State { return m.state }

// Step returns what the item is waiting for.
func (m *Machine) Step() models.Step { return m.step }

// Ledger returns a copy of the current ledger.
func (m *Machine) Ledger() *models.Ledger { return m.ledger.Clone() }

// Verdict returns nil until the item is scored.
func (m *Machine) Verdict() *models.Verdict {
	if m.verdict == models.VerdictNone {
		return nil
	}
	v := m.verdict
	return &v
}

// Completed reports whether the item's result is committed.
func (m *Machine) Completed() bool { return m.state == models.StateCommitted }

// Result returns a copy of the committed result, or nil.
func (m *Machine) Result() *models.ItemResult { return m.result.Clone() }

// Branch returns the branch chosen by the primary answer, or nil.
func (m *Machine) Branch() *models.Branch { return m.def.Branch(m.ledger.Primary) }

// Prompt returns the text the caregiver should currently see.
func (m *Machine) Prompt() string {
	switch m.step.Kind {
	case models.StepAskPrimary:
		return m.def.Question
	case models.StepAskEvidenceGate:
		if b := m.Branch(); b != nil && b.EvidencePrompt != "" {
			return b.EvidencePrompt
		}
		return "Please describe an example."
	case models.StepAskSubQuestion:
		p, _ := m.def.Prompt(m.step.GroupID, m.step.Slot)
		return p
	case models.StepAskTieBreak:
		return "Which of these does your child do most often?"
	}
	return ""
}

// History lists the answered prompts in asking order. Reviewing history
// never changes an answer.
func (m *Machine) History() []Entry {
	if !m.ledger.Primary.IsAnswered() {
		return nil
	}
	entries := []Entry{{Prompt: m.def.Question, Answer: m.ledger.Primary}}
	b := m.Branch()
	if b == nil {
		return entries
	}
	for _, bg := range b.Groups {
		g, ok := m.def.Group(bg.ID)
		if !ok {
			continue
		}
		for i, a := range m.ledger.GroupAnswers(bg.ID) {
			if a.IsAnswered() && i < len(g.Prompts) {
				entries = append(entries, Entry{GroupID: bg.ID, Slot: i, Prompt: g.Prompts[i], Answer: a})
			}
		}
	}
	return entries
}

// Answer applies a caregiver yes/no to whatever is currently asked.
func (m *Machine) Answer(ctx context.Context, a models.Answer) error {
	if !a.IsAnswered() {
		return itemErr(m.def.ID, "answer", ErrInvalidAnswer)
	}
	switch m.step.Kind {
	case models.StepAskPrimary:
		m.ledger.Primary = a
	case models.StepAskSubQuestion:
		if err := m.ledger.Set(m.step.GroupID, m.step.Slot, a); err != nil {
			return itemErr(m.def.ID, "answer", err)
		}
	case models.StepAskEvidenceGate:
		return itemErr(m.def.ID, "answer", ErrEvidenceGateUnsatisfied)
	case models.StepAskTieBreak:
		return itemErr(m.def.ID, "answer", ErrTieBreakPending)
	default:
		return itemErr(m.def.ID, "answer", ErrAlreadyScored)
	}
	return m.settle(ctx, transition{op: "answer"})
}

// SupplyEvidence hands the engine the capture widget's result. It only
// opens the gate when an artifact is present, or when the caregiver opted
// out and the branch allows that.
func (m *Machine) SupplyEvidence(ctx context.Context, ev models.Evidence) error {
	if m.step.Kind != models.StepAskEvidenceGate {
		if m.state == models.StateScored || m.state == models.StateCommitted {
			return itemErr(m.def.ID, "evidence", ErrAlreadyScored)
		}
		return itemErr(m.def.ID, "evidence", errors.New("no evidence gate pending"))
	}
	if !ev.Satisfies(m.Branch().Evidence) {
		return itemErr(m.def.ID, "evidence", ErrEvidenceGateUnsatisfied)
	}
	m.ledger.Evidence = ev
	return m.settle(ctx, transition{op: "evidence"})
}

// ChooseTieBreak records which ambiguous group the caregiver sees most often.
// The selection cannot be changed without a reset.
func (m *Machine) ChooseTieBreak(ctx context.Context, groupID string) error {
	if m.step.Kind != models.StepAskTieBreak {
		return itemErr(m.def.ID, "tie-break", ErrNoTieBreak)
	}
	if !contains(m.step.Groups, groupID) {
		return itemErr(m.def.ID, "tie-break",
			fmt.Errorf("%w: %q is not one of %v", ErrInvalidTieBreak, groupID, m.step.Groups))
	}
	m.ledger.TieBreak = groupID
	return m.settle(ctx, transition{op: "tie-break"})
}

// Reset clears the item. The stored result is deleted first; if that
// fails the machine keeps its previous state untouched.
func (m *Machine) Reset(ctx context.Context) error {
	if err := m.store.delete(ctx); err != nil {
		return itemErr(m.def.ID, "reset", err)
	}
	m.ledger = models.NewLedger(m.def)
	m.verdict = models.VerdictNone
	m.result = nil
	if m.logger != nil {
		m.logger.LogReset(m.def)
	}
	return m.settle(ctx, transition{op: "reset"})
}

// Restore rehydrates the item from the store. A committed result whose
// ledger fits the current slot layout is taken verbatim, without asking
// the resolver to re-derive it, so results recorded under an earlier rule
// table still display as recorded. Anything else fails closed to Unanswered.
func (m *Machine) Restore(ctx context.Context) error {
	tr := transition{op: "restore", restoring: true}

	r, err := m.store.get(ctx)
	if err != nil && !errors.Is(err, ErrSchemaMismatch) {
		return itemErr(m.def.ID, tr.op, err)
	}
	if err == nil && r == nil {
		m.ledger = models.NewLedger(m.def)
		m.verdict = models.VerdictNone
		m.result = nil
		err = m.settle(ctx, tr)
		m.logRestore(err)
		return err
	}
	if err == nil {
		err = checkRestorable(m.def, r)
	}
	if err != nil {
		m.ledger = models.NewLedger(m.def)
		m.verdict = models.VerdictNone
		m.result = nil
		if serr := m.settle(ctx, tr); serr != nil {
			err = errors.Join(err, serr)
		}
		err = itemErr(m.def.ID, tr.op, err)
		m.logRestore(err)
		return err
	}

	m.ledger = r.Ledger.Clone()
	m.verdict = r.Verdict
	m.result = r.Clone()
	m.step = models.Step{Kind: models.StepScored}
	m.state = models.StateCommitted
	m.logRestore(nil)
	return nil
}

func checkRestorable(def *models.ItemDefinition, r *models.ItemResult) error {
	switch {
	case !r.Completed:
		return fmt.Errorf("%w: stored result is not completed", ErrSchemaMismatch)
	case !r.Verdict.Valid():
		return fmt.Errorf("%w: stored result has no verdict", ErrSchemaMismatch)
	case r.Ledger == nil:
		return fmt.Errorf("%w: stored result has no ledger", ErrSchemaMismatch)
	case !r.Ledger.MatchesLayout(def):
		return fmt.Errorf("%w: stored ledger layout %v does not match %v", ErrSchemaMismatch, r.Ledger.Layout, def.Layout())
	case r.Primary != r.Ledger.Primary:
		return fmt.Errorf("%w: stored primary answer disagrees with ledger", ErrSchemaMismatch)
	}
	return nil
}

// settle asks the resolver where the ledger stands and moves the machine
// there, scoring and committing as soon as the resolver reports Scored.
func (m *Machine) settle(ctx context.Context, tr transition) error {
	step, err := NextStep(m.def, m.ledger)
	if err != nil {
		return itemErr(m.def.ID, tr.op, err)
	}
	m.step = step
	if m.logger != nil {
		m.logger.LogStep(m.def, step)
	}

	switch step.Kind {
	case models.StepAskPrimary:
		m.state = models.StateUnanswered
	case models.StepAskEvidenceGate:
		m.state = models.StateEvidencePending
	case models.StepAskSubQuestion:
		if m.ledger.AnsweredCount() == 0 {
			m.state = models.StatePrimaryAnswered
		} else {
			m.state = models.StateSubQuestionsInProgress
		}
	case models.StepAskTieBreak:
		m.state = models.StateTieBreakPending
	case models.StepScored:
		outcome, err := Score(m.def, m.ledger)
		if err != nil {
			return itemErr(m.def.ID, tr.op, err)
		}
		m.verdict = outcome.Verdict()
		m.state = models.StateScored
		if tr.restoring {
			return nil
		}
		return m.commit(ctx)
	}
	return nil
}

// Commit retries writing a scored result after an earlier store failure.
func (m *Machine) Commit(ctx context.Context) error {
	if m.state != models.StateScored {
		return itemErr(m.def.ID, "commit", fmt.Errorf("nothing to commit in state %s", m.state))
	}
	return m.commit(ctx)
}

// commit writes the scored result; on failure the machine stays Scored.
func (m *Machine) commit(ctx context.Context) error {
	branch := m.Branch()
	r := &models.ItemResult{
		ItemID:   m.def.ID,
		Verdict:  m.verdict,
		Primary:  m.ledger.Primary,
		Ledger:   m.ledger.Clone(),
		TieBreak: m.ledger.TieBreak,
		Evidence: models.EvidenceSummary{
			Required: branch.Evidence,
			Kind:     m.ledger.Evidence.Kind,
			Handle:   m.ledger.Evidence.Handle,
			Present:  m.ledger.Evidence.ArtifactPresent,
			OptedOut: m.ledger.Evidence.OptedOut,
		},
		Completed:   true,
		CompletedAt: m.now(),
	}
	if err := m.store.put(ctx, r); err != nil {
		return itemErr(m.def.ID, "commit", err)
	}
	m.result = r
	m.state = models.StateCommitted
	if m.logger != nil {
		m.logger.LogVerdict(m.def, r.Clone())
	}
	return nil
}

func (m *Machine) logRestore(err error) {
	if m.logger != nil {
		m.logger.LogRestore(m.def, m.state, err)
	}
}

package screening

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harrison/mchat/internal/models"
)

// twoGroupItem is a yes-to-any item with a pass-leaning and a fail-leaning group.
// A "yes" primary visits both groups; a "no" primary passes immediately.
func twoGroupItem() *models.ItemDefinition {
	return &models.ItemDefinition{
		ID:         1,
		Key:        "two-group",
		Question:   "Does your child look when you point?",
		RiskAnswer: models.No,
		Groups: []models.Group{
			{ID: "A", Role: models.RolePassLeaning, TieBreak: models.VerdictPass, Prompts: []string{"Look at it?", "Point at it?"}},
			{ID: "B", Role: models.RoleFailLeaning, TieBreak: models.VerdictFail, Prompts: []string{"Ignore you?"}},
		},
		Yes: &models.Branch{
			Groups: []models.BranchGroup{{ID: "A"}, {ID: "B"}},
			Rules: []models.Rule{
				{When: models.Condition{"A": models.ThresholdAtLeastOne, "B": models.ThresholdZero}, Outcome: models.OutcomePass},
				{When: models.Condition{"A": models.ThresholdZero, "B": models.ThresholdAtLeastOne}, Outcome: models.OutcomeFail},
				{When: models.Condition{"A": models.ThresholdAtLeastOne, "B": models.ThresholdAtLeastOne}, Outcome: models.OutcomeNeedsTieBreak},
			},
			Default: models.VerdictFail,
		},
		No: &models.Branch{Verdict: models.VerdictPass},
	}
}

// gatedItem needs evidence before its sub-questions. The yes branch
// requires an artifact; the no branch also accepts an opt-out.
func gatedItem() *models.ItemDefinition {
	rules := []models.Rule{{When: models.Condition{"examples": models.ThresholdAtLeastOne}, Outcome: models.OutcomePass}}
	return &models.ItemDefinition{
		ID:         3,
		Question:   "Does your child play pretend?",
		RiskAnswer: models.No,
		Groups: []models.Group{
			{ID: "examples", Role: models.RoleExamples, Prompts: []string{"Pretend to drink?", "Pretend to talk on the phone?"}},
		},
		Yes: &models.Branch{
			Evidence:       models.EvidenceTextOrAudio,
			EvidencePrompt: "Give an example.",
			Groups:         []models.BranchGroup{{ID: "examples"}},
			Rules:          rules,
			Default:        models.VerdictFail,
		},
		No: &models.Branch{
			Evidence: models.EvidenceTextOrAudioOrOptOut,
			Groups:   []models.BranchGroup{{ID: "examples"}},
			Rules:    rules,
			Default:  models.VerdictFail,
		},
	}
}

// conditionalItem visits its follow-up group only when the first group has a yes.
func conditionalItem() *models.ItemDefinition {
	return &models.ItemDefinition{
		ID:         5,
		Question:   "Does your child make unusual finger movements?",
		RiskAnswer: models.Yes,
		Groups: []models.Group{
			{ID: "unusual", Role: models.RoleFailLeaning, Prompts: []string{"Wiggle fingers?", "Flap hands?"}},
			{ID: "frequent", Role: models.RoleFollowUp, Prompts: []string{"More than twice a week?"}},
		},
		Yes: &models.Branch{
			Groups: []models.BranchGroup{
				{ID: "unusual"},
				{ID: "frequent", When: models.Condition{"unusual": models.ThresholdAtLeastOne}},
			},
			Rules: []models.Rule{
				{When: models.Condition{"unusual": models.ThresholdAtLeastOne, "frequent": models.ThresholdAtLeastOne}, Outcome: models.OutcomeFail},
				{When: models.Condition{"unusual": models.ThresholdAtLeastOne, "frequent": models.ThresholdZero}, Outcome: models.OutcomePass},
			},
			Default: models.VerdictPass,
		},
		No: &models.Branch{Verdict: models.VerdictPass},
	}
}

// ledgerWith builds a ledger for def with the given primary and group answers.
func ledgerWith(t *testing.T, def *models.ItemDefinition, primary models.Answer, groups map[string][]models.Answer) *models.Ledger {
	t.Helper()
	l := models.NewLedger(def)
	l.Primary = primary
	for id, answers := range groups {
		for i, a := range answers {
			require.NoError(t, l.Set(id, i, a))
		}
	}
	return l
}

// mapStore is a ResultStore with switchable failures.
type mapStore struct {
	mu         sync.Mutex
	results    map[int]*models.ItemResult
	failPut    error
	failDelete error
	puts       int
}

func newMapStore() *mapStore {
	return &mapStore{results: make(map[int]*models.ItemResult)}
}

func (s *mapStore) Get(_ context.Context, itemID int) (*models.ItemResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[itemID].Clone(), nil
}

func (s *mapStore) Put(_ context.Context, itemID int, r *models.ItemResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut != nil {
		return s.failPut
	}
	s.puts++
	s.results[itemID] = r.Clone()
	return nil
}

func (s *mapStore) Delete(_ context.Context, itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	delete(s.results, itemID)
	return nil
}

var errStoreDown = errors.New("store unavailable")

// recordingLogger captures engine events for assertions.
type recordingLogger struct {
	steps    []models.Step
	verdicts []*models.ItemResult
	resets   int
	restores []error
}

func (l *recordingLogger) LogStep(_ *models.ItemDefinition, step models.Step) {
	l.steps = append(l.steps, step)
}

func (l *recordingLogger) LogVerdict(_ *models.ItemDefinition, r *models.ItemResult) {
	l.verdicts = append(l.verdicts, r)
}

func (l *recordingLogger) LogReset(*models.ItemDefinition) { l.resets++ }

func (l *recordingLogger) LogRestore(_ *models.ItemDefinition, _ models.State, err error) {
	l.restores = append(l.restores, err)
}

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestMachine(t *testing.T, def *models.ItemDefinition, store ResultStore, opts ...Option) *Machine {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	m, err := NewMachine(def, store, opts...)
	require.NoError(t, err)
	return m
}

// answerAll feeds answers to the machine in order.
func answerAll(t *testing.T, m *Machine, answers ...models.Answer) {
	t.Helper()
	ctx := context.Background()
	for _, a := range answers {
		require.NoError(t, m.Answer(ctx, a), "answering %s at %s", a, m.Step())
	}
}

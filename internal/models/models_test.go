package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleDef() *ItemDefinition {
	return &ItemDefinition{
		ID:  4,
		Key: "climbing",
		Groups: []Group{
			{ID: "pass", Role: RolePassLeaning, Prompts: []string{"Stairs?", "Chairs?"}},
			{ID: "fail", Role: RoleFailLeaning, Prompts: []string{"Never?"}},
		},
		Yes: &Branch{Verdict: VerdictPass},
		No:  &Branch{Groups: []BranchGroup{{ID: "pass"}, {ID: "fail"}}, Default: VerdictFail},
	}
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		in      string
		want    Answer
		wantErr bool
	}{
		{"y", Yes, false},
		{" YES ", Yes, false},
		{"true", Yes, false},
		{"n", No, false},
		{"No", No, false},
		{"", Unanswered, false},
		{"unanswered", Unanswered, false},
		{"maybe", Unanswered, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAnswer(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnswerText(t *testing.T) {
	assert.Equal(t, "yes", Yes.String())
	assert.Equal(t, "no", No.String())
	assert.Equal(t, "unanswered", Unanswered.String())
	assert.False(t, Unanswered.IsAnswered())

	data, err := json.Marshal([]Answer{Yes, No, Unanswered})
	require.NoError(t, err)
	assert.JSONEq(t, `["yes","no","unanswered"]`, string(data))

	var fromYAML struct {
		Answers []Answer `yaml:"answers"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("answers: [yes, n]\n"), &fromYAML))
	assert.Equal(t, []Answer{Yes, No}, fromYAML.Answers)

	var bad Answer
	assert.Error(t, bad.UnmarshalText([]byte("perhaps")))
}

func TestOutcomeVerdict(t *testing.T) {
	assert.Equal(t, VerdictPass, OutcomePass.Verdict())
	assert.Equal(t, VerdictFail, OutcomeFail.Verdict())
	assert.Equal(t, VerdictNone, OutcomeNeedsTieBreak.Verdict())
	assert.Equal(t, OutcomeFail, OutcomeOf(VerdictFail))
	assert.Equal(t, Outcome(""), OutcomeOf(VerdictNone))
	assert.False(t, Outcome("MAYBE").Valid())
	assert.False(t, VerdictNone.Valid())
}

func TestThresholdMatches(t *testing.T) {
	tests := []struct {
		th    Threshold
		count int
		want  bool
	}{
		{ThresholdZero, 0, true},
		{ThresholdZero, 1, false},
		{ThresholdExactlyOne, 1, true},
		{ThresholdExactlyOne, 2, false},
		{ThresholdAtLeastOne, 3, true},
		{ThresholdAtLeastOne, 0, false},
		{ThresholdAtLeastTwo, 1, false},
		{ThresholdAtLeastTwo, 2, true},
		{Threshold("lots"), 5, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.th.Matches(tt.count), "%s with %d", tt.th, tt.count)
	}
}

func TestConditionHolds(t *testing.T) {
	c := Condition{"pass": ThresholdAtLeastOne, "fail": ThresholdZero}
	assert.True(t, c.Holds(map[string]int{"pass": 2}))
	assert.False(t, c.Holds(map[string]int{"pass": 2, "fail": 1}))
	assert.True(t, Condition(nil).Holds(nil))
}

func TestEvidenceSatisfies(t *testing.T) {
	artifact := Evidence{Kind: EvidenceKindAudio, Handle: "clip-1", ArtifactPresent: true}
	optOut := Evidence{OptedOut: true}

	assert.True(t, Evidence{}.Satisfies(EvidenceNone))
	assert.True(t, Evidence{}.Satisfies(""))
	assert.True(t, artifact.Satisfies(EvidenceTextOrAudio))
	assert.False(t, optOut.Satisfies(EvidenceTextOrAudio))
	assert.True(t, optOut.Satisfies(EvidenceTextOrAudioOrOptOut))
	assert.False(t, Evidence{}.Satisfies(EvidenceTextOrAudioOrOptOut))
}

func TestBranchGroupYAML(t *testing.T) {
	var b Branch
	require.NoError(t, yaml.Unmarshal([]byte(`
groups:
  - unusual
  - id: frequent
    when: {unusual: at_least_one}
default: pass
`), &b))

	require.Len(t, b.Groups, 2)
	assert.Equal(t, BranchGroup{ID: "unusual"}, b.Groups[0])
	assert.Equal(t, Condition{"unusual": ThresholdAtLeastOne}, b.Groups[1].When)
	assert.False(t, b.ShortCircuit())
}

func TestItemDefinitionLookups(t *testing.T) {
	def := sampleDef()

	assert.Equal(t, "Item 4 (climbing)", def.Label())
	assert.Equal(t, "Item 4", (&ItemDefinition{ID: 4}).Label())
	assert.Same(t, def.Yes, def.Branch(Yes))
	assert.Nil(t, def.Branch(Unanswered))
	assert.Equal(t, 1, def.GroupIndex("fail"))
	assert.Equal(t, -1, def.GroupIndex("other"))

	p, err := def.Prompt("pass", 1)
	require.NoError(t, err)
	assert.Equal(t, "Chairs?", p)
	_, err = def.Prompt("pass", 2)
	assert.Error(t, err)
	_, err = def.Prompt("other", 0)
	assert.Error(t, err)
}

func TestLedgerSlots(t *testing.T) {
	def := sampleDef()
	l := NewLedger(def)

	assert.Equal(t, []GroupLayout{{"pass", 2}, {"fail", 1}}, l.Layout)
	assert.Len(t, l.Slots, 3)
	assert.True(t, l.IsEmpty())
	assert.True(t, l.MatchesLayout(def))

	require.NoError(t, l.Set("pass", 1, Yes))
	require.NoError(t, l.Set("fail", 0, No))
	assert.True(t, errors.Is(l.Set("pass", 1, No), ErrSlotAnswered))
	assert.True(t, errors.Is(l.Set("fail", 1, No), ErrUnknownSlot))
	assert.True(t, errors.Is(l.Set("other", 0, No), ErrUnknownSlot))

	assert.Equal(t, []Answer{Unanswered, Yes, No}, l.Slots)
	assert.Equal(t, []Answer{Unanswered, Yes}, l.GroupAnswers("pass"))
	assert.Nil(t, l.GroupAnswers("other"))
	assert.Equal(t, 1, l.YesCount("pass"))
	assert.Equal(t, 2, l.AnsweredCount())
	assert.False(t, l.IsEmpty())
}

func TestLedgerCloneAndReset(t *testing.T) {
	l := NewLedger(sampleDef())
	l.Primary = No
	l.TieBreak = "pass"
	l.Evidence = Evidence{OptedOut: true}
	require.NoError(t, l.Set("pass", 0, Yes))

	c := l.Clone()
	c.Slots[0] = No
	assert.Equal(t, Yes, l.Slots[0], "clone shares no slots")

	l.Reset()
	assert.True(t, l.IsEmpty())
	assert.Len(t, l.Slots, 3, "reset keeps the layout")
	assert.Nil(t, (*Ledger)(nil).Clone())
}

func TestLedgerMatchesLayout(t *testing.T) {
	def := sampleDef()
	l := NewLedger(def)

	grown := sampleDef()
	grown.Groups[1].Prompts = append(grown.Groups[1].Prompts, "Rarely?")
	assert.False(t, l.MatchesLayout(grown))

	other := sampleDef()
	other.ID = 5
	assert.False(t, l.MatchesLayout(other))

	l.Slots = l.Slots[:2]
	assert.False(t, l.MatchesLayout(def))
}

func TestItemResult(t *testing.T) {
	r := &ItemResult{ItemID: 4, Verdict: VerdictFail, Completed: true, Ledger: NewLedger(sampleDef())}
	assert.True(t, r.Failed())
	assert.False(t, r.Passed())

	c := r.Clone()
	c.Ledger.Slots[0] = Yes
	assert.Equal(t, Unanswered, r.Ledger.Slots[0])

	var nilResult *ItemResult
	assert.Nil(t, nilResult.Clone())
	assert.False(t, nilResult.Passed())
}

func TestRiskBandFor(t *testing.T) {
	tests := []struct {
		score int
		want  RiskBand
	}{
		{0, RiskLow},
		{2, RiskLow},
		{3, RiskMedium},
		{7, RiskMedium},
		{8, RiskHigh},
		{20, RiskHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskBandFor(tt.score), "score %d", tt.score)
	}
}

func TestSummaryIsComplete(t *testing.T) {
	assert.False(t, Summary{}.IsComplete())
	assert.False(t, Summary{Total: 20, Answered: 19}.IsComplete())
	assert.True(t, Summary{Total: 20, Answered: 20}.IsComplete())
}

func TestStepStrings(t *testing.T) {
	assert.Equal(t, "ask-sub-question(pass#1)", Step{Kind: StepAskSubQuestion, GroupID: "pass", Slot: 1}.String())
	assert.Equal(t, "ask-tie-break(pass,fail)", Step{Kind: StepAskTieBreak, Groups: []string{"pass", "fail"}}.String())
	assert.Equal(t, "ask-evidence-gate", Step{Kind: StepAskEvidenceGate}.String())
	assert.Equal(t, "unknown", StepKind(99).String())
	assert.Equal(t, "tie-break-pending", StateTieBreakPending.String())
	assert.Equal(t, "unknown", State(42).String())
}

package instrument

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/mchat/internal/models"
	"github.com/harrison/mchat/internal/screening"
	"github.com/harrison/mchat/internal/store"
)

func builtinMachine(t *testing.T, id int) *screening.Machine {
	t.Helper()
	def, ok := MustDefault().Item(id)
	require.True(t, ok)
	m, err := screening.NewMachine(def, store.NewMemory())
	require.NoError(t, err)
	return m
}

func answer(t *testing.T, m *screening.Machine, answers ...models.Answer) {
	t.Helper()
	for _, a := range answers {
		require.NoError(t, m.Answer(context.Background(), a), "at %s", m.Step())
	}
}

func repeat(a models.Answer, n int) []models.Answer {
	out := make([]models.Answer, n)
	for i := range out {
		out[i] = a
	}
	return out
}

// The noise item passes when every inventory sound is answered no.
func TestNoiseItemAllNoPasses(t *testing.T) {
	for _, primary := range []models.Answer{models.Yes, models.No} {
		m := builtinMachine(t, 12)
		answer(t, m, primary)
		answer(t, m, repeat(models.No, 9)...)
		require.True(t, m.Completed(), "primary %s", primary)
		assert.Equal(t, models.VerdictPass, *m.Verdict())
	}
}

func TestNoiseItemSingleSoundPasses(t *testing.T) {
	m := builtinMachine(t, 12)
	answer(t, m, models.Yes, models.Yes)
	answer(t, m, repeat(models.No, 8)...)
	require.True(t, m.Completed(), "reaction groups are skipped for one sound")
	assert.Equal(t, models.VerdictPass, *m.Verdict())
}

func TestNoiseItemUpsetReactionFails(t *testing.T) {
	m := builtinMachine(t, 12)
	answer(t, m, models.Yes)
	answer(t, m, repeat(models.Yes, 3)...)
	answer(t, m, repeat(models.No, 6)...)
	answer(t, m, models.No, models.No)             // calm
	answer(t, m, models.Yes, models.No, models.No) // upset
	assert.Equal(t, models.VerdictFail, *m.Verdict())
}

// Name response with three pass-leaning and three fail-leaning yeses.
func TestNameResponseTieBreak(t *testing.T) {
	tests := []struct {
		choice string
		want   models.Verdict
	}{
		{"pass", models.VerdictPass},
		{"fail", models.VerdictFail},
	}
	for _, tt := range tests {
		t.Run(tt.choice, func(t *testing.T) {
			m := builtinMachine(t, 10)
			answer(t, m, models.Yes)
			answer(t, m, repeat(models.Yes, 6)...)

			require.Equal(t, models.StateTieBreakPending, m.State())
			assert.Equal(t, []string{"pass", "fail"}, m.Step().Groups)
			require.NoError(t, m.ChooseTieBreak(context.Background(), tt.choice))
			assert.Equal(t, tt.want, *m.Verdict())
		})
	}
}

func TestPointShowRequiresEvidence(t *testing.T) {
	ctx := context.Background()
	m := builtinMachine(t, 7)
	answer(t, m, models.Yes)

	require.Equal(t, models.StepAskEvidenceGate, m.Step().Kind)
	assert.ErrorIs(t, m.SupplyEvidence(ctx, models.Evidence{OptedOut: true}), screening.ErrEvidenceGateUnsatisfied)
	assert.Equal(t, models.StepAskEvidenceGate, m.Step().Kind)
}

func TestPointFollowAcceptsOptOut(t *testing.T) {
	ctx := context.Background()
	m := builtinMachine(t, 1)
	answer(t, m, models.Yes)

	require.NoError(t, m.SupplyEvidence(ctx, models.Evidence{OptedOut: true}))
	answer(t, m, models.No, models.Yes, models.No, models.No)
	answer(t, m, models.No, models.No, models.No)
	assert.Equal(t, models.VerdictPass, *m.Verdict())
}

// Every item's all-no ledger lands on its tabulated default.
func TestAllNoLedgers(t *testing.T) {
	in := MustDefault()
	for _, def := range in.Items {
		for _, primary := range []models.Answer{models.Yes, models.No} {
			b := def.Branch(primary)
			if b.ShortCircuit() {
				continue
			}
			ledger := models.NewLedger(def)
			ledger.Primary = primary
			ledger.Evidence = models.Evidence{ArtifactPresent: true}
			for i := range ledger.Slots {
				ledger.Slots[i] = models.No
			}

			outcome, err := screening.Score(def, ledger)
			require.NoError(t, err, "%s primary %s", def.Label(), primary)
			assert.Equal(t, models.OutcomeOf(b.Default), outcome, "%s primary %s", def.Label(), primary)
		}
	}
}

func TestImitationNeedsTwo(t *testing.T) {
	m := builtinMachine(t, 15)
	answer(t, m, models.Yes, models.Yes)
	answer(t, m, repeat(models.No, 5)...)
	assert.Equal(t, models.VerdictFail, *m.Verdict())

	m = builtinMachine(t, 15)
	answer(t, m, models.Yes, models.Yes, models.Yes)
	answer(t, m, repeat(models.No, 4)...)
	assert.Equal(t, models.VerdictPass, *m.Verdict())
}

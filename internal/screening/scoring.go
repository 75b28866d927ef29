package screening

import (
	"fmt"

	"github.com/harrison/mchat/internal/models"
)

// Score maps a complete ledger to PASS, FAIL or NEEDS_TIEBREAK.
//
// Score is pure: the same definition and ledger always produce the same
// outcome. A ledger the branch resolver would still ask questions about
// is rejected with ErrIncompleteLedger rather than guessed at. A recorded
// tie-break selection resolves NEEDS_TIEBREAK to the selected group's verdict.
func Score(def *models.ItemDefinition, ledger *models.Ledger) (models.Outcome, error) {
	w, err := traverse(def, ledger)
	if err != nil {
		return "", err
	}
	if w.pending != nil {
		return "", fmt.Errorf("%w: item %d still needs %s", ErrIncompleteLedger, def.ID, w.pending)
	}
	if w.branch.ShortCircuit() {
		return models.OutcomeOf(w.branch.Verdict), nil
	}

	d, err := decide(def, w.branch, w.counts)
	if err != nil {
		return "", err
	}
	if d.outcome != models.OutcomeNeedsTieBreak {
		return d.outcome, nil
	}
	if ledger.TieBreak == "" {
		return models.OutcomeNeedsTieBreak, nil
	}
	if !contains(d.ambiguous, ledger.TieBreak) {
		return "", fmt.Errorf("%w: %q is not one of %v", ErrInvalidTieBreak, ledger.TieBreak, d.ambiguous)
	}
	g, _ := def.Group(ledger.TieBreak)
	return models.OutcomeOf(g.TieBreak), nil
}

// YesCounts returns the yes-count of every group the ledger's branch visits.
// Skipped groups are omitted.
func YesCounts(def *models.ItemDefinition, ledger *models.Ledger) (map[string]int, error) {
	w, err := traverse(def, ledger)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(w.counts))
	for k, v := range w.counts {
		out[k] = v
	}
	return out, nil
}

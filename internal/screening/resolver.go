// Package screening implements the per-item branching assessment engine:
// the branch resolver, the scoring function, load-time validation of item
// definitions and the item state machine that ties them to a result store.
//
// One engine interprets every item. Per-item behavior lives entirely in
// models.ItemDefinition values, so adding or changing an item never
// touches this package.
package screening

import (
	"fmt"
	"sort"

	"github.com/harrison/mchat/internal/models"
)

// walk is a ledger's progress through the branch selected by its primary answer.
type walk struct {
	branch  *models.Branch
	counts  map[string]int // yes-counts of visited groups only
	pending *models.Step   // first thing still to ask, nil when every visited slot is answered
}

// traverse follows the ledger through the definition without evaluating rules.
func traverse(def *models.ItemDefinition, ledger *models.Ledger) (*walk, error) {
	if ledger == nil {
		return nil, fmt.Errorf("%w: nil ledger", ErrIncompleteLedger)
	}
	if !ledger.MatchesLayout(def) {
		return nil, fmt.Errorf("%w: ledger layout does not match item %d", ErrSchemaMismatch, def.ID)
	}

	w := &walk{counts: make(map[string]int)}
	if !ledger.Primary.IsAnswered() {
		w.pending = &models.Step{Kind: models.StepAskPrimary}
		return w, nil
	}

	w.branch = def.Branch(ledger.Primary)
	if w.branch == nil {
		return nil, fmt.Errorf("%w: item %d has no %s branch", ErrMalformedRuleTable, def.ID, ledger.Primary)
	}
	if w.branch.ShortCircuit() {
		return w, nil
	}

	if !ledger.Evidence.Satisfies(w.branch.Evidence) {
		w.pending = &models.Step{Kind: models.StepAskEvidenceGate}
		return w, nil
	}

	for _, bg := range w.branch.Groups {
		// Every earlier visited group is fully answered here, so When sees final counts.
		if !bg.When.Holds(w.counts) {
			continue
		}
		answers := ledger.GroupAnswers(bg.ID)
		yes := 0
		for i, a := range answers {
			if !a.IsAnswered() {
				w.pending = &models.Step{Kind: models.StepAskSubQuestion, GroupID: bg.ID, Slot: i}
				return w, nil
			}
			if a == models.Yes {
				yes++
			}
		}
		w.counts[bg.ID] = yes
	}
	return w, nil
}

// decision is the decision table's reading of a fully answered branch.
type decision struct {
	outcome   models.Outcome
	ambiguous []string
}

// decide evaluates the branch's rules in order; the first match wins.
// An all-no ledger that matches no rule takes the branch default.
func decide(def *models.ItemDefinition, branch *models.Branch, counts map[string]int) (decision, error) {
	for _, rule := range branch.Rules {
		if !rule.When.Holds(counts) {
			continue
		}
		d := decision{outcome: rule.Outcome}
		if rule.Outcome == models.OutcomeNeedsTieBreak {
			d.ambiguous = ambiguousGroups(def, rule.When)
		}
		return d, nil
	}

	for _, n := range counts {
		if n > 0 {
			return decision{}, fmt.Errorf("%w: item %d: no rule matches yes-counts %s",
				ErrMalformedRuleTable, def.ID, formatCounts(branch, counts))
		}
	}
	return decision{outcome: models.OutcomeOf(branch.Default)}, nil
}

// ambiguousGroups returns the groups a tie-break rule requires to have a yes
// and that carry a tie-break verdict, in authored order.
func ambiguousGroups(def *models.ItemDefinition, when models.Condition) []string {
	var groups []string
	for id, th := range when {
		if th.Matches(0) {
			continue
		}
		if g, ok := def.Group(id); ok && g.TieBreak.Valid() {
			groups = append(groups, id)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return def.GroupIndex(groups[i]) < def.GroupIndex(groups[j])
	})
	return groups
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// NextStep reports what the item needs next given the ledger's content.
// It never mutates the ledger.
func NextStep(def *models.ItemDefinition, ledger *models.Ledger) (models.Step, error) {
	w, err := traverse(def, ledger)
	if err != nil {
		return models.Step{}, err
	}
	if w.pending != nil {
		return *w.pending, nil
	}
	if w.branch.ShortCircuit() {
		return models.Step{Kind: models.StepScored}, nil
	}

	d, err := decide(def, w.branch, w.counts)
	if err != nil {
		return models.Step{}, err
	}
	if d.outcome == models.OutcomeNeedsTieBreak {
		if ledger.TieBreak == "" {
			return models.Step{Kind: models.StepAskTieBreak, Groups: d.ambiguous}, nil
		}
		if !contains(d.ambiguous, ledger.TieBreak) {
			return models.Step{}, fmt.Errorf("%w: %q is not one of %v", ErrInvalidTieBreak, ledger.TieBreak, d.ambiguous)
		}
	}
	return models.Step{Kind: models.StepScored}, nil
}

func formatCounts(branch *models.Branch, counts map[string]int) string {
	s := "{"
	for i, bg := range branch.Groups {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%d", bg.ID, counts[bg.ID])
	}
	return s + "}"
}

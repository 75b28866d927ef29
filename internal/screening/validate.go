package screening

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harrison/mchat/internal/models"
)

// MaxItems is the number of items in the instrument.
const MaxItems = 20

// maxCombinations bounds the exhaustive rule-table check per branch.
const maxCombinations = 1 << 16

// ValidateDefinition rejects an item definition that could strand a ledger
// without a verdict. It is meant to run at load time; the engine assumes
// every definition it interprets has passed.
func ValidateDefinition(def *models.ItemDefinition) error {
	if def == nil {
		return &MalformedRuleTableError{Reasons: []string{"nil definition"}}
	}
	e := &MalformedRuleTableError{ItemID: def.ID}

	if def.ID < 1 || def.ID > MaxItems {
		e.addf("id must be between 1 and %d", MaxItems)
	}
	if strings.TrimSpace(def.Question) == "" {
		e.addf("question is required")
	}
	if !def.RiskAnswer.IsAnswered() {
		e.addf("risk_answer must be yes or no")
	}

	seen := make(map[string]bool)
	for i, g := range def.Groups {
		switch {
		case g.ID == "":
			e.addf("group %d has no id", i)
		case seen[g.ID]:
			e.addf("duplicate group %q", g.ID)
		}
		seen[g.ID] = true
		if !g.Role.Valid() {
			e.addf("group %q has unknown role %q", g.ID, g.Role)
		}
		if len(g.Prompts) == 0 {
			e.addf("group %q has no prompts", g.ID)
		}
		for j, p := range g.Prompts {
			if strings.TrimSpace(p) == "" {
				e.addf("group %q prompt %d is empty", g.ID, j)
			}
		}
		if g.TieBreak != models.VerdictNone && !g.TieBreak.Valid() {
			e.addf("group %q has unknown tie_break verdict %q", g.ID, g.TieBreak)
		}
	}

	for _, pair := range []struct {
		name   string
		branch *models.Branch
	}{{"yes", def.Yes}, {"no", def.No}} {
		if pair.branch == nil {
			e.addf("missing %s branch", pair.name)
			continue
		}
		validateBranch(def, pair.name, pair.branch, e)
	}

	if len(e.Reasons) > 0 {
		return e
	}
	return nil
}

func validateBranch(def *models.ItemDefinition, name string, b *models.Branch, e *MalformedRuleTableError) {
	before := len(e.Reasons)

	if !b.Evidence.Valid() {
		e.addf("%s branch: unknown evidence requirement %q", name, b.Evidence)
	}

	if b.ShortCircuit() {
		if !b.Verdict.Valid() {
			e.addf("%s branch: unknown verdict %q", name, b.Verdict)
		}
		if len(b.Groups) > 0 || len(b.Rules) > 0 {
			e.addf("%s branch: verdict and groups are mutually exclusive", name)
		}
		if b.Evidence.Required() {
			e.addf("%s branch: evidence gate on a branch without sub-questions", name)
		}
		return
	}

	if len(b.Groups) == 0 {
		e.addf("%s branch: needs either a verdict or groups", name)
		return
	}
	if !b.Default.Valid() {
		e.addf("%s branch: missing default verdict", name)
	}

	position := make(map[string]int, len(b.Groups))
	for i, bg := range b.Groups {
		if _, ok := def.Group(bg.ID); !ok {
			e.addf("%s branch: unknown group %q", name, bg.ID)
			continue
		}
		if _, dup := position[bg.ID]; dup {
			e.addf("%s branch: group %q visited twice", name, bg.ID)
			continue
		}
		for ref, th := range bg.When {
			p, ok := position[ref]
			if !ok || p >= i {
				e.addf("%s branch: group %q is gated on %q, which is not visited earlier", name, bg.ID, ref)
			}
			if !th.Valid() {
				e.addf("%s branch: group %q has unknown threshold %q", name, bg.ID, th)
			}
		}
		position[bg.ID] = i
	}

	for i, rule := range b.Rules {
		if !rule.Outcome.Valid() {
			e.addf("%s branch rule %d: unknown outcome %q", name, i+1, rule.Outcome)
		}
		if len(rule.When) == 0 {
			e.addf("%s branch rule %d: empty condition", name, i+1)
		}
		for ref, th := range rule.When {
			if _, ok := position[ref]; !ok {
				e.addf("%s branch rule %d: group %q is not visited by this branch", name, i+1, ref)
			}
			if !th.Valid() {
				e.addf("%s branch rule %d: unknown threshold %q", name, i+1, th)
			}
		}
		if rule.Outcome == models.OutcomeNeedsTieBreak {
			if ambiguous := ambiguousGroups(def, rule.When); len(ambiguous) < 2 {
				e.addf("%s branch rule %d: tie-break needs at least two groups that require a yes and carry a tie_break verdict", name, i+1)
			}
		}
	}

	// Exhaustive coverage needs a structurally sound branch.
	if len(e.Reasons) > before {
		return
	}
	checkCoverage(def, name, b, e)
}

// checkCoverage enumerates every reachable combination of yes-counts and
// requires each to reach a terminal verdict. A tie-break rule that no
// reachable combination selects is rejected as well.
func checkCoverage(def *models.ItemDefinition, name string, b *models.Branch, e *MalformedRuleTableError) {
	total := 1
	for _, bg := range b.Groups {
		g, _ := def.Group(bg.ID)
		total *= len(g.Prompts) + 1
		if total > maxCombinations {
			e.addf("%s branch: too many answer combinations to verify", name)
			return
		}
	}

	fired := make([]bool, len(b.Rules))
	uncovered := make(map[string]bool)
	counts := make(map[string]int, len(b.Groups))

	var visit func(i int)
	visit = func(i int) {
		if i == len(b.Groups) {
			for r, rule := range b.Rules {
				if rule.When.Holds(counts) {
					fired[r] = true
					return
				}
			}
			for _, n := range counts {
				if n > 0 {
					uncovered[formatCounts(b, counts)] = true
					return
				}
			}
			return
		}
		bg := b.Groups[i]
		if !bg.When.Holds(counts) {
			counts[bg.ID] = 0
			visit(i + 1)
			delete(counts, bg.ID)
			return
		}
		g, _ := def.Group(bg.ID)
		for n := 0; n <= len(g.Prompts); n++ {
			counts[bg.ID] = n
			visit(i + 1)
		}
		delete(counts, bg.ID)
	}
	visit(0)

	combos := make([]string, 0, len(uncovered))
	for combo := range uncovered {
		combos = append(combos, combo)
	}
	sort.Strings(combos)
	for _, combo := range combos {
		e.addf("%s branch: no rule covers yes-counts %s", name, combo)
	}
	for r, rule := range b.Rules {
		if rule.Outcome == models.OutcomeNeedsTieBreak && !fired[r] {
			e.addf("%s branch rule %d: tie-break is unreachable", name, r+1)
		}
	}
}

// ValidateInstrument validates every definition and checks ids are unique.
func ValidateInstrument(defs []*models.ItemDefinition) error {
	if len(defs) == 0 {
		return fmt.Errorf("%w: instrument has no items", ErrMalformedRuleTable)
	}
	if len(defs) > MaxItems {
		return fmt.Errorf("%w: instrument has %d items, at most %d allowed", ErrMalformedRuleTable, len(defs), MaxItems)
	}

	var errs []error
	ids := make(map[int]bool, len(defs))
	for _, def := range defs {
		if err := ValidateDefinition(def); err != nil {
			errs = append(errs, err)
			continue
		}
		if ids[def.ID] {
			errs = append(errs, &MalformedRuleTableError{ItemID: def.ID, Reasons: []string{"duplicate item id"}})
		}
		ids[def.ID] = true
	}
	return errors.Join(errs...)
}

package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EvidenceRequirement gates entry into an item's sub-questions.
type EvidenceRequirement string

const (
	EvidenceNone                EvidenceRequirement = "none"
	EvidenceTextOrAudio         EvidenceRequirement = "text_or_audio"
	EvidenceTextOrAudioOrOptOut EvidenceRequirement = "text_or_audio_or_opt_out"
)

// Required reports whether the caregiver must supply something before sub-questions.
func (e EvidenceRequirement) Required() bool {
	return e == EvidenceTextOrAudio || e == EvidenceTextOrAudioOrOptOut
}

// AllowsOptOut reports whether checking "prefer not to answer" satisfies the gate.
func (e EvidenceRequirement) AllowsOptOut() bool {
	return e == EvidenceTextOrAudioOrOptOut
}

// Valid reports whether e is a known requirement. The empty string means none.
func (e EvidenceRequirement) Valid() bool {
	switch e {
	case "", EvidenceNone, EvidenceTextOrAudio, EvidenceTextOrAudioOrOptOut:
		return true
	}
	return false
}

// Threshold compares a group's yes-count against a fixed bound.
type Threshold string

const (
	ThresholdZero       Threshold = "zero"
	ThresholdExactlyOne Threshold = "exactly_one"
	ThresholdAtLeastOne Threshold = "at_least_one"
	ThresholdAtLeastTwo Threshold = "at_least_two"
)

// Matches reports whether count satisfies the threshold.
func (t Threshold) Matches(count int) bool {
	switch t {
	case ThresholdZero:
		return count == 0
	case ThresholdExactlyOne:
		return count == 1
	case ThresholdAtLeastOne:
		return count >= 1
	case ThresholdAtLeastTwo:
		return count >= 2
	}
	return false
}

// Valid reports whether t is a known threshold.
func (t Threshold) Valid() bool {
	switch t {
	case ThresholdZero, ThresholdExactlyOne, ThresholdAtLeastOne, ThresholdAtLeastTwo:
		return true
	}
	return false
}

// GroupRole tags a sub-question group with its scoring role.
type GroupRole string

const (
	RolePassLeaning    GroupRole = "pass-leaning"
	RoleFailLeaning    GroupRole = "fail-leaning"
	RoleNoiseInventory GroupRole = "noise-inventory"
	RoleCommandSet     GroupRole = "command-set"
	RoleExamples       GroupRole = "examples"
	RoleFollowUp       GroupRole = "follow-up"
)

// Valid reports whether r is a known role.
func (r GroupRole) Valid() bool {
	switch r {
	case RolePassLeaning, RoleFailLeaning, RoleNoiseInventory, RoleCommandSet, RoleExamples, RoleFollowUp:
		return true
	}
	return false
}

// Group is a named, ordered set of follow-up yes/no prompts.
type Group struct {
	ID      string    `yaml:"id" json:"id"`
	Role    GroupRole `yaml:"role" json:"role"`
	Lead    string    `yaml:"lead,omitempty" json:"lead,omitempty"` // shown before the first prompt
	Prompts []string  `yaml:"prompts" json:"prompts"`

	// TieBreak is the verdict assigned when the caregiver names this group
	// as the behavior observed most often. Empty for groups that never
	// take part in a tie-break.
	TieBreak Verdict `yaml:"tie_break,omitempty" json:"tie_break,omitempty"`
}

// Condition maps group ids to the threshold their yes-count must satisfy.
// All entries must hold for the condition to hold.
type Condition map[string]Threshold

// Holds evaluates the condition against per-group yes-counts.
// Groups absent from counts are treated as zero.
func (c Condition) Holds(counts map[string]int) bool {
	for id, th := range c {
		if !th.Matches(counts[id]) {
			return false
		}
	}
	return true
}

// Rule is one row of an item's decision table.
type Rule struct {
	When    Condition `yaml:"when" json:"when"`
	Outcome Outcome   `yaml:"outcome" json:"outcome"`
}

// BranchGroup is a group visited by a branch, optionally only when a
// condition over earlier groups holds.
type BranchGroup struct {
	ID   string    `yaml:"id" json:"id"`
	When Condition `yaml:"when,omitempty" json:"when,omitempty"`
}

// UnmarshalYAML accepts either a bare group id or a mapping with id/when.
func (bg *BranchGroup) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		bg.ID = node.Value
		bg.When = nil
		return nil
	}
	type plain BranchGroup
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*bg = BranchGroup(p)
	return nil
}

// Branch is the part of an item's decision tree taken after one primary answer.
//
// YAML structure:
//
//	yes:
//	  verdict: pass            # short-circuit, no sub-questions
//	no:
//	  evidence: text_or_audio  # optional gate
//	  groups: [pass, fail]
//	  rules:
//	    - when: {pass: at_least_one, fail: zero}
//	      outcome: PASS
//	  default: fail            # all-no ledger
type Branch struct {
	Verdict        Verdict             `yaml:"verdict,omitempty" json:"verdict,omitempty"`
	Evidence       EvidenceRequirement `yaml:"evidence,omitempty" json:"evidence,omitempty"`
	EvidencePrompt string              `yaml:"evidence_prompt,omitempty" json:"evidence_prompt,omitempty"`
	Groups         []BranchGroup       `yaml:"groups,omitempty" json:"groups,omitempty"`
	Rules          []Rule              `yaml:"rules,omitempty" json:"rules,omitempty"`
	Default        Verdict             `yaml:"default,omitempty" json:"default,omitempty"`
}

// ShortCircuit reports whether the branch scores immediately.
func (b *Branch) ShortCircuit() bool {
	return b.Verdict != VerdictNone
}

// ItemDefinition is the static, authored decision tree for one questionnaire item.
type ItemDefinition struct {
	ID       int     `yaml:"id" json:"id"`
	Key      string  `yaml:"key" json:"key"`
	Question string  `yaml:"question" json:"question"`
	Groups   []Group `yaml:"groups,omitempty" json:"groups,omitempty"`
	Yes      *Branch `yaml:"yes" json:"yes"`
	No       *Branch `yaml:"no" json:"no"`

	// RiskAnswer is the primary answer that counts toward the initial
	// screening score. Most items are at risk on "no"; reverse-scored
	// items are at risk on "yes".
	RiskAnswer Answer `yaml:"risk_answer" json:"risk_answer"`
}

// Branch returns the branch for a primary answer, or nil when unanswered.
func (d *ItemDefinition) Branch(primary Answer) *Branch {
	switch primary {
	case Yes:
		return d.Yes
	case No:
		return d.No
	}
	return nil
}

// Group looks up a group by id.
func (d *ItemDefinition) Group(id string) (*Group, bool) {
	for i := range d.Groups {
		if d.Groups[i].ID == id {
			return &d.Groups[i], true
		}
	}
	return nil, false
}

// GroupIndex returns the authored position of a group, or -1.
func (d *ItemDefinition) GroupIndex(id string) int {
	for i := range d.Groups {
		if d.Groups[i].ID == id {
			return i
		}
	}
	return -1
}

// Layout returns the slot layout of the item: one entry per group in authored order.
func (d *ItemDefinition) Layout() []GroupLayout {
	layout := make([]GroupLayout, len(d.Groups))
	for i, g := range d.Groups {
		layout[i] = GroupLayout{GroupID: g.ID, Size: len(g.Prompts)}
	}
	return layout
}

// Prompt returns the prompt text of one slot.
func (d *ItemDefinition) Prompt(groupID string, slot int) (string, error) {
	g, ok := d.Group(groupID)
	if !ok {
		return "", fmt.Errorf("item %d: unknown group %q", d.ID, groupID)
	}
	if slot < 0 || slot >= len(g.Prompts) {
		return "", fmt.Errorf("item %d: group %q has no slot %d", d.ID, groupID, slot)
	}
	return g.Prompts[slot], nil
}

// Label returns a short human-readable name, e.g. "Item 7 (point-show)".
func (d *ItemDefinition) Label() string {
	if d.Key == "" {
		return fmt.Sprintf("Item %d", d.ID)
	}
	return fmt.Sprintf("Item %d (%s)", d.ID, d.Key)
}

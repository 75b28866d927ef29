package models

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotAnswered is returned when a slot that already holds an answer is written again.
	ErrSlotAnswered = errors.New("slot already answered")

	// ErrUnknownSlot is returned for a group id or slot index outside the ledger layout.
	ErrUnknownSlot = errors.New("unknown slot")
)

// GroupLayout is one group's share of the ledger's slot array.
type GroupLayout struct {
	GroupID string `json:"group_id" yaml:"group_id"`
	Size    int    `json:"size" yaml:"size"`
}

// EvidenceKind identifies the artifact captured by the presentation layer.
type EvidenceKind string

const (
	EvidenceKindNone  EvidenceKind = ""
	EvidenceKindText  EvidenceKind = "text"
	EvidenceKindAudio EvidenceKind = "audio"
)

// Evidence is what the capture widget hands the engine. Handle is opaque.
type Evidence struct {
	Kind            EvidenceKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Handle          string       `json:"handle,omitempty" yaml:"handle,omitempty"`
	ArtifactPresent bool         `json:"artifact_present" yaml:"artifact_present"`
	OptedOut        bool         `json:"opted_out" yaml:"opted_out"`
}

// Satisfies reports whether the evidence opens a gate with the given requirement.
// A captured artifact opens every gate. An opt-out opens only gates whose
// requirement is text_or_audio_or_opt_out (see EvidenceRequirement.AllowsOptOut).
func (e Evidence) Satisfies(req EvidenceRequirement) bool {
	if !req.Required() {
		return true
	}
	if e.ArtifactPresent {
		return true
	}
	return e.OptedOut && req.AllowsOptOut()
}

// Ledger records one attempt at one item. Slots is pre-sized from the
// item's layout; each slot is written at most once per attempt.
type Ledger struct {
	ItemID   int           `json:"item_id"`
	Primary  Answer        `json:"primary"`
	Layout   []GroupLayout `json:"layout"`
	Slots    []Answer      `json:"slots"`
	TieBreak string        `json:"tie_break,omitempty"`
	Evidence Evidence      `json:"evidence"`
}

// NewLedger returns an empty ledger sized for def.
func NewLedger(def *ItemDefinition) *Ledger {
	layout := def.Layout()
	size := 0
	for _, g := range layout {
		size += g.Size
	}
	return &Ledger{
		ItemID: def.ID,
		Layout: layout,
		Slots:  make([]Answer, size),
	}
}

// Clone returns a deep copy.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return nil
	}
	c := *l
	c.Layout = append([]GroupLayout(nil), l.Layout...)
	c.Slots = append([]Answer(nil), l.Slots...)
	return &c
}

// Reset clears every answer while keeping the layout.
func (l *Ledger) Reset() {
	l.Primary = Unanswered
	for i := range l.Slots {
		l.Slots[i] = Unanswered
	}
	l.TieBreak = ""
	l.Evidence = Evidence{}
}

// groupRange returns the [start, end) slot range of a group.
func (l *Ledger) groupRange(groupID string) (int, int, bool) {
	offset := 0
	for _, g := range l.Layout {
		if g.GroupID == groupID {
			return offset, offset + g.Size, true
		}
		offset += g.Size
	}
	return 0, 0, false
}

// Get returns the answer in one slot of a group.
func (l *Ledger) Get(groupID string, slot int) (Answer, error) {
	start, end, ok := l.groupRange(groupID)
	if !ok || slot < 0 || start+slot >= end || start+slot >= len(l.Slots) {
		return Unanswered, fmt.Errorf("%w: %s#%d", ErrUnknownSlot, groupID, slot)
	}
	return l.Slots[start+slot], nil
}

// Set writes an answer into an unanswered slot.
func (l *Ledger) Set(groupID string, slot int, a Answer) error {
	current, err := l.Get(groupID, slot)
	if err != nil {
		return err
	}
	if current.IsAnswered() {
		return fmt.Errorf("%w: %s#%d", ErrSlotAnswered, groupID, slot)
	}
	start, _, _ := l.groupRange(groupID)
	l.Slots[start+slot] = a
	return nil
}

// GroupAnswers returns a copy of one group's slots.
func (l *Ledger) GroupAnswers(groupID string) []Answer {
	start, end, ok := l.groupRange(groupID)
	if !ok || end > len(l.Slots) {
		return nil
	}
	return append([]Answer(nil), l.Slots[start:end]...)
}

// YesCount returns how many slots of a group are answered yes.
func (l *Ledger) YesCount(groupID string) int {
	n := 0
	for _, a := range l.GroupAnswers(groupID) {
		if a == Yes {
			n++
		}
	}
	return n
}

// AnsweredCount returns the number of answered sub-question slots.
func (l *Ledger) AnsweredCount() int {
	n := 0
	for _, a := range l.Slots {
		if a.IsAnswered() {
			n++
		}
	}
	return n
}

// IsEmpty reports whether nothing has been recorded.
func (l *Ledger) IsEmpty() bool {
	return !l.Primary.IsAnswered() && l.AnsweredCount() == 0 && l.TieBreak == "" && l.Evidence == (Evidence{})
}

// MatchesLayout reports whether the ledger's shape equals the definition's.
func (l *Ledger) MatchesLayout(def *ItemDefinition) bool {
	if l.ItemID != def.ID {
		return false
	}
	want := def.Layout()
	if len(want) != len(l.Layout) {
		return false
	}
	size := 0
	for i := range want {
		if want[i] != l.Layout[i] {
			return false
		}
		size += want[i].Size
	}
	return size == len(l.Slots)
}

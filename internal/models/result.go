package models

import "time"

// EvidenceSummary is the persisted view of an item's evidence gate.
type EvidenceSummary struct {
	Required EvidenceRequirement `json:"required,omitempty"`
	Kind     EvidenceKind        `json:"kind,omitempty"`
	Handle   string              `json:"handle,omitempty"`
	Present  bool                `json:"present"`
	OptedOut bool                `json:"opted_out"`
}

// ItemResult is the finalized, committed outcome of one item.
// Completed implies Verdict is set and reproducible from Ledger.
type ItemResult struct {
	ItemID      int             `json:"item_id"`
	Verdict     Verdict         `json:"verdict"`
	Primary     Answer          `json:"primary"`
	Ledger      *Ledger         `json:"ledger"`
	TieBreak    string          `json:"tie_break,omitempty"`
	Evidence    EvidenceSummary `json:"evidence"`
	Completed   bool            `json:"completed"`
	CompletedAt time.Time       `json:"completed_at"`
}

// Clone returns a deep copy so stores never share ledgers with engines.
func (r *ItemResult) Clone() *ItemResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Ledger = r.Ledger.Clone()
	return &c
}

// Passed reports whether the item was committed with a PASS verdict.
func (r *ItemResult) Passed() bool {
	return r != nil && r.Completed && r.Verdict == VerdictPass
}

// Failed reports whether the item was committed with a FAIL verdict.
func (r *ItemResult) Failed() bool {
	return r != nil && r.Completed && r.Verdict == VerdictFail
}

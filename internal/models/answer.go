package models

import (
	"fmt"
	"strings"
)

// Answer is a caregiver's yes/no response to one prompt.
// The zero value is Unanswered, which is distinct from No.
type Answer uint8

const (
	Unanswered Answer = iota
	Yes
	No
)

// String returns "yes", "no" or "unanswered".
func (a Answer) String() string {
	switch a {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unanswered"
	}
}

// IsAnswered reports whether the answer is Yes or No.
func (a Answer) IsAnswered() bool {
	return a == Yes || a == No
}

// ParseAnswer accepts yes/no in the usual short and long spellings.
func ParseAnswer(s string) (Answer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true":
		return Yes, nil
	case "n", "no", "false":
		return No, nil
	case "", "unanswered":
		return Unanswered, nil
	default:
		return Unanswered, fmt.Errorf("invalid answer %q: must be yes or no", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Answer) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Answer) UnmarshalText(text []byte) error {
	parsed, err := ParseAnswer(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Verdict is the PASS/FAIL outcome assigned to one item.
type Verdict string

const (
	VerdictNone Verdict = ""
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// Valid reports whether v is pass or fail.
func (v Verdict) Valid() bool {
	return v == VerdictPass || v == VerdictFail
}

// Outcome is what the scoring function produces for a complete ledger.
type Outcome string

const (
	OutcomePass          Outcome = "PASS"
	OutcomeFail          Outcome = "FAIL"
	OutcomeNeedsTieBreak Outcome = "NEEDS_TIEBREAK"
)

// Valid reports whether o is one of the three known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePass, OutcomeFail, OutcomeNeedsTieBreak:
		return true
	}
	return false
}

// Verdict maps PASS/FAIL to the matching verdict; NEEDS_TIEBREAK has none.
func (o Outcome) Verdict() Verdict {
	switch o {
	case OutcomePass:
		return VerdictPass
	case OutcomeFail:
		return VerdictFail
	default:
		return VerdictNone
	}
}

// OutcomeOf is the inverse of Outcome.Verdict.
func OutcomeOf(v Verdict) Outcome {
	switch v {
	case VerdictPass:
		return OutcomePass
	case VerdictFail:
		return OutcomeFail
	}
	return ""
}

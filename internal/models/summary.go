package models

import "time"

// ScreenResult is the follow-up interview's overall result.
type ScreenResult string

const (
	ScreenIncomplete ScreenResult = "incomplete"
	ScreenNegative   ScreenResult = "negative"
	ScreenPositive   ScreenResult = "positive"
)

// RiskBand buckets the initial (primary-answer) screening score.
type RiskBand string

const (
	RiskLow    RiskBand = "low"    // 0-2
	RiskMedium RiskBand = "medium" // 3-7
	RiskHigh   RiskBand = "high"   // 8-20
)

// RiskBandFor returns the band for an initial screening score.
func RiskBandFor(score int) RiskBand {
	switch {
	case score >= 8:
		return RiskHigh
	case score >= 3:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Participant holds caregiver and child details collected by the presentation layer.
type Participant struct {
	ChildName      string    `json:"child_name,omitempty" yaml:"child_name,omitempty"`
	ChildBirthDate time.Time `json:"child_birth_date,omitempty" yaml:"child_birth_date,omitempty"`
	GuardianName   string    `json:"guardian_name,omitempty" yaml:"guardian_name,omitempty"`
	Relationship   string    `json:"relationship,omitempty" yaml:"relationship,omitempty"`
}

// Summary aggregates a session's committed item results.
type Summary struct {
	SessionID   string
	Total       int
	Answered    int
	Passed      int
	Failed      int
	FailedItems []int
	Pending     []int

	// FollowUpScore is the number of items that failed the follow-up interview.
	FollowUpScore int
	Screen        ScreenResult

	// InitialRisk counts committed items whose primary answer was the at-risk answer.
	InitialRisk int
	RiskBand    RiskBand
}

// IsComplete reports whether every item has been committed.
func (s Summary) IsComplete() bool {
	return s.Total > 0 && s.Answered == s.Total
}

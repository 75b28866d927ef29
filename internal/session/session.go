// Package session aggregates one caregiver's pass through an instrument:
// one item machine per definition, sharing a single result store.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/mchat/internal/models"
	"github.com/harrison/mchat/internal/screening"
)

// DefaultPositiveThreshold is the follow-up fail count at which a screen is positive.
const DefaultPositiveThreshold = 2

// Logger receives item events and the final summary.
type Logger interface {
	screening.Logger
	LogSummary(summary models.Summary)
}

// Option configures a Session.
type Option func(*Session)

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

// WithParticipant attaches caregiver and child details.
func WithParticipant(p models.Participant) Option {
	return func(s *Session) { s.Participant = p }
}

// WithPositiveThreshold sets the follow-up fail count for a positive screen.
func WithPositiveThreshold(n int) Option {
	return func(s *Session) { s.positiveThreshold = n }
}

// WithClock overrides the time source for the session and its items.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session holds the item machines for one screening.
type Session struct {
	ID          string
	CreatedAt   time.Time
	Participant models.Participant
	Instrument  *models.Instrument

	machines          []*screening.Machine
	byID              map[int]*screening.Machine
	restoreErrs       map[int]error
	logger            Logger
	positiveThreshold int
	now               func() time.Time
}

// New builds a machine for every item and restores each from store.
// An item whose stored result no longer fits its definition starts over;
// the mismatch is reported by RestoreErrors rather than failing the session.
func New(ctx context.Context, in *models.Instrument, store screening.ResultStore, logger Logger, opts ...Option) (*Session, error) {
	if in == nil || len(in.Items) == 0 {
		return nil, errors.New("instrument has no items")
	}
	if err := screening.ValidateInstrument(in.Items); err != nil {
		return nil, err
	}

	s := &Session{
		ID:                uuid.New().String(),
		Instrument:        in,
		byID:              make(map[int]*screening.Machine, len(in.Items)),
		restoreErrs:       make(map[int]error),
		logger:            logger,
		positiveThreshold: DefaultPositiveThreshold,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.CreatedAt = s.now()

	machineOpts := []screening.Option{screening.WithClock(s.now)}
	if logger != nil {
		machineOpts = append(machineOpts, screening.WithLogger(logger))
	}

	for _, def := range in.Items {
		m, err := screening.NewMachine(def, store, machineOpts...)
		if err != nil {
			return nil, err
		}
		if err := m.Restore(ctx); err != nil {
			if !errors.Is(err, screening.ErrSchemaMismatch) {
				return nil, fmt.Errorf("restore session: %w", err)
			}
			s.restoreErrs[def.ID] = err
		}
		s.machines = append(s.machines, m)
		s.byID[def.ID] = m
	}
	return s, nil
}

// Item returns the machine for an item id.
func (s *Session) Item(id int) (*screening.Machine, bool) {
	m, ok := s.byID[id]
	return m, ok
}

// Items returns the machines in instrument order.
func (s *Session) Items() []*screening.Machine {
	return append([]*screening.Machine(nil), s.machines...)
}

// Current returns the first item without a committed result, or nil when all are done.
func (s *Session) Current() *screening.Machine {
	for _, m := range s.machines {
		if !m.Completed() {
			return m
		}
	}
	return nil
}

// RestoreErrors returns the items that failed closed during restore.
func (s *Session) RestoreErrors() map[int]error {
	out := make(map[int]error, len(s.restoreErrs))
	for id, err := range s.restoreErrs {
		out[id] = err
	}
	return out
}

// Summary tallies committed results. The screen stays incomplete until
// every item is committed.
func (s *Session) Summary() models.Summary {
	sum := models.Summary{
		SessionID: s.ID,
		Total:     len(s.machines),
	}
	for _, m := range s.machines {
		def := m.Definition()
		r := m.Result()
		if r == nil || !m.Completed() {
			sum.Pending = append(sum.Pending, def.ID)
			continue
		}
		sum.Answered++
		switch {
		case r.Passed():
			sum.Passed++
		case r.Failed():
			sum.Failed++
			sum.FailedItems = append(sum.FailedItems, def.ID)
		}
		if r.Primary == def.RiskAnswer {
			sum.InitialRisk++
		}
	}

	sum.FollowUpScore = sum.Failed
	sum.RiskBand = models.RiskBandFor(sum.InitialRisk)
	switch {
	case !sum.IsComplete():
		sum.Screen = models.ScreenIncomplete
	case sum.FollowUpScore >= s.positiveThreshold:
		sum.Screen = models.ScreenPositive
	default:
		sum.Screen = models.ScreenNegative
	}
	return sum
}

// Finish computes the summary and hands it to the logger.
func (s *Session) Finish() models.Summary {
	sum := s.Summary()
	if s.logger != nil {
		s.logger.LogSummary(sum)
	}
	return sum
}

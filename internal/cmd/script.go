package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/harrison/mchat/internal/models"
	"github.com/harrison/mchat/internal/session"
)

// answersFile is a scripted interview: the caregiver's answers for some
// or all items, in the order they would be given.
//
//	participant:
//	  child_name: Sam
//	items:
//	  - id: 7
//	    primary: yes
//	    evidence: {kind: text, handle: "points at planes", artifact_present: true}
//	    answers: [yes, no, no]
//	  - id: 10
//	    primary: yes
//	    answers: [yes, yes, yes, yes, yes, yes]
//	    tie_break: pass
type answersFile struct {
	Participant models.Participant `yaml:"participant"`
	Items       []scriptedItem     `yaml:"items"`
}

type scriptedItem struct {
	ID       int              `yaml:"id"`
	Primary  models.Answer    `yaml:"primary"`
	Evidence *models.Evidence `yaml:"evidence,omitempty"`
	Answers  []models.Answer  `yaml:"answers,omitempty"`
	TieBreak string           `yaml:"tie_break,omitempty"`
}

func loadAnswers(path string) (*answersFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}
	var af answersFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("failed to parse answers file %s: %w", path, err)
	}
	if len(af.Items) == 0 {
		return nil, fmt.Errorf("answers file %s has no items", path)
	}
	return &af, nil
}

// apply drives each scripted item to its verdict. Items already committed
// in the session are skipped.
func (af *answersFile) apply(ctx context.Context, s *session.Session) error {
	for _, item := range af.Items {
		m, ok := s.Item(item.ID)
		if !ok {
			return fmt.Errorf("answers file: unknown item %d", item.ID)
		}
		if m.Completed() {
			continue
		}
		if err := m.Answer(ctx, item.Primary); err != nil {
			return err
		}

		answers := item.Answers
		for !m.Completed() {
			step := m.Step()
			var err error
			switch step.Kind {
			case models.StepAskEvidenceGate:
				if item.Evidence == nil {
					return fmt.Errorf("item %d: no evidence given for %q", item.ID, m.Prompt())
				}
				err = m.SupplyEvidence(ctx, *item.Evidence)
			case models.StepAskTieBreak:
				if item.TieBreak == "" {
					return fmt.Errorf("item %d: no tie_break given, choose one of %v", item.ID, step.Groups)
				}
				err = m.ChooseTieBreak(ctx, item.TieBreak)
			case models.StepAskSubQuestion:
				if len(answers) == 0 {
					return fmt.Errorf("item %d: ran out of answers at %s", item.ID, step)
				}
				err = m.Answer(ctx, answers[0])
				answers = answers[1:]
			case models.StepScored:
				err = m.Commit(ctx)
			default:
				err = errors.New("unexpected step " + step.String())
			}
			if err != nil {
				return err
			}
		}
		if len(answers) > 0 {
			return fmt.Errorf("item %d: %d unused answers", item.ID, len(answers))
		}
	}
	return nil
}

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// shortInstrument has a tie-break item, a short-circuit item and an
// evidence-gated item.
const shortInstrument = `instrument:
  name: Short form
  version: test
  items:
    - id: 1
      key: point-follow
      question: Does your child look when you point?
      risk_answer: "no"
      groups:
        - id: pass
          role: pass-leaning
          tie_break: pass
          prompts: ["Look at the object?", "Point at the object?"]
        - id: fail
          role: fail-leaning
          tie_break: fail
          prompts: ["Look at your hand?"]
      "yes":
        groups: [pass, fail]
        rules:
          - when: {pass: at_least_one, fail: zero}
            outcome: PASS
          - when: {pass: zero, fail: at_least_one}
            outcome: FAIL
          - when: {pass: at_least_one, fail: at_least_one}
            outcome: NEEDS_TIEBREAK
        default: fail
      "no":
        verdict: fail
    - id: 2
      key: deafness
      question: Have you ever wondered if your child might be deaf?
      risk_answer: "yes"
      "yes":
        verdict: fail
      "no":
        verdict: pass
    - id: 3
      key: pretend-play
      question: Does your child play pretend?
      risk_answer: "no"
      groups:
        - id: examples
          role: examples
          prompts: ["Pretend to feed a doll?"]
      "yes":
        evidence: text_or_audio
        evidence_prompt: Please give an example of pretend play.
        groups: [examples]
        rules:
          - when: {examples: at_least_one}
            outcome: PASS
        default: fail
      "no":
        verdict: fail
`

const shortAnswers = `participant:
  child_name: Sam
  child_birth_date: 2024-12-01
  guardian_name: Alex
  relationship: parent
items:
  - id: 1
    primary: yes
    answers: [yes, yes, no]
  - id: 2
    primary: yes
  - id: 3
    primary: yes
    evidence: {kind: text, handle: "feeds teddy", artifact_present: true}
    answers: [yes]
`

// workspace moves the test into an empty directory and writes files into it.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

// execute runs the root command with args and stdin, returning stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

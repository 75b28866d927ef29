package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/mchat/internal/models"
)

func TestItemsBuiltin(t *testing.T) {
	out, _, err := execute(t, "", "items")
	require.NoError(t, err)

	assert.Contains(t, out, "M-CHAT-R/F Follow-Up (2009), 20 items\n")
	assert.Contains(t, out, " 4. climbing: ")
	assert.Contains(t, out, "yes -> groups interest; evidence text_or_audio; ")
	assert.Contains(t, out, "20. movement-activities: ")
}

func TestItemsCustomInstrument(t *testing.T) {
	workspace(t, map[string]string{"short.yaml": shortInstrument})

	out, _, err := execute(t, "", "items", "--instrument", "short.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, lines(
		" 1. point-follow: Does your child look when you point?",
		"      yes -> groups pass, fail; 3 rule(s); default FAIL",
		"      no  -> FAIL",
	))
	assert.Contains(t, out, "      yes -> groups examples; evidence text_or_audio; 1 rule(s); default FAIL\n")
}

func TestDescribeBranch(t *testing.T) {
	tests := []struct {
		name   string
		branch *models.Branch
		want   string
	}{
		{"missing", nil, "(missing)"},
		{"short circuit", &models.Branch{Verdict: models.VerdictPass}, "PASS"},
		{
			name: "conditional group",
			branch: &models.Branch{
				Groups: []models.BranchGroup{
					{ID: "unusual"},
					{ID: "frequent", When: models.Condition{"unusual": models.ThresholdAtLeastOne}},
				},
				Default: models.VerdictPass,
			},
			want: "groups unusual, frequent*; 0 rule(s); default PASS",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeBranch(tt.branch))
		})
	}
}

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/mchat/internal/instrument"
	"github.com/harrison/mchat/internal/models"
)

// NewItemsCommand creates the items command
func NewItemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List instrument items and their branch structure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("instrument")
			in, err := instrument.Resolve(path)
			if err != nil {
				return err
			}
			writeItems(cmd.OutOrStdout(), in)
			return nil
		},
	}
	cmd.Flags().String("instrument", "", "Instrument definition file (default: built-in)")
	return cmd
}

func writeItems(w io.Writer, in *models.Instrument) {
	fmt.Fprintf(w, "%s (%s), %d items\n\n", in.Name, in.Version, len(in.Items))
	for _, def := range in.Items {
		fmt.Fprintf(w, "%2d. %s: %s\n", def.ID, def.Key, def.Question)
		for _, primary := range []models.Answer{models.Yes, models.No} {
			fmt.Fprintf(w, "      %-3s -> %s\n", primary, describeBranch(def.Branch(primary)))
		}
	}
}

func describeBranch(b *models.Branch) string {
	if b == nil {
		return "(missing)"
	}
	if b.ShortCircuit() {
		return string(models.OutcomeOf(b.Verdict))
	}

	groups := make([]string, len(b.Groups))
	for i, g := range b.Groups {
		groups[i] = g.ID
		if len(g.When) > 0 {
			groups[i] += "*"
		}
	}
	parts := []string{"groups " + strings.Join(groups, ", ")}
	if b.Evidence.Required() {
		parts = append(parts, "evidence "+string(b.Evidence))
	}
	parts = append(parts,
		fmt.Sprintf("%d rule(s)", len(b.Rules)),
		"default "+string(models.OutcomeOf(b.Default)),
	)
	return strings.Join(parts, "; ")
}

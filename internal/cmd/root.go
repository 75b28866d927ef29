package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for mchat
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mchat",
		Short: "Branching follow-up interview for toddler autism screening",
		Long: `mchat administers the 20-item follow-up interview of a two-stage
toddler screening questionnaire.

Each item starts from a yes/no question and branches into follow-up
questions, example capture and tie-break choices according to its
published decision tree. Item verdicts aggregate into a screening result.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewItemsCommand())
	cmd.AddCommand(NewReportCommand())

	return cmd
}

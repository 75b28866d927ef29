package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/mchat/internal/instrument"
	"github.com/harrison/mchat/internal/logger"
	"github.com/harrison/mchat/internal/report"
	"github.com/harrison/mchat/internal/session"
	"github.com/harrison/mchat/internal/store"
)

// NewReportCommand creates the report command
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <answers-file>",
		Short: "Score a scripted interview and print its report",
		Long: `Replay a YAML answers file against the instrument without logging
and print the session report to stdout, or write it with --output.

Examples:
  mchat report answers.yaml
  mchat report answers.yaml --format html --output report.html`,
		Args: cobra.ExactArgs(1),
		RunE: reportCommand,
	}
	cmd.Flags().String("instrument", "", "Instrument definition file (default: built-in)")
	cmd.Flags().String("format", report.FormatMarkdown, "Report format: markdown or html")
	cmd.Flags().String("output", "", "Write the report to this file instead of stdout")
	return cmd
}

func reportCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	script, err := loadAnswers(args[0])
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("instrument")
	in, err := instrument.Resolve(path)
	if err != nil {
		return err
	}

	rs := store.NewMemory()
	defer rs.Close()
	s, err := session.New(ctx, in, rs, logger.NewNoOpLogger(), session.WithParticipant(script.Participant))
	if err != nil {
		return err
	}
	if err := script.apply(ctx, s); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	data, err := report.Render(s, format)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := report.WriteFile(output, data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", output)
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/mchat/internal/display"
	"github.com/harrison/mchat/internal/instrument"
	"github.com/harrison/mchat/internal/screening"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <instrument-file>...",
		Short: "Validate one or more instrument definition files",
		Long: `Parse and validate instrument files (Markdown or YAML), checking for:
  - Exactly one of verdict or sub-question groups per branch
  - Groups, conditions and rules that reference declared groups
  - Every reachable combination of yes-counts covered by a rule or default
  - Tie-break rules only where two or more tie-break groups can both be yes
  - Unique item ids, at most 20 items

With --watch the files are validated again each time one is saved,
until interrupted.

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p := display.NewPrinter(out, display.ColorEnabled(out))
			err := validateFilesWithOutput(args, p)

			if watch, _ := cmd.Flags().GetBool("watch"); !watch {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			w, werr := instrument.NewWatcher(args)
			if werr != nil {
				return werr
			}
			defer w.Close()
			p.Printf("Watching %d file(s) for changes. Press Ctrl+C to stop.\n", len(args))
			return watchAndValidate(ctx, w, p)
		},
		SilenceUsage: true,
	}
	cmd.Flags().Bool("watch", false, "Validate again whenever a file changes")

	return cmd
}

// watchAndValidate revalidates each changed file until ctx is done.
func watchAndValidate(ctx context.Context, w *instrument.Watcher, out *display.Printer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-w.Changes():
			validateFilesWithOutput([]string{path}, out)
		case err := <-w.Errors():
			out.Failure("watch: %v", err)
		}
	}
}

// validateFilesWithOutput validates each file independently and reports
// every problem found. It fails if any file is invalid.
func validateFilesWithOutput(paths []string, out *display.Printer) error {
	progress := out.NewProgressIndicator(len(paths))
	progress.Start("Validating instrument files")

	failed := 0
	for _, path := range paths {
		progress.Step(path)

		in, err := instrument.LoadFile(path)
		if err != nil {
			failed++
			out.Failure("%s", path)
			writeReasons(out.Writer(), err)
			continue
		}
		out.Success("%s: %d items valid", path, len(in.Items))
	}

	if failed > 0 {
		return fmt.Errorf("validation failed for %d of %d file(s)", failed, len(paths))
	}
	return nil
}

// writeReasons lists each malformed rule table reason on its own line.
func writeReasons(w io.Writer, err error) {
	var found []*screening.MalformedRuleTableError
	collectMalformed(err, &found)
	if len(found) == 0 {
		fmt.Fprintf(w, "    %v\n", err)
		return
	}
	for _, m := range found {
		for _, reason := range m.Reasons {
			fmt.Fprintf(w, "    item %d: %s\n", m.ItemID, reason)
		}
	}
}

// collectMalformed walks joined and wrapped errors.
func collectMalformed(err error, found *[]*screening.MalformedRuleTableError) {
	if err == nil {
		return
	}
	if m, ok := err.(*screening.MalformedRuleTableError); ok {
		*found = append(*found, m)
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			collectMalformed(e, found)
		}
		return
	}
	collectMalformed(errors.Unwrap(err), found)
}


package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/harrison/mchat/internal/config"
	"github.com/harrison/mchat/internal/display"
	"github.com/harrison/mchat/internal/instrument"
	"github.com/harrison/mchat/internal/logger"
	"github.com/harrison/mchat/internal/models"
	"github.com/harrison/mchat/internal/report"
	"github.com/harrison/mchat/internal/session"
	"github.com/harrison/mchat/internal/store"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Conduct a follow-up interview",
		Long: `Conduct the follow-up interview item by item.

Without --answers the interview is interactive: each prompt is answered
on its own line with y or n. Items that ask for an example take
"e <text>", or "o" where declining is allowed. Tie-break questions take
the number of the listed choice. "r" restarts the current item and "q"
stops and prints the summary so far.

With --answers the interview is scripted from a YAML file.

Configuration is loaded from .mchat/config.yaml if present, or from
$MCHAT_HOME/config.yaml when MCHAT_HOME is set.
CLI flags override configuration file settings.

Examples:
  mchat run
  mchat run --answers answers.yaml --report out/report.md
  mchat run --instrument items.md --log-level debug
  mchat run --store sqlite --report report.html --format html`,
		Args: cobra.NoArgs,
		RunE: runCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .mchat/config.yaml)")
	cmd.Flags().String("answers", "", "YAML file of scripted answers")
	addSessionFlags(cmd)

	return cmd
}

// addSessionFlags registers the flags shared by commands that build a session.
func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().String("instrument", "", "Instrument definition file, Markdown or YAML (default: built-in)")
	cmd.Flags().String("log-dir", "", "Directory for log files")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("store", "", "Result store backend: memory or sqlite")
	cmd.Flags().String("report", "", "Write a session report to this file")
	cmd.Flags().String("format", "", "Report format: markdown or html")
}

// loadConfig reads the config file and overlays any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error

	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else if os.Getenv(config.HomeEnv) != "" {
		cfg, err = config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.LogDir == config.DefaultConfig().LogDir {
			if cfg.LogDir, err = config.GetLogDir(); err != nil {
				return nil, err
			}
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flag := func(name string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetString(name)
		return &v
	}
	cfg.MergeWithFlags(flag("log-level"), flag("log-dir"), flag("instrument"), flag("store"), flag("report"), flag("format"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runEnv is everything a session-building command needs.
type runEnv struct {
	cfg     *config.Config
	out     *display.Printer
	console *logger.ConsoleLogger
	file    *logger.FileLogger
	store   store.Store
	session *session.Session
}

func (e *runEnv) Close() {
	if e.store != nil {
		e.store.Close()
	}
	if e.file != nil {
		e.file.Close()
	}
}

// openSession wires config, loggers, store and instrument into a new session.
func openSession(ctx context.Context, cmd *cobra.Command, cfg *config.Config, participant models.Participant) (*runEnv, error) {
	env := &runEnv{
		cfg:     cfg,
		out:     display.NewPrinter(cmd.OutOrStdout(), display.ColorEnabled(cmd.OutOrStdout())),
		console: logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel),
	}

	loggers := []logger.Logger{env.console}
	if fl, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel); err != nil {
		env.out.Warning(display.Warning{
			Title:   "File logging disabled",
			Message: err.Error(),
		})
	} else {
		env.file = fl
		loggers = append(loggers, fl)
	}

	in, err := instrument.Resolve(cfg.Instrument)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to load instrument: %w", err)
	}

	rs, err := store.Open(cfg.Store.Backend)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.store = rs

	s, err := session.New(ctx, in, rs, logger.NewMultiLogger(loggers...),
		session.WithParticipant(participant),
		session.WithPositiveThreshold(cfg.PositiveThreshold),
	)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.session = s

	if errs := s.RestoreErrors(); len(errs) > 0 {
		ids := make([]int, 0, len(errs))
		for id := range errs {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		details := make([]string, len(ids))
		for i, id := range ids {
			details[i] = errs[id].Error()
		}
		env.out.Warning(display.Warning{
			Title:      fmt.Sprintf("%d item(s) restarted", len(ids)),
			Message:    "Stored results no longer match their item definitions.",
			Details:    details,
			Suggestion: "Answer these items again.",
		})
	}
	return env, nil
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var script *answersFile
	if path, _ := cmd.Flags().GetString("answers"); path != "" {
		if script, err = loadAnswers(path); err != nil {
			return err
		}
	}

	var participant models.Participant
	if script != nil {
		participant = script.Participant
	}
	env, err := openSession(ctx, cmd, cfg, participant)
	if err != nil {
		return err
	}
	defer env.Close()

	if script != nil {
		if err := script.apply(ctx, env.session); err != nil {
			return err
		}
	} else {
		iv := newInterviewer(cmd.InOrStdin(), env.out, env.session)
		iv.onDone = env.console.LogProgress
		if _, err := iv.run(ctx); err != nil {
			return err
		}
	}

	return finish(env, cmd.OutOrStdout())
}

// finish logs the summary, prints the screening result and exports the report.
func finish(env *runEnv, w io.Writer) error {
	sum := env.session.Finish()

	switch sum.Screen {
	case models.ScreenIncomplete:
		env.out.Failure("Interview incomplete: %d of %d items answered", sum.Answered, sum.Total)
	default:
		env.out.Success("Screen %s: follow-up score %d, initial risk %s", sum.Screen, sum.FollowUpScore, sum.RiskBand)
	}

	if env.cfg.Report.Path == "" {
		return nil
	}
	data, err := report.Render(env.session, env.cfg.Report.Format)
	if err != nil {
		return err
	}
	if err := report.WriteFile(env.cfg.Report.Path, data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	abs, err := filepath.Abs(env.cfg.Report.Path)
	if err != nil {
		abs = env.cfg.Report.Path
	}
	fmt.Fprintf(w, "Report written to %s\n", abs)
	return nil
}


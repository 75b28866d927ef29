package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/mchat/internal/models"
)

// ConsoleLogger logs session progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
// A nil *ConsoleLogger discards every event.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// fatih/color honors NO_COLOR and non-TTY stdout
		return !color.NoColor
	}
	return false
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) { cl.logWithLevel("trace", message) }

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) { cl.logWithLevel("debug", message) }

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) { cl.logWithLevel("info", message) }

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) { cl.logWithLevel("warn", message) }

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) { cl.logWithLevel("error", message) }

func (cl *ConsoleLogger) logWithLevel(level, message string) {
	cl.write(event{level: level, message: message})
}

// write emits one event as "[HH:MM:SS] [LEVEL] message".
func (cl *ConsoleLogger) write(ev event) {
	if cl == nil || cl.writer == nil || !enabled(cl.logLevel, ev.level) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	level := strings.ToUpper(ev.level)
	message := ev.message
	if cl.colorOutput {
		level = levelColor(level).Sprint(level)
		switch ev.verdict {
		case models.VerdictPass:
			message = color.New(color.FgGreen).Sprint(message)
		case models.VerdictFail:
			message = color.New(color.FgRed).Sprint(message)
		}
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), level, message)
}

func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

// LogStep logs what an item asks next at DEBUG level.
func (cl *ConsoleLogger) LogStep(def *models.ItemDefinition, step models.Step) {
	cl.write(stepEvent(def, step))
}

// LogVerdict logs a committed item verdict at INFO level.
func (cl *ConsoleLogger) LogVerdict(def *models.ItemDefinition, result *models.ItemResult) {
	cl.write(verdictEvent(def, result))
}

// LogReset logs an item reset at INFO level.
func (cl *ConsoleLogger) LogReset(def *models.ItemDefinition) {
	cl.write(resetEvent(def))
}

// LogRestore logs the outcome of restoring an item; failures are WARN.
func (cl *ConsoleLogger) LogRestore(def *models.ItemDefinition, state models.State, err error) {
	cl.write(restoreEvent(def, state, err))
}

// LogSummary logs the session summary at INFO level.
// A positive screen is highlighted in red, a negative one in green.
func (cl *ConsoleLogger) LogSummary(summary models.Summary) {
	if cl == nil || cl.writer == nil || !enabled(cl.logLevel, "info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var sb strings.Builder
	for i, line := range summaryLines(summary) {
		if cl.colorOutput {
			switch {
			case i == 0:
				line = color.New(color.Bold).Sprint(line)
			case strings.HasPrefix(line, "Screen: ") && summary.Screen == models.ScreenPositive:
				line = color.New(color.FgRed, color.Bold).Sprint(line)
			case strings.HasPrefix(line, "Screen: ") && summary.Screen == models.ScreenNegative:
				line = color.New(color.FgGreen).Sprint(line)
			}
		}
		fmt.Fprintf(&sb, "[%s] %s\n", ts, line)
	}
	cl.writer.Write([]byte(sb.String()))
}

// LogProgress logs how many items are committed as a bar.
// Format: "[HH:MM:SS] Progress: [=====     ] 10/20 (50%)"
func (cl *ConsoleLogger) LogProgress(done, total int) {
	if cl == nil || cl.writer == nil || !enabled(cl.logLevel, "info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	bar := renderProgress(done, total, 10)
	if cl.colorOutput {
		if done >= total && total > 0 {
			bar = color.New(color.FgGreen).Sprint(bar)
		} else {
			bar = color.New(color.FgCyan).Sprint(bar)
		}
	}
	fmt.Fprintf(cl.writer, "[%s] Progress: %s\n", timestamp(), bar)
}

func renderProgress(done, total, width int) string {
	perc := 0
	if total > 0 {
		perc = done * 100 / total
	}
	if perc > 100 {
		perc = 100
	}
	filled := perc * width / 100
	return fmt.Sprintf("[%s%s] %d/%d (%d%%)",
		strings.Repeat("=", filled), strings.Repeat(" ", width-filled), done, total, perc)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/mchat/internal/models"
)

// FileLogger writes a plain-text run log to a timestamped file under a
// log directory and keeps a latest.log symlink pointing at it.
// A nil *FileLogger discards every event.
type FileLogger struct {
	logDir   string
	logPath  string
	logFile  *os.File
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir with the given level.
// The file is named run-YYYYMMDD-HHMMSS.log.
func NewFileLogger(logDir, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	runLogPath := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405")))
	logFile, err := os.OpenFile(runLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		logPath:  runLogPath,
		logFile:  logFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	// Best effort; some filesystems do not support symlinks.
	latest := filepath.Join(logDir, "latest.log")
	_ = os.Remove(latest)
	_ = os.Symlink(filepath.Base(runLogPath), latest)

	fl.writeRaw(fmt.Sprintf("=== mchat Run Log ===\nStarted: %s\n\n", time.Now().Format(time.RFC3339)))
	return fl, nil
}

// Path returns the run log's path. It stays valid after Close.
func (fl *FileLogger) Path() string {
	if fl == nil {
		return ""
	}
	return fl.logPath
}

// Close closes the run log.
func (fl *FileLogger) Close() error {
	if fl == nil {
		return nil
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.logFile == nil {
		return nil
	}
	err := fl.logFile.Close()
	fl.logFile = nil
	return err
}

func (fl *FileLogger) writeRaw(s string) {
	if fl == nil {
		return
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.logFile == nil {
		return
	}
	fl.logFile.WriteString(s)
}

func (fl *FileLogger) write(ev event) {
	if fl == nil || !enabled(fl.logLevel, ev.level) {
		return
	}
	fl.writeRaw(fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format(time.RFC3339), strings.ToUpper(ev.level), ev.message))
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) { fl.write(event{level: "info", message: message}) }

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) { fl.write(event{level: "warn", message: message}) }

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) { fl.write(event{level: "error", message: message}) }

func (fl *FileLogger) LogStep(def *models.ItemDefinition, step models.Step) {
	fl.write(stepEvent(def, step))
}

func (fl *FileLogger) LogVerdict(def *models.ItemDefinition, result *models.ItemResult) {
	fl.write(verdictEvent(def, result))
}

func (fl *FileLogger) LogReset(def *models.ItemDefinition) {
	fl.write(resetEvent(def))
}

func (fl *FileLogger) LogRestore(def *models.ItemDefinition, state models.State, err error) {
	fl.write(restoreEvent(def, state, err))
}

// LogSummary appends the session summary block.
func (fl *FileLogger) LogSummary(summary models.Summary) {
	var sb strings.Builder
	sb.WriteString("\n")
	for _, line := range summaryLines(summary) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	fl.writeRaw(sb.String())
}

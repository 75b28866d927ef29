package logger

import "github.com/harrison/mchat/internal/models"

// Logger is the event surface shared by every logger in this package.
type Logger interface {
	LogStep(def *models.ItemDefinition, step models.Step)
	LogVerdict(def *models.ItemDefinition, result *models.ItemResult)
	LogReset(def *models.ItemDefinition)
	LogRestore(def *models.ItemDefinition, state models.State, err error)
	LogSummary(summary models.Summary)
}

// MultiLogger fans every event out to each of its loggers in order.
type MultiLogger []Logger

// NewMultiLogger drops nil entries.
func NewMultiLogger(loggers ...Logger) MultiLogger {
	var m MultiLogger
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	return m
}

func (m MultiLogger) LogStep(def *models.ItemDefinition, step models.Step) {
	for _, l := range m {
		l.LogStep(def, step)
	}
}

func (m MultiLogger) LogVerdict(def *models.ItemDefinition, result *models.ItemResult) {
	for _, l := range m {
		l.LogVerdict(def, result)
	}
}

func (m MultiLogger) LogReset(def *models.ItemDefinition) {
	for _, l := range m {
		l.LogReset(def)
	}
}

func (m MultiLogger) LogRestore(def *models.ItemDefinition, state models.State, err error) {
	for _, l := range m {
		l.LogRestore(def, state, err)
	}
}

func (m MultiLogger) LogSummary(summary models.Summary) {
	for _, l := range m {
		l.LogSummary(summary)
	}
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger.
func NewNoOpLogger() *NoOpLogger { return &NoOpLogger{} }

func (n *NoOpLogger) LogStep(*models.ItemDefinition, models.Step) {}
func (n *NoOpLogger) LogVerdict(*models.ItemDefinition, *models.ItemResult) {}
func (n *NoOpLogger) LogReset(*models.ItemDefinition) {}
func (n *NoOpLogger) LogRestore(*models.ItemDefinition, models.State, error) {}
func (n *NoOpLogger) LogSummary(models.Summary) {}

var (
	_ Logger = (*ConsoleLogger)(nil)
	_ Logger = (*FileLogger)(nil)
	_ Logger = MultiLogger(nil)
	_ Logger = (*NoOpLogger)(nil)
)

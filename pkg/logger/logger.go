package logger

import (
	"github.com/rs/zerolog"
)

// Logger receives events from the planner and executor. Implementations must
// be safe for concurrent use.
type Logger interface {
	PhaseStart(phase string, totalItems int)
	PhaseComplete(phase string, processedItems int)
	Delete(path string, size int64)
	Skip(path string, reason string)
	Error(operation, path string, err error)
	Debug(message string)
}

// ZerologLogger forwards events to a zerolog.Logger.
type ZerologLogger struct {
	Log    zerolog.Logger
	DryRun bool
}

// New returns a Logger writing to log.
func New(log zerolog.Logger, dryRun bool) *ZerologLogger {
	return &ZerologLogger{Log: log, DryRun: dryRun}
}

func (l *ZerologLogger) PhaseStart(phase string, totalItems int) {
	l.Log.Info().Str("phase", phase).Int("items", totalItems).Msg("Phase started")
}

func (l *ZerologLogger) PhaseComplete(phase string, processedItems int) {
	l.Log.Info().Str("phase", phase).Int("processed", processedItems).Msg("Phase complete")
}

func (l *ZerologLogger) Delete(path string, size int64) {
	msg := "Deleted duplicate"
	if l.DryRun {
		msg = "Would delete duplicate"
	}
	l.Log.Info().Str("path", path).Int64("size", size).Bool("dry_run", l.DryRun).Msg(msg)
}

func (l *ZerologLogger) Skip(path string, reason string) {
	l.Log.Debug().Str("path", path).Str("reason", reason).Msg("Skipped")
}

func (l *ZerologLogger) Error(operation, path string, err error) {
	l.Log.Warn().Err(err).Str("operation", operation).Str("path", path).Msg("Operation failed")
}

func (l *ZerologLogger) Debug(message string) {
	l.Log.Debug().Msg(message)
}

// NullLogger discards every event.
type NullLogger struct{}

func (NullLogger) PhaseStart(phase string, totalItems int) {}

func (NullLogger) PhaseComplete(phase string, processedItems int) {}

func (NullLogger) Delete(path string, size int64) {}

func (NullLogger) Skip(path string, reason string) {}

func (NullLogger) Error(operation, path string, err error) {}

func (NullLogger) Debug(message string) {}

package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogFileName is the log file location relative to $XDG_STATE_HOME.
const LogFileName = "doubleterminator/doubleterminator.log"

// Level maps a -v count to a zerolog level.
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// SetupLogger builds the run's logger: a console writer on stderr plus an
// append-only log file under $XDG_STATE_HOME. If the log file cannot be
// opened the logger falls back to the console and says so. The returned
// closer releases the log file and is safe to call when none was opened.
func SetupLogger(verbosity int, runID string) (zerolog.Logger, io.Closer) {
	logPath, pathErr := xdg.StateFile(LogFileName)

	var file *os.File
	var fileErr error
	if pathErr == nil {
		file, fileErr = openLogFile(logPath)
	} else {
		fileErr = pathErr
	}

	var fileWriter io.Writer
	var closer io.Closer = nopCloser{}
	if file != nil {
		fileWriter = file
		closer = file
	}

	logger := NewLogger(verbosity, runID, os.Stderr, fileWriter)
	if fileErr != nil {
		logger.Warn().Err(fileErr).Str("path", logPath).Msg("Failed to open log file, logging to console only")
	}
	logger.Debug().Int("verbosity", verbosity).Str("log_file", logPath).Msg("Logger initialized")
	return logger, closer
}

// NewRunID returns a fresh identifier for one invocation.
func NewRunID() string {
	return uuid.NewString()
}

// NewLogger writes human-readable lines to console and JSON lines to file.
// Either writer may be nil. Every line carries runID; an empty runID gets a
// fresh one.
func NewLogger(verbosity int, runID string, console io.Writer, file io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(Level(verbosity))
	if runID == "" {
		runID = NewRunID()
	}

	var writers []io.Writer
	if console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.Kitchen,
		})
	}
	if file != nil {
		writers = append(writers, file)
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = zerolog.MultiLevelWriter(writers...)
	}

	ctx := zerolog.New(out).Level(Level(verbosity)).With().
		Timestamp().
		Str("run_id", runID)
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// LogDuration logs how long operation took at debug level.
func LogDuration(logger zerolog.Logger, start time.Time, operation string) {
	logger.Debug().
		Str("operation", operation).
		Dur("duration", time.Since(start)).
		Msg("Operation completed")
}

// Summary is the end-of-run tally printed for the user.
type Summary struct {
	Groups         int
	Deleted        int
	Failed         int
	Skipped        int
	BytesReclaimed int64
	DryRun         bool
	Duration       time.Duration
}

// PrintSummary prints the outcome of a resolution run.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Summary ===")
	fmt.Fprintf(w, "Groups: %d\n", s.Groups)
	if s.DryRun {
		fmt.Fprintf(w, "Would delete: %d files (%s)\n", s.Deleted, FormatBytes(s.BytesReclaimed))
	} else {
		fmt.Fprintf(w, "Deleted: %d files (%s reclaimed)\n", s.Deleted, FormatBytes(s.BytesReclaimed))
	}
	if s.Skipped > 0 {
		fmt.Fprintf(w, "Skipped groups: %d\n", s.Skipped)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "Errors: %d\n", s.Failed)
	}
	fmt.Fprintf(w, "Duration: %s\n", s.Duration.Round(time.Millisecond))
}

// FormatBytes formats bytes in human readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatMB formats bytes as megabytes with two decimals.
func FormatMB(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
}

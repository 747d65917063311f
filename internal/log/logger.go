// Package log provides structured diagnostic logging for ei, separate
// from the user-facing progress bar and result summary that `cmd/ei`
// writes straight to stdout.
//
// Output semantics:
//   - User output (stdout): download progress, the final installed-file
//     summary — never gated by a log level; --quiet suppresses both.
//   - Diagnostic logging (stderr): Debug/Info/Warn/Error, gated by the
//     level `initLogger` picks from --quiet and LOG_LEVEL.
//
// Verbosity levels:
//   - ERROR (--quiet): only fatal problems.
//   - WARN (default): warnings plus everything above — e.g. a builtin
//     registry fallback being used, or an optimise step being skipped.
//   - INFO (LOG_LEVEL=info): per-stage resolution detail — which asset
//     was picked, which proxy rewrote its URL.
//   - DEBUG (LOG_LEVEL=debug): request/response and candidate-ranking
//     detail, useful when a resolution picked the wrong asset.
package log

import (
	"log/slog"
	"sync/atomic"
)

// Logger is the interface subsystems log through. Methods match slog's
// signature so a slog.Logger can back it directly.
type Logger interface {
	// Debug logs internal state: candidate rankings, raw HTTP retries,
	// anything only useful when troubleshooting a specific run.
	Debug(msg string, args ...any)

	// Info logs operational context: which resolution path was taken,
	// which proxy or mirror rewrote a URL.
	Info(msg string, args ...any)

	// Warn logs a recoverable problem: falling back to the builtin
	// registry, skipping an optimise step because a tool is missing.
	Warn(msg string, args ...any)

	// Error logs a failure that aborts the current operation.
	Error(msg string, args ...any)

	// With returns a Logger that attaches the given key-value pairs to
	// every subsequent entry — e.g. With("repo", "owner/name").
	With(args ...any) Logger
}

// slogLogger implements Logger on top of log/slog.
type slogLogger struct {
	l *slog.Logger
}

// New wraps h as a Logger.
func New(h slog.Handler) Logger {
	return &slogLogger{l: slog.New(h)}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

// noopLogger discards everything. Used as the zero-value default so a
// package importing log never needs a nil check before logging.
type noopLogger struct{}

// NewNoop returns a Logger that discards all output.
func NewNoop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) With(...any) Logger   { return noopLogger{} }

// defaultLogger holds the process-wide logger cmd/ei installs once at
// startup; every other package reaches it through Default() rather than
// carrying its own reference.
var defaultLogger atomic.Value // Logger

func init() {
	defaultLogger.Store(boxedLogger{noopLogger{}})
}

// boxedLogger lets atomic.Value hold the Logger interface, which by
// itself isn't a concrete type atomic.Value can store consistently.
type boxedLogger struct{ Logger }

// Default returns the process-wide logger, or a no-op logger if
// SetDefault has not been called yet.
func Default() Logger {
	return defaultLogger.Load().(boxedLogger).Logger
}

// SetDefault installs l as the process-wide logger. Called once by
// cmd/ei after parsing --quiet/LOG_LEVEL.
func SetDefault(l Logger) {
	defaultLogger.Store(boxedLogger{l})
}

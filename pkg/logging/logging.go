package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo // Default to INFO for unknown
	}
}

// ParseLevel maps a textual level ("debug", "info", ...) to a LogLevel.
// Unknown values map to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN", "warning":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// InitForCLI initializes the process-wide logger. Every record is written to
// output as slog text and carries the time, level, message and subsystem.
// This should be called once at application startup.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	opts := &slog.HandlerOptions{
		Level: filterLevel.SlogLevel(), // This sets the minimum level for the handler
	}

	logger := slog.New(slog.NewTextHandler(output, opts))

	mu.Lock()
	defaultLogger = logger
	mu.Unlock()

	slog.SetDefault(logger) // Set for any global slog calls if necessary
}

func currentDefault() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

func logInternal(logger *slog.Logger, level LogLevel, subsystem string, err error, messageFmt string, args ...interface{}) {
	if logger == nil {
		logger = currentDefault()
	}
	if logger == nil {
		msg := messageFmt
		if len(args) > 0 {
			msg = fmt.Sprintf(messageFmt, args...)
		}
		fmt.Fprintf(os.Stderr, "[LOGGING_ERROR] Logger not initialized. Log: %s [%s] %s\n", time.Now().Format(time.RFC3339), level, msg)
		return
	}

	// Suppress the formatting work entirely for disabled levels.
	if !logger.Enabled(context.Background(), level.SlogLevel()) {
		return
	}

	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	slogAttrs := make([]slog.Attr, 0, 2)
	slogAttrs = append(slogAttrs, slog.String("subsystem", subsystem))
	if err != nil {
		slogAttrs = append(slogAttrs, slog.String("error", err.Error()))
	}

	logger.LogAttrs(context.Background(), level.SlogLevel(), msg, slogAttrs...)
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(nil, LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(nil, LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(nil, LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(nil, LevelError, subsystem, err, messageFmt, args...)
}

// Logger is a named logger bound to a single subsystem. Components that own
// their log stream (the orchestrator, a worker pool) acquire one at
// construction instead of going through the package-level functions.
//
// A nil *Logger is valid and logs through the process-wide default.
type Logger struct {
	subsystem string
	logger    *slog.Logger
	closer    io.Closer
	closeOnce sync.Once
}

// New creates a Logger for subsystem writing slog text records to output.
func New(subsystem string, output io.Writer, level LogLevel) *Logger {
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: level.SlogLevel()})
	return &Logger{
		subsystem: subsystem,
		logger:    slog.New(handler),
	}
}

// For returns a Logger for subsystem that shares the process-wide handler
// configured by InitForCLI.
func For(subsystem string) *Logger {
	return &Logger{subsystem: subsystem}
}

// NewFileLogger creates a Logger that appends to the file at path, creating
// parent directories as needed. The file is released by Close.
func NewFileLogger(subsystem, path string, level LogLevel) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	l := New(subsystem, f, level)
	l.closer = f
	return l, nil
}

// Subsystem returns the component name attached to every record.
func (l *Logger) Subsystem() string {
	if l == nil {
		return ""
	}
	return l.subsystem
}

// With returns a child Logger that adds the given key/value pairs to every
// record. The child shares the parent's output and is never responsible for
// closing it.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	base := l.logger
	if base == nil {
		base = currentDefault()
	}
	if base == nil {
		return &Logger{subsystem: l.subsystem}
	}
	return &Logger{
		subsystem: l.subsystem,
		logger:    base.With(args...),
	}
}

func (l *Logger) log(level LogLevel, err error, messageFmt string, args ...interface{}) {
	if l == nil {
		logInternal(nil, level, "", err, messageFmt, args...)
		return
	}
	logInternal(l.logger, level, l.subsystem, err, messageFmt, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(messageFmt string, args ...interface{}) {
	l.log(LevelDebug, nil, messageFmt, args...)
}

// Info logs an informational message.
func (l *Logger) Info(messageFmt string, args ...interface{}) {
	l.log(LevelInfo, nil, messageFmt, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(messageFmt string, args ...interface{}) {
	l.log(LevelWarn, nil, messageFmt, args...)
}

// Error logs an error message.
func (l *Logger) Error(err error, messageFmt string, args ...interface{}) {
	l.log(LevelError, err, messageFmt, args...)
}

// Close releases the file behind a Logger created by NewFileLogger.
// It is a no-op for other loggers and safe to call more than once.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	var err error
	l.closeOnce.Do(func() {
		err = l.closer.Close()
	})
	return err
}

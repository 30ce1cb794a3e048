package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
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
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo // Default to INFO
	}
}

func charmLevel(l LogLevel) charmlog.Level {
	switch l {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelWarn:
		return charmlog.WarnLevel
	case LevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

var (
	currentLevel LogLevel = LevelOff
	logger       *charmlog.Logger
	logFile      *os.File
)

// Setup configures the logging system with the specified level and optional
// file path. If filePath is empty, defaults to ~/.hkrnws/hkrnws.log.
func Setup(level LogLevel, filePath ...string) error {
	currentLevel = level

	// Close existing log file if open
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	if level == LevelOff {
		logger = nil
		return nil
	}

	// Determine log file path
	var logPath string
	if len(filePath) > 0 && filePath[0] != "" {
		logPath = filePath[0]
	} else {
		home, _ := os.UserHomeDir()
		dir := filepath.Join(home, ".hkrnws")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logPath = filepath.Join(dir, "hkrnws.log")
	}

	// Open log file
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	logFile = f
	logger = charmlog.NewWithOptions(f, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           charmLevel(level),
		Prefix:          "hkrnws",
	})
	return nil
}

// SetLevel changes the current logging level
func SetLevel(level LogLevel) {
	currentLevel = level
	if logger != nil && level != LevelOff {
		logger.SetLevel(charmLevel(level))
	}
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	return currentLevel
}

// Close closes the log file if open
func Close() error {
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		logger = nil
		return err
	}
	return nil
}

// logf writes a log message at the specified level
func logf(level LogLevel, format string, keyvals []any, args ...any) {
	if level < currentLevel || logger == nil {
		return
	}

	message := fmt.Sprintf(format, args...)
	switch level {
	case LevelDebug:
		logger.Debug(message, keyvals...)
	case LevelInfo:
		logger.Info(message, keyvals...)
	case LevelWarn:
		logger.Warn(message, keyvals...)
	case LevelError:
		logger.Error(message, keyvals...)
	}
}

// Structured logging functions

func Debugf(format string, args ...any) {
	logf(LevelDebug, format, nil, args...)
}

func Infof(format string, args ...any) {
	logf(LevelInfo, format, nil, args...)
}

func Warnf(format string, args ...any) {
	logf(LevelWarn, format, nil, args...)
}

func Errorf(format string, args ...any) {
	logf(LevelError, format, nil, args...)
}

// FieldLogger carries structured fields attached to every message
type FieldLogger struct {
	fields map[string]interface{}
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{fields: fields}
}

// keyvals flattens the fields into charm's keyval form, sorted for
// deterministic output
func (fl *FieldLogger) keyvals() []any {
	keys := make([]string, 0, len(fl.fields))
	for key := range fl.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	kvs := make([]any, 0, 2*len(keys))
	for _, key := range keys {
		kvs = append(kvs, key, fl.fields[key])
	}
	return kvs
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	logf(LevelDebug, format, fl.keyvals(), args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	logf(LevelInfo, format, fl.keyvals(), args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	logf(LevelWarn, format, fl.keyvals(), args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	logf(LevelError, format, fl.keyvals(), args...)
}

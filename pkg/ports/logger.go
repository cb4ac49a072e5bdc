// Package ports defines the interfaces shared by the frame pipeline and its
// collaborators: sinks, renderers, loggers and the file system.
package ports

import "fmt"

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for process-level details (argv, pids, exit codes).
	LevelDebug LogLevel = iota
	// LevelInfo is for render progress.
	LevelInfo
	// LevelWarn is for recoverable problems such as a consumer that went away early.
	LevelWarn
	// LevelError is for failures that end the run.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a string into a LogLevel, falling back to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	level, err := LookupLogLevel(s)
	if err != nil {
		return LevelInfo
	}
	return level
}

// LookupLogLevel parses a string into a LogLevel and rejects unknown names.
func LookupLogLevel(s string) (LogLevel, error) {
	switch s {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "quiet":
		return LevelQuiet, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger abstracts logging operations with multi-language support.
// The msg parameter is a message key that may be translated before the
// arguments are applied.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}

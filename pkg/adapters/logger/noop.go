package logger

import "github.com/user/framepipe/pkg/ports"

// NoopLogger is a logger that discards all messages.
// Library code falls back to it when no logger is configured.
type NoopLogger struct{}

// NewNoop creates a new no-op logger.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

// Debug does nothing.
func (l *NoopLogger) Debug(msg string, args ...interface{}) {}

// Info does nothing.
func (l *NoopLogger) Info(msg string, args ...interface{}) {}

// Warn does nothing.
func (l *NoopLogger) Warn(msg string, args ...interface{}) {}

// Error does nothing.
func (l *NoopLogger) Error(msg string, args ...interface{}) {}

// WithComponent returns the same no-op logger.
func (l *NoopLogger) WithComponent(component string) ports.Logger {
	return l
}

// OrNoop returns log, or a NoopLogger when log is nil.
func OrNoop(log ports.Logger) ports.Logger {
	if log == nil {
		return NewNoop()
	}
	return log
}

var _ ports.Logger = (*NoopLogger)(nil)

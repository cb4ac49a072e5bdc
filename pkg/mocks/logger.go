package mocks

import (
	"fmt"
	"sync"

	"github.com/user/framepipe/pkg/ports"
)

// LogEntry is one message captured by Logger.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

// Logger is a mock implementation of ports.Logger that records every
// formatted message.
type Logger struct {
	log       *logBook
	component string
}

// logBook is shared by a Logger and the loggers derived from it.
type logBook struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates a new recording Logger.
func NewLogger() *Logger {
	return &Logger{log: &logBook{}}
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.add(ports.LevelDebug, msg, args) }
func (m *Logger) Info(msg string, args ...interface{})  { m.add(ports.LevelInfo, msg, args) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.add(ports.LevelWarn, msg, args) }
func (m *Logger) Error(msg string, args ...interface{}) { m.add(ports.LevelError, msg, args) }

func (m *Logger) WithComponent(component string) ports.Logger {
	return &Logger{log: m.log, component: component}
}

func (m *Logger) add(level ports.LogLevel, msg string, args []interface{}) {
	m.log.mu.Lock()
	defer m.log.mu.Unlock()
	m.log.entries = append(m.log.entries, LogEntry{
		Level:     level,
		Component: m.component,
		Message:   fmt.Sprintf(msg, args...),
	})
}

// Entries returns the recorded messages (for test verification).
func (m *Logger) Entries() []LogEntry {
	m.log.mu.Lock()
	defer m.log.mu.Unlock()
	return append([]LogEntry(nil), m.log.entries...)
}

// Count returns how many messages were logged at level.
func (m *Logger) Count(level ports.LogLevel) int {
	n := 0
	for _, e := range m.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

var _ ports.Logger = (*Logger)(nil)

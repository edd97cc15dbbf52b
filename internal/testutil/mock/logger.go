// Package mock provides test doubles shared across packages.
package mock

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Logger is a zap logger that records its entries
type Logger struct {
	*zap.Logger
	logs *observer.ObservedLogs
}

// NewLogger creates a new recording logger at debug level
func NewLogger() *Logger {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{
		Logger: zap.New(core),
		logs:   logs,
	}
}

// Entries returns all logged entries
func (l *Logger) Entries() []observer.LoggedEntry {
	return l.logs.All()
}

// Clear clears all logged entries
func (l *Logger) Clear() {
	l.logs.TakeAll()
}

// HasEntry checks if a log entry with the given level and message exists
func (l *Logger) HasEntry(level zapcore.Level, message string) bool {
	for _, entry := range l.logs.FilterMessage(message).All() {
		if entry.Level == level {
			return true
		}
	}
	return false
}

// Count returns how many entries carry message
func (l *Logger) Count(message string) int {
	return l.logs.FilterMessage(message).Len()
}

// Package testutil holds helpers shared by TextCoder tests.
package testutil

import (
	"sync"

	"github.com/turtacn/TextCoder/internal/infrastructure/monitoring/logging"
)

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the named field and whether it was present.
func (e LogEntry) Field(key string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// RecordingLogger is a logging.Logger that keeps every entry in memory.
// Children made with With or Named share the parent's buffer.
type RecordingLogger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	fields  []logging.Field
}

// NewRecordingLogger returns an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{mu: &sync.Mutex{}, entries: &[]LogEntry{}}
}

func (r *RecordingLogger) log(level, msg string, fields []logging.Field) {
	all := append(append([]logging.Field(nil), r.fields...), fields...)
	r.mu.Lock()
	*r.entries = append(*r.entries, LogEntry{Level: level, Message: msg, Fields: all})
	r.mu.Unlock()
}

func (r *RecordingLogger) Debug(msg string, fields ...logging.Field) { r.log("debug", msg, fields) }
func (r *RecordingLogger) Info(msg string, fields ...logging.Field)  { r.log("info", msg, fields) }
func (r *RecordingLogger) Warn(msg string, fields ...logging.Field)  { r.log("warn", msg, fields) }
func (r *RecordingLogger) Error(msg string, fields ...logging.Field) { r.log("error", msg, fields) }
func (r *RecordingLogger) Fatal(msg string, fields ...logging.Field) { r.log("fatal", msg, fields) }
func (r *RecordingLogger) Sync() error                               { return nil }

func (r *RecordingLogger) With(fields ...logging.Field) logging.Logger {
	return &RecordingLogger{
		mu:      r.mu,
		entries: r.entries,
		fields:  append(append([]logging.Field(nil), r.fields...), fields...),
	}
}

func (r *RecordingLogger) Named(string) logging.Logger { return r }

// Entries returns a copy of everything logged so far.
func (r *RecordingLogger) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogEntry(nil), (*r.entries)...)
}

// HasMessage reports whether any entry at level has message msg.
func (r *RecordingLogger) HasMessage(level, msg string) bool {
	for _, e := range r.Entries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

var _ logging.Logger = (*RecordingLogger)(nil)

//Personal.AI order the ending

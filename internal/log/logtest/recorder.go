// Package logtest provides a Logger that records entries for assertions.
package logtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/felixgeelhaar/licensemap/internal/log"
)

// Entry is one recorded log call.
type Entry struct {
	Level   log.Level
	Message string
	Fields  []log.Field
}

// Field returns the value of the named field, or nil.
func (e Entry) Field(key string) any {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Recorder is a concurrency-safe recording Logger.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	fields  []log.Field
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

func (r *Recorder) Log(_ context.Context, level log.Level, msg string, fields ...log.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := append(append([]log.Field{}, r.fields...), fields...)
	*r.entries = append(*r.entries, Entry{Level: level, Message: msg, Fields: all})
}

// With returns a recorder sharing the same entry buffer.
func (r *Recorder) With(fields ...log.Field) log.Logger {
	return &Recorder{
		mu:      r.mu,
		entries: r.entries,
		fields:  append(append([]log.Field{}, r.fields...), fields...),
	}
}

func (r *Recorder) Enabled(_ log.Level) bool { return true }

func (r *Recorder) Sync(_ context.Context) error { return nil }

// Entries returns a snapshot of the recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry{}, *r.entries...)
}

// AtLevel returns the entries recorded at level.
func (r *Recorder) AtLevel(level log.Level) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns "level: message" lines, useful in failure output.
func (r *Recorder) Messages() []string {
	var out []string
	for _, e := range r.Entries() {
		out = append(out, fmt.Sprintf("%s: %s", e.Level, e.Message))
	}
	return out
}

// Contains reports whether any entry at level contains substr.
func (r *Recorder) Contains(level log.Level, substr string) bool {
	for _, e := range r.AtLevel(level) {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

var _ log.Logger = (*Recorder)(nil)

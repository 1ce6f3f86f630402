package core

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signalsfoundry/uwb-floorsim/model"
)

// EventLog is the append-only history of room-entry events. Entries are
// never mutated or removed; reads come back oldest-first and callers
// wanting newest-first reverse at the presentation layer.
type EventLog struct {
	mu      sync.Mutex
	entries []model.LogEntry
	clock   func() time.Time
}

// NewEventLog constructs an empty log. clock may be nil, in which case
// wall-clock time is used for timestamps.
func NewEventLog(clock func() time.Time) *EventLog {
	if clock == nil {
		clock = time.Now
	}
	return &EventLog{clock: clock}
}

// Append records a message with the current wall-clock time formatted as
// HH:MM:SS and a fresh unique id.
func (l *EventLog) Append(message string) model.LogEntry {
	entry := model.LogEntry{
		ID:      uuid.NewString(),
		Message: message,
		Time:    l.clock().Format("15:04:05"),
	}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	return entry
}

// Entries returns a copy of the log in insertion order.
func (l *EventLog) Entries() []model.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

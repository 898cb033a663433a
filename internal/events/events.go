// Package events provides the bounded operational event log the mission
// controller consults between iterations.
package events

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Event kinds produced inside this repository. External emitters may use
// their own dotted kinds.
const (
	KindFileWrite  = "file.write"
	KindFileCreate = "file.create"
	KindFileRemove = "file.remove"
	KindFileRename = "file.rename"
	KindToolResult = "tool.result"
	KindToolError  = "tool.error"
)

const (
	// retained is the fixed retention window; older events are dropped
	// silently, with no eviction notification.
	retained = 10

	// contextWindow is how many of the newest events Context serializes.
	contextWindow = 5

	// errorIndicator is the substring HasRecentErrors looks for.
	errorIndicator = "error"
)

// Event is a side-effect outcome (a file write, a tool run) reported by an
// external collaborator between controller iterations.
type Event struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is a bounded in-memory ring of operational events. A single controller
// instance owns it; the mutex exists because external emitters (the workspace
// watcher, tool units) push from their own goroutines.
type Log struct {
	mu       sync.Mutex
	events   []Event
	writePos int
	total    int
}

// NewLog creates an empty event log.
func NewLog() *Log {
	return &Log{events: make([]Event, 0, retained)}
}

// Add records an event with the current time.
func (l *Log) Add(kind, message string) {
	l.AddEvent(Event{Kind: kind, Message: message})
}

// AddEvent records an event, filling in the timestamp when unset.
func (l *Log) AddEvent(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) < retained {
		l.events = append(l.events, e)
	} else {
		l.events[l.writePos] = e
	}
	l.writePos = (l.writePos + 1) % retained
	l.total++
}

// Last returns the most recent event serialized as JSON, or false when the
// log is empty.
func (l *Log) Last() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.total == 0 {
		return "", false
	}
	last := l.events[(l.writePos-1+len(l.events))%len(l.events)]
	data, err := json.Marshal(last)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Context returns the newest events (up to five) as a JSON array, oldest
// first, for inclusion in analysis prompts.
func (l *Log) Context() string {
	events := l.Events()
	if len(events) > contextWindow {
		events = events[len(events)-contextWindow:]
	}
	data, err := json.Marshal(events)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// Events returns the retained events oldest first.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Event, 0, len(l.events))
	if l.total <= retained {
		out = append(out, l.events...)
		return out
	}
	out = append(out, l.events[l.writePos:]...)
	out = append(out, l.events[:l.writePos]...)
	return out
}

// Len returns the number of retained events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// HasRecentErrors reports whether any retained event looks like a failure:
// a case-insensitive "error" substring in its kind or message.
func (l *Log) HasRecentErrors() bool {
	for _, e := range l.Events() {
		if strings.Contains(strings.ToLower(e.Kind), errorIndicator) ||
			strings.Contains(strings.ToLower(e.Message), errorIndicator) {
			return true
		}
	}
	return false
}

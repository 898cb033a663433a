// Package memory provides the bounded conversational buffer shared by a
// mission's collaborators. All data is lost when the process exits.
package memory

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/vinayprograms/agentkit/llm"
)

// DefaultCapacity is used when a store is created with a non-positive
// capacity.
const DefaultCapacity = 50

// Item is one buffered entry. Payload is typically a chat turn but any
// JSON-serializable value is accepted.
type Item struct {
	ID        uint64    `json:"id"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	Tag       string    `json:"tag,omitempty"`
}

// EventType discriminates store notifications.
type EventType string

const (
	EventPush    EventType = "push"
	EventPop     EventType = "pop"
	EventClear   EventType = "clear"
	EventRecall  EventType = "recall"
	EventEvicted EventType = "evicted"
)

// Event notifies an observer about store activity. Remaining is the item
// count after the operation.
type Event struct {
	Type      EventType `json:"type"`
	Remaining int       `json:"remaining"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a fixed-capacity buffer with stack-like removal and FIFO
// eviction: pushing onto a full store drops the oldest item.
type Store struct {
	mu       sync.Mutex
	items    []Item
	head     int
	count    int
	capacity int
	nextID   uint64
	observer func(Event)
}

// Option configures a Store.
type Option func(*Store)

// WithObserver registers a notification callback. The callback runs outside
// the store lock and must not be assumed to run on any particular goroutine.
func WithObserver(fn func(Event)) Option {
	return func(s *Store) { s.observer = fn }
}

// New creates a bounded store. Non-positive capacities fall back to
// DefaultCapacity.
func New(capacity int, opts ...Option) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Store{
		items:    make([]Item, capacity),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Push appends an item and returns its ID. IDs are unique for the lifetime
// of the store and strictly increase in insertion order. When the store is
// full the oldest item is evicted first, notifying the observer with an
// evicted event before the push event.
func (s *Store) Push(payload any, tag string) uint64 {
	s.mu.Lock()

	var notify []Event
	if s.count == s.capacity {
		s.head = (s.head + 1) % s.capacity
		s.count--
		notify = append(notify, Event{Type: EventEvicted, Remaining: s.count, Timestamp: time.Now()})
	}

	s.nextID++
	id := s.nextID
	s.items[(s.head+s.count)%s.capacity] = Item{
		ID:        id,
		Payload:   payload,
		CreatedAt: time.Now(),
		Tag:       tag,
	}
	s.count++
	notify = append(notify, Event{Type: EventPush, Remaining: s.count, Timestamp: time.Now()})

	s.mu.Unlock()
	s.emit(notify)
	return id
}

// Pop removes and returns the newest item, or false when the store is empty.
func (s *Store) Pop() (Item, bool) {
	s.mu.Lock()

	if s.count == 0 {
		s.mu.Unlock()
		return Item{}, false
	}
	s.count--
	item := s.items[(s.head+s.count)%s.capacity]
	notify := []Event{{Type: EventPop, Remaining: s.count, Timestamp: time.Now()}}

	s.mu.Unlock()
	s.emit(notify)
	return item, true
}

// Items returns a copy of the buffered items, oldest first. Mutating the
// returned slice does not affect the store.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Len returns the number of buffered items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Clear removes every item and returns how many were removed.
func (s *Store) Clear() int {
	s.mu.Lock()

	removed := s.count
	s.head = 0
	s.count = 0
	notify := []Event{{Type: EventClear, Remaining: 0, Timestamp: time.Now()}}

	s.mu.Unlock()
	s.emit(notify)
	return removed
}

// Recall performs a case-insensitive substring search over each item's tag
// and serialized payload, returning matches oldest first.
func (s *Store) Recall(query string) []Item {
	s.mu.Lock()
	items := s.snapshot()
	remaining := s.count
	s.mu.Unlock()

	query = strings.ToLower(query)
	var results []Item
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Tag), query) {
			results = append(results, item)
			continue
		}
		data, err := json.Marshal(item.Payload)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(string(data)), query) {
			results = append(results, item)
		}
	}

	s.emit([]Event{{Type: EventRecall, Remaining: remaining, Timestamp: time.Now()}})
	return results
}

// Messages projects the buffer onto a chat transcript, oldest first. Only
// chat-shaped payloads are included: an llm.Message, or a map carrying
// textual "role" and "content" values. Everything else is skipped.
func (s *Store) Messages() []llm.Message {
	items := s.Items()

	msgs := make([]llm.Message, 0, len(items))
	for _, item := range items {
		switch payload := item.Payload.(type) {
		case llm.Message:
			if payload.Role != "" && payload.Content != "" {
				msgs = append(msgs, payload)
			}
		case *llm.Message:
			if payload != nil && payload.Role != "" && payload.Content != "" {
				msgs = append(msgs, *payload)
			}
		case map[string]any:
			role, okRole := payload["role"].(string)
			content, okContent := payload["content"].(string)
			if okRole && okContent && role != "" && content != "" {
				msgs = append(msgs, llm.Message{Role: role, Content: content})
			}
		}
	}
	return msgs
}

// snapshot copies items oldest first. Callers must hold the lock.
func (s *Store) snapshot() []Item {
	out := make([]Item, 0, s.count)
	for i := 0; i < s.count; i++ {
		out = append(out, s.items[(s.head+i)%s.capacity])
	}
	return out
}

func (s *Store) emit(events []Event) {
	if s.observer == nil {
		return
	}
	for _, e := range events {
		s.observer(e)
	}
}

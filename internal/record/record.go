// Package record persists mission runs as append-only JSONL trails: one
// header line, one line per lifecycle event, one footer line. Records are
// an audit and replay surface; missions are never resumed from them.
package record

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Record status values.
const (
	StatusRunning   = "running"
	StatusComplete  = "complete"
	StatusFailed    = "failed"
	StatusExhausted = "exhausted"
)

// Record is one mission run's persisted trail.
type Record struct {
	ID         string    `json:"id"`
	Goal       string    `json:"goal"`
	Identity   string    `json:"identity,omitempty"`
	Context    string    `json:"context,omitempty"`
	Status     string    `json:"status"`
	Result     string    `json:"result,omitempty"`
	Iterations int       `json:"iterations,omitempty"`
	Completed  bool      `json:"completed"`
	Events     []Event   `json:"events,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Event is a single entry in a mission record. Type carries the lifecycle
// event kind verbatim.
type Event struct {
	SeqID     uint64                 `json:"seq"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Iteration int                    `json:"iteration,omitempty"`
	Content   string                 `json:"content,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// generateID creates a random record ID for records created without one.
func generateID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102-150405.000000000")
	}
	return hex.EncodeToString(b)
}

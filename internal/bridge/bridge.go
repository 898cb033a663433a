// Package bridge publishes mission lifecycle events to NATS so external
// dashboards and automations can follow runs without touching the record
// files.
package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/vinayprograms/agentkit/logging"

	"github.com/vinayprograms/mission/internal/mission"
)

// DefaultSubjectPrefix is used when the config leaves the subject empty.
const DefaultSubjectPrefix = "mission.events"

// Bridge forwards lifecycle events to a NATS server. Publishing is
// fire-and-forget: a down broker degrades to log warnings, never to a
// stalled mission.
type Bridge struct {
	nc     *nats.Conn
	prefix string
	logger *logging.Logger
}

// Connect dials the NATS server at url. An empty prefix falls back to
// DefaultSubjectPrefix.
func Connect(url, prefix string) (*Bridge, error) {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	nc, err := nats.Connect(url, nats.Name("mission"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	return &Bridge{
		nc:     nc,
		prefix: prefix,
		logger: logging.New().WithComponent("bridge"),
	}, nil
}

// Emit publishes one event to <prefix>.<missionID>.<kind>. Failures are
// logged and dropped.
func (b *Bridge) Emit(ev mission.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		b.logger.Warn("Failed to marshal event", map[string]interface{}{
			"kind":  string(ev.Kind),
			"error": err.Error(),
		})
		return
	}

	subject := subjectFor(b.prefix, ev)
	if err := b.nc.Publish(subject, data); err != nil {
		b.logger.Warn("Failed to publish event", map[string]interface{}{
			"subject": subject,
			"error":   err.Error(),
		})
	}
}

// subjectFor builds the per-event subject. Kinds contain no dots, so each
// event lands in its own terminal token and wildcards like
// "mission.events.*.worker-reply" work as expected.
func subjectFor(prefix string, ev mission.Event) string {
	return fmt.Sprintf("%s.%s.%s", prefix, ev.MissionID, ev.Kind)
}

// Close flushes buffered publishes and drops the connection.
func (b *Bridge) Close() error {
	return b.nc.Drain()
}

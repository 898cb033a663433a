package mission

import (
	"time"

	"github.com/vinayprograms/agentkit/logging"
	"github.com/vinayprograms/agentkit/telemetry"
)

// EventKind labels a lifecycle event.
type EventKind string

const (
	EventMissionStart      EventKind = "mission-start"
	EventIterationStart    EventKind = "iteration-start"
	EventPlannerBreakdown  EventKind = "planner-breakdown"
	EventWorkerReply       EventKind = "worker-reply"
	EventAnalysisResult    EventKind = "analysis-result"
	EventCollaboratorError EventKind = "collaborator-error"
	EventMissionEscalation EventKind = "mission-escalation"
	EventMissionComplete   EventKind = "mission-complete"
)

// Event is one lifecycle notification from a running mission.
type Event struct {
	Kind      EventKind              `json:"kind"`
	MissionID string                 `json:"mission_id"`
	Iteration int                    `json:"iteration,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Sink receives lifecycle events. Emit runs on the mission goroutine, so
// implementations must not block; anything slow belongs behind a channel or
// a fire-and-forget publish.
type Sink interface {
	Emit(ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Emit implements Sink.
func (f SinkFunc) Emit(ev Event) { f(ev) }

// logSink writes lifecycle events through the structured logger. It is the
// subscriber every controller gets by default.
type logSink struct {
	logger *logging.Logger
}

func newLogSink() *logSink {
	return &logSink{logger: logging.New().WithComponent("mission")}
}

// Emit implements Sink.
func (s *logSink) Emit(ev Event) {
	fields := map[string]interface{}{
		"mission_id": ev.MissionID,
	}
	if ev.Iteration > 0 {
		fields["iteration"] = ev.Iteration
	}
	for k, v := range ev.Fields {
		if k == "content" || k == "result" {
			if text, ok := v.(string); ok {
				v = truncate(text, 200)
			}
		}
		fields[k] = v
	}

	switch ev.Kind {
	case EventCollaboratorError, EventMissionEscalation:
		s.logger.Warn(string(ev.Kind), fields)
	default:
		s.logger.Info(string(ev.Kind), fields)
	}
}

// TelemetrySink forwards lifecycle events to an OTLP exporter.
type TelemetrySink struct {
	exporter telemetry.Exporter
}

// NewTelemetrySink wraps an exporter as a lifecycle subscriber.
func NewTelemetrySink(exporter telemetry.Exporter) *TelemetrySink {
	return &TelemetrySink{exporter: exporter}
}

// Emit implements Sink.
func (s *TelemetrySink) Emit(ev Event) {
	fields := map[string]interface{}{
		"mission_id": ev.MissionID,
		"iteration":  ev.Iteration,
	}
	for k, v := range ev.Fields {
		fields[k] = v
	}
	s.exporter.LogEvent(string(ev.Kind), fields)
}

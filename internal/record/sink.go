package record

import (
	"github.com/vinayprograms/mission/internal/mission"
)

// Sink streams controller lifecycle events into a record file. Write
// failures are swallowed so a full disk never stalls a mission.
type Sink struct {
	w *Writer
}

// NewSink wraps a record writer as a mission event sink.
func NewSink(w *Writer) *Sink {
	return &Sink{w: w}
}

// Emit converts a lifecycle event to a record event and appends it. The
// content and error fields get dedicated columns; everything else rides
// along in Fields.
func (s *Sink) Emit(ev mission.Event) {
	rec := Event{
		Type:      string(ev.Kind),
		Timestamp: ev.Timestamp,
		Iteration: ev.Iteration,
	}

	fields := make(map[string]interface{}, len(ev.Fields))
	for k, v := range ev.Fields {
		switch k {
		case "content":
			if str, ok := v.(string); ok {
				rec.Content = str
				continue
			}
		case "error":
			if str, ok := v.(string); ok {
				rec.Error = str
				continue
			}
		}
		fields[k] = v
	}
	if len(fields) > 0 {
		rec.Fields = fields
	}

	_ = s.w.Append(rec)
}

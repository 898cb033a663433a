package bridge

import (
	"testing"

	"github.com/vinayprograms/mission/internal/mission"
)

func TestSubjectLayout(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		event  mission.Event
		want   string
	}{
		{
			name:   "default prefix",
			prefix: DefaultSubjectPrefix,
			event:  mission.Event{Kind: mission.EventWorkerReply, MissionID: "abc123"},
			want:   "mission.events.abc123.worker-reply",
		},
		{
			name:   "custom prefix",
			prefix: "ops.fleet",
			event:  mission.Event{Kind: mission.EventMissionComplete, MissionID: "run-7"},
			want:   "ops.fleet.run-7.mission-complete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := subjectFor(tt.prefix, tt.event); got != tt.want {
				t.Errorf("subjectFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

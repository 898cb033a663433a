package mission

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  State
	}{
		{"bare completed", "completed", StateCompleted},
		{"completed in sentence", "Mission Completed.", StateCompleted},
		{"completed uppercase", "The task is now COMPLETED.", StateCompleted},
		{"bare failed", "failed", StateFailed},
		{"failed in sentence", "Task failed due to permissions.", StateFailed},
		{"progress reply", "Proceeding to next step.", StateContinue},
		{"empty reply", "", StateContinue},
		// Substring semantics are literal: a negated mention still matches,
		// and when both words appear the completion check runs first.
		{"negated completion still matches", "not completed yet", StateCompleted},
		{"both words prefer completed", "failed checks were fixed and the goal completed", StateCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.reply); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.reply, got, tt.want)
			}
		})
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []State{StateCompleted, StateFailed, StateExhausted} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StatePlanning, StateWorkerExecuting, StateAnalyzing, StateContinue} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

package mission

import "strings"

// State names a phase or outcome of a mission run.
type State string

const (
	// Phases of one iteration.
	StatePlanning        State = "planning"
	StateWorkerExecuting State = "worker_executing"
	StateAnalyzing       State = "analyzing"

	// Verdicts and terminal outcomes.
	StateContinue  State = "next_task"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateExhausted State = "exhausted"
)

// Terminal reports whether a state ends the iteration loop.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateExhausted
}

// Classify derives the verdict from a planner analysis reply: the lowercased
// reply is scanned for the literal substrings "completed" and "failed", in
// that order, and anything else continues the loop. Replies that merely talk
// about completion ("not completed yet") therefore terminate; bundles must
// instruct the analyst accordingly.
func Classify(reply string) State {
	lower := strings.ToLower(reply)
	switch {
	case strings.Contains(lower, "completed"):
		return StateCompleted
	case strings.Contains(lower, "failed"):
		return StateFailed
	default:
		return StateContinue
	}
}

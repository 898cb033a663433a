package mission

import (
	"fmt"

	"github.com/vinayprograms/mission/internal/unit"
)

// ContextPolicy selects how much shared history the worker sees.
type ContextPolicy int

const (
	// ContextShared blends every turn into one transcript; the worker sees
	// the full mission history on each dispatch.
	ContextShared ContextPolicy = iota

	// ContextIsolated keeps a separate, clean transcript for the worker:
	// its own system prompt, instructions, and replies, nothing else.
	ContextIsolated
)

// String renders the policy for logs and records.
func (p ContextPolicy) String() string {
	if p == ContextIsolated {
		return "isolated"
	}
	return "shared"
}

// Strategy pairs the planning and working collaborators with a context
// policy. The controller runs the same loop regardless of which preset
// built the strategy.
type Strategy struct {
	Planner *unit.Unit
	Worker  *unit.Unit
	Context ContextPolicy
}

// Orchestrated is the dual-unit preset: a dedicated planner and a tool
// worker sharing one blended transcript.
func Orchestrated(planner, worker *unit.Unit) Strategy {
	return Strategy{Planner: planner, Worker: worker, Context: ContextShared}
}

// Solo is the single-unit preset: one unit both plans and works, with the
// work transcript kept apart from the planning history.
func Solo(u *unit.Unit) Strategy {
	return Strategy{Planner: u, Worker: u, Context: ContextIsolated}
}

// Validate checks the strategy can drive a mission.
func (s Strategy) Validate() error {
	if s.Planner == nil {
		return fmt.Errorf("strategy has no planner unit")
	}
	if s.Worker == nil {
		return fmt.Errorf("strategy has no worker unit")
	}
	return nil
}

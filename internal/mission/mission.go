// Package mission implements the bounded orchestration loop: a planner
// breaks a goal down, a worker executes one instruction per iteration, and
// an analysis pass decides whether the mission is done. The loop never runs
// past its iteration budget.
package mission

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vinayprograms/agentkit/llm"
	"github.com/vinayprograms/agentkit/logging"

	"github.com/vinayprograms/mission/internal/capability"
	"github.com/vinayprograms/mission/internal/events"
	"github.com/vinayprograms/mission/internal/identity"
	"github.com/vinayprograms/mission/internal/instructions"
	"github.com/vinayprograms/mission/internal/memory"
)

// DefaultMaxIterations bounds a mission when the config does not.
const DefaultMaxIterations = 10

// History tags distinguish what each buffered turn was for.
const (
	tagSystem      = "system"
	tagPlanning    = "planning"
	tagInstruction = "instruction"
	tagWorker      = "worker"
	tagAnalysis    = "analysis"
	tagDiagnostic  = "diagnostic"
)

// Execution is what a finished mission hands back to its caller. A mission
// that runs out of iterations still returns one, with the raw history and
// no result.
type Execution struct {
	ID         string        `json:"id"`
	Goal       string        `json:"goal"`
	Completed  bool          `json:"completed"`
	Result     string        `json:"result,omitempty"`
	Iterations int           `json:"iterations"`
	State      State         `json:"state"`
	Messages   []llm.Message `json:"messages"`
	DurationMs int64         `json:"duration_ms"`
}

// Config assembles a controller.
type Config struct {
	// Bundle supplies the instruction templates; nil selects the built-in
	// default bundle.
	Bundle *instructions.Bundle

	// Identity supplies the persona; nil selects the built-in default.
	Identity *identity.Identity

	// Strategy names the collaborators and the context policy. Required.
	Strategy Strategy

	// MaxIterations bounds the loop; non-positive means DefaultMaxIterations.
	MaxIterations int

	// MemoryCapacity bounds the shared history buffer; non-positive means
	// the memory package default.
	MemoryCapacity int

	// EventLog is the operational event log consulted during analysis. Nil
	// creates a private one; pass a shared instance when external emitters
	// (the workspace watcher) should feed the same log.
	EventLog *events.Log

	// Sinks receive lifecycle events in addition to the structured logger.
	Sinks []Sink
}

// Controller drives one mission at a time. It is not safe for concurrent
// use; run concurrent missions on separate controllers.
type Controller struct {
	id            string
	bundle        *instructions.Bundle
	ident         *identity.Identity
	strategy      Strategy
	maxIterations int

	mem    *memory.Store
	oplog  *events.Log
	caps   *capability.Set
	sinks  []Sink
	logger *logging.Logger

	failStreak int
	workerLog  []llm.Message
}

// New validates the config and assembles a controller.
func New(cfg Config) (*Controller, error) {
	bundle := cfg.Bundle
	if bundle == nil {
		bundle = instructions.DefaultBundle()
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	ident := cfg.Identity
	if ident == nil {
		ident = identity.Default()
	} else {
		if err := ident.Validate(); err != nil {
			return nil, err
		}
		ident.Normalize()
	}

	if err := cfg.Strategy.Validate(); err != nil {
		return nil, err
	}

	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	oplog := cfg.EventLog
	if oplog == nil {
		oplog = events.NewLog()
	}

	c := &Controller{
		id:            uuid.New().String(),
		bundle:        bundle,
		ident:         ident,
		strategy:      cfg.Strategy,
		maxIterations: maxIterations,
		oplog:         oplog,
		caps:          capability.NewSet(),
		logger:        logging.New().WithComponent("mission"),
	}
	c.mem = memory.New(cfg.MemoryCapacity, memory.WithObserver(c.onMemoryEvent))
	c.sinks = append([]Sink{newLogSink()}, cfg.Sinks...)

	if cfg.Strategy.Planner.HasTools() {
		c.logger.Warn("planner unit has tool access; planning calls will expose tools", map[string]interface{}{
			"unit": cfg.Strategy.Planner.Name(),
		})
	}
	return c, nil
}

// ID identifies the controller across records, subjects, and spans.
func (c *Controller) ID() string { return c.id }

// Identity returns the persona the controller runs with.
func (c *Controller) Identity() *identity.Identity { return c.ident }

// Memory exposes the shared history buffer.
func (c *Controller) Memory() *memory.Store { return c.mem }

// Events exposes the operational event log so external emitters can feed it.
func (c *Controller) Events() *events.Log { return c.oplog }

// Capabilities exposes the learned capability set.
func (c *Controller) Capabilities() *capability.Set { return c.caps }

// Learn absorbs capability contracts taught by units.
func (c *Controller) Learn(contracts ...capability.Contract) {
	c.caps.Learn(contracts...)
}

// AddSink registers an additional lifecycle sink. Sinks must be attached
// before Run; the controller does not lock the sink list.
func (c *Controller) AddSink(s Sink) {
	c.sinks = append(c.sinks, s)
}

// Teach returns the controller's own contract. An orchestrator offers no
// capabilities, so the manifest is empty.
func (c *Controller) Teach() capability.Contract {
	return capability.Manifest{Unit: c.id}
}

// Run executes one mission to a terminal state. Collaborator failures are
// absorbed into the transcript and the loop continues; Run itself only
// fails on an empty goal. Context cancellation surfaces as collaborator
// failures until the iteration budget runs out.
func (c *Controller) Run(ctx context.Context, goal string) (*Execution, error) {
	if strings.TrimSpace(goal) == "" {
		return nil, fmt.Errorf("mission goal is empty")
	}

	start := time.Now()
	ctx, span := c.startMissionSpan(ctx, goal)

	c.mem.Clear()
	c.workerLog = nil
	c.failStreak = 0

	exec := &Execution{ID: c.id, Goal: goal}
	c.logger.ExecutionStart(c.ident.Name)
	c.emit(EventMissionStart, 0, map[string]interface{}{
		"goal":     goal,
		"identity": c.ident.Name,
		"context":  c.strategy.Context.String(),
	})

	c.mem.Push(llm.Message{Role: "system", Content: c.ident.SystemPrompt}, tagSystem)

	if err := c.breakdown(ctx, goal); err != nil {
		c.recover(0, err)
	}

	state := StateExhausted
	for i := 1; i <= c.maxIterations; i++ {
		exec.Iterations = i
		c.emit(EventIterationStart, i, nil)

		verdict, err := c.iterate(ctx, i)
		if err != nil {
			c.recover(i, err)
			continue
		}
		c.failStreak = 0

		if verdict.Terminal() {
			state = verdict
			break
		}
	}

	exec.State = state
	exec.Completed = state == StateCompleted
	if state != StateExhausted {
		report, err := c.report(ctx)
		if err != nil {
			c.recover(exec.Iterations, err)
		} else {
			exec.Result = report
		}
	}

	exec.Messages = c.mem.Messages()
	exec.DurationMs = time.Since(start).Milliseconds()

	c.emit(EventMissionComplete, exec.Iterations, map[string]interface{}{
		"status":     string(state),
		"completed":  exec.Completed,
		"iterations": exec.Iterations,
		"result":     exec.Result,
	})
	c.logger.ExecutionComplete(c.ident.Name, time.Since(start), string(state))
	c.endMissionSpan(span, string(state), nil)
	return exec, nil
}

// breakdown runs the entry planning pass: the goal and the learned
// capability surface go to the planner, whose step list opens the
// transcript.
func (c *Controller) breakdown(ctx context.Context, goal string) error {
	prompt, err := c.bundle.Render(instructions.TemplateTaskBreakdown, map[string]string{
		"task":    goal,
		"tools":   c.caps.JoinedNames(),
		"schemas": c.caps.ManifestJSON(),
	})
	if err != nil {
		return err
	}

	c.mem.Push(llm.Message{Role: "user", Content: prompt}, tagPlanning)
	plan, err := c.strategy.Planner.Chat(ctx, c.mem.Messages())
	if err != nil {
		return err
	}
	c.mem.Push(llm.Message{Role: "assistant", Content: plan}, tagPlanning)
	c.emit(EventPlannerBreakdown, 0, map[string]interface{}{"content": plan})
	return nil
}

// iterate runs one plan/work/analyze cycle. Collaborator errors bubble up
// to the single recovery point in Run.
func (c *Controller) iterate(ctx context.Context, iteration int) (State, error) {
	ctx, span := c.startIterationSpan(ctx, iteration)
	defer span.End()

	instruction, err := c.nextInstruction(ctx, iteration)
	if err != nil {
		span.RecordError(err)
		return StateContinue, err
	}

	reply, err := c.dispatch(ctx, instruction, iteration)
	if err != nil {
		span.RecordError(err)
		return StateContinue, err
	}
	c.emit(EventWorkerReply, iteration, map[string]interface{}{"content": reply})

	verdict, err := c.analyze(ctx, reply, iteration)
	if err != nil {
		span.RecordError(err)
		return StateContinue, err
	}
	c.emit(EventAnalysisResult, iteration, map[string]interface{}{
		"verdict":       string(verdict),
		"recent_errors": c.oplog.HasRecentErrors(),
	})
	return verdict, nil
}

// nextInstruction asks the planner for the worker's next instruction. The
// generation prompt stays in history, and the instruction is recorded as
// the user turn the worker will answer.
func (c *Controller) nextInstruction(ctx context.Context, iteration int) (string, error) {
	prompt, err := c.bundle.Render(instructions.TemplateWorkerPromptGeneration, map[string]string{
		"promptTemplate": c.ident.PromptTemplate,
	})
	if err != nil {
		return "", err
	}

	stepID := fmt.Sprintf("iteration:%d", iteration)
	c.logger.PhaseStart(string(StatePlanning), c.strategy.Planner.Name(), stepID)
	start := time.Now()

	c.mem.Push(llm.Message{Role: "user", Content: prompt}, tagPlanning)
	instruction, err := c.strategy.Planner.Chat(ctx, c.mem.Messages())
	if err != nil {
		c.logger.PhaseComplete(string(StatePlanning), c.strategy.Planner.Name(), stepID, time.Since(start), "error")
		return "", err
	}
	c.logger.PhaseComplete(string(StatePlanning), c.strategy.Planner.Name(), stepID, time.Since(start), "complete")

	c.mem.Push(llm.Message{Role: "user", Content: instruction}, tagInstruction)
	return instruction, nil
}

// dispatch hands the instruction to the worker under the strategy's context
// policy and records the reply in shared history.
func (c *Controller) dispatch(ctx context.Context, instruction string, iteration int) (string, error) {
	stepID := fmt.Sprintf("iteration:%d", iteration)
	c.logger.PhaseStart(string(StateWorkerExecuting), c.strategy.Worker.Name(), stepID)
	start := time.Now()

	var msgs []llm.Message
	switch c.strategy.Context {
	case ContextIsolated:
		if len(c.workerLog) == 0 {
			prompt := c.ident.WorkerPrompt
			if prompt == "" {
				prompt = c.ident.SystemPrompt
			}
			c.workerLog = append(c.workerLog, llm.Message{Role: "system", Content: prompt})
		}
		c.workerLog = append(c.workerLog, llm.Message{Role: "user", Content: instruction})
		msgs = c.workerLog
	default:
		msgs = c.mem.Messages()
	}

	reply, err := c.strategy.Worker.Chat(ctx, msgs)
	if err != nil {
		c.logger.PhaseComplete(string(StateWorkerExecuting), c.strategy.Worker.Name(), stepID, time.Since(start), "error")
		return "", err
	}
	c.logger.PhaseComplete(string(StateWorkerExecuting), c.strategy.Worker.Name(), stepID, time.Since(start), "complete")

	if c.strategy.Context == ContextIsolated {
		c.workerLog = append(c.workerLog, llm.Message{Role: "assistant", Content: reply})
	}
	c.mem.Push(llm.Message{Role: "assistant", Content: reply}, tagWorker)
	return reply, nil
}

// analyze judges the worker's reply. The analysis exchange rides the shared
// history only while the planner call is in flight and is removed before
// anything else can observe it.
func (c *Controller) analyze(ctx context.Context, workerReply string, iteration int) (State, error) {
	systemEvents := "no events"
	if last, ok := c.oplog.Last(); ok {
		systemEvents = last
	}

	prompt, err := c.bundle.Render(instructions.TemplateResultAnalysis, map[string]string{
		"workerResponse": workerReply,
		"systemEvents":   systemEvents,
		"iteration":      strconv.Itoa(iteration),
		"maxIterations":  strconv.Itoa(c.maxIterations),
	})
	if err != nil {
		return StateContinue, err
	}

	stepID := fmt.Sprintf("iteration:%d", iteration)
	c.logger.PhaseStart(string(StateAnalyzing), c.strategy.Planner.Name(), stepID)
	start := time.Now()

	c.mem.Push(llm.Message{Role: "user", Content: prompt}, tagAnalysis)
	reply, err := c.strategy.Planner.Chat(ctx, c.mem.Messages())
	if err != nil {
		c.mem.Pop()
		c.logger.PhaseComplete(string(StateAnalyzing), c.strategy.Planner.Name(), stepID, time.Since(start), "error")
		return StateContinue, err
	}
	c.mem.Push(llm.Message{Role: "assistant", Content: reply}, tagAnalysis)

	verdict := Classify(reply)
	c.mem.Pop()
	c.mem.Pop()
	c.logger.PhaseComplete(string(StateAnalyzing), c.strategy.Planner.Name(), stepID, time.Since(start), string(verdict))

	if c.oplog.HasRecentErrors() {
		c.logger.Warn("operational errors in recent events", map[string]interface{}{
			"iteration": iteration,
		})
	}
	return verdict, nil
}

// recover absorbs a collaborator failure: the error and the identity's
// fallback guidance are appended to history as a user turn so the next
// planner call sees what went wrong.
func (c *Controller) recover(iteration int, err error) {
	c.failStreak++
	c.logger.Error("collaborator call failed", map[string]interface{}{
		"iteration": iteration,
		"error":     err.Error(),
	})
	c.emit(EventCollaboratorError, iteration, map[string]interface{}{"error": err.Error()})

	turn := fmt.Sprintf("A collaborator call failed: %v. %s", err, c.ident.ErrorRecovery.FallbackStrategy)
	c.mem.Push(llm.Message{Role: "user", Content: turn}, tagDiagnostic)

	threshold := c.ident.ErrorRecovery.EscalationThreshold
	if threshold > 0 && c.failStreak >= threshold {
		c.logger.SecurityWarning("mission escalation threshold reached", map[string]interface{}{
			"failures":  c.failStreak,
			"threshold": threshold,
		})
		c.emit(EventMissionEscalation, iteration, map[string]interface{}{
			"failures":  c.failStreak,
			"threshold": threshold,
		})
	}
}

// report summarizes the transcript through the planner with a fresh
// context. The bundle's finalReport system prompt frames the call.
func (c *Controller) report(ctx context.Context) (string, error) {
	prompt, err := c.bundle.Render(instructions.TemplateFinalReport, map[string]string{
		"history": c.transcript(),
	})
	if err != nil {
		return "", err
	}

	tmpl, err := c.bundle.Template(instructions.TemplateFinalReport)
	if err != nil {
		return "", err
	}

	var msgs []llm.Message
	if tmpl.Prompt.System != "" {
		msgs = append(msgs, llm.Message{Role: "system", Content: tmpl.Prompt.System})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: prompt})
	return c.strategy.Planner.Chat(ctx, msgs)
}

// transcript renders history as a numbered conversation, without the
// leading system turn.
func (c *Controller) transcript() string {
	msgs := c.mem.Messages()
	if len(msgs) > 0 && msgs[0].Role == "system" {
		msgs = msgs[1:]
	}

	var b strings.Builder
	for i, msg := range msgs {
		fmt.Fprintf(&b, "%d. [%s]: %s\n", i+1, msg.Role, msg.Content)
	}
	return b.String()
}

func (c *Controller) emit(kind EventKind, iteration int, fields map[string]interface{}) {
	ev := Event{
		Kind:      kind,
		MissionID: c.id,
		Iteration: iteration,
		Fields:    fields,
		Timestamp: time.Now(),
	}
	for _, s := range c.sinks {
		s.Emit(ev)
	}
}

// onMemoryEvent surfaces buffer activity in debug logs. Evictions get a
// full log line since losing early turns changes what collaborators see.
func (c *Controller) onMemoryEvent(e memory.Event) {
	if e.Type == memory.EventEvicted {
		c.logger.Warn("history buffer evicted oldest turn", map[string]interface{}{
			"remaining": e.Remaining,
		})
		return
	}
	c.logger.Debug("history buffer "+string(e.Type), map[string]interface{}{
		"remaining": e.Remaining,
	})
}

// truncate shortens s for logs and span attributes.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "... (truncated)"
}

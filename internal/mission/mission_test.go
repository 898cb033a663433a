package mission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vinayprograms/agentkit/llm"

	"github.com/vinayprograms/mission/internal/capability"
	"github.com/vinayprograms/mission/internal/events"
	"github.com/vinayprograms/mission/internal/identity"
	"github.com/vinayprograms/mission/internal/unit"
)

// scriptedPlanner answers each planning call by recognizing the default
// bundle's prompts. Analysis verdicts are consumed from the list in order,
// with the last one repeating.
func scriptedPlanner(verdicts ...string) llm.Provider {
	instructionCount := 0
	analysisCount := 0
	p := llm.NewMockProvider()
	p.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		last := req.Messages[len(req.Messages)-1].Content
		// The report prompt embeds the whole transcript, so it must be
		// recognized before the prompts that appear inside it.
		switch {
		case strings.Contains(last, "concise report"):
			return &llm.ChatResponse{Content: "Mission report: step done and verified."}, nil
		case strings.Contains(last, "Break this mission"):
			return &llm.ChatResponse{Content: "1. do the step\n2. verify it"}, nil
		case strings.Contains(last, "next instruction"):
			instructionCount++
			return &llm.ChatResponse{Content: fmt.Sprintf("Do step %d", instructionCount)}, nil
		case strings.Contains(last, "Judge mission progress"):
			idx := analysisCount
			if idx >= len(verdicts) {
				idx = len(verdicts) - 1
			}
			analysisCount++
			return &llm.ChatResponse{Content: verdicts[idx]}, nil
		default:
			return &llm.ChatResponse{Content: "ok"}, nil
		}
	}
	return p
}

func echoWorker() llm.Provider {
	p := llm.NewMockProvider()
	p.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		last := req.Messages[len(req.Messages)-1].Content
		return &llm.ChatResponse{Content: "did: " + last}, nil
	}
	return p
}

func newTestController(t *testing.T, cfg Config) *Controller {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestMissionCompletesOnCompletedVerdict(t *testing.T) {
	planner := unit.New("planner", scriptedPlanner("completed"))
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{Strategy: Orchestrated(planner, worker)})

	exec, err := c.Run(context.Background(), "archive the build logs")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !exec.Completed {
		t.Error("expected completed mission")
	}
	if exec.State != StateCompleted {
		t.Errorf("state = %s, want %s", exec.State, StateCompleted)
	}
	if exec.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", exec.Iterations)
	}
	if !strings.Contains(exec.Result, "Mission report") {
		t.Errorf("result = %q, want the summarized report", exec.Result)
	}
	if exec.ID == "" || exec.Goal != "archive the build logs" {
		t.Errorf("execution header incomplete: %+v", exec)
	}
}

func TestFailedVerdictStillProducesReport(t *testing.T) {
	planner := unit.New("planner", scriptedPlanner("the mission has failed"))
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{Strategy: Orchestrated(planner, worker)})

	exec, err := c.Run(context.Background(), "impossible task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if exec.Completed {
		t.Error("failed mission must not report completed")
	}
	if exec.State != StateFailed {
		t.Errorf("state = %s, want %s", exec.State, StateFailed)
	}
	if exec.Result == "" {
		t.Error("failed missions still get a final report")
	}
}

func TestIterationBudgetExhaustion(t *testing.T) {
	planner := unit.New("planner", scriptedPlanner("keep going"))
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{
		Strategy:      Orchestrated(planner, worker),
		MaxIterations: 3,
	})

	exec, err := c.Run(context.Background(), "endless task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if exec.State != StateExhausted {
		t.Errorf("state = %s, want %s", exec.State, StateExhausted)
	}
	if exec.Completed {
		t.Error("exhausted mission must not be completed")
	}
	if exec.Iterations != 3 {
		t.Errorf("iterations = %d, want 3", exec.Iterations)
	}
	if exec.Result != "" {
		t.Errorf("exhausted mission must not get a report, got %q", exec.Result)
	}
	if len(exec.Messages) == 0 {
		t.Error("exhausted mission must return the raw history")
	}
}

func TestDefaultIterationBudget(t *testing.T) {
	planner := unit.New("planner", scriptedPlanner("keep going"))
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{Strategy: Orchestrated(planner, worker)})

	exec, err := c.Run(context.Background(), "endless task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if exec.Iterations != DefaultMaxIterations {
		t.Errorf("iterations = %d, want default %d", exec.Iterations, DefaultMaxIterations)
	}
}

func TestAnalysisTurnsNeverPersist(t *testing.T) {
	planner := unit.New("planner", scriptedPlanner("keep going", "completed"))
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{Strategy: Orchestrated(planner, worker)})

	exec, err := c.Run(context.Background(), "two round task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var sawInstruction, sawWorkerReply bool
	for _, msg := range exec.Messages {
		if strings.Contains(msg.Content, "Judge mission progress") {
			t.Errorf("analysis prompt leaked into history: %q", truncate(msg.Content, 80))
		}
		if msg.Content == "keep going" || msg.Content == "completed" {
			t.Errorf("analysis verdict leaked into history: %q", msg.Content)
		}
		if strings.HasPrefix(msg.Content, "Do step") {
			sawInstruction = true
		}
		if strings.HasPrefix(msg.Content, "did: ") {
			sawWorkerReply = true
		}
	}
	if !sawInstruction || !sawWorkerReply {
		t.Errorf("instruction/reply missing from history: instruction=%v reply=%v",
			sawInstruction, sawWorkerReply)
	}

	for _, item := range c.Memory().Items() {
		if item.Tag == tagAnalysis {
			t.Errorf("analysis item left in buffer: %+v", item)
		}
	}
}

func TestWorkerFailureRecoversWithFallback(t *testing.T) {
	workerCalls := 0
	flaky := llm.NewMockProvider()
	flaky.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		workerCalls++
		if workerCalls == 1 {
			return nil, errors.New("provider timeout")
		}
		return &llm.ChatResponse{Content: "recovered and done"}, nil
	}

	ident := &identity.Identity{
		Name:         "tester",
		SystemPrompt: "You test recovery.",
		ErrorRecovery: identity.ErrorRecovery{
			FallbackStrategy: "Consult the runbook before retrying.",
		},
	}

	planner := unit.New("planner", scriptedPlanner("completed"))
	worker := unit.New("worker", flaky)
	c := newTestController(t, Config{
		Strategy: Orchestrated(planner, worker),
		Identity: ident,
	})

	exec, err := c.Run(context.Background(), "flaky task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !exec.Completed {
		t.Error("mission should complete after recovering")
	}
	if exec.Iterations != 2 {
		t.Errorf("iterations = %d, want 2", exec.Iterations)
	}

	var sawDiagnostic bool
	for _, msg := range exec.Messages {
		if msg.Role == "user" &&
			strings.Contains(msg.Content, "provider timeout") &&
			strings.Contains(msg.Content, "Consult the runbook before retrying.") {
			sawDiagnostic = true
		}
	}
	if !sawDiagnostic {
		t.Error("diagnostic turn with fallback guidance missing from history")
	}
}

func TestEscalationThresholdEmitsEvent(t *testing.T) {
	broken := llm.NewMockProvider()
	broken.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, errors.New("provider down")
	}

	ident := &identity.Identity{
		Name:         "tester",
		SystemPrompt: "You test escalation.",
		ErrorRecovery: identity.ErrorRecovery{
			FallbackStrategy:    "Keep trying.",
			EscalationThreshold: 2,
		},
	}

	var escalations []Event
	sink := SinkFunc(func(ev Event) {
		if ev.Kind == EventMissionEscalation {
			escalations = append(escalations, ev)
		}
	})

	planner := unit.New("planner", broken)
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{
		Strategy:      Orchestrated(planner, worker),
		Identity:      ident,
		MaxIterations: 3,
		Sinks:         []Sink{sink},
	})

	exec, err := c.Run(context.Background(), "doomed task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if exec.State != StateExhausted {
		t.Errorf("state = %s, want %s", exec.State, StateExhausted)
	}
	if len(escalations) == 0 {
		t.Fatal("expected an escalation event")
	}
	first := escalations[0]
	if first.Fields["failures"] != 2 {
		t.Errorf("escalation failures = %v, want 2", first.Fields["failures"])
	}
	if first.Fields["threshold"] != 2 {
		t.Errorf("escalation threshold = %v, want 2", first.Fields["threshold"])
	}
}

func TestLifecycleEventOrder(t *testing.T) {
	var kinds []EventKind
	var missionIDs []string
	sink := SinkFunc(func(ev Event) {
		kinds = append(kinds, ev.Kind)
		missionIDs = append(missionIDs, ev.MissionID)
		if ev.Timestamp.IsZero() {
			t.Errorf("event %s has zero timestamp", ev.Kind)
		}
	})

	planner := unit.New("planner", scriptedPlanner("completed"))
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{
		Strategy: Orchestrated(planner, worker),
		Sinks:    []Sink{sink},
	})

	if _, err := c.Run(context.Background(), "single step task"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []EventKind{
		EventMissionStart,
		EventPlannerBreakdown,
		EventIterationStart,
		EventWorkerReply,
		EventAnalysisResult,
		EventMissionComplete,
	}
	if len(kinds) != len(want) {
		t.Fatalf("event kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, kinds[i], want[i])
		}
	}
	for _, id := range missionIDs {
		if id != c.ID() {
			t.Errorf("event mission ID %q does not match controller %q", id, c.ID())
		}
	}
}

func TestAnalysisPromptCarriesIterationAndEvents(t *testing.T) {
	var analysisPrompts []string
	p := llm.NewMockProvider()
	inner := scriptedPlanner("completed")
	p.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		last := req.Messages[len(req.Messages)-1].Content
		if strings.Contains(last, "Judge mission progress") {
			analysisPrompts = append(analysisPrompts, last)
		}
		return inner.Chat(ctx, req)
	}

	oplog := events.NewLog()
	oplog.Add(events.KindFileWrite, "report.md")

	planner := unit.New("planner", p)
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{
		Strategy:      Orchestrated(planner, worker),
		MaxIterations: 4,
		EventLog:      oplog,
	})

	if _, err := c.Run(context.Background(), "observable task"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(analysisPrompts) != 1 {
		t.Fatalf("expected 1 analysis prompt, got %d", len(analysisPrompts))
	}
	prompt := analysisPrompts[0]
	if !strings.Contains(prompt, "iteration 1 of 4") {
		t.Errorf("analysis prompt missing iteration counters: %q", prompt)
	}
	if !strings.Contains(prompt, "report.md") {
		t.Errorf("analysis prompt missing the last operational event: %q", prompt)
	}
}

func TestAnalysisPromptWithoutEvents(t *testing.T) {
	var analysisPrompt string
	p := llm.NewMockProvider()
	inner := scriptedPlanner("completed")
	p.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		last := req.Messages[len(req.Messages)-1].Content
		if strings.Contains(last, "Judge mission progress") {
			analysisPrompt = last
		}
		return inner.Chat(ctx, req)
	}

	planner := unit.New("planner", p)
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{Strategy: Orchestrated(planner, worker)})

	if _, err := c.Run(context.Background(), "quiet task"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(analysisPrompt, "no events") {
		t.Errorf("analysis prompt should state there were no events: %q", analysisPrompt)
	}
}

func TestBreakdownPromptListsLearnedCapabilities(t *testing.T) {
	var breakdownPrompt string
	p := llm.NewMockProvider()
	inner := scriptedPlanner("completed")
	p.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		last := req.Messages[len(req.Messages)-1].Content
		if strings.Contains(last, "Break this mission") {
			breakdownPrompt = last
		}
		return inner.Chat(ctx, req)
	}

	planner := unit.New("planner", p)
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{Strategy: Orchestrated(planner, worker)})
	c.Learn(capability.Manifest{
		Unit: "worker",
		Schemas: map[string]map[string]interface{}{
			"shell":      {"type": "object", "required": []string{"command"}},
			"file_write": {"type": "object"},
		},
	})

	if _, err := c.Run(context.Background(), "capable task"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(breakdownPrompt, "file_write, shell") {
		t.Errorf("breakdown prompt missing joined capability names: %q", breakdownPrompt)
	}
	if !strings.Contains(breakdownPrompt, `"command"`) {
		t.Errorf("breakdown prompt missing schema manifest: %q", breakdownPrompt)
	}
}

func TestWeatherReportScenario(t *testing.T) {
	oplog := events.NewLog()

	var analysisPrompt string
	p := llm.NewMockProvider()
	p.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		last := req.Messages[len(req.Messages)-1].Content
		switch {
		case strings.Contains(last, "concise report"):
			return &llm.ChatResponse{Content: "Forecast fetched and saved to weather-report.md."}, nil
		case strings.Contains(last, "Break this mission"):
			return &llm.ChatResponse{Content: "1. fetch the forecast\n2. write the report file"}, nil
		case strings.Contains(last, "next instruction"):
			return &llm.ChatResponse{Content: "Fetch the forecast and write weather-report.md"}, nil
		case strings.Contains(last, "Judge mission progress"):
			analysisPrompt = last
			return &llm.ChatResponse{Content: "completed"}, nil
		default:
			return &llm.ChatResponse{Content: "ok"}, nil
		}
	}

	w := llm.NewMockProvider()
	w.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		// Tool side effects land in the operational log before the reply
		// reaches the controller, the way the workspace watcher records them.
		oplog.Add(events.KindFileWrite, "weather-report.md")
		return &llm.ChatResponse{Content: "Wrote weather-report.md with today's forecast."}, nil
	}

	planner := unit.New("planner", p)
	worker := unit.New("worker", w)
	c := newTestController(t, Config{
		Strategy: Orchestrated(planner, worker),
		EventLog: oplog,
	})

	exec, err := c.Run(context.Background(), "check the weather and write a report")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !exec.Completed {
		t.Fatalf("scenario did not complete: state=%s", exec.State)
	}
	if !strings.Contains(analysisPrompt, "weather-report.md") {
		t.Errorf("file activity not visible at analysis time: %q", analysisPrompt)
	}
	if exec.Result == "" {
		t.Error("completed scenario must produce a report")
	}
}

func TestSoloStrategyKeepsWorkerTranscriptClean(t *testing.T) {
	var workerRequests [][]llm.Message
	instructionCount := 0
	analysisCount := 0
	p := llm.NewMockProvider()
	p.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		last := req.Messages[len(req.Messages)-1].Content
		switch {
		case strings.Contains(last, "concise report"):
			return &llm.ChatResponse{Content: "solo report"}, nil
		case strings.Contains(last, "Break this mission"):
			return &llm.ChatResponse{Content: "1. first\n2. second"}, nil
		case strings.Contains(last, "next instruction"):
			instructionCount++
			return &llm.ChatResponse{Content: fmt.Sprintf("instruction %d", instructionCount)}, nil
		case strings.Contains(last, "Judge mission progress"):
			analysisCount++
			if analysisCount == 1 {
				return &llm.ChatResponse{Content: "keep going"}, nil
			}
			return &llm.ChatResponse{Content: "completed"}, nil
		default:
			msgs := make([]llm.Message, len(req.Messages))
			copy(msgs, req.Messages)
			workerRequests = append(workerRequests, msgs)
			return &llm.ChatResponse{Content: "done " + last}, nil
		}
	}

	ident := &identity.Identity{
		Name:         "solo",
		SystemPrompt: "You are the solo planner.",
		WorkerPrompt: "You execute instructions exactly.",
	}

	solo := unit.New("solo", p)
	c := newTestController(t, Config{
		Strategy: Solo(solo),
		Identity: ident,
	})

	exec, err := c.Run(context.Background(), "two step task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !exec.Completed || exec.Iterations != 2 {
		t.Fatalf("unexpected execution: completed=%v iterations=%d", exec.Completed, exec.Iterations)
	}

	if len(workerRequests) != 2 {
		t.Fatalf("expected 2 worker dispatches, got %d", len(workerRequests))
	}

	first := workerRequests[0]
	if len(first) != 2 {
		t.Fatalf("first worker request has %d messages, want 2 (clean transcript)", len(first))
	}
	if first[0].Role != "system" || first[0].Content != "You execute instructions exactly." {
		t.Errorf("worker system turn = %+v", first[0])
	}
	if first[1].Content != "instruction 1" {
		t.Errorf("worker user turn = %q", first[1].Content)
	}

	second := workerRequests[1]
	if len(second) != 4 {
		t.Fatalf("second worker request has %d messages, want 4", len(second))
	}
	if second[2].Role != "assistant" || second[3].Content != "instruction 2" {
		t.Errorf("worker transcript did not accumulate its own turns: %+v", second)
	}
	for _, msg := range second {
		if strings.Contains(msg.Content, "Break this mission") {
			t.Error("planner history leaked into the isolated worker transcript")
		}
	}
}

func TestSharedStrategyWorkerSeesFullHistory(t *testing.T) {
	var workerRequest []llm.Message
	w := llm.NewMockProvider()
	w.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		workerRequest = make([]llm.Message, len(req.Messages))
		copy(workerRequest, req.Messages)
		return &llm.ChatResponse{Content: "worked"}, nil
	}

	planner := unit.New("planner", scriptedPlanner("completed"))
	worker := unit.New("worker", w)
	c := newTestController(t, Config{Strategy: Orchestrated(planner, worker)})

	if _, err := c.Run(context.Background(), "shared context task"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(workerRequest) == 0 {
		t.Fatal("worker never dispatched")
	}
	if workerRequest[0].Role != "system" {
		t.Errorf("shared history should open with the system turn, got %s", workerRequest[0].Role)
	}
	var sawBreakdown bool
	for _, msg := range workerRequest {
		if strings.Contains(msg.Content, "Break this mission") {
			sawBreakdown = true
		}
	}
	if !sawBreakdown {
		t.Error("worker did not see the blended planning history")
	}
	if workerRequest[len(workerRequest)-1].Content != "Do step 1" {
		t.Errorf("worker request should end with the instruction, got %q",
			workerRequest[len(workerRequest)-1].Content)
	}
}

func TestReportFailureLeavesResultEmpty(t *testing.T) {
	p := llm.NewMockProvider()
	inner := scriptedPlanner("completed")
	p.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		last := req.Messages[len(req.Messages)-1].Content
		if strings.Contains(last, "concise report") {
			return nil, errors.New("summarizer offline")
		}
		return inner.Chat(ctx, req)
	}

	var errorEvents int
	sink := SinkFunc(func(ev Event) {
		if ev.Kind == EventCollaboratorError {
			errorEvents++
		}
	})

	planner := unit.New("planner", p)
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{
		Strategy: Orchestrated(planner, worker),
		Sinks:    []Sink{sink},
	})

	exec, err := c.Run(context.Background(), "summarize-me task")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !exec.Completed {
		t.Error("report failure must not undo mission completion")
	}
	if exec.Result != "" {
		t.Errorf("result should be empty after report failure, got %q", exec.Result)
	}
	if errorEvents != 1 {
		t.Errorf("expected 1 collaborator-error event, got %d", errorEvents)
	}
}

func TestEmptyGoalRejected(t *testing.T) {
	planner := unit.New("planner", scriptedPlanner("completed"))
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{Strategy: Orchestrated(planner, worker)})

	if _, err := c.Run(context.Background(), "   "); err == nil {
		t.Fatal("expected empty goal to be rejected")
	}
}

func TestControllerTeachesEmptyManifest(t *testing.T) {
	planner := unit.New("planner", scriptedPlanner("completed"))
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{Strategy: Orchestrated(planner, worker)})

	contract := c.Teach()
	if contract.UnitID() != c.ID() {
		t.Errorf("contract unit = %q, want controller ID", contract.UnitID())
	}
	if len(contract.Names()) != 0 {
		t.Errorf("controller taught capabilities: %v", contract.Names())
	}
}

func TestRunResetsStateBetweenMissions(t *testing.T) {
	planner := unit.New("planner", scriptedPlanner("completed"))
	worker := unit.New("worker", echoWorker())
	c := newTestController(t, Config{Strategy: Orchestrated(planner, worker)})

	first, err := c.Run(context.Background(), "first mission")
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	second, err := c.Run(context.Background(), "second mission")
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	if second.Iterations != 1 {
		t.Errorf("second mission iterations = %d, want 1", second.Iterations)
	}
	if len(second.Messages) != len(first.Messages) {
		t.Errorf("history leaked between missions: first=%d second=%d messages",
			len(first.Messages), len(second.Messages))
	}
	for _, msg := range second.Messages {
		if strings.Contains(msg.Content, "first mission") {
			t.Error("second mission history contains the first mission's goal")
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	planner := unit.New("planner", llm.NewMockProvider())

	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing strategy units")
	}
	if _, err := New(Config{Strategy: Strategy{Planner: planner}}); err == nil {
		t.Error("expected error for missing worker")
	}
	if _, err := New(Config{
		Strategy: Orchestrated(planner, planner),
		Identity: &identity.Identity{},
	}); err == nil {
		t.Error("expected error for invalid identity")
	}
}

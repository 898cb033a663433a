package unit

import (
	"context"
	"strings"
	"testing"

	"github.com/vinayprograms/agentkit/llm"

	"github.com/vinayprograms/mission/internal/events"
)

func TestChatReturnsPlainContent(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetResponse("hello from planner")

	u := New("planner", provider)
	out, err := u.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "You plan."},
		{Role: "user", Content: "plan something"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if out != "hello from planner" {
		t.Errorf("Chat() = %q", out)
	}
}

func TestChatDoesNotMutateCallerMessages(t *testing.T) {
	callCount := 0
	provider := llm.NewMockProvider()
	provider.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		callCount++
		if callCount == 1 {
			return &llm.ChatResponse{ToolCalls: []llm.ToolCallResponse{
				{ID: "t1", Name: "shell", Args: map[string]interface{}{"command": "ls"}},
			}}, nil
		}
		return &llm.ChatResponse{Content: "done"}, nil
	}

	original := []llm.Message{{Role: "user", Content: "go"}}
	u := New("worker", provider)
	if _, err := u.Chat(context.Background(), original); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if len(original) != 1 {
		t.Errorf("caller slice grew to %d messages", len(original))
	}
}

func TestChatResolvesToolCallsBeforeReturning(t *testing.T) {
	callCount := 0
	provider := llm.NewMockProvider()
	provider.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		callCount++
		if callCount == 1 {
			return &llm.ChatResponse{
				Content: "let me check",
				ToolCalls: []llm.ToolCallResponse{
					{ID: "t1", Name: "missing_tool", Args: map[string]interface{}{}},
				},
			}, nil
		}
		return &llm.ChatResponse{Content: "finished"}, nil
	}

	log := events.NewLog()
	u := New("worker", provider, WithEventLog(log))
	out, err := u.Chat(context.Background(), []llm.Message{{Role: "user", Content: "go"}})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if out != "finished" {
		t.Errorf("Chat() = %q", out)
	}
	if callCount != 2 {
		t.Errorf("expected 2 provider calls, got %d", callCount)
	}

	// The second request must carry the assistant turn and the tool reply.
	req := provider.LastRequest()
	var sawAssistant, sawToolReply bool
	for _, msg := range req.Messages {
		if msg.Role == "assistant" && len(msg.ToolCalls) == 1 {
			sawAssistant = true
		}
		if msg.Role == "tool" && msg.ToolCallID == "t1" {
			sawToolReply = true
			if !strings.HasPrefix(msg.Content, "Error:") {
				t.Errorf("missing tool should produce an error reply, got %q", msg.Content)
			}
		}
	}
	if !sawAssistant || !sawToolReply {
		t.Errorf("tool exchange missing from follow-up request: assistant=%v tool=%v",
			sawAssistant, sawToolReply)
	}

	// The failure must land in the operational event log.
	if !log.HasRecentErrors() {
		t.Error("expected tool failure in the event log")
	}
}

func TestChatPropagatesProviderError(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, context.DeadlineExceeded
	}

	u := New("planner", provider)
	_, err := u.Chat(context.Background(), []llm.Message{{Role: "user", Content: "go"}})
	if err == nil {
		t.Fatal("expected provider error to propagate")
	}
	if !strings.Contains(err.Error(), "planner") {
		t.Errorf("error does not identify the unit: %v", err)
	}
}

func TestToollessUnitTeachesEmptyManifest(t *testing.T) {
	u := New("planner", llm.NewMockProvider())
	if u.HasTools() {
		t.Error("toolless unit reports tools")
	}

	contracts := u.Teach()
	if len(contracts) != 1 {
		t.Fatalf("expected 1 contract, got %d", len(contracts))
	}
	if contracts[0].UnitID() != "planner" {
		t.Errorf("contract unit = %q", contracts[0].UnitID())
	}
	if len(contracts[0].Names()) != 0 {
		t.Errorf("empty manifest offers capabilities: %v", contracts[0].Names())
	}
}

func TestParallelToolCallsKeepOrder(t *testing.T) {
	callCount := 0
	provider := llm.NewMockProvider()
	provider.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		callCount++
		if callCount == 1 {
			return &llm.ChatResponse{ToolCalls: []llm.ToolCallResponse{
				{ID: "a", Name: "tool_a", Args: map[string]interface{}{}},
				{ID: "b", Name: "tool_b", Args: map[string]interface{}{}},
				{ID: "c", Name: "tool_c", Args: map[string]interface{}{}},
			}}, nil
		}
		return &llm.ChatResponse{Content: "ok"}, nil
	}

	u := New("worker", provider)
	if _, err := u.Chat(context.Background(), []llm.Message{{Role: "user", Content: "go"}}); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	req := provider.LastRequest()
	var toolIDs []string
	for _, msg := range req.Messages {
		if msg.Role == "tool" {
			toolIDs = append(toolIDs, msg.ToolCallID)
		}
	}
	want := []string{"a", "b", "c"}
	if len(toolIDs) != len(want) {
		t.Fatalf("expected %d tool replies, got %d", len(want), len(toolIDs))
	}
	for i := range want {
		if toolIDs[i] != want[i] {
			t.Errorf("tool reply %d = %s, want %s", i, toolIDs[i], want[i])
		}
	}
}

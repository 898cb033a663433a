package unit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vinayprograms/agentkit/llm"

	"github.com/vinayprograms/mission/internal/events"
)

// toolOutcome holds the result of one parallel tool execution.
type toolOutcome struct {
	index   int
	id      string
	content string
}

// executeToolCalls runs the requested tools and returns their reply messages
// in request order. Multiple calls run concurrently up to concurrencyLimit.
func (u *Unit) executeToolCalls(ctx context.Context, toolCalls []llm.ToolCallResponse) []llm.Message {
	if len(toolCalls) == 0 {
		return nil
	}

	if len(toolCalls) == 1 {
		out := u.runTool(ctx, 0, toolCalls[0])
		return []llm.Message{{Role: "tool", ToolCallID: out.id, Content: out.content}}
	}

	sem := make(chan struct{}, concurrencyLimit)
	results := make(chan toolOutcome, len(toolCalls))
	var wg sync.WaitGroup

	for i, tc := range toolCalls {
		wg.Add(1)
		go func(idx int, tc llm.ToolCallResponse) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results <- u.runTool(ctx, idx, tc)
		}(i, tc)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	messages := make([]llm.Message, len(toolCalls))
	for out := range results {
		messages[out.index] = llm.Message{
			Role:       "tool",
			ToolCallID: out.id,
			Content:    out.content,
		}
	}
	return messages
}

// runTool executes one call, records the outcome, and renders the content
// the provider sees.
func (u *Unit) runTool(ctx context.Context, idx int, tc llm.ToolCallResponse) toolOutcome {
	start := time.Now()
	result, err := u.executeTool(ctx, tc)
	duration := time.Since(start)

	u.logger.ToolResult(tc.Name, duration, err)
	if u.events != nil {
		if err != nil {
			u.events.Add(events.KindToolError, fmt.Sprintf("%s failed: %v", tc.Name, err))
		} else {
			u.events.Add(events.KindToolResult, fmt.Sprintf("%s completed", tc.Name))
		}
	}

	var content string
	if err != nil {
		content = fmt.Sprintf("Error: %v", err)
	} else {
		switch v := result.(type) {
		case string:
			content = v
		default:
			data, _ := json.Marshal(v)
			content = string(data)
		}
	}
	return toolOutcome{index: idx, id: tc.ID, content: content}
}

package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentrelay/core"
)

// MockModel is a lightweight in-memory ChatModel useful for tests, examples
// and offline development. It supports two modes that may be combined:
//
//   - a scripted turn queue (Enqueue* methods) consumed first, in order,
//     which is how suspend/resume flows are exercised deterministically
//   - canned completions keyed by the last user/tool message text
//     (AddResponse), used when the script is exhausted
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	script    []scriptedTurn
}

type scriptedTurn struct {
	resp Response
	err  error
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      "mock",
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input text.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// EnqueueText schedules a final text response for the next Generate call.
func (m *MockModel) EnqueueText(text string) {
	m.enqueue(scriptedTurn{resp: Response{
		Message:      core.NewAssistantMessage(text),
		FinishReason: "stop",
		Usage:        &core.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}})
}

// EnqueueToolCalls schedules a tool-call response for the next Generate call.
func (m *MockModel) EnqueueToolCalls(calls ...core.ToolCall) {
	m.enqueue(scriptedTurn{resp: Response{
		Message:      core.NewToolCallMessage(calls),
		FinishReason: "tool_calls",
	}})
}

// EnqueueError schedules a failure for the next Generate call. Wrap the error
// in *core.TransientProviderError to exercise the retry path.
func (m *MockModel) EnqueueError(err error) {
	m.enqueue(scriptedTurn{err: err})
}

func (m *MockModel) enqueue(t scriptedTurn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, t)
}

// Remaining returns how many scripted turns are left unconsumed.
func (m *MockModel) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.script)
}

// Generate implements ChatModel. Scripted turns are served first; otherwise
// the canned completion for the last message text is emitted (optionally as
// character-level partial chunks when req.Stream is set).
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	var turn *scriptedTurn
	if len(m.script) > 0 {
		t := m.script[0]
		m.script = m.script[1:]
		turn = &t
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if turn != nil {
			if turn.err != nil {
				errCh <- turn.err
				return
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
			case respCh <- turn.resp:
			}
			return
		}

		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}

		inputText := req.Messages[len(req.Messages)-1].Text()
		full := m.lookup(inputText)
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", inputText)
		}

		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Message: core.NewAssistantMessage(string(r)),
				}:
				}
			}
		}

		respCh <- Response{
			Message:      core.NewAssistantMessage(full),
			FinishReason: "stop",
			Usage:        &core.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		}
	}()

	return respCh, errCh
}

func (m *MockModel) lookup(prompt string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.responses[prompt]
}

// Info implements ChatModel.
func (m *MockModel) Info() Info { return m.info }

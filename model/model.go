package model

import (
	"context"

	"github.com/hupe1980/agentrelay/core"
)

// ToolDefinition declaratively exposes a callable tool to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual tool exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset
// expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by the engine: the
// windowed transcript, the tool schemas of the registry and the streaming
// preference.
type Request struct {
	Instructions string           `json:"instructions"` // System prompt, may be empty
	Messages     []core.Message   `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// Response is a (partial or final) chunk emitted by a model stream. Partial
// chunks carry incremental text deltas; the single final chunk carries the
// complete assistant message (text or tool-call block), the finish reason
// and usage accounting.
type Response struct {
	ID           string           `json:"id"`
	Partial      bool             `json:"partial"`
	Message      core.Message     `json:"message"`
	FinishReason string           `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *core.TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// ChatModel is the minimal capability required by the engine to drive
// generation. Generate returns a lazy, finite, non-restartable sequence of
// Response chunks plus a terminal error channel (buffered size 1); both
// channels are closed when the stream ends or the context is cancelled.
//
// Retryable failures must be wrapped in *core.TransientProviderError so the
// Invoker can distinguish them from fatal ones (auth, malformed schema).
type ChatModel interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

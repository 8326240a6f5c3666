package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a transcript message.
type Role string

const (
	// RoleSystem marks instruction messages injected by the host application.
	RoleSystem Role = "system"
	// RoleUser marks end-user input messages.
	RoleUser Role = "user"
	// RoleAssistant marks model-authored messages (text or tool calls).
	RoleAssistant Role = "assistant"
	// RoleTool marks tool-result messages produced by reconciling host results.
	RoleTool Role = "tool"
)

// Block represents the single polymorphic content payload of a Message.
// Concrete block types implement the unexported isBlock marker enabling a
// closed set; no runtime type inspection beyond these named variants.
type Block interface{ isBlock() }

// TextBlock is a plain text content payload.
type TextBlock struct {
	Text     string         // Plain UTF-8 text
	Metadata map[string]any // Optional producer-provided metadata
}

func (TextBlock) isBlock() {}

// ReasoningBlock carries model reasoning/thinking output kept separate from
// user-visible text so transcripts can persist it without surfacing it.
type ReasoningBlock struct {
	Text string
}

func (ReasoningBlock) isBlock() {}

// ToolCallBlock holds the full batch of tool calls emitted by one assistant
// turn. A turn with k calls produces exactly one assistant message carrying
// this block, never k messages.
type ToolCallBlock struct {
	Calls []ToolCall
}

func (ToolCallBlock) isBlock() {}

// ToolResultBlock carries the outcome of a single tool call. CallID must
// reference a ToolCall emitted by a preceding tool-call message in the same
// turn. IsError is ordinary content visible to the model, not a transport
// failure.
type ToolResultBlock struct {
	CallID  string
	Name    string
	Output  string // JSON document or plain text returned by the host
	IsError bool
}

func (ToolResultBlock) isBlock() {}

// FileBlock is a file attachment payload, either inlined (base64) or
// referenced by URI.
type FileBlock struct {
	Name     string
	MimeType string
	Bytes    string // Base64 encoded contents (if inlined)
	URI      string // External retrieval URI (if not inlined)
}

func (FileBlock) isBlock() {}

// Message is one entry of the append-only conversation transcript: a role,
// exactly one content block and a sequence position assigned by the
// controller at append time.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Block     Block     `json:"block"`
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a bare message with a fresh id and UTC timestamp.
// Prefer the role-specific constructors for common shapes.
func NewMessage(role Role, block Block) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Block:     block,
		Timestamp: time.Now().UTC(),
	}
}

// NewSystemMessage creates an instruction message.
func NewSystemMessage(text string) Message {
	return NewMessage(RoleSystem, TextBlock{Text: text})
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, TextBlock{Text: text})
}

// NewAssistantMessage creates a model-authored final text message.
func NewAssistantMessage(text string) Message {
	return NewMessage(RoleAssistant, TextBlock{Text: text})
}

// NewToolCallMessage creates the single assistant message carrying all tool
// calls of one turn.
func NewToolCallMessage(calls []ToolCall) Message {
	return NewMessage(RoleAssistant, ToolCallBlock{Calls: calls})
}

// NewToolResultMessage records the outcome of one previously dispatched call.
func NewToolResultMessage(callID, name, output string, isError bool) Message {
	return NewMessage(RoleTool, ToolResultBlock{
		CallID:  callID,
		Name:    name,
		Output:  output,
		IsError: isError,
	})
}

// NewID generates a unique identifier for messages, turns and sessions.
func NewID() string { return uuid.NewString() }

// Text returns the textual payload for text and reasoning blocks, or the
// empty string for other block kinds.
func (m Message) Text() string {
	switch b := m.Block.(type) {
	case TextBlock:
		return b.Text
	case ReasoningBlock:
		return b.Text
	default:
		return ""
	}
}

// ToolCalls returns the calls carried by a tool-call block preserving their
// original order, or nil for any other block kind.
func (m Message) ToolCalls() []ToolCall {
	if b, ok := m.Block.(ToolCallBlock); ok {
		return b.Calls
	}
	return nil
}

// ToolResult returns the tool-result payload if the message carries one.
func (m Message) ToolResult() (ToolResultBlock, bool) {
	b, ok := m.Block.(ToolResultBlock)
	return b, ok
}

// IsToolExchange reports whether the message belongs to a tool-call /
// tool-result pair. Windowing policies must never separate these from each
// other (providers reject orphaned pairs).
func (m Message) IsToolExchange() bool {
	switch m.Block.(type) {
	case ToolCallBlock, ToolResultBlock:
		return true
	default:
		return false
	}
}

// Preview returns a short single-line rendering used in log output.
func (m Message) Preview(max int) string {
	text := m.Text()
	if text == "" {
		switch b := m.Block.(type) {
		case ToolCallBlock:
			names := make([]string, len(b.Calls))
			for i, c := range b.Calls {
				names[i] = c.Name
			}
			text = "tool calls: " + strings.Join(names, ", ")
		case ToolResultBlock:
			text = "tool result: " + b.CallID
		case FileBlock:
			text = "file: " + b.Name
		}
	}
	if max > 0 && len(text) > max {
		text = text[:max] + "..."
	}
	return text
}

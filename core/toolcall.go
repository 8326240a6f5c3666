package core

import "time"

// ToolCall describes a tool invocation request surfaced by a model provider.
// Unified across vendors so downstream logic does not need per-provider
// branching. RawArgs preserves the exact argument string as emitted by the
// provider; Args holds the parsed object once the dispatcher has validated it.
type ToolCall struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Args    map[string]any `json:"args,omitempty"`
	RawArgs string         `json:"raw_args,omitempty"`
}

// PendingStatus tracks the lifecycle of a dispatched tool call while the
// conversation is suspended.
type PendingStatus int

const (
	// StatusDispatched means the call was handed to the host and no result
	// has been reconciled yet.
	StatusDispatched PendingStatus = iota
	// StatusResolved means a host result was accepted for the call.
	StatusResolved
	// StatusTimedOut means the call aged past the resume timeout and was
	// force-resolved with a synthetic error result.
	StatusTimedOut
	// StatusErrored means the host reported the call as failed (isError).
	StatusErrored
)

// String returns the wire label for the status.
func (s PendingStatus) String() string {
	switch s {
	case StatusDispatched:
		return "dispatched"
	case StatusResolved:
		return "resolved"
	case StatusTimedOut:
		return "timed_out"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// PendingToolCall is a dispatched ToolCall awaiting its host result.
type PendingToolCall struct {
	Call         ToolCall      `json:"call"`
	DispatchedAt time.Time     `json:"dispatched_at"`
	Status       PendingStatus `json:"status"`
}

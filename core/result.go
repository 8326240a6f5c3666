package core

// TokenUsage captures token accounting reported by the model provider.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ResultKind discriminates the two variants of ExecutionResult.
type ResultKind int

const (
	// ResultFinal means the model produced a final answer and the turn loop
	// has terminated.
	ResultFinal ResultKind = iota
	// ResultSuspended means the turn is handed to the host: execute the
	// actions, then call Resume with the matching turn id.
	ResultSuspended
)

// String returns the wire label for the result kind.
func (k ResultKind) String() string {
	if k == ResultSuspended {
		return "suspended"
	}
	return "final"
}

// ExecutionResult is the tagged union returned by Run and Resume:
// Final(text, usage, finishReason) or Suspended(turnID, actions).
type ExecutionResult struct {
	Kind         ResultKind      `json:"kind"`
	Text         string          `json:"text,omitempty"`
	FinishReason string          `json:"finish_reason,omitempty"`
	Usage        *TokenUsage     `json:"usage,omitempty"`
	TurnID       string          `json:"turn_id,omitempty"`
	Actions      []ActionRequest `json:"actions,omitempty"`
}

// NewFinalResult constructs the Final variant.
func NewFinalResult(text, finishReason string, usage *TokenUsage) ExecutionResult {
	return ExecutionResult{
		Kind:         ResultFinal,
		Text:         text,
		FinishReason: finishReason,
		Usage:        usage,
	}
}

// NewSuspendedResult constructs the Suspended variant.
func NewSuspendedResult(turnID string, actions []ActionRequest) ExecutionResult {
	return ExecutionResult{
		Kind:    ResultSuspended,
		TurnID:  turnID,
		Actions: actions,
	}
}

// Suspended reports whether the result requires a host round trip.
func (r ExecutionResult) Suspended() bool { return r.Kind == ResultSuspended }

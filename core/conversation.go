package core

import "time"

// Phase is the state-machine position of a conversation within one logical
// run: Idle → AwaitingModel → {final | AwaitingToolResults → AwaitingModel →
// ...} until final, Aborted or Cancelled. Aborted and Cancelled are terminal
// for the whole conversation; a final answer returns the phase to Idle so the
// next Run can start.
type Phase int

const (
	// PhaseIdle means no run is in progress; the state is safely persistable.
	PhaseIdle Phase = iota
	// PhaseAwaitingModel means a model invocation is about to be (or being)
	// committed for the current turn.
	PhaseAwaitingModel
	// PhaseAwaitingToolResults means the turn is suspended: an action batch
	// was handed to the host and Resume has not reconciled it yet.
	PhaseAwaitingToolResults
	// PhaseAborted means the turn budget was exceeded; terminal.
	PhaseAborted
	// PhaseCancelled means cooperative cancellation ended the run; the
	// transcript is retained for audit but the conversation is not resumable.
	PhaseCancelled
)

// String returns the wire label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingModel:
		return "awaiting_model"
	case PhaseAwaitingToolResults:
		return "awaiting_tool_results"
	case PhaseAborted:
		return "aborted"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ConversationState aggregates everything the controller tracks for one
// session: the append-only transcript (working copy of what the memory store
// holds), the pending tool calls of the current suspended turn, the turn
// budget and the terminal flag.
//
// The state is exclusively owned by the controller for the duration of one
// Run/Resume call and is mutated only after the corresponding memory append
// succeeded, so an in-memory view never runs ahead of persisted history.
type ConversationState struct {
	SessionKey string
	Phase      Phase
	Messages   []Message
	TurnID     string                      // Current suspended turn id, "" otherwise
	Pending    map[string]*PendingToolCall // Keyed by correlation id
	CallOrder  []string                    // Correlation ids in original call order
	Limiter    *TurnLimiter
	Terminal   bool
	TermErr    error // The terminal error, replayed on later Run/Resume calls
	Updated    time.Time
}

// NewConversationState creates a state seeded with previously persisted
// messages (may be empty for a fresh session).
func NewConversationState(sessionKey string, history []Message) *ConversationState {
	return &ConversationState{
		SessionKey: sessionKey,
		Phase:      PhaseIdle,
		Messages:   history,
		Updated:    time.Now().UTC(),
	}
}

// NextSeq returns the sequence position for the next appended message.
func (s *ConversationState) NextSeq() int { return len(s.Messages) }

// Append adds already-persisted messages to the working transcript.
func (s *ConversationState) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
	s.Updated = time.Now().UTC()
}

// BeginSuspend registers the pending call set for a freshly dispatched turn
// and moves the phase to AwaitingToolResults.
func (s *ConversationState) BeginSuspend(turnID string, pending []PendingToolCall) {
	s.TurnID = turnID
	s.Pending = make(map[string]*PendingToolCall, len(pending))
	s.CallOrder = make([]string, 0, len(pending))
	for i := range pending {
		p := pending[i]
		s.Pending[p.Call.ID] = &p
		s.CallOrder = append(s.CallOrder, p.Call.ID)
	}
	s.Phase = PhaseAwaitingToolResults
	s.Updated = time.Now().UTC()
}

// ClearTurn drops the pending bookkeeping after a turn was fully reconciled
// and moves the phase back to AwaitingModel for the next loop iteration.
func (s *ConversationState) ClearTurn() {
	s.TurnID = ""
	s.Pending = nil
	s.CallOrder = nil
	s.Phase = PhaseAwaitingModel
	s.Updated = time.Now().UTC()
}

// MarkTerminal moves the conversation into a terminal phase, recording the
// error replayed on any later Run/Resume attempt.
func (s *ConversationState) MarkTerminal(phase Phase, err error) {
	s.Phase = phase
	s.Terminal = true
	s.TermErr = err
	s.Updated = time.Now().UTC()
}

// Suspended reports whether a turn is currently awaiting host results.
func (s *ConversationState) Suspended() bool {
	return s.Phase == PhaseAwaitingToolResults && s.TurnID != ""
}

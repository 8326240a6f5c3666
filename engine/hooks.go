package engine

import "github.com/hupe1980/agentrelay/core"

// Hooks are optional observation callbacks fired at the engine's lifecycle
// edges. They are injected per Engine instance at construction, never
// registered globally, and must not block: the engine calls them inline on
// the session's serialized execution path.
//
// Hooks observe; they cannot veto or alter the operation.
type Hooks struct {
	// OnModelCall fires immediately before each model invocation.
	OnModelCall func(sessionKey string, turn int)
	// OnSuspend fires after a turn suspended with an action batch.
	OnSuspend func(sessionKey, turnID string, actions []core.ActionRequest)
	// OnResume fires after a resume batch was reconciled into the transcript.
	OnResume func(sessionKey, turnID string, resolved, unresolved int)
	// OnFinal fires when a run completes with a final answer.
	OnFinal func(sessionKey string, result core.ExecutionResult)
}

func (h Hooks) modelCall(sessionKey string, turn int) {
	if h.OnModelCall != nil {
		h.OnModelCall(sessionKey, turn)
	}
}

func (h Hooks) suspend(sessionKey, turnID string, actions []core.ActionRequest) {
	if h.OnSuspend != nil {
		h.OnSuspend(sessionKey, turnID, actions)
	}
}

func (h Hooks) resume(sessionKey, turnID string, resolved, unresolved int) {
	if h.OnResume != nil {
		h.OnResume(sessionKey, turnID, resolved, unresolved)
	}
}

func (h Hooks) final(sessionKey string, result core.ExecutionResult) {
	if h.OnFinal != nil {
		h.OnFinal(sessionKey, result)
	}
}

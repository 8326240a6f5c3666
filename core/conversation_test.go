package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationState_SuspendAndClear(t *testing.T) {
	state := NewConversationState("s1", nil)
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.False(t, state.Suspended())

	pending := []PendingToolCall{
		{Call: ToolCall{ID: "c1", Name: "a"}, DispatchedAt: time.Now(), Status: StatusDispatched},
		{Call: ToolCall{ID: "c2", Name: "b"}, DispatchedAt: time.Now(), Status: StatusDispatched},
	}

	state.BeginSuspend("t1", pending)

	require.True(t, state.Suspended())
	assert.Equal(t, "t1", state.TurnID)
	assert.Equal(t, []string{"c1", "c2"}, state.CallOrder)
	assert.Len(t, state.Pending, 2)

	state.ClearTurn()

	assert.False(t, state.Suspended())
	assert.Empty(t, state.TurnID)
	assert.Nil(t, state.Pending)
	assert.Equal(t, PhaseAwaitingModel, state.Phase)
}

func TestConversationState_AppendAssignsNextSeq(t *testing.T) {
	state := NewConversationState("s1", []Message{NewUserMessage("hi")})

	assert.Equal(t, 1, state.NextSeq())

	state.Append(NewAssistantMessage("hello"))
	assert.Equal(t, 2, state.NextSeq())
	assert.Len(t, state.Messages, 2)
}

func TestConversationState_MarkTerminal(t *testing.T) {
	state := NewConversationState("s1", nil)
	cause := errors.New("budget exceeded")

	state.MarkTerminal(PhaseAborted, cause)

	assert.True(t, state.Terminal)
	assert.Equal(t, PhaseAborted, state.Phase)
	assert.Equal(t, cause, state.TermErr)
}

func TestTurnLimiter(t *testing.T) {
	limiter := NewTurnLimiter(2)

	require.NoError(t, limiter.Increment())
	require.NoError(t, limiter.Increment())
	assert.Equal(t, 0, limiter.Remaining())

	err := limiter.Increment()
	var tooMany *TooManyIterationsError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, 2, tooMany.Limit)
}

func TestTurnLimiter_Unlimited(t *testing.T) {
	limiter := NewTurnLimiter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Increment())
	}
	assert.Equal(t, -1, limiter.Remaining())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "awaiting_tool_results", PhaseAwaitingToolResults.String())
	assert.Equal(t, "cancelled", PhaseCancelled.String())
}

package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

func transcript() []core.Message {
	return []core.Message{
		core.NewSystemMessage("you are helpful"),
		core.NewUserMessage("look something up"),
		core.NewToolCallMessage([]core.ToolCall{{ID: "c1", Name: "lookup"}}),
		core.NewToolResultMessage("c1", "lookup", "found", false),
		core.NewAssistantMessage("here it is"),
		core.NewUserMessage("thanks"),
		core.NewAssistantMessage("welcome"),
	}
}

// pairIntact verifies no window output exposes a tool result without its
// preceding tool-call message.
func pairIntact(t *testing.T, msgs []core.Message) {
	t.Helper()
	calls := map[string]bool{}
	for _, m := range msgs {
		for _, c := range m.ToolCalls() {
			calls[c.ID] = true
		}
		if res, ok := m.ToolResult(); ok {
			assert.True(t, calls[res.CallID], "orphaned tool result %s", res.CallID)
		}
	}
}

func TestFullBuffer(t *testing.T) {
	msgs := transcript()
	assert.Equal(t, msgs, FullBuffer{}.Apply(msgs))
}

func TestLastKWindow_KeepsSystemAndRecentUnits(t *testing.T) {
	w := &LastKWindow{K: 2}

	out := w.Apply(transcript())

	// system + last two units (user "thanks", assistant "welcome")
	require.Len(t, out, 3)
	assert.Equal(t, core.RoleSystem, out[0].Role)
	assert.Equal(t, "thanks", out[1].Text())
	assert.Equal(t, "welcome", out[2].Text())
	pairIntact(t, out)
}

func TestLastKWindow_ToolExchangeIsOneUnit(t *testing.T) {
	w := &LastKWindow{K: 4}

	out := w.Apply(transcript())

	// Units kept: tool exchange (2 msgs), "here it is", "thanks", "welcome".
	require.Len(t, out, 6)
	assert.NotEmpty(t, out[1].ToolCalls())
	_, isResult := out[2].ToolResult()
	assert.True(t, isResult)
	pairIntact(t, out)
}

func TestLastKWindow_ZeroKeepsEverything(t *testing.T) {
	msgs := transcript()
	assert.Equal(t, msgs, (&LastKWindow{}).Apply(msgs))
}

func TestTokenBudgetWindow_TrimsOldUnitsFirst(t *testing.T) {
	w, err := NewTokenBudgetWindow(12)
	require.NoError(t, err)

	out := w.Apply(transcript())

	require.NotEmpty(t, out)
	assert.Equal(t, core.RoleSystem, out[0].Role)
	// The newest unit always survives.
	assert.Equal(t, "welcome", out[len(out)-1].Text())
	assert.Less(t, len(out), len(transcript()))
	pairIntact(t, out)
}

func TestTokenBudgetWindow_LargeBudgetKeepsAll(t *testing.T) {
	w, err := NewTokenBudgetWindow(100000)
	require.NoError(t, err)

	out := w.Apply(transcript())
	assert.Len(t, out, len(transcript()))
	pairIntact(t, out)
}

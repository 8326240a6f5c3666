package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewToolCallMessage_CarriesWholeBatch(t *testing.T) {
	calls := []ToolCall{
		{ID: "c1", Name: "lookup"},
		{ID: "c2", Name: "post"},
	}

	msg := NewToolCallMessage(calls)

	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Len(t, msg.ToolCalls(), 2)
	assert.Equal(t, "c1", msg.ToolCalls()[0].ID)
	assert.Equal(t, "c2", msg.ToolCalls()[1].ID)
	assert.NotEmpty(t, msg.ID)
}

func TestMessage_Text(t *testing.T) {
	assert.Equal(t, "hello", NewUserMessage("hello").Text())
	assert.Equal(t, "thinking", NewMessage(RoleAssistant, ReasoningBlock{Text: "thinking"}).Text())
	assert.Empty(t, NewToolCallMessage([]ToolCall{{ID: "c1", Name: "x"}}).Text())
}

func TestMessage_ToolResult(t *testing.T) {
	msg := NewToolResultMessage("c1", "lookup", `{"v":1}`, false)

	res, ok := msg.ToolResult()
	assert.True(t, ok)
	assert.Equal(t, RoleTool, msg.Role)
	assert.Equal(t, "c1", res.CallID)
	assert.Equal(t, "lookup", res.Name)
	assert.False(t, res.IsError)

	_, ok = NewUserMessage("hi").ToolResult()
	assert.False(t, ok)
}

func TestMessage_IsToolExchange(t *testing.T) {
	assert.True(t, NewToolCallMessage([]ToolCall{{ID: "c1", Name: "x"}}).IsToolExchange())
	assert.True(t, NewToolResultMessage("c1", "x", "ok", false).IsToolExchange())
	assert.False(t, NewUserMessage("hi").IsToolExchange())
	assert.False(t, NewAssistantMessage("done").IsToolExchange())
}

func TestMessage_Preview(t *testing.T) {
	assert.Equal(t, "hel...", NewUserMessage("hello world").Preview(3))
	assert.Equal(t, "tool calls: a, b", NewToolCallMessage([]ToolCall{
		{ID: "1", Name: "a"},
		{ID: "2", Name: "b"},
	}).Preview(0))
}

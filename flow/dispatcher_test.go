package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/tool"
)

func newTestRegistry(t *testing.T) *tool.StaticRegistry {
	t.Helper()
	return tool.MustStaticRegistry(
		tool.Descriptor{
			Name:        "lookup",
			Description: "Look up a record",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"key": map[string]any{"type": "string"},
				},
				"required": []string{"key"},
			},
		},
		tool.Descriptor{Name: "noop", Description: "Takes no arguments"},
	)
}

func TestDispatcher_BuildsCorrelatedBatch(t *testing.T) {
	d := NewDispatcher(newTestRegistry(t))

	requests, pending, err := d.Dispatch("t1", []core.ToolCall{
		{ID: "c1", Name: "lookup", RawArgs: `{"key":"a"}`},
		{ID: "c2", Name: "lookup", RawArgs: `{"key":"b"}`},
	})

	require.NoError(t, err)
	require.Len(t, requests, 2)
	require.Len(t, pending, 2)

	assert.Equal(t, "c1", requests[0].ID)
	assert.Equal(t, "lookup", requests[0].ToolName)
	assert.JSONEq(t, `{"key":"a"}`, string(requests[0].Input))

	assert.Equal(t, requests[1].ID, pending[1].Call.ID)
	assert.Equal(t, core.StatusDispatched, pending[0].Status)
	assert.False(t, pending[0].DispatchedAt.IsZero())
}

func TestDispatcher_UnknownToolAbortsWholeBatch(t *testing.T) {
	d := NewDispatcher(newTestRegistry(t))

	requests, pending, err := d.Dispatch("t1", []core.ToolCall{
		{ID: "c1", Name: "lookup", RawArgs: `{"key":"a"}`},
		{ID: "c2", Name: "nonexistent"},
	})

	var unknown *core.UnknownToolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nonexistent", unknown.Name)
	assert.Nil(t, requests)
	assert.Nil(t, pending)
}

func TestDispatcher_MintsMissingAndDuplicateIDs(t *testing.T) {
	d := NewDispatcher(newTestRegistry(t))

	requests, _, err := d.Dispatch("t1", []core.ToolCall{
		{ID: "", Name: "noop"},
		{ID: "dup", Name: "noop"},
		{ID: "dup", Name: "noop"},
	})

	require.NoError(t, err)
	assert.Equal(t, "t1:call-1", requests[0].ID)
	assert.Equal(t, "dup", requests[1].ID)
	assert.Equal(t, "t1:call-2", requests[2].ID)
}

func TestDispatcher_EmptyArgsBecomeEmptyObject(t *testing.T) {
	d := NewDispatcher(newTestRegistry(t))

	requests, pending, err := d.Dispatch("t1", []core.ToolCall{{ID: "c1", Name: "noop"}})

	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(requests[0].Input))
	assert.NotNil(t, pending[0].Call.Args)
}

func TestDispatcher_MalformedArgsRejected(t *testing.T) {
	d := NewDispatcher(newTestRegistry(t))

	_, _, err := d.Dispatch("t1", []core.ToolCall{
		{ID: "c1", Name: "noop", RawArgs: `not json`},
	})

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDispatcher_SchemaValidation(t *testing.T) {
	d := NewDispatcher(newTestRegistry(t))

	_, _, err := d.Dispatch("t1", []core.ToolCall{
		{ID: "c1", Name: "lookup", RawArgs: `{}`},
	})

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "lookup", verr.Field)
}

func TestDispatcher_EmptyBatchRejected(t *testing.T) {
	d := NewDispatcher(newTestRegistry(t))

	_, _, err := d.Dispatch("t1", nil)

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
}

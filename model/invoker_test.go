package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

func fastRetry(o *InvokerOptions) {
	o.Retry = RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestInvoker_FinalText(t *testing.T) {
	m := NewMockModel("test")
	m.EnqueueText("hello")

	res, err := NewInvoker(m).Invoke(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})

	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)
	assert.Empty(t, res.ToolCalls)
	assert.Equal(t, "stop", res.FinishReason)
	require.NotNil(t, res.Usage)
	assert.Equal(t, 15, res.Usage.TotalTokens)
}

func TestInvoker_ToolCalls(t *testing.T) {
	m := NewMockModel("test")
	m.EnqueueToolCalls(
		core.ToolCall{ID: "c1", Name: "lookup", RawArgs: `{"key":"a"}`},
		core.ToolCall{ID: "c2", Name: "lookup", RawArgs: `{"key":"b"}`},
	)

	res, err := NewInvoker(m).Invoke(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})

	require.NoError(t, err)
	require.Len(t, res.ToolCalls, 2)
	assert.Equal(t, "c1", res.ToolCalls[0].ID)
	assert.Equal(t, "tool_calls", res.FinishReason)
}

func TestInvoker_RetriesTransientErrors(t *testing.T) {
	m := NewMockModel("test")
	m.EnqueueError(&core.TransientProviderError{Err: errors.New("rate limited")})
	m.EnqueueError(&core.TransientProviderError{Err: errors.New("rate limited")})
	m.EnqueueText("recovered")

	res, err := NewInvoker(m, fastRetry).Invoke(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})

	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Text)
	assert.Zero(t, m.Remaining())
}

func TestInvoker_ExhaustedRetries(t *testing.T) {
	m := NewMockModel("test")
	for i := 0; i < 5; i++ {
		m.EnqueueError(&core.TransientProviderError{Err: errors.New("overloaded")})
	}

	_, err := NewInvoker(m, fastRetry).Invoke(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})

	var invErr *core.ModelInvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, 4, invErr.Attempts)
}

func TestInvoker_NonRetryableFailsImmediately(t *testing.T) {
	m := NewMockModel("test")
	m.EnqueueError(errors.New("invalid api key"))
	m.EnqueueText("never reached")

	_, err := NewInvoker(m, fastRetry).Invoke(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})

	var invErr *core.ModelInvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, 1, invErr.Attempts)
	assert.Equal(t, 1, m.Remaining())
}

func TestInvoker_StreamAggregation(t *testing.T) {
	m := NewMockModel("test")
	m.AddResponse("hi", "streamed answer")

	res, err := NewInvoker(m).Invoke(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
		Stream:   true,
	})

	require.NoError(t, err)
	assert.Equal(t, "streamed answer", res.Text)
}

// stuckModel never produces output, forcing the invoker onto the
// cancellation path.
type stuckModel struct{}

func (stuckModel) Generate(context.Context, Request) (<-chan Response, <-chan error) {
	return make(chan Response), make(chan error)
}

func (stuckModel) Info() Info { return Info{Name: "stuck", Provider: "test"} }

func TestInvoker_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInvoker(stuckModel{}, fastRetry).Invoke(ctx, Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
	})

	var invErr *core.ModelInvocationError
	require.ErrorAs(t, err, &invErr)
	assert.ErrorIs(t, invErr.Err, context.Canceled)
}

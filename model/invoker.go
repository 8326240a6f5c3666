package model

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// RetryPolicy bounds the Invoker's internal retry loop for transient
// provider failures.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the first backoff delay; each retry doubles it.
	BaseDelay time.Duration
	// MaxDelay caps the backoff curve.
	MaxDelay time.Duration
}

// DefaultRetryPolicy retries three times starting at 200ms, capped at 5s.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	BaseDelay:  200 * time.Millisecond,
	MaxDelay:   5 * time.Second,
}

// Result is the aggregated outcome of one model invocation: either final
// text, or one or more tool calls the engine must dispatch to the host.
type Result struct {
	Text         string
	ToolCalls    []core.ToolCall
	FinishReason string
	Usage        *core.TokenUsage
}

// InvokerOptions configure an Invoker.
type InvokerOptions struct {
	Retry  RetryPolicy
	Logger logging.Logger
}

// Invoker drives a ChatModel: it drains the response stream, aggregates
// partial deltas into a Result and retries transient failures. A failed
// invocation never yields a partial Result, so callers can treat the model
// call as atomic.
type Invoker struct {
	model  ChatModel
	retry  RetryPolicy
	logger logging.Logger
}

// NewInvoker wraps a ChatModel with retry and aggregation behavior.
func NewInvoker(m ChatModel, optFns ...func(o *InvokerOptions)) *Invoker {
	opts := InvokerOptions{
		Retry:  DefaultRetryPolicy,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Invoker{model: m, retry: opts.Retry, logger: opts.Logger}
}

// Invoke runs one model call to completion. Transient errors are retried up
// to the policy's MaxRetries with exponential backoff; anything else (and
// exhausted retries) is returned as *core.ModelInvocationError.
func (iv *Invoker) Invoke(ctx context.Context, req Request) (*Result, error) {
	attempts := 0
	for {
		attempts++

		res, err := iv.collect(ctx, req)
		if err == nil {
			return res, nil
		}

		if ctx.Err() != nil {
			return nil, &core.ModelInvocationError{Attempts: attempts, Err: ctx.Err()}
		}

		if !core.IsTransient(err) || attempts > iv.retry.MaxRetries {
			iv.logger.Error("model.invoke.failed",
				"model", iv.model.Info().Name,
				"attempts", attempts,
				"error", err.Error(),
			)
			return nil, &core.ModelInvocationError{Attempts: attempts, Err: err}
		}

		delay := iv.backoff(attempts)
		iv.logger.Warn("model.invoke.retry",
			"model", iv.model.Info().Name,
			"attempt", attempts,
			"delay_ms", delay.Milliseconds(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return nil, &core.ModelInvocationError{Attempts: attempts, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}
}

// backoff computes the delay before retry n (1-based) on an exponential
// curve capped at MaxDelay.
func (iv *Invoker) backoff(attempt int) time.Duration {
	delay := iv.retry.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= iv.retry.MaxDelay {
			return iv.retry.MaxDelay
		}
	}
	if iv.retry.MaxDelay > 0 && delay > iv.retry.MaxDelay {
		delay = iv.retry.MaxDelay
	}
	return delay
}

// collect drains one Generate stream into a Result. Partial text deltas are
// concatenated; the final chunk supplies the authoritative message, finish
// reason and usage.
func (iv *Invoker) collect(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	respCh, errCh := iv.model.Generate(ctx, req)

	var (
		deltas strings.Builder
		final  *Response
	)

	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if resp.Partial {
				deltas.WriteString(resp.Message.Text())
				continue
			}
			r := resp
			final = &r
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return nil, err
			}
		}
	}

	if final == nil {
		return nil, &core.TransientProviderError{Err: errStreamTruncated}
	}

	result := &Result{
		Text:         final.Message.Text(),
		ToolCalls:    final.Message.ToolCalls(),
		FinishReason: final.FinishReason,
		Usage:        final.Usage,
	}
	if result.Text == "" && len(result.ToolCalls) == 0 {
		result.Text = deltas.String()
	}

	iv.logger.Info("model.invoke.complete",
		"model", iv.model.Info().Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"tool_calls", len(result.ToolCalls),
		"finish_reason", result.FinishReason,
	)

	return result, nil
}

// errStreamTruncated marks a stream that closed without a final chunk, which
// is treated as retryable (dropped connection mid-stream).
var errStreamTruncated = &truncatedStreamError{}

type truncatedStreamError struct{}

func (*truncatedStreamError) Error() string { return "model stream ended without a final response" }

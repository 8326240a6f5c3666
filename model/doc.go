// Package model defines the pluggable chat-model capability consumed by the
// orchestration engine and the Invoker that drives it.
//
// ChatModel implementations (see the openai and anthropic subpackages, plus
// the in-memory MockModel) turn a normalized Request into a lazy, finite,
// non-restartable stream of Response chunks. The Invoker aggregates that
// stream into a single Result{Text, ToolCalls, FinishReason, Usage} and
// retries transient provider failures with exponential backoff; non-retryable
// failures and exhausted retries surface as core.ModelInvocationError without
// mutating any persisted state.
package model

package core

import (
	"errors"
	"fmt"
	"strings"
)

// The protocol never silently drops a message: any failure that risks
// transcript corruption fails the whole operation with one of the structured
// error kinds below so the host can inspect and retry.

// ValidationError reports malformed input (bad shapes, missing fields,
// schema-violating tool arguments). The offending call is rejected with no
// state change.
type ValidationError struct {
	Field   string // Offending field or correlation id, if known
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
	}
	return "validation error: " + e.Message
}

// TransientProviderError marks a retryable model provider failure (network,
// rate limit, overload). The invoker retries these internally; exhausted
// retries surface as ModelInvocationError.
type TransientProviderError struct {
	Err error
}

func (e *TransientProviderError) Error() string {
	return "transient provider error: " + e.Err.Error()
}

func (e *TransientProviderError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientProviderError.
func IsTransient(err error) bool {
	var te *TransientProviderError
	return errors.As(err, &te)
}

// ModelInvocationError is a fatal model call failure: either a non-retryable
// provider error or a transient one that exhausted its retries. The turn is
// aborted without mutating persisted state.
type ModelInvocationError struct {
	Attempts int
	Err      error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("model invocation failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ModelInvocationError) Unwrap() error { return e.Err }

// UnknownToolError means a model tool call named a tool absent from the
// registry. Dispatch aborts for the whole turn; no partial batch is emitted.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// UnknownCorrelationError means a resume supplied a result for an id that is
// not pending in the targeted turn. The entire resume fails atomically,
// preventing cross-talk between turns.
type UnknownCorrelationError struct {
	ID string
}

func (e *UnknownCorrelationError) Error() string {
	return fmt.Sprintf("no pending tool call for correlation id %q", e.ID)
}

// DuplicateResultError means a second result arrived for an id that already
// has one. The first result wins and is never silently overwritten.
type DuplicateResultError struct {
	ID string
}

func (e *DuplicateResultError) Error() string {
	return fmt.Sprintf("duplicate result for correlation id %q", e.ID)
}

// StaleTurnError means a resume targeted a turn id that is not the current
// suspended turn (already resolved, superseded, or never issued).
type StaleTurnError struct {
	SessionKey string
	Want       string // Current suspended turn id ("" when none)
	Got        string
}

func (e *StaleTurnError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("session %s has no suspended turn (got turn %q)", e.SessionKey, e.Got)
	}
	return fmt.Sprintf("stale turn %q for session %s (current turn %q)", e.Got, e.SessionKey, e.Want)
}

// ConcurrentResumeError means a second Run/Resume raced an in-flight call on
// the same session. Operations on one session are strictly serialized.
type ConcurrentResumeError struct {
	SessionKey string
}

func (e *ConcurrentResumeError) Error() string {
	return fmt.Sprintf("session %s already has an in-flight operation", e.SessionKey)
}

// TooManyIterationsError means the turn loop exceeded maxTurns. The
// conversation is terminally Aborted.
type TooManyIterationsError struct {
	Limit int
}

func (e *TooManyIterationsError) Error() string {
	return fmt.Sprintf("exceeded maximum of %d turns", e.Limit)
}

// CancelledError means cooperative cancellation terminated the logical run.
// The transcript is retained for audit; the turn is not resumable.
type CancelledError struct {
	SessionKey string
	Err        error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("run cancelled for session %s: %v", e.SessionKey, e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

// MemoryWriteError means a transcript append failed mid-batch and was rolled
// back, preventing a transcript where a user message is stored without its
// paired assistant reply.
type MemoryWriteError struct {
	SessionKey string
	Err        error
}

func (e *MemoryWriteError) Error() string {
	return fmt.Sprintf("memory write failed for session %s: %v", e.SessionKey, e.Err)
}

func (e *MemoryWriteError) Unwrap() error { return e.Err }

// NewMissingResultsError builds the ValidationError used when a resume under
// the reject policy leaves pending calls without results.
func NewMissingResultsError(ids []string) *ValidationError {
	return &ValidationError{
		Field:   strings.Join(ids, ","),
		Message: "resume is missing results for pending tool calls",
	}
}

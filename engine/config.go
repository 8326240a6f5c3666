package engine

import (
	"time"

	"github.com/hupe1980/agentrelay/model"
)

// PartialResumePolicy decides what happens when a Resume supplies results for
// only some of the pending tool calls of a suspended turn.
type PartialResumePolicy int

const (
	// PartialResumeReject fails the resume with a validation error naming the
	// missing correlation ids. The turn stays suspended and can be resumed
	// again with a complete batch. This is the default.
	PartialResumeReject PartialResumePolicy = iota
	// PartialResumeAllowWithTimeout force-resolves pending calls older than
	// ResumeTimeout with a synthetic error result visible to the model.
	// Unresolved calls younger than the timeout still fail the resume.
	PartialResumeAllowWithTimeout
)

// Config defines tuning parameters for the Engine's turn loop.
type Config struct {
	// MaxTurns bounds the number of model invocations per logical run. A run
	// that exceeds it terminates the conversation in the Aborted phase.
	// Set to 0 for unlimited (not recommended).
	MaxTurns int

	// PartialResume selects the handling of incomplete result batches.
	PartialResume PartialResumePolicy

	// ResumeTimeout is the age at which a pending call becomes eligible for
	// synthetic resolution under PartialResumeAllowWithTimeout. Ignored under
	// PartialResumeReject.
	ResumeTimeout time.Duration

	// Retry bounds the model invoker's handling of transient provider errors.
	Retry model.RetryPolicy
}

// DefaultConfig provides conservative defaults: a 25-turn budget, strict
// resume semantics and the invoker's standard retry curve.
var DefaultConfig = Config{
	MaxTurns:      25,
	PartialResume: PartialResumeReject,
	ResumeTimeout: 5 * time.Minute,
	Retry:         model.DefaultRetryPolicy,
}

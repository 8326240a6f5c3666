package flow

import (
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// ResolveOutcome is the result of reconciling one batch of host results
// against a suspended turn's pending calls.
type ResolveOutcome struct {
	// Messages holds tool-result messages in the original call order of the
	// assistant turn, regardless of the arrival order of results. This keeps
	// transcripts deterministic under any host scheduling.
	Messages []core.Message
	// Resolved lists the correlation ids matched by this batch, in call order.
	Resolved []string
	// Unresolved lists pending ids the batch supplied no result for, in call
	// order. The engine's partial-resume policy decides what happens to them.
	Unresolved []string
}

// Matcher reconciles host-supplied ActionResults against the pending call set
// of a suspended turn. Resolve never mutates the pending set; the engine
// commits statuses only after the matching transcript append succeeded, so a
// failed resume leaves no partial state.
type Matcher struct {
	logger logging.Logger
}

// MatcherOptions configure a Matcher.
type MatcherOptions struct {
	Logger logging.Logger
}

// NewMatcher creates a Matcher.
func NewMatcher(optFns ...func(o *MatcherOptions)) *Matcher {
	opts := MatcherOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Matcher{logger: opts.Logger}
}

// Resolve validates and orders one result batch.
//
// Failure modes (all atomic, pending set untouched):
//   - a result id that is not pending → UnknownCorrelationError
//   - two results for the same id in one batch → DuplicateResultError
//   - a result for a call that was already resolved in an earlier batch →
//     DuplicateResultError (first result wins, never silently overwritten)
//
// The isError flag of a result is passed through as ordinary message content
// so the model can see and react to a failed tool call; it is not a
// transport failure.
func (m *Matcher) Resolve(
	order []string,
	pending map[string]*core.PendingToolCall,
	results []core.ActionResult,
) (*ResolveOutcome, error) {
	byID := make(map[string]core.ActionResult, len(results))

	for _, res := range results {
		p, ok := pending[res.ID]
		if !ok {
			return nil, &core.UnknownCorrelationError{ID: res.ID}
		}
		if p.Status != core.StatusDispatched {
			return nil, &core.DuplicateResultError{ID: res.ID}
		}
		if _, dup := byID[res.ID]; dup {
			return nil, &core.DuplicateResultError{ID: res.ID}
		}
		byID[res.ID] = res
	}

	outcome := &ResolveOutcome{}

	for _, id := range order {
		p, ok := pending[id]
		if !ok || p.Status != core.StatusDispatched {
			continue // already settled in an earlier partial batch
		}

		res, ok := byID[id]
		if !ok {
			outcome.Unresolved = append(outcome.Unresolved, id)
			continue
		}

		outcome.Messages = append(outcome.Messages, core.NewToolResultMessage(
			id,
			p.Call.Name,
			res.OutputText(),
			res.IsError,
		))
		outcome.Resolved = append(outcome.Resolved, id)
	}

	m.logger.Debug("matcher.resolve",
		"results", len(results),
		"resolved", len(outcome.Resolved),
		"unresolved", len(outcome.Unresolved),
	)

	return outcome, nil
}

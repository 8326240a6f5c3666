package flow

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/tool"
)

// Dispatcher converts the tool calls of one assistant turn into a batch of
// host-executable ActionRequests plus the pending bookkeeping the engine
// registers before suspending.
//
// Guarantees:
//   - No partial dispatch: an unresolved name or invalid arguments abort the
//     whole batch before anything is handed to the host.
//   - Correlation ids are unique within the turn: the provider id is kept
//     when present and unused, otherwise an id is minted from a monotonic
//     counter scoped to the turn (not all providers guarantee uniqueness).
type Dispatcher struct {
	registry tool.Registry
	logger   logging.Logger
	validate bool
}

// DispatcherOptions configure a Dispatcher.
type DispatcherOptions struct {
	Logger logging.Logger
	// ValidateArgs enables JSON-schema validation of parsed arguments
	// against the resolved descriptor's InputSchema.
	ValidateArgs bool
}

// NewDispatcher creates a Dispatcher resolving against the given registry.
func NewDispatcher(registry tool.Registry, optFns ...func(o *DispatcherOptions)) *Dispatcher {
	opts := DispatcherOptions{
		Logger:       logging.NoOpLogger{},
		ValidateArgs: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Dispatcher{registry: registry, logger: opts.Logger, validate: opts.ValidateArgs}
}

// Dispatch builds the action batch for one turn. The returned pending set
// mirrors the requests one-to-one and carries the dispatch timestamp used by
// the resume timeout policy.
func (d *Dispatcher) Dispatch(turnID string, calls []core.ToolCall) ([]core.ActionRequest, []core.PendingToolCall, error) {
	if len(calls) == 0 {
		return nil, nil, &core.ValidationError{Message: "dispatch requires at least one tool call"}
	}

	now := time.Now().UTC()
	requests := make([]core.ActionRequest, 0, len(calls))
	pending := make([]core.PendingToolCall, 0, len(calls))
	seen := make(map[string]bool, len(calls))
	minted := 0

	for _, call := range calls {
		desc, ok := d.registry.Resolve(call.Name)
		if !ok {
			d.logger.Warn("dispatch.unknown_tool", "turn_id", turnID, "tool", call.Name)
			return nil, nil, &core.UnknownToolError{Name: call.Name}
		}

		args, input, err := parseArgs(call)
		if err != nil {
			return nil, nil, err
		}

		if d.validate && desc.InputSchema != nil {
			if verr := util.ValidateParameters(args, desc.InputSchema); verr != nil {
				return nil, nil, &core.ValidationError{
					Field:   call.Name,
					Message: verr.Error(),
				}
			}
		}

		id := call.ID
		if id == "" || seen[id] {
			minted++
			id = fmt.Sprintf("%s:call-%d", turnID, minted)
		}
		seen[id] = true

		requests = append(requests, core.ActionRequest{
			ID:       id,
			ToolName: call.Name,
			Input:    input,
		})
		pending = append(pending, core.PendingToolCall{
			Call: core.ToolCall{
				ID:      id,
				Name:    call.Name,
				Args:    args,
				RawArgs: call.RawArgs,
			},
			DispatchedAt: now,
			Status:       core.StatusDispatched,
		})
	}

	d.logger.Debug("dispatch.batch",
		"turn_id", turnID,
		"count", len(requests),
		"minted_ids", minted,
	)

	return requests, pending, nil
}

// parseArgs parses the provider's raw argument string into an object and a
// normalized JSON payload for the host. Empty arguments become the empty
// object; anything unparsable fails the batch with ValidationError.
func parseArgs(call core.ToolCall) (map[string]any, json.RawMessage, error) {
	if call.RawArgs == "" {
		return map[string]any{}, json.RawMessage(`{}`), nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(call.RawArgs), &args); err != nil {
		return nil, nil, &core.ValidationError{
			Field:   call.Name,
			Message: fmt.Sprintf("tool arguments are not a JSON object: %v", err),
		}
	}

	return args, json.RawMessage(call.RawArgs), nil
}

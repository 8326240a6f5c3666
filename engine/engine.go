package engine

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/flow"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/memory"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/tool"
)

// Options configures an Engine instance using the functional options pattern.
// All service dependencies have in-process defaults so a bare New(model) is
// immediately usable in tests and examples.
type Options struct {
	// Config contains turn loop tuning parameters. Defaults to DefaultConfig.
	Config Config

	// Memory persists conversation transcripts. Defaults to an in-memory
	// store scoped to the Engine instance.
	Memory memory.Store

	// Registry resolves tool names to descriptors. Defaults to an empty
	// static registry.
	Registry tool.Registry

	// Window selects the history slice sent to the model. Defaults to the
	// full buffer.
	Window memory.WindowPolicy

	// Instructions is the system prompt prepended to every model invocation.
	Instructions string

	// Hooks are optional lifecycle callbacks.
	Hooks Hooks

	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger
}

// Engine is the conversation controller. One Engine serves many sessions;
// each session's operations are serialized, and a second Run or Resume racing
// an in-flight call on the same session fails fast with
// ConcurrentResumeError instead of queueing.
type Engine struct {
	invoker    *model.Invoker
	dispatcher *flow.Dispatcher
	matcher    *flow.Matcher
	memory     memory.Store
	registry   tool.Registry
	window     memory.WindowPolicy

	instructions string
	hooks        Hooks
	cfg          Config
	logger       logging.Logger

	mu    sync.Mutex
	slots map[string]*sessionSlot
}

// sessionSlot is the per-session serialization point. The slot mutex is held
// for the full duration of one Run/Resume call; TryLock turns contention into
// an immediate error rather than a queue.
type sessionSlot struct {
	mu    sync.Mutex
	state *core.ConversationState
}

// New creates an Engine driving the given chat model.
func New(chatModel model.ChatModel, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Memory == nil {
		opts.Memory = memory.NewInMemoryStore()
	}
	if opts.Registry == nil {
		opts.Registry = tool.MustStaticRegistry()
	}
	if opts.Window == nil {
		opts.Window = memory.FullBuffer{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Engine{
		invoker: model.NewInvoker(chatModel, func(o *model.InvokerOptions) {
			o.Retry = opts.Config.Retry
			o.Logger = opts.Logger
		}),
		dispatcher: flow.NewDispatcher(opts.Registry, func(o *flow.DispatcherOptions) {
			o.Logger = opts.Logger
		}),
		matcher: flow.NewMatcher(func(o *flow.MatcherOptions) {
			o.Logger = opts.Logger
		}),
		memory:       opts.Memory,
		registry:     opts.Registry,
		window:       opts.Window,
		instructions: opts.Instructions,
		hooks:        opts.Hooks,
		cfg:          opts.Config,
		logger:       opts.Logger,
		slots:        make(map[string]*sessionSlot),
	}
}

// Run starts a new logical run for the session: the user input is appended to
// the transcript and the turn loop executes until the model answers, requests
// tool calls (Suspended result) or the run terminates with an error.
func (e *Engine) Run(ctx context.Context, sessionKey, input string) (core.ExecutionResult, error) {
	if sessionKey == "" {
		return core.ExecutionResult{}, &core.ValidationError{Field: "sessionKey", Message: "must not be empty"}
	}
	if input == "" {
		return core.ExecutionResult{}, &core.ValidationError{Field: "input", Message: "must not be empty"}
	}

	slot := e.slot(sessionKey)
	if !slot.mu.TryLock() {
		return core.ExecutionResult{}, &core.ConcurrentResumeError{SessionKey: sessionKey}
	}
	defer slot.mu.Unlock()

	state, err := e.loadState(ctx, slot, sessionKey)
	if err != nil {
		return core.ExecutionResult{}, err
	}

	if state.Terminal {
		return core.ExecutionResult{}, state.TermErr
	}
	if state.Suspended() {
		return core.ExecutionResult{}, &core.ValidationError{
			Field:   sessionKey,
			Message: "session has a suspended turn awaiting Resume",
		}
	}

	e.logger.Info("run.start", "session_key", sessionKey, "history_len", len(state.Messages))

	if err := e.append(ctx, state, core.NewUserMessage(input)); err != nil {
		return core.ExecutionResult{}, err
	}

	state.Limiter = core.NewTurnLimiter(e.cfg.MaxTurns)
	state.Phase = core.PhaseAwaitingModel

	return e.loop(ctx, state)
}

// Resume completes a suspended turn with the host's results and continues the
// turn loop. The turn id must match the session's current suspended turn; a
// second Resume for an already completed turn fails with StaleTurnError, so
// host-side retries after a successful resume are detected rather than
// silently replayed.
func (e *Engine) Resume(ctx context.Context, sessionKey, turnID string, results []core.ActionResult) (core.ExecutionResult, error) {
	if sessionKey == "" {
		return core.ExecutionResult{}, &core.ValidationError{Field: "sessionKey", Message: "must not be empty"}
	}
	if turnID == "" {
		return core.ExecutionResult{}, &core.ValidationError{Field: "turnID", Message: "must not be empty"}
	}

	slot := e.slot(sessionKey)
	if !slot.mu.TryLock() {
		return core.ExecutionResult{}, &core.ConcurrentResumeError{SessionKey: sessionKey}
	}
	defer slot.mu.Unlock()

	state, err := e.loadState(ctx, slot, sessionKey)
	if err != nil {
		return core.ExecutionResult{}, err
	}

	if state.Terminal {
		return core.ExecutionResult{}, state.TermErr
	}
	if !state.Suspended() {
		return core.ExecutionResult{}, &core.StaleTurnError{SessionKey: sessionKey, Want: "", Got: turnID}
	}
	if state.TurnID != turnID {
		return core.ExecutionResult{}, &core.StaleTurnError{SessionKey: sessionKey, Want: state.TurnID, Got: turnID}
	}

	if ctx.Err() != nil {
		return core.ExecutionResult{}, e.cancel(state, ctx.Err())
	}

	outcome, err := e.matcher.Resolve(state.CallOrder, state.Pending, results)
	if err != nil {
		return core.ExecutionResult{}, err
	}

	synthetic, timedOut, err := e.settleUnresolved(state, outcome.Unresolved)
	if err != nil {
		return core.ExecutionResult{}, err
	}

	msgs := mergeByCallOrder(state.CallOrder, outcome.Messages, synthetic)
	if err := e.append(ctx, state, msgs...); err != nil {
		return core.ExecutionResult{}, err
	}

	// The append succeeded, so the reconciliation is committed: settle the
	// pending statuses and release the turn.
	for _, id := range timedOut {
		state.Pending[id].Status = core.StatusTimedOut
	}
	for _, m := range outcome.Messages {
		res, ok := m.ToolResult()
		if !ok {
			continue
		}
		if res.IsError {
			state.Pending[res.CallID].Status = core.StatusErrored
		} else {
			state.Pending[res.CallID].Status = core.StatusResolved
		}
	}

	e.logger.Info("resume.reconciled",
		"session_key", sessionKey,
		"turn_id", turnID,
		"resolved", len(outcome.Resolved),
		"timed_out", len(timedOut),
	)
	e.hooks.resume(sessionKey, turnID, len(outcome.Resolved), len(timedOut))

	state.ClearTurn()

	return e.loop(ctx, state)
}

// History returns the persisted transcript for the session.
func (e *Engine) History(ctx context.Context, sessionKey string) ([]core.Message, error) {
	return e.memory.Load(ctx, sessionKey)
}

// slot returns (creating if needed) the serialization slot for a session.
func (e *Engine) slot(sessionKey string) *sessionSlot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.slots[sessionKey]
	if !ok {
		s = &sessionSlot{}
		e.slots[sessionKey] = s
	}
	return s
}

// loadState returns the slot's working state, seeding it from persisted
// history on first use. A state rebuilt from history is never suspended:
// pending bookkeeping lives only in process, so after a restart the host must
// start a fresh Run.
func (e *Engine) loadState(ctx context.Context, slot *sessionSlot, sessionKey string) (*core.ConversationState, error) {
	if slot.state != nil {
		return slot.state, nil
	}

	history, err := e.memory.Load(ctx, sessionKey)
	if err != nil {
		return nil, &core.MemoryWriteError{SessionKey: sessionKey, Err: err}
	}

	slot.state = core.NewConversationState(sessionKey, history)

	return slot.state, nil
}

// loop runs the turn loop until a final answer, a suspension or a terminal
// failure. Cancellation is cooperative and checked at loop entry and again
// before each commit point; an in-flight model call is never interrupted
// mid-commit.
func (e *Engine) loop(ctx context.Context, state *core.ConversationState) (core.ExecutionResult, error) {
	for {
		if ctx.Err() != nil {
			return core.ExecutionResult{}, e.cancel(state, ctx.Err())
		}

		if err := state.Limiter.Increment(); err != nil {
			e.logger.Warn("run.aborted", "session_key", state.SessionKey, "turns", state.Limiter.Count())
			state.MarkTerminal(core.PhaseAborted, err)
			return core.ExecutionResult{}, err
		}

		e.hooks.modelCall(state.SessionKey, state.Limiter.Count())

		res, err := e.invoker.Invoke(ctx, e.buildRequest(state))
		if err != nil {
			// A failed model call leaves the transcript untouched; the session
			// stays usable for a later Run.
			state.Phase = core.PhaseIdle
			return core.ExecutionResult{}, err
		}

		if ctx.Err() != nil {
			return core.ExecutionResult{}, e.cancel(state, ctx.Err())
		}

		if len(res.ToolCalls) == 0 {
			if err := e.append(ctx, state, core.NewAssistantMessage(res.Text)); err != nil {
				return core.ExecutionResult{}, err
			}
			state.Phase = core.PhaseIdle

			result := core.NewFinalResult(res.Text, res.FinishReason, res.Usage)
			e.logger.Info("run.final",
				"session_key", state.SessionKey,
				"turns", state.Limiter.Count(),
				"finish_reason", res.FinishReason,
			)
			e.hooks.final(state.SessionKey, result)

			return result, nil
		}

		turnID := core.NewID()

		requests, pending, err := e.dispatcher.Dispatch(turnID, res.ToolCalls)
		if err != nil {
			state.Phase = core.PhaseIdle
			return core.ExecutionResult{}, err
		}

		// One assistant message carries the whole batch, with the correlation
		// ids the dispatcher settled on.
		calls := make([]core.ToolCall, len(pending))
		for i, p := range pending {
			calls[i] = p.Call
		}
		if err := e.append(ctx, state, core.NewToolCallMessage(calls)); err != nil {
			return core.ExecutionResult{}, err
		}

		state.BeginSuspend(turnID, pending)

		e.logger.Info("turn.suspend",
			"session_key", state.SessionKey,
			"turn_id", turnID,
			"actions", len(requests),
		)
		e.hooks.suspend(state.SessionKey, turnID, requests)

		return core.NewSuspendedResult(turnID, requests), nil
	}
}

// buildRequest assembles the model request from instructions, the windowed
// transcript and the registered tool schemas.
func (e *Engine) buildRequest(state *core.ConversationState) model.Request {
	descriptors := e.registry.Descriptors()
	tools := make([]model.ToolDefinition, 0, len(descriptors))
	for _, d := range descriptors {
		tools = append(tools, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.InputSchema,
			},
		})
	}

	return model.Request{
		Instructions: e.instructions,
		Messages:     e.window.Apply(state.Messages),
		Tools:        tools,
	}
}

// append persists the batch and then mirrors it into the working state,
// assigning sequence positions. Persisted history never lags the working
// copy and never runs ahead of it.
func (e *Engine) append(ctx context.Context, state *core.ConversationState, msgs ...core.Message) error {
	for i := range msgs {
		msgs[i].Seq = state.NextSeq() + i
	}

	if err := e.memory.Append(ctx, state.SessionKey, msgs); err != nil {
		return &core.MemoryWriteError{SessionKey: state.SessionKey, Err: err}
	}

	state.Append(msgs...)

	return nil
}

// cancel terminates the conversation cooperatively. The transcript is kept
// for audit but the session accepts no further operations.
func (e *Engine) cancel(state *core.ConversationState, cause error) error {
	err := &core.CancelledError{SessionKey: state.SessionKey, Err: cause}
	state.MarkTerminal(core.PhaseCancelled, err)
	e.logger.Warn("run.cancelled", "session_key", state.SessionKey, "cause", cause.Error())
	return err
}

// settleUnresolved applies the partial-resume policy to pending calls the
// batch supplied no result for. Under the timeout policy, calls older than
// ResumeTimeout get a synthetic error result the model will see; younger ones
// still fail the resume so the host can retry with a complete batch. Statuses
// are not touched here, the caller commits them after the transcript append.
func (e *Engine) settleUnresolved(state *core.ConversationState, unresolved []string) ([]core.Message, []string, error) {
	if len(unresolved) == 0 {
		return nil, nil, nil
	}

	if e.cfg.PartialResume == PartialResumeReject {
		return nil, nil, core.NewMissingResultsError(unresolved)
	}

	now := time.Now().UTC()
	for _, id := range unresolved {
		if now.Sub(state.Pending[id].DispatchedAt) < e.cfg.ResumeTimeout {
			return nil, nil, core.NewMissingResultsError(unresolved)
		}
	}

	synthetic := make([]core.Message, 0, len(unresolved))
	for _, id := range unresolved {
		p := state.Pending[id]
		synthetic = append(synthetic, core.NewToolResultMessage(
			id,
			p.Call.Name,
			"tool call timed out before a result arrived",
			true,
		))
		e.logger.Warn("resume.timeout",
			"session_key", state.SessionKey,
			"correlation_id", id,
			"tool", p.Call.Name,
		)
	}

	return synthetic, unresolved, nil
}

// mergeByCallOrder interleaves matched and synthetic tool-result messages
// back into the original call order of the turn.
func mergeByCallOrder(order []string, matched, synthetic []core.Message) []core.Message {
	byID := make(map[string]core.Message, len(matched)+len(synthetic))
	for _, m := range matched {
		if res, ok := m.ToolResult(); ok {
			byID[res.CallID] = m
		}
	}
	for _, m := range synthetic {
		if res, ok := m.ToolResult(); ok {
			byID[res.CallID] = m
		}
	}

	out := make([]core.Message, 0, len(byID))
	for _, id := range order {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

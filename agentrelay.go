// Package agentrelay provides a high-level façade over the suspend/resume
// conversation engine. Most applications interact with this package by:
//  1. Creating a Relay via New() around a chat model (optionally overriding
//     the default in-memory services)
//  2. Registering the tools the model may call
//  3. Calling Run with user input, executing the returned actions when the
//     result is Suspended, and feeding the outcomes back via Resume
//
// Tool execution happens entirely in the host's hands: the engine never runs
// a tool itself, it only correlates calls with results across the suspend
// boundary. All defaults are safe for local development and testing;
// production deployments typically supply a durable transcript store and a
// structured logger.
package agentrelay

import (
	"context"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/engine"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/memory"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/tool"
)

// Options configures the Relay instance.
type Options struct {
	// EngineConfig tunes the turn loop (turn budget, partial-resume policy,
	// retry behavior).
	EngineConfig engine.Config

	// Instructions is the system prompt for every model invocation.
	Instructions string

	// Memory persists transcripts (defaults to in-memory).
	Memory memory.Store

	// Window selects the history slice sent to the model (defaults to the
	// full buffer).
	Window memory.WindowPolicy

	// Hooks are optional lifecycle callbacks, scoped to this instance.
	Hooks engine.Hooks

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Relay is the high-level façade aggregating the engine and its services.
type Relay struct {
	registry *tool.StaticRegistry
	engine   *engine.Engine
}

// New creates a Relay driving the given chat model. Any unset service is
// initialized with an in-memory implementation.
func New(chatModel model.ChatModel, optFns ...func(o *Options)) *Relay {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		Memory:       memory.NewInMemoryStore(),
		Window:       memory.FullBuffer{},
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	registry := tool.MustStaticRegistry()

	eng := engine.New(chatModel, func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Memory = opts.Memory
		o.Registry = registry
		o.Window = opts.Window
		o.Instructions = opts.Instructions
		o.Hooks = opts.Hooks
		o.Logger = opts.Logger
	})

	return &Relay{registry: registry, engine: eng}
}

// RegisterTool adds a tool descriptor the model may call. Registration must
// happen before the first Run for the schema to reach the model.
func (r *Relay) RegisterTool(d tool.Descriptor) error {
	return r.registry.Register(d)
}

// Run starts a logical run for the session. A Final result carries the
// model's answer; a Suspended result carries an action batch the host must
// execute and feed back via Resume with the same turn id.
func (r *Relay) Run(ctx context.Context, sessionKey, input string) (core.ExecutionResult, error) {
	return r.engine.Run(ctx, sessionKey, input)
}

// Resume completes a suspended turn with the host's results and continues
// the run.
func (r *Relay) Resume(ctx context.Context, sessionKey, turnID string, results []core.ActionResult) (core.ExecutionResult, error) {
	return r.engine.Resume(ctx, sessionKey, turnID, results)
}

// History returns the persisted transcript for a session.
func (r *Relay) History(ctx context.Context, sessionKey string) ([]core.Message, error) {
	return r.engine.History(ctx, sessionKey)
}

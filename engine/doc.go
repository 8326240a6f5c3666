// Package engine implements the suspend/resume conversation controller.
//
// The Engine drives the turn loop for a session: it invokes the model, and
// when the model requests tool calls it dispatches them as a correlated
// action batch and suspends, returning control to the host. The host executes
// the actions on its own schedule and calls Resume with the results; the
// engine reconciles them into the transcript and continues the loop until the
// model produces a final answer, the turn budget is exceeded, or the run is
// cancelled.
//
// Operations on one session are strictly serialized. State is mutated only
// after the corresponding transcript append succeeded, so a failed operation
// leaves the session exactly as it was.
package engine

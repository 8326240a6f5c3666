// Package flow contains the per-turn machinery between the model and the
// host: the Dispatcher turns model tool calls into a correlated action batch
// handed across the suspend boundary, and the Matcher reconciles the host's
// results back into deterministic tool-result messages when the conversation
// resumes.
//
// Both components are pure with respect to conversation state: they either
// succeed for a whole batch or fail without partial effects, which is what
// lets the engine treat dispatch and resume as atomic operations.
package flow

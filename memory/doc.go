// Package memory provides transcript persistence and context windowing.
//
// A Store holds the append-only message history per session key; appends are
// all-or-nothing so the controller can rely on persisted history never being
// partially written. A WindowPolicy selects which slice of that history is
// sent to the model on each invocation without ever mutating the stored
// transcript.
package memory

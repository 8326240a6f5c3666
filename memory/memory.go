package memory

import (
	"context"

	"github.com/hupe1980/agentrelay/core"
)

// Store persists the append-only conversation transcript per session key.
//
// Append must be atomic: either every message of the batch becomes part of
// the history or none does. The controller appends before mutating its
// working state, so a Store that violates this breaks crash consistency.
type Store interface {
	// Load returns the full persisted history for the session, oldest first.
	// A session that was never written returns an empty slice, not an error.
	Load(ctx context.Context, sessionKey string) ([]core.Message, error)

	// Append atomically adds the batch to the session's history, assigning no
	// ordering of its own: callers hand messages already carrying their Seq.
	Append(ctx context.Context, sessionKey string, msgs []core.Message) error

	// Clear removes all history for the session.
	Clear(ctx context.Context, sessionKey string) error
}

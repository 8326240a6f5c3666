// Package testutil provides small helpers shared by the package test suites.
package testutil

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/memory"
)

// ResultsFor executes every action with fn and collects the results, standing
// in for a real host loop in tests.
func ResultsFor(actions []core.ActionRequest, fn func(core.ActionRequest) (any, bool)) []core.ActionResult {
	results := make([]core.ActionResult, 0, len(actions))
	for _, action := range actions {
		output, isError := fn(action)
		results = append(results, core.NewActionResult(action.ID, output, isError))
	}
	return results
}

// FailingStore wraps an in-memory store and fails Append after AllowAppends
// successful batches, exercising the transcript write failure paths.
type FailingStore struct {
	Inner        *memory.InMemoryStore
	AllowAppends int

	appends int
}

// Compile-time assertion.
var _ memory.Store = (*FailingStore)(nil)

// NewFailingStore creates a store that accepts allowAppends batches before
// failing.
func NewFailingStore(allowAppends int) *FailingStore {
	return &FailingStore{Inner: memory.NewInMemoryStore(), AllowAppends: allowAppends}
}

// Load implements memory.Store.
func (s *FailingStore) Load(ctx context.Context, sessionKey string) ([]core.Message, error) {
	return s.Inner.Load(ctx, sessionKey)
}

// Append implements memory.Store.
func (s *FailingStore) Append(ctx context.Context, sessionKey string, msgs []core.Message) error {
	if s.appends >= s.AllowAppends {
		return fmt.Errorf("append rejected")
	}
	s.appends++
	return s.Inner.Append(ctx, sessionKey, msgs)
}

// Clear implements memory.Store.
func (s *FailingStore) Clear(ctx context.Context, sessionKey string) error {
	return s.Inner.Clear(ctx, sessionKey)
}

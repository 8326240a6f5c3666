package core

// TurnLimiter enforces the maximum number of model invocations for one
// logical run. The controller owns the ConversationState exclusively for the
// duration of a Run/Resume call, so no locking is required here.
type TurnLimiter struct {
	max   int
	count int
}

// NewTurnLimiter creates a limiter allowing max turns.
// If max == 0, unlimited turns are allowed.
func NewTurnLimiter(max int) *TurnLimiter {
	return &TurnLimiter{max: max}
}

// Increment counts one model invocation and returns TooManyIterationsError
// once the limit is exceeded.
func (tl *TurnLimiter) Increment() error {
	tl.count++
	if tl.max > 0 && tl.count > tl.max {
		return &TooManyIterationsError{Limit: tl.max}
	}
	return nil
}

// Count returns the number of turns consumed so far.
func (tl *TurnLimiter) Count() int { return tl.count }

// Remaining returns how many turns are left, or -1 when unlimited.
func (tl *TurnLimiter) Remaining() int {
	if tl.max == 0 {
		return -1
	}
	return tl.max - tl.count
}

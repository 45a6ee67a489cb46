package session

import "errors"

var (
	// ErrCorruptSession marks a persisted token whose expiry cannot be
	// determined. Distinct from absence: callers must force a logout
	// rather than silently ignore an unmonitorable token.
	ErrCorruptSession = errors.New("corrupt session data")
)

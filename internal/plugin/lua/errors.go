package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction is returned when a named field or global exists but
	// is not callable.
	ErrNotFunction = errors.New("not a lua function")
)

package plugin

import (
	"errors"
	"fmt"
)

// Sentinel errors for plugin operations.
var (
	// ErrNotFound is returned when no record exists for an identifier.
	ErrNotFound = errors.New("plugin not found")

	// ErrInvalidIdentifier is returned for file names that are not
	// lower_snake_case identifiers.
	ErrInvalidIdentifier = errors.New("invalid plugin identifier")

	// ErrIdentifierTaken is returned when a second source claims an
	// identifier already in the registry.
	ErrIdentifierTaken = errors.New("plugin identifier already registered")

	// ErrSelfLifecycle is returned when a plugin drives its own enable
	// or disable through the manager back-reference.
	ErrSelfLifecycle = errors.New("plugin cannot drive its own lifecycle")

	// ErrManagerClosed is returned when operating on a closed manager.
	ErrManagerClosed = errors.New("plugin manager is closed")
)

// DiscoveryError records a candidate file that does not satisfy the plugin
// convention: a malformed identifier, a missing or mistyped plugin table, a
// top-level execution failure, or an identifier collision. Discovery records
// the error and keeps scanning; one bad file never hides the others.
type DiscoveryError struct {
	Path       string
	Identifier string
	Err        error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover %s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// LoadError records a failed plugin construction. The plugin stays
// unloaded and is excluded from auto-enable for the session.
type LoadError struct {
	Identifier string
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load plugin %q: %v", e.Identifier, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// HookError records a lifecycle hook that raised. Enable aborts on it;
// disable completes despite it; edit degrades to no surface.
type HookError struct {
	Identifier string
	Hook       string
	Err        error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("plugin %q hook %s: %v", e.Identifier, e.Hook, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

package plugin

// State tracks a plugin through its lifecycle. A record starts Discovered,
// becomes Loaded once its file has been executed and an instance exists,
// then flips between Enabled and Disabled. Unloaded marks a record whose
// backing file vanished; the manager drops such records after announcing
// them.
type State int

const (
	StateDiscovered State = iota
	StateLoaded
	StateEnabled
	StateDisabled
	StateUnloaded
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateLoaded:
		return "loaded"
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	case StateUnloaded:
		return "unloaded"
	default:
		return "unknown"
	}
}

// Loaded reports whether an instance exists for this state.
func (s State) Loaded() bool {
	return s == StateLoaded || s == StateEnabled || s == StateDisabled
}

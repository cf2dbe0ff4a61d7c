package genbridge

// State is the lifecycle stage of a Session.
// Transitions happen only through InitModel (to StateModelReady) and InitChat (to StateChatReady).
type State int

// Session states, ordered so that a higher state satisfies every lower requirement.
const (
	StateUninitialized State = iota
	StateModelReady
	StateChatReady
)

// String returns the state name used in errors and logs.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateModelReady:
		return "model_ready"
	case StateChatReady:
		return "chat_ready"
	default:
		return "unknown"
	}
}

// requirementError returns the sentinel for an operation that needs at least required but found s, or nil.
func requirementError(s, required State) error {
	if s >= required {
		return nil
	}
	if s < StateModelReady {
		return ErrNotInitialized
	}
	return ErrChatNotInitialized
}

package genbridge

import (
	"errors"
	"fmt"
)

// Sentinel errors originated by genbridge. Everything else is returned as the SDK produced it.
// All use prefix "genbridge:". Callers should use errors.Is/errors.As.
var (
	ErrNotInitialized     = errors.New("genbridge: model not initialized")
	ErrChatNotInitialized = errors.New("genbridge: chat not initialized")
	ErrInvalidImage       = errors.New("genbridge: image blob is invalid")
	ErrModelReplaced      = errors.New("genbridge: model replaced while opening chat")
	ErrStreamConsumed     = errors.New("genbridge: stream already consumed")
	ErrInvalidManifest    = errors.New("genbridge: profile manifest is malformed")
	ErrProfileNotFound    = errors.New("genbridge: profile not found in registry")
	ErrInvalidName        = errors.New("genbridge: profile name or env is invalid")
)

// StateError reports an operation attempted in a state that does not allow it.
// Use errors.Is(err, ErrNotInitialized) and errors.As(err, &stateErr) to inspect.
type StateError struct {
	Op    string
	State State
	Err   error
}

// Error implements error.
func (e *StateError) Error() string {
	return fmt.Sprintf("genbridge: %s in state %s: %v", e.Op, e.State, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/errors.As.
func (e *StateError) Unwrap() error { return e.Err }

// Compile-time check that StateError implements error.
var _ error = (*StateError)(nil)

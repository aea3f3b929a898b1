package gpu

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the core.
var (
	// ErrCapacity means a descriptor exceeds a device limit
	// (e.g. uniform/storage buffer size).
	ErrCapacity = errors.New("gpu: capacity exceeded")

	// ErrCompileLink means shader compilation or program
	// linking failed.
	ErrCompileLink = errors.New("gpu: shader compile/link failed")

	// ErrInvalidState means an operation was attempted while
	// the command queue was in a state that does not permit it
	// (pass already running, no pass running, no pipeline or
	// VAO bound, binding-slot mismatch).
	ErrInvalidState = errors.New("gpu: invalid state")

	// ErrInvalidRange means a copy/upload/blit offset or count
	// is negative or exceeds the bounds of a resource.
	ErrInvalidRange = errors.New("gpu: invalid range")

	// ErrIncompatibleTarget means a render target's attachment
	// signature does not match a render pass.
	ErrIncompatibleTarget = errors.New("gpu: incompatible render target")

	// ErrUnboundSlot means a frame-graph getSlot call targeted
	// an unassigned slot, or assignSlot targeted an already-bound
	// slot.
	ErrUnboundSlot = errors.New("gpu: unbound slot")

	// ErrUnknownResource means a command referenced a handle
	// that was not created in the current frame and is not
	// persisted.
	ErrUnknownResource = errors.New("gpu: unknown resource")

	// ErrBackendError wraps diagnostics reported by a backend.
	ErrBackendError = errors.New("gpu: backend error")
)

func errf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

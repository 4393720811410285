package canvas

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrDuplicateNode = errors.New("node already exists")
	ErrSelfEdge      = errors.New("node cannot connect to itself")
	ErrNotPending    = errors.New("node has no pending merge")
	ErrInvalidColor  = errors.New("invalid color tag")
	ErrSessionClosed = errors.New("session is closed")
)

// CanvasError provides structured error information for graph mutations.
type CanvasError struct {
	Op     string // Operation that failed (e.g., "Connect", "ResolveMerge")
	Entity string // Entity type ("node", "edge", "selection")
	ID     string // Entity id (if applicable)
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *CanvasError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *CanvasError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *CanvasError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

func opError(op, entity, id string, cause error) *CanvasError {
	return &CanvasError{Op: op, Entity: entity, ID: id, Cause: cause}
}

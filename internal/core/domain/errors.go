package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyID is returned when a command is issued without a container id.
	ErrEmptyID = errors.New("container id is required")

	// ErrCommandInFlight is returned when a command is issued for an id that
	// already has a command dispatching.
	ErrCommandInFlight = errors.New("a command is already in flight for this container")
)

// ConnectionError reports that the container engine could not be reached.
type ConnectionError struct {
	Host  string
	Cause error
}

func (e *ConnectionError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("cannot connect to container engine at %s: %v", e.Host, e.Cause)
	}
	return fmt.Sprintf("cannot connect to container engine: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// QueryError reports that the engine was reachable but listing failed.
type QueryError struct {
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to list containers: %v", e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

// CommandError reports a rejected or timed out start/stop for one container.
type CommandError struct {
	Op    CommandKind
	ID    string
	Cause error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("failed to %s container %s: %v", e.Op, e.ID, e.Cause)
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// IsConnectionError reports whether err wraps a ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

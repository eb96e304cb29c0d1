package ports

import (
	"context"

	"github.com/melih/lighthouse-deck/internal/core/domain"
)

// ContainerRuntime is the only contact point with the container engine.
// Implementations normalize engine records and map engine failures to the
// domain error types, so callers never see engine-specific shapes.
type ContainerRuntime interface {
	// ListContainers returns every container, running or stopped, in engine order.
	ListContainers(ctx context.Context) ([]domain.Container, error)
	StartContainer(ctx context.Context, id string) error
	// StopContainer asks for a graceful stop; the engine kills the container
	// once its grace period runs out.
	StopContainer(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

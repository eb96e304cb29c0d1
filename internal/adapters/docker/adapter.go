package docker

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/melih/lighthouse-deck/internal/core/domain"
)

const (
	// DefaultStopGracePeriod is how long the engine waits after SIGTERM
	// before it kills the container.
	DefaultStopGracePeriod = 10 * time.Second

	// stopHeadroom bounds a stop call beyond the grace period so an engine
	// that never answers cannot hold the caller forever.
	stopHeadroom = 5 * time.Second
)

// Adapter implements ports.ContainerRuntime using the Docker SDK.
type Adapter struct {
	cli       *client.Client
	stopGrace time.Duration
}

type settings struct {
	clientOpts []client.Opt
	stopGrace  time.Duration
}

// Option configures an Adapter.
type Option func(*settings)

// WithClientOpts appends Docker client options after the environment
// defaults, so they take precedence (e.g. client.WithHost in tests).
func WithClientOpts(opts ...client.Opt) Option {
	return func(s *settings) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// WithStopGracePeriod overrides the grace period passed to the engine on stop.
func WithStopGracePeriod(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.stopGrace = d
		}
	}
}

// NewAdapter creates a Docker adapter bound to the local default engine
// endpoint (DOCKER_HOST or the platform socket/pipe). No connection is made
// until the first call.
func NewAdapter(opts ...Option) (*Adapter, error) {
	s := &settings{
		clientOpts: []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()},
		stopGrace:  DefaultStopGracePeriod,
	}
	for _, opt := range opts {
		opt(s)
	}

	cli, err := client.NewClientWithOpts(s.clientOpts...)
	if err != nil {
		return nil, &domain.ConnectionError{Cause: fmt.Errorf("failed to create docker client: %w", err)}
	}
	return &Adapter{cli: cli, stopGrace: s.stopGrace}, nil
}

// Host returns the engine endpoint this adapter talks to.
func (a *Adapter) Host() string {
	return a.cli.DaemonHost()
}

// Close releases the underlying transport.
func (a *Adapter) Close() error {
	return a.cli.Close()
}

// Ping checks that the engine answers on its API endpoint.
func (a *Adapter) Ping(ctx context.Context) error {
	if _, err := a.cli.Ping(ctx); err != nil {
		return &domain.ConnectionError{Host: a.Host(), Cause: err}
	}
	return nil
}

// ListContainers returns all containers, stopped ones included, normalized
// and in the order the engine reported them.
func (a *Adapter) ListContainers(ctx context.Context) ([]domain.Container, error) {
	containers, err := a.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, a.listError(err)
	}
	return Normalize(containers), nil
}

// StartContainer starts an existing container.
func (a *Adapter) StartContainer(ctx context.Context, id string) error {
	if err := a.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return a.commandError(domain.CommandStart, id, err)
	}
	return nil
}

// StopContainer stops a running container, giving it the grace period to
// exit before the engine kills it.
func (a *Adapter) StopContainer(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, a.stopGrace+stopHeadroom)
	defer cancel()

	timeout := int(a.stopGrace / time.Second)
	if err := a.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil {
		return a.commandError(domain.CommandStop, id, err)
	}
	return nil
}

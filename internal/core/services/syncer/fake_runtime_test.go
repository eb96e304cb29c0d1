package syncer

import (
	"context"
	"sync"

	"github.com/melih/lighthouse-deck/internal/core/domain"
)

// fakeRuntime is a ports.ContainerRuntime whose behaviour is scripted per test.
type fakeRuntime struct {
	mu sync.Mutex

	containers []domain.Container
	listErr    error
	listFn     func(ctx context.Context) ([]domain.Container, error)
	commandFn  func(ctx context.Context, kind domain.CommandKind, id string) error

	listCalls int
	started   []string
	stopped   []string
}

func (f *fakeRuntime) ListContainers(ctx context.Context) ([]domain.Container, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	containers, err := f.containers, f.listErr
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	if err != nil {
		return nil, err
	}
	out := make([]domain.Container, len(containers))
	copy(out, containers)
	return out, nil
}

func (f *fakeRuntime) StartContainer(ctx context.Context, id string) error {
	return f.command(ctx, domain.CommandStart, id)
}

func (f *fakeRuntime) StopContainer(ctx context.Context, id string) error {
	return f.command(ctx, domain.CommandStop, id)
}

func (f *fakeRuntime) command(ctx context.Context, kind domain.CommandKind, id string) error {
	f.mu.Lock()
	if kind == domain.CommandStart {
		f.started = append(f.started, id)
	} else {
		f.stopped = append(f.stopped, id)
	}
	fn := f.commandFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, kind, id)
	}
	return nil
}

func (f *fakeRuntime) Ping(ctx context.Context) error {
	return nil
}

func (f *fakeRuntime) set(containers []domain.Container, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.containers = containers
	f.listErr = err
}

func (f *fakeRuntime) calls() (list int, started, stopped []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, append([]string(nil), f.started...), append([]string(nil), f.stopped...)
}

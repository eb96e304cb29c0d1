package syncer

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/melih/lighthouse-deck/internal/core/domain"
	"github.com/melih/lighthouse-deck/internal/core/ports"
	"github.com/melih/lighthouse-deck/internal/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultPollInterval   = time.Second
	DefaultRefreshTimeout = 5 * time.Second
	DefaultCommandTimeout = 20 * time.Second

	refreshKey = "containers"
)

// Engine implements ports.SyncService on top of a ports.ContainerRuntime.
type Engine struct {
	runtime ports.ContainerRuntime

	pollInterval   time.Duration
	refreshTimeout time.Duration
	commandTimeout time.Duration
	onPublish      func(*domain.Snapshot)
	log            *logrus.Entry
	now            func() time.Time

	current atomic.Pointer[domain.Snapshot]
	group   singleflight.Group

	mu         sync.Mutex
	commands   map[string]commandEntry
	settleSeq  uint64
	lastErr    error
	generation uint64
	flight     *refreshFlight
	flightSeq  uint64
	listSlot   chan struct{}

	baseCtx context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
}

var _ ports.SyncService = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithPollInterval sets the interval used by Run.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// WithRefreshTimeout bounds each list call.
func WithRefreshTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.refreshTimeout = d
		}
	}
}

// WithCommandTimeout bounds each start/stop call.
func WithCommandTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.commandTimeout = d
		}
	}
}

// WithOnPublish registers a hook called after every snapshot swap.
// The hook runs on the refreshing goroutine and must not block.
func WithOnPublish(fn func(*domain.Snapshot)) Option {
	return func(e *Engine) {
		e.onPublish = fn
	}
}

// WithLogger replaces the default component logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(e *Engine) {
		if entry != nil {
			e.log = entry
		}
	}
}

// New creates an Engine. The initial snapshot is empty with generation 0.
func New(runtime ports.ContainerRuntime, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		runtime:        runtime,
		pollInterval:   DefaultPollInterval,
		refreshTimeout: DefaultRefreshTimeout,
		commandTimeout: DefaultCommandTimeout,
		log:            logger.WithField("component", "syncer"),
		now:            time.Now,
		commands:       make(map[string]commandEntry),
		listSlot:       make(chan struct{}, 1),
		baseCtx:        ctx,
		cancel:         cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.current.Store(&domain.Snapshot{Containers: []domain.Container{}})
	return e
}

// Snapshot returns the last published snapshot.
func (e *Engine) Snapshot() *domain.Snapshot {
	return e.current.Load()
}

// LastRefreshError returns the error of the most recent failed refresh, or
// nil once a refresh has succeeded since.
func (e *Engine) LastRefreshError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Ping checks engine reachability.
func (e *Engine) Ping(ctx context.Context) error {
	return e.runtime.Ping(ctx)
}

// Refresh lists all containers and publishes them as the new snapshot.
// A refresh started while another is in flight shares that call's result.
// On failure the previous snapshot stays published. When every caller
// waiting on a list call has given up, the call is cancelled and nothing
// is published.
func (e *Engine) Refresh(ctx context.Context) error {
	f := e.joinFlight()
	ch := e.group.DoChan(f.key(), func() (interface{}, error) {
		f.once.Do(func() { f.snap, f.err = e.refresh(f) })
		return f.snap, f.err
	})

	select {
	case res := <-ch:
		e.leaveFlight(f, false)
		return res.Err
	case <-ctx.Done():
		if e.leaveFlight(f, true) {
			// The call already settled; report what it did.
			res := <-ch
			return res.Err
		}
		entry := e.log.WithError(ctx.Err()).WithField("op", "refresh")
		if errors.Is(ctx.Err(), context.Canceled) {
			entry.Debug("refresh abandoned by caller")
		} else {
			entry.Warn("refresh abandoned by caller")
		}
		return ctx.Err()
	}
}

// refreshFlight is one shared list call and the callers waiting on it.
// Fields other than once, snap and err are guarded by Engine.mu.
type refreshFlight struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc

	waiters   int
	abandoned bool
	settled   bool

	once sync.Once
	snap *domain.Snapshot
	err  error
}

func (f *refreshFlight) key() string {
	return refreshKey + "-" + strconv.FormatUint(f.id, 10)
}

func (e *Engine) joinFlight() *refreshFlight {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.flight == nil {
		ctx, cancel := context.WithTimeout(e.baseCtx, e.refreshTimeout)
		e.flightSeq++
		e.flight = &refreshFlight{id: e.flightSeq, ctx: ctx, cancel: cancel}
	}
	e.flight.waiters++
	return e.flight
}

// leaveFlight drops one waiter from f. The last waiter to abandon an
// unsettled call cancels it. It reports whether f has already settled.
func (e *Engine) leaveFlight(f *refreshFlight, abandon bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	f.waiters--
	if abandon && f.waiters == 0 && !f.settled {
		f.abandoned = true
		f.cancel()
		if e.flight == f {
			e.flight = nil
		}
	}
	return f.settled
}

func (e *Engine) refresh(f *refreshFlight) (*domain.Snapshot, error) {
	defer f.cancel()

	e.mu.Lock()
	startSeq := e.settleSeq
	e.mu.Unlock()

	containers, err := e.listContainers(f.ctx)

	e.mu.Lock()
	if e.flight == f {
		e.flight = nil
	}
	if f.abandoned || errors.Is(err, context.Canceled) {
		e.mu.Unlock()
		e.log.WithField("op", "refresh").Debug("refresh cancelled, snapshot unchanged")
		return nil, context.Canceled
	}
	f.settled = true

	if err != nil {
		if !domain.IsConnectionError(err) && !isQueryError(err) {
			err = &domain.QueryError{Cause: err}
		}
		e.lastErr = err
		e.mu.Unlock()

		entry := e.log.WithError(err).WithField("op", "refresh")
		if domain.IsConnectionError(err) {
			entry.Warn("container engine unreachable, keeping previous snapshot")
		} else {
			entry.Error("refresh failed, keeping previous snapshot")
		}
		return nil, err
	}

	snap := e.publishLocked(containers, startSeq)
	e.mu.Unlock()

	if e.onPublish != nil {
		e.onPublish(snap)
	}
	e.log.WithFields(logrus.Fields{
		"op":         "refresh",
		"generation": snap.Generation,
		"containers": len(snap.Containers),
	}).Debug("snapshot published")
	return snap, nil
}

// listContainers holds the list slot until the runtime call returns, even
// when ctx ends first, so at most one list call reaches the runtime.
func (e *Engine) listContainers(ctx context.Context) ([]domain.Container, error) {
	select {
	case e.listSlot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return callWithin(ctx, func(ctx context.Context) ([]domain.Container, error) {
		defer func() { <-e.listSlot }()
		return e.runtime.ListContainers(ctx)
	})
}

// publishLocked swaps in a new snapshot and retires command states that
// settled before the list call began. The caller holds e.mu.
func (e *Engine) publishLocked(containers []domain.Container, startSeq uint64) *domain.Snapshot {
	if containers == nil {
		containers = []domain.Container{}
	}

	e.generation++
	snap := &domain.Snapshot{
		Containers:  containers,
		Generation:  e.generation,
		RefreshedAt: e.now(),
	}
	e.current.Store(snap)
	e.lastErr = nil
	for id, c := range e.commands {
		if c.terminal() && c.seq <= startSeq {
			delete(e.commands, id)
		}
	}
	return snap
}

// TriggerRefresh runs Refresh on a short-lived worker and returns at once.
func (e *Engine) TriggerRefresh() {
	e.spawn(func(ctx context.Context) {
		_ = e.Refresh(ctx)
	})
}

// Run refreshes immediately and then on every poll interval until ctx is
// done. Ticks that arrive while a refresh is in flight join it.
func (e *Engine) Run(ctx context.Context) error {
	e.log.WithField("interval", e.pollInterval).Debug("starting poller")

	e.spawnWith(ctx, func(ctx context.Context) { _ = e.Refresh(ctx) })

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.Debug("poller stopping")
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			e.spawnWith(ctx, func(ctx context.Context) { _ = e.Refresh(ctx) })
		}
	}
}

// Wait blocks until all fire-and-forget workers have returned.
func (e *Engine) Wait() {
	e.workers.Wait()
}

// Close cancels outstanding work and waits for workers to exit.
func (e *Engine) Close() {
	e.cancel()
	e.workers.Wait()
}

func (e *Engine) spawn(fn func(context.Context)) {
	e.spawnWith(e.baseCtx, fn)
}

func (e *Engine) spawnWith(ctx context.Context, fn func(context.Context)) {
	e.workers.Add(1)
	go func() {
		defer e.workers.Done()
		fn(ctx)
	}()
}

// callWithin runs fn and returns when it finishes or ctx ends, whichever
// comes first. A runtime that ignores cancellation keeps running in the
// background but can no longer hold up the caller.
func callWithin[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{val: v, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func isQueryError(err error) bool {
	var qe *domain.QueryError
	return errors.As(err, &qe)
}

package syncer

import (
	"context"
	"errors"

	"github.com/melih/lighthouse-deck/internal/core/domain"
	"github.com/sirupsen/logrus"
)

type commandEntry struct {
	state domain.CommandState
	kind  domain.CommandKind
	seq   uint64 // settle order; zero while dispatching
}

func (c commandEntry) terminal() bool {
	return c.state == domain.CommandSettled || c.state == domain.CommandFailed
}

// CommandState reports where the last command for id stands. Ids without a
// command since the last published snapshot are Idle.
func (e *Engine) CommandState(id string) domain.CommandState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.commands[id]; ok {
		return c.state
	}
	return domain.CommandIdle
}

// PendingCommand returns the kind of command currently dispatching for id.
func (e *Engine) PendingCommand(id string) (domain.CommandKind, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.commands[id]
	if !ok || c.state != domain.CommandDispatching {
		return "", false
	}
	return c.kind, true
}

// Start asks the engine to start the container. The snapshot is not
// touched; the next refresh reflects the outcome.
func (e *Engine) Start(ctx context.Context, id string) error {
	return e.dispatch(ctx, domain.CommandStart, id)
}

// Stop asks the engine to stop the container gracefully.
func (e *Engine) Stop(ctx context.Context, id string) error {
	return e.dispatch(ctx, domain.CommandStop, id)
}

// DispatchStart runs Start on a short-lived worker; failures are only logged.
func (e *Engine) DispatchStart(id string) {
	e.spawn(func(ctx context.Context) {
		_ = e.Start(ctx, id)
	})
}

// DispatchStop runs Stop on a short-lived worker; failures are only logged.
func (e *Engine) DispatchStop(id string) {
	e.spawn(func(ctx context.Context) {
		_ = e.Stop(ctx, id)
	})
}

func (e *Engine) dispatch(ctx context.Context, kind domain.CommandKind, id string) error {
	log := e.log.WithFields(logrus.Fields{"op": string(kind), "container_id": id})

	if id == "" {
		err := &domain.CommandError{Op: kind, ID: id, Cause: domain.ErrEmptyID}
		log.WithError(err).Error("rejected container command")
		return err
	}
	if !e.begin(id, kind) {
		err := &domain.CommandError{Op: kind, ID: id, Cause: domain.ErrCommandInFlight}
		log.WithError(err).Warn("rejected container command")
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, e.commandTimeout)
	defer cancel()

	log.Info("dispatching container command")
	_, err := callWithin(ctx, func(ctx context.Context) (struct{}, error) {
		if kind == domain.CommandStart {
			return struct{}{}, e.runtime.StartContainer(ctx, id)
		}
		return struct{}{}, e.runtime.StopContainer(ctx, id)
	})
	if err != nil {
		var ce *domain.CommandError
		if !errors.As(err, &ce) {
			err = &domain.CommandError{Op: kind, ID: id, Cause: err}
		}
		e.settle(id, domain.CommandFailed)
		log.WithError(err).Error("container command failed")
		return err
	}

	e.settle(id, domain.CommandSettled)
	log.Info("container command accepted by engine")
	return nil
}

// begin moves id to Dispatching unless a command for it is already there.
func (e *Engine) begin(id string, kind domain.CommandKind) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.commands[id]; ok && c.state == domain.CommandDispatching {
		return false
	}
	e.commands[id] = commandEntry{state: domain.CommandDispatching, kind: kind}
	return true
}

func (e *Engine) settle(id string, state domain.CommandState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settleSeq++
	c := e.commands[id]
	c.state = state
	c.seq = e.settleSeq
	e.commands[id] = c
}

package ports

import (
	"context"

	"github.com/melih/lighthouse-deck/internal/core/domain"
)

// SyncService is what presentation shells drive. The synchronous methods
// return the failure for callers that want it; the Trigger/Dispatch
// variants return immediately and only log.
type SyncService interface {
	Refresh(ctx context.Context) error
	Start(ctx context.Context, id string) error
	Stop(ctx context.Context, id string) error

	TriggerRefresh()
	DispatchStart(id string)
	DispatchStop(id string)

	// Snapshot returns the most recently published snapshot. It never blocks
	// on the engine.
	Snapshot() *domain.Snapshot
	CommandState(id string) domain.CommandState
	PendingCommand(id string) (domain.CommandKind, bool)
	// LastRefreshError is nil once a refresh has succeeded after a failure.
	LastRefreshError() error

	Ping(ctx context.Context) error
}

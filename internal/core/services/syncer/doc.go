// Package syncer keeps the published container snapshot in step with the
// engine and dispatches start/stop commands against it.
//
// Refreshes are coalesced: while one list call is in flight, further
// refreshes wait for its result instead of issuing their own. If every
// waiter gives up first, the list call is cancelled and publishes nothing.
// The snapshot
// is replaced with a single pointer swap, so readers see either the old
// list or the new one, never a mix.
//
// Commands never touch the snapshot. Their effect shows up on the next
// refresh, which means a displayed status can lag by up to one poll
// interval after a command returns.
package syncer

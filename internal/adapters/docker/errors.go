package docker

import (
	"errors"
	"net"

	"github.com/docker/docker/client"
	"github.com/melih/lighthouse-deck/internal/core/domain"
)

func isConnectionFailure(err error) bool {
	if client.IsErrConnectionFailed(err) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (a *Adapter) listError(err error) error {
	if isConnectionFailure(err) {
		return &domain.ConnectionError{Host: a.Host(), Cause: err}
	}
	return &domain.QueryError{Cause: err}
}

// commandError keeps connection failures distinguishable inside the
// CommandError cause chain.
func (a *Adapter) commandError(op domain.CommandKind, id string, err error) error {
	if isConnectionFailure(err) {
		err = &domain.ConnectionError{Host: a.Host(), Cause: err}
	}
	return &domain.CommandError{Op: op, ID: id, Cause: err}
}

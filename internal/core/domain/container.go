package domain

import "time"

// ShortIDLength is the number of leading id characters shown to users.
const ShortIDLength = 12

// Status is the closed set of lifecycle states the engine exposes to shells.
// Engine state strings outside the known vocabulary collapse to StatusUnknown.
type Status int

const (
	StatusUnknown Status = iota
	StatusRunning
	StatusExited
)

// ParseStatus classifies an engine state string. Matching is exact and
// case-sensitive: "Running" is not "running".
func ParseStatus(state string) Status {
	switch state {
	case "running":
		return StatusRunning
	case "exited":
		return StatusExited
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusExited:
		return "exited"
	default:
		return "unknown"
	}
}

// MarshalText renders the status as its lowercase name in JSON and TOML.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Container is one normalized record of a single refresh. It has no identity
// beyond the snapshot it belongs to; only ID correlates back to the engine.
type Container struct {
	ID      string `json:"id"`
	ShortID string `json:"short_id"`
	Name    string `json:"name"`
	Status  Status `json:"status"`
}

// ShortID returns the first ShortIDLength characters of id, or id itself
// when it is shorter.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}

// Snapshot is the complete container list produced by one refresh.
// A published Snapshot is never mutated.
type Snapshot struct {
	Containers  []Container `json:"containers"`
	Generation  uint64      `json:"generation"`
	RefreshedAt time.Time   `json:"refreshed_at"`
}

// Find returns the container with the given id from the snapshot.
func (s *Snapshot) Find(id string) (Container, bool) {
	if s == nil {
		return Container{}, false
	}
	for _, c := range s.Containers {
		if c.ID == id {
			return c, true
		}
	}
	return Container{}, false
}

package domain

// CommandKind identifies a lifecycle command issued against a container.
type CommandKind string

const (
	CommandStart CommandKind = "start"
	CommandStop  CommandKind = "stop"
)

// CommandState tracks a command for one container id between refreshes.
// Settled and Failed are terminal and fall back to Idle once the next
// snapshot is published.
type CommandState int

const (
	CommandIdle CommandState = iota
	CommandDispatching
	CommandSettled
	CommandFailed
)

func (s CommandState) String() string {
	switch s {
	case CommandDispatching:
		return "dispatching"
	case CommandSettled:
		return "settled"
	case CommandFailed:
		return "failed"
	default:
		return "idle"
	}
}

// MarshalText renders the state as its lowercase name.
func (s CommandState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

package supervisor

// State is one node of the orchestration state machine.
type State int

const (
	StateIdle State = iota
	StateDiscovering
	StateLinking
	StateActivating
	StateHandover
	StateApplying
	StateMonitoring
	StateReconnecting
	// StateSetupFailed is terminal for the process: restart follows.
	StateSetupFailed
	// StateStopped is entered on shutdown.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscovering:
		return "discovering"
	case StateLinking:
		return "linking"
	case StateActivating:
		return "activating"
	case StateHandover:
		return "handover"
	case StateApplying:
		return "applying"
	case StateMonitoring:
		return "monitoring"
	case StateReconnecting:
		return "reconnecting"
	case StateSetupFailed:
		return "setup_failed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Terminal reports whether Step has nothing left to do.
func (s State) Terminal() bool {
	return s == StateSetupFailed || s == StateStopped
}

func (s State) setup() bool {
	return s >= StateIdle && s <= StateApplying
}

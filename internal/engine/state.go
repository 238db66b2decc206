package engine

// GroupState is the suspend/resume state of one process group. Only the
// engine's state machine mutates it.
type GroupState int

const (
	// StateRunning: every process in the group is schedulable.
	StateRunning GroupState = iota
	// StatePendingStop: hidden, waiting out the debounce before stopping.
	// Still fully schedulable.
	StatePendingStop
	// StateStopped: every live process in the group has been sent SIGSTOP.
	StateStopped
)

func (s GroupState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePendingStop:
		return "pending_stop"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

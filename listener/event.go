package listener

import "time"

type EventKind int

const (
	EventTriggered EventKind = iota
	EventDropped
	EventDone
	EventFailed
	EventHookError
)

func (k EventKind) String() string {
	switch k {
	case EventTriggered:
		return "triggered"
	case EventDropped:
		return "dropped"
	case EventDone:
		return "done"
	case EventFailed:
		return "failed"
	case EventHookError:
		return "hook_error"
	}
	return "unknown"
}

type Event struct {
	Kind EventKind
	At   time.Time

	// Reason is "debounce" or "busy" for dropped presses.
	Reason string
	// Since is the time since the last accepted press.
	Since time.Duration
	// Elapsed is how long the callback ran.
	Elapsed time.Duration
	Err     error
}

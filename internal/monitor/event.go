package monitor

import "time"

// EventType identifies an accepted button edge.
type EventType string

const (
	EventPress   EventType = "PRESS"
	EventRelease EventType = "RELEASE"
)

// Event is an accepted edge with wall-clock context, as handed to
// publishers and status consumers.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Pin       int
}

// Counts is a snapshot of edge statistics since the monitor was created.
type Counts struct {
	// Presses and Releases count accepted edges by direction.
	Presses  uint64
	Releases uint64

	// Suppressed counts edges rejected by the debounce filter.
	Suppressed uint64
}

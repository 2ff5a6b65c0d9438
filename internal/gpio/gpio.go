// Package gpio provides edge-triggered GPIO input lines with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "time"

// Edge selects which voltage transitions are delivered to the event handler.
type Edge int

const (
	EdgeFalling Edge = iota // high to low
	EdgeRising              // low to high
	EdgeBoth
)

func (e Edge) String() string {
	switch e {
	case EdgeFalling:
		return "falling"
	case EdgeRising:
		return "rising"
	case EdgeBoth:
		return "both"
	}
	return "unknown"
}

// Line level values as returned by Value.
const (
	Low  = 0
	High = 1
)

// Event describes a single edge delivered by a line.
type Event struct {
	// Rising is true for a low to high transition.
	Rising bool

	// Timestamp is the kernel event time, best-effort. Consumers that need
	// interval arithmetic should read their own clock instead.
	Timestamp time.Duration
}

// Handler is invoked for each delivered edge. It runs on the event delivery
// goroutine and must not block.
type Handler func(Event)

// Line is a requested GPIO input line.
type Line interface {
	// Value returns the current level of the line (Low or High).
	Value() (int, error)

	// Close releases the line.
	Close() error
}

// Chip requests input lines from a GPIO device.
type Chip interface {
	// RequestLine configures the line at offset as an input with pull-up
	// bias and installs handler for the selected edge trigger. With pull-up
	// the idle level is High; a button wired to ground pulls the line Low
	// when pressed.
	RequestLine(offset int, edge Edge, handler Handler) (Line, error)

	// Close releases the chip. Lines already requested remain usable.
	Close() error
}

// DefaultChipName is the primary GPIO character device on a Raspberry Pi.
const DefaultChipName = "gpiochip0"

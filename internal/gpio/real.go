//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealChip requests lines from actual hardware using the Linux GPIO character device.
type RealChip struct {
	chip *gpiocdev.Chip
}

// NewRealChip opens the named GPIO character device (e.g. "gpiochip0").
func NewRealChip(name string) (*RealChip, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &RealChip{chip: chip}, nil
}

// RequestLine configures the line at offset as input with pull-up bias and
// installs handler for the selected edge trigger.
func (c *RealChip) RequestLine(offset int, edge Edge, handler Handler) (Line, error) {
	eh := func(evt gpiocdev.LineEvent) {
		handler(Event{
			Rising:    evt.Type == gpiocdev.LineEventRisingEdge,
			Timestamp: evt.Timestamp,
		})
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithEventHandler(eh),
	}
	switch edge {
	case EdgeFalling:
		opts = append(opts, gpiocdev.WithFallingEdge)
	case EdgeRising:
		opts = append(opts, gpiocdev.WithRisingEdge)
	case EdgeBoth:
		opts = append(opts, gpiocdev.WithBothEdges)
	default:
		return nil, fmt.Errorf("unsupported edge trigger %d", int(edge))
	}

	line, err := c.chip.RequestLine(offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request line %d: %w", offset, err)
	}
	return &RealLine{line: line}, nil
}

// Close releases the chip handle.
func (c *RealChip) Close() error {
	return c.chip.Close()
}

// RealLine wraps a requested gpiocdev line.
type RealLine struct {
	line *gpiocdev.Line
}

// Value returns the current level of the line.
func (l *RealLine) Value() (int, error) {
	v, err := l.line.Value()
	if err != nil {
		return 0, fmt.Errorf("read line value: %w", err)
	}
	return v, nil
}

// Close releases the line. Event delivery stops.
func (l *RealLine) Close() error {
	return l.line.Close()
}

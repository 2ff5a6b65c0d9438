package gpio

// FakeChip is a test double that hands out FakeLines.
type FakeChip struct {
	// Lines holds every line requested so far, keyed by offset.
	Lines map[int]*FakeLine

	// RequestError, if set, will be returned by RequestLine.
	RequestError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeChip creates a FakeChip for testing.
func NewFakeChip() *FakeChip {
	return &FakeChip{Lines: make(map[int]*FakeLine)}
}

// RequestLine returns a FakeLine registered under offset. The line starts
// at High, matching a pull-up input with the button unpressed.
func (c *FakeChip) RequestLine(offset int, edge Edge, handler Handler) (Line, error) {
	if c.RequestError != nil {
		return nil, c.RequestError
	}
	l := &FakeLine{
		Offset:  offset,
		Edge:    edge,
		Level:   High,
		handler: handler,
	}
	c.Lines[offset] = l
	return l, nil
}

// Close marks the chip as closed.
func (c *FakeChip) Close() error {
	c.Closed = true
	return nil
}

// FakeLine is a scriptable input line. Tests drive it with Fall and Rise;
// the registered handler is invoked synchronously when the edge matches the
// requested trigger, the way bounced contacts hit an interrupt handler.
type FakeLine struct {
	Offset int
	Edge   Edge

	// Level is the current line level returned by Value.
	Level int

	// ValueError, if set, will be returned by Value.
	ValueError error

	// Closed tracks if Close was called.
	Closed bool

	handler Handler
}

// Value returns the scripted level.
func (l *FakeLine) Value() (int, error) {
	if l.ValueError != nil {
		return 0, l.ValueError
	}
	return l.Level, nil
}

// Close marks the line as closed.
func (l *FakeLine) Close() error {
	l.Closed = true
	return nil
}

// Fall drives the line Low and delivers a falling edge if the requested
// trigger includes falling edges.
func (l *FakeLine) Fall() {
	l.Level = Low
	if l.Edge == EdgeFalling || l.Edge == EdgeBoth {
		l.fire(Event{Rising: false})
	}
}

// Rise drives the line High and delivers a rising edge if the requested
// trigger includes rising edges.
func (l *FakeLine) Rise() {
	l.Level = High
	if l.Edge == EdgeRising || l.Edge == EdgeBoth {
		l.fire(Event{Rising: true})
	}
}

// Bounce delivers a falling edge without settling the level first, then a
// rising edge, simulating one mechanical contact bounce.
func (l *FakeLine) Bounce() {
	l.Fall()
	l.Rise()
}

func (l *FakeLine) fire(evt Event) {
	if l.handler != nil {
		l.handler(evt)
	}
}

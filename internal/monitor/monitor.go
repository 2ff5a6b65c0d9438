// Package monitor implements a debounced push-button monitor driven by GPIO
// edge events. One Monitor owns one input line, configured with pull-up
// bias, and dispatches user callbacks on accepted press and release edges.
// Edges arriving within the debounce window of the last accepted edge are
// discarded, filtering mechanical contact bounce.
package monitor

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/sweeney/button-monitor/internal/gpio"
)

// Mode selects which edges trigger the monitor and which callbacks run.
type Mode int

const (
	// ModeDetectOnly registers a falling-edge trigger and performs debounce
	// bookkeeping but dispatches no callback. Detection-only, kept for
	// callers that only want the edge statistics.
	ModeDetectOnly Mode = iota

	// ModeOnPress dispatches Callback on each accepted press (falling edge).
	ModeOnPress

	// ModeOnRelease dispatches Callback on each accepted release (rising edge).
	ModeOnRelease

	// ModePressRelease triggers on both edges and dispatches OnPress or
	// OnRelease by edge direction, sharing a single debounce window.
	ModePressRelease
)

func (m Mode) String() string {
	switch m {
	case ModeDetectOnly:
		return "detect-only"
	case ModeOnPress:
		return "on-press"
	case ModeOnRelease:
		return "on-release"
	case ModePressRelease:
		return "press-release"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid reports whether m is a defined mode.
func (m Mode) Valid() bool {
	return m >= ModeDetectOnly && m <= ModePressRelease
}

// Callback is a user action dispatched on an accepted edge. It runs on the
// event delivery goroutine and must not block. A nil Callback is skipped
// silently; a panicking Callback is caught, logged, and does not disturb
// later edges.
type Callback func()

// DefaultDebounce is the minimum spacing between accepted edges unless
// configured otherwise.
const DefaultDebounce = 15 * time.Millisecond

// Config describes a single button.
type Config struct {
	// Pin is the line offset of the button input on the chip.
	Pin int

	// Mode selects the edge trigger and dispatch behavior.
	Mode Mode

	// Callback is dispatched in ModeOnPress and ModeOnRelease. Ignored by
	// the other modes.
	Callback Callback

	// OnPress and OnRelease are dispatched in ModePressRelease.
	OnPress   Callback
	OnRelease Callback

	// Debounce is the minimum spacing between accepted edges. Zero selects
	// DefaultDebounce. Must not be negative.
	Debounce time.Duration

	// NoDebounce disables the debounce filter; every delivered edge is
	// accepted.
	NoDebounce bool

	// Debug enables per-edge diagnostic logging.
	Debug bool
}

// Monitor owns one button input line and dispatches callbacks on accepted
// edges. Create one with New; the monitor is armed as soon as New returns.
type Monitor struct {
	line gpio.Line
	cfg  Config

	// window is the debounce window in millisecond ticks.
	window int32

	// last is the tick of the most recently accepted edge. It only moves
	// forward; see accept.
	last atomic.Uint32

	presses    atomic.Uint64
	releases   atomic.Uint64
	suppressed atomic.Uint64

	// nowMs is the tick source, replaceable in tests.
	nowMs func() uint32

	log *zap.SugaredLogger
}

// New validates cfg, requests the button line from chip as input with
// pull-up bias and the edge trigger implied by the mode, and arms the edge
// handler. It fails fast on an invalid mode, a negative debounce, or a line
// request error; absent callbacks are not an error.
func New(chip gpio.Chip, cfg Config, logger *zap.SugaredLogger) (*Monitor, error) {
	if chip == nil {
		return nil, errors.New("monitor: nil chip")
	}
	if !cfg.Mode.Valid() {
		return nil, fmt.Errorf("monitor: unsupported mode %d", int(cfg.Mode))
	}
	if cfg.Debounce < 0 {
		return nil, fmt.Errorf("monitor: negative debounce %v", cfg.Debounce)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	window := cfg.Debounce
	if cfg.NoDebounce {
		window = 0
	} else if window == 0 {
		window = DefaultDebounce
	}

	m := &Monitor{
		cfg:    cfg,
		window: int32(window / time.Millisecond),
		nowMs:  TicksMs,
		log:    logger,
	}
	m.last.Store(m.nowMs())

	edge := edgeForMode(cfg.Mode)
	if cfg.Debug {
		m.log.Debugf("pin %d: mode %s, trigger %s, debounce %dms", cfg.Pin, cfg.Mode, edge, m.window)
	}

	line, err := chip.RequestLine(cfg.Pin, edge, m.handleEdge)
	if err != nil {
		return nil, fmt.Errorf("monitor: request pin %d: %w", cfg.Pin, err)
	}
	m.line = line
	return m, nil
}

// edgeForMode maps a mode to its interrupt trigger: press modes watch the
// falling edge, release the rising edge, press-release both.
func edgeForMode(m Mode) gpio.Edge {
	switch m {
	case ModeOnRelease:
		return gpio.EdgeRising
	case ModePressRelease:
		return gpio.EdgeBoth
	}
	return gpio.EdgeFalling
}

// handleEdge runs on the event delivery goroutine for every hardware edge.
// It must stay fast and non-blocking: one tick read, one CAS, one line read
// and the dispatch.
func (m *Monitor) handleEdge(evt gpio.Event) {
	now := m.nowMs()
	if !m.accept(now) {
		m.suppressed.Inc()
		if m.cfg.Debug {
			m.log.Debugf("pin %d: edge within %dms of last accepted, ignored", m.cfg.Pin, m.window)
		}
		return
	}

	pressed := m.pressed(evt)
	if m.cfg.Debug {
		if pressed {
			m.log.Debugf("pin %d: button pressed (falling edge)", m.cfg.Pin)
		} else {
			m.log.Debugf("pin %d: button released (rising edge)", m.cfg.Pin)
		}
	}

	if pressed {
		m.presses.Inc()
	} else {
		m.releases.Inc()
	}

	switch m.cfg.Mode {
	case ModeDetectOnly:
		// Debounce bookkeeping only; nothing to dispatch.
	case ModeOnPress, ModeOnRelease:
		m.invoke("callback", m.cfg.Callback)
	case ModePressRelease:
		if pressed {
			m.invoke("press callback", m.cfg.OnPress)
		} else {
			m.invoke("release callback", m.cfg.OnRelease)
		}
	}
}

// accept applies the debounce filter and, on acceptance, advances the
// last-accepted tick. An edge elapsed at most window ticks after the
// previous accepted edge is rejected. The CAS loop keeps concurrent handler
// invocations from both accepting edges inside one window, and the signed
// tick comparison keeps last monotonically non-decreasing even when a
// slower invocation loses the race.
func (m *Monitor) accept(now uint32) bool {
	if m.window == 0 {
		// Filtering disabled; still track the tick for bookkeeping.
		m.last.Store(now)
		return true
	}
	for {
		last := m.last.Load()
		if TicksDiff(now, last) <= m.window {
			return false
		}
		if m.last.CompareAndSwap(last, now) {
			return true
		}
	}
}

// pressed reports the direction of an accepted edge by re-reading the line
// level: Low means pressed on a pull-up input. If the read fails the
// direction delivered with the event is used instead.
func (m *Monitor) pressed(evt gpio.Event) bool {
	line := m.line
	if line == nil {
		// Edge delivered before New finished; the event direction is all
		// we have.
		return !evt.Rising
	}
	v, err := line.Value()
	if err != nil {
		m.log.Warnf("pin %d: level read failed: %v", m.cfg.Pin, err)
		return !evt.Rising
	}
	return v == gpio.Low
}

// invoke dispatches cb, catching panics so a failing callback cannot take
// down the event delivery goroutine or suppress later edges.
func (m *Monitor) invoke(name string, cb Callback) {
	if cb == nil {
		if m.cfg.Debug {
			m.log.Debugf("pin %d: no %s registered", m.cfg.Pin, name)
		}
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.log.Errorf("pin %d: %s panicked: %v", m.cfg.Pin, name, r)
		}
	}()
	cb()
}

// Counts returns a snapshot of edge statistics.
func (m *Monitor) Counts() Counts {
	return Counts{
		Presses:    m.presses.Load(),
		Releases:   m.releases.Load(),
		Suppressed: m.suppressed.Load(),
	}
}

// Wait blocks forever. All monitoring work happens on the event delivery
// goroutine; Wait just parks the caller with a coarse sleep so a program
// has something to block on after setup.
func (m *Monitor) Wait() {
	if m.cfg.Debug {
		m.log.Debugf("pin %d: waiting for button events", m.cfg.Pin)
	}
	for {
		time.Sleep(time.Second)
	}
}

// Close releases the underlying line. No further edges are delivered.
func (m *Monitor) Close() error {
	return m.line.Close()
}

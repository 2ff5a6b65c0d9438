// Package status provides a thread-safe status tracker for the button-monitor
// daemon. It is read by the HTTP handlers and serialized into MQTT system
// event payloads.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/button-monitor/internal/monitor"
)

// Config contains daemon configuration for display.
type Config struct {
	Chip        string
	Pin         int
	Mode        string
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	Debug       bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	// LastEvent is the most recent accepted edge; empty until the first one.
	LastEvent     monitor.EventType
	LastEventTime time.Time
	Counts        monitor.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Pressed reports whether the last accepted edge left the button pressed.
func (s Snapshot) Pressed() bool {
	return s.LastEvent == monitor.EventPress
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordEvent stores the most recent accepted edge.
func (t *Tracker) RecordEvent(evt monitor.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.LastEvent = evt.Type
	t.snap.LastEventTime = evt.Timestamp
}

// SetCounts refreshes the edge statistics.
func (t *Tracker) SetCounts(c monitor.Counts) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Counts = c
}

// SetMQTTConnected records the broker connection state.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.MQTTConnected = connected
}

// Snapshot returns a copy of the current state with Now filled in.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := t.snap
	snap.Now = time.Now()
	return snap
}

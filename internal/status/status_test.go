package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/button-monitor/internal/monitor"
)

func testConfig() Config {
	return Config{
		Chip:        "gpiochip0",
		Pin:         17,
		Mode:        "press-release",
		DebounceMs:  15,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":8080",
	}
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("start time: got %v, want %v", snap.StartTime, start)
	}
	if snap.LastEvent != "" {
		t.Errorf("new tracker should have no last event, got %q", snap.LastEvent)
	}
	if snap.Config.Pin != 17 {
		t.Errorf("config pin: got %d, want 17", snap.Config.Pin)
	}
	if snap.Now.IsZero() {
		t.Error("snapshot should fill Now")
	}
}

func TestRecordEvent(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	when := time.Date(2026, 1, 1, 12, 30, 0, 0, time.UTC)
	tr.RecordEvent(monitor.Event{Timestamp: when, Type: monitor.EventPress, Pin: 17})

	snap := tr.Snapshot()
	if snap.LastEvent != monitor.EventPress {
		t.Errorf("last event: got %q, want PRESS", snap.LastEvent)
	}
	if !snap.LastEventTime.Equal(when) {
		t.Errorf("last event time: got %v, want %v", snap.LastEventTime, when)
	}
	if !snap.Pressed() {
		t.Error("Pressed() should be true after a press")
	}

	tr.RecordEvent(monitor.Event{Timestamp: when.Add(time.Second), Type: monitor.EventRelease, Pin: 17})
	if tr.Snapshot().Pressed() {
		t.Error("Pressed() should be false after a release")
	}
}

func TestSetCountsAndMQTT(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	tr.SetCounts(monitor.Counts{Presses: 3, Releases: 2, Suppressed: 7})
	tr.SetMQTTConnected(true)

	snap := tr.Snapshot()
	if snap.Counts.Presses != 3 || snap.Counts.Releases != 2 || snap.Counts.Suppressed != 7 {
		t.Errorf("counts: got %+v", snap.Counts)
	}
	if !snap.MQTTConnected {
		t.Error("MQTTConnected should be true")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())
	snap := tr.Snapshot()

	tr.RecordEvent(monitor.Event{Timestamp: time.Now(), Type: monitor.EventPress})
	if snap.LastEvent != "" {
		t.Error("earlier snapshot must not see later mutations")
	}
}

func TestUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start.Add(90 * time.Second)}
	if got := snap.Uptime(); got != 90*time.Second {
		t.Errorf("uptime: got %v, want 90s", got)
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{
		LastEvent:     monitor.EventRelease,
		LastEventTime: start.Add(10 * time.Minute),
		Counts:        monitor.Counts{Presses: 5, Releases: 5, Suppressed: 12},
		StartTime:     start,
		Now:           start.Add(time.Hour),
		MQTTConnected: true,
		Config:        testConfig(),
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	inner := parsed.Status
	if inner.LastEvent != "RELEASE" {
		t.Errorf("last_event: got %q", inner.LastEvent)
	}
	if inner.LastEventTime != "2026-01-01T12:10:00Z" {
		t.Errorf("last_event_time: got %q", inner.LastEventTime)
	}
	if inner.UptimeSeconds != 3600 {
		t.Errorf("uptime_seconds: got %d, want 3600", inner.UptimeSeconds)
	}
	if inner.Counts.Suppressed != 12 {
		t.Errorf("suppressed: got %d, want 12", inner.Counts.Suppressed)
	}
	if !inner.MQTT.Connected {
		t.Error("mqtt.connected should be true")
	}
	if inner.Config.Mode != "press-release" {
		t.Errorf("config.mode: got %q", inner.Config.Mode)
	}
	if inner.Event != "" {
		t.Errorf("web JSON should omit event, got %q", inner.Event)
	}
}

func TestFormatJSONNoEventsYet(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start, Config: testConfig()}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.LastEvent != "NONE" {
		t.Errorf("last_event: got %q, want NONE", parsed.Status.LastEvent)
	}
	if parsed.Status.LastEventTime != "" {
		t.Errorf("last_event_time should be omitted, got %q", parsed.Status.LastEventTime)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start, Config: testConfig()}

	payload := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("event: got %q", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("reason: got %q", parsed.Status.Reason)
	}
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())
	done := make(chan struct{})

	go func() {
		for i := 0; i < 1000; i++ {
			tr.RecordEvent(monitor.Event{Timestamp: time.Now(), Type: monitor.EventPress})
			tr.SetCounts(monitor.Counts{Presses: uint64(i)})
		}
		close(done)
	}()

	for i := 0; i < 1000; i++ {
		_ = tr.Snapshot()
	}
	<-done
}

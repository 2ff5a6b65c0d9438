// Command button-monitor watches a push-button on a GPIO input and publishes
// debounced press/release events to MQTT and connected websocket clients.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/button-monitor/internal/gpio"
	"github.com/sweeney/button-monitor/internal/monitor"
	"github.com/sweeney/button-monitor/internal/mqtt"
	"github.com/sweeney/button-monitor/internal/status"
	"github.com/sweeney/button-monitor/internal/web"
)

// DefaultPin is the BCM line offset the button is wired to.
const DefaultPin = 17

func main() {
	chipName := flag.String("chip", gpio.DefaultChipName, "GPIO character device name")
	pin := flag.Int("pin", DefaultPin, "BCM line offset of the button input")
	modeVal := flag.Int("mode", int(monitor.ModePressRelease), "Monitor mode: 0=detect-only 1=on-press 2=on-release 3=press-release")
	debounce := flag.Duration("debounce", monitor.DefaultDebounce, "Debounce window (0 disables)")
	debug := flag.Bool("debug", false, "Enable per-edge diagnostic logging")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	printLevel := flag.Bool("print-level", false, "Print current button level and exit")

	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if err := run(*chipName, *pin, *modeVal, *debounce, *debug, *broker, *heartbeat, *httpAddr, *printLevel, sugar); err != nil {
		sugar.Fatalf("fatal: %v", err)
	}
}

// newLogger builds the daemon logger: human-readable debug output when
// per-edge tracing is on, JSON production output otherwise.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(chipName string, pin, modeVal int, debounce time.Duration, debug bool, broker string, heartbeat time.Duration, httpAddr string, printLevel bool, sugar *zap.SugaredLogger) error {
	mode := monitor.Mode(modeVal)
	if !mode.Valid() {
		return fmt.Errorf("invalid mode %d (want 0-3)", modeVal)
	}
	if debounce < 0 {
		return fmt.Errorf("invalid debounce %v", debounce)
	}

	// Initialize GPIO
	chip, err := gpio.NewRealChip(chipName)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer chip.Close()

	// Print level mode
	if printLevel {
		return printButtonLevel(chip, pin)
	}

	// Initialize status tracker (before STARTUP so a snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:        chipName,
		Pin:         pin,
		Mode:        mode.String(),
		DebounceMs:  debounce.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      broker,
		HTTPAddr:    httpAddr,
		Debug:       debug,
	})

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(broker, sugar)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	hub := web.NewHub(sugar)

	// publish is the shared dispatch path for accepted edges: record,
	// stream, then hand to the broker.
	publish := func(typ monitor.EventType) {
		evt := monitor.Event{Timestamp: time.Now(), Type: typ, Pin: pin}
		tracker.RecordEvent(evt)
		hub.Broadcast(evt)
		if err := publisher.Publish(evt); err != nil {
			sugar.Warnf("publish error: %v", err)
			// Don't crash on publish failure
		}
	}

	mon, err := monitor.New(chip, monitorConfig(pin, mode, debounce, debug, publish), sugar)
	if err != nil {
		return fmt.Errorf("init monitor: %w", err)
	}
	defer mon.Close()

	// Publish startup event with full status snapshot
	tracker.SetMQTTConnected(publisher.IsConnected())
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		sugar.Warnf("failed to publish startup event: %v", err)
	} else {
		sugar.Infof("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker, hub)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				sugar.Errorf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		sugar.Infof("http status server listening on %s", httpAddr)
	}

	sugar.Infof("started: chip=%s pin=%d mode=%s debounce=%v broker=%s heartbeat=%v", chipName, pin, mode, debounce, broker, heartbeat)

	// The monitor works entirely off edge events; the loop only refreshes
	// status, emits heartbeats, and waits for a signal.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(mon, publisher, publisher, tracker, heartbeat, time.Now, ticker.C, sigCh, sugar)
}

// monitorConfig wires the daemon's publish path into the callbacks the
// selected mode dispatches.
func monitorConfig(pin int, mode monitor.Mode, debounce time.Duration, debug bool, publish func(monitor.EventType)) monitor.Config {
	cfg := monitor.Config{
		Pin:        pin,
		Mode:       mode,
		Debounce:   debounce,
		NoDebounce: debounce == 0,
		Debug:      debug,
	}
	switch mode {
	case monitor.ModeOnPress:
		cfg.Callback = func() { publish(monitor.EventPress) }
	case monitor.ModeOnRelease:
		cfg.Callback = func() { publish(monitor.EventRelease) }
	case monitor.ModePressRelease:
		cfg.OnPress = func() { publish(monitor.EventPress) }
		cfg.OnRelease = func() { publish(monitor.EventRelease) }
	}
	// ModeDetectOnly dispatches nothing.
	return cfg
}

func runLoop(mon *monitor.Monitor, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, sugar *zap.SugaredLogger) error {
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			name := signalName(s)
			sugar.Infof("received %s, shutting down", name)

			tracker.SetCounts(mon.Counts())
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			snap := tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  snap.Now,
				Event:      "SHUTDOWN",
				Reason:     name,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", name),
			}
			if err := publisher.PublishSystem(event); err != nil {
				sugar.Warnf("failed to publish shutdown event: %v", err)
			} else {
				sugar.Infof("published shutdown event")
			}
			return nil

		case t := <-tick:
			tracker.SetCounts(mon.Counts())
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}

			if heartbeat <= 0 {
				continue
			}
			if t.Sub(lastHeartbeat) < heartbeat {
				continue
			}
			lastHeartbeat = t

			counts := mon.Counts()
			sugar.Infof("heartbeat: presses=%d releases=%d suppressed=%d", counts.Presses, counts.Releases, counts.Suppressed)

			snap := tracker.Snapshot()
			hbEvent := mqtt.SystemEvent{
				Timestamp:  snap.Now,
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				sugar.Warnf("heartbeat publish error: %v", err)
			}
		}
	}
}

// printButtonLevel reads the line once and reports whether the button is
// held down. Pull-up input: low level means pressed.
func printButtonLevel(chip gpio.Chip, pin int) error {
	line, err := chip.RequestLine(pin, gpio.EdgeFalling, func(gpio.Event) {})
	if err != nil {
		return fmt.Errorf("request pin %d: %w", pin, err)
	}
	defer line.Close()

	v, err := line.Value()
	if err != nil {
		return fmt.Errorf("read pin %d: %w", pin, err)
	}
	if v == gpio.Low {
		fmt.Println("PRESSED")
	} else {
		fmt.Println("RELEASED")
	}
	return nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

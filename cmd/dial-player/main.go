// Command dial-player reads two rotary encoders and drives an audio module:
// one knob selects the folder, the other sets the volume.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/dial-player/internal/audio"
	"github.com/sweeney/dial-player/internal/config"
	"github.com/sweeney/dial-player/internal/control"
	"github.com/sweeney/dial-player/internal/diag"
	"github.com/sweeney/dial-player/internal/encoder"
	"github.com/sweeney/dial-player/internal/gpio"
	"github.com/sweeney/dial-player/internal/mqtt"
	"github.com/sweeney/dial-player/internal/status"
	"github.com/sweeney/dial-player/internal/web"
)

func main() {
	cfgFile := flag.String("config", "", "YAML config file (built-in defaults if empty)")
	poll := flag.Duration("poll", 0, "Encoder polling interval")
	debounce := flag.Duration("debounce", 0, "Push button debounce duration")
	resolution := flag.String("resolution", "", `Encoder resolution ("detent" or "quarter")`)
	broker := flag.String("broker", "", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 0, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", "", "HTTP status address (empty to disable)")
	diagDevice := flag.String("diag", "", "Serial device for the diagnostics console")
	printState := flag.Bool("print-state", false, "Print current pin levels and exit")

	flag.Parse()

	cfg := config.Default()
	if *cfgFile != "" {
		var err error
		cfg, err = config.Load(*cfgFile)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
	}

	// Flags override the file only when given on the command line.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "poll":
			cfg.Poll = *poll
		case "debounce":
			cfg.Debounce = *debounce
		case "resolution":
			cfg.Resolution = *resolution
		case "broker":
			cfg.MQTT.Broker = *broker
		case "heartbeat":
			cfg.Heartbeat = *heartbeat
		case "http":
			cfg.HTTPAddr = *httpAddr
		case "diag":
			cfg.Diag.Device = *diagDevice
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: config: %v", err)
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, printState bool) error {
	// Mirror the log to the serial console first so startup is visible there.
	if cfg.Diag.Device != "" {
		port, err := diag.Open(cfg.Diag.Device, cfg.Diag.Baud)
		if err != nil {
			return fmt.Errorf("init diag console: %w", err)
		}
		defer port.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, diag.NewWriter(port)))
		log.Printf("diag: console on %s at %d baud", cfg.Diag.Device, cfg.Diag.Baud)
	}

	// Initialize GPIO
	in, err := gpio.NewRealInput(cfg.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer in.Close()

	folderKnob, err := encoder.New(in, cfg.FolderPins(), cfg.Encoder("folder"), time.Now)
	if err != nil {
		return fmt.Errorf("init folder encoder: %w", err)
	}
	volumeKnob, err := encoder.New(in, cfg.VolumePins(), cfg.Encoder("volume"), time.Now)
	if err != nil {
		return fmt.Errorf("init volume encoder: %w", err)
	}

	// Print state mode
	if printState {
		printPins(os.Stdout, in, folderKnob)
		printPins(os.Stdout, in, volumeKnob)
		return nil
	}

	var mute gpio.Output
	if cfg.MutePin >= 0 {
		out, err := gpio.NewRealOutput(cfg.Chip, cfg.MutePin, true)
		if err != nil {
			return fmt.Errorf("init mute line: %w", err)
		}
		defer out.Close()
		mute = out
	}

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
	defer publisher.Close()

	player, err := audio.NewMQTTPlayer(cfg.MQTT.Broker, cfg.MQTT.ClientID+"-audio", cfg.Audio.TopicPrefix, cfg.Audio.Timeout)
	if err != nil {
		return fmt.Errorf("init audio: %w", err)
	}
	defer player.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.Poll.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		Resolution:  cfg.Encoder("").Resolution.String(),
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: poll=%v debounce=%v resolution=%s broker=%s heartbeat=%v",
		cfg.Poll, cfg.Debounce, cfg.Resolution, cfg.MQTT.Broker, cfg.Heartbeat)

	ctrl := control.New(folderKnob, volumeKnob, player, mute, cfg.ControlConfig(), nil, time.Now())

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	knobs := []*encoder.Encoder{folderKnob, volumeKnob}
	return runLoop(ctrl, knobs, publisher, publisher, tracker, cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(ctrl *control.Controller, knobs []*encoder.Encoder, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	publishEvents(publisher, ctrl.Start(now()))
	updateTracker(tracker, ctrl, knobs, mqttStatus)

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				updateTracker(tracker, ctrl, knobs, mqttStatus)
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			publishEvents(publisher, ctrl.Step(t))

			if hbData := ctrl.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v tracks=%d folder_changes=%d volume_up=%d volume_down=%d errors=%d",
					hbData.Uptime, hbData.Counts.Tracks, hbData.Counts.FolderChanges,
					hbData.Counts.VolumeUp, hbData.Counts.VolumeDown, hbData.Counts.CommandErrors)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					updateTracker(tracker, ctrl, knobs, mqttStatus)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			updateTracker(tracker, ctrl, knobs, mqttStatus)
		}
	}
}

func publishEvents(publisher mqtt.Publisher, events []control.Event) {
	for _, event := range events {
		log.Printf("event: %s (folder=%d track=%d volume=%d muted=%v)",
			event.Type, event.Folder, event.Track, event.Volume, event.Muted)
		if err := publisher.Publish(event); err != nil {
			log.Printf("publish error: %v", err)
		}
	}
}

// updateTracker refreshes the status snapshot for HTTP and MQTT consumers.
func updateTracker(tracker *status.Tracker, ctrl *control.Controller, knobs []*encoder.Encoder, mqttStatus mqtt.ConnectionStatus) {
	if tracker == nil {
		return
	}
	var readErrors uint64
	for _, k := range knobs {
		readErrors += k.ReadErrors()
	}
	tracker.Update(ctrl.State(), readErrors)
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

// printPins writes the raw levels of one encoder's pins.
func printPins(w io.Writer, in gpio.Input, knob *encoder.Encoder) {
	p := knob.Pins()
	fmt.Fprintf(w, "%s: A=%s B=%s SW=%s\n", knob.Name(),
		levelString(in, p.A), levelString(in, p.B), buttonString(in, p.Button))
}

func levelString(in gpio.Input, pin int) string {
	high, err := in.Read(pin)
	if err != nil {
		return "ERR"
	}
	if high {
		return "1"
	}
	return "0"
}

func buttonString(in gpio.Input, pin int) string {
	high, err := in.Read(pin)
	if err != nil {
		return "ERR"
	}
	if high {
		return "released"
	}
	return "pressed"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

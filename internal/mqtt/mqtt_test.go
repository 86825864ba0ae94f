package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/dial-player/internal/control"
)

func TestFormatPayload(t *testing.T) {
	event := control.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      control.EventTrack,
		Folder:    3,
		Track:     17,
		Volume:    12,
		Reason:    control.ReasonNext,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"player":{"timestamp":"2026-02-02T22:18:12Z","event":"TRACK","folder":3,"track":17,"volume":12,"muted":false,"reason":"next"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatPayload(control.Event{
		Timestamp: time.Now(),
		Type:      control.EventMute,
		Muted:     true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, exists := parsed["player"]["reason"]; exists {
		t.Error("empty reason should be omitted")
	}
	if parsed["player"]["muted"] != true {
		t.Errorf("expected muted=true, got %v", parsed["player"]["muted"])
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	event := control.Event{
		Timestamp: time.Date(2026, 2, 2, 12, 0, 0, 0, loc),
		Type:      control.EventVolumeUp,
	}

	payload, _ := FormatPayload(event)

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Player.Timestamp != "2026-02-02T10:00:00Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Player.Timestamp)
	}
}

func TestFormatPayloadAllEventTypes(t *testing.T) {
	types := []control.EventType{
		control.EventTrack, control.EventFolder, control.EventVolumeUp, control.EventVolumeDown,
		control.EventMute, control.EventUnmute, control.EventPlayerStatus,
	}

	for _, typ := range types {
		t.Run(string(typ), func(t *testing.T) {
			payload, err := FormatPayload(control.Event{Timestamp: time.Now(), Type: typ})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var parsed Payload
			if err := json.Unmarshal(payload, &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if parsed.Player.Event != string(typ) {
				t.Errorf("event: got %s, want %s", parsed.Player.Event, typ)
			}
		})
	}
}

func TestTopics(t *testing.T) {
	if Topic != "dial-player/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "dial-player/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-03T10:00:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadReconnected(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"RECONNECTED"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestWillPayloadFormat(t *testing.T) {
	expected := `{"system":{"event":"OFFLINE","reason":"CONNECTION_LOST"}}`
	if got := string(willPayload()); got != expected {
		t.Errorf("unexpected will payload:\ngot:  %s\nwant: %s", got, expected)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	event := control.Event{Timestamp: time.Now(), Type: control.EventFolder, Folder: 2}
	if err := f.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.Events))
	}
	if f.Events[0].Type != control.EventFolder {
		t.Errorf("unexpected event type: %s", f.Events[0].Type)
	}
	if len(f.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(f.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")

	if err := f.Publish(control.Event{}); err == nil {
		t.Error("expected error")
	}
	if len(f.Events) != 0 {
		t.Error("failed publish should not be recorded")
	}

	f.PublishSystemError = errors.New("broker down")
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err == nil {
		t.Error("expected system error")
	}
}

func TestFakePublisherSystemAndReset(t *testing.T) {
	f := NewFakePublisher()
	f.Connected = true

	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true})
	f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "HEARTBEAT"})
	f.Publish(control.Event{Type: control.EventMute})
	f.Close()

	if len(f.SystemEvents) != 2 || !f.SystemEvents[0].Retained || f.SystemEvents[1].Retained {
		t.Errorf("unexpected system events %+v", f.SystemEvents)
	}
	if !f.IsConnected() || !f.Closed {
		t.Error("expected connected and closed")
	}

	f.Reset()
	if f.Events != nil || f.SystemEvents != nil || f.Payloads != nil || f.SystemPayloads != nil {
		t.Error("Reset should clear recorded events")
	}
	if f.Closed || f.Connected {
		t.Error("Reset should clear flags")
	}
}

// Package control maps rotary encoder input onto audio player commands.
// It owns no goroutines and never sleeps: the caller samples it once per
// polling loop iteration and time is always injected.
package control

import "time"

// Knob is a rotary encoder with push button, as read by the controller.
// *encoder.Encoder implements it.
type Knob interface {
	Sample()
	Name() string
	Position() int16
	PushButton() bool
	PositionChange() int16
	ButtonChange() int8
}

// EventType identifies something the controller did.
type EventType string

const (
	EventTrack        EventType = "TRACK"
	EventFolder       EventType = "FOLDER"
	EventVolumeUp     EventType = "VOLUME_UP"
	EventVolumeDown   EventType = "VOLUME_DOWN"
	EventMute         EventType = "MUTE"
	EventUnmute       EventType = "UNMUTE"
	EventPlayerStatus EventType = "PLAYER_STATUS"
)

// Track start reasons carried in Event.Reason.
const (
	ReasonStart    = "start"
	ReasonNext     = "next"
	ReasonFolder   = "folder"
	ReasonFinished = "finished"
)

// Event is a state change to be logged and published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Folder    int
	Track     int
	Volume    int
	Muted     bool
	// Reason is a track start reason, or the diagnostic text of a player status.
	Reason string
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Tracks        int
	FolderChanges int
	VolumeUp      int
	VolumeDown    int
	Mutes         int
	Unmutes       int
	PlayerStatus  int
	CommandErrors int
}

// KnobState is a point-in-time view of one knob.
type KnobState struct {
	Name     string
	Position int16
	Pressed  bool
}

// State is a point-in-time view of the controller.
type State struct {
	Ready       bool
	FolderCount int
	Folder      int
	Track       int
	Volume      int
	Muted       bool
	Knobs       []KnobState
	Counts      EventCounts
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}

// Config holds controller tunables.
type Config struct {
	// InitialVolume is set on the player at Start.
	InitialVolume int
	// UnmuteDelay is how long the mute line stays asserted after unmuting,
	// letting the amplifier settle before the output is released.
	UnmuteDelay time.Duration
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		InitialVolume: 1,
		UnmuteDelay:   100 * time.Millisecond,
	}
}

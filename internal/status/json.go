package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Ready         bool         `json:"ready"`
	Player        PlayerJSON   `json:"player"`
	Knobs         []KnobJSON   `json:"knobs"`
	ReadErrors    uint64       `json:"read_errors"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// PlayerJSON is the JSON representation of playback state.
type PlayerJSON struct {
	FolderCount int  `json:"folder_count"`
	Folder      int  `json:"folder"`
	Track       int  `json:"track"`
	Volume      int  `json:"volume"`
	Muted       bool `json:"muted"`
}

// KnobJSON is the JSON representation of one encoder.
type KnobJSON struct {
	Name     string `json:"name"`
	Position int16  `json:"position"`
	Pressed  bool   `json:"pressed"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Tracks        int `json:"tracks"`
	FolderChanges int `json:"folder_changes"`
	VolumeUp      int `json:"volume_up"`
	VolumeDown    int `json:"volume_down"`
	Mutes         int `json:"mutes"`
	Unmutes       int `json:"unmutes"`
	PlayerStatus  int `json:"player_status"`
	CommandErrors int `json:"command_errors"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker,omitempty"`
	HTTPAddr    string `json:"http_addr,omitempty"`
	Resolution  string `json:"resolution"`
}

func buildInner(snap Snapshot) StatusInner {
	p := snap.Player
	knobs := make([]KnobJSON, 0, len(p.Knobs))
	for _, k := range p.Knobs {
		knobs = append(knobs, KnobJSON{Name: k.Name, Position: k.Position, Pressed: k.Pressed})
	}

	return StatusInner{
		Ready: p.Ready,
		Player: PlayerJSON{
			FolderCount: p.FolderCount,
			Folder:      p.Folder,
			Track:       p.Track,
			Volume:      p.Volume,
			Muted:       p.Muted,
		},
		Knobs:         knobs,
		ReadErrors:    snap.ReadErrors,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Tracks:        p.Counts.Tracks,
			FolderChanges: p.Counts.FolderChanges,
			VolumeUp:      p.Counts.VolumeUp,
			VolumeDown:    p.Counts.VolumeDown,
			Mutes:         p.Counts.Mutes,
			Unmutes:       p.Counts.Unmutes,
			PlayerStatus:  p.Counts.PlayerStatus,
			CommandErrors: p.Counts.CommandErrors,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			Resolution:  snap.Config.Resolution,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

// Package config loads the dial-player configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/sweeney/dial-player/internal/audio"
	"github.com/sweeney/dial-player/internal/control"
	"github.com/sweeney/dial-player/internal/encoder"
	"github.com/sweeney/dial-player/internal/gpio"
)

// Config is the top-level configuration.
type Config struct {
	Chip string `yaml:"chip"`

	Folder EncoderConfig `yaml:"folder"`
	Volume EncoderConfig `yaml:"volume"`

	// MutePin drives the amplifier mute line. Negative disables it.
	MutePin int `yaml:"mute_pin"`

	Debounce   time.Duration `yaml:"debounce"`
	Resolution string        `yaml:"resolution"`
	Poll       time.Duration `yaml:"poll"`
	Heartbeat  time.Duration `yaml:"heartbeat"`

	MQTT  MQTTConfig  `yaml:"mqtt"`
	Audio AudioConfig `yaml:"audio"`

	// HTTPAddr is the status server address, empty to disable.
	HTTPAddr string `yaml:"http"`

	Diag DiagConfig `yaml:"diag"`

	InitialVolume int           `yaml:"initial_volume"`
	UnmuteDelay   time.Duration `yaml:"unmute_delay"`
}

// EncoderConfig holds the BCM pin numbers of one rotary encoder.
type EncoderConfig struct {
	A      int `yaml:"a"`
	B      int `yaml:"b"`
	Button int `yaml:"button"`
}

// MQTTConfig holds MQTT broker connection settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// AudioConfig holds settings for the MQTT-bridged audio module.
type AudioConfig struct {
	TopicPrefix string        `yaml:"topic_prefix"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DiagConfig holds the serial diagnostics console settings.
type DiagConfig struct {
	// Device is the serial device path, empty to disable.
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// Default returns the built-in configuration.
func Default() Config {
	ctl := control.DefaultConfig()
	return Config{
		Chip: gpio.DefaultChip,
		Folder: EncoderConfig{
			A:      gpio.DefaultFolderA,
			B:      gpio.DefaultFolderB,
			Button: gpio.DefaultFolderButton,
		},
		Volume: EncoderConfig{
			A:      gpio.DefaultVolumeA,
			B:      gpio.DefaultVolumeB,
			Button: gpio.DefaultVolumeButton,
		},
		MutePin:    gpio.DefaultMutePin,
		Debounce:   encoder.DefaultDebounce,
		Resolution: encoder.ResolutionDetent.String(),
		Poll:       2 * time.Millisecond,
		Heartbeat:  15 * time.Minute,
		MQTT: MQTTConfig{
			Broker:   "tcp://192.168.1.200:1883",
			ClientID: "dial-player",
		},
		Audio: AudioConfig{
			TopicPrefix: audio.DefaultTopicPrefix,
			Timeout:     5 * time.Second,
		},
		HTTPAddr:      ":80",
		Diag:          DiagConfig{Baud: 115200},
		InitialVolume: ctl.InitialVolume,
		UnmuteDelay:   ctl.UnmuteDelay,
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first configuration error found.
func (c Config) Validate() error {
	if c.Poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.Poll)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %v", c.Debounce)
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat)
	}
	if c.UnmuteDelay < 0 {
		return fmt.Errorf("unmute delay must not be negative, got %v", c.UnmuteDelay)
	}
	if c.InitialVolume < 0 || c.InitialVolume > audio.MaxVolume {
		return fmt.Errorf("initial volume %d out of range [0, %d]", c.InitialVolume, audio.MaxVolume)
	}
	if _, err := encoder.ParseResolution(c.Resolution); err != nil {
		return err
	}
	if c.Diag.Device != "" && c.Diag.Baud <= 0 {
		return fmt.Errorf("diag baud must be positive, got %d", c.Diag.Baud)
	}

	pins := []struct {
		role string
		pin  int
	}{
		{"folder a", c.Folder.A},
		{"folder b", c.Folder.B},
		{"folder button", c.Folder.Button},
		{"volume a", c.Volume.A},
		{"volume b", c.Volume.B},
		{"volume button", c.Volume.Button},
	}
	if c.MutePin >= 0 {
		pins = append(pins, struct {
			role string
			pin  int
		}{"mute", c.MutePin})
	}

	seen := make(map[int]string)
	for _, p := range pins {
		if p.pin < 0 {
			return fmt.Errorf("%s pin must not be negative, got %d", p.role, p.pin)
		}
		if other, ok := seen[p.pin]; ok {
			return fmt.Errorf("pin %d used for both %s and %s", p.pin, other, p.role)
		}
		seen[p.pin] = p.role
	}
	return nil
}

// FolderPins returns the folder encoder pins.
func (c Config) FolderPins() encoder.Pins {
	return encoder.Pins{A: c.Folder.A, B: c.Folder.B, Button: c.Folder.Button}
}

// VolumePins returns the volume encoder pins.
func (c Config) VolumePins() encoder.Pins {
	return encoder.Pins{A: c.Volume.A, B: c.Volume.B, Button: c.Volume.Button}
}

// Encoder returns the encoder tunables for the named knob.
// Validate must have succeeded.
func (c Config) Encoder(name string) encoder.Config {
	res, _ := encoder.ParseResolution(c.Resolution)
	return encoder.Config{Name: name, Debounce: c.Debounce, Resolution: res}
}

// ControlConfig returns the controller tunables.
func (c Config) ControlConfig() control.Config {
	return control.Config{InitialVolume: c.InitialVolume, UnmuteDelay: c.UnmuteDelay}
}

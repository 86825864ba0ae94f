package audio

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTopicPrefix is the topic root shared with the audio module bridge.
const DefaultTopicPrefix = "dial-player/audio"

// statusQueueSize bounds status messages waiting for Poll.
const statusQueueSize = 32

// commandPublisher is the subset of paho.Client used to send commands.
type commandPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// CommandPayload is the JSON command sent to the audio module bridge.
type CommandPayload struct {
	Command string `json:"command"`
	Folder  int    `json:"folder,omitempty"`
	Track   int    `json:"track,omitempty"`
	Level   *int   `json:"level,omitempty"`
}

// StatusPayload is the JSON status message received from the bridge.
type StatusPayload struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// LibraryPayload is the retained JSON message describing the card contents.
// Folders[i] is the number of tracks in folder i+1.
type LibraryPayload struct {
	Folders []int `json:"folders"`
}

// MQTTPlayer drives an audio module through an MQTT bridge process that owns
// the module's serial link.
type MQTTPlayer struct {
	client  paho.Client
	pub     commandPublisher
	prefix  string
	timeout time.Duration

	mu      sync.Mutex
	folders []int
	ready   chan struct{}
	once    sync.Once

	status chan Status
}

// NewMQTTPlayer connects to broker and subscribes to the bridge's status and
// library topics under prefix.
func NewMQTTPlayer(broker, clientID, prefix string, timeout time.Duration) (*MQTTPlayer, error) {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	p := newMQTTPlayer(nil, prefix, timeout)

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.subscribe)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	p.client = client
	p.pub = client
	return p, nil
}

func newMQTTPlayer(pub commandPublisher, prefix string, timeout time.Duration) *MQTTPlayer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MQTTPlayer{
		pub:     pub,
		prefix:  prefix,
		timeout: timeout,
		ready:   make(chan struct{}),
		status:  make(chan Status, statusQueueSize),
	}
}

// subscribe runs on every (re)connect.
func (p *MQTTPlayer) subscribe(c paho.Client) {
	if t := c.Subscribe(p.prefix+"/status", 1, p.handleStatus); t.WaitTimeout(p.timeout) && t.Error() != nil {
		log.Printf("audio: subscribe status: %v", t.Error())
	}
	if t := c.Subscribe(p.prefix+"/library", 1, p.handleLibrary); t.WaitTimeout(p.timeout) && t.Error() != nil {
		log.Printf("audio: subscribe library: %v", t.Error())
	}
}

func (p *MQTTPlayer) handleStatus(_ paho.Client, msg paho.Message) {
	var sp StatusPayload
	if err := json.Unmarshal(msg.Payload(), &sp); err != nil {
		log.Printf("audio: bad status payload: %v", err)
		return
	}
	select {
	case p.status <- Status{Type: StatusType(sp.Type), Value: sp.Value}:
	default:
		log.Printf("audio: status queue full, dropping %s", sp.Type)
	}
}

func (p *MQTTPlayer) handleLibrary(_ paho.Client, msg paho.Message) {
	var lp LibraryPayload
	if err := json.Unmarshal(msg.Payload(), &lp); err != nil {
		log.Printf("audio: bad library payload: %v", err)
		return
	}
	p.mu.Lock()
	p.folders = lp.Folders
	p.mu.Unlock()
	p.once.Do(func() { close(p.ready) })
}

func (p *MQTTPlayer) library() ([]int, error) {
	select {
	case <-p.ready:
	case <-time.After(p.timeout):
		return nil, ErrNoLibrary
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.folders, nil
}

// FolderCount waits for the library message and returns its folder count.
func (p *MQTTPlayer) FolderCount() (int, error) {
	folders, err := p.library()
	if err != nil {
		return 0, err
	}
	return len(folders), nil
}

// TrackCount returns the number of tracks in folder.
func (p *MQTTPlayer) TrackCount(folder int) (int, error) {
	folders, err := p.library()
	if err != nil {
		return 0, err
	}
	if folder < 1 || folder > len(folders) {
		return 0, fmt.Errorf("folder %d out of range 1..%d", folder, len(folders))
	}
	return folders[folder-1], nil
}

// Play starts track in folder.
func (p *MQTTPlayer) Play(folder, track int) error {
	return p.send(CommandPayload{Command: "play", Folder: folder, Track: track})
}

// VolumeUp raises the volume one step.
func (p *MQTTPlayer) VolumeUp() error {
	return p.send(CommandPayload{Command: "volume_up"})
}

// VolumeDown lowers the volume one step.
func (p *MQTTPlayer) VolumeDown() error {
	return p.send(CommandPayload{Command: "volume_down"})
}

// SetVolume sets an absolute volume.
func (p *MQTTPlayer) SetVolume(level int) error {
	if level < 0 || level > MaxVolume {
		return fmt.Errorf("volume %d out of range 0..%d", level, MaxVolume)
	}
	return p.send(CommandPayload{Command: "set_volume", Level: &level})
}

func (p *MQTTPlayer) send(cmd CommandPayload) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("format command: %w", err)
	}

	// QoS 1: a lost volume or play command is noticeable to the listener
	token := p.pub.Publish(p.prefix+"/command", 1, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("%s: publish timeout", cmd.Command)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%s: %w", cmd.Command, err)
	}
	return nil
}

// Poll returns the next queued status message, if any.
func (p *MQTTPlayer) Poll() (Status, bool) {
	select {
	case s := <-p.status:
		return s, true
	default:
		return Status{}, false
	}
}

// Close disconnects from the broker.
func (p *MQTTPlayer) Close() error {
	if p.client != nil {
		p.client.Disconnect(1000)
	}
	return nil
}

package audio

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// doneToken is an already-completed paho.Token.
type doneToken struct {
	err     error
	timeout bool
}

func (t doneToken) Wait() bool                     { return !t.timeout }
func (t doneToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeCommandPublisher struct {
	msgs  []published
	token doneToken
}

func (f *fakeCommandPublisher) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	f.msgs = append(f.msgs, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return f.token
}

// fakeMessage implements paho.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestMQTTPlayerCommands(t *testing.T) {
	pub := &fakeCommandPublisher{}
	p := newMQTTPlayer(pub, "test/audio", time.Second)

	if err := p.Play(3, 7); err != nil {
		t.Fatalf("Play: %v", err)
	}
	p.VolumeUp()
	p.VolumeDown()
	if err := p.SetVolume(0); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}

	if len(pub.msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(pub.msgs))
	}
	for _, m := range pub.msgs {
		if m.topic != "test/audio/command" {
			t.Errorf("unexpected topic %q", m.topic)
		}
		if m.qos != 1 {
			t.Errorf("expected QoS 1, got %d", m.qos)
		}
	}

	var play CommandPayload
	if err := json.Unmarshal(pub.msgs[0].payload, &play); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if play.Command != "play" || play.Folder != 3 || play.Track != 7 {
		t.Errorf("unexpected play payload: %+v", play)
	}

	var up CommandPayload
	json.Unmarshal(pub.msgs[1].payload, &up)
	if up.Command != "volume_up" {
		t.Errorf("unexpected command %q", up.Command)
	}

	var set map[string]interface{}
	json.Unmarshal(pub.msgs[3].payload, &set)
	if set["command"] != "set_volume" {
		t.Errorf("unexpected command %v", set["command"])
	}
	if lvl, ok := set["level"]; !ok || lvl.(float64) != 0 {
		t.Errorf("expected explicit level 0, got %v", set["level"])
	}
}

func TestMQTTPlayerSetVolumeRange(t *testing.T) {
	p := newMQTTPlayer(&fakeCommandPublisher{}, "x", time.Second)
	if err := p.SetVolume(MaxVolume + 1); err == nil {
		t.Error("expected range error")
	}
	if err := p.SetVolume(-1); err == nil {
		t.Error("expected range error")
	}
}

func TestMQTTPlayerCommandErrors(t *testing.T) {
	pub := &fakeCommandPublisher{token: doneToken{err: errors.New("refused")}}
	p := newMQTTPlayer(pub, "x", time.Second)
	if err := p.VolumeUp(); err == nil {
		t.Error("expected publish error")
	}

	pub.token = doneToken{timeout: true}
	if err := p.VolumeUp(); err == nil {
		t.Error("expected timeout error")
	}
}

func TestMQTTPlayerLibrary(t *testing.T) {
	p := newMQTTPlayer(&fakeCommandPublisher{}, "x", 50*time.Millisecond)

	if _, err := p.FolderCount(); !errors.Is(err, ErrNoLibrary) {
		t.Fatalf("expected ErrNoLibrary before library, got %v", err)
	}

	p.handleLibrary(nil, fakeMessage{topic: "x/library", payload: []byte(`{"folders":[12,30,4]}`)})

	n, err := p.FolderCount()
	if err != nil || n != 3 {
		t.Fatalf("FolderCount: got (%d, %v)", n, err)
	}
	n, err = p.TrackCount(2)
	if err != nil || n != 30 {
		t.Errorf("TrackCount(2): got (%d, %v)", n, err)
	}
	if _, err := p.TrackCount(4); err == nil {
		t.Error("expected out of range error")
	}

	// A later library update replaces the first.
	p.handleLibrary(nil, fakeMessage{payload: []byte(`{"folders":[1]}`)})
	if n, _ := p.FolderCount(); n != 1 {
		t.Errorf("expected updated count 1, got %d", n)
	}

	// Garbage is ignored.
	p.handleLibrary(nil, fakeMessage{payload: []byte(`not json`)})
	if n, _ := p.FolderCount(); n != 1 {
		t.Errorf("bad payload changed library: %d", n)
	}
}

func TestMQTTPlayerStatusQueue(t *testing.T) {
	p := newMQTTPlayer(&fakeCommandPublisher{}, "x", time.Second)

	if _, ok := p.Poll(); ok {
		t.Fatal("expected empty poll")
	}

	p.handleStatus(nil, fakeMessage{payload: []byte(`{"type":"PLAY_FINISHED","value":9}`)})
	p.handleStatus(nil, fakeMessage{payload: []byte(`{{`)})
	p.handleStatus(nil, fakeMessage{payload: []byte(`{"type":"CARD_REMOVED"}`)})

	s, ok := p.Poll()
	if !ok || s.Type != StatusPlayFinished || s.Value != 9 {
		t.Errorf("first poll: got %+v %v", s, ok)
	}
	s, ok = p.Poll()
	if !ok || s.Type != StatusCardRemoved {
		t.Errorf("second poll: got %+v %v", s, ok)
	}
	if _, ok := p.Poll(); ok {
		t.Error("expected queue drained")
	}
}

func TestMQTTPlayerStatusOverflow(t *testing.T) {
	p := newMQTTPlayer(&fakeCommandPublisher{}, "x", time.Second)

	for i := 0; i < statusQueueSize+5; i++ {
		p.handleStatus(nil, fakeMessage{payload: []byte(`{"type":"TIME_OUT"}`)})
	}

	n := 0
	for {
		if _, ok := p.Poll(); !ok {
			break
		}
		n++
	}
	if n != statusQueueSize {
		t.Errorf("expected %d queued, got %d", statusQueueSize, n)
	}
}

func TestMQTTPlayerCloseWithoutClient(t *testing.T) {
	p := newMQTTPlayer(&fakeCommandPublisher{}, "x", time.Second)
	if err := p.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

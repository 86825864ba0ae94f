package control

import (
	"log"
	"math/rand"
	"time"

	"github.com/sweeney/dial-player/internal/audio"
	"github.com/sweeney/dial-player/internal/gpio"
)

// Controller turns knob movement and player status into player commands.
// The folder knob selects the folder (turn) and skips to another track
// (press); the volume knob changes volume (turn) and toggles mute (press).
type Controller struct {
	folderKnob Knob
	volumeKnob Knob
	player     audio.Player
	mute       gpio.Output
	cfg        Config
	rnd        *rand.Rand

	startTime     time.Time
	lastHeartbeat time.Time

	ready       bool
	folderCount int
	folder      int
	track       int
	volume      int
	muted       bool
	unmuteAt    time.Time // zero when no unmute is pending
	counts      EventCounts
}

// New creates a controller. The mute line is asserted (high) by Start and
// released once playback begins.
func New(folderKnob, volumeKnob Knob, player audio.Player, mute gpio.Output, cfg Config, rnd *rand.Rand, startTime time.Time) *Controller {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(startTime.UnixNano()))
	}
	return &Controller{
		folderKnob:    folderKnob,
		volumeKnob:    volumeKnob,
		player:        player,
		mute:          mute,
		cfg:           cfg,
		rnd:           rnd,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Start sets the initial volume, learns the library and starts a random
// track in a random folder. If no folders are found the controller stays
// idle until the player reports a card insertion.
func (c *Controller) Start(now time.Time) []Event {
	c.setMuteLine(true)
	c.muted = true

	if err := c.player.SetVolume(c.cfg.InitialVolume); err != nil {
		c.commandError("set volume", err)
	}
	c.volume = c.cfg.InitialVolume

	return c.learn(now)
}

func (c *Controller) learn(now time.Time) []Event {
	n, err := c.player.FolderCount()
	if err != nil || n <= 0 {
		log.Printf("control: no files or folders found (count=%d err=%v)", n, err)
		c.ready = false
		return nil
	}

	c.folderCount = n
	c.folder = 1 + c.rnd.Intn(n)
	c.ready = true
	log.Printf("control: %d folders found", n)

	var events []Event
	if ev, ok := c.playArbitraryTrack(now, ReasonStart); ok {
		events = append(events, ev)
	}

	c.muted = false
	c.unmuteAt = time.Time{}
	c.setMuteLine(false)
	return events
}

// Step runs one polling iteration. Both knobs are sampled before any of
// their changes are consumed, so one iteration sees a consistent snapshot.
func (c *Controller) Step(now time.Time) []Event {
	c.folderKnob.Sample()
	c.volumeKnob.Sample()

	var events []Event

	if !c.unmuteAt.IsZero() && !now.Before(c.unmuteAt) {
		c.unmuteAt = time.Time{}
		c.setMuteLine(false)
	}

	if s, ok := c.player.Poll(); ok {
		log.Printf("player: %s", s)
		c.counts.PlayerStatus++
		events = append(events, c.event(now, EventPlayerStatus, s.String()))
		if s.NeedsRestart() {
			if c.ready {
				if ev, ok := c.playArbitraryTrack(now, ReasonFinished); ok {
					events = append(events, ev)
				}
			} else if s.Type == audio.StatusCardInserted {
				events = append(events, c.learn(now)...)
			}
		}
	}

	// Changes are always drained so movement while idle is not replayed later.
	folderButton := c.folderKnob.ButtonChange()
	folderChange := c.folderKnob.PositionChange()
	volumeChange := c.volumeKnob.PositionChange()
	volumeButton := c.volumeKnob.ButtonChange()

	if c.ready && folderButton > 0 {
		if ev, ok := c.playArbitraryTrack(now, ReasonNext); ok {
			events = append(events, ev)
		}
	}

	if c.ready && folderChange != 0 {
		c.stepFolder(folderChange > 0)
		c.counts.FolderChanges++
		log.Printf("control: folder %d of %d", c.folder, c.folderCount)
		events = append(events, c.event(now, EventFolder, ""))
		if ev, ok := c.playArbitraryTrack(now, ReasonFolder); ok {
			events = append(events, ev)
		}
	}

	if volumeChange > 0 {
		if err := c.player.VolumeUp(); err != nil {
			c.commandError("volume up", err)
		} else {
			if c.volume < audio.MaxVolume {
				c.volume++
			}
			c.counts.VolumeUp++
			log.Printf("control: volume up (%d)", c.volume)
			events = append(events, c.event(now, EventVolumeUp, ""))
		}
	} else if volumeChange < 0 {
		if err := c.player.VolumeDown(); err != nil {
			c.commandError("volume down", err)
		} else {
			if c.volume > 0 {
				c.volume--
			}
			c.counts.VolumeDown++
			log.Printf("control: volume down (%d)", c.volume)
			events = append(events, c.event(now, EventVolumeDown, ""))
		}
	}

	if volumeButton > 0 {
		events = append(events, c.toggleMute(now))
	}

	return events
}

// stepFolder moves one folder forward or back, wrapping over [1, folderCount].
func (c *Controller) stepFolder(forward bool) {
	if forward {
		c.folder++
	} else {
		c.folder--
	}
	if c.folder < 1 {
		c.folder = c.folderCount
	}
	if c.folder > c.folderCount {
		c.folder = 1
	}
}

func (c *Controller) playArbitraryTrack(now time.Time, reason string) (Event, bool) {
	n, err := c.player.TrackCount(c.folder)
	if err != nil {
		c.commandError("track count", err)
		return Event{}, false
	}
	if n <= 0 {
		log.Printf("control: folder %d is empty", c.folder)
		return Event{}, false
	}

	track := 1 + c.rnd.Intn(n)
	log.Printf("control: playing track %d in folder %d (%s)", track, c.folder, reason)
	if err := c.player.Play(c.folder, track); err != nil {
		c.commandError("play", err)
		return Event{}, false
	}
	c.track = track
	c.counts.Tracks++
	return c.event(now, EventTrack, reason), true
}

func (c *Controller) toggleMute(now time.Time) Event {
	c.muted = !c.muted
	if c.muted {
		c.unmuteAt = time.Time{}
		c.setMuteLine(true)
		c.counts.Mutes++
		log.Printf("control: muted")
		return c.event(now, EventMute, "")
	}

	if c.cfg.UnmuteDelay > 0 {
		c.unmuteAt = now.Add(c.cfg.UnmuteDelay)
	} else {
		c.setMuteLine(false)
	}
	c.counts.Unmutes++
	log.Printf("control: unmuted")
	return c.event(now, EventUnmute, "")
}

func (c *Controller) setMuteLine(high bool) {
	if c.mute == nil {
		return
	}
	if err := c.mute.Set(high); err != nil {
		c.commandError("mute line", err)
	}
}

func (c *Controller) commandError(what string, err error) {
	c.counts.CommandErrors++
	log.Printf("control: %s: %v", what, err)
}

func (c *Controller) event(now time.Time, typ EventType, reason string) Event {
	return Event{
		Timestamp: now,
		Type:      typ,
		Folder:    c.folder,
		Track:     c.track,
		Volume:    c.volume,
		Muted:     c.muted,
		Reason:    reason,
	}
}

// IsReady reports whether a library was found and playback started.
func (c *Controller) IsReady() bool {
	return c.ready
}

// State returns a snapshot of the controller and both knobs.
func (c *Controller) State() State {
	return State{
		Ready:       c.ready,
		FolderCount: c.folderCount,
		Folder:      c.folder,
		Track:       c.track,
		Volume:      c.volume,
		Muted:       c.muted,
		Knobs: []KnobState{
			knobState(c.folderKnob),
			knobState(c.volumeKnob),
		},
		Counts: c.counts,
	}
}

func knobState(k Knob) KnobState {
	return KnobState{
		Name:     k.Name(),
		Position: k.Position(),
		Pressed:  !k.PushButton(),
	}
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
	}
}

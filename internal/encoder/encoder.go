package encoder

import (
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/dial-player/internal/gpio"
)

// Encoder tracks the position and button state of one rotary encoder.
// Not safe for concurrent use; it is owned by the polling loop.
type Encoder struct {
	name       string
	in         gpio.Input
	pins       Pins
	now        func() time.Time
	debounce   time.Duration
	resolution Resolution

	// Quadrature state
	prevAB   uint8
	pending  int
	counter  int16
	reported int16

	// Button state (true = released)
	lastRaw        bool
	lastTransition time.Time
	button         bool
	reportedButton bool

	readErrors uint64
}

// New configures the three pins as pulled-up inputs and returns an encoder
// at position 0 with the button released.
func New(in gpio.Input, pins Pins, cfg Config, now func() time.Time) (*Encoder, error) {
	if err := validatePins(pins); err != nil {
		return nil, err
	}
	if cfg.Debounce < 0 {
		return nil, fmt.Errorf("negative debounce %v", cfg.Debounce)
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if now == nil {
		now = time.Now
	}

	for _, p := range []struct {
		role string
		pin  int
	}{{"A", pins.A}, {"B", pins.B}, {"button", pins.Button}} {
		if err := in.Configure(p.pin); err != nil {
			return nil, fmt.Errorf("configure %s pin %d: %w", p.role, p.pin, err)
		}
	}

	e := &Encoder{
		name:           cfg.Name,
		in:             in,
		pins:           pins,
		now:            now,
		debounce:       cfg.Debounce,
		resolution:     cfg.Resolution,
		prevAB:         restState,
		lastRaw:        true,
		button:         true,
		reportedButton: true,
		lastTransition: now(),
	}
	// Seed from the actual channel levels so the first Sample does not see
	// a phantom transition.
	e.prevAB = e.readAB()
	return e, nil
}

func validatePins(p Pins) error {
	if p.A < 0 || p.B < 0 || p.Button < 0 {
		return fmt.Errorf("invalid pins A=%d B=%d button=%d", p.A, p.B, p.Button)
	}
	if p.A == p.B || p.A == p.Button || p.B == p.Button {
		return errors.New("encoder pins must be distinct")
	}
	return nil
}

// Sample reads the current pin levels into the encoder's model: quadrature
// first, then the button. Call it once per polling loop iteration.
func (e *Encoder) Sample() {
	e.sampleAB()
	e.sampleButton(e.now())
}

func (e *Encoder) sampleAB() {
	cur := e.readAB()
	step := transitions[e.prevAB<<2|cur]
	e.prevAB = cur

	if e.resolution == ResolutionQuarter {
		e.counter += int16(step)
		return
	}

	e.pending += int(step)
	if e.pending > maxPending {
		e.pending = maxPending
	} else if e.pending < -maxPending {
		e.pending = -maxPending
	}
	if cur != restState {
		return
	}
	switch {
	case e.pending > 0:
		e.counter++
	case e.pending < 0:
		e.counter--
	}
	e.pending = 0
}

// readAB returns the 2-bit channel state. A failed read keeps that channel's
// previous level.
func (e *Encoder) readAB() uint8 {
	var ab uint8
	a, err := e.in.Read(e.pins.A)
	if err != nil {
		e.readErrors++
		a = e.prevAB&0b10 != 0
	}
	b, err := e.in.Read(e.pins.B)
	if err != nil {
		e.readErrors++
		b = e.prevAB&0b01 != 0
	}
	if a {
		ab |= 0b10
	}
	if b {
		ab |= 0b01
	}
	return ab
}

func (e *Encoder) sampleButton(now time.Time) {
	raw, err := e.in.Read(e.pins.Button)
	if err != nil {
		e.readErrors++
		raw = e.lastRaw
	}

	if raw != e.lastRaw {
		e.lastRaw = raw
		e.lastTransition = now
	}

	if raw != e.button && now.Sub(e.lastTransition) >= e.debounce {
		e.button = raw
	}
}

// Position returns the raw position counter.
func (e *Encoder) Position() int16 {
	return e.counter
}

// PushButton returns the debounced button state (true = released).
func (e *Encoder) PushButton() bool {
	return e.button
}

// PositionChange returns the movement since the previous call and resets the
// baseline, so each step is reported exactly once.
func (e *Encoder) PositionChange() int16 {
	d := e.counter - e.reported
	e.reported = e.counter
	return d
}

// ButtonChange reports a debounced button edge since the previous call:
// +1 when the button became pressed, -1 when it became released, 0 otherwise.
func (e *Encoder) ButtonChange() int8 {
	if e.button == e.reportedButton {
		return 0
	}
	e.reportedButton = e.button
	if !e.button {
		return 1
	}
	return -1
}

// Name returns the configured label.
func (e *Encoder) Name() string {
	return e.name
}

// Pins returns the pin assignment.
func (e *Encoder) Pins() Pins {
	return e.pins
}

// ReadErrors returns the number of failed pin reads since construction.
func (e *Encoder) ReadErrors() uint64 {
	return e.readErrors
}

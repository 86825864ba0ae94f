// Package encoder decodes a mechanical rotary encoder with an integrated
// push button (KY-040 style) from polled pin levels.
// It has no timers or goroutines of its own: the caller drives it by calling
// Sample at a steady rate and injects the clock used for button debounce.
package encoder

import (
	"fmt"
	"time"
)

// DefaultDebounce is the time the raw button level must hold before it is
// accepted as the stable button state.
const DefaultDebounce = 100 * time.Millisecond

// restState is the channel state of an encoder resting in a detent:
// both contacts open, both lines pulled high.
const restState uint8 = 0b11

// maxPending bounds the sub-detent accumulator when the rest state is
// never observed (sampling far too slowly).
const maxPending = 4

// transitions maps a 4-bit code (previous A,B << 2 | current A,B) to a
// quarter-step movement. Gray-code order clockwise is 11 -> 01 -> 00 -> 10 -> 11.
//
// The eight adjacent-state transitions are +1 or -1. The four no-change codes
// and the four codes that jump straight to the opposite state (both lines
// changed between samples, so direction is unknowable) are 0.
var transitions = [16]int8{
	0b0000: 0,  // no change
	0b0001: -1, // 00 -> 01
	0b0010: +1, // 00 -> 10
	0b0011: 0,  // 00 -> 11 skip
	0b0100: +1, // 01 -> 00
	0b0101: 0,  // no change
	0b0110: 0,  // 01 -> 10 skip
	0b0111: -1, // 01 -> 11
	0b1000: -1, // 10 -> 00
	0b1001: 0,  // 10 -> 01 skip
	0b1010: 0,  // no change
	0b1011: +1, // 10 -> 11
	0b1100: 0,  // 11 -> 00 skip
	0b1101: +1, // 11 -> 01
	0b1110: -1, // 11 -> 10
	0b1111: 0,  // no change
}

// Resolution selects how quarter steps are turned into counter movement.
type Resolution int

const (
	// ResolutionDetent counts one per mechanical detent: quarter steps are
	// accumulated and committed when the encoder settles back in the rest
	// state. A wiggle that returns to rest without net movement counts nothing.
	ResolutionDetent Resolution = iota

	// ResolutionQuarter counts every valid transition.
	ResolutionQuarter
)

func (r Resolution) String() string {
	switch r {
	case ResolutionDetent:
		return "detent"
	case ResolutionQuarter:
		return "quarter"
	}
	return "unknown"
}

// ParseResolution parses "detent" or "quarter". An empty string selects
// ResolutionDetent.
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "", "detent":
		return ResolutionDetent, nil
	case "quarter":
		return ResolutionQuarter, nil
	}
	return ResolutionDetent, fmt.Errorf("unknown resolution %q", s)
}

// Pins holds the three input pins of one encoder.
type Pins struct {
	A      int // channel A (KY-040 CLK)
	B      int // channel B (KY-040 DT)
	Button int // push button (KY-040 SW), active low
}

// Config holds per-encoder tunables. Zero values select defaults.
type Config struct {
	Name       string
	Debounce   time.Duration
	Resolution Resolution
}

package gpio

import (
	"fmt"
	"sync"
)

// FakeInput is a test double that returns scripted pin levels.
// Unscripted configured pins read high, matching a pulled-up idle input.
type FakeInput struct {
	mu sync.Mutex

	// Configured tracks which pins were configured.
	Configured map[int]bool

	// levels holds the current level of each pin.
	levels map[int]bool

	// script holds queued levels per pin; each Read consumes one.
	// When the queue empties the last level sticks.
	script map[int][]bool

	// ReadError, if set, will be returned by Read().
	ReadError error

	// ConfigureError, if set, will be returned by Configure().
	ConfigureError error

	// Reads counts Read calls per pin.
	Reads map[int]int

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeInput creates a FakeInput with every pin idle high.
func NewFakeInput() *FakeInput {
	return &FakeInput{
		Configured: make(map[int]bool),
		levels:     make(map[int]bool),
		script:     make(map[int][]bool),
		Reads:      make(map[int]int),
	}
}

// Configure records the pin as configured.
func (f *FakeInput) Configure(pin int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ConfigureError != nil {
		return f.ConfigureError
	}
	f.Configured[pin] = true
	if _, ok := f.levels[pin]; !ok {
		f.levels[pin] = true
	}
	return nil
}

// Read returns the next scripted level for pin, or its current level.
func (f *FakeInput) Read(pin int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if !f.Configured[pin] {
		return false, fmt.Errorf("pin %d not configured", pin)
	}
	f.Reads[pin]++
	if q := f.script[pin]; len(q) > 0 {
		f.levels[pin] = q[0]
		f.script[pin] = q[1:]
	}
	return f.levels[pin], nil
}

// Set forces the current level of pin and drops any queued script.
func (f *FakeInput) Set(pin int, high bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels[pin] = high
	delete(f.script, pin)
}

// Queue appends levels to be returned by successive reads of pin.
func (f *FakeInput) Queue(pin int, levels ...bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script[pin] = append(f.script[pin], levels...)
}

// Close marks the input as closed.
func (f *FakeInput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// FakeOutput records the levels driven onto an output line.
type FakeOutput struct {
	// High is the current line level.
	High bool

	// History contains every level that was set, in order.
	History []bool

	// SetError, if set, will be returned by Set().
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeOutput creates a FakeOutput starting at the given level.
func NewFakeOutput(high bool) *FakeOutput {
	return &FakeOutput{High: high}
}

// Set records the level.
func (f *FakeOutput) Set(high bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.High = high
	f.History = append(f.History, high)
	return nil
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.Closed = true
	return nil
}

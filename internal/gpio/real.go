//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealInput reads pins from actual hardware using the Linux GPIO character device.
type RealInput struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

// NewRealInput opens the named GPIO chip (e.g. "gpiochip0").
func NewRealInput(chipName string) (*RealInput, error) {
	if chipName == "" {
		chipName = DefaultChip
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealInput{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line),
	}, nil
}

// Configure requests pin as an input with pull-up bias.
func (r *RealInput) Configure(pin int) error {
	if _, ok := r.lines[pin]; ok {
		return fmt.Errorf("pin %d already configured", pin)
	}
	line, err := r.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return fmt.Errorf("request pin %d: %w", pin, err)
	}
	r.lines[pin] = line
	return nil
}

// Read returns the raw level of pin.
func (r *RealInput) Read(pin int) (bool, error) {
	line, ok := r.lines[pin]
	if !ok {
		return false, fmt.Errorf("pin %d not configured", pin)
	}
	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return v != 0, nil
}

// Close releases all requested lines and the chip.
// Lines are left as inputs with pull-up so the encoder contacts idle high.
func (r *RealInput) Close() error {
	var errs []error
	for pin, line := range r.lines {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	r.lines = make(map[int]*gpiocdev.Line)
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealOutput drives a single line on actual hardware.
type RealOutput struct {
	line *gpiocdev.Line
}

// NewRealOutput requests pin on chipName as an output at the given level.
func NewRealOutput(chipName string, pin int, high bool) (*RealOutput, error) {
	if chipName == "" {
		chipName = DefaultChip
	}
	line, err := gpiocdev.RequestLine(chipName, pin, gpiocdev.AsOutput(levelValue(high)))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	return &RealOutput{line: line}, nil
}

// Set drives the line.
func (o *RealOutput) Set(high bool) error {
	if err := o.line.SetValue(levelValue(high)); err != nil {
		return fmt.Errorf("set pin %d: %w", o.line.Offset(), err)
	}
	return nil
}

// Close reconfigures the line as an input with pull-down before releasing it,
// matching the Pi boot default.
func (o *RealOutput) Close() error {
	var errs []error
	if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin: %w", err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func levelValue(high bool) int {
	if high {
		return 1
	}
	return 0
}

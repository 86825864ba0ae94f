// Package gpio provides digital pin access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Input reads digital input pins.
type Input interface {
	// Configure requests pin as an input with the internal pull-up enabled,
	// so an unconnected or open contact reads high.
	Configure(pin int) error

	// Read returns the raw level of a configured pin (true = high).
	Read(pin int) (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Output drives a single digital output line.
type Output interface {
	// Set drives the line high (true) or low (false).
	Set(high bool) error

	// Close releases GPIO resources.
	Close() error
}

// Default pin assignments (BCM numbering) for the two KY-040 style encoders
// and the amplifier mute line.
const (
	DefaultFolderA      = 17
	DefaultFolderB      = 27
	DefaultFolderButton = 22
	DefaultVolumeA      = 5
	DefaultVolumeB      = 6
	DefaultVolumeButton = 13
	DefaultMutePin      = 26
)

// DefaultChip is the GPIO character device used when none is configured.
const DefaultChip = "gpiochip0"

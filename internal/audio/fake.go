package audio

import "fmt"

// Command is a recorded Player call.
type Command struct {
	Name   string // "play", "volume_up", "volume_down", "set_volume"
	Folder int
	Track  int
	Level  int
}

// FakePlayer records commands for test assertions.
type FakePlayer struct {
	// Folders holds the track count of each folder; index 0 is folder 1.
	Folders []int

	// Commands contains every command issued, in order.
	Commands []Command

	// Pending holds status messages returned by Poll, oldest first.
	Pending []Status

	// LibraryError, if set, is returned by FolderCount and TrackCount.
	LibraryError error

	// CommandError, if set, is returned by every command.
	CommandError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePlayer creates a FakePlayer with the given per-folder track counts.
func NewFakePlayer(folders ...int) *FakePlayer {
	return &FakePlayer{Folders: folders}
}

// FolderCount returns len(Folders).
func (f *FakePlayer) FolderCount() (int, error) {
	if f.LibraryError != nil {
		return 0, f.LibraryError
	}
	return len(f.Folders), nil
}

// TrackCount returns the track count of folder.
func (f *FakePlayer) TrackCount(folder int) (int, error) {
	if f.LibraryError != nil {
		return 0, f.LibraryError
	}
	if folder < 1 || folder > len(f.Folders) {
		return 0, fmt.Errorf("folder %d out of range", folder)
	}
	return f.Folders[folder-1], nil
}

// Play records a play command.
func (f *FakePlayer) Play(folder, track int) error {
	return f.record(Command{Name: "play", Folder: folder, Track: track})
}

// VolumeUp records a volume up command.
func (f *FakePlayer) VolumeUp() error {
	return f.record(Command{Name: "volume_up"})
}

// VolumeDown records a volume down command.
func (f *FakePlayer) VolumeDown() error {
	return f.record(Command{Name: "volume_down"})
}

// SetVolume records a set volume command.
func (f *FakePlayer) SetVolume(level int) error {
	return f.record(Command{Name: "set_volume", Level: level})
}

func (f *FakePlayer) record(c Command) error {
	if f.CommandError != nil {
		return f.CommandError
	}
	f.Commands = append(f.Commands, c)
	return nil
}

// Poll pops the oldest pending status.
func (f *FakePlayer) Poll() (Status, bool) {
	if len(f.Pending) == 0 {
		return Status{}, false
	}
	s := f.Pending[0]
	f.Pending = f.Pending[1:]
	return s, true
}

// Push queues a status message for Poll.
func (f *FakePlayer) Push(s Status) {
	f.Pending = append(f.Pending, s)
}

// Close marks the player as closed.
func (f *FakePlayer) Close() error {
	f.Closed = true
	return nil
}

// Plays returns only the play commands.
func (f *FakePlayer) Plays() []Command {
	var out []Command
	for _, c := range f.Commands {
		if c.Name == "play" {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded commands and pending statuses.
func (f *FakePlayer) Reset() {
	f.Commands = nil
	f.Pending = nil
	f.CommandError = nil
	f.LibraryError = nil
	f.Closed = false
}

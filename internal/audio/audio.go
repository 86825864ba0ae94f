// Package audio defines the interface to the audio module that plays tracks
// from numbered folders, plus its status event taxonomy.
// Playback and the module's wire protocol live behind Player.
package audio

import (
	"errors"
	"fmt"
)

// MaxVolume is the highest volume level the audio module accepts.
const MaxVolume = 30

// ErrNoLibrary is returned when folder or track counts are unknown.
var ErrNoLibrary = errors.New("audio: library not available")

// Player drives an audio module. Folders and tracks are numbered from 1.
type Player interface {
	// FolderCount returns the number of playable folders.
	FolderCount() (int, error)

	// TrackCount returns the number of tracks in folder.
	TrackCount(folder int) (int, error)

	// Play starts track in folder.
	Play(folder, track int) error

	// VolumeUp raises the volume by one step.
	VolumeUp() error

	// VolumeDown lowers the volume by one step.
	VolumeDown() error

	// SetVolume sets an absolute volume in [0, MaxVolume].
	SetVolume(level int) error

	// Poll returns the next pending status message without blocking.
	Poll() (Status, bool)

	// Close releases the connection to the module.
	Close() error
}

// StatusType identifies an audio module status message.
type StatusType string

const (
	StatusTimeOut      StatusType = "TIME_OUT"
	StatusWrongStack   StatusType = "WRONG_STACK"
	StatusCardInserted StatusType = "CARD_INSERTED"
	StatusCardRemoved  StatusType = "CARD_REMOVED"
	StatusCardOnline   StatusType = "CARD_ONLINE"
	StatusUSBInserted  StatusType = "USB_INSERTED"
	StatusUSBRemoved   StatusType = "USB_REMOVED"
	StatusPlayFinished StatusType = "PLAY_FINISHED"
	StatusError        StatusType = "ERROR"
)

// Error codes carried in Status.Value when Type is StatusError.
const (
	ErrCodeBusy = iota + 1
	ErrCodeSleeping
	ErrCodeSerialWrongStack
	ErrCodeCheckSumNotMatch
	ErrCodeFileIndexOut
	ErrCodeFileMismatch
	ErrCodeAdvertise
)

// Status is one message from the audio module.
type Status struct {
	Type StatusType
	// Value is the finished track number for StatusPlayFinished and the
	// error code for StatusError.
	Value int
}

// NeedsRestart reports whether playback has stopped and a new track should
// be started: the track finished, the module reported an error, or a card
// was inserted.
func (s Status) NeedsRestart() bool {
	switch s.Type {
	case StatusPlayFinished, StatusError, StatusCardInserted:
		return true
	}
	return false
}

// String returns a human-readable diagnostic line.
func (s Status) String() string {
	switch s.Type {
	case StatusTimeOut:
		return "Time Out!"
	case StatusWrongStack:
		return "Stack Wrong!"
	case StatusCardInserted:
		return "Card Inserted!"
	case StatusCardRemoved:
		return "Card Removed!"
	case StatusCardOnline:
		return "Card Online!"
	case StatusUSBInserted:
		return "USB Inserted!"
	case StatusUSBRemoved:
		return "USB Removed!"
	case StatusPlayFinished:
		return fmt.Sprintf("Number:%d Play Finished!", s.Value)
	case StatusError:
		return "DFPlayerError:" + errorText(s.Value)
	}
	return fmt.Sprintf("unknown status %q (%d)", s.Type, s.Value)
}

func errorText(code int) string {
	switch code {
	case ErrCodeBusy:
		return "Card not found"
	case ErrCodeSleeping:
		return "Sleeping"
	case ErrCodeSerialWrongStack:
		return "Get Wrong Stack"
	case ErrCodeCheckSumNotMatch:
		return "Check Sum Not Match"
	case ErrCodeFileIndexOut:
		return "File Index Out of Bound"
	case ErrCodeFileMismatch:
		return "Cannot Find File"
	case ErrCodeAdvertise:
		return "In Advertise"
	}
	return fmt.Sprintf("code %d", code)
}

package audio

import (
	"errors"
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Status{Type: StatusTimeOut}, "Time Out!"},
		{Status{Type: StatusWrongStack}, "Stack Wrong!"},
		{Status{Type: StatusCardInserted}, "Card Inserted!"},
		{Status{Type: StatusCardRemoved}, "Card Removed!"},
		{Status{Type: StatusCardOnline}, "Card Online!"},
		{Status{Type: StatusUSBInserted}, "USB Inserted!"},
		{Status{Type: StatusUSBRemoved}, "USB Removed!"},
		{Status{Type: StatusPlayFinished, Value: 12}, "Number:12 Play Finished!"},
		{Status{Type: StatusError, Value: ErrCodeBusy}, "DFPlayerError:Card not found"},
		{Status{Type: StatusError, Value: ErrCodeSleeping}, "DFPlayerError:Sleeping"},
		{Status{Type: StatusError, Value: ErrCodeSerialWrongStack}, "DFPlayerError:Get Wrong Stack"},
		{Status{Type: StatusError, Value: ErrCodeCheckSumNotMatch}, "DFPlayerError:Check Sum Not Match"},
		{Status{Type: StatusError, Value: ErrCodeFileIndexOut}, "DFPlayerError:File Index Out of Bound"},
		{Status{Type: StatusError, Value: ErrCodeFileMismatch}, "DFPlayerError:Cannot Find File"},
		{Status{Type: StatusError, Value: ErrCodeAdvertise}, "DFPlayerError:In Advertise"},
		{Status{Type: StatusError, Value: 99}, "DFPlayerError:code 99"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusNeedsRestart(t *testing.T) {
	restart := map[StatusType]bool{
		StatusPlayFinished: true,
		StatusError:        true,
		StatusCardInserted: true,
	}
	all := []StatusType{
		StatusTimeOut, StatusWrongStack, StatusCardInserted, StatusCardRemoved,
		StatusCardOnline, StatusUSBInserted, StatusUSBRemoved, StatusPlayFinished, StatusError,
	}
	for _, st := range all {
		if got := (Status{Type: st}).NeedsRestart(); got != restart[st] {
			t.Errorf("%s: NeedsRestart=%v, want %v", st, got, restart[st])
		}
	}
}

func TestFakePlayer(t *testing.T) {
	f := NewFakePlayer(10, 20)

	n, err := f.FolderCount()
	if err != nil || n != 2 {
		t.Fatalf("FolderCount: got (%d, %v)", n, err)
	}
	n, err = f.TrackCount(2)
	if err != nil || n != 20 {
		t.Fatalf("TrackCount(2): got (%d, %v)", n, err)
	}
	if _, err := f.TrackCount(3); err == nil {
		t.Error("expected out of range error")
	}

	f.Play(1, 5)
	f.VolumeUp()
	f.SetVolume(7)

	if len(f.Commands) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(f.Commands))
	}
	if plays := f.Plays(); len(plays) != 1 || plays[0].Folder != 1 || plays[0].Track != 5 {
		t.Errorf("unexpected plays: %+v", plays)
	}

	if _, ok := f.Poll(); ok {
		t.Error("expected empty poll")
	}
	f.Push(Status{Type: StatusPlayFinished, Value: 5})
	s, ok := f.Poll()
	if !ok || s.Type != StatusPlayFinished {
		t.Errorf("unexpected poll: %+v %v", s, ok)
	}
}

func TestFakePlayerErrors(t *testing.T) {
	f := NewFakePlayer(1)
	f.CommandError = errors.New("no ack")
	if err := f.Play(1, 1); err == nil {
		t.Error("expected command error")
	}
	if len(f.Commands) != 0 {
		t.Error("failed command should not be recorded")
	}

	f.LibraryError = ErrNoLibrary
	if _, err := f.FolderCount(); !errors.Is(err, ErrNoLibrary) {
		t.Errorf("unexpected error: %v", err)
	}

	f.Reset()
	if f.CommandError != nil || f.LibraryError != nil {
		t.Error("Reset should clear errors")
	}
}

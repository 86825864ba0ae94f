package gpio

import (
	"errors"
	"testing"
)

func TestFakeInputIdleHigh(t *testing.T) {
	f := NewFakeInput()
	if err := f.Configure(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	level, err := f.Read(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !level {
		t.Error("configured pin should idle high")
	}
}

func TestFakeInputUnconfigured(t *testing.T) {
	f := NewFakeInput()

	if _, err := f.Read(4); err == nil {
		t.Error("expected error reading unconfigured pin")
	}
}

func TestFakeInputQueue(t *testing.T) {
	f := NewFakeInput()
	f.Configure(4)
	f.Queue(4, false, true, false)

	want := []bool{false, true, false, false}
	for i, w := range want {
		got, err := f.Read(4)
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d: expected %v, got %v", i, w, got)
		}
	}
	if f.Reads[4] != len(want) {
		t.Errorf("expected %d reads, got %d", len(want), f.Reads[4])
	}
}

func TestFakeInputSetDropsQueue(t *testing.T) {
	f := NewFakeInput()
	f.Configure(4)
	f.Queue(4, false, false)
	f.Set(4, true)

	got, _ := f.Read(4)
	if !got {
		t.Error("Set should override queued levels")
	}
}

func TestFakeInputErrors(t *testing.T) {
	f := NewFakeInput()
	f.ConfigureError = errors.New("busy")
	if err := f.Configure(4); err == nil {
		t.Error("expected configure error")
	}

	f.ConfigureError = nil
	f.Configure(4)
	f.ReadError = errors.New("simulated error")
	_, err := f.Read(4)
	if err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeInputClose(t *testing.T) {
	f := NewFakeInput()
	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeOutput(t *testing.T) {
	o := NewFakeOutput(true)
	o.Set(false)
	o.Set(true)

	if !o.High {
		t.Error("expected line high")
	}
	if len(o.History) != 2 || o.History[0] != false || o.History[1] != true {
		t.Errorf("unexpected history: %v", o.History)
	}

	o.SetError = errors.New("line gone")
	if err := o.Set(false); err == nil {
		t.Error("expected set error")
	}
	if !o.High {
		t.Error("failed Set should not change level")
	}
}

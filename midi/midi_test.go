package midi

import (
	"context"
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

func TestNoteTrigger(t *testing.T) {
	tests := []struct {
		note uint8
		want Trigger
	}{
		{36, Trigger{Kind: TriggerMotion}},
		{59, Trigger{Kind: TriggerMotion}},
		{60, Trigger{Kind: TriggerButton, Button: 1}},
		{63, Trigger{Kind: TriggerButton, Button: 4}},
		{64, Trigger{Kind: TriggerButton, Button: 1}},
		{74, Trigger{Kind: TriggerButton, Button: 3}},
	}
	for _, tt := range tests {
		if got := NoteTrigger(tt.note); got != tt.want {
			t.Errorf("NoteTrigger(%d) = %+v, want %+v", tt.note, got, tt.want)
		}
	}
}

func TestControlTrigger(t *testing.T) {
	if got := ControlTrigger(1, 64); got.Kind != TriggerNone {
		t.Errorf("mod wheel should be ignored, got %v", got.Kind)
	}
	if got := ControlTrigger(VolumeCC, 127); got.Kind != TriggerVolume || got.Volume != 1 {
		t.Errorf("full volume = %+v", got)
	}
	if got := ControlTrigger(VolumeCC, 0); got.Volume != 0 {
		t.Errorf("zero volume = %+v", got)
	}
}

func TestKeyboardHandle(t *testing.T) {
	kb := newKeyboard("test")
	kb.handle(gomidi.NoteOn(2, 61, 100))
	kb.handle(gomidi.NoteOn(2, 61, 0)) // note off in disguise
	kb.handle(gomidi.NoteOff(2, 61))
	kb.handle(gomidi.ControlChange(0, VolumeCC, 90))

	select {
	case ev := <-kb.NoteEvents():
		if ev != (NoteEvent{Note: 61, Velocity: 100, Channel: 2}) {
			t.Errorf("note event = %+v", ev)
		}
	default:
		t.Fatal("expected a note event")
	}
	select {
	case ev := <-kb.NoteEvents():
		t.Fatalf("unexpected note event %+v", ev)
	default:
	}
	select {
	case ev := <-kb.ControlEvents():
		if ev.Controller != VolumeCC || ev.Value != 90 {
			t.Errorf("control event = %+v", ev)
		}
	default:
		t.Fatal("expected a control event")
	}

	kb.Close()
	kb.handle(gomidi.NoteOn(0, 60, 1)) // must not panic after close
	if err := kb.Close(); err != nil {
		t.Fatal(err)
	}
}

// fakePort is a MIDI input that only has a name
type fakePort struct {
	drivers.In
	name string
}

func (p fakePort) String() string { return p.name }

type recordingTarget struct {
	mu      sync.Mutex
	motion  int
	buttons []int
	volume  float64
}

func (r *recordingTarget) TriggerPercussion(int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.motion++
}

func (r *recordingTarget) TriggerChordChange(b int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buttons = append(r.buttons, b)
}

func (r *recordingTarget) SetMasterVolume(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volume = v
}

func (r *recordingTarget) wait(t *testing.T, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		ok := done()
		r.mu.Unlock()
		if ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for triggers")
}

func testManager(target Target, ports *[]drivers.In) (*DeviceManager, map[string]*KeyboardController) {
	opened := make(map[string]*KeyboardController)
	dm := NewDeviceManager("Pads", target)
	dm.listPorts = func() []drivers.In { return *ports }
	dm.open = func(id string, in drivers.In) (Controller, error) {
		kb := newKeyboard(id)
		opened[id] = kb
		return kb, nil
	}
	return dm, opened
}

func TestDeviceManagerForwardsTriggers(t *testing.T) {
	target := &recordingTarget{volume: 1}
	ports := []drivers.In{fakePort{name: "MPD Pads MIDI 1"}, fakePort{name: "IAC Bus"}}
	dm, opened := testManager(target, &ports)

	dm.scan()
	if ids := dm.Controllers(); len(ids) != 1 || ids[0] != "MPD Pads MIDI 1" {
		t.Fatalf("controllers = %v", ids)
	}
	if ev := <-dm.Events(); ev.Type != DeviceConnected {
		t.Fatalf("event = %+v", ev)
	}

	kb := opened["MPD Pads MIDI 1"]
	kb.handle(gomidi.NoteOn(0, 40, 90))
	kb.handle(gomidi.NoteOn(0, 62, 90))
	kb.handle(gomidi.ControlChange(0, VolumeCC, 0))
	target.wait(t, func() bool {
		return target.motion == 1 && len(target.buttons) == 1 && target.volume == 0
	})
	if target.buttons[0] != 3 {
		t.Errorf("note 62 should be button 3, got %d", target.buttons[0])
	}

	// unplug
	ports = ports[1:]
	dm.scan()
	if len(dm.Controllers()) != 0 {
		t.Fatal("controller should be removed")
	}
	if ev := <-dm.Events(); ev.Type != DeviceDisconnected || ev.ID != "MPD Pads MIDI 1" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestDeviceManagerRunStops(t *testing.T) {
	target := &recordingTarget{}
	ports := []drivers.In{fakePort{name: "pads"}}
	dm, _ := testManager(target, &ports)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		dm.Run(ctx)
		close(done)
	}()

	if ev := <-dm.Events(); ev.Type != DeviceConnected || ev.ID != "pads" {
		t.Fatalf("event = %+v", ev)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
	if len(dm.Controllers()) != 0 {
		t.Fatal("controllers should be closed")
	}
	if _, ok := <-dm.Events(); ok {
		t.Fatal("events should be closed")
	}
}

package midi

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Notes from SplitNote upward act as buttons, notes below as motion
const SplitNote = 60

// VolumeCC is the channel volume controller, mapped to master volume
const VolumeCC = 7

// TriggerKind says what a MIDI message does to the music
type TriggerKind int

const (
	TriggerNone TriggerKind = iota
	TriggerMotion
	TriggerButton
	TriggerVolume
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerMotion:
		return "motion"
	case TriggerButton:
		return "button"
	case TriggerVolume:
		return "volume"
	}
	return "none"
}

// Trigger is a decoded MIDI message
type Trigger struct {
	Kind   TriggerKind
	Button int     // 1-4 for TriggerButton
	Volume float64 // 0-1 for TriggerVolume
}

// NoteTrigger maps a note: below SplitNote plays a random melody voice like
// motion does, SplitNote and up cycle through buttons 1-4.
func NoteTrigger(note uint8) Trigger {
	if note < SplitNote {
		return Trigger{Kind: TriggerMotion}
	}
	return Trigger{Kind: TriggerButton, Button: int(note-SplitNote)%4 + 1}
}

// ControlTrigger maps a control change. Only VolumeCC is used.
func ControlTrigger(controller, value uint8) Trigger {
	if controller != VolumeCC {
		return Trigger{}
	}
	return Trigger{Kind: TriggerVolume, Volume: float64(value) / 127}
}

// Apply sends the trigger to t
func (tr Trigger) Apply(t Target) {
	switch tr.Kind {
	case TriggerMotion:
		t.TriggerPercussion(0)
	case TriggerButton:
		t.TriggerChordChange(tr.Button)
	case TriggerVolume:
		t.SetMasterVolume(tr.Volume)
	}
}

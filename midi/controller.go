package midi

// NoteEvent is sent when a note is played on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// ControlEvent is sent when a knob or fader moves
type ControlEvent struct {
	Controller uint8
	Value      uint8
	Channel    uint8
}

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string

	// Input events from the controller
	NoteEvents() <-chan NoteEvent
	ControlEvents() <-chan ControlEvent

	// Lifecycle
	Close() error
}

// Target receives the triggers decoded from MIDI input
type Target interface {
	TriggerPercussion(sensorID int)
	TriggerChordChange(button int)
	SetMasterVolume(v float64)
}

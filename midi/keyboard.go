package midi

import (
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController handles a standard MIDI keyboard or pad controller
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	mu          sync.Mutex // guards closed and the sends
	closed      bool
	noteChan    chan NoteEvent
	controlChan chan ControlEvent
}

// NewKeyboardController creates a keyboard controller (input only)
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := newKeyboard(id)
	kb.inPort = inPort

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			kb.handle(msg)
		})
		if err != nil {
			return nil, fault.Wrap(err,
				fmsg.WithDesc("open input", "Could not open MIDI input "+id),
				ftag.With(ftag.Internal))
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func newKeyboard(id string) *KeyboardController {
	return &KeyboardController{
		id:          id,
		noteChan:    make(chan NoteEvent, 32),
		controlChan: make(chan ControlEvent, 32),
	}
}

// handle decodes one message. Events are dropped when nobody keeps up.
func (kb *KeyboardController) handle(msg gomidi.Message) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}

	var channel, a, b uint8
	switch {
	case msg.GetNoteOn(&channel, &a, &b) && b > 0:
		select {
		case kb.noteChan <- NoteEvent{Note: a, Velocity: b, Channel: channel}:
		default:
		}
	case msg.GetControlChange(&channel, &a, &b):
		select {
		case kb.controlChan <- ControlEvent{Controller: a, Value: b, Channel: channel}:
		default:
		}
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

func (kb *KeyboardController) ControlEvents() <-chan ControlEvent {
	return kb.controlChan
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return nil
	}
	kb.closed = true
	close(kb.noteChan)
	close(kb.controlChan)
	return nil
}

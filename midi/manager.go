package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"hue-ambient/debug"
)

// PortTimeout bounds a port listing (CoreMIDI can hang)
const PortTimeout = 3 * time.Second

var errPortTimeout = fault.Wrap(fault.New("midi port listing timed out"), ftag.With(ftag.Internal))

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type DeviceEventType
	ID   string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of MIDI inputs whose port name
// contains a configured substring, and forwards their triggers to a Target.
type DeviceManager struct {
	match  string
	target Target

	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
	wg          sync.WaitGroup

	// swapped in tests
	listPorts func() []drivers.In
	open      func(id string, in drivers.In) (Controller, error)
}

// NewDeviceManager creates a device manager. An empty match accepts every
// input port.
func NewDeviceManager(match string, target Target) *DeviceManager {
	return &DeviceManager{
		match:       strings.ToLower(match),
		target:      target,
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		listPorts:   func() []drivers.In { return gomidi.GetInPorts() },
		open: func(id string, in drivers.In) (Controller, error) {
			return NewKeyboardController(id, in)
		},
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns the IDs of connected controllers
func (dm *DeviceManager) Controllers() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	ids := make([]string, 0, len(dm.controllers))
	for id := range dm.controllers {
		ids = append(ids, id)
	}
	return ids
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			dm.wg.Wait()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) matches(name string) bool {
	return strings.Contains(strings.ToLower(name), dm.match)
}

func (dm *DeviceManager) scan() {
	inPorts, ok := dm.ports()
	if !ok {
		debug.Log("midi", "port listing timed out, skipping scan")
		return
	}

	// Build map of what we see now
	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		id := inPort.String()
		if !dm.matches(id) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		c, err := dm.open(id, inPort)
		if err != nil {
			debug.Log("midi", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()

		dm.wg.Add(1)
		go dm.forward(c)
		debug.Log("midi", "connected %s", id)
		dm.emit(DeviceEvent{Type: DeviceConnected, ID: id})
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.controllers[id].Close()
		delete(dm.controllers, id)
		debug.Log("midi", "disconnected %s", id)
		dm.emit(DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
	dm.mu.Unlock()
}

// ports lists inputs with a timeout
func (dm *DeviceManager) ports() ([]drivers.In, bool) {
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- dm.listPorts()
	}()

	select {
	case ports := <-ch:
		return ports, true
	case <-time.After(PortTimeout):
		return nil, false
	}
}

// forward applies a controller's triggers until it is closed
func (dm *DeviceManager) forward(c Controller) {
	defer dm.wg.Done()
	notes, controls := c.NoteEvents(), c.ControlEvents()
	for notes != nil || controls != nil {
		select {
		case ev, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			NoteTrigger(ev.Note).Apply(dm.target)
		case ev, ok := <-controls:
			if !ok {
				controls = nil
				continue
			}
			ControlTrigger(ev.Controller, ev.Value).Apply(dm.target)
		}
	}
}

// emit drops the event when nobody is listening
func (dm *DeviceManager) emit(ev DeviceEvent) {
	select {
	case dm.events <- ev:
	default:
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// ListPorts returns the names of all MIDI input ports
func ListPorts() ([]string, error) {
	ch := make(chan []string, 1)
	go func() {
		var names []string
		for _, in := range gomidi.GetInPorts() {
			names = append(names, in.String())
		}
		ch <- names
	}()

	select {
	case names := <-ch:
		return names, nil
	case <-time.After(PortTimeout):
		return nil, errPortTimeout
	}
}

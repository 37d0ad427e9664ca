package composer

import "slices"

// VoiceState is a read-only view of one melody voice
type VoiceState struct {
	SourceID   int
	Name       string
	Frequency  float64
	Envelope   float64
	Active     bool
	Pattern    StepPattern
	Instrument Instrument
}

// TriggerRecord is the most recent trigger of one kind. Value is the sensor
// id for motion (0 for any voice) and the button number for buttons.
type TriggerRecord struct {
	Fired bool
	Value int
	Beat  float64
}

// Snapshot is a deep copy of the composer state for display and the control API
type Snapshot struct {
	BPM  float64
	Beat float64

	DroneFrequencies []float64
	DroneAmplitudes  []float64
	DroneLFO         float64

	ArpPattern     int
	ArpPatternName string
	ArpNotes       []float64
	ArpCurrent     float64

	Voices []VoiceState

	KickEnvelope float64
	HatEnvelope  float64
	LastMotion   TriggerRecord
	LastButton   TriggerRecord

	Lamps   []TimbrePersonality
	Sensors []BehaviorPersonality

	AvgBattery     float64
	AvgVolatility  float64
	ArpSubdivision int
	MelodyInterval int
	Scale          ScaleKind
}

// Snapshot copies the current state. It holds the lock only for the copy.
func (c *Composer) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		BPM:              c.clock.BPM(),
		Beat:             c.clock.CurrentBeat(),
		DroneFrequencies: c.drone.Frequencies(),
		DroneAmplitudes:  c.drone.Amplitudes(),
		DroneLFO:         c.drone.LFO(),
		ArpPattern:       c.arp.Pattern(),
		ArpPatternName:   ArpPatterns[c.arp.Pattern()].Name,
		ArpNotes:         c.arp.Notes(),
		ArpCurrent:       c.arp.Current(),
		KickEnvelope:     c.percussion.KickEnvelope(),
		HatEnvelope:      c.percussion.HatEnvelope(),
		LastMotion:       c.lastMotion,
		LastButton:       c.lastButton,
		Lamps:            slices.Clone(c.lampPersonalities),
		Sensors:          slices.Clone(c.sensorPersonalities),
		AvgBattery:       c.avgBattery,
		AvgVolatility:    c.avgVolatility,
		ArpSubdivision:   c.arpSubdivision,
		MelodyInterval:   c.melodyInterval,
		Scale:            c.activeScale,
	}

	voices := c.melody.Voices()
	s.Voices = make([]VoiceState, 0, len(voices))
	for _, v := range voices {
		p := v.Personality()
		s.Voices = append(s.Voices, VoiceState{
			SourceID:   p.ID,
			Name:       p.Name,
			Frequency:  v.Frequency(),
			Envelope:   v.Envelope(),
			Active:     v.Active(),
			Pattern:    p.Pattern,
			Instrument: p.Instrument,
		})
	}
	return s
}

// ActiveVoices counts voices whose envelope is still audible
func (s Snapshot) ActiveVoices() int {
	n := 0
	for _, v := range s.Voices {
		if v.Active {
			n++
		}
	}
	return n
}

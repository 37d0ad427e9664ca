package api

import (
	"time"

	"hue-ambient/composer"
	"hue-ambient/engine"
)

// Status is the JSON body of GET /status
type Status struct {
	Source    string    `json:"source"` // "mock" without a bridge
	LastPoll  time.Time `json:"lastPoll"`
	PollCount int       `json:"pollCount"`
	Errors    int       `json:"consecutiveErrors"`
	LastError string    `json:"lastError,omitempty"`

	BPM           float64 `json:"bpm"`
	Beat          float64 `json:"beat"`
	Scale         string  `json:"scale"`
	Volume        float64 `json:"volume"`
	ArpPattern    string  `json:"arpPattern"`
	AvgVolatility float64 `json:"avgVolatility"`
	AvgBattery    float64 `json:"avgBattery"`

	Drone  []DroneSlot `json:"drone"`
	Voices []Voice     `json:"voices"`

	Environment Environment `json:"environment"`
}

type DroneSlot struct {
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude"`
}

type Voice struct {
	SensorID   int     `json:"sensorId"`
	Name       string  `json:"name"`
	Instrument string  `json:"instrument"`
	Pattern    string  `json:"pattern"`
	Frequency  float64 `json:"frequency"`
	Active     bool    `json:"active"`
}

type Environment struct {
	FilterCutoff  float64 `json:"filterCutoff"`
	TempoModifier float64 `json:"tempoModifier"`
	Daytime       bool    `json:"daytime"`
}

// NewStatus flattens the composer snapshot and the poll status
func NewStatus(snap composer.Snapshot, poll engine.Status, volume float64) Status {
	s := Status{
		Source:        poll.Source,
		LastPoll:      poll.LastPoll,
		PollCount:     poll.PollCount,
		Errors:        poll.ConsecutiveErrors,
		BPM:           snap.BPM,
		Beat:          snap.Beat,
		Scale:         string(snap.Scale),
		Volume:        volume,
		ArpPattern:    snap.ArpPatternName,
		AvgVolatility: snap.AvgVolatility,
		AvgBattery:    snap.AvgBattery,
		Drone:         make([]DroneSlot, len(snap.DroneFrequencies)),
		Voices:        make([]Voice, len(snap.Voices)),
		Environment: Environment{
			FilterCutoff:  poll.Env.FilterCutoff,
			TempoModifier: poll.Env.TempoModifier,
			Daytime:       poll.Env.IsDaytime,
		},
	}
	if s.Source == "" {
		s.Source = "mock"
	}
	if poll.Err != nil {
		s.LastError = poll.Err.Error()
	}
	for i, f := range snap.DroneFrequencies {
		s.Drone[i] = DroneSlot{Frequency: f, Amplitude: snap.DroneAmplitudes[i]}
	}
	for i, v := range snap.Voices {
		s.Voices[i] = Voice{
			SensorID:   v.SourceID,
			Name:       v.Name,
			Instrument: string(v.Instrument),
			Pattern:    string(v.Pattern),
			Frequency:  v.Frequency,
			Active:     v.Active,
		}
	}
	return s
}

// EngineCallbacks serves the API from a running engine and poller
type EngineCallbacks struct {
	*engine.Engine
	Poller *engine.Poller
}

func (c EngineCallbacks) Status() Status {
	var poll engine.Status
	if c.Poller != nil {
		poll = c.Poller.Status()
	}
	return NewStatus(c.Snapshot(), poll, c.MasterVolume())
}

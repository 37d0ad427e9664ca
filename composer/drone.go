package composer

import (
	"math"
	"math/rand/v2"
)

// MaxDroneVoices is the number of simultaneously held drone targets
const MaxDroneVoices = 6

const (
	droneLFOSpeed   = 0.15 // Hz
	droneFreqGlide  = 0.0001
	droneAmpGlide   = 0.001
	droneOutputGain = 0.25
)

type droneSlot struct {
	freq, targetFreq float64
	amp, targetAmp   float64
	phase            float64
	timbre           TimbrePersonality
}

// DroneLayer is a slowly evolving pad built from lamp colors, one slot per
// lamp. Slots are never removed; a slot that loses its target fades out.
type DroneLayer struct {
	slots    []droneSlot
	targets  int // number of slots with a live target
	lfoPhase float64
	rng      *rand.Rand
}

// NewDroneLayer creates an empty drone. rng randomizes new slots' phases.
func NewDroneLayer(rng *rand.Rand) *DroneLayer {
	return &DroneLayer{
		slots: make([]droneSlot, 0, MaxDroneVoices),
		rng:   rng,
	}
}

// UpdateTargets sets new frequency/amplitude/timbre targets, truncated to
// MaxDroneVoices entries.
func (d *DroneLayer) UpdateTargets(frequencies, amplitudes []float64, personalities []TimbrePersonality) {
	frequencies = truncate(frequencies, MaxDroneVoices)
	amplitudes = truncate(amplitudes, MaxDroneVoices)
	personalities = truncate(personalities, MaxDroneVoices)

	for len(d.slots) < len(frequencies) {
		f := frequencies[len(d.slots)]
		d.slots = append(d.slots, droneSlot{
			freq:       f,
			targetFreq: f,
			phase:      d.rng.Float64() * 2 * math.Pi,
			timbre:     DefaultTimbre(),
		})
	}

	d.targets = len(frequencies)
	for j := range d.slots {
		s := &d.slots[j]
		if j >= len(frequencies) {
			s.targetAmp = 0
			continue
		}
		s.targetFreq = frequencies[j]
		s.targetAmp = 0
		if j < len(amplitudes) {
			s.targetAmp = amplitudes[j]
		}
		if j < len(personalities) {
			s.timbre = personalities[j]
		} else {
			s.timbre = DefaultTimbre()
		}
	}
}

// Render writes len(out) samples
func (d *DroneLayer) Render(out []float64, sampleRate float64) {
	if len(d.slots) == 0 {
		clear(out)
		return
	}

	lfoInc := droneLFOSpeed * 2 * math.Pi / sampleRate
	for i := range out {
		d.lfoPhase += lfoInc
		if d.lfoPhase >= 2*math.Pi {
			d.lfoPhase -= 2 * math.Pi
		}
		lfo := 0.7 + 0.3*math.Sin(d.lfoPhase)

		sample := 0.0
		for j := range d.slots {
			s := &d.slots[j]
			s.freq += (s.targetFreq - s.freq) * droneFreqGlide
			s.amp += (s.targetAmp - s.amp) * droneAmpGlide
			s.phase = advancePhase(s.phase, s.freq, sampleRate)
			sample += waveSample(s.phase, s.timbre.Waveform, s.timbre.Richness) * s.amp * lfo * droneOutputGain
		}
		out[i] = sample
	}
}

// LFO returns the current output scaling of the slow LFO
func (d *DroneLayer) LFO() float64 {
	return 0.7 + 0.3*math.Sin(d.lfoPhase)
}

// Frequencies returns the current (smoothed) frequency of every slot with a live target
func (d *DroneLayer) Frequencies() []float64 {
	out := make([]float64, 0, d.targets)
	for j := 0; j < d.targets && j < len(d.slots); j++ {
		out = append(out, d.slots[j].freq)
	}
	return out
}

// Amplitudes returns the current (smoothed) amplitude of every slot
func (d *DroneLayer) Amplitudes() []float64 {
	out := make([]float64, len(d.slots))
	for j := range d.slots {
		out[j] = d.slots[j].amp
	}
	return out
}

func truncate[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

package composer

import "math"

// Every partial ratio used by the timbres is a multiple of 1/1000, so wrapping
// an oscillator phase by 1000 full cycles leaves every partial unchanged while
// keeping the phase small enough to hold its precision forever.
const phaseWrap = 2 * math.Pi * 1000

// advancePhase steps a phase by one sample at freq
func advancePhase(phase, freq, sampleRate float64) float64 {
	phase += 2 * math.Pi * freq / sampleRate
	if phase >= phaseWrap {
		phase -= phaseWrap
	}
	return phase
}

// waveSample evaluates a drone waveform at phase
func waveSample(phase float64, w Waveform, richness float64) float64 {
	switch w {
	case WaveSaw:
		// harmonic count grows with richness
		sample := 0.0
		n := int(4 + richness*6)
		for h := 1; h < n; h++ {
			sample += math.Sin(phase*float64(h)) / float64(h)
		}
		return sample * 0.5
	case WaveTriangle:
		return math.Sin(phase) + math.Sin(phase*3)/9*richness
	case WaveSquare:
		sample := math.Sin(phase)
		sample += math.Sin(phase*3) / 3 * richness
		sample += math.Sin(phase*5) / 5 * richness * 0.5
		return sample * 0.7
	case WaveWarm:
		sample := math.Sin(phase) * 0.7
		sample += math.Sin(phase*2) * 0.2 * richness
		sample += math.Sin(phase*0.5) * 0.3 // sub-octave
		return sample
	case WaveBell:
		sample := math.Sin(phase) * 0.5
		sample += math.Sin(phase*2.4) * 0.3 * richness
		sample += math.Sin(phase*5.95) * 0.15 * richness
		sample += math.Sin(phase*8.2) * 0.05 * richness
		return sample
	case WavePad:
		// detuned unison
		sample := math.Sin(phase) * 0.4
		sample += math.Sin(phase*1.002) * 0.3
		sample += math.Sin(phase*0.998) * 0.3
		sample += math.Sin(phase*0.5) * 0.2 * richness
		return sample
	}
	return math.Sin(phase)
}

// InstrumentDecay is the per-sample envelope multiplier of each instrument
var InstrumentDecay = map[Instrument]float64{
	InstSine:   0.9999,
	InstPluck:  0.9995,
	InstBell:   0.9998,
	InstChime:  0.9997,
	InstMallet: 0.9993,
	InstString: 0.99992,
	InstPad:    0.99995,
}

func instrumentDecay(inst Instrument) float64 {
	if d, ok := InstrumentDecay[inst]; ok {
		return d
	}
	return InstrumentDecay[InstSine]
}

// instrumentSample evaluates a melody instrument at phase
func instrumentSample(phase float64, inst Instrument) float64 {
	switch inst {
	case InstBell:
		return math.Sin(phase)*0.5 +
			math.Sin(phase*2.4)*0.3 +
			math.Sin(phase*5.95)*0.2
	case InstPluck:
		return math.Sin(phase)*0.6 +
			math.Sin(phase*2)*0.25 +
			math.Sin(phase*3)*0.15
	case InstChime:
		return math.Sin(phase)*0.4 +
			math.Sin(phase*3)*0.25 +
			math.Sin(phase*5)*0.2 +
			math.Sin(phase*7)*0.15
	case InstMallet:
		return math.Sin(phase)*0.7 +
			math.Sin(phase*4)*0.2 +
			math.Sin(phase*0.5)*0.1
	case InstString:
		return math.Sin(phase)*0.6 +
			math.Sin(phase*2)*0.2 +
			math.Sin(phase*3)*0.1 +
			math.Sin(phase*1.01)*0.1 // chorus
	case InstPad:
		return math.Sin(phase)*0.8 +
			math.Sin(phase*0.5)*0.2
	}
	return math.Sin(phase)
}

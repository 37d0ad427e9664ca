package composer

import (
	"math"
	"math/rand/v2"
)

const (
	kickStartFreq = 150.0
	kickFloorFreq = 40.0
	kickDecay     = 0.997
	kickGlide     = 0.999
	kickGain      = 0.5

	hatStartLevel = 0.5
	hatDecay      = 0.995
	hatGain       = 0.25
)

// PercussionLayer is a pitch-dropping kick and a filtered-noise hat, both
// fired only by external events.
type PercussionLayer struct {
	kickEnvelope float64
	kickFreq     float64
	kickPhase    float64

	hatEnvelope float64
	hatNoise    float64

	rng *rand.Rand
}

// NewPercussionLayer creates a silent percussion layer. rng feeds the hat noise.
func NewPercussionLayer(rng *rand.Rand) *PercussionLayer {
	return &PercussionLayer{kickFreq: 60, rng: rng}
}

// TriggerKick restarts the kick
func (p *PercussionLayer) TriggerKick() {
	p.kickEnvelope = 1.0
	p.kickFreq = kickStartFreq
}

// TriggerHat restarts the hat
func (p *PercussionLayer) TriggerHat() {
	p.hatEnvelope = hatStartLevel
}

// Render writes len(out) samples
func (p *PercussionLayer) Render(out []float64, sampleRate float64) {
	for i := range out {
		sample := 0.0

		if p.kickEnvelope > envelopeFloor {
			p.kickEnvelope *= kickDecay
			p.kickFreq = math.Max(kickFloorFreq, p.kickFreq*kickGlide)
			p.kickPhase += 2 * math.Pi * p.kickFreq / sampleRate
			if p.kickPhase >= 2*math.Pi {
				p.kickPhase -= 2 * math.Pi
			}
			sample += math.Sin(p.kickPhase) * p.kickEnvelope * kickGain
		}

		if p.hatEnvelope > envelopeFloor {
			p.hatEnvelope *= hatDecay
			noise := p.rng.Float64()*2 - 1
			// one-pole low-pass
			p.hatNoise = p.hatNoise*0.7 + noise*0.3
			sample += p.hatNoise * p.hatEnvelope * hatGain
		}

		out[i] = sample
	}
}

// KickFrequency returns the current kick pitch
func (p *PercussionLayer) KickFrequency() float64 { return p.kickFreq }

// KickEnvelope returns the current kick level
func (p *PercussionLayer) KickEnvelope() float64 { return p.kickEnvelope }

// HatEnvelope returns the current hat level
func (p *PercussionLayer) HatEnvelope() float64 { return p.hatEnvelope }

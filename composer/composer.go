package composer

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	motionKickChance = 0.3
)

// Composer owns the clock and the four layers. Every method takes the same
// lock, so control updates and audio rendering never see each other half done.
type Composer struct {
	mu sync.Mutex

	clock      *Clock
	drone      *DroneLayer
	arp        *ArpLayer
	melody     *MelodyLayer
	percussion *PercussionLayer
	rng        *rand.Rand // ensemble choices

	arpSubdivision int
	melodyInterval int

	activeScale         ScaleKind
	lampPersonalities   []TimbrePersonality
	sensorPersonalities []BehaviorPersonality
	avgBattery          float64
	avgVolatility       float64

	lastMotion TriggerRecord
	lastButton TriggerRecord

	// per-layer scratch, grown only when a larger buffer is requested
	scratch [4][]float64
}

// New creates a composer with a wall clock and a time-seeded random source
func New() *Composer {
	seed := uint64(time.Now().UnixNano())
	return NewWithSource(NewClock(DefaultBPM), rand.New(rand.NewPCG(seed, seed>>1)))
}

// NewWithSource creates a composer using the given clock and random source
// for ensemble decisions (random voice, kick chance, drone phases, hat noise).
func NewWithSource(clock *Clock, rng *rand.Rand) *Composer {
	return &Composer{
		clock:          clock,
		drone:          NewDroneLayer(rng),
		arp:            NewArpLayer(),
		melody:         NewMelodyLayer(rng),
		percussion:     NewPercussionLayer(rng),
		rng:            rng,
		arpSubdivision: 2,
		melodyInterval: 4,
		activeScale:    ScalePentatonic,
		avgBattery:     100,
	}
}

// UpdateFromLights pushes lamp data into the drone, the arp pool and the melody scale
func (c *Composer) UpdateFromLights(frequencies, amplitudes []float64, scale ScaleKind, personalities []TimbrePersonality) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lampPersonalities = append(c.lampPersonalities[:0], personalities...)
	c.drone.UpdateTargets(frequencies, amplitudes, personalities)
	c.arp.UpdateNotes(frequencies)
	c.activeScale = scale

	root := math.Inf(1)
	for _, f := range frequencies {
		if f > 0 && f < root {
			root = f
		}
	}
	if math.IsInf(root, 1) {
		root = BaseFrequency
	}
	c.melody.SetScale(scale, root)
}

// UpdateFromSensors pushes sensor personalities into the melody layer and
// adapts the rhythmic density to their mean volatility.
func (c *Composer) UpdateFromSensors(personalities []BehaviorPersonality) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sensorPersonalities = append(c.sensorPersonalities[:0], personalities...)
	c.melody.UpdatePersonalities(personalities)
	if len(personalities) == 0 {
		return
	}

	battery, volatility := 0.0, 0.0
	for _, p := range personalities {
		battery += float64(p.Battery)
		volatility += p.Volatility
	}
	n := float64(len(personalities))
	c.avgBattery = battery / n
	c.avgVolatility = volatility / n
	c.arpSubdivision, c.melodyInterval = ScheduleFor(c.avgVolatility)
}

// ScheduleFor maps mean volatility to the arp subdivision and melody interval
func ScheduleFor(volatility float64) (arpSubdivision, melodyInterval int) {
	switch {
	case volatility > 0.5:
		return 4, 2
	case volatility > 0.2:
		return 2, 4
	}
	return 1, 8
}

// UpdateTempo sets bpm = 72 * modifier * (1 + 0.3*volatility), clamped by the clock
func (c *Composer) UpdateTempo(modifier float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock.SetTempo(DefaultBPM * modifier * (1 + c.avgVolatility*0.3))
}

// TriggerMotion plays the voice of sourceID (or a random voice when sourceID
// is 0 or unknown) and sometimes the kick.
func (c *Composer) TriggerMotion(sourceID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastMotion = TriggerRecord{Fired: true, Value: sourceID, Beat: c.clock.CurrentBeat()}
	if sourceID == 0 || !c.melody.TriggerBySource(sourceID) {
		c.melody.TriggerRandomVoice()
	}
	if c.rng.Float64() < motionKickChance {
		c.percussion.TriggerKick()
	}
}

// TriggerButton plays the hat and selects the arp pattern
func (c *Composer) TriggerButton(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastButton = TriggerRecord{Fired: true, Value: index, Beat: c.clock.CurrentBeat()}
	c.percussion.TriggerHat()
	c.arp.SetPattern(index)
}

// Render returns n freshly allocated mixed samples
func (c *Composer) Render(n int, sampleRate float64) []float64 {
	out := make([]float64, n)
	c.RenderInto(out, sampleRate)
	return out
}

// RenderInto fills out with mixed samples. It fires any clock-driven triggers
// first. It does not allocate once the scratch buffers fit len(out).
func (c *Composer) RenderInto(out []float64, sampleRate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clock.IsNewBeat(c.arpSubdivision) {
		c.arp.TriggerNext()
	}
	if c.clock.IsNewInterval(c.melodyInterval) {
		// busier sensors play more often
		chance := 0.3 + c.avgVolatility*0.4
		if c.rng.Float64() < chance {
			c.melody.TriggerRandomVoice()
		}
	}

	n := len(out)
	for i := range c.scratch {
		if cap(c.scratch[i]) < n {
			c.scratch[i] = make([]float64, n)
		}
		c.scratch[i] = c.scratch[i][:n]
	}
	drone, arp, melody, perc := c.scratch[0], c.scratch[1], c.scratch[2], c.scratch[3]

	c.drone.Render(drone, sampleRate)
	c.arp.Render(arp, sampleRate)
	c.melody.Render(melody, sampleRate)
	c.percussion.Render(perc, sampleRate)

	for i := range out {
		out[i] = drone[i] + arp[i] + melody[i] + perc[i]
	}
}

// Schedule returns the current arp subdivision and melody interval
func (c *Composer) Schedule() (arpSubdivision, melodyInterval int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.arpSubdivision, c.melodyInterval
}

// BPM returns the clock tempo
func (c *Composer) BPM() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clock.BPM()
}

package composer

import (
	"math"
	"math/rand/v2"
)

const (
	melodyOutputGain   = 0.4
	melodyStartDegree  = 2
	defaultMelodyScale = ScalePentatonic
)

// agitated steps override the nominal pattern
var agitatedSteps = []int{-3, -2, 2, 3}

// MelodyVoice is one generative voice with its own seeded walk through a scale
type MelodyVoice struct {
	personality BehaviorPersonality
	scale       []int
	root        float64
	degree      int
	freq        float64
	phase       float64
	envelope    float64
	octave      int

	// pattern state
	position  int
	direction int

	rng *rand.Rand // private, seeded from the source id
}

// NewMelodyVoice creates a voice for a sensor personality
func NewMelodyVoice(p BehaviorPersonality) *MelodyVoice {
	return &MelodyVoice{
		personality: p,
		scale:       GetScale(defaultMelodyScale),
		root:        BaseFrequency,
		degree:      melodyStartDegree,
		octave:      p.Octave,
		direction:   1,
		rng:         rand.New(rand.NewPCG(p.Seed, p.Seed)),
	}
}

// SetScale sets the scale and root note
func (v *MelodyVoice) SetScale(kind ScaleKind, root float64) {
	v.scale = GetScale(kind)
	v.root = root
}

// TriggerNote steps to a new scale degree and restarts the envelope
func (v *MelodyVoice) TriggerNote() {
	v.degree += v.nextStep()
	v.degree = max(0, min(len(v.scale)-1, v.degree))

	semitone := v.scale[v.degree]
	v.freq = v.root * math.Exp2(float64(semitone)/12) * math.Exp2(float64(v.octave))
	v.envelope = 1.0
	v.position++
}

func (v *MelodyVoice) nextStep() int {
	if v.rng.Float64() < v.personality.Volatility {
		return agitatedSteps[v.rng.IntN(len(agitatedSteps))]
	}

	switch v.personality.Pattern {
	case PatternWalk:
		return v.rng.IntN(3) - 1
	case PatternUp:
		if v.rng.Float64() > 0.3 {
			return 1
		}
		return -1
	case PatternDown:
		if v.rng.Float64() > 0.3 {
			return -1
		}
		return 1
	case PatternZigzag:
		step := v.direction
		v.direction = -v.direction
		return step
	case PatternJump:
		return []int{-2, 2}[v.rng.IntN(2)]
	case PatternRepeat:
		if v.rng.Float64() > 0.4 {
			return 0
		}
		return []int{-1, 1}[v.rng.IntN(2)]
	case PatternChord:
		// thirds and fifths in scale-degree space
		return []int{0, 2, 4, -2, -4}[v.rng.IntN(5)]
	case PatternTrill:
		if v.position%2 == 0 {
			return 1
		}
		return -1
	}
	return 0
}

// Active reports whether the envelope is still audible
func (v *MelodyVoice) Active() bool {
	return v.freq > 0 && v.envelope > envelopeFloor
}

// Render adds len(out) samples into out
func (v *MelodyVoice) Render(out []float64, sampleRate float64) {
	if !v.Active() {
		return
	}
	decay := instrumentDecay(v.personality.Instrument)
	for i := range out {
		v.envelope *= decay
		if v.envelope <= envelopeFloor {
			return
		}
		v.phase = advancePhase(v.phase, v.freq, sampleRate)
		out[i] += instrumentSample(v.phase, v.personality.Instrument) * v.envelope * melodyOutputGain
	}
}

// Frequency returns the frequency of the last triggered note
func (v *MelodyVoice) Frequency() float64 { return v.freq }

// Degree returns the current scale-degree index
func (v *MelodyVoice) Degree() int { return v.degree }

// Envelope returns the current envelope level
func (v *MelodyVoice) Envelope() float64 { return v.envelope }

// Personality returns the personality the voice was created with
func (v *MelodyVoice) Personality() BehaviorPersonality { return v.personality }

// MelodyLayer holds one voice per behavior source. Voices live for the whole
// process; a source that disappears keeps its voice.
type MelodyLayer struct {
	voices []*MelodyVoice
	index  map[int]int // source id -> voice slot

	scale ScaleKind
	root  float64

	volatility float64
	complexity int

	rng *rand.Rand // shared, for ensemble choices
}

// NewMelodyLayer creates an empty melody layer
func NewMelodyLayer(rng *rand.Rand) *MelodyLayer {
	return &MelodyLayer{
		index: make(map[int]int),
		scale: defaultMelodyScale,
		root:  BaseFrequency,
		rng:   rng,
	}
}

// UpdatePersonalities creates voices for new sources and refreshes the
// aggregate volatility. Voices for absent sources are left untouched.
func (m *MelodyLayer) UpdatePersonalities(personalities []BehaviorPersonality) {
	total := 0.0
	for _, p := range personalities {
		total += p.Volatility
		if _, ok := m.index[p.ID]; !ok {
			m.index[p.ID] = len(m.voices)
			m.voices = append(m.voices, NewMelodyVoice(p))
		}
	}
	for _, v := range m.voices {
		v.SetScale(m.scale, m.root)
	}

	m.volatility = 0
	if len(personalities) > 0 {
		m.volatility = total / float64(len(personalities))
	}
	m.complexity = len(personalities)
}

// SetScale sets the scale of every voice
func (m *MelodyLayer) SetScale(kind ScaleKind, root float64) {
	m.scale = kind
	m.root = root
	for _, v := range m.voices {
		v.SetScale(kind, root)
	}
}

// TriggerRandomVoice triggers a note on a uniformly chosen voice
func (m *MelodyLayer) TriggerRandomVoice() {
	if len(m.voices) == 0 {
		return
	}
	m.voices[m.rng.IntN(len(m.voices))].TriggerNote()
}

// TriggerBySource triggers the voice for a source id. It reports false if the
// source has no voice.
func (m *MelodyLayer) TriggerBySource(id int) bool {
	slot, ok := m.index[id]
	if !ok {
		return false
	}
	m.voices[slot].TriggerNote()
	return true
}

// HasVoice reports whether a source has a voice
func (m *MelodyLayer) HasVoice(id int) bool {
	_, ok := m.index[id]
	return ok
}

// Voice returns the voice for a source id, or nil
func (m *MelodyLayer) Voice(id int) *MelodyVoice {
	if slot, ok := m.index[id]; ok {
		return m.voices[slot]
	}
	return nil
}

// Voices returns the voices in creation order
func (m *MelodyLayer) Voices() []*MelodyVoice {
	return m.voices
}

// Volatility is the mean volatility of the last personality update
func (m *MelodyLayer) Volatility() float64 { return m.volatility }

// Complexity is the number of sources in the last personality update
func (m *MelodyLayer) Complexity() int { return m.complexity }

// Render writes len(out) samples. Several active voices are scaled by
// 1/sqrt(n) so loudness does not grow with polyphony.
func (m *MelodyLayer) Render(out []float64, sampleRate float64) {
	clear(out)
	active := 0
	for _, v := range m.voices {
		if v.Active() {
			active++
			v.Render(out, sampleRate)
		}
	}
	if active > 1 {
		scale := 1 / math.Sqrt(float64(active))
		for i := range out {
			out[i] *= scale
		}
	}
}

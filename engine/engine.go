// Package engine connects mapped Hue data to the composer and renders the
// result as a float32 sample stream.
package engine

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"hue-ambient/composer"
	"hue-ambient/debug"
	"hue-ambient/hue"
	"hue-ambient/mapper"
)

// DefaultMasterVolume is applied before the soft clip
const DefaultMasterVolume = 0.7

// Engine owns the composer and the master volume. Control methods may be
// called from any goroutine; Read is meant for a single audio goroutine.
type Engine struct {
	composer   *composer.Composer
	sampleRate float64
	volume     atomic.Uint64 // float64 bits

	mu  sync.Mutex // guards mix
	mix []float64
}

// New creates an engine with a fresh composer
func New(sampleRate int) *Engine {
	return NewWithComposer(composer.New(), sampleRate)
}

// NewWithComposer creates an engine around an existing composer
func NewWithComposer(c *composer.Composer, sampleRate int) *Engine {
	e := &Engine{
		composer:   c,
		sampleRate: float64(sampleRate),
	}
	e.SetMasterVolume(DefaultMasterVolume)
	return e
}

// Composer returns the underlying composer
func (e *Engine) Composer() *composer.Composer {
	return e.composer
}

// SampleRate returns the render rate in Hz
func (e *Engine) SampleRate() int {
	return int(e.sampleRate)
}

// Update feeds lamp params to the composer. Only playing lamps sound; the
// most common scale among them wins.
func (e *Engine) Update(params []mapper.MusicParams) {
	var (
		freqs  []float64
		amps   []float64
		scales []composer.ScaleKind
		timbre []composer.TimbrePersonality
	)
	for _, p := range params {
		if !p.Playing {
			continue
		}
		freqs = append(freqs, p.Frequency)
		amps = append(amps, p.Amplitude)
		scales = append(scales, p.Scale)
		timbre = append(timbre, composer.NewTimbrePersonality(p.LightInfo()))
	}
	e.composer.UpdateFromLights(freqs, amps, MostCommonScale(scales), timbre)
}

// MostCommonScale returns the most frequent scale. Ties go to the one seen
// first; an empty list gives pentatonic.
func MostCommonScale(scales []composer.ScaleKind) composer.ScaleKind {
	best, bestCount := composer.ScalePentatonic, 0
	counts := make(map[composer.ScaleKind]int, 3)
	for _, s := range scales {
		counts[s]++
	}
	for _, s := range scales {
		if counts[s] > bestCount {
			best, bestCount = s, counts[s]
		}
	}
	return best
}

// UpdateSensors derives a melody voice personality for every presence-capable sensor
func (e *Engine) UpdateSensors(sensors []hue.SensorState) {
	var personalities []composer.BehaviorPersonality
	for _, s := range sensors {
		if s.Presence == nil {
			continue
		}
		personalities = append(personalities, composer.NewBehaviorPersonality(SensorInfo(s)))
	}
	e.composer.UpdateFromSensors(personalities)
}

// SensorInfo extracts personality metadata from a sensor. A missing or zero
// battery reading counts as full.
func SensorInfo(s hue.SensorState) composer.SensorInfo {
	battery := 100
	if s.Battery != nil && *s.Battery != 0 {
		battery = *s.Battery
	}
	return composer.SensorInfo{
		ID:      s.ID,
		Name:    s.Name,
		Model:   s.Model(),
		Battery: battery,
	}
}

// UpdateEnvironment adjusts tempo from the sensor environment
func (e *Engine) UpdateEnvironment(env mapper.EnvironmentState) {
	e.composer.UpdateTempo(env.TempoModifier)
}

// TriggerPercussion plays the melody voice of a motion sensor and maybe a
// kick. sensorID 0 plays a random voice.
func (e *Engine) TriggerPercussion(sensorID int) {
	debug.Log("engine", "motion trigger from sensor %d", sensorID)
	e.composer.TriggerMotion(sensorID)
}

// TriggerChordChange plays a hat and switches the arp pattern
func (e *Engine) TriggerChordChange(button int) {
	debug.Log("engine", "button %d", button)
	e.composer.TriggerButton(button)
}

// SetMasterVolume sets the output gain, clamped to [0, 1]
func (e *Engine) SetMasterVolume(v float64) {
	if math.IsNaN(v) {
		v = DefaultMasterVolume
	}
	v = math.Max(0, math.Min(1, v))
	e.volume.Store(math.Float64bits(v))
}

// MasterVolume returns the output gain
func (e *Engine) MasterVolume() float64 {
	return math.Float64frombits(e.volume.Load())
}

// Snapshot returns the composer state
func (e *Engine) Snapshot() composer.Snapshot {
	return e.composer.Snapshot()
}

// Render fills out with finished samples: the composer mix times master
// volume, soft clipped with tanh into (-1, 1).
func (e *Engine) Render(out []float64) {
	e.composer.RenderInto(out, e.sampleRate)
	vol := e.MasterVolume()
	if vol == 0 {
		clear(out)
		return
	}
	for i, s := range out {
		out[i] = math.Tanh(s * vol)
	}
}

// Read implements io.Reader for a pull-based audio device: it renders
// len(p)/4 mono samples as float32 little endian. Trailing bytes that do not
// make a whole sample are zeroed.
func (e *Engine) Read(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(p) / 4
	if cap(e.mix) < n {
		debug.LogEvery(16, "engine", "mix buffer grew to %d samples", n)
		e.mix = make([]float64, n)
	}
	mix := e.mix[:n]
	e.Render(mix)

	for i, s := range mix {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(float32(s)))
	}
	clear(p[n*4:])
	return len(p), nil
}

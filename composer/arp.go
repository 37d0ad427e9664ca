package composer

import (
	"math"
	"slices"
)

// MaxArpNotes is the size of the arpeggiator's note pool
const MaxArpNotes = 4

const (
	arpDecay      = 0.9997
	arpOutputGain = 0.35
	envelopeFloor = 0.01
)

// ArpPattern is a fixed sequence of note-pool indices
type ArpPattern struct {
	Name  string
	Steps []int
}

// ArpPatterns are selectable by button index
var ArpPatterns = []ArpPattern{
	{"up-down", []int{0, 1, 2, 1}},
	{"extended", []int{0, 1, 2, 3, 2, 1}},
	{"alternating", []int{0, 2, 1, 3}},
	{"repeated", []int{0, 0, 1, 2}},
}

// ArpLayer cycles a small note pool through a step pattern
type ArpLayer struct {
	notes    []float64
	pattern  int
	cursor   int
	current  float64
	phase    float64
	envelope float64
}

// NewArpLayer creates an arpeggiator with an empty note pool
func NewArpLayer() *ArpLayer {
	return &ArpLayer{notes: make([]float64, 0, MaxArpNotes)}
}

// UpdateNotes sets the pool to the sorted distinct positive frequencies, truncated to MaxArpNotes
func (a *ArpLayer) UpdateNotes(frequencies []float64) {
	a.notes = a.notes[:0]
	for _, f := range frequencies {
		if f > 0 && !slices.Contains(a.notes, f) {
			a.notes = append(a.notes, f)
		}
	}
	slices.Sort(a.notes)
	a.notes = truncate(a.notes, MaxArpNotes)
}

// SetPattern selects a pattern; the index wraps
func (a *ArpLayer) SetPattern(idx int) {
	a.pattern = mod(idx, len(ArpPatterns))
}

// Pattern returns the selected pattern index
func (a *ArpLayer) Pattern() int {
	return a.pattern
}

// TriggerNext moves to the next step of the pattern. A step pointing past the
// end of the pool plays nothing but still advances.
func (a *ArpLayer) TriggerNext() {
	if len(a.notes) == 0 {
		return
	}
	steps := ArpPatterns[a.pattern].Steps
	idx := steps[a.cursor%len(steps)]
	if idx < len(a.notes) {
		a.current = a.notes[idx]
		a.envelope = 1.0
	}
	a.cursor++
}

// Render writes len(out) samples
func (a *ArpLayer) Render(out []float64, sampleRate float64) {
	clear(out)
	if a.current <= 0 {
		return
	}
	for i := range out {
		a.envelope *= arpDecay
		if a.envelope <= envelopeFloor {
			// stay silent until the next trigger
			a.envelope = 0
			return
		}
		a.phase = advancePhase(a.phase, a.current, sampleRate)
		sample := math.Sin(a.phase)*0.7 +
			math.Sin(a.phase*2)*0.2 +
			math.Sin(a.phase*3)*0.1
		out[i] = sample * a.envelope * arpOutputGain
	}
}

// Current returns the held note frequency
func (a *ArpLayer) Current() float64 {
	return a.current
}

// Envelope returns the current envelope level
func (a *ArpLayer) Envelope() float64 {
	return a.envelope
}

// Notes returns a copy of the note pool
func (a *ArpLayer) Notes() []float64 {
	return slices.Clone(a.notes)
}

package composer

import (
	"math"
	"time"
)

// Tempo bounds
const (
	DefaultBPM = 72
	MinBPM     = 40
	MaxBPM     = 120
)

// Clock is the single source of musical time. It converts wall time into a
// fractional beat count at a mutable tempo.
type Clock struct {
	bpm    float64
	start  time.Time // wall time of the last tempo change
	offset float64   // beats elapsed before start
	now    func() time.Time

	// last crossed counter per subdivision / per interval
	lastBeat     map[int]int64
	lastInterval map[int]int64
}

// NewClock creates a clock at the given tempo, started now
func NewClock(bpm float64) *Clock {
	return NewClockAt(bpm, time.Now)
}

// NewClockAt creates a clock that reads time from now, for offline rendering
func NewClockAt(bpm float64, now func() time.Time) *Clock {
	c := &Clock{
		now:          now,
		lastBeat:     make(map[int]int64, 4),
		lastInterval: make(map[int]int64, 4),
	}
	c.start = now()
	c.bpm = clampBPM(bpm)
	return c
}

func clampBPM(bpm float64) float64 {
	if math.IsNaN(bpm) {
		return DefaultBPM
	}
	return math.Max(MinBPM, math.Min(MaxBPM, bpm))
}

// BPM returns the current tempo
func (c *Clock) BPM() float64 {
	return c.bpm
}

// SetTempo changes tempo, clamped to [MinBPM, MaxBPM]. Beats already elapsed
// are banked so CurrentBeat never jumps backwards.
func (c *Clock) SetTempo(bpm float64) {
	bpm = clampBPM(bpm)
	if bpm == c.bpm {
		return
	}
	now := c.now()
	c.offset = c.beatAt(now)
	c.start = now
	c.bpm = bpm
}

// BeatDuration is the length of one beat in seconds
func (c *Clock) BeatDuration() float64 {
	return 60.0 / c.bpm
}

// CurrentBeat returns the fractional beat count since the clock started
func (c *Clock) CurrentBeat() float64 {
	return c.beatAt(c.now())
}

func (c *Clock) beatAt(t time.Time) float64 {
	elapsed := t.Sub(c.start).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return c.offset + elapsed/c.BeatDuration()
}

// IsNewBeat reports whether floor(beat*subdivision) has advanced since the
// previous call with the same subdivision. It fires at most once per crossing,
// so callers must poll it every buffer.
func (c *Clock) IsNewBeat(subdivision int) bool {
	if subdivision < 1 {
		subdivision = 1
	}
	current := int64(math.Floor(c.CurrentBeat() * float64(subdivision)))
	return crossed(c.lastBeat, subdivision, current)
}

// IsNewInterval reports whether floor(beat/beats) has advanced since the
// previous call with the same interval.
func (c *Clock) IsNewInterval(beats int) bool {
	if beats < 1 {
		beats = 1
	}
	current := int64(math.Floor(c.CurrentBeat() / float64(beats)))
	return crossed(c.lastInterval, beats, current)
}

func crossed(last map[int]int64, key int, current int64) bool {
	prev, ok := last[key]
	if ok && current <= prev {
		return false
	}
	last[key] = current
	return true
}

package engine

import (
	"io"
	"math/rand/v2"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"hue-ambient/composer"
)

// WAVBitDepth is the sample size of rendered files
const WAVBitDepth = 16

// SampleClock is a time source that advances only as samples are rendered,
// so an offline render faster than real time still hears the beat.
type SampleClock struct {
	start   time.Time
	rate    float64
	samples int64
}

func NewSampleClock(sampleRate int) *SampleClock {
	return &SampleClock{start: time.Unix(0, 0), rate: float64(sampleRate)}
}

// Now returns the time of the next sample to render
func (c *SampleClock) Now() time.Time {
	return c.start.Add(c.Elapsed())
}

// Elapsed returns the rendered duration
func (c *SampleClock) Elapsed() time.Duration {
	return time.Duration(float64(c.samples) / c.rate * float64(time.Second))
}

func (c *SampleClock) Advance(n int) {
	c.samples += int64(n)
}

// NewOffline creates an engine driven by a SampleClock and a seeded random
// source, so the same seed and inputs render the same file.
func NewOffline(sampleRate int, seed uint64) (*Engine, *SampleClock) {
	clock := NewSampleClock(sampleRate)
	c := composer.NewWithSource(
		composer.NewClockAt(composer.DefaultBPM, clock.Now),
		rand.New(rand.NewPCG(seed, seed>>1)))
	return NewWithComposer(c, sampleRate), clock
}

// RenderWAV renders d of audio into a mono 16-bit WAV file. between, if not
// nil, runs before every block with the rendered duration so far; use it to
// feed new light and sensor data.
func RenderWAV(w io.WriteSeeker, e *Engine, clock *SampleClock, d time.Duration, blockSize int, between func(elapsed time.Duration) error) error {
	sr := e.SampleRate()
	total := int(d.Seconds() * float64(sr))
	if blockSize <= 0 {
		blockSize = 512
	}

	enc := wav.NewEncoder(w, sr, WAVBitDepth, 1, 1)
	block := make([]float64, blockSize)
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sr,
		},
		Data:           make([]int, blockSize),
		SourceBitDepth: WAVBitDepth,
	}

	for done := 0; done < total; done += len(block) {
		if between != nil {
			if err := between(clock.Elapsed()); err != nil {
				return err
			}
		}
		n := min(blockSize, total-done)
		block = block[:n]
		e.Render(block)
		clock.Advance(n)

		intBuf.Data = intBuf.Data[:n]
		for i, s := range block {
			intBuf.Data[i] = int(s * 32767)
		}
		if err := enc.Write(intBuf); err != nil {
			return fault.Wrap(err, fmsg.With("write wav"), ftag.With(ftag.Internal))
		}
	}

	if err := enc.Close(); err != nil {
		return fault.Wrap(err, fmsg.With("finish wav"), ftag.With(ftag.Internal))
	}
	return nil
}

//go:build !headless

package engine

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/ebitengine/oto/v3"
)

// Player streams a source to the default audio device through oto
type Player struct {
	ctx     *oto.Context
	player  *oto.Player
	src     atomic.Pointer[io.Reader] // atomic for lock-free Read
	started bool
	mu      sync.Mutex // only for setup/control operations
}

// NewPlayer opens the audio device for mono float32 output. bufferSize is
// the device buffer length in samples.
func NewPlayer(sampleRate, bufferSize int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(bufferSize) * time.Second / time.Duration(sampleRate),
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("open audio device", "Could not open the audio output device"),
			ftag.With(ftag.Internal))
	}
	<-ready

	return &Player{ctx: ctx}, nil
}

// SetSource sets the reader the device pulls samples from
func (p *Player) SetSource(src io.Reader) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.src.Store(&src)
	if p.player == nil {
		p.player = p.ctx.NewPlayer(p)
	}
}

// Read implements io.Reader for oto. Without a source it plays silence.
func (p *Player) Read(b []byte) (int, error) {
	src := p.src.Load()
	if src == nil {
		clear(b)
		return len(b), nil
	}
	return (*src).Read(b)
}

// Start begins playback
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

// Stop pauses playback
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started && p.player != nil {
		p.player.Pause()
		p.started = false
	}
}

// Close stops playback and releases the player
func (p *Player) Close() error {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player != nil {
		err := p.player.Close()
		p.player = nil
		if err != nil {
			return fault.Wrap(err, fmsg.With("close audio player"))
		}
	}
	return nil
}

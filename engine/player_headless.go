//go:build headless

package engine

import (
	"io"
	"sync"
	"time"
)

// Player pulls from its source at the real-time rate and discards the
// samples, for machines without an audio device.
type Player struct {
	mu         sync.Mutex
	src        io.Reader
	sampleRate int
	bufferSize int
	stop       chan struct{}
	done       chan struct{}
}

// NewPlayer returns a player that needs no audio device. bufferSize is the
// block length in samples drained per tick.
func NewPlayer(sampleRate, bufferSize int) (*Player, error) {
	return &Player{sampleRate: sampleRate, bufferSize: bufferSize}, nil
}

// SetSource sets the reader the player pulls samples from
func (p *Player) SetSource(src io.Reader) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.src = src
}

// Read pulls from the source. Without a source it returns silence.
func (p *Player) Read(b []byte) (int, error) {
	p.mu.Lock()
	src := p.src
	p.mu.Unlock()
	if src == nil {
		clear(b)
		return len(b), nil
	}
	return src.Read(b)
}

// Start begins draining the source in real time
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.drain(p.stop, p.done)
}

func (p *Player) drain(stop, done chan struct{}) {
	defer close(done)
	buf := make([]byte, p.bufferSize*4)
	ticker := time.NewTicker(time.Duration(p.bufferSize) * time.Second / time.Duration(p.sampleRate))
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.Read(buf)
		}
	}
}

// Stop halts draining and waits for the drain goroutine
func (p *Player) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Close stops playback
func (p *Player) Close() error {
	p.Stop()
	return nil
}

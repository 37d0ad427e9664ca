package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"hue-ambient/debug"
	"hue-ambient/hue"
	"hue-ambient/mapper"
)

// DefaultMaxConsecutiveErrors stops polling after this many failures in a row
const DefaultMaxConsecutiveErrors = 5

// Status is what the last poll saw, for display
type Status struct {
	Source    string // bridge address, "" for mock data
	LastPoll  time.Time
	PollCount int

	Lamps   []hue.LampState
	Sensors []hue.SensorState
	Params  []mapper.MusicParams
	Env     mapper.EnvironmentState

	ConsecutiveErrors int
	MaxErrors         int
	Err               error // last poll error, nil after a good poll
}

// Poller reads the collector on an interval and drives the engine
type Poller struct {
	collector hue.Collector
	engine    *Engine
	interval  time.Duration
	maxErrors int
	edges     *hue.EdgeDetector
	now       func() time.Time

	mu     sync.Mutex
	status Status

	// last known good state, re-fed while the bridge is failing
	lastParams []mapper.MusicParams
	lastEnv    *mapper.EnvironmentState

	UpdateChan chan struct{}
}

// NewPoller creates a poller. maxErrors <= 0 uses DefaultMaxConsecutiveErrors.
func NewPoller(c hue.Collector, e *Engine, interval time.Duration, maxErrors int) *Poller {
	if maxErrors <= 0 {
		maxErrors = DefaultMaxConsecutiveErrors
	}
	return &Poller{
		collector:  c,
		engine:     e,
		interval:   interval,
		maxErrors:  maxErrors,
		edges:      hue.NewEdgeDetector(),
		now:        time.Now,
		status:     Status{Source: c.Source(), Env: mapper.DefaultEnvironment(), MaxErrors: maxErrors},
		UpdateChan: make(chan struct{}, 1),
	}
}

// Status returns a copy of the latest status
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Run polls immediately and then every interval until ctx is done or too
// many polls fail in a row.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll runs one cycle: read lamps and sensors, map the environment, update
// sensor voices, fire motion and button events, map lamps, update the
// engine. It returns an error only once the failure limit is reached.
func (p *Poller) Poll(ctx context.Context) error {
	lamps, sensors, err := p.collector.Poll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return p.fail(err)
	}

	env := mapper.MapSensors(sensors)
	p.engine.UpdateSensors(sensors)

	motion, buttons := p.edges.Detect(sensors)
	for _, s := range motion {
		p.engine.TriggerPercussion(s.ID)
	}
	for _, s := range buttons {
		if *s.ButtonEvent != 0 {
			p.engine.TriggerChordChange(mapper.ButtonIndex(*s.ButtonEvent))
		}
	}

	params := mapper.MapLamps(lamps, &env)
	p.engine.Update(params)
	p.engine.UpdateEnvironment(env)

	p.mu.Lock()
	p.lastParams = params
	p.lastEnv = &env
	p.status.LastPoll = p.now()
	p.status.PollCount++
	p.status.Lamps = lamps
	p.status.Sensors = sensors
	p.status.Params = params
	p.status.Env = env
	p.status.ConsecutiveErrors = 0
	p.status.Err = nil
	p.mu.Unlock()

	p.notify()
	return nil
}

func (p *Poller) fail(err error) error {
	p.mu.Lock()
	p.status.ConsecutiveErrors++
	p.status.Err = err
	count := p.status.ConsecutiveErrors
	params, env := p.lastParams, p.lastEnv
	p.mu.Unlock()

	debug.Log("poll", "error %d/%d: %v", count, p.maxErrors, err)

	// keep the music going on the last good state
	if params != nil && env != nil {
		p.engine.Update(params)
		p.engine.UpdateEnvironment(*env)
	}
	p.notify()

	if count >= p.maxErrors {
		return fault.Wrap(err,
			fmsg.WithDesc(fmt.Sprintf("%d consecutive poll errors", count),
				"Too many connection errors. Check your Hue bridge."),
			ftag.With(ftag.Internal))
	}
	return nil
}

func (p *Poller) notify() {
	select {
	case p.UpdateChan <- struct{}{}:
	default:
	}
}

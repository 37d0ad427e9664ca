package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Southclaws/fault/ftag"

	"hue-ambient/hue"
)

// scriptedCollector returns canned polls, then errors
type scriptedCollector struct {
	polls []scriptedPoll
	n     int
}

type scriptedPoll struct {
	lamps   []hue.LampState
	sensors []hue.SensorState
	err     error
}

func (s *scriptedCollector) Poll(ctx context.Context) ([]hue.LampState, []hue.SensorState, error) {
	if s.n >= len(s.polls) {
		return nil, nil, errors.New("connection reset")
	}
	p := s.polls[s.n]
	s.n++
	return p.lamps, p.sensors, p.err
}

func (s *scriptedCollector) Lights(ctx context.Context) ([]hue.LampState, error) {
	l, _, err := s.Poll(ctx)
	return l, err
}

func (s *scriptedCollector) Sensors(ctx context.Context) ([]hue.SensorState, error) {
	_, ss, err := s.Poll(ctx)
	return ss, err
}

func (s *scriptedCollector) Source() string { return "10.0.0.2" }

func lamp(id int, hueValue int) hue.LampState {
	return hue.LampState{ID: id, Name: "Lamp", On: true, Reachable: true, Brightness: 200, Hue: hue.Ptr(hueValue), Saturation: hue.Ptr(220), ModelID: "LCT007"}
}

func TestPollerDrivesEngine(t *testing.T) {
	motion := func(on bool) hue.SensorState {
		return hue.SensorState{ID: 7, Name: "Hall", Type: hue.TypePresence, Presence: hue.Ptr(on), Battery: hue.Ptr(90)}
	}
	dimmer := hue.SensorState{ID: 8, Name: "Dimmer", Type: hue.TypeSwitch, ButtonEvent: hue.Ptr(3002)}
	temp := hue.SensorState{ID: 9, Type: hue.TypeTemperature, Temperature: hue.Ptr(2500)}

	c := &scriptedCollector{polls: []scriptedPoll{
		{lamps: []hue.LampState{lamp(1, 0), lamp(2, 20000)}, sensors: []hue.SensorState{motion(false), temp}},
		{lamps: []hue.LampState{lamp(1, 0), lamp(2, 20000)}, sensors: []hue.SensorState{motion(true), dimmer, temp}},
	}}
	e := testEngine()
	p := NewPoller(c, e, time.Second, 3)

	ctx := context.Background()
	if err := p.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	s := e.Snapshot()
	if len(s.DroneFrequencies) != 2 || len(s.Sensors) != 1 {
		t.Fatalf("after first poll: drone %v, sensors %d", s.DroneFrequencies, len(s.Sensors))
	}
	if s.BPM <= 72 {
		t.Errorf("warm room should speed up, bpm = %v", s.BPM)
	}
	if s.Voices[0].Envelope != 0 {
		t.Error("no motion yet")
	}

	if err := p.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	s = e.Snapshot()
	if s.Voices[0].Envelope != 1 {
		t.Error("motion edge should play the sensor's voice")
	}
	if s.ArpPattern != 3 {
		t.Errorf("button 3 should select pattern 3, got %d", s.ArpPattern)
	}

	st := p.Status()
	if st.PollCount != 2 || st.Source != "10.0.0.2" || len(st.Params) != 2 || st.Err != nil {
		t.Fatalf("status = %+v", st)
	}
	select {
	case <-p.UpdateChan:
	default:
		t.Fatal("no update notification")
	}
}

func TestPollerToleratesErrors(t *testing.T) {
	c := &scriptedCollector{polls: []scriptedPoll{
		{lamps: []hue.LampState{lamp(1, 0)}},
	}}
	e := testEngine()
	p := NewPoller(c, e, time.Millisecond, 3)
	ctx := context.Background()

	if err := p.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < 3; i++ {
		if err := p.Poll(ctx); err != nil {
			t.Fatalf("error %d should be tolerated: %v", i, err)
		}
		st := p.Status()
		if st.ConsecutiveErrors != i || st.Err == nil {
			t.Fatalf("status = %+v", st)
		}
		// last good lamps keep sounding
		if len(e.Snapshot().DroneFrequencies) != 1 {
			t.Fatal("last good state was not re-fed")
		}
	}

	err := p.Poll(ctx)
	if err == nil {
		t.Fatal("third consecutive error should stop the poller")
	}
	if ftag.Get(err) != ftag.Internal {
		t.Fatalf("tag = %v", ftag.Get(err))
	}
}

func TestPollerRun(t *testing.T) {
	m := hue.NewMock()
	e := testEngine()
	p := NewPoller(m, e, 5*time.Millisecond, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if st := p.Status(); st.PollCount < 2 || st.Source != "" || len(st.Lamps) != 3 {
		t.Fatalf("status = %+v", st)
	}

	c := &scriptedCollector{}
	p = NewPoller(c, e, time.Millisecond, 2)
	if err := p.Run(context.Background()); err == nil {
		t.Fatal("failing collector should stop Run")
	}
}

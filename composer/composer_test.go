package composer

import (
	"math"
	"testing"
	"time"
)

func newTestComposer() (*Composer, *fakeTime) {
	clock, ft := newFakeClock(DefaultBPM)
	return NewWithSource(clock, testRand()), ft
}

func sensors(volatility ...float64) []BehaviorPersonality {
	var out []BehaviorPersonality
	for i, v := range volatility {
		p := melodyPersonality(i+1, uint64(i+1), PatternWalk)
		p.Volatility = v
		out = append(out, p)
	}
	return out
}

func TestComposerSilentWithoutData(t *testing.T) {
	c, ft := newTestComposer()
	out := make([]float64, 512)
	for range 20 {
		c.RenderInto(out, testRate)
		ft.advance(100 * time.Millisecond)
		for i, s := range out {
			if s != 0 {
				t.Fatalf("sample %d = %v, want silence", i, s)
			}
		}
	}
}

func TestComposerAdaptiveSchedule(t *testing.T) {
	tests := []struct {
		volatility []float64
		arp, mel   int
	}{
		{[]float64{0.9}, 4, 2},
		{[]float64{0.8, 1.0}, 4, 2},
		{[]float64{0.3}, 2, 4},
		{[]float64{0.5}, 2, 4},
		{[]float64{0.05}, 1, 8},
		{[]float64{0.1, 0.2}, 1, 8},
	}
	for _, tt := range tests {
		c, _ := newTestComposer()
		c.UpdateFromSensors(sensors(tt.volatility...))
		arp, mel := c.Schedule()
		if arp != tt.arp || mel != tt.mel {
			t.Errorf("volatility %v: schedule %d/%d, want %d/%d", tt.volatility, arp, mel, tt.arp, tt.mel)
		}
	}
}

func TestComposerEmptySensorsKeepSchedule(t *testing.T) {
	c, _ := newTestComposer()
	c.UpdateFromSensors(sensors(0.9))
	c.UpdateFromSensors(nil)
	if arp, mel := c.Schedule(); arp != 4 || mel != 2 {
		t.Fatalf("schedule %d/%d changed on empty update", arp, mel)
	}
}

func TestComposerTempo(t *testing.T) {
	c, _ := newTestComposer()
	c.UpdateTempo(1.0)
	if c.BPM() != 72 {
		t.Fatalf("bpm = %v, want 72", c.BPM())
	}
	c.UpdateTempo(10)
	if c.BPM() != MaxBPM {
		t.Fatalf("bpm = %v, want clamp to %v", c.BPM(), MaxBPM)
	}
	c.UpdateTempo(0)
	if c.BPM() != MinBPM {
		t.Fatalf("bpm = %v, want clamp to %v", c.BPM(), MinBPM)
	}

	c.UpdateFromSensors(sensors(0.5))
	c.UpdateTempo(1.0)
	if want := 72 * 1.15; math.Abs(c.BPM()-want) > 1e-9 {
		t.Fatalf("bpm = %v, want %v", c.BPM(), want)
	}
}

func TestComposerLightsDriveDroneAndArp(t *testing.T) {
	c, ft := newTestComposer()
	freqs := []float64{440, 220, 330}
	c.UpdateFromLights(freqs, []float64{.3, .3, .3}, ScaleMajor, nil)

	out := make([]float64, 1024)
	c.RenderInto(out, testRate)
	finite(t, "mix", out)

	s := c.Snapshot()
	if s.Scale != ScaleMajor {
		t.Errorf("scale = %s", s.Scale)
	}
	if len(s.DroneFrequencies) != 3 {
		t.Errorf("drone voices = %d", len(s.DroneFrequencies))
	}
	if len(s.ArpNotes) != 3 || s.ArpNotes[0] != 220 {
		t.Errorf("arp notes = %v", s.ArpNotes)
	}
	// the first buffer crosses beat 0
	if s.ArpCurrent != 220 {
		t.Errorf("arp current = %v, want 220", s.ArpCurrent)
	}

	loud := false
	for range 10 {
		ft.advance(50 * time.Millisecond)
		c.RenderInto(out, testRate)
		for _, v := range out {
			if v != 0 {
				loud = true
			}
		}
	}
	if !loud {
		t.Fatal("lit lamps produced silence")
	}
}

func TestComposerTriggers(t *testing.T) {
	c, _ := newTestComposer()
	c.UpdateFromSensors(sensors(0.1, 0.1))
	if s := c.Snapshot(); s.LastMotion.Fired || s.LastButton.Fired {
		t.Fatalf("no triggers yet, got %+v %+v", s.LastMotion, s.LastButton)
	}

	c.TriggerMotion(2)
	s := c.Snapshot()
	if s.LastMotion != (TriggerRecord{Fired: true, Value: 2, Beat: s.Beat}) {
		t.Fatalf("last motion = %+v", s.LastMotion)
	}
	if s.Voices[1].Envelope != 1 || s.Voices[0].Envelope != 0 {
		t.Fatalf("motion on id 2 played %+v", s.Voices)
	}

	c.TriggerMotion(99)
	if c.Snapshot().ActiveVoices() == 0 {
		t.Fatal("unknown id should play a random voice")
	}

	c.TriggerButton(6)
	s = c.Snapshot()
	if s.ArpPattern != 2 || s.ArpPatternName != "alternating" {
		t.Fatalf("pattern = %d %q", s.ArpPattern, s.ArpPatternName)
	}
	if s.HatEnvelope != 0.5 {
		t.Fatalf("hat = %v", s.HatEnvelope)
	}
	if !s.LastButton.Fired || s.LastButton.Value != 6 || s.LastMotion.Value != 99 {
		t.Fatalf("last triggers = %+v %+v", s.LastMotion, s.LastButton)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c, _ := newTestComposer()
	lamp := NewTimbrePersonality(LightInfo{ID: 1, ModelID: "LCT007"})
	c.UpdateFromLights([]float64{220}, []float64{.5}, ScalePentatonic, []TimbrePersonality{lamp})

	s := c.Snapshot()
	s.ArpNotes[0] = 1
	s.Lamps[0].Name = "changed"
	s2 := c.Snapshot()
	if s2.ArpNotes[0] != 220 || s2.Lamps[0].Name != "" {
		t.Fatal("snapshot shares memory with the composer")
	}
}

func TestComposerRenderDoesNotAllocate(t *testing.T) {
	c, _ := newTestComposer()
	c.UpdateFromLights([]float64{220, 330}, []float64{.5, .5}, ScaleMinor, nil)
	c.UpdateFromSensors(sensors(0.3))
	out := make([]float64, 512)
	c.RenderInto(out, testRate)

	allocs := testing.AllocsPerRun(50, func() {
		c.RenderInto(out, testRate)
	})
	if allocs != 0 {
		t.Fatalf("RenderInto allocated %v times per call", allocs)
	}
}

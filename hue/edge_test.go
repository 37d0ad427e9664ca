package hue

import (
	"context"
	"testing"
)

func presence(id int, on bool) SensorState {
	return SensorState{ID: id, Type: TypePresence, Presence: Ptr(on)}
}

func button(id, code int) SensorState {
	return SensorState{ID: id, Type: TypeSwitch, ButtonEvent: Ptr(code)}
}

func TestEdgeDetectorMotion(t *testing.T) {
	e := NewEdgeDetector()
	steps := []struct {
		on   bool
		want int
	}{
		{false, 0},
		{true, 1},
		{true, 0},
		{false, 0},
		{true, 1},
	}
	for i, s := range steps {
		motion, _ := e.Detect([]SensorState{presence(5, s.on)})
		if len(motion) != s.want {
			t.Fatalf("step %d: %d motion events, want %d", i, len(motion), s.want)
		}
	}
}

func TestEdgeDetectorButtons(t *testing.T) {
	e := NewEdgeDetector()
	steps := []struct {
		code int
		want int
	}{
		{1002, 1}, // first sighting
		{1002, 0},
		{4002, 1},
		{4002, 0},
		{1002, 1},
	}
	for i, s := range steps {
		_, buttons := e.Detect([]SensorState{button(9, s.code), {ID: 3, Type: TypeTemperature}})
		if len(buttons) != s.want {
			t.Fatalf("step %d: %d button events, want %d", i, len(buttons), s.want)
		}
	}
}

func TestMockCollector(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	lamps, sensors, err := m.Poll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(lamps) != 3 || len(sensors) != 4 {
		t.Fatalf("mock has %d lamps, %d sensors", len(lamps), len(sensors))
	}
	for _, l := range lamps {
		if l.Brightness < 0 || l.Brightness > 254 || *l.Hue < 0 || *l.Hue > 65535 {
			t.Errorf("lamp %s out of range: %+v", l.Name, l)
		}
	}
	if sensors[0].Presence == nil || sensors[2].Temperature == nil || sensors[3].IsDaylight == nil {
		t.Fatal("mock sensors missing readings")
	}

	// motion fires periodically
	e := NewEdgeDetector()
	fired := 0
	for range 200 {
		_, sensors, _ := m.Poll(ctx)
		motion, _ := e.Detect(sensors)
		fired += len(motion)
	}
	if fired == 0 {
		t.Fatal("mock motion never fired")
	}
}

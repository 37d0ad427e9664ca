package hue

// EdgeDetector turns sensor snapshots into events: motion that just started
// and button codes that changed since the previous snapshot.
type EdgeDetector struct {
	motion  map[int]bool
	buttons map[int]int
}

// NewEdgeDetector creates a detector with no history
func NewEdgeDetector() *EdgeDetector {
	return &EdgeDetector{
		motion:  make(map[int]bool),
		buttons: make(map[int]int),
	}
}

// Detect compares sensors with the previous call. A button seen for the first
// time counts as changed.
func (e *EdgeDetector) Detect(sensors []SensorState) (motion, buttons []SensorState) {
	for _, s := range sensors {
		if s.Presence != nil {
			if *s.Presence && !e.motion[s.ID] {
				motion = append(motion, s)
			}
			e.motion[s.ID] = *s.Presence
		}
		if s.ButtonEvent != nil {
			prev, ok := e.buttons[s.ID]
			if !ok || prev != *s.ButtonEvent {
				buttons = append(buttons, s)
			}
			e.buttons[s.ID] = *s.ButtonEvent
		}
	}
	return motion, buttons
}

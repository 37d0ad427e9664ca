package hue

import (
	"context"
	"math"
	"sync"
)

// Mock generates slowly changing lamps and sensors for running without a bridge
type Mock struct {
	mu sync.Mutex
	t  float64
}

// NewMock creates a mock collector
func NewMock() *Mock {
	return &Mock{}
}

// Source implements Collector
func (m *Mock) Source() string { return "" }

// Poll advances mock time by one step and returns lamps and sensors
func (m *Mock) Poll(ctx context.Context) ([]LampState, []SensorState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t += 0.1
	return m.lamps(), m.sensors(), nil
}

// Lights advances mock time by one step and returns the lamps
func (m *Mock) Lights(ctx context.Context) ([]LampState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t += 0.1
	return m.lamps(), nil
}

// Sensors returns the sensors at the current mock time
func (m *Mock) Sensors(ctx context.Context) ([]SensorState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sensors(), nil
}

func (m *Mock) lamps() []LampState {
	t := m.t
	return []LampState{
		{
			ID:           1,
			Name:         "Living Room",
			On:           true,
			Brightness:   int(127 + 127*math.Sin(t*0.5)),
			Hue:          Ptr(int(32767 + 32767*math.Sin(t*0.2))),
			Saturation:   Ptr(200),
			Reachable:    true,
			ModelID:      "LCT007",
			ProductName:  "Hue color lamp",
			Manufacturer: "Philips",
			LightType:    "Extended color light",
			UniqueID:     "00:17:88:01:00:bd:c7:b9-0b",
		},
		{
			ID:           2,
			Name:         "Bedroom",
			On:           true,
			Brightness:   int(127 + 127*math.Cos(t*0.3)),
			Hue:          Ptr(int(32767 + 32767*math.Cos(t*0.15))),
			Saturation:   Ptr(150),
			Reachable:    true,
			ModelID:      "LST002",
			ProductName:  "Hue lightstrip plus",
			Manufacturer: "Philips",
			LightType:    "Extended color light",
			UniqueID:     "00:17:88:01:01:15:4a:2c-0b",
		},
		{
			ID:           3,
			Name:         "Kitchen",
			On:           math.Mod(t, 10) < 7, // blinks occasionally
			Brightness:   180,
			Hue:          Ptr(int(50000 + 15000*math.Sin(t*0.1))),
			Saturation:   Ptr(254),
			Reachable:    true,
			ModelID:      "LWB010",
			ProductName:  "Hue white lamp",
			Manufacturer: "Philips",
			LightType:    "Dimmable light",
			UniqueID:     "00:17:88:01:02:3a:8e:12-0b",
		},
	}
}

func (m *Mock) sensors() []SensorState {
	t := m.t
	motion := math.Mod(t, 8) < 0.5                    // every ~8 time units
	temp := int(2100 + 200*math.Sin(t*0.05))          // 19-23°C
	lightLevel := int(20000 + 15000*math.Sin(t*0.02)) // dim to bright
	hour := math.Mod(t, 24)

	return []SensorState{
		{
			ID:        1,
			Name:      "Hallway Motion",
			Type:      TypePresence,
			ModelID:   "SML001",
			Presence:  Ptr(motion),
			Battery:   Ptr(85),
			Reachable: true,
		},
		{
			ID:         2,
			Name:       "Living Room Light",
			Type:       TypeLightLevel,
			ModelID:    "SML001",
			LightLevel: Ptr(lightLevel),
			Dark:       Ptr(lightLevel < 10000),
			Daylight:   Ptr(lightLevel > 30000),
			Battery:    Ptr(90),
			Reachable:  true,
		},
		{
			ID:          3,
			Name:        "Bedroom Temp",
			Type:        TypeTemperature,
			ModelID:     "SML001",
			Temperature: Ptr(temp),
			Battery:     Ptr(75),
			Reachable:   true,
		},
		{
			ID:         4,
			Name:       "Daylight",
			Type:       TypeDaylight,
			IsDaylight: Ptr(hour > 8 && hour < 20),
			Reachable:  true,
		},
	}
}

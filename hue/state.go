package hue

import (
	"cmp"
	"slices"
	"strconv"
)

// LampState is the state of a single Hue lamp
type LampState struct {
	ID         int
	Name       string
	On         bool
	Brightness int  // 0-254
	Hue        *int // 0-65535, nil for non-color lights
	Saturation *int // 0-254, nil for non-color lights
	Reachable  bool

	ModelID      string // e.g. LCT007, LST002, LWB010
	ProductName  string // e.g. "Hue color lamp"
	Manufacturer string
	LightType    string // e.g. "Extended color light", "Dimmable light"
	UniqueID     string // MAC-based
}

// Sensor types reported by the bridge
const (
	TypePresence    = "ZLLPresence"
	TypeLightLevel  = "ZLLLightLevel"
	TypeTemperature = "ZLLTemperature"
	TypeSwitch      = "ZLLSwitch"
	TypeDaylight    = "Daylight"
)

// SensorState is the state of a Hue sensor. Readings a sensor does not
// provide are nil.
type SensorState struct {
	ID      int
	Name    string
	Type    string // ZLLPresence, ZLLLightLevel, ZLLTemperature, Daylight, ZLLSwitch
	ModelID string // e.g. SML001, RWL021

	Presence    *bool
	LightLevel  *int // 0-65535, log scale lux
	Dark        *bool
	Daylight    *bool // light level sensor's own daylight flag
	Temperature *int  // Celsius * 100
	ButtonEvent *int  // e.g. 1002, 4003
	IsDaylight  *bool // built-in daylight sensor

	Battery     *int // percent
	LastUpdated string
	Reachable   bool
}

// Model returns the model id, or the sensor type when the bridge reports none
func (s SensorState) Model() string {
	if s.ModelID != "" {
		return s.ModelID
	}
	return s.Type
}

// Ptr returns a pointer to v, for building optional readings
func Ptr[T any](v T) *T {
	return &v
}

// API payloads. The bridge keys both maps by decimal id strings.
type apiState struct {
	Lights  map[string]apiLight  `json:"lights"`
	Sensors map[string]apiSensor `json:"sensors"`
}

type apiLight struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	ModelID      string `json:"modelid"`
	ProductName  string `json:"productname"`
	Manufacturer string `json:"manufacturername"`
	UniqueID     string `json:"uniqueid"`
	State        struct {
		On        bool `json:"on"`
		Bri       int  `json:"bri"`
		Hue       *int `json:"hue"`
		Sat       *int `json:"sat"`
		Reachable bool `json:"reachable"`
	} `json:"state"`
}

type apiSensor struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	ModelID string `json:"modelid"`
	State   struct {
		Presence    *bool  `json:"presence"`
		LightLevel  *int   `json:"lightlevel"`
		Dark        *bool  `json:"dark"`
		Daylight    *bool  `json:"daylight"`
		Temperature *int   `json:"temperature"`
		ButtonEvent *int   `json:"buttonevent"`
		LastUpdated string `json:"lastupdated"`
	} `json:"state"`
	Config struct {
		Battery   *int  `json:"battery"`
		Reachable *bool `json:"reachable"`
	} `json:"config"`
}

func orFalse(b *bool) *bool {
	if b == nil {
		return Ptr(false)
	}
	return b
}

func orZero(i *int) *int {
	if i == nil {
		return Ptr(0)
	}
	return i
}

// lamps converts the light map to states ordered by id
func (a apiState) lamps() []LampState {
	out := make([]LampState, 0, len(a.Lights))
	for key, l := range a.Lights {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		name := l.Name
		if name == "" {
			name = "Light " + key
		}
		out = append(out, LampState{
			ID:           id,
			Name:         name,
			On:           l.State.On,
			Brightness:   l.State.Bri,
			Hue:          l.State.Hue,
			Saturation:   l.State.Sat,
			Reachable:    l.State.Reachable,
			ModelID:      l.ModelID,
			ProductName:  l.ProductName,
			Manufacturer: l.Manufacturer,
			LightType:    l.Type,
			UniqueID:     l.UniqueID,
		})
	}
	slices.SortFunc(out, func(a, b LampState) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// sensors converts the sensor map to states ordered by id. Only the readings
// that belong to a sensor's type are kept.
func (a apiState) sensors() []SensorState {
	out := make([]SensorState, 0, len(a.Sensors))
	for key, s := range a.Sensors {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		name := s.Name
		if name == "" {
			name = "Sensor " + key
		}
		st := SensorState{
			ID:          id,
			Name:        name,
			Type:        s.Type,
			ModelID:     s.ModelID,
			Battery:     s.Config.Battery,
			LastUpdated: s.State.LastUpdated,
			Reachable:   s.Config.Reachable == nil || *s.Config.Reachable,
		}

		switch s.Type {
		case "ZLLPresence", "ZHAPresence":
			st.Presence = orFalse(s.State.Presence)
		case "ZLLLightLevel", "ZHALightLevel":
			st.LightLevel = orZero(s.State.LightLevel)
			st.Dark = orFalse(s.State.Dark)
			st.Daylight = orFalse(s.State.Daylight)
		case "ZLLTemperature", "ZHATemperature":
			st.Temperature = orZero(s.State.Temperature)
		case "ZLLSwitch", "ZHASwitch", "ZGPSwitch":
			st.ButtonEvent = s.State.ButtonEvent
		case "Daylight":
			st.IsDaylight = orFalse(s.State.Daylight)
		}
		out = append(out, st)
	}
	slices.SortFunc(out, func(a, b SensorState) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

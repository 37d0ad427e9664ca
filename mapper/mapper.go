// Package mapper turns Hue lamp and sensor readings into musical parameters.
package mapper

import (
	"math"

	"hue-ambient/composer"
	"hue-ambient/hue"
)

// MusicParams are the musical parameters of one lamp
type MusicParams struct {
	Frequency float64 // Hz, 0 when not playing
	Amplitude float64 // 0-1
	Playing   bool
	Scale     composer.ScaleKind
	Reverb    float64 // 0-1
	LightName string

	LightID   int
	ModelID   string
	LightType string
	UniqueID  string
}

// LightInfo returns the lamp metadata used to derive a timbre
func (p MusicParams) LightInfo() composer.LightInfo {
	return composer.LightInfo{
		ID:        p.LightID,
		Name:      p.LightName,
		ModelID:   p.ModelID,
		LightType: p.LightType,
		UniqueID:  p.UniqueID,
	}
}

// SensorParams are the musical parameters of one sensor
type SensorParams struct {
	SensorName string
	SensorType string

	TriggerHit    bool    // motion present
	FilterCutoff  float64 // 0.2-1, low is muffled
	TempoModifier float64 // 0.9-1.1
	AmbientLayer  bool    // day mode
	ChordChange   bool
	ButtonIndex   int
}

// EnvironmentState combines every sensor into one musical mood
type EnvironmentState struct {
	FilterCutoff  float64
	TempoModifier float64
	IsDaytime     bool
	ReverbBoost   float64 // extra reverb at night
}

// DefaultEnvironment is the environment with no sensors
func DefaultEnvironment() EnvironmentState {
	return EnvironmentState{FilterCutoff: 1, TempoModifier: 1, IsDaytime: true}
}

// Lamps further along the list play in different registers
var octaveSpread = []int{-2, -1, 0, 1, 2}

// HueToSemitone converts a Hue color value (0-65535) to a semitone 0-11
func HueToSemitone(hueValue int) int {
	s := int(float64(hueValue)/65535*12) % 12
	if s < 0 {
		s += 12
	}
	return s
}

// SaturationToScale picks major for vivid color, minor for muted color
func SaturationToScale(saturation int) composer.ScaleKind {
	switch {
	case saturation > 200:
		return composer.ScaleMajor
	case saturation > 100:
		return composer.ScalePentatonic
	}
	return composer.ScaleMinor
}

// BrightnessToAmplitude maps brightness 0-254 onto a curved 0-0.6 range
func BrightnessToAmplitude(brightness int) float64 {
	b := math.Max(0, math.Min(254, float64(brightness)))
	return math.Pow(b/254, 0.7) * 0.6
}

// LightLevelToCutoff maps a light level (10000 is about 1 lux, 40000 about
// 100 lux) onto a 0.2-1 filter cutoff
func LightLevelToCutoff(lightLevel int) float64 {
	n := math.Max(0, math.Min(1, float64(lightLevel-5000)/40000))
	return 0.2 + n*0.8
}

// TemperatureToTempo maps 15-25°C (given in hundredths) onto a 0.9-1.1 tempo modifier
func TemperatureToTempo(temperature int) float64 {
	celsius := float64(temperature) / 100
	n := (celsius - 15) / 10
	return 0.9 + math.Max(0, math.Min(1, n))*0.2
}

// ButtonIndex converts a Hue button code (1002, 2000, ...) to a button number
func ButtonIndex(code int) int {
	return (code / 1000) % 5
}

// Quantize returns the scale degree closest to semitone. Ties go to the lower degree.
func Quantize(semitone int, scale []int) int {
	if len(scale) == 0 {
		return semitone
	}
	best := scale[0]
	for _, s := range scale[1:] {
		if abs(s-semitone) < abs(best-semitone) {
			best = s
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// reverbForHue gives warm hues more reverb and cool hues less
func reverbForHue(h int) float64 {
	switch {
	case h < 10000 || h > 55000:
		return 0.6
	case h > 35000 && h < 50000:
		return 0.1
	}
	return 0.3
}

// MapLamp converts one lamp. Lamps that are off or unreachable map to silent
// params that still carry their metadata.
func MapLamp(lamp hue.LampState, octave int, env *EnvironmentState) MusicParams {
	p := MusicParams{
		LightName: lamp.Name,
		LightID:   lamp.ID,
		ModelID:   lamp.ModelID,
		LightType: lamp.LightType,
		UniqueID:  lamp.UniqueID,
		Scale:     composer.ScaleMajor,
	}
	if !lamp.On || !lamp.Reachable {
		return p
	}

	p.Scale = composer.ScalePentatonic
	if lamp.Saturation != nil {
		p.Scale = SaturationToScale(*lamp.Saturation)
	}

	semitone := 0
	if lamp.Hue != nil {
		semitone = Quantize(HueToSemitone(*lamp.Hue), composer.GetScale(p.Scale))
	}
	semitone += octave * 12

	p.Playing = true
	p.Frequency = composer.SemitoneToFrequency(semitone, composer.BaseFrequency)
	p.Amplitude = BrightnessToAmplitude(lamp.Brightness)
	p.Reverb = 0.3
	if lamp.Hue != nil {
		p.Reverb = reverbForHue(*lamp.Hue)
	}

	if env != nil {
		p.Amplitude *= env.FilterCutoff
		p.Reverb = math.Min(1, p.Reverb+env.ReverbBoost)
	}
	return p
}

// MapLamps converts every lamp, spreading them across octaves by position
func MapLamps(lamps []hue.LampState, env *EnvironmentState) []MusicParams {
	out := make([]MusicParams, len(lamps))
	for i, l := range lamps {
		out[i] = MapLamp(l, octaveSpread[i%len(octaveSpread)], env)
	}
	return out
}

// MapSensor converts the readings of one sensor
func MapSensor(s hue.SensorState) SensorParams {
	p := SensorParams{
		SensorName:    s.Name,
		SensorType:    s.Type,
		FilterCutoff:  1,
		TempoModifier: 1,
		AmbientLayer:  true,
	}
	if s.Presence != nil {
		p.TriggerHit = *s.Presence
	}
	if s.LightLevel != nil {
		p.FilterCutoff = LightLevelToCutoff(*s.LightLevel)
	}
	if s.Temperature != nil {
		p.TempoModifier = TemperatureToTempo(*s.Temperature)
	}
	if s.IsDaylight != nil {
		p.AmbientLayer = *s.IsDaylight
	}
	if s.ButtonEvent != nil {
		p.ChordChange = true
		p.ButtonIndex = ButtonIndex(*s.ButtonEvent)
	}
	return p
}

// MapSensors averages light levels and temperatures across sensors. The first
// daylight sensor decides day or night.
func MapSensors(sensors []hue.SensorState) EnvironmentState {
	env := DefaultEnvironment()

	var cutoffs, tempos []float64
	var isDay *bool
	for _, s := range sensors {
		p := MapSensor(s)
		if s.LightLevel != nil {
			cutoffs = append(cutoffs, p.FilterCutoff)
		}
		if s.Temperature != nil {
			tempos = append(tempos, p.TempoModifier)
		}
		if s.IsDaylight != nil && isDay == nil {
			isDay = s.IsDaylight
		}
	}

	if len(cutoffs) > 0 {
		env.FilterCutoff = mean(cutoffs)
	}
	if len(tempos) > 0 {
		env.TempoModifier = mean(tempos)
	}
	if isDay != nil {
		env.IsDaytime = *isDay
		if !*isDay {
			env.ReverbBoost = 0.2
		}
	}
	return env
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

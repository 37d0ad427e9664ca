package composer

import (
	"math"
	"strings"
)

// Waveform is the drone timbre of a lamp
type Waveform string

const (
	WaveSine     Waveform = "sine"
	WaveSaw      Waveform = "saw"
	WaveTriangle Waveform = "triangle"
	WaveSquare   Waveform = "square"
	WaveWarm     Waveform = "warm"
	WaveBell     Waveform = "bell"
	WavePad      Waveform = "pad"
)

// Instrument is the melody timbre of a sensor
type Instrument string

const (
	InstSine   Instrument = "sine"
	InstBell   Instrument = "bell"
	InstPluck  Instrument = "pluck"
	InstChime  Instrument = "chime"
	InstMallet Instrument = "mallet"
	InstString Instrument = "string"
	InstPad    Instrument = "pad"
)

// StepPattern drives how a melody voice walks its scale
type StepPattern string

const (
	PatternWalk   StepPattern = "walk"
	PatternUp     StepPattern = "up"
	PatternDown   StepPattern = "down"
	PatternZigzag StepPattern = "zigzag"
	PatternJump   StepPattern = "jump"
	PatternRepeat StepPattern = "repeat"
	PatternChord  StepPattern = "chord"
	PatternTrill  StepPattern = "trill"
)

// StepPatterns in the order used for id-based selection
var StepPatterns = []StepPattern{
	PatternWalk, PatternUp, PatternDown, PatternZigzag,
	PatternJump, PatternRepeat, PatternChord, PatternTrill,
}

// LightInfo is the stable metadata a lamp reports
type LightInfo struct {
	ID        int
	Name      string
	ModelID   string // e.g. LCT007, LST002, LWB010
	LightType string // e.g. "Extended color light"
	UniqueID  string // MAC-based
}

// TimbrePersonality is the musical personality derived from lamp metadata
type TimbrePersonality struct {
	LightInfo

	Waveform     Waveform
	OctaveOffset int     // -2 to +2
	Richness     float64 // 0-1, harmonic content
	Attack       float64
	Character    string // warm, bright, deep, sparkle, soft, airy, neutral
	ProductType  string // bulb, strip, bar, spot, bloom, outdoor, plug, floor
}

type timbreTraits struct {
	waveform    Waveform
	richness    float64
	character   string
	productType string
}

// Exact model overrides, consulted before the family table
var timbreModels = map[string]timbreTraits{
	"LCT024": {WaveTriangle, 0.65, "airy", "floor"},  // Signe floor lamp
	"LST003": {WaveSaw, 0.9, "sparkle", "strip"},     // gradient strip
	"LST004": {WaveSaw, 0.9, "sparkle", "strip"},     // gradient strip
	"LLC010": {WaveBell, 0.8, "sparkle", "bloom"},    // Iris
}

// Model-family prefixes, first match wins
var timbreFamilies = []struct {
	prefix string
	traits timbreTraits
}{
	{"LCT", timbreTraits{WaveWarm, 0.7, "warm", "bulb"}},
	{"LCA", timbreTraits{WaveWarm, 0.75, "bright", "bulb"}},
	{"LST", timbreTraits{WaveSaw, 0.8, "sparkle", "strip"}},
	{"LWB", timbreTraits{WaveSine, 0.25, "neutral", "bulb"}},
	{"LWA", timbreTraits{WaveSine, 0.3, "soft", "bulb"}},
	{"LTW", timbreTraits{WaveTriangle, 0.5, "warm", "bulb"}},
	{"LTA", timbreTraits{WaveTriangle, 0.5, "warm", "bulb"}},
	{"LCG", timbreTraits{WaveTriangle, 0.6, "bright", "spot"}},
	{"LCF", timbreTraits{WaveTriangle, 0.55, "deep", "spot"}},
	{"LCX", timbreTraits{WaveSquare, 0.65, "deep", "bar"}},
	{"LLC", timbreTraits{WaveBell, 0.7, "airy", "bloom"}},
	{"LCL", timbreTraits{WavePad, 0.5, "deep", "outdoor"}},
	{"LCS", timbreTraits{WaveSaw, 0.6, "sparkle", "outdoor"}},
	{"LWO", timbreTraits{WaveSine, 0.35, "soft", "outdoor"}},
	{"LOM", timbreTraits{WaveSquare, 0.2, "neutral", "plug"}},
}

func lookupTimbre(model, lightType string) timbreTraits {
	if t, ok := timbreModels[model]; ok {
		return t
	}
	for _, f := range timbreFamilies {
		if strings.HasPrefix(model, f.prefix) {
			return f.traits
		}
	}
	lt := strings.ToLower(lightType)
	switch {
	case strings.Contains(lt, "outdoor"):
		return timbreTraits{WavePad, 0.4, "deep", "outdoor"}
	case strings.Contains(lt, "color"):
		return timbreTraits{WaveWarm, 0.6, "warm", "bulb"}
	}
	return timbreTraits{WaveSine, 0.5, "neutral", "bulb"}
}

// NewTimbrePersonality derives a lamp personality. The result depends only on
// the metadata, so re-deriving it is idempotent.
func NewTimbrePersonality(info LightInfo) TimbrePersonality {
	t := lookupTimbre(strings.ToUpper(info.ModelID), info.LightType)
	p := TimbrePersonality{
		LightInfo:    info,
		Waveform:     t.waveform,
		Richness:     t.richness,
		Character:    t.character,
		ProductType:  t.productType,
		Attack:       0.1,
		OctaveOffset: mod(info.ID, 5) - 2,
	}

	if info.UniqueID != "" {
		h := 0
		for _, r := range info.UniqueID {
			h += int(r)
		}
		p.Attack = 0.05 + float64(h%10)*0.02
		p.Richness += float64(h%20-10) * 0.01
	}

	switch {
	case strings.Contains(info.LightType, "Extended color"):
		p.Richness = math.Min(1.0, p.Richness+0.15)
	case strings.Contains(info.LightType, "Dimmable"):
		p.Richness = math.Max(0.15, p.Richness-0.1)
	}
	p.Richness = clamp01(p.Richness)
	return p
}

// DefaultTimbre is used for drone slots with no personality
func DefaultTimbre() TimbrePersonality {
	return TimbrePersonality{Waveform: WaveSine, Richness: 0.5, Attack: 0.1, Character: "neutral", ProductType: "bulb"}
}

// SensorInfo is the stable metadata a sensor reports
type SensorInfo struct {
	ID      int
	Name    string
	Model   string // sensor model or type, e.g. SML001, ZLLPresence
	Battery int    // percent, negative if unknown
}

// BehaviorPersonality is the musical personality derived from sensor metadata
type BehaviorPersonality struct {
	SensorInfo

	Seed       uint64
	Instrument Instrument
	Volatility float64 // 0-1, low battery makes a voice erratic
	Pattern    StepPattern
	Category   string // motion, switch, button, temp, light, daylight
	Octave     int
}

// Model substrings, first match wins
var behaviorModels = []struct {
	match      func(model string) bool
	instrument Instrument
	category   string
}{
	{contains("SML001"), InstPad, "motion"},   // indoor motion
	{contains("SML002"), InstBell, "motion"},  // outdoor motion
	{contains("SML003"), InstPad, "motion"},
	{contains("SML004"), InstChime, "motion"}, // motion lite
	{hasPrefix("RWL"), InstPluck, "switch"},   // dimmer switch
	{contains("ROM001"), InstMallet, "button"},
	{contains("ZGPSWITCH"), InstPluck, "button"}, // Hue Tap
	{contains("TEMPERATURE"), InstString, "temp"},
	{contains("LIGHTLEVEL"), InstChime, "light"},
	{contains("DAYLIGHT"), InstPad, "daylight"},
	{contains("PRESENCE"), InstPad, "motion"},
}

func contains(s string) func(string) bool {
	return func(model string) bool { return strings.Contains(model, s) }
}

func hasPrefix(s string) func(string) bool {
	return func(model string) bool { return strings.HasPrefix(model, s) }
}

// NewBehaviorPersonality derives a sensor personality. The seed is the sensor
// id, so a voice built from it walks the same path on every run.
func NewBehaviorPersonality(info SensorInfo) BehaviorPersonality {
	p := BehaviorPersonality{
		SensorInfo: info,
		Seed:       uint64(info.ID),
		Instrument: InstSine,
		Category:   "motion",
		Octave:     1,
	}

	model := strings.ToUpper(info.Model)
	for _, m := range behaviorModels {
		if m.match(model) {
			p.Instrument = m.instrument
			p.Category = m.category
			break
		}
	}

	p.Volatility = batteryVolatility(info.Battery, p.Category)

	p.Pattern = StepPatterns[mod(info.ID, len(StepPatterns))]
	switch p.Category {
	case "button":
		p.Pattern = []StepPattern{PatternChord, PatternJump, PatternTrill}[mod(info.ID, 3)]
	case "temp":
		p.Pattern = []StepPattern{PatternWalk, PatternUp, PatternDown}[mod(info.ID, 3)]
	}
	return p
}

func batteryVolatility(battery int, category string) float64 {
	switch {
	case battery < 0 || category == "button":
		return 0.1
	case battery <= 10:
		return 1.0
	case battery <= 20:
		return 0.8
	case battery <= 35:
		return 0.5
	case battery <= 50:
		return 0.3
	}
	return 0.1
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

package composer

import (
	"math"
	"testing"
)

func TestTimbrePersonalityModels(t *testing.T) {
	tests := []struct {
		model       string
		lightType   string
		waveform    Waveform
		character   string
		productType string
	}{
		{"LCT007", "", WaveWarm, "warm", "bulb"},
		{"LCT024", "", WaveTriangle, "airy", "floor"},
		{"LST002", "", WaveSaw, "sparkle", "strip"},
		{"LST004", "", WaveSaw, "sparkle", "strip"},
		{"LLC010", "", WaveBell, "sparkle", "bloom"},
		{"LLC011", "", WaveBell, "airy", "bloom"},
		{"LWB010", "", WaveSine, "neutral", "bulb"},
		{"LCX004", "", WaveSquare, "deep", "bar"},
		{"LOM001", "", WaveSquare, "neutral", "plug"},
		{"XYZ", "Outdoor color light", WavePad, "deep", "outdoor"},
		{"XYZ", "Color light", WaveWarm, "warm", "bulb"},
		{"XYZ", "On/Off plug-in unit", WaveSine, "neutral", "bulb"},
		{"lct007", "", WaveWarm, "warm", "bulb"},
	}
	for _, tt := range tests {
		p := NewTimbrePersonality(LightInfo{ID: 2, ModelID: tt.model, LightType: tt.lightType})
		if p.Waveform != tt.waveform || p.Character != tt.character || p.ProductType != tt.productType {
			t.Errorf("%s/%q: got %s %s %s, want %s %s %s", tt.model, tt.lightType,
				p.Waveform, p.Character, p.ProductType, tt.waveform, tt.character, tt.productType)
		}
	}
}

func TestTimbrePersonalityDerived(t *testing.T) {
	info := LightInfo{ID: 7, Name: "Desk", ModelID: "LCT007", LightType: "Extended color light", UniqueID: "00:17:88:01:00:bd:c7:b9-0b"}
	a := NewTimbrePersonality(info)
	b := NewTimbrePersonality(info)
	if a != b {
		t.Fatalf("derivation is not deterministic: %+v vs %+v", a, b)
	}
	if a.OctaveOffset != 0 {
		t.Errorf("octave offset for id 7 = %d, want 0", a.OctaveOffset)
	}
	if a.Richness < 0 || a.Richness > 1 {
		t.Errorf("richness %v out of range", a.Richness)
	}
	if a.Attack < 0.05 || a.Attack > 0.23 {
		t.Errorf("attack %v out of range", a.Attack)
	}

	for id, want := range map[int]int{0: -2, 1: -1, 4: 2, 5: -2, -1: 2} {
		p := NewTimbrePersonality(LightInfo{ID: id})
		if p.OctaveOffset != want {
			t.Errorf("octave offset for id %d = %d, want %d", id, p.OctaveOffset, want)
		}
	}
}

func TestTimbreLightTypeModifiers(t *testing.T) {
	ext := NewTimbrePersonality(LightInfo{ModelID: "LST001", LightType: "Extended color light"})
	if math.Abs(ext.Richness-0.95) > 1e-9 {
		t.Errorf("extended color richness = %v, want 0.95", ext.Richness)
	}
	dim := NewTimbrePersonality(LightInfo{ModelID: "LWB010", LightType: "Dimmable light"})
	if math.Abs(dim.Richness-0.15) > 1e-9 {
		t.Errorf("dimmable richness = %v, want 0.15", dim.Richness)
	}
}

func TestBehaviorPersonality(t *testing.T) {
	tests := []struct {
		info       SensorInfo
		instrument Instrument
		category   string
		volatility float64
		pattern    StepPattern
	}{
		{SensorInfo{ID: 8, Model: "SML001", Battery: 5}, InstPad, "motion", 1.0, PatternWalk},
		{SensorInfo{ID: 9, Model: "SML002", Battery: 18}, InstBell, "motion", 0.8, PatternUp},
		{SensorInfo{ID: 3, Model: "SML004", Battery: 30}, InstChime, "motion", 0.5, PatternZigzag},
		{SensorInfo{ID: 4, Model: "SML003", Battery: 45}, InstPad, "motion", 0.3, PatternJump},
		{SensorInfo{ID: 5, Model: "RWL021", Battery: 90}, InstPluck, "switch", 0.1, PatternRepeat},
		{SensorInfo{ID: 6, Model: "ROM001", Battery: 2}, InstMallet, "button", 0.1, PatternChord},
		{SensorInfo{ID: 7, Model: "ZGPSWITCH", Battery: -1}, InstPluck, "button", 0.1, PatternJump},
		{SensorInfo{ID: 11, Model: "ZLLTemperature", Battery: 100}, InstString, "temp", 0.1, PatternDown},
		{SensorInfo{ID: 12, Model: "ZLLPresence", Battery: -1}, InstPad, "motion", 0.1, PatternJump},
		{SensorInfo{ID: 13, Model: "unknown", Battery: 60}, InstSine, "motion", 0.1, PatternRepeat},
	}
	for _, tt := range tests {
		p := NewBehaviorPersonality(tt.info)
		if p.Instrument != tt.instrument || p.Category != tt.category {
			t.Errorf("%s: got %s/%s, want %s/%s", tt.info.Model, p.Instrument, p.Category, tt.instrument, tt.category)
		}
		if p.Volatility != tt.volatility {
			t.Errorf("%s battery %d: volatility %v, want %v", tt.info.Model, tt.info.Battery, p.Volatility, tt.volatility)
		}
		if p.Pattern != tt.pattern {
			t.Errorf("%s id %d: pattern %s, want %s", tt.info.Model, tt.info.ID, p.Pattern, tt.pattern)
		}
		if p.Seed != uint64(tt.info.ID) || p.Octave != 1 {
			t.Errorf("%s: seed %d octave %d", tt.info.Model, p.Seed, p.Octave)
		}
	}
}

func TestGetScale(t *testing.T) {
	if got := GetScale("dorian"); len(got) != 5 {
		t.Errorf("unknown scale should fall back to pentatonic, got %v", got)
	}
	if got := GetScale(ScaleMajor); len(got) != 7 || got[3] != 5 {
		t.Errorf("major = %v", got)
	}
	if f := SemitoneToFrequency(12, 220); f != 440 {
		t.Errorf("octave above 220 = %v", f)
	}
}

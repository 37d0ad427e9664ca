package composer

import "math"

// ScaleKind names a scale
type ScaleKind string

const (
	ScaleMajor      ScaleKind = "major"
	ScaleMinor      ScaleKind = "minor"
	ScalePentatonic ScaleKind = "pentatonic"
)

// BaseFrequency is C4, the default melody root
const BaseFrequency = 261.63

// Scales maps scale kinds to ascending semitone offsets
var Scales = map[ScaleKind][]int{
	ScaleMajor:      {0, 2, 4, 5, 7, 9, 11},
	ScaleMinor:      {0, 2, 3, 5, 7, 8, 10},
	ScalePentatonic: {0, 2, 4, 7, 9},
}

// GetScale returns a scale by kind, defaulting to pentatonic if unknown
func GetScale(kind ScaleKind) []int {
	if s, ok := Scales[kind]; ok {
		return s
	}
	return Scales[ScalePentatonic]
}

// SemitoneToFrequency converts a semitone offset from root using equal temperament
func SemitoneToFrequency(semitone int, root float64) float64 {
	return root * math.Exp2(float64(semitone)/12)
}

package mapper

import (
	"fmt"
	"math"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName renders a frequency as the nearest equal-tempered note, e.g. "A4".
// Non-positive frequencies render as "-".
func NoteName(freq float64) string {
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return "-"
	}
	midi := int(math.Round(69 + 12*math.Log2(freq/440)))
	idx := midi % 12
	if idx < 0 {
		idx += 12
	}
	octave := floorDiv(midi, 12) - 1
	return fmt.Sprintf("%s%d", noteNames[idx], octave)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

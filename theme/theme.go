package theme

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Meters
	MeterFull  rune // █ filled cell
	MeterEmpty rune // ░ unfilled cell

	// Voices and lamps
	VoiceActive rune // ● envelope audible
	VoiceIdle   rune // · waiting for a trigger
	LampOn      rune // ◉ lamp playing
	LampOff     rune // ○ lamp silent

	// Beat indicator
	Beat    rune // ▶ on the beat
	OffBeat rune // ▷ between beats
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			MeterFull:  '█',
			MeterEmpty: '░',

			VoiceActive: '●',
			VoiceIdle:   '·',
			LampOn:      '◉',
			LampOff:     '○',

			Beat:    '▶',
			OffBeat: '▷',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // night
	RoleMuted   = 0.2 // dusk blue
	RoleFG      = 0.4 // lavender (readable)
	RoleAccent  = 0.6 // lamp amber
	RoleActive  = 0.7 // warm orange
	RoleWarning = 0.8 // ember
	RoleSuccess = 1.0 // daylight
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// HueColor approximates what a lamp looks like: Hue hue (0-65535) and
// saturation (0-254) converted from HSV, brightness left to the meter.
func HueColor(hue, sat int) lipgloss.Color {
	hue = min(max(hue, 0), 65535)
	sat = min(max(sat, 0), 254)
	h := math.Mod(float64(hue)*360/65535, 360)
	return lipgloss.Color(colorful.Hsv(h, float64(sat)/254, 1).Hex())
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}

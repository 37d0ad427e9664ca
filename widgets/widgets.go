package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Meter renders a horizontal bar of width cells for a value in [0, 1]
func Meter(value float64, width int, full, empty rune) string {
	if width <= 0 {
		return ""
	}
	value = max(0, min(1, value))
	n := int(value*float64(width) + 0.5)
	return strings.Repeat(string(full), n) + strings.Repeat(string(empty), width-n)
}

// ColorMeter is a Meter whose filled part is drawn in color
func ColorMeter(value float64, width int, full, empty rune, color, dim lipgloss.Color) string {
	bar := []rune(Meter(value, width, full, empty))
	n := 0
	for n < len(bar) && bar[n] == full {
		n++
	}
	return lipgloss.NewStyle().Foreground(color).Render(string(bar[:n])) +
		lipgloss.NewStyle().Foreground(dim).Render(string(bar[n:]))
}

// Swatch renders a single colored block
func Swatch(color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render("■")
}

// Section renders a titled block: the title on its own line, then the body
// indented by two spaces
func Section(title string, titleColor lipgloss.Color, body string) string {
	var out strings.Builder
	out.WriteString(lipgloss.NewStyle().Foreground(titleColor).Bold(true).Render(title))
	for _, line := range strings.Split(body, "\n") {
		out.WriteString("\n  ")
		out.WriteString(line)
	}
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

package widgets

import (
	"strings"
	"testing"
)

func TestMeter(t *testing.T) {
	tests := []struct {
		value float64
		width int
		want  string
	}{
		{0, 4, "----"},
		{1, 4, "####"},
		{0.5, 4, "##--"},
		{0.6, 5, "###--"},
		{-1, 3, "---"},
		{2, 3, "###"},
		{0.5, 0, ""},
	}
	for _, tt := range tests {
		if got := Meter(tt.value, tt.width, '#', '-'); got != tt.want {
			t.Errorf("Meter(%v, %d) = %q, want %q", tt.value, tt.width, got, tt.want)
		}
	}
}

func TestSection(t *testing.T) {
	got := Section("LIGHTS", "#ffffff", "one\ntwo")
	lines := strings.Split(got, "\n")
	if len(lines) != 3 || lines[1] != "  one" || lines[2] != "  two" {
		t.Errorf("Section = %q", got)
	}
	if !strings.Contains(lines[0], "LIGHTS") {
		t.Errorf("title missing: %q", lines[0])
	}
}

func TestRenderKeyHelp(t *testing.T) {
	got := RenderKeyHelp([]KeySection{
		{Title: "Output", Keys: []KeyBinding{{Key: "+/-", Desc: "volume"}}},
	})
	want := "Output\n  +/-          volume"
	if got != want {
		t.Errorf("RenderKeyHelp = %q, want %q", got, want)
	}
}

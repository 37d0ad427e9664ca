package tui

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"hue-ambient/engine"
	"hue-ambient/hue"
	"hue-ambient/theme"
)

func testModel(t *testing.T) Model {
	t.Helper()
	e := engine.New(8000)
	p := engine.NewPoller(hue.NewMock(), e, time.Second, 0)
	if err := p.Poll(context.Background()); err != nil {
		t.Fatal(err)
	}
	return NewModel(e, p, nil, theme.New(theme.DefaultPalette()))
}

func press(m Model, s string) Model {
	var msg tea.KeyMsg
	switch s {
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestVolumeKeys(t *testing.T) {
	m := testModel(t)
	m.Engine.SetMasterVolume(0.5)

	m = press(m, "+")
	if !near(m.Engine.MasterVolume(), 0.55) {
		t.Fatalf("volume after + = %v", m.Engine.MasterVolume())
	}
	m = press(m, "-")
	m = press(m, "-")
	if !near(m.Engine.MasterVolume(), 0.45) {
		t.Fatalf("volume after -- = %v", m.Engine.MasterVolume())
	}

	m = press(m, "0")
	if m.Engine.MasterVolume() != 0 || !m.muted {
		t.Fatal("0 should mute")
	}
	m = press(m, "+") // adjusts the level restored on unmute
	if m.Engine.MasterVolume() != 0 {
		t.Fatal("volume changed while muted")
	}
	m = press(m, "0")
	if !near(m.Engine.MasterVolume(), 0.5) {
		t.Fatalf("unmute restored %v", m.Engine.MasterVolume())
	}

	for range 30 {
		m = press(m, "=")
	}
	if m.Engine.MasterVolume() != 1 {
		t.Fatalf("volume should clamp at 1, got %v", m.Engine.MasterVolume())
	}
}

func TestTriggerKeys(t *testing.T) {
	m := testModel(t)

	m = press(m, "2")
	if s := m.Engine.Snapshot(); s.ArpPattern != 2 || s.HatEnvelope == 0 {
		t.Fatalf("button 2: pattern %d, hat %v", s.ArpPattern, s.HatEnvelope)
	}

	m = press(m, "m")
	if m.Engine.Snapshot().ActiveVoices() == 0 {
		t.Fatal("m should play a voice")
	}
}

func TestQuit(t *testing.T) {
	m := testModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if next.(Model).View() != "" {
		t.Fatal("view should be empty after quit")
	}
}

func TestView(t *testing.T) {
	m := testModel(t)
	view := m.View()
	for _, want := range []string{
		"hue-ambient", "mock data",
		"LIGHTS", "Living Room", "Bedroom",
		"SENSORS", "Hallway Motion",
		"ENVIRONMENT", "OUTPUT", "CONNECTION", "polls", "LCT007",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "midi") {
		t.Error("midi line shown without a device manager")
	}
}

func TestLiveTriggers(t *testing.T) {
	m := testModel(t)
	view := m.View()
	for _, want := range []string{"LIVE TRIGGERS", "/1 active", "last none yet", "swell"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = press(m, "m")
	m = press(m, "3")
	view = m.View()
	for _, want := range []string{"last any voice at beat", "last 3 at beat"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q after triggers", want)
		}
	}
	if strings.Contains(view, "none yet") {
		t.Error("triggers not recorded")
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		volatility float64
		want       string
	}{
		{0.1, "calm"},
		{0.3, "flowing"},
		{0.8, "restless"},
	}
	for _, tt := range tests {
		if got := speedLabel(tt.volatility); got != tt.want {
			t.Errorf("speedLabel(%v) = %q, want %q", tt.volatility, got, tt.want)
		}
	}
	if filterLabel(0.2) != "muffled" || filterLabel(0.5) != "soft" || filterLabel(1) != "open" {
		t.Error("filter labels")
	}
	if noteNames(nil) != "-" || noteNames([]float64{440, 261.63}) != "A4 C4" {
		t.Errorf("noteNames = %q", noteNames([]float64{440, 261.63}))
	}
}

func TestTrim(t *testing.T) {
	if got := trim("Living Room Ceiling", 8); got != "Living …" {
		t.Errorf("trim = %q", got)
	}
	if got := trim("Hall", 8); got != "Hall" {
		t.Errorf("trim = %q", got)
	}
}

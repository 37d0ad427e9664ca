package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hue-ambient/composer"
	"hue-ambient/debug"
	"hue-ambient/engine"
	"hue-ambient/mapper"
	"hue-ambient/midi"
	"hue-ambient/theme"
	"hue-ambient/widgets"
)

// FrameRate is how often envelopes and the beat indicator are redrawn
const FrameRate = 100 * time.Millisecond

// VolumeStep is the change per +/- press
const VolumeStep = 0.05

const meterWidth = 16

type keyMap struct {
	Quit    key.Binding
	Up      key.Binding
	Down    key.Binding
	Mute    key.Binding
	Motion  key.Binding
	Buttons key.Binding
	Help    key.Binding
}

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:    Key("quit", "q", "ctrl+c"),
		Up:      Key("volume up", "+", "="),
		Down:    Key("volume down", "-", "_"),
		Mute:    Key("mute", "0"),
		Motion:  Key("motion", "m", " "),
		Buttons: key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "button")),
		Help:    Key("more", "?"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Motion, k.Buttons, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Mute},
		{k.Motion, k.Buttons},
		{k.Help, k.Quit},
	}
}

type Model struct {
	Engine    *engine.Engine
	Poller    *engine.Poller
	DeviceMgr *midi.DeviceManager // nil without MIDI input
	Theme     *theme.Theme

	keys     keyMap
	help     help.Model
	muted    bool
	unmuted  float64 // volume to restore
	devices  []string
	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

type tickMsg time.Time

func NewModel(e *engine.Engine, poller *engine.Poller, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	return Model{
		Engine:    e,
		Poller:    poller,
		DeviceMgr: deviceMgr,
		Theme:     th,
		keys:      defaultKeys(),
		help:      help.New(),
	}
}

func ListenForUpdates(poller *engine.Poller) tea.Cmd {
	return func() tea.Msg {
		<-poller.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func tick() tea.Cmd {
	return tea.Tick(FrameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Poller), tick()}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			m.setVolume(m.volume() + VolumeStep)

		case key.Matches(msg, m.keys.Down):
			m.setVolume(m.volume() - VolumeStep)

		case key.Matches(msg, m.keys.Mute):
			if m.muted {
				m.muted = false
				m.Engine.SetMasterVolume(m.unmuted)
			} else {
				m.muted = true
				m.unmuted = m.Engine.MasterVolume()
				m.Engine.SetMasterVolume(0)
			}

		case key.Matches(msg, m.keys.Motion):
			m.Engine.TriggerPercussion(0)

		case key.Matches(msg, m.keys.Buttons):
			m.Engine.TriggerChordChange(int(msg.String()[0] - '0'))

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case UpdateMsg:
		return m, ListenForUpdates(m.Poller)

	case tickMsg:
		return m, tick()

	case DeviceEventMsg:
		debug.Log("tui", "midi device %q event %d", msg.ID, msg.Type)
		m.devices = m.DeviceMgr.Controllers()
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

// volume is what +/- adjust: the remembered level while muted
func (m *Model) volume() float64 {
	if m.muted {
		return m.unmuted
	}
	return m.Engine.MasterVolume()
}

func (m *Model) setVolume(v float64) {
	v = max(0, min(1, v))
	if m.muted {
		m.unmuted = v
		return
	}
	m.Engine.SetMasterVolume(v)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Engine.Snapshot()
	status := m.Poller.Status()

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(m.header(snap))
	out.WriteString("\n\n")
	for _, section := range []string{
		m.connectionView(status),
		m.lightsView(snap, status),
		m.sensorsView(snap),
		m.environmentView(snap, status),
		m.outputView(snap),
		m.triggersView(snap, status),
	} {
		out.WriteString(section)
		out.WriteString("\n\n")
	}
	out.WriteString(m.help.View(m.keys))
	return out.String()
}

func (m Model) header(snap composer.Snapshot) string {
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	header := headerStyle.Render(fmt.Sprintf("hue-ambient  %c %3.0fbpm  %s", m.beat(snap), snap.BPM, snap.Scale))
	if debug.Enabled() {
		header += lipgloss.NewStyle().Foreground(m.Theme.Muted()).Render("  log " + debug.Path())
	}
	return header
}

func (m Model) beat(snap composer.Snapshot) rune {
	if snap.Beat-math.Floor(snap.Beat) < 0.25 {
		return m.Theme.Symbols.Beat
	}
	return m.Theme.Symbols.OffBeat
}

func (m Model) connectionView(status engine.Status) string {
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	source := "mock data"
	if status.Source != "" {
		source = "bridge " + status.Source
	}
	last := "never"
	if !status.LastPoll.IsZero() {
		last = status.LastPoll.Format("15:04:05")
	}
	lines := []string{
		fmt.Sprintf("%-12s %s", "source", source),
		fmt.Sprintf("%-12s %s  (%d polls)", "last poll", last, status.PollCount),
	}
	if status.Err != nil {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("error %d/%d: %v",
			status.ConsecutiveErrors, status.MaxErrors, status.Err)))
	}
	if m.DeviceMgr != nil {
		midiLine := "waiting for device"
		if len(m.devices) > 0 {
			midiLine = strings.Join(m.devices, ", ")
		}
		lines = append(lines, fmt.Sprintf("%-12s %s", "midi", midiLine))
	}
	return widgets.Section("CONNECTION", m.Theme.FG(), strings.Join(lines, "\n"))
}

func (m Model) lightsView(snap composer.Snapshot, status engine.Status) string {
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	colors := make(map[int]lipgloss.Color, len(status.Lamps))
	for _, l := range status.Lamps {
		if l.Hue != nil && l.Saturation != nil {
			colors[l.ID] = theme.HueColor(*l.Hue, *l.Saturation)
		}
	}
	timbres := make(map[int]composer.TimbrePersonality, len(snap.Lamps))
	for _, p := range snap.Lamps {
		timbres[p.ID] = p
	}

	var lines []string
	for _, p := range status.Params {
		lines = append(lines, m.lampLine(p, timbres[p.LightID], colors[p.LightID], dimStyle))
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("no lights yet"))
	} else {
		// the LFO swings between 0.4 and 1.0
		lines = append(lines, fmt.Sprintf("  %-23s %s %s", "swell",
			widgets.Meter((snap.DroneLFO-0.4)/0.6, meterWidth, m.Theme.Symbols.MeterFull, m.Theme.Symbols.MeterEmpty),
			dimStyle.Render(fmt.Sprintf("x%.2f", snap.DroneLFO))))
	}
	return widgets.Section("LIGHTS → DRONE", m.Theme.FG(), strings.Join(lines, "\n"))
}

func (m Model) lampLine(p mapper.MusicParams, timbre composer.TimbrePersonality, color lipgloss.Color, dimStyle lipgloss.Style) string {
	sym := m.Theme.Symbols
	if !p.Playing {
		return dimStyle.Render(fmt.Sprintf("%c %-16s %-7s off", sym.LampOff, trim(p.LightName, 16), p.ModelID))
	}
	swatch := string(sym.LampOn)
	if color != "" {
		swatch = widgets.Swatch(color)
	}
	return fmt.Sprintf("%s %-16s %-7s %-4s %s %s",
		swatch, trim(p.LightName, 16), p.ModelID, mapper.NoteName(p.Frequency),
		widgets.ColorMeter(p.Amplitude, meterWidth, sym.MeterFull, sym.MeterEmpty, m.Theme.Accent(), m.Theme.Muted()),
		dimStyle.Render(fmt.Sprintf("%s %s %s", timbre.Waveform, timbre.Character, p.Scale)))
}

func (m Model) sensorsView(snap composer.Snapshot) string {
	sym := m.Theme.Symbols
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	activeStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())

	voices := make(map[int]composer.VoiceState, len(snap.Voices))
	for _, v := range snap.Voices {
		voices[v.SourceID] = v
	}

	var lines []string
	for _, p := range snap.Sensors {
		v := voices[p.ID]
		dot := dimStyle.Render(string(sym.VoiceIdle))
		note := "-"
		if v.Active {
			dot = activeStyle.Render(string(sym.VoiceActive))
			note = mapper.NoteName(v.Frequency)
		}
		lines = append(lines, fmt.Sprintf("%s %-16s #%-3d %-4s %3d%% %s %s",
			dot, trim(p.Name, 16), p.ID, note, p.Battery,
			widgets.ColorMeter(p.Volatility, meterWidth/2, sym.MeterFull, sym.MeterEmpty, m.Theme.Warning(), m.Theme.Muted()),
			dimStyle.Render(fmt.Sprintf("%s %s %s", p.Category, p.Instrument, p.Pattern))))
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("no motion sensors"))
	}
	return widgets.Section("SENSORS → MELODY", m.Theme.FG(), strings.Join(lines, "\n"))
}

// speedLabel names the schedule a volatility selects
func speedLabel(volatility float64) string {
	switch arp, _ := composer.ScheduleFor(volatility); arp {
	case 4:
		return "restless"
	case 2:
		return "flowing"
	}
	return "calm"
}

func filterLabel(cutoff float64) string {
	switch {
	case cutoff < 0.4:
		return "muffled"
	case cutoff < 0.7:
		return "soft"
	}
	return "open"
}

func (m Model) environmentView(snap composer.Snapshot, status engine.Status) string {
	sym := m.Theme.Symbols
	env := status.Env
	reverb := "dry (day)"
	if !env.IsDaytime {
		reverb = fmt.Sprintf("wet +%.1f (night)", env.ReverbBoost)
	}
	lines := []string{
		fmt.Sprintf("%-12s x%.2f -> %.0f bpm", "temperature", env.TempoModifier, snap.BPM),
		fmt.Sprintf("%-12s %3.0f%% -> volatility %.2f -> %s", "battery", snap.AvgBattery, snap.AvgVolatility, speedLabel(snap.AvgVolatility)),
		fmt.Sprintf("%-12s %s %s", "light level", widgets.Meter(env.FilterCutoff, meterWidth/2, sym.MeterFull, sym.MeterEmpty), filterLabel(env.FilterCutoff)),
		fmt.Sprintf("%-12s %s", "daylight", reverb),
	}
	return widgets.Section("ENVIRONMENT", m.Theme.FG(), strings.Join(lines, "\n"))
}

func noteNames(freqs []float64) string {
	names := make([]string, 0, len(freqs))
	for _, f := range freqs {
		names = append(names, mapper.NoteName(f))
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, " ")
}

func (m Model) outputView(snap composer.Snapshot) string {
	sym := m.Theme.Symbols
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	var drone []float64
	for i, f := range snap.DroneFrequencies {
		if snap.DroneAmplitudes[i] > 0.01 {
			drone = append(drone, f)
		}
	}

	vol := fmt.Sprintf("%-12s %s %3.0f%%", "volume",
		widgets.ColorMeter(m.volume(), meterWidth, sym.MeterFull, sym.MeterEmpty, m.Theme.Success(), m.Theme.Muted()),
		m.volume()*100)
	if m.muted {
		vol += warnStyle.Render("  muted")
	}
	lines := []string{
		fmt.Sprintf("%-12s %s", "drone", noteNames(drone)),
		fmt.Sprintf("%-12s %s: %s  (1/%d beat)", "arp", snap.ArpPatternName, noteNames(snap.ArpNotes), snap.ArpSubdivision),
		fmt.Sprintf("%-12s %d/%d active, every %d beats", "melody", snap.ActiveVoices(), len(snap.Voices), snap.MelodyInterval),
		fmt.Sprintf("%-12s kick %s  hat %s", "percussion",
			widgets.Meter(snap.KickEnvelope, 4, sym.MeterFull, sym.MeterEmpty),
			widgets.Meter(snap.HatEnvelope, 4, sym.MeterFull, sym.MeterEmpty)),
		fmt.Sprintf("%-12s %c %.0f bpm  beat %.1f", "tempo", m.beat(snap), snap.BPM, snap.Beat),
		vol,
	}
	return widgets.Section("OUTPUT", m.Theme.FG(), strings.Join(lines, "\n"))
}

func (m Model) triggersView(snap composer.Snapshot, status engine.Status) string {
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	active, total := 0, 0
	for _, s := range status.Sensors {
		if s.Presence == nil {
			continue
		}
		total++
		if *s.Presence {
			active++
		}
	}

	motion := "none yet"
	if last := snap.LastMotion; last.Fired {
		who := "any voice"
		if last.Value != 0 {
			who = fmt.Sprintf("#%d", last.Value)
		}
		motion = fmt.Sprintf("%s at beat %.1f", who, last.Beat)
	}
	button := "none yet"
	if last := snap.LastButton; last.Fired {
		button = fmt.Sprintf("%d at beat %.1f", last.Value, last.Beat)
	}

	lines := []string{
		fmt.Sprintf("%-12s %d/%d active  last %s  %s", "motion", active, total, motion,
			dimStyle.Render("-> melody note + kick")),
		fmt.Sprintf("%-12s last %s  %s", "button", button,
			dimStyle.Render("-> arp pattern")),
	}
	return widgets.Section("LIVE TRIGGERS", m.Theme.FG(), strings.Join(lines, "\n"))
}

func trim(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

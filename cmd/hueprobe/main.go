// hueprobe shows what the ambient engine would make of the current lights and
// sensors, lists MIDI inputs, and renders audio offline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"hue-ambient/config"
	"hue-ambient/engine"
	"hue-ambient/hue"
	"hue-ambient/mapper"
	"hue-ambient/midi"
	"hue-ambient/widgets"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "lights":
		err = lights(os.Args[2:])
	case "sensors":
		err = sensors(os.Args[2:])
	case "ports":
		err = ports()
	case "render":
		err = render(os.Args[2:])
	default:
		usage()
		return
	}
	if err != nil {
		if issue := fmsg.GetIssue(err); issue != "" {
			fmt.Fprintln(os.Stderr, issue)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("hueprobe - inspect the hue-ambient mapping")
	fmt.Println("")
	fmt.Println(widgets.RenderKeyHelp([]widgets.KeySection{
		{Title: "Commands:", Keys: []widgets.KeyBinding{
			{Key: "lights", Desc: "Show each lamp's note, level and scale"},
			{Key: "sensors", Desc: "Show sensor readings and the environment"},
			{Key: "ports", Desc: "List MIDI input ports"},
			{Key: "render", Desc: "Render mock data to a WAV file"},
		}},
		{Title: "Flags (lights, sensors):", Keys: []widgets.KeyBinding{
			{Key: "--mock", Desc: "Use simulated data instead of the bridge"},
		}},
	}))
}

// collector returns the configured bridge, or mock data when asked or when
// no bridge has been linked yet
func collector(args []string, name string) (hue.Collector, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	mock := fs.Bool("mock", false, "use simulated data")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *mock || !cfg.HasBridge() {
		fmt.Println("(mock data)")
		return hue.NewMock(), nil
	}
	fmt.Printf("(bridge %s)\n", cfg.Bridge.IP)
	return hue.NewBridge(cfg.Bridge.IP, cfg.Bridge.Username), nil
}

func lights(args []string) error {
	c, err := collector(args, "lights")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), hue.DefaultTimeout)
	defer cancel()

	lamps, sensors, err := c.Poll(ctx)
	if err != nil {
		return err
	}
	env := mapper.MapSensors(sensors)
	params := mapper.MapLamps(lamps, &env)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODEL\tNOTE\tHZ\tLEVEL\tSCALE\tREVERB")
	for _, p := range params {
		if !p.Playing {
			fmt.Fprintf(w, "%d\t%s\t%s\t-\t-\t-\t-\t-\n", p.LightID, p.LightName, p.ModelID)
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\t%.2f\t%s\t%.2f\n",
			p.LightID, p.LightName, p.ModelID, mapper.NoteName(p.Frequency),
			p.Frequency, p.Amplitude, p.Scale, p.Reverb)
	}
	return w.Flush()
}

func sensors(args []string) error {
	c, err := collector(args, "sensors")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), hue.DefaultTimeout)
	defer cancel()

	list, err := c.Sensors(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tMODEL\tBATTERY\tEFFECT")
	for _, s := range list {
		info := engine.SensorInfo(s)
		p := mapper.MapSensor(s)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d%%\t%s\n", s.ID, s.Name, s.Type, info.Model, info.Battery, effect(p))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	env := mapper.MapSensors(list)
	fmt.Printf("\nfilter %.2f  tempo x%.2f  daytime %v  reverb +%.2f\n",
		env.FilterCutoff, env.TempoModifier, env.IsDaytime, env.ReverbBoost)
	return nil
}

func effect(p mapper.SensorParams) string {
	switch p.SensorType {
	case hue.TypePresence:
		if p.TriggerHit {
			return "motion: plays its voice"
		}
		return "motion: idle"
	case hue.TypeSwitch:
		return fmt.Sprintf("button %d: arp pattern", p.ButtonIndex)
	case hue.TypeLightLevel:
		return fmt.Sprintf("filter %.2f", p.FilterCutoff)
	case hue.TypeTemperature:
		return fmt.Sprintf("tempo x%.2f", p.TempoModifier)
	case hue.TypeDaylight:
		if p.AmbientLayer {
			return "day"
		}
		return "night"
	}
	return "-"
}

func ports() error {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Printf("(waiting up to %v...)\n", midi.PortTimeout)
	names, err := midi.ListPorts()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("  (none)")
	}
	for i, name := range names {
		fmt.Printf("  [%d] %s\n", i, name)
	}
	return nil
}

func render(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("o", "hue-ambient.wav", "output file")
	dur := fs.Duration("d", 30*time.Second, "length")
	seed := fs.Uint64("seed", 1, "random seed")
	rate := fs.Int("rate", config.DefaultSampleRate, "sample rate")
	fs.Parse(args)

	e, clock := engine.NewOffline(*rate, *seed)
	p := engine.NewPoller(hue.NewMock(), e, config.DefaultPollInterval, 0)

	f, err := os.Create(*out)
	if err != nil {
		return fault.Wrap(err, fmsg.With("create wav"), ftag.With(ftag.Internal))
	}
	defer f.Close()

	// poll mock data every interval of rendered time
	var next time.Duration
	between := func(elapsed time.Duration) error {
		if elapsed < next {
			return nil
		}
		next += config.DefaultPollInterval
		return p.Poll(context.Background())
	}

	start := time.Now()
	if err := engine.RenderWAV(f, e, clock, *dur, config.DefaultBufferSize, between); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%v of audio in %v)\n", *out, *dur, time.Since(start).Round(time.Millisecond))
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"hue-ambient/api"
	"hue-ambient/config"
	"hue-ambient/debug"
	"hue-ambient/engine"
	"hue-ambient/hue"
	"hue-ambient/midi"
	"hue-ambient/theme"
	"hue-ambient/tui"
)

func main() {
	mock := flag.Bool("mock", false, "use simulated lights and sensors")
	quiet := flag.Bool("quiet", false, "no status display")
	debugLog := flag.Bool("debug", false, "write ~/.config/hue-ambient/debug.log")
	httpAddr := flag.String("http", "", "serve the control API on this address")
	flag.Parse()

	if err := run(*mock, *quiet, *debugLog, *httpAddr); err != nil {
		if issue := fmsg.GetIssue(err); issue != "" {
			fmt.Fprintln(os.Stderr, issue)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(mock, quiet, debugLog bool, httpAddr string) error {
	if debugLog {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
		fmt.Fprintf(os.Stderr, "debug log: %s\n", debug.Path())
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}

	// without a terminal there is nothing to draw on
	if !quiet && !term.IsTerminal(int(os.Stdout.Fd())) {
		quiet = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector, err := connect(ctx, cfg, mock)
	if err != nil {
		return err
	}

	e := engine.New(cfg.Audio.SampleRate)
	e.SetMasterVolume(cfg.Audio.MasterVolume)

	player, err := engine.NewPlayer(cfg.Audio.SampleRate, cfg.Audio.BufferSize)
	if err != nil {
		return err
	}
	defer player.Close()
	player.SetSource(e)
	player.Start()

	poller := engine.NewPoller(collector, e, cfg.PollInterval(), cfg.Poll.MaxConsecutiveErrors)

	var deviceMgr *midi.DeviceManager
	if cfg.MIDI.Input != "" {
		deviceMgr = midi.NewDeviceManager(cfg.MIDI.Input, e)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return poller.Run(ctx)
	})

	if deviceMgr != nil {
		g.Go(func() error {
			deviceMgr.Run(ctx)
			return nil
		})
	}

	if cfg.HTTP.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           api.NewHandler(api.EngineCallbacks{Engine: e, Poller: poller}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			debug.Log("main", "control API on %s", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fault.Wrap(err, fmsg.With("control API"), ftag.With(ftag.Internal))
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return srv.Shutdown(shutdown)
		})
	}

	if quiet {
		fmt.Printf("hue-ambient playing from %s, ctrl+c to stop\n", sourceName(collector))
	} else {
		th := theme.New(theme.Load(cfg.PalettePath()))
		p := tea.NewProgram(tui.NewModel(e, poller, deviceMgr, th), tea.WithAltScreen(), tea.WithContext(ctx))
		g.Go(func() error {
			_, err := p.Run()
			stop()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		})
	}

	err = g.Wait()
	player.Stop()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// connect returns mock data when asked, otherwise the linked bridge. A
// missing bridge falls back to mock data so there is always something to hear.
func connect(ctx context.Context, cfg *config.Config, mock bool) (hue.Collector, error) {
	if mock {
		return hue.NewMock(), nil
	}

	b, err := hue.AutoConnect(ctx, cfg, nil, func(host string) {
		fmt.Printf("Found a Hue bridge at %s. Press its link button (waiting %v)...\n", host, hue.LinkTimeout)
	})
	if err != nil {
		if ftag.Get(err) == ftag.NotFound {
			fmt.Println("No Hue bridge found, playing mock data")
			debug.Log("main", "discovery failed: %v", err)
			return hue.NewMock(), nil
		}
		return nil, err
	}
	return b, nil
}

func sourceName(c hue.Collector) string {
	if c.Source() == "" {
		return "mock data"
	}
	return "bridge " + c.Source()
}

// SPDX-License-Identifier: EPL-2.0

// pcm56play plays a music library on a pair of PCM56 DACs, controlled
// from a small web UI.
//
// With -gpio=sim the DACs are emulated; -monitor plays the emulated output
// on the host speakers and -record writes it to a WAV file. With
// -render the named track is rendered offline to a WAV file and the
// program exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path"
	"strings"
	"sync"
	"syscall"

	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/ik5/pcm56play"
	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/control"
	"github.com/ik5/pcm56play/dac"
	"github.com/ik5/pcm56play/formats"
	"github.com/ik5/pcm56play/formats/wav"
	"github.com/ik5/pcm56play/internal/config"
	"github.com/ik5/pcm56play/internal/gpio/periph"
	"github.com/ik5/pcm56play/internal/log"
	"github.com/ik5/pcm56play/internal/monitor"
	"github.com/ik5/pcm56play/internal/pcm56"
	"github.com/ik5/pcm56play/player"
	"github.com/ik5/pcm56play/web"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "pcm56play:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flag.StringVar(&cfg.MusicDir, "music", cfg.MusicDir, "music library directory")
	flag.StringVar(&cfg.HTTPPort, "port", cfg.HTTPPort, "HTTP port of the web UI")
	flag.StringVar(&cfg.GPIO, "gpio", cfg.GPIO, "pin backend: sim or periph")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.BoolVar(&cfg.Monitor, "monitor", cfg.Monitor, "play emulated output on the speakers (sim only)")
	flag.StringVar(&cfg.Record, "record", cfg.Record, "record emulated output to this WAV file (sim only)")
	flag.Float64Var(&cfg.Calibration, "calibration", cfg.Calibration, "sample clock calibration factor")
	flag.IntVar(&cfg.SampleRate, "rate", cfg.SampleRate, "DAC sample rate, 0 follows each track")
	render := flag.String("render", "", "render -track to this WAV file and exit")
	track := flag.String("track", "", "track for -render, relative to -music")
	volume := flag.Int("volume", 0, "volume for -render")
	accessLog := flag.Bool("access-log", false, "log every HTTP request")
	flag.Parse()

	log.Init(cfg.LogLevel)
	logger := log.L()

	registry := formats.NewRegistry()
	library := os.DirFS(cfg.MusicDir)

	if *render != "" {
		return renderTrack(library, registry, *track, *render, *volume)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pcfg := player.DefaultConfig()
	pcfg.Pins = cfg.Pins
	pcfg.Calibration = cfg.Calibration
	pcfg.SampleRate = cfg.SampleRate

	monitorRate := pcfg.MaxSampleRate
	if pcfg.SampleRate > 0 {
		monitorRate = pcfg.SampleRate
	}

	var (
		port dac.Port
		opts []player.Option
		mon  *monitor.Monitor
	)

	switch cfg.GPIO {
	case config.GPIOPeriph:
		if err := periph.Init(); err != nil {
			return err
		}
		pport := periph.NewPort()
		port = pport
		defer func() {
			if n := pport.WriteErrors(); n > 0 {
				logger.Warn("gpio write errors", "count", n)
			}
		}()

		relay, err := periph.NewRelay(gpioreg.ByName, cfg.SourceRelay, cfg.PowerRelay)
		if err != nil {
			return err
		}
		defer relay.Close()
		opts = append(opts, player.WithRelay(relay))

	default:
		var mopts []monitor.Option
		if cfg.Monitor {
			mopts = append(mopts, monitor.WithSpeaker())
		}
		if cfg.Record != "" {
			f, err := os.Create(cfg.Record)
			if err != nil {
				return err
			}
			defer f.Close()
			mopts = append(mopts, monitor.WithRecorder(wav.NewRecorder(f, monitorRate)))
		}

		var pairOpts []pcm56.Option
		if len(mopts) > 0 {
			mon = monitor.New(monitorRate, mopts...)
			if err := mon.Start(); err != nil {
				return err
			}
			defer func() {
				if err := mon.Close(); err != nil {
					logger.Error("monitor close", "error", err)
				}
			}()
			pairOpts = append(pairOpts, pcm56.WithLatchHook(mon.Hook))
		}
		port = pcm56.New(cfg.Pins, pairOpts...)
	}

	state := control.New()
	p, err := player.New(library, registry, port, state, pcfg, opts...)
	if err != nil {
		return err
	}

	var wopts []web.Option
	if *accessLog {
		wopts = append(wopts, web.WithAccessLog())
	}
	srv := web.NewServer(":"+cfg.HTTPPort, library, state, p, wopts...)

	var wg sync.WaitGroup
	errc := make(chan error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errc <- p.Run(ctx)
	}()

	if mon != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errc <- mon.Run(ctx)
		}()
	}

	go func() {
		errc <- srv.Start()
	}()

	logger.Info("pcm56play started",
		"music", cfg.MusicDir, "gpio", cfg.GPIO, "port", cfg.HTTPPort, "formats", registry.Formats())

	select {
	case <-ctx.Done():
	case err = <-errc:
		stop()
	}

	logger.Info("shutting down")
	serr := srv.Shutdown()
	wg.Wait()

	return errors.Join(err, serr)
}

// renderTrack writes name from library to the WAV file out, the way the
// DAC would receive it.
func renderTrack(library fs.FS, registry *audio.Registry, name, out string, volume int) error {
	if name == "" {
		return errors.New("-render needs -track")
	}

	codec, err := registry.ForPath(name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	in, err := library.Open(strings.TrimPrefix(path.Clean("/"+name), "/"))
	if err != nil {
		return err
	}
	defer in.Close()

	dec, err := codec.Decode(in)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer dec.Close()

	f, err := os.Create(out)
	if err != nil {
		return err
	}

	frames, err := pcm56play.RenderWAV(f, dec, volume)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	log.L().Info("rendered", "track", name, "out", out, "frames", frames, "rate", dec.Info().SampleRate)

	return nil
}

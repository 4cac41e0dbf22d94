// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/buffer"
	"github.com/ik5/pcm56play/clock"
	"github.com/ik5/pcm56play/control"
	"github.com/ik5/pcm56play/dac"
	"github.com/ik5/pcm56play/feed"
	"github.com/ik5/pcm56play/internal/log"
)

// TimerFactory returns a fresh timer for one playback session.
type TimerFactory func() clock.Timer

// Relay switches the analog output stage. It is on while playing.
type Relay interface {
	Set(on bool) error
}

type Player struct {
	cfg      Config
	fsys     fs.FS
	registry *audio.Registry
	port     dac.Port
	state    *control.State
	buf      *buffer.Buffer
	newTimer TimerFactory
	relay    Relay
	yield    func()
	logger   *slog.Logger
}

type Option func(*Player)

// WithTimerFactory replaces the default SoftTimer per session.
func WithTimerFactory(f TimerFactory) Option {
	return func(p *Player) { p.newTimer = f }
}

func WithRelay(r Relay) Option {
	return func(p *Player) { p.relay = r }
}

// WithYield sets the feed loop's yield function.
func WithYield(fn func()) Option {
	return func(p *Player) { p.yield = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// New creates a player reading tracks from fsys. Track paths are slash
// separated and may start with "/".
func New(fsys fs.FS, registry *audio.Registry, port dac.Port, state *control.State, cfg Config, opts ...Option) (*Player, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Pins.Validate(); err != nil {
		return nil, err
	}
	if cfg.SampleRate < 0 || cfg.SampleRate > cfg.MaxSampleRate {
		return nil, fmt.Errorf("%w: %d Hz target", ErrUnsupportedRate, cfg.SampleRate)
	}

	p := &Player{
		cfg:      cfg,
		fsys:     fsys,
		registry: registry,
		port:     port,
		state:    state,
		buf:      buffer.New(cfg.BufferSize),
		newTimer: func() clock.Timer { return clock.NewSoftTimer(clock.DefaultResolutionHz, 0) },
		logger:   log.L(),
	}
	for _, o := range opts {
		o(p)
	}

	return p, nil
}

func (p *Player) Config() Config { return p.cfg }

// fsPath maps a track path to an fs.FS name.
func fsPath(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		return "."
	}

	return name
}

// track is an opened file with its decoder.
type track struct {
	file fs.File
	dec  audio.BlockDecoder
}

func (t *track) Close() error {
	return errors.Join(t.dec.Close(), t.file.Close())
}

func (p *Player) open(name string) (*track, error) {
	codec, err := p.registry.ForPath(name)
	if err != nil {
		return nil, fmt.Errorf("player: %s: %w", name, err)
	}

	f, err := p.fsys.Open(fsPath(name))
	if err != nil {
		return nil, fmt.Errorf("player: open: %w", err)
	}

	dec, err := codec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("player: %s: %w", name, err)
	}

	return &track{file: f, dec: dec}, nil
}

func (p *Player) check(info audio.StreamInfo) error {
	switch {
	case info.Channels < 1 || info.Channels > 2:
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, info.Channels)
	case info.SampleRate <= 0 || info.SampleRate > p.cfg.MaxSourceRate:
		return fmt.Errorf("%w: %d Hz", ErrUnsupportedRate, info.SampleRate)
	case info.BitDepth < 1 || info.BitDepth > 32:
		return fmt.Errorf("%w: %d", ErrUnsupportedDepth, info.BitDepth)
	}

	return nil
}

// Validate reads the stream metadata of name and checks that the player
// can play it.
func (p *Player) Validate(name string) (audio.StreamInfo, error) {
	t, err := p.open(name)
	if err != nil {
		return audio.StreamInfo{}, err
	}
	defer t.Close()

	info := t.dec.Info()

	return info, p.check(info)
}

// outputRate picks the DAC rate for a stream: sampleRate when set,
// otherwise the stream rate capped at MaxSampleRate.
func (p *Player) outputRate(info audio.StreamInfo, sampleRate int) (int, error) {
	switch {
	case sampleRate < 0 || sampleRate > p.cfg.MaxSampleRate:
		return 0, fmt.Errorf("%w: %d Hz target", ErrUnsupportedRate, sampleRate)
	case sampleRate > 0:
		return sampleRate, nil
	}

	return min(info.SampleRate, p.cfg.MaxSampleRate), nil
}

// PlayTrack plays name until it completes, a command interrupts it or ctx
// is done. The DAC runs at sampleRate, or at the stream's own rate when it
// is 0, and streams at another rate are resampled. A calibration of 0 uses
// the configured one.
func (p *Player) PlayTrack(ctx context.Context, name string, sampleRate int, calibration float64) (res feed.Result, err error) {
	logger := p.logger.With("session", uuid.NewString(), "track", name)

	t, err := p.open(name)
	if err != nil {
		return feed.ResultStopped, err
	}
	defer func() {
		err = errors.Join(err, t.Close())
	}()

	info := t.dec.Info()
	logger.Info("player: stream",
		"sample_rate", info.SampleRate,
		"bit_depth", info.BitDepth,
		"channels", info.Channels,
		"frames", info.TotalFrames,
	)
	if err := p.check(info); err != nil {
		return feed.ResultStopped, err
	}

	rate, err := p.outputRate(info, sampleRate)
	if err != nil {
		return feed.ResultStopped, err
	}
	if rate != info.SampleRate {
		rs, err := audio.NewResampler(t.dec, rate)
		if err != nil {
			return feed.ResultStopped, fmt.Errorf("player: %w", err)
		}
		t.dec = rs
		logger.Info("player: resampling", "from", info.SampleRate, "to", rate)
	}

	if calibration <= 0 {
		calibration = p.cfg.Calibration
	}

	p.buf.Reset()

	drv, err := dac.New(p.port, p.cfg.Pins)
	if err != nil {
		return feed.ResultStopped, fmt.Errorf("player: driver: %w", err)
	}
	defer func() {
		err = errors.Join(err, drv.Close())
	}()

	sc, err := clock.New(p.newTimer(), p.buf.ISR(), drv, clock.Config{
		SampleRate:   rate,
		Oversampling: p.cfg.Oversampling,
		Calibration:  calibration,
	})
	if err != nil {
		return feed.ResultStopped, err
	}
	logger.Debug("player: clock armed", "alarm_ticks", sc.AlarmTicks())

	loop := &feed.Loop{
		Decoder:    t.dec,
		Buffer:     p.buf.Task(),
		State:      p.state,
		OutputBits: p.cfg.OutputBits,
		Yield:      p.yield,
		Logger:     logger,
	}
	res, err = loop.Run(ctx)

	// stop the clock before the driver releases its pins
	err = errors.Join(err, sc.Close())
	logger.Info("player: session end",
		"result", res.String(),
		"samples", drv.Writes(),
		"swaps", p.buf.Swaps(),
	)

	return res, err
}

// SPDX-License-Identifier: EPL-2.0

// Package monitor plays the words latched by the emulated DAC pair on the
// host's speakers and optionally records them to a WAV file.
//
// The output runs at one fixed rate chosen at start. Tracks at other rates
// are heard at the wrong pitch but recorded sample exact.
package monitor

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/formats/wav"
	"github.com/ik5/pcm56play/internal/log"
)

const (
	// DefaultRingSize holds about 370 ms at 44.1 kHz.
	DefaultRingSize = 1 << 14

	frameBytes  = 4
	drainPeriod = 20 * time.Millisecond
	otoBuffer   = 50 * time.Millisecond
)

// Monitor is fed from the DAC latch hook and drained by the speaker
// player or, without speakers, by Run.
type Monitor struct {
	rate    int
	speaker bool
	ring    *Ring
	rec     *wav.Recorder
	logger  *slog.Logger

	mu      sync.Mutex
	ctx     *oto.Context
	player  *oto.Player
	scratch []audio.StereoSample
	recErr  error
}

type Option func(*Monitor)

// WithSpeaker enables host audio output through oto.
func WithSpeaker() Option {
	return func(m *Monitor) { m.speaker = true }
}

// WithRecorder tees every drained sample into rec. The monitor closes it.
func WithRecorder(rec *wav.Recorder) Option {
	return func(m *Monitor) { m.rec = rec }
}

func WithRingSize(n int) Option {
	return func(m *Monitor) { m.ring = NewRing(n) }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

func New(sampleRate int, opts ...Option) *Monitor {
	m := &Monitor{
		rate:   sampleRate,
		logger: log.With("component", "monitor"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.ring == nil {
		m.ring = NewRing(DefaultRingSize)
	}

	return m
}

// Hook queues a latched sample. It is meant for pcm56.WithLatchHook and
// never blocks.
func (m *Monitor) Hook(s audio.StereoSample) {
	m.ring.Push(s)
}

// Ring exposes the sample queue.
func (m *Monitor) Ring() *Ring { return m.ring }

// Read fills p with interleaved signed 16-bit little endian frames. When
// the ring runs dry the rest of p is silence, so the device never stalls.
func (m *Monitor) Read(p []byte) (int, error) {
	n := len(p) / frameBytes * frameBytes

	m.mu.Lock()
	defer m.mu.Unlock()

	m.scratch = m.scratch[:0]
	for i := 0; i < n; i += frameBytes {
		s, ok := m.ring.Pop()
		if ok {
			m.scratch = append(m.scratch, s)
		}
		binary.LittleEndian.PutUint16(p[i:], uint16(s.Ch1))
		binary.LittleEndian.PutUint16(p[i+2:], uint16(s.Ch2))
	}
	m.record()

	return n, nil
}

// drain moves everything queued into the recorder.
func (m *Monitor) drain() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scratch = m.scratch[:0]
	for {
		s, ok := m.ring.Pop()
		if !ok {
			break
		}
		m.scratch = append(m.scratch, s)
	}
	m.record()
}

func (m *Monitor) record() {
	if m.rec == nil || len(m.scratch) == 0 || m.recErr != nil {
		return
	}

	if err := m.rec.Write(m.scratch); err != nil {
		m.recErr = err
		m.logger.Error("recording stopped", "error", err)
	}
}

// Start opens the speaker output. Without WithSpeaker it does nothing.
func (m *Monitor) Start() error {
	if !m.speaker {
		return nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   m.rate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   otoBuffer,
	})
	if err != nil {
		return fmt.Errorf("monitor: audio context: %w", err)
	}
	<-ready

	m.mu.Lock()
	m.ctx = ctx
	m.player = ctx.NewPlayer(m)
	m.mu.Unlock()

	m.player.Play()
	m.logger.Info("speaker output started", "rate", m.rate)

	return nil
}

// Run drains the ring into the recorder until ctx is done. With speakers
// the player drains instead and Run only waits.
func (m *Monitor) Run(ctx context.Context) error {
	if m.speaker {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(drainPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.drain()
			return ctx.Err()
		case <-ticker.C:
			m.drain()
		}
	}
}

// Close stops the speaker output and finishes the recording.
func (m *Monitor) Close() error {
	m.mu.Lock()
	p := m.player
	m.player = nil
	m.mu.Unlock()

	var errs []error
	if p != nil {
		errs = append(errs, p.Close())
	}

	m.drain()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rec != nil {
		errs = append(errs, m.recErr, m.rec.Close())
	}
	if d := m.ring.Dropped(); d > 0 {
		m.logger.Warn("monitor dropped samples", "count", d)
	}

	return errors.Join(errs...)
}

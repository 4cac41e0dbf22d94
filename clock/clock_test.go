// SPDX-License-Identifier: EPL-2.0

package clock_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/clock"
	"github.com/ik5/pcm56play/internal/clocktest"
)

type countingSource struct {
	calls atomic.Int64
	empty bool
}

func (c *countingSource) Get() (audio.StereoSample, bool) {
	n := c.calls.Add(1)
	if c.empty {
		return audio.StereoSample{}, false
	}
	return audio.StereoSample{Ch1: int16(n), Ch2: int16(-n)}, true
}

type countingSink struct {
	calls atomic.Int64
	last  atomic.Uint32
}

func (c *countingSink) Write(s audio.StereoSample) {
	c.calls.Add(1)
	c.last.Store(s.Pack())
}

func TestAlarmTicks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		resolution  uint64
		rate        int
		over        int
		calibration float64
		want        uint64
		wantErr     bool
	}{
		{name: "44.1k nominal", resolution: 40_000_000, rate: 44100, over: 1, calibration: 1, want: 907},
		{name: "44.1k calibrated", resolution: 40_000_000, rate: 44100, over: 1, calibration: 0.995428, want: 902},
		{name: "48k", resolution: 40_000_000, rate: 48000, over: 1, calibration: 1, want: 833},
		{name: "oversampled", resolution: 40_000_000, rate: 44100, over: 2, calibration: 1, want: 453},
		{name: "zero rate", resolution: 40_000_000, rate: 0, over: 1, calibration: 1, wantErr: true},
		{name: "zero calibration", resolution: 40_000_000, rate: 44100, over: 1, calibration: 0, wantErr: true},
		{name: "zero resolution", resolution: 0, rate: 44100, over: 1, calibration: 1, wantErr: true},
		{name: "rate above resolution", resolution: 1000, rate: 44100, over: 1, calibration: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := clock.AlarmTicks(tt.resolution, tt.rate, tt.over, tt.calibration)
			if tt.wantErr {
				assert.ErrorIs(t, err, clock.ErrInvalidRate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_ArmsTimerInOrder(t *testing.T) {
	t.Parallel()

	tm := clocktest.NewManualTimer(clock.DefaultResolutionHz)

	sc, err := clock.New(tm, &countingSource{}, &countingSink{}, clock.Config{SampleRate: 44100})
	require.NoError(t, err)

	assert.Equal(t, []string{"register", "enable", "alarm", "start"}, tm.Calls())
	assert.Equal(t, clock.Alarm{Count: 907, AutoReload: true}, tm.Alarm())
	assert.Equal(t, uint64(907), sc.AlarmTicks())
	assert.True(t, tm.Running())
}

func TestNew_InvalidRate(t *testing.T) {
	t.Parallel()

	tm := clocktest.NewManualTimer(clock.DefaultResolutionHz)

	_, err := clock.New(tm, &countingSource{}, &countingSink{}, clock.Config{})
	assert.ErrorIs(t, err, clock.ErrInvalidRate)
	assert.Empty(t, tm.Calls())
}

func TestNew_SetupFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		step  string
		calls []string
	}{
		{step: "register", calls: []string{"register", "delete"}},
		{step: "enable", calls: []string{"register", "enable", "delete"}},
		{step: "alarm", calls: []string{"register", "enable", "alarm", "disable", "delete"}},
		{step: "start", calls: []string{"register", "enable", "alarm", "start", "disable", "delete"}},
	}

	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			t.Parallel()

			boom := errors.New(tt.step + " failed")
			tm := clocktest.NewManualTimer(clock.DefaultResolutionHz)
			tm.Fail[tt.step] = boom

			sc, err := clock.New(tm, &countingSource{}, &countingSink{}, clock.Config{SampleRate: 44100})
			assert.Nil(t, sc)
			assert.ErrorIs(t, err, clock.ErrTimerSetup)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, tt.calls, tm.Calls())
			assert.Zero(t, tm.Fire(1))
		})
	}
}

func TestSampleClock_MovesOneSamplePerAlarm(t *testing.T) {
	t.Parallel()

	tm := clocktest.NewManualTimer(clock.DefaultResolutionHz)
	src, sink := &countingSource{}, &countingSink{}

	sc, err := clock.New(tm, src, sink, clock.Config{SampleRate: 44100})
	require.NoError(t, err)

	tm.Fire(5)

	assert.Equal(t, int64(5), src.calls.Load())
	assert.Equal(t, int64(5), sink.calls.Load())
	assert.Equal(t, audio.StereoSample{Ch1: 5, Ch2: -5}, audio.UnpackStereo(sink.last.Load()))
	assert.Equal(t, uint64(5), sc.Fired())
}

func TestSampleClock_SkipsSinkWhenNoSample(t *testing.T) {
	t.Parallel()

	tm := clocktest.NewManualTimer(clock.DefaultResolutionHz)
	src, sink := &countingSource{empty: true}, &countingSink{}

	_, err := clock.New(tm, src, sink, clock.Config{SampleRate: 44100})
	require.NoError(t, err)

	tm.Fire(3)

	assert.Equal(t, int64(3), src.calls.Load())
	assert.Zero(t, sink.calls.Load())
}

func TestSampleClock_CloseFreezesCallbacks(t *testing.T) {
	t.Parallel()

	tm := clocktest.NewManualTimer(clock.DefaultResolutionHz)
	src, sink := &countingSource{}, &countingSink{}

	sc, err := clock.New(tm, src, sink, clock.Config{SampleRate: 44100})
	require.NoError(t, err)

	tm.Fire(10)
	require.NoError(t, sc.Close())

	assert.Equal(t, []string{"register", "enable", "alarm", "start", "stop", "disable", "delete"}, tm.Calls())

	assert.Zero(t, tm.Fire(10))
	assert.Equal(t, int64(10), src.calls.Load())
	assert.Equal(t, int64(10), sink.calls.Load())

	require.NoError(t, sc.Close())
	assert.Len(t, tm.Calls(), 7)
}

func TestSampleClock_CloseReportsAllErrors(t *testing.T) {
	t.Parallel()

	tm := clocktest.NewManualTimer(clock.DefaultResolutionHz)
	sc, err := clock.New(tm, &countingSource{}, &countingSink{}, clock.Config{SampleRate: 44100})
	require.NoError(t, err)

	errStop, errDelete := errors.New("stop"), errors.New("delete")
	tm.Fail["stop"] = errStop
	tm.Fail["delete"] = errDelete

	err = sc.Close()
	assert.ErrorIs(t, err, errStop)
	assert.ErrorIs(t, err, errDelete)
	assert.Equal(t, []string{"stop", "disable", "delete"}, tm.Calls()[4:])
}

func TestSoftTimer_FiresAndStops(t *testing.T) {
	t.Parallel()

	tm := clock.NewSoftTimer(1_000_000, time.Millisecond)
	src, sink := &countingSource{}, &countingSink{}

	sc, err := clock.New(tm, src, sink, clock.Config{SampleRate: 10_000})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), sc.AlarmTicks())

	require.Eventually(t, func() bool { return sink.calls.Load() > 50 }, 2*time.Second, time.Millisecond)

	require.NoError(t, sc.Close())
	frozen := sink.calls.Load()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frozen, sink.calls.Load())
	assert.Equal(t, uint64(frozen), sc.Fired())
}

func TestSoftTimer_StateErrors(t *testing.T) {
	t.Parallel()

	tm := clock.NewSoftTimer(0, 0)
	assert.Equal(t, uint64(clock.DefaultResolutionHz), tm.ResolutionHz())

	assert.ErrorIs(t, tm.Start(), clock.ErrTimerState)
	assert.ErrorIs(t, tm.RegisterCallback(nil), clock.ErrTimerState)
	assert.ErrorIs(t, tm.SetAlarm(clock.Alarm{}), clock.ErrTimerState)

	require.NoError(t, tm.RegisterCallback(func() bool { return true }))
	require.NoError(t, tm.Enable())
	assert.ErrorIs(t, tm.Enable(), clock.ErrTimerState)
	assert.ErrorIs(t, tm.Delete(), clock.ErrTimerState)

	require.NoError(t, tm.SetAlarm(clock.Alarm{Count: 40_000, AutoReload: true}))
	require.NoError(t, tm.Start())
	assert.ErrorIs(t, tm.Start(), clock.ErrTimerState)
	assert.ErrorIs(t, tm.Disable(), clock.ErrTimerState)

	require.NoError(t, tm.Stop())
	require.NoError(t, tm.Stop())
	require.NoError(t, tm.Disable())
	require.NoError(t, tm.Delete())
	assert.ErrorIs(t, tm.Enable(), clock.ErrTimerState)
}

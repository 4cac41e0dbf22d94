// SPDX-License-Identifier: EPL-2.0

package periph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/ik5/pcm56play/audio"
	"github.com/ik5/pcm56play/dac"
)

func fakeBoard(nums ...int) (map[string]*gpiotest.Pin, Lookup) {
	pins := make(map[string]*gpiotest.Pin, len(nums))
	for _, n := range nums {
		pins[name(uint8(n))] = &gpiotest.Pin{N: name(uint8(n)), Num: n, L: gpio.High}
	}

	return pins, func(n string) gpio.PinIO {
		if p, ok := pins[n]; ok {
			return p
		}
		return nil
	}
}

func TestPort_ConfigureOutput(t *testing.T) {
	t.Parallel()

	pins, lookup := fakeBoard(14, 26)
	p := NewPort(WithLookup(lookup))

	require.NoError(t, p.ConfigureOutput(1<<14|1<<26))

	assert.Equal(t, gpio.Low, pins["GPIO14"].Read())
	assert.Equal(t, gpio.Low, pins["GPIO26"].Read())
}

func TestPort_ConfigureOutputMissingPin(t *testing.T) {
	t.Parallel()

	_, lookup := fakeBoard(14)
	p := NewPort(WithLookup(lookup))

	err := p.ConfigureOutput(1<<14 | 1<<5)
	assert.True(t, errors.Is(err, ErrPinNotFound), "error = %v", err)
}

func TestPort_SetClear(t *testing.T) {
	t.Parallel()

	pins, lookup := fakeBoard(1, 2, 3)
	p := NewPort(WithLookup(lookup))
	require.NoError(t, p.ConfigureOutput(1<<1|1<<2))

	p.Set(1<<1 | 1<<2 | 1<<3)
	assert.Equal(t, gpio.High, pins["GPIO1"].Read())
	assert.Equal(t, gpio.High, pins["GPIO2"].Read())
	// not configured, left alone
	assert.Equal(t, gpio.High, pins["GPIO3"].Read())

	p.Clear(1 << 2)
	assert.Equal(t, gpio.High, pins["GPIO1"].Read())
	assert.Equal(t, gpio.Low, pins["GPIO2"].Read())

	p.Clear(1<<1 | 1<<3)
	assert.Equal(t, gpio.Low, pins["GPIO1"].Read())
	assert.Equal(t, gpio.High, pins["GPIO3"].Read())
}

func TestPort_ResetPin(t *testing.T) {
	t.Parallel()

	pins, lookup := fakeBoard(7)
	p := NewPort(WithLookup(lookup))
	require.NoError(t, p.ConfigureOutput(1<<7))

	require.NoError(t, p.ResetPin(7))
	assert.Equal(t, gpio.Float, pins["GPIO7"].P)

	// released lines are no longer driven
	p.Set(1 << 7)
	assert.Equal(t, gpio.Low, pins["GPIO7"].Read())

	assert.ErrorIs(t, p.ResetPin(7), ErrNotOutput)
	assert.ErrorIs(t, p.ResetPin(40), ErrNotOutput)
}

// stuckPin fails every write once broken is set.
type stuckPin struct {
	*gpiotest.Pin
	broken bool
}

var errStuck = errors.New("line stuck")

func (s *stuckPin) Out(l gpio.Level) error {
	if s.broken {
		return errStuck
	}
	return s.Pin.Out(l)
}

func TestPort_CountsWriteErrors(t *testing.T) {
	t.Parallel()

	pins, lookup := fakeBoard(1)
	stuck := &stuckPin{Pin: &gpiotest.Pin{N: "GPIO2", Num: 2}}
	p := NewPort(WithLookup(func(n string) gpio.PinIO {
		if n == "GPIO2" {
			return stuck
		}
		return lookup(n)
	}))
	require.NoError(t, p.ConfigureOutput(1<<1|1<<2))

	p.Set(1<<1 | 1<<2)
	assert.Zero(t, p.WriteErrors())

	stuck.broken = true
	p.Clear(1<<1 | 1<<2)
	p.Set(1 << 2)
	assert.EqualValues(t, 2, p.WriteErrors())
	// the healthy line is still driven
	assert.Equal(t, gpio.Low, pins["GPIO1"].Read())
}

func TestPort_DriverFrame(t *testing.T) {
	t.Parallel()

	cfg := dac.PinConfig{Clock: 14, Ch1Data: 26, Ch2Data: 25, LatchEnable: 27}
	pins, lookup := fakeBoard(14, 25, 26, 27)

	d, err := dac.New(NewPort(WithLookup(lookup)), cfg)
	require.NoError(t, err)

	d.Write(audio.StereoSample{Ch1: -1, Ch2: 0})
	assert.EqualValues(t, 1, d.Writes())
	// a frame ends with clock and latch enable low, data lines on bit 0
	assert.Equal(t, gpio.Low, pins["GPIO14"].Read())
	assert.Equal(t, gpio.Low, pins["GPIO27"].Read())
	assert.Equal(t, gpio.High, pins["GPIO26"].Read())
	assert.Equal(t, gpio.Low, pins["GPIO25"].Read())

	require.NoError(t, d.Close())
	for _, n := range []string{"GPIO14", "GPIO25", "GPIO26", "GPIO27"} {
		assert.Equal(t, gpio.Float, pins[n].P, n)
	}
}

func TestRelay(t *testing.T) {
	t.Parallel()

	pins, lookup := fakeBoard(12, 13)

	r, err := NewRelay(lookup, 12, -1, 13)
	require.NoError(t, err)
	assert.Equal(t, gpio.Low, pins["GPIO12"].Read())

	require.NoError(t, r.Set(true))
	assert.Equal(t, gpio.High, pins["GPIO12"].Read())
	assert.Equal(t, gpio.High, pins["GPIO13"].Read())

	require.NoError(t, r.Set(false))
	assert.Equal(t, gpio.Low, pins["GPIO13"].Read())

	require.NoError(t, r.Set(true))
	require.NoError(t, r.Close())
	assert.Equal(t, gpio.Low, pins["GPIO12"].Read())

	_, err = NewRelay(lookup, 4)
	assert.ErrorIs(t, err, ErrPinNotFound)
}

// SPDX-License-Identifier: EPL-2.0

// Package config reads the player settings from the environment.
// Command line flags in cmd/pcm56play override them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ik5/pcm56play/dac"
	"github.com/ik5/pcm56play/player"
)

// Defaults match the reference board wiring.
const (
	DefaultMusicDir    = "./music"
	DefaultHTTPPort    = "8080"
	DefaultLogLevel    = "info"
	DefaultSourceRelay = 12
	DefaultPowerRelay  = 13
)

// GPIO backends.
const (
	GPIOSim    = "sim"
	GPIOPeriph = "periph"
)

var ErrInvalidValue = errors.New("config: invalid value")

// Config is the process configuration.
type Config struct {
	Pins        dac.PinConfig
	Calibration float64
	// SampleRate fixes the DAC rate, 0 follows each stream.
	SampleRate int
	// SourceRelay and PowerRelay are GPIO numbers, -1 when not wired.
	SourceRelay int
	PowerRelay  int

	MusicDir string
	HTTPPort string
	LogLevel string
	// GPIO selects the pin backend, GPIOSim or GPIOPeriph.
	GPIO string
	// Monitor plays the emulated DAC output on the host speakers. Only
	// meaningful with GPIOSim.
	Monitor bool
	// Record is a WAV path the emulated DAC output is written to.
	Record string
}

func Default() Config {
	return Config{
		Pins:        player.DefaultPins,
		Calibration: player.DefaultCalibration,
		SourceRelay: DefaultSourceRelay,
		PowerRelay:  DefaultPowerRelay,
		MusicDir:    DefaultMusicDir,
		HTTPPort:    DefaultHTTPPort,
		LogLevel:    DefaultLogLevel,
		GPIO:        GPIOSim,
	}
}

// Load returns Default overridden by the PCM56_* environment variables.
func Load() (Config, error) {
	cfg := Default()
	var errs []error

	pin := func(key string, dst *uint8) {
		v, err := envInt(key, int(*dst))
		if err == nil && (v < 0 || v > dac.MaxPin) {
			err = fmt.Errorf("%w: %s=%d out of range", ErrInvalidValue, key, v)
		}
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = uint8(v)
	}
	pin("PCM56_CLK", &cfg.Pins.Clock)
	pin("PCM56_LE", &cfg.Pins.LatchEnable)
	pin("PCM56_CH1", &cfg.Pins.Ch1Data)
	pin("PCM56_CH2", &cfg.Pins.Ch2Data)

	var err error
	if cfg.SourceRelay, err = envInt("PCM56_SRC_RELAY", cfg.SourceRelay); err != nil {
		errs = append(errs, err)
	}
	if cfg.PowerRelay, err = envInt("PCM56_PWR_RELAY", cfg.PowerRelay); err != nil {
		errs = append(errs, err)
	}
	if cfg.Calibration, err = envFloat("PCM56_CALIBRATION", cfg.Calibration); err != nil {
		errs = append(errs, err)
	}
	if cfg.Calibration <= 0 {
		errs = append(errs, fmt.Errorf("%w: PCM56_CALIBRATION must be positive", ErrInvalidValue))
	}
	if cfg.SampleRate, err = envInt("PCM56_SAMPLE_RATE", cfg.SampleRate); err != nil {
		errs = append(errs, err)
	} else if cfg.SampleRate < 0 || cfg.SampleRate > player.DefaultMaxSampleRate {
		errs = append(errs, fmt.Errorf("%w: PCM56_SAMPLE_RATE=%d out of range", ErrInvalidValue, cfg.SampleRate))
	}
	if cfg.Monitor, err = envBool("PCM56_MONITOR", cfg.Monitor); err != nil {
		errs = append(errs, err)
	}

	cfg.MusicDir = envString("PCM56_MUSIC_DIR", cfg.MusicDir)
	cfg.HTTPPort = envString("PCM56_HTTP_PORT", cfg.HTTPPort)
	cfg.LogLevel = envString("PCM56_LOG_LEVEL", cfg.LogLevel)
	cfg.Record = envString("PCM56_RECORD", cfg.Record)

	cfg.GPIO = envString("PCM56_GPIO", cfg.GPIO)
	if cfg.GPIO != GPIOSim && cfg.GPIO != GPIOPeriph {
		errs = append(errs, fmt.Errorf("%w: PCM56_GPIO=%q", ErrInvalidValue, cfg.GPIO))
	}

	if err := errors.Join(errs...); err != nil {
		return Default(), err
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return b, nil
}

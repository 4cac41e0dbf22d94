// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"testing"

	"github.com/ik5/pcm56play/dac"
	"github.com/ik5/pcm56play/player"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Pins != player.DefaultPins {
		t.Errorf("Pins = %+v, want %+v", cfg.Pins, player.DefaultPins)
	}
	if cfg.GPIO != GPIOSim {
		t.Errorf("GPIO = %q, want %q", cfg.GPIO, GPIOSim)
	}
	if cfg.HTTPPort != DefaultHTTPPort || cfg.MusicDir != DefaultMusicDir {
		t.Errorf("HTTPPort, MusicDir = %q, %q", cfg.HTTPPort, cfg.MusicDir)
	}
	if cfg.SourceRelay != 12 || cfg.PowerRelay != 13 {
		t.Errorf("relays = %d, %d, want 12, 13", cfg.SourceRelay, cfg.PowerRelay)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PCM56_CLK", "4")
	t.Setenv("PCM56_LE", "5")
	t.Setenv("PCM56_CH1", "6")
	t.Setenv("PCM56_CH2", "7")
	t.Setenv("PCM56_CALIBRATION", "1.0")
	t.Setenv("PCM56_MUSIC_DIR", "/srv/music")
	t.Setenv("PCM56_HTTP_PORT", "9000")
	t.Setenv("PCM56_LOG_LEVEL", "debug")
	t.Setenv("PCM56_GPIO", "periph")
	t.Setenv("PCM56_PWR_RELAY", "-1")
	t.Setenv("PCM56_MONITOR", "true")
	t.Setenv("PCM56_RECORD", "/tmp/out.wav")
	t.Setenv("PCM56_SAMPLE_RATE", "22050")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := dac.PinConfig{Clock: 4, LatchEnable: 5, Ch1Data: 6, Ch2Data: 7}
	if cfg.Pins != want {
		t.Errorf("Pins = %+v, want %+v", cfg.Pins, want)
	}
	if cfg.Calibration != 1.0 {
		t.Errorf("Calibration = %v, want 1", cfg.Calibration)
	}
	if cfg.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050", cfg.SampleRate)
	}
	if cfg.MusicDir != "/srv/music" || cfg.HTTPPort != "9000" || cfg.LogLevel != "debug" {
		t.Errorf("got %+v", cfg)
	}
	if cfg.GPIO != GPIOPeriph || cfg.PowerRelay != -1 || !cfg.Monitor || cfg.Record != "/tmp/out.wav" {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PCM56_CLK", "x"},
		{"PCM56_CLK", "32"},
		{"PCM56_CH1", "-1"},
		{"PCM56_CALIBRATION", "fast"},
		{"PCM56_CALIBRATION", "0"},
		{"PCM56_GPIO", "sysfs"},
		{"PCM56_MONITOR", "maybe"},
		{"PCM56_SRC_RELAY", "twelve"},
		{"PCM56_SAMPLE_RATE", "96000"},
		{"PCM56_SAMPLE_RATE", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			if !errors.Is(err, ErrInvalidValue) {
				t.Fatalf("Load() error = %v, want ErrInvalidValue", err)
			}
			if cfg != Default() {
				t.Errorf("Load() = %+v, want defaults on error", cfg)
			}
		})
	}
}

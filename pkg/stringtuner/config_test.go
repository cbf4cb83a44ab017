package stringtuner

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FFTSize != 32768 {
		t.Errorf("FFTSize = %d, want 32768", cfg.FFTSize)
	}
	if cfg.AmplitudeThreshold != 120 {
		t.Errorf("AmplitudeThreshold = %d, want 120", cfg.AmplitudeThreshold)
	}
	if cfg.Band != (Band{Min: 60, Max: 350}) {
		t.Errorf("Band = %+v", cfg.Band)
	}
	if cfg.Tolerance != 2 || cfg.MaxPeaks != 3 {
		t.Errorf("Tolerance = %v, MaxPeaks = %d", cfg.Tolerance, cfg.MaxPeaks)
	}
	if cfg.MinDecibels != -90 || cfg.MaxDecibels != -20 || cfg.Smoothing != 0.85 {
		t.Errorf("analyser settings = %v %v %v", cfg.MinDecibels, cfg.MaxDecibels, cfg.Smoothing)
	}
	if len(cfg.Notes) != 6 {
		t.Errorf("Notes has %d entries, want 6", len(cfg.Notes))
	}
	if err := cfg.Validate(44100); err != nil {
		t.Errorf("default config invalid at 44.1 kHz: %v", err)
	}
}

func TestNewConfigOptions(t *testing.T) {
	notes := []ReferenceNote{{Name: "D2", Frequency: 73.42}}
	cfg := NewConfig(
		WithFFTSize(4096),
		WithDecibels(-100, -30),
		WithSmoothing(0.5),
		WithBand(50, 400),
		WithThreshold(90),
		WithTolerance(1.5),
		WithMaxPeaks(5),
		WithNotes(notes),
		WithTickRate(30),
		WithDBPath("x.db"),
		WithTempDir("/var/tmp"),
		WithoutHistory(),
	)

	if cfg.FFTSize != 4096 || cfg.MinDecibels != -100 || cfg.MaxDecibels != -30 {
		t.Errorf("fft/decibels not applied: %+v", cfg)
	}
	if cfg.Smoothing != 0.5 || cfg.Band != (Band{Min: 50, Max: 400}) {
		t.Errorf("smoothing/band not applied: %+v", cfg)
	}
	if cfg.AmplitudeThreshold != 90 || cfg.Tolerance != 1.5 || cfg.MaxPeaks != 5 {
		t.Errorf("threshold/tolerance/peaks not applied: %+v", cfg)
	}
	if len(cfg.Notes) != 1 || cfg.Notes[0].Name != "D2" {
		t.Errorf("notes not applied: %+v", cfg.Notes)
	}
	if cfg.TickRate != 30 || cfg.DBPath != "x.db" || cfg.TempDir != "/var/tmp" || !cfg.DisableHistory {
		t.Errorf("service settings not applied: %+v", cfg)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		opts []Option
	}{
		{"zero sample rate", 0, nil},
		{"band above nyquist", 600, nil},
		{"band min zero", 44100, []Option{WithBand(0, 350)}},
		{"band inverted", 44100, []Option{WithBand(300, 100)}},
		{"fft not power of two", 44100, []Option{WithFFTSize(1000)}},
		{"fft too small", 44100, []Option{WithFFTSize(16)}},
		{"fft too large", 44100, []Option{WithFFTSize(65536)}},
		{"decibels inverted", 44100, []Option{WithDecibels(-20, -90)}},
		{"smoothing above one", 44100, []Option{WithSmoothing(1.5)}},
		{"no peaks", 44100, []Option{WithMaxPeaks(0)}},
		{"negative tolerance", 44100, []Option{WithTolerance(-1)}},
		{"empty notes", 44100, []Option{WithNotes(nil)}},
		{"zero tick rate", 44100, []Option{WithTickRate(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opts...).Validate(tt.rate)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("Validate = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestValidFFTSize(t *testing.T) {
	for _, n := range []int{32, 64, 1024, 8192, 32768} {
		if !validFFTSize(n) {
			t.Errorf("validFFTSize(%d) = false", n)
		}
	}
	for _, n := range []int{0, 16, 31, 48, 1000, 65536} {
		if validFFTSize(n) {
			t.Errorf("validFFTSize(%d) = true", n)
		}
	}
}

package audio

import (
	"bytes"
	"math"
	"os"
	"testing"
)

func TestSynthesizeTone(t *testing.T) {
	samples, err := SynthesizeTone(ToneConfig{
		Frequency:  110,
		SampleRate: 8000,
		Seconds:    0.5,
		Amplitude:  0.3,
	})
	if err != nil {
		t.Fatalf("SynthesizeTone failed: %v", err)
	}
	if len(samples) != 4000 {
		t.Fatalf("Expected 4000 samples, got %d", len(samples))
	}

	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(s))
	}
	if peak > 0.3+1e-9 || peak < 0.29 {
		t.Errorf("Expected peak near 0.3, got %v", peak)
	}
}

func TestSynthesizeToneHarmonicsStayInRange(t *testing.T) {
	samples, err := SynthesizeTone(ToneConfig{
		Frequency:  82.41,
		SampleRate: 8000,
		Seconds:    0.25,
		Amplitude:  1,
		Harmonics:  PluckedString,
	})
	if err != nil {
		t.Fatalf("SynthesizeTone failed: %v", err)
	}
	for i, s := range samples {
		if s > 1 || s < -1 {
			t.Fatalf("Sample %d out of range: %v", i, s)
		}
	}
}

func TestSynthesizeToneDecay(t *testing.T) {
	samples, err := SynthesizeTone(ToneConfig{
		Frequency:  100,
		SampleRate: 1000,
		Seconds:    2,
		Amplitude:  0.5,
		Decay:      2,
	})
	if err != nil {
		t.Fatalf("SynthesizeTone failed: %v", err)
	}
	early, late := maxAbs(samples[:100]), maxAbs(samples[1900:])
	if late >= early/10 {
		t.Errorf("Expected strong decay, early peak %v late peak %v", early, late)
	}
}

func TestSynthesizeToneRejects(t *testing.T) {
	bad := []ToneConfig{
		{Frequency: 0, SampleRate: 8000, Seconds: 1},
		{Frequency: 100, SampleRate: 0, Seconds: 1},
		{Frequency: 100, SampleRate: 8000, Seconds: 0},
	}
	for _, cfg := range bad {
		if _, err := SynthesizeTone(cfg); err == nil {
			t.Errorf("Expected error for %+v", cfg)
		}
	}
}

func TestEncodeWavHeader(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "tone-*.wav")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := EncodeWav(f, make([]float64, 100), 44100); err != nil {
		t.Fatalf("EncodeWav failed: %v", err)
	}

	head := make([]byte, 12)
	if _, err := f.ReadAt(head, 0); err != nil {
		t.Fatalf("Failed to read header: %v", err)
	}
	if !bytes.Equal(head[:4], []byte("RIFF")) || !bytes.Equal(head[8:12], []byte("WAVE")) {
		t.Errorf("Unexpected header %q", head)
	}
}

func maxAbs(xs []float64) float64 {
	var m float64
	for _, x := range xs {
		m = math.Max(m, math.Abs(x))
	}
	return m
}

package analyser

import (
	"errors"
	"math"
	"testing"
)

func refConfig(n int) Config {
	return Config{FFTSize: n, MinDecibels: -90, MaxDecibels: -20, Smoothing: 0.85}
}

func sine(freq, rate, amp float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

func TestNewValidates(t *testing.T) {
	bad := []Config{
		refConfig(1000),
		refConfig(16),
		refConfig(65536),
		{FFTSize: 1024, MinDecibels: -20, MaxDecibels: -90},
		{FFTSize: 1024, MinDecibels: -90, MaxDecibels: -20, Smoothing: 1.1},
		{FFTSize: 1024, MinDecibels: -90, MaxDecibels: -20, Smoothing: -0.1},
	}
	for _, cfg := range bad {
		if _, err := New(cfg); err == nil {
			t.Errorf("New(%+v) accepted an invalid config", cfg)
		}
	}

	a, err := New(refConfig(2048))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.FFTSize() != 2048 || a.FrequencyBinCount() != 1024 {
		t.Errorf("sizes = %d/%d", a.FFTSize(), a.FrequencyBinCount())
	}
}

func TestByteFrequencyDataFrameSize(t *testing.T) {
	a, err := New(refConfig(1024))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.ByteFrequencyData(make([]float64, 512), make([]uint8, 512)); !errors.Is(err, ErrFrameSize) {
		t.Errorf("short frame: err = %v, want ErrFrameSize", err)
	}
	if err := a.ByteFrequencyData(make([]float64, 1024), make([]uint8, 100)); !errors.Is(err, ErrFrameSize) {
		t.Errorf("short destination: err = %v, want ErrFrameSize", err)
	}
}

func TestByteFrequencyDataSilence(t *testing.T) {
	a, err := New(refConfig(1024))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dst := make([]uint8, 512)
	for i := range dst {
		dst[i] = 99
	}
	if err := a.ByteFrequencyData(make([]float64, 1024), dst); err != nil {
		t.Fatalf("ByteFrequencyData: %v", err)
	}
	for i, v := range dst {
		if v != 0 {
			t.Fatalf("bin %d = %d, want 0", i, v)
		}
	}
}

func TestByteFrequencyDataPeaksAtToneBin(t *testing.T) {
	const (
		n    = 4096
		rate = 8192.0 // 2 Hz bins
	)
	a, err := New(Config{FFTSize: n, MinDecibels: -90, MaxDecibels: -20})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dst := make([]uint8, n/2)
	// a bin-centred sine at bin 100
	if err := a.ByteFrequencyData(sine(200, rate, 0.01, n), dst); err != nil {
		t.Fatalf("ByteFrequencyData: %v", err)
	}

	best := 0
	for i, v := range dst {
		if v > dst[best] {
			best = i
		}
	}
	if best != 100 {
		t.Errorf("strongest bin = %d, want 100", best)
	}
	if dst[100] == 0 || dst[100] == 255 {
		t.Errorf("tone bin = %d, want inside the scale", dst[100])
	}
	if dst[99] >= dst[100] || dst[101] >= dst[100] {
		t.Errorf("tone bin %d not above neighbours %d %d", dst[100], dst[99], dst[101])
	}
	if dst[400] != 0 {
		t.Errorf("far bin = %d, want 0", dst[400])
	}
}

func TestSmoothingAndReset(t *testing.T) {
	const n = 1024
	a, err := New(refConfig(n))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tone := sine(1000, 8192, 0.01, n)
	dst := make([]uint8, n/2)

	if err := a.ByteFrequencyData(tone, dst); err != nil {
		t.Fatalf("ByteFrequencyData: %v", err)
	}
	first := dst[125]

	for i := 0; i < 20; i++ {
		if err := a.ByteFrequencyData(tone, dst); err != nil {
			t.Fatalf("ByteFrequencyData: %v", err)
		}
	}
	if dst[125] <= first {
		t.Errorf("smoothed bin did not rise: first %d, settled %d", first, dst[125])
	}

	a.Reset()
	if err := a.ByteFrequencyData(tone, dst); err != nil {
		t.Fatalf("ByteFrequencyData: %v", err)
	}
	if dst[125] != first {
		t.Errorf("after Reset bin = %d, want first-frame value %d", dst[125], first)
	}
}

func TestToByte(t *testing.T) {
	scale := 255.0 / 70
	tests := []struct {
		mag  float64
		want uint8
	}{
		{0, 0},
		{-1, 0},
		{1e-6, 0},                     // -120 dB, below range
		{1, 255},                      // 0 dB, above range
		{math.Pow(10, -55.0/20), 127}, // midpoint: floor(127.5)
	}
	for _, tt := range tests {
		if got := toByte(tt.mag, -90, scale); got != tt.want {
			t.Errorf("toByte(%g) = %d, want %d", tt.mag, got, tt.want)
		}
	}
}

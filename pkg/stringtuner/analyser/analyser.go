// Package analyser turns time-domain audio frames into the byte magnitude
// spectrum a browser AnalyserNode reports from getByteFrequencyData.
package analyser

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

var ErrFrameSize = errors.New("frame length does not match fft size")

// Config mirrors the AnalyserNode attributes.
type Config struct {
	FFTSize     int
	MinDecibels float64
	MaxDecibels float64
	Smoothing   float64 // smoothingTimeConstant in [0, 1]
}

// Analyser keeps the smoothing history between frames. Buffers are sized once
// in New and reused on every call; it is not safe for concurrent use.
type Analyser struct {
	cfg      Config
	window   []float64
	frame    []float64
	smoothed []float64
}

// New validates cfg and allocates the working buffers.
func New(cfg Config) (*Analyser, error) {
	n := cfg.FFTSize
	if n < 32 || n > 32768 || n&(n-1) != 0 {
		return nil, fmt.Errorf("fft size %d must be a power of two in [32, 32768]", n)
	}
	if cfg.MinDecibels >= cfg.MaxDecibels {
		return nil, fmt.Errorf("minDecibels %g must be below maxDecibels %g", cfg.MinDecibels, cfg.MaxDecibels)
	}
	if cfg.Smoothing < 0 || cfg.Smoothing > 1 {
		return nil, fmt.Errorf("smoothing %g outside [0, 1]", cfg.Smoothing)
	}
	return &Analyser{
		cfg:      cfg,
		window:   window.Blackman(n),
		frame:    make([]float64, n),
		smoothed: make([]float64, n/2),
	}, nil
}

func (a *Analyser) FFTSize() int { return a.cfg.FFTSize }

// FrequencyBinCount is half the FFT size, the length of every spectrum.
func (a *Analyser) FrequencyBinCount() int { return a.cfg.FFTSize / 2 }

// Reset drops the smoothing history, as when a new source is connected.
func (a *Analyser) Reset() {
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
}

// ByteFrequencyData analyses one frame of exactly FFTSize samples and writes
// FrequencyBinCount bytes into dst. Each bin is the smoothed magnitude in dB
// mapped linearly from [MinDecibels, MaxDecibels] onto 0..255.
func (a *Analyser) ByteFrequencyData(timeDomain []float64, dst []uint8) error {
	if len(timeDomain) != a.cfg.FFTSize {
		return fmt.Errorf("%w: got %d samples, want %d", ErrFrameSize, len(timeDomain), a.cfg.FFTSize)
	}
	if len(dst) < a.FrequencyBinCount() {
		return fmt.Errorf("%w: destination holds %d bins, want %d", ErrFrameSize, len(dst), a.FrequencyBinCount())
	}

	floats.MulTo(a.frame, timeDomain, a.window)
	spectrum := fft.FFTReal(a.frame)

	scale := 1.0 / float64(a.cfg.FFTSize)
	tc := a.cfg.Smoothing
	rangeScale := 255.0 / (a.cfg.MaxDecibels - a.cfg.MinDecibels)

	for k := range a.smoothed {
		mag := cmplx.Abs(spectrum[k]) * scale
		v := tc*a.smoothed[k] + (1-tc)*mag
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		a.smoothed[k] = v
		dst[k] = toByte(v, a.cfg.MinDecibels, rangeScale)
	}
	return nil
}

func toByte(mag, minDB, rangeScale float64) uint8 {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	scaled := math.Floor(rangeScale * (db - minDB))
	switch {
	case scaled < 0:
		return 0
	case scaled > 255:
		return 255
	default:
		return uint8(scaled)
	}
}

// Package render draws spectrogram images of tuner recordings.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/eligwz/spectrogram"
	"github.com/himanishpuri/StringTuner/pkg/stringtuner/audio"
)

const (
	DefaultWidth  = 2048
	DefaultHeight = 512
)

var ErrEmptyAudio = errors.New("no samples to render")

// Options control the image size and background of a render.
type Options struct {
	Width      int
	Height     int // also the number of frequency bins
	Background string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Background == "" {
		o.Background = "000000"
	}
	return o
}

// SpectrogramFile reads a WAV file and writes its spectrogram as a PNG.
func SpectrogramFile(wavPath, outPath string, opts Options) error {
	samples, rate, err := audio.ReadWavAsFloat64(wavPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", wavPath, err)
	}
	return Spectrogram(samples, rate, outPath, opts)
}

// Spectrogram renders mono samples with a Hamming-windowed FFT on a linear
// magnitude scale.
func Spectrogram(samples []float64, sampleRate int, outPath string, opts Options) error {
	if len(samples) == 0 {
		return ErrEmptyAudio
	}
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	opts = opts.withDefaults()

	img := spectrogram.NewImage128(image.Rect(0, 0, opts.Width, opts.Height))
	bg := spectrogram.ParseColor(opts.Background)
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	spectrogram.Drawfft(
		img,
		samples,
		uint32(sampleRate),
		uint32(opts.Height),
		false, // rectangle window off: Hamming
		false, // FFT, not DFT
		true,  // magnitude
		false, // linear scale
	)

	if err := spectrogram.SavePng(img, outPath); err != nil {
		return fmt.Errorf("saving %s: %w", outPath, err)
	}
	return nil
}

package audio

import (
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Harmonic is one partial of a synthesized tone relative to the fundamental.
type Harmonic struct {
	Multiple  float64
	Amplitude float64
}

// PluckedString is a partial set whose fundamental stays the loudest component.
var PluckedString = []Harmonic{
	{Multiple: 1, Amplitude: 1},
	{Multiple: 2, Amplitude: 0.45},
	{Multiple: 3, Amplitude: 0.2},
	{Multiple: 4, Amplitude: 0.08},
}

// ToneConfig describes a reference tone.
type ToneConfig struct {
	Frequency  float64
	SampleRate int
	Seconds    float64
	Amplitude  float64 // peak amplitude of the fundamental, (0, 1]
	Decay      float64 // exponential decay per second; 0 keeps the tone steady
	Harmonics  []Harmonic
}

// SynthesizeTone renders cfg as mono float64 samples.
func SynthesizeTone(cfg ToneConfig) ([]float64, error) {
	if cfg.Frequency <= 0 || cfg.SampleRate <= 0 || cfg.Seconds <= 0 {
		return nil, fmt.Errorf("tone needs positive frequency, sample rate and length")
	}
	if cfg.Amplitude <= 0 || cfg.Amplitude > 1 {
		cfg.Amplitude = 0.5
	}
	harmonics := cfg.Harmonics
	if len(harmonics) == 0 {
		harmonics = []Harmonic{{Multiple: 1, Amplitude: 1}}
	}

	var total float64
	for _, h := range harmonics {
		total += math.Abs(h.Amplitude)
	}
	// keep the summed partials inside [-1, 1]
	gain := cfg.Amplitude
	if total*gain > 1 {
		gain = 1 / total
	}

	n := int(cfg.Seconds * float64(cfg.SampleRate))
	out := make([]float64, n)
	dt := 1.0 / float64(cfg.SampleRate)
	for i := range out {
		t := float64(i) * dt
		var v float64
		for _, h := range harmonics {
			v += h.Amplitude * math.Sin(2*math.Pi*cfg.Frequency*h.Multiple*t)
		}
		env := 1.0
		if cfg.Decay > 0 {
			env = math.Exp(-cfg.Decay * t)
		}
		out[i] = v * gain * env
	}
	return out, nil
}

// WriteWav encodes samples as 16-bit mono PCM at path.
func WriteWav(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeWav(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeWav writes samples as 16-bit mono PCM to w.
func EncodeWav(w io.WriteSeeker, samples []float64, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(math.Round(s * 32767))
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing PCM samples: %w", err)
	}
	return enc.Close()
}

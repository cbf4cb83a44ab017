package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	ErrInvalidWAV       = errors.New("not a valid WAV file")
	ErrUnsupportedWAV   = errors.New("unsupported WAV encoding")
	ErrUnsupportedChans = errors.New("unsupported channel count")
)

// ReadWavAsFloat64 reads a PCM WAV file and returns mono samples in [-1, 1]
// and the sample rate. Multi-channel input is averaged down to mono.
func ReadWavAsFloat64(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	return DecodeWav(f)
}

// DecodeWav is ReadWavAsFloat64 over an already open stream.
func DecodeWav(r io.ReadSeeker) ([]float64, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, ErrInvalidWAV
	}
	if dec.WavAudioFormat != 1 {
		return nil, 0, fmt.Errorf("%w: format tag %d, only PCM (1)", ErrUnsupportedWAV, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding PCM samples: %w", err)
	}

	samples, err := toMonoFloat64(buf, int(dec.BitDepth))
	if err != nil {
		return nil, 0, err
	}
	return samples, int(dec.SampleRate), nil
}

// toMonoFloat64 normalises integer PCM by its bit depth and averages channels.
func toMonoFloat64(buf *goaudio.IntBuffer, bitDepth int) ([]float64, error) {
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedWAV, bitDepth)
	}
	chans := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		chans = buf.Format.NumChannels
	}
	if chans > 8 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChans, chans)
	}

	scale := 1.0 / float64(int64(1)<<uint(bitDepth-1))
	frames := len(buf.Data) / chans
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < chans; c++ {
			sum += float64(buf.Data[i*chans+c])
		}
		out[i] = sum / float64(chans) * scale
	}
	return out, nil
}

package stringtuner

import (
	"fmt"

	"github.com/himanishpuri/StringTuner/pkg/stringtuner/audio"
)

const (
	ToneSampleRate = 44100
	ToneSeconds    = 3.0
	toneDecay      = 0.8

	// keeps the fundamental below maxDecibels so its bin does not clip at 255
	toneAmplitude = 0.1
)

// ReferenceTone synthesizes the preset tone for note: a decaying plucked
// string whose fundamental is the note frequency.
func ReferenceTone(note ReferenceNote, sampleRate int, seconds float64) ([]float64, error) {
	if note.Frequency <= 0 {
		return nil, fmt.Errorf("%w: note %q has no frequency", ErrInvalidConfiguration, note.Name)
	}
	if sampleRate <= 0 {
		sampleRate = ToneSampleRate
	}
	if seconds <= 0 {
		seconds = ToneSeconds
	}
	return audio.SynthesizeTone(audio.ToneConfig{
		Frequency:  note.Frequency,
		SampleRate: sampleRate,
		Seconds:    seconds,
		Amplitude:  toneAmplitude,
		Decay:      toneDecay,
		Harmonics:  audio.PluckedString,
	})
}

package stringtuner

import (
	"errors"
	"math"
	"testing"
)

func TestReferenceToneDefaults(t *testing.T) {
	note, _ := LookupNote("A2")
	samples, err := ReferenceTone(note, 0, 0)
	if err != nil {
		t.Fatalf("ReferenceTone: %v", err)
	}
	if want := int(ToneSeconds * ToneSampleRate); len(samples) != want {
		t.Errorf("got %d samples, want %d", len(samples), want)
	}

	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(s))
	}
	if peak == 0 || peak > 1 {
		t.Errorf("peak sample %v outside (0, 1]", peak)
	}

	// the decay envelope makes the last second quieter than the first
	first, last := rms(samples[:ToneSampleRate]), rms(samples[len(samples)-ToneSampleRate:])
	if last >= first {
		t.Errorf("tone does not decay: first rms %v, last rms %v", first, last)
	}
}

func TestReferenceToneRejectsEmptyNote(t *testing.T) {
	if _, err := ReferenceTone(ReferenceNote{Name: "X"}, 44100, 1); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("ReferenceTone without frequency = %v, want ErrInvalidConfiguration", err)
	}
}

func TestReferenceToneIsDetected(t *testing.T) {
	note, _ := LookupNote("E2")
	samples, err := ReferenceTone(note, ToneSampleRate, 1.2)
	if err != nil {
		t.Fatalf("ReferenceTone: %v", err)
	}

	sess, err := NewSessionFromConfig(ToneSampleRate, NewConfig())
	if err != nil {
		t.Fatalf("NewSessionFromConfig: %v", err)
	}
	defer sess.Close()
	if err := sess.Load(samples, ToneSampleRate); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := sess.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	var last Reading
	for {
		r, ok, err := sess.Tick()
		if err != nil {
			t.Fatalf("Tick: %v", err)
		}
		if !ok {
			break
		}
		last = r
	}
	if !last.Detected || last.Tuning.Note != "E2" || !last.Tuning.InTune {
		t.Errorf("last reading = %+v, want E2 in tune", last)
	}
}

func rms(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(xs)))
}

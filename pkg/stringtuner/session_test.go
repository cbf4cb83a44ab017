package stringtuner

import (
	"errors"
	"testing"

	"github.com/himanishpuri/StringTuner/pkg/stringtuner/analyser"
	"github.com/himanishpuri/StringTuner/pkg/stringtuner/audio"
)

const (
	testRate = 22050
	testFFT  = 8192
)

// lowETone is 1.5 s of a steady 82.41 Hz sine. At 22050 Hz and 60 ticks per
// second it plays for 90 ticks; the smoothed bin 31 crosses the threshold
// a little after the frame fills.
func lowETone(t *testing.T) []float64 {
	t.Helper()
	samples, err := audio.SynthesizeTone(audio.ToneConfig{
		Frequency:  82.41,
		SampleRate: testRate,
		Seconds:    1.5,
		Amplitude:  0.02,
	})
	if err != nil {
		t.Fatalf("SynthesizeTone: %v", err)
	}
	return samples
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	sess, err := NewSessionFromConfig(testRate, NewConfig(WithFFTSize(testFFT)))
	if err != nil {
		t.Fatalf("NewSessionFromConfig: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess
}

func TestSessionPlaysToEnd(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.Load(lowETone(t), testRate); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := sess.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	var readings []Reading
	for {
		r, ok, err := sess.Tick()
		if err != nil {
			t.Fatalf("Tick %d: %v", len(readings), err)
		}
		if !ok {
			break
		}
		readings = append(readings, r)
	}

	if len(readings) != 90 {
		t.Fatalf("got %d ticks, want 90", len(readings))
	}
	if readings[0].Detected {
		t.Errorf("first tick detected %v Hz from a mostly empty frame", readings[0].Frequency)
	}

	last := readings[len(readings)-1]
	want := 31 * float64(testRate) / testFFT
	if !last.Detected || last.Frequency != want {
		t.Fatalf("last tick frequency = %v detected = %v, want %v", last.Frequency, last.Detected, want)
	}
	if last.Tuning.Note != "E2" || !last.Tuning.InTune {
		t.Errorf("last tick tuning = %+v, want E2 in tune", last.Tuning)
	}

	for i, r := range readings {
		if r.Detected && r.Tuning.Note != "E2" {
			t.Errorf("tick %d classified as %s", i, r.Tuning.Note)
		}
	}

	if !sess.Ended() || sess.Playing() {
		t.Errorf("after last tick: ended = %v playing = %v", sess.Ended(), sess.Playing())
	}
	if _, ok, _ := sess.Tick(); ok {
		t.Error("Tick after end returned a reading")
	}
	if got := sess.Position().Seconds(); got != 1.5 {
		t.Errorf("position = %vs, want 1.5s", got)
	}
}

func TestSessionPauseResume(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.Load(lowETone(t), testRate); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, ok, _ := sess.Tick(); ok {
		t.Fatal("Tick before Play returned a reading")
	}

	if err := sess.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if _, ok, err := sess.Tick(); !ok || err != nil {
		t.Fatalf("Tick while playing: ok = %v err = %v", ok, err)
	}
	pos := sess.Position()

	sess.Pause()
	if _, ok, _ := sess.Tick(); ok {
		t.Error("Tick while paused returned a reading")
	}
	if sess.Position() != pos {
		t.Errorf("paused position moved from %v to %v", pos, sess.Position())
	}

	if err := sess.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if _, ok, _ := sess.Tick(); !ok {
		t.Error("Tick after resume returned nothing")
	}
}

func TestSessionReplayAfterEnd(t *testing.T) {
	sess := newTestSession(t)
	if err := sess.Load(make([]float64, 1000), testRate); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := sess.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	for {
		if _, ok, _ := sess.Tick(); !ok {
			break
		}
	}
	if !sess.Ended() {
		t.Fatal("session did not end")
	}

	if err := sess.Play(); err != nil {
		t.Fatalf("Play after end: %v", err)
	}
	if sess.Ended() || !sess.Playing() {
		t.Errorf("Play after end did not rewind: ended = %v playing = %v", sess.Ended(), sess.Playing())
	}
}

func TestSessionLoadErrors(t *testing.T) {
	sess := newTestSession(t)

	if err := sess.Load(nil, testRate); !errors.Is(err, ErrNoAudio) {
		t.Errorf("Load(nil) = %v, want ErrNoAudio", err)
	}
	if err := sess.Load(make([]float64, 10), 44100); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Load with other rate = %v, want ErrInvalidConfiguration", err)
	}
	if err := sess.Play(); !errors.Is(err, ErrNoAudio) {
		t.Errorf("Play without audio = %v, want ErrNoAudio", err)
	}

	sess.Close()
	if err := sess.Load(make([]float64, 10), testRate); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Load after Close = %v, want ErrSessionClosed", err)
	}
	if _, ok, _ := sess.Tick(); ok {
		t.Error("Tick after Close returned a reading")
	}
}

func TestNewSessionRejectsMismatchedAnalyser(t *testing.T) {
	engine, err := NewEngine(testRate, WithFFTSize(testFFT))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	an, err := analyser.New(analyser.Config{FFTSize: 4096, MinDecibels: -90, MaxDecibels: -20, Smoothing: 0.85})
	if err != nil {
		t.Fatalf("analyser.New: %v", err)
	}

	if _, err := NewSession(engine, an); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("NewSession = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := NewSession(nil, an); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("NewSession(nil engine) = %v, want ErrInvalidConfiguration", err)
	}
}

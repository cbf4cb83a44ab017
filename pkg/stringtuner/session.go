package stringtuner

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/himanishpuri/StringTuner/pkg/stringtuner/analyser"
)

// Session owns one loaded audio source, its analyser and its play head.
// Each Tick advances the play head by one display frame and analyses the
// FFTSize samples ending there. The spectrum and frame buffers are allocated
// once per session and reused by every tick.
type Session struct {
	mu       sync.Mutex
	engine   *Engine
	analyser *analyser.Analyser

	samples []float64
	pos     int
	hop     int
	playing bool
	closed  bool

	frame    []float64
	spectrum []uint8
}

// NewSession pairs an engine with an analyser of the same FFT size.
func NewSession(engine *Engine, an *analyser.Analyser) (*Session, error) {
	if engine == nil || an == nil {
		return nil, fmt.Errorf("%w: session needs an engine and an analyser", ErrInvalidConfiguration)
	}
	if an.FFTSize() != engine.FFTSize() {
		return nil, fmt.Errorf("%w: analyser fft size %d, engine fft size %d",
			ErrInvalidConfiguration, an.FFTSize(), engine.FFTSize())
	}
	hop := int(math.Round(engine.SampleRate() / engine.cfg.TickRate))
	if hop < 1 {
		hop = 1
	}
	return &Session{
		engine:   engine,
		analyser: an,
		hop:      hop,
		frame:    make([]float64, engine.FFTSize()),
		spectrum: make([]uint8, engine.BinCount()),
	}, nil
}

// NewSessionFromConfig builds the engine and analyser for sampleRate from cfg.
func NewSessionFromConfig(sampleRate float64, cfg *Config) (*Session, error) {
	engine, err := NewEngineWithConfig(sampleRate, cfg)
	if err != nil {
		return nil, err
	}
	an, err := analyser.New(analyser.Config{
		FFTSize:     cfg.FFTSize,
		MinDecibels: cfg.MinDecibels,
		MaxDecibels: cfg.MaxDecibels,
		Smoothing:   cfg.Smoothing,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return NewSession(engine, an)
}

// Load replaces the current source. The session is left paused at the start.
func (s *Session) Load(samples []float64, sampleRate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if len(samples) == 0 {
		return ErrNoAudio
	}
	if float64(sampleRate) != s.engine.SampleRate() {
		return fmt.Errorf("%w: source rate %d Hz, engine built for %g Hz",
			ErrInvalidConfiguration, sampleRate, s.engine.SampleRate())
	}

	s.samples = samples
	s.pos = 0
	s.playing = false
	s.analyser.Reset()
	return nil
}

func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.samples) == 0 {
		return ErrNoAudio
	}
	if s.pos >= len(s.samples) {
		s.pos = 0
		s.analyser.Reset()
	}
	s.playing = true
	return nil
}

func (s *Session) Pause() {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
}

func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Ended reports whether the play head reached the end of the source.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples) > 0 && s.pos >= len(s.samples)
}

// Position is the play head as audio time.
func (s *Session) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(float64(s.pos) / s.engine.SampleRate() * float64(time.Second))
}

func (s *Session) Engine() *Engine { return s.engine }

// Tick advances one frame and returns its reading. It returns false, and
// does no work, while the session is paused, ended or closed.
func (s *Session) Tick() (Reading, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.playing || s.pos >= len(s.samples) {
		return Reading{}, false, nil
	}

	s.pos += s.hop
	if s.pos >= len(s.samples) {
		s.pos = len(s.samples)
		s.playing = false
	}
	s.fillFrame()

	if err := s.analyser.ByteFrequencyData(s.frame, s.spectrum); err != nil {
		return Reading{}, false, fmt.Errorf("%w: %v", ErrContractViolation, err)
	}
	reading, err := s.engine.Process(s.spectrum)
	if err != nil {
		return Reading{}, false, err
	}
	return reading, true, nil
}

// fillFrame copies the FFTSize samples ending at the play head, zero padded
// at the front while fewer samples have been played.
func (s *Session) fillFrame() {
	n := len(s.frame)
	start := s.pos - n
	if start >= 0 {
		copy(s.frame, s.samples[start:s.pos])
		return
	}
	pad := -start
	for i := 0; i < pad; i++ {
		s.frame[i] = 0
	}
	copy(s.frame[pad:], s.samples[:s.pos])
}

// Close releases the source and buffers. Further ticks return false.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.playing = false
	s.samples = nil
	s.frame = nil
	s.spectrum = nil
	return nil
}

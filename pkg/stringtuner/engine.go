package stringtuner

import "fmt"

// nearestCount is how many nearby notes a Reading carries for display.
const nearestCount = 3

// Engine runs peak extraction and classification for one sample rate.
// It validates its configuration once at construction and holds no
// per-tick state, so Process can be called from any goroutine.
type Engine struct {
	cfg        Config
	sampleRate float64
}

// NewEngine builds an engine for audio at sampleRate.
func NewEngine(sampleRate float64, opts ...Option) (*Engine, error) {
	cfg := NewConfig(opts...)
	return NewEngineWithConfig(sampleRate, cfg)
}

// NewEngineWithConfig builds an engine from an already assembled Config.
func NewEngineWithConfig(sampleRate float64, cfg *Config) (*Engine, error) {
	if err := cfg.Validate(sampleRate); err != nil {
		return nil, err
	}
	notes := make([]ReferenceNote, len(cfg.Notes))
	copy(notes, cfg.Notes)
	c := *cfg
	c.Notes = notes
	return &Engine{cfg: c, sampleRate: sampleRate}, nil
}

func (e *Engine) SampleRate() float64 { return e.sampleRate }

func (e *Engine) FFTSize() int { return e.cfg.FFTSize }

// BinCount is the spectrum length Process expects.
func (e *Engine) BinCount() int { return e.cfg.FFTSize / 2 }

func (e *Engine) Config() Config { return e.cfg }

// Process turns one spectrum snapshot into a Reading.
// Silence is not an error: it comes back with Detected == false.
func (e *Engine) Process(spectrum []uint8) (Reading, error) {
	if len(spectrum) != e.BinCount() {
		return Reading{}, fmt.Errorf("%w: got %d bins, fft size %d needs %d",
			ErrContractViolation, len(spectrum), e.cfg.FFTSize, e.BinCount())
	}

	freq, peaks := ExtractPeaks(spectrum, e.sampleRate, e.cfg.FFTSize, e.cfg.Band, e.cfg.AmplitudeThreshold, e.cfg.MaxPeaks)
	if freq <= 0 {
		return Reading{Peaks: peaks}, nil
	}

	return Reading{
		Frequency: freq,
		Detected:  true,
		Peaks:     peaks,
		Tuning:    Classify(freq, e.cfg.Notes, e.cfg.Tolerance),
		Nearest:   NearestNotes(freq, e.cfg.Notes, nearestCount),
	}, nil
}

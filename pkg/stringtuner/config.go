package stringtuner

import "fmt"

// Config holds every tunable of the engine, the capture pipeline and the service.
type Config struct {
	FFTSize            int
	MinDecibels        float64
	MaxDecibels        float64
	Smoothing          float64
	Band               Band
	AmplitudeThreshold uint8
	Tolerance          float64
	MaxPeaks           int
	Notes              []ReferenceNote
	TickRate           float64 // ticks per second of audio, the display refresh cadence
	DBPath             string
	TempDir            string
	DisableHistory     bool // skip opening storage; reports are not persisted
	Logger             Logger
	Storage            Storage
}

type Option func(*Config)

func WithFFTSize(size int) Option {
	return func(c *Config) {
		c.FFTSize = size
	}
}

func WithDecibels(min, max float64) Option {
	return func(c *Config) {
		c.MinDecibels = min
		c.MaxDecibels = max
	}
}

func WithSmoothing(tc float64) Option {
	return func(c *Config) {
		c.Smoothing = tc
	}
}

func WithBand(min, max float64) Option {
	return func(c *Config) {
		c.Band = Band{Min: min, Max: max}
	}
}

func WithThreshold(threshold uint8) Option {
	return func(c *Config) {
		c.AmplitudeThreshold = threshold
	}
}

func WithTolerance(hz float64) Option {
	return func(c *Config) {
		c.Tolerance = hz
	}
}

func WithMaxPeaks(n int) Option {
	return func(c *Config) {
		c.MaxPeaks = n
	}
}

func WithNotes(notes []ReferenceNote) Option {
	return func(c *Config) {
		c.Notes = notes
	}
}

func WithTickRate(hz float64) Option {
	return func(c *Config) {
		c.TickRate = hz
	}
}

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

// WithoutHistory keeps the service from opening or writing history storage.
func WithoutHistory() Option {
	return func(c *Config) {
		c.DisableHistory = true
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() *Config {
	return &Config{
		FFTSize:            32768,
		MinDecibels:        -90,
		MaxDecibels:        -20,
		Smoothing:          0.85,
		Band:               Band{Min: 60, Max: 350},
		AmplitudeThreshold: 120,
		Tolerance:          2,
		MaxPeaks:           3,
		Notes:              StandardTuning,
		TickRate:           60,
		DBPath:             "stringtuner.sqlite3",
		TempDir:            "/tmp",
	}
}

// NewConfig applies opts over the defaults.
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks the static configuration against a source sample rate.
// Every failure wraps ErrInvalidConfiguration.
func (c *Config) Validate(sampleRate float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %g", ErrInvalidConfiguration, sampleRate)
	}
	nyquist := sampleRate / 2
	if c.Band.Min <= 0 || c.Band.Max >= nyquist {
		return fmt.Errorf("%w: band %g-%g Hz outside (0, %g)", ErrInvalidConfiguration, c.Band.Min, c.Band.Max, nyquist)
	}
	if c.Band.Min >= c.Band.Max {
		return fmt.Errorf("%w: band min %g >= max %g", ErrInvalidConfiguration, c.Band.Min, c.Band.Max)
	}
	if !validFFTSize(c.FFTSize) {
		return fmt.Errorf("%w: fft size %d must be a power of two in [32, 32768]", ErrInvalidConfiguration, c.FFTSize)
	}
	if c.MinDecibels >= c.MaxDecibels {
		return fmt.Errorf("%w: minDecibels %g >= maxDecibels %g", ErrInvalidConfiguration, c.MinDecibels, c.MaxDecibels)
	}
	if c.Smoothing < 0 || c.Smoothing > 1 {
		return fmt.Errorf("%w: smoothing %g outside [0, 1]", ErrInvalidConfiguration, c.Smoothing)
	}
	if c.MaxPeaks < 1 {
		return fmt.Errorf("%w: max peaks must be at least 1", ErrInvalidConfiguration)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%w: negative tolerance %g", ErrInvalidConfiguration, c.Tolerance)
	}
	if len(c.Notes) == 0 {
		return fmt.Errorf("%w: empty note table", ErrInvalidConfiguration)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick rate must be positive", ErrInvalidConfiguration)
	}
	return nil
}

func validFFTSize(n int) bool {
	return n >= 32 && n <= 32768 && n&(n-1) == 0
}

package models

import "time"

// Session is one stored analysis run over an audio source.
type Session struct {
	ID            string // UUID
	Source        string // file name the readings came from
	SampleRate    int    // Hz
	FFTSize       int    // transform size used by the analyser
	DurationMs    int    // source length
	Ticks         int    // analysed frames
	DetectedTicks int    // frames with a fundamental
	InTuneTicks   int    // detected frames within tolerance
	DominantNote  string // most frequent note over detected frames
	CreatedAt     time.Time
}

// Reading is one stored per-tick verdict.
type Reading struct {
	Tick        int
	TimeMs      int
	Frequency   float64 // 0 when nothing was detected
	Note        string
	InTune      bool
	NeedsHigher bool
	Difference  float64
	Cents       float64
}

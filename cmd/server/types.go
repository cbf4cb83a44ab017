package main

import (
	"fmt"
	"time"

	"github.com/himanishpuri/StringTuner/pkg/models"
	"github.com/himanishpuri/StringTuner/pkg/stringtuner"
)

// MaxSpectrumBins is the bin count of the largest supported FFT (32768).
const MaxSpectrumBins = 16384

// SpectrumRequest is the request body for POST /api/spectrum.
// Spectrum holds one byte amplitude (0-255) per bin, as delivered by an
// AnalyserNode's getByteFrequencyData.
type SpectrumRequest struct {
	SampleRate float64 `json:"sample_rate"`
	FFTSize    int     `json:"fft_size"`
	Spectrum   []int   `json:"spectrum"`
}

// Validate checks the request shape and converts the spectrum to bytes.
func (r *SpectrumRequest) Validate() ([]uint8, error) {
	if r.SampleRate <= 0 {
		return nil, fmt.Errorf("sample_rate must be positive")
	}
	if r.FFTSize <= 0 {
		return nil, fmt.Errorf("fft_size must be positive")
	}
	if len(r.Spectrum) == 0 {
		return nil, fmt.Errorf("spectrum cannot be empty")
	}
	if len(r.Spectrum) > MaxSpectrumBins {
		return nil, fmt.Errorf("too many bins: %d (maximum: %d)", len(r.Spectrum), MaxSpectrumBins)
	}
	if len(r.Spectrum) != r.FFTSize/2 {
		return nil, fmt.Errorf("spectrum has %d bins, fft_size %d needs %d", len(r.Spectrum), r.FFTSize, r.FFTSize/2)
	}

	out := make([]uint8, len(r.Spectrum))
	for i, v := range r.Spectrum {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("bin %d amplitude %d outside 0-255", i, v)
		}
		out[i] = uint8(v)
	}
	return out, nil
}

// ClassifyResponse is the response for GET /api/classify.
type ClassifyResponse struct {
	Frequency float64                    `json:"frequency"`
	Tuning    stringtuner.TuningResult   `json:"tuning"`
	Verdict   string                     `json:"verdict"`
	Nearest   []stringtuner.NoteDistance `json:"nearest"`
}

// ReadingResponse is the response for POST /api/spectrum.
type ReadingResponse struct {
	stringtuner.Reading
	Verdict string   `json:"verdict,omitempty"`
	Display []string `json:"display"`
}

// NotesResponse is the response for GET /api/notes.
type NotesResponse struct {
	Notes     []stringtuner.ReferenceNote `json:"notes"`
	Tolerance float64                     `json:"tolerance"`
}

// SessionDTO represents a stored session in API responses.
type SessionDTO struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	SampleRate    int       `json:"sample_rate"`
	FFTSize       int       `json:"fft_size"`
	DurationMs    int       `json:"duration_ms"`
	Ticks         int       `json:"ticks"`
	DetectedTicks int       `json:"detected_ticks"`
	InTuneTicks   int       `json:"in_tune_ticks"`
	DominantNote  string    `json:"dominant_note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toSessionDTO(s models.Session) SessionDTO {
	return SessionDTO{
		ID:            s.ID,
		Source:        s.Source,
		SampleRate:    s.SampleRate,
		FFTSize:       s.FFTSize,
		DurationMs:    s.DurationMs,
		Ticks:         s.Ticks,
		DetectedTicks: s.DetectedTicks,
		InTuneTicks:   s.InTuneTicks,
		DominantNote:  s.DominantNote,
		CreatedAt:     s.CreatedAt,
	}
}

// ReadingDTO represents a stored per-tick verdict.
type ReadingDTO struct {
	Tick        int     `json:"tick"`
	TimeMs      int     `json:"time_ms"`
	Frequency   float64 `json:"frequency"`
	Note        string  `json:"note,omitempty"`
	InTune      bool    `json:"in_tune"`
	NeedsHigher bool    `json:"needs_higher"`
	Difference  float64 `json:"difference"`
	Cents       float64 `json:"cents"`
}

// ListSessionsResponse is the response for GET /api/sessions.
type ListSessionsResponse struct {
	Sessions []SessionDTO `json:"sessions"`
	Count    int          `json:"count"`
}

// SessionDetailResponse is the response for GET /api/sessions/{id}.
type SessionDetailResponse struct {
	Session  SessionDTO   `json:"session"`
	Readings []ReadingDTO `json:"readings"`
}

// DeleteSessionResponse is the response for DELETE /api/sessions/{id}.
type DeleteSessionResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

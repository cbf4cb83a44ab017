package stringtuner

// Peak is one local maximum of the magnitude spectrum in physical units.
type Peak struct {
	Frequency float64 `json:"frequency"` // Hz
	Amplitude uint8   `json:"amplitude"` // analyser byte scale (0-255)
}

// Band is the analysis frequency range in Hz.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ReferenceNote is one open-string target pitch.
type ReferenceNote struct {
	Name      string  `json:"name"`
	Frequency float64 `json:"frequency"`
	ToneFile  string  `json:"tone_file,omitempty"` // preset reference tone file name
}

// TuningResult is the verdict for a single frequency estimate.
// Note is empty when there was nothing to compare against.
type TuningResult struct {
	Note        string  `json:"note"`
	InTune      bool    `json:"in_tune"`
	NeedsHigher bool    `json:"needs_higher"`
	Difference  float64 `json:"difference"` // |frequency - note| in Hz
	Cents       float64 `json:"cents"`      // signed deviation in cents
}

// NoteDistance pairs a reference note with its distance from a frequency.
type NoteDistance struct {
	Note       ReferenceNote `json:"note"`
	Difference float64       `json:"difference"`
}

// Reading is the full output of one tick: what the presentation layer draws.
type Reading struct {
	Frequency float64        `json:"frequency"`
	Detected  bool           `json:"detected"`
	Peaks     []Peak         `json:"peaks"`
	Tuning    TuningResult   `json:"tuning"`
	Nearest   []NoteDistance `json:"nearest,omitempty"`
}

// NoteCount is how many detected ticks were classified as a note.
type NoteCount struct {
	Note  string `json:"note"`
	Count int    `json:"count"`
}

// Report aggregates the per-tick readings of a whole audio source.
type Report struct {
	SessionID     string      `json:"session_id,omitempty"`
	Source        string      `json:"source"`
	SampleRate    int         `json:"sample_rate"`
	FFTSize       int         `json:"fft_size"`
	DurationMs    int         `json:"duration_ms"`
	Ticks         int         `json:"ticks"`
	DetectedTicks int         `json:"detected_ticks"`
	InTuneTicks   int         `json:"in_tune_ticks"`
	DominantNote  string      `json:"dominant_note,omitempty"`
	NoteCounts    []NoteCount `json:"note_counts"`
	Last          Reading     `json:"last"`
	Readings      []Reading   `json:"-"`
}

package stringtuner

import (
	"math"
	"sort"
)

// Classify matches frequency against notes and reports the nearest one.
// The scan keeps the first strict improvement, so exact ties resolve to the
// earlier table entry. A zero frequency still yields the nearest note (the
// lowest string); callers gate on Reading.Detected, not on the result.
func Classify(frequency float64, notes []ReferenceNote, tolerance float64) TuningResult {
	best := -1
	smallest := math.Inf(1)

	for i, n := range notes {
		diff := math.Abs(frequency - n.Frequency)
		if diff < smallest {
			smallest = diff
			best = i
		}
	}

	if best < 0 {
		return TuningResult{Difference: math.Inf(1)}
	}

	ref := notes[best]
	return TuningResult{
		Note:        ref.Name,
		InTune:      smallest <= tolerance,
		NeedsHigher: frequency < ref.Frequency,
		Difference:  smallest,
		Cents:       cents(frequency, ref.Frequency),
	}
}

// NearestNotes returns up to n notes ordered by distance from frequency.
func NearestNotes(frequency float64, notes []ReferenceNote, n int) []NoteDistance {
	out := make([]NoteDistance, len(notes))
	for i, note := range notes {
		out[i] = NoteDistance{Note: note, Difference: math.Abs(note.Frequency - frequency)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Difference < out[j].Difference })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// cents is 1200*log2(f/ref); 0 for non-positive input.
func cents(f, ref float64) float64 {
	if f <= 0 || ref <= 0 {
		return 0
	}
	return 1200 * math.Log2(f/ref)
}

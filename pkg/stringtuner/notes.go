package stringtuner

import "strings"

// StandardTuning lists the six open strings in canonical order, low to high.
// Order matters: Classify breaks exact ties in favour of earlier entries.
var StandardTuning = []ReferenceNote{
	{Name: "E2", Frequency: 82.41, ToneFile: "e2.wav"},
	{Name: "A2", Frequency: 110.00, ToneFile: "a2.wav"},
	{Name: "D3", Frequency: 146.83, ToneFile: "d3.wav"},
	{Name: "G3", Frequency: 196.00, ToneFile: "g3.wav"},
	{Name: "B3", Frequency: 246.94, ToneFile: "b3.wav"},
	{Name: "E4", Frequency: 329.63, ToneFile: "e4.wav"},
}

// LookupNote finds a note in StandardTuning by name, case-insensitively.
func LookupNote(name string) (ReferenceNote, bool) {
	return findNote(StandardTuning, name)
}

func findNote(notes []ReferenceNote, name string) (ReferenceNote, bool) {
	for _, n := range notes {
		if strings.EqualFold(n.Name, name) {
			return n, true
		}
	}
	return ReferenceNote{}, false
}

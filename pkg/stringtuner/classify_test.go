package stringtuner

import (
	"math"
	"testing"
)

func TestClassifyStandardTuning(t *testing.T) {
	tests := []struct {
		name        string
		freq        float64
		note        string
		inTune      bool
		needsHigher bool
		diff        float64
	}{
		{"exact E2", 82.41, "E2", true, false, 0},
		{"sharp E2", 85.0, "E2", false, false, 2.59},
		{"flat A2 in tolerance", 108.5, "A2", true, true, 1.5},
		{"exact G3", 196, "G3", true, false, 0},
		{"flat E4", 320, "E4", false, true, 9.63},
		{"far above table", 500, "E4", false, false, 170.37},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.freq, StandardTuning, 2)
			if got.Note != tt.note {
				t.Errorf("note = %q, want %q", got.Note, tt.note)
			}
			if got.InTune != tt.inTune {
				t.Errorf("inTune = %v, want %v", got.InTune, tt.inTune)
			}
			if got.NeedsHigher != tt.needsHigher {
				t.Errorf("needsHigher = %v, want %v", got.NeedsHigher, tt.needsHigher)
			}
			if math.Abs(got.Difference-tt.diff) > 1e-9 {
				t.Errorf("difference = %v, want %v", got.Difference, tt.diff)
			}
		})
	}
}

func TestClassifyToleranceIsInclusive(t *testing.T) {
	notes := []ReferenceNote{{Name: "T", Frequency: 100}}

	if got := Classify(102, notes, 2); !got.InTune {
		t.Errorf("102 Hz with tolerance 2: want in tune, got %+v", got)
	}
	if got := Classify(102.5, notes, 2); got.InTune {
		t.Errorf("102.5 Hz with tolerance 2: want out of tune, got %+v", got)
	}
	if got := Classify(100, notes, 0); !got.InTune {
		t.Errorf("exact match with zero tolerance: want in tune, got %+v", got)
	}
}

func TestClassifyTieGoesToEarlierNote(t *testing.T) {
	notes := []ReferenceNote{
		{Name: "X", Frequency: 100},
		{Name: "Y", Frequency: 200},
	}
	got := Classify(150, notes, 2)
	if got.Note != "X" {
		t.Errorf("note = %q, want X", got.Note)
	}
	if got.NeedsHigher {
		t.Error("150 Hz is above X, needsHigher should be false")
	}
}

func TestClassifyEmptyTable(t *testing.T) {
	got := Classify(100, nil, 2)
	if got.Note != "" {
		t.Errorf("note = %q, want empty", got.Note)
	}
	if !math.IsInf(got.Difference, 1) {
		t.Errorf("difference = %v, want +Inf", got.Difference)
	}
	if got.InTune {
		t.Error("empty table reported in tune")
	}
}

func TestClassifyZeroFrequency(t *testing.T) {
	got := Classify(0, StandardTuning, 2)
	if got.Note != "E2" || !got.NeedsHigher || got.InTune {
		t.Errorf("Classify(0) = %+v, want E2 out of tune needing higher", got)
	}
	if got.Cents != 0 {
		t.Errorf("cents = %v, want 0 for zero frequency", got.Cents)
	}
}

func TestClassifyCents(t *testing.T) {
	notes := []ReferenceNote{{Name: "T", Frequency: 100}}

	if got := Classify(100, notes, 2).Cents; got != 0 {
		t.Errorf("unison cents = %v, want 0", got)
	}
	if got := cents(200, 100); math.Abs(got-1200) > 1e-9 {
		t.Errorf("octave cents = %v, want 1200", got)
	}
	if got := Classify(95, notes, 2).Cents; got >= 0 {
		t.Errorf("flat cents = %v, want negative", got)
	}
}

func TestNearestNotes(t *testing.T) {
	got := NearestNotes(83.44, StandardTuning, 3)
	want := []string{"E2", "A2", "D3"}
	if len(got) != len(want) {
		t.Fatalf("got %d notes, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Note.Name != name {
			t.Errorf("nearest[%d] = %s, want %s", i, got[i].Note.Name, name)
		}
	}
	if math.Abs(got[0].Difference-1.03) > 1e-9 {
		t.Errorf("E2 difference = %v, want 1.03", got[0].Difference)
	}

	if all := NearestNotes(200, StandardTuning, 10); len(all) != len(StandardTuning) {
		t.Errorf("n larger than table: got %d notes", len(all))
	}
	if none := NearestNotes(200, StandardTuning, 0); len(none) != 0 {
		t.Errorf("n = 0: got %d notes", len(none))
	}
}

func TestLookupNote(t *testing.T) {
	n, ok := LookupNote("g3")
	if !ok || n.Name != "G3" || n.Frequency != 196 {
		t.Errorf("LookupNote(g3) = %+v, %v", n, ok)
	}
	if _, ok := LookupNote("C5"); ok {
		t.Error("LookupNote(C5) found a note")
	}
}

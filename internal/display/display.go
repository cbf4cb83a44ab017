// Package display renders tuner readings as the lines the visualiser draws:
// a headline, the detected peaks and the nearest reference notes.
package display

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/himanishpuri/StringTuner/pkg/stringtuner"
)

const (
	IdleText    = "Click a note button to begin"
	WaitingText = "Waiting for audio..."
)

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
)

// Lines returns the text for one frame. playing is false while no source
// is running.
func Lines(playing bool, r stringtuner.Reading) []string {
	if !playing {
		return []string{IdleText}
	}
	if !r.Detected || r.Frequency <= 0 {
		return []string{WaitingText}
	}

	lines := []string{Headline(r)}
	if len(r.Peaks) == 0 {
		return lines
	}

	lines = append(lines, "Detected Peaks:")
	for i, p := range r.Peaks {
		lines = append(lines, fmt.Sprintf("Peak %d: %.1fHz (amp: %d)", i+1, p.Frequency, p.Amplitude))
	}

	lines = append(lines, "Nearest Notes:")
	for _, n := range r.Nearest {
		lines = append(lines, fmt.Sprintf("%s: %sHz (diff: %.1fHz)",
			n.Note.Name, formatHz(n.Note.Frequency), n.Difference))
	}
	return lines
}

// Headline is the "Note: E2 (82Hz)" line.
func Headline(r stringtuner.Reading) string {
	return fmt.Sprintf("Note: %s (%dHz)", r.Tuning.Note, int(math.Round(r.Frequency)))
}

// Verdict says which way to turn the peg.
func Verdict(t stringtuner.TuningResult) string {
	switch {
	case t.Note == "":
		return ""
	case t.InTune:
		return "in tune"
	case t.NeedsHigher:
		return "tune up"
	default:
		return "tune down"
	}
}

// formatHz prints table frequencies the shortest way, 110 rather than 110.00.
func formatHz(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Printer writes frames to a terminal. With color on, the headline is green
// when in tune and red otherwise.
type Printer struct {
	w     io.Writer
	color bool
}

func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) Frame(playing bool, r stringtuner.Reading) error {
	lines := Lines(playing, r)
	if playing && r.Detected {
		head := lines[0]
		if v := Verdict(r.Tuning); v != "" {
			head += fmt.Sprintf(" %s (%+.1f cents)", v, r.Tuning.Cents)
		}
		if p.color {
			c := colorRed
			if r.Tuning.InTune {
				c = colorGreen
			}
			head = c + head + colorReset
		}
		lines[0] = head
	}
	_, err := io.WriteString(p.w, strings.Join(lines, "\n")+"\n")
	return err
}

// Report writes the summary of a whole analysis.
func (p *Printer) Report(rep *stringtuner.Report) error {
	var b strings.Builder
	if rep.SessionID != "" {
		fmt.Fprintf(&b, "Session:    %s\n", rep.SessionID)
	}
	fmt.Fprintf(&b, "Source:     %s\n", rep.Source)
	fmt.Fprintf(&b, "Format:     %d Hz, FFT %d\n", rep.SampleRate, rep.FFTSize)
	fmt.Fprintf(&b, "Duration:   %.2fs\n", float64(rep.DurationMs)/1000)
	fmt.Fprintf(&b, "Ticks:      %d (%d with signal, %d in tune)\n", rep.Ticks, rep.DetectedTicks, rep.InTuneTicks)

	if rep.DominantNote == "" {
		b.WriteString("Dominant:   none\n")
	} else {
		fmt.Fprintf(&b, "Dominant:   %s\n", rep.DominantNote)
		for _, nc := range rep.NoteCounts {
			fmt.Fprintf(&b, "  %-3s %5d ticks\n", nc.Note, nc.Count)
		}
	}

	if _, err := io.WriteString(p.w, b.String()); err != nil {
		return err
	}
	if rep.Last.Detected {
		io.WriteString(p.w, "Last frame:\n")
		return p.Frame(true, rep.Last)
	}
	return nil
}

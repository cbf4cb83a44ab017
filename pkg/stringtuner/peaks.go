package stringtuner

import (
	"math"
	"sort"
)

// neighbourWidth is how many bins on each side a candidate must strictly exceed.
const neighbourWidth = 2

// candidate is a qualifying bin before conversion to physical units.
type candidate struct {
	bin int
	amp uint8
}

// ExtractPeaks finds the strongest local maxima of a byte magnitude spectrum
// inside band and returns the fundamental estimate plus up to maxPeaks peaks.
//
// Parameters:
//   - spectrum: one amplitude per bin, bin i at i*sampleRate/fftSize Hz
//   - sampleRate: sample rate (Hz) of the analysed audio
//   - fftSize: transform size that produced the spectrum
//   - band: analysis range; converted to bins with floor
//   - threshold: a peak must strictly exceed this amplitude
//   - maxPeaks: cap on the returned peak list
//
// Bins in [startBin+2, endBin-2) are scanned. A bin qualifies when it is
// strictly greater than its two neighbours on each side and the threshold.
// Candidates are ordered by descending amplitude, earlier bins first on ties.
// With no candidate the fundamental is 0 and the peak list is empty.
func ExtractPeaks(spectrum []uint8, sampleRate float64, fftSize int, band Band, threshold uint8, maxPeaks int) (float64, []Peak) {
	if len(spectrum) == 0 || fftSize <= 0 || sampleRate <= 0 {
		return 0, []Peak{}
	}

	startBin := int(math.Floor(band.Min * float64(fftSize) / sampleRate))
	endBin := int(math.Floor(band.Max * float64(fftSize) / sampleRate))

	first := startBin + neighbourWidth
	if first < neighbourWidth {
		first = neighbourWidth
	}
	last := endBin - neighbourWidth
	// keep i+2 inside the slice even if the band overshoots the spectrum
	if limit := len(spectrum) - neighbourWidth; last > limit {
		last = limit
	}

	found := make([]candidate, 0, 8)
	for i := first; i < last; i++ {
		v := spectrum[i]
		if v <= threshold {
			continue
		}
		if v > spectrum[i-1] && v > spectrum[i-2] &&
			v > spectrum[i+1] && v > spectrum[i+2] {
			found = append(found, candidate{bin: i, amp: v})
		}
	}

	if len(found) == 0 {
		return 0, []Peak{}
	}

	sort.SliceStable(found, func(a, b int) bool { return found[a].amp > found[b].amp })

	n := len(found)
	if maxPeaks >= 0 && n > maxPeaks {
		n = maxPeaks
	}
	peaks := make([]Peak, n)
	for i := 0; i < n; i++ {
		peaks[i] = Peak{
			Frequency: float64(found[i].bin) * sampleRate / float64(fftSize),
			Amplitude: found[i].amp,
		}
	}

	return float64(found[0].bin) * sampleRate / float64(fftSize), peaks
}

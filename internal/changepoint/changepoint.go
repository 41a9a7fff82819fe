package changepoint

import (
	"iter"
	"slices"

	"cuesplice/internal/frames"
)

const (
	// DefaultThreshold is the confidence a sample must exceed to count as a caption change.
	DefaultThreshold = 4.2
	// DefaultGlitchInterval is the minimum spacing in seconds between accepted changes.
	DefaultGlitchInterval = 0.27
)

// Candidate is a sample accepted as a likely caption change.
type Candidate struct {
	FrameIndex int
	Timestamp  float64
	Confidence float64
}

func fromSample(s frames.Sample) Candidate {
	return Candidate{FrameIndex: s.FrameIndex, Timestamp: s.Timestamp, Confidence: s.Confidence}
}

// Filter accepts samples above Threshold, dropping any that land within
// GlitchInterval of the last accepted one. The zero value is not useful;
// use NewFilter.
type Filter struct {
	Threshold      float64
	GlitchInterval float64

	last     float64
	accepted bool
}

// NewFilter returns a filter with the given threshold and glitch interval.
func NewFilter(threshold, glitch float64) *Filter {
	return &Filter{Threshold: threshold, GlitchInterval: glitch}
}

// Accept reports whether s is a new change point and records it if so.
// Samples must be fed in frame order.
func (f *Filter) Accept(s frames.Sample) bool {
	if s.Confidence <= f.Threshold {
		return false
	}
	if f.accepted && s.Timestamp-f.last <= f.GlitchInterval {
		return false
	}
	f.accepted = true
	f.last = s.Timestamp
	return true
}

// Extract runs samples through a fresh Filter and returns the accepted candidates.
func Extract(samples iter.Seq[frames.Sample], threshold, glitch float64) []Candidate {
	filter := NewFilter(threshold, glitch)
	var out []Candidate
	for s := range samples {
		if filter.Accept(s) {
			out = append(out, fromSample(s))
		}
	}
	return out
}

// ExtractSlice is Extract over a slice.
func ExtractSlice(samples []frames.Sample, threshold, glitch float64) []Candidate {
	return Extract(slices.Values(samples), threshold, glitch)
}

// Mismatch describes a candidate count that disagrees with the subtitle count.
type Mismatch struct {
	Candidates int
	Subtitles  int
}

// CheckCount compares n candidates against m subtitles. m subtitles have m-1
// interior boundaries; any other count returns a mismatch. The caller decides
// how to report it; a mismatch never stops processing.
func CheckCount(n, m int) (Mismatch, bool) {
	if n == m-1 {
		return Mismatch{}, false
	}
	return Mismatch{Candidates: n, Subtitles: m}, true
}

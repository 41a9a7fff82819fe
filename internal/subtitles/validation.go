package subtitles

import "fmt"

// Validate checks entries for structural issues. Returns a list of issues
// found; an empty slice means validation passed. When videoSeconds is
// positive, cues ending after the video are reported.
func Validate(entries []Entry, videoSeconds float64) []string {
	var issues []string
	if len(entries) == 0 {
		return append(issues, "empty_subtitle_file")
	}

	for i, entry := range entries {
		if entry.Start < 0 {
			issues = append(issues, fmt.Sprintf("negative_start: index=%d start=%s", i, entry.Start))
		}
		if entry.End < entry.Start {
			issues = append(issues, fmt.Sprintf("inverted_cue: index=%d start=%s end=%s", i, entry.Start, entry.End))
		}
		if i > 0 && entry.Start < entries[i-1].Start {
			issues = append(issues, fmt.Sprintf("non_monotonic: index=%d start=%s previous=%s", i, entry.Start, entries[i-1].Start))
		}
	}

	if videoSeconds > 0 {
		limit := FromSeconds(videoSeconds)
		last := entries[len(entries)-1]
		if last.End > limit {
			issues = append(issues, fmt.Sprintf("beyond_video: end=%s video=%s", last.End, limit))
		}
	}
	return issues
}

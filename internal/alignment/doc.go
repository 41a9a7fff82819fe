// Package alignment runs the forced aligner that turns a plain-text
// transcript and its narration audio into timed subtitles.
//
// The aligner is the aeneas python module, invoked as a subprocess. It
// writes a JSON sync map; the service converts that map into numbered
// subtitle entries and saves them next to it as an SRT file. When the
// aligner exits without producing the sync map the returned error carries
// whatever it printed.
package alignment

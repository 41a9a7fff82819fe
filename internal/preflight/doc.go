// Package preflight checks that the directories and external programs a
// cuesplice run needs are in place before any work starts.
//
// The "cuesplice deps" command prints every result; the run and splice
// commands call RunAll and stop on the first failed check so a long scan is
// not wasted on a missing output directory or ffmpeg binary.
package preflight

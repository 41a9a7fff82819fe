// Package subtitles models timed subtitle entries and moves them in and out
// of SRT files and forced-alignment sync maps.
//
// Times are held as integral milliseconds (Timecode) so that comparisons in
// the reconcile stage are exact. Conversion from fractional seconds rounds to
// the nearest millisecond.
package subtitles

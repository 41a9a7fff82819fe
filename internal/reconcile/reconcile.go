package reconcile

import (
	"log/slog"

	"cuesplice/internal/changepoint"
	"cuesplice/internal/logging"
	"cuesplice/internal/subtitles"
)

// Reconciler runs the boundary and nudge passes.
type Reconciler struct {
	Params Params
	Logger *slog.Logger
}

// New returns a reconciler. A nil logger discards output.
func New(params Params, logger *slog.Logger) *Reconciler {
	return &Reconciler{Params: params, Logger: logging.NewComponentLogger(logger, "reconcile")}
}

// Report summarizes what reconciliation changed.
type Report struct {
	// Matched lists subtitle indices whose end moved onto a change point.
	Matched []int
	// Unmatched lists subtitle indices left with their aligned end.
	Unmatched []int
	// OverlapFixes lists subtitle indices whose start was forced onto the previous end.
	OverlapFixes []int
	// Discarded counts candidates skipped because they fell before a match window.
	Discarded int
	// Nudged lists subtitle indices whose start was pulled earlier.
	Nudged []int
	// Mismatch is set when the candidate count is not one less than the subtitle count.
	Mismatch *changepoint.Mismatch
}

func (r *Reconciler) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.NewNop()
	}
	return r.Logger
}

// Reconcile runs both passes over a copy of entries and returns it with a
// report. The cursor is consumed.
func (r *Reconciler) Reconcile(entries []subtitles.Entry, cursor *changepoint.Cursor, replaced ReplacementSet) ([]subtitles.Entry, Report) {
	out := subtitles.Clone(entries)
	var report Report

	candidates := 0
	if cursor != nil {
		candidates = cursor.Remaining()
	}
	if m, bad := changepoint.CheckCount(candidates, len(out)); bad {
		report.Mismatch = &m
		logging.WarnEvent(r.logger(), "candidate count does not match subtitle count", "candidate_mismatch",
			logging.Int("candidates", m.Candidates),
			logging.Int("subtitles", m.Subtitles),
			logging.Alert("candidate_mismatch"),
		)
	}

	r.boundaryPass(out, cursor, &report)
	report.Nudged = r.NudgePass(out, replaced)
	r.logger().Info("subtitles reconciled",
		logging.Int("subtitles", len(out)),
		logging.Int("matched", len(report.Matched)),
		logging.Int("unmatched", len(report.Unmatched)),
		logging.Int("overlap_fixes", len(report.OverlapFixes)),
		logging.Int("discarded_candidates", report.Discarded),
		logging.Int("nudged", len(report.Nudged)),
	)
	return out, report
}

// BoundaryPass snaps subtitle ends onto change points and closes gaps and
// overlaps between neighbours. entries are edited in place. When it returns,
// every entries[i].End equals entries[i+1].Start.
func (r *Reconciler) BoundaryPass(entries []subtitles.Entry, cursor *changepoint.Cursor) Report {
	var report Report
	r.boundaryPass(entries, cursor, &report)
	return report
}

func (r *Reconciler) boundaryPass(entries []subtitles.Entry, cursor *changepoint.Cursor, report *Report) {
	log := r.logger()
	for i := range entries {
		cur := &entries[i]
		if i > 0 {
			prev := entries[i-1]
			if prev.End != cur.Start {
				logging.WarnEvent(log, "boundary overlap", "boundary_overlap",
					logging.Int(logging.FieldSegment, i),
					logging.String("previous_end", prev.End.String()),
					logging.String("start", cur.Start.String()),
					logging.String("previous_text", prev.Text),
					logging.String("text", cur.Text),
				)
				cur.Start = prev.End
				report.OverlapFixes = append(report.OverlapFixes, i)
			}
		}

		if r.matchEnd(i, cur, cursor, report) {
			report.Matched = append(report.Matched, i)
		} else {
			report.Unmatched = append(report.Unmatched, i)
		}
	}
}

// matchEnd examines candidates for one subtitle. Each examination shifts the
// candidate by TimestampOffset, and the shift stays on the candidate.
func (r *Reconciler) matchEnd(i int, cur *subtitles.Entry, cursor *changepoint.Cursor, report *Report) bool {
	if cursor == nil {
		return false
	}
	log := r.logger()
	end := cur.End.Seconds()
	for {
		cand, ok := cursor.Peek()
		if !ok {
			return false
		}
		cand.Timestamp += r.Params.TimestampOffset
		if cand.Timestamp < end-r.Params.MatchWindowEarly {
			log.Debug("candidate before match window",
				logging.Int(logging.FieldSegment, i),
				logging.Float64("timestamp", cand.Timestamp),
				logging.Int("frame", cand.FrameIndex),
			)
			report.Discarded++
			cursor.Advance()
			continue
		}
		if cand.Timestamp > end+r.Params.MatchWindowLate {
			log.Debug("no candidate for subtitle",
				logging.Int(logging.FieldSegment, i),
				logging.Float64("next_candidate", cand.Timestamp),
			)
			return false
		}
		log.Debug("candidate matched",
			logging.Int(logging.FieldSegment, i),
			logging.Float64("timestamp", cand.Timestamp),
			logging.String("aligned_end", cur.End.String()),
		)
		cur.End = subtitles.FromSeconds(cand.Timestamp)
		cursor.Advance()
		return true
	}
}

// NudgePass pulls the start of every subtitle that begins a replaced run
// back by StartNudge and moves the previous subtitle's end with it. Index 0
// is never nudged and starts never go below zero. It returns the nudged
// indices.
func (r *Reconciler) NudgePass(entries []subtitles.Entry, replaced ReplacementSet) []int {
	var nudged []int
	step := subtitles.FromSeconds(r.Params.StartNudge)
	for i := 1; i < len(entries); i++ {
		if !replaced.Contains(i) || replaced.Contains(i-1) {
			continue
		}
		start := entries[i].Start - step
		if start < 0 {
			start = 0
		}
		r.logger().Debug("clip start nudged",
			logging.Int(logging.FieldSegment, i),
			logging.String("from", entries[i].Start.String()),
			logging.String("to", start.String()),
		)
		entries[i].Start = start
		entries[i-1].End = start
		nudged = append(nudged, i)
	}
	return nudged
}

// Package reconcile corrects alignment-derived subtitle timings against the
// visual change points found in the caption band.
//
// Reconciliation runs two passes. The boundary pass walks subtitles and
// candidates together with a single forward cursor, snapping each subtitle's
// end onto a nearby change point and closing any gap or overlap with its
// predecessor. The nudge pass then pulls the start of each replaced run of
// clips slightly earlier so the cut has a short lead-in.
//
// The boundary pass edits the candidates it examines and leaves the cursor
// consumed. Running it again on the same cursor gives a different result;
// build a new cursor from the extracted candidates to repeat a run.
package reconcile

// Package changepoint turns frame-difference samples into caption change
// candidates and provides the forward-only Cursor the reconcile stage
// consumes them through.
package changepoint

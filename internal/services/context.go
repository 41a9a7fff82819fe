package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	stageKey     contextKey = "stage"
	segmentKey   contextKey = "segment_index"
	variationKey contextKey = "variation"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the pipeline run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithSegment annotates context with the subtitle index being processed.
func WithSegment(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, segmentKey, index)
}

// SegmentFromContext returns the subtitle index if present.
func SegmentFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(segmentKey).(int)
	return v, ok
}

// WithVariation annotates context with the 1-based output variation number.
func WithVariation(ctx context.Context, n int) context.Context {
	if n <= 0 {
		return ctx
	}
	return context.WithValue(ctx, variationKey, n)
}

// VariationFromContext returns the output variation number if present.
func VariationFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(variationKey).(int)
	return v, ok
}

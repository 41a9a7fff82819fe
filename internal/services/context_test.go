package services_test

import (
	"context"
	"testing"

	"cuesplice/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithStage(ctx, "refine")
	ctx = services.WithSegment(ctx, 4)
	ctx = services.WithVariation(ctx, 2)

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "refine" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if idx, ok := services.SegmentFromContext(ctx); !ok || idx != 4 {
		t.Fatalf("unexpected segment: %v %v", idx, ok)
	}
	if n, ok := services.VariationFromContext(ctx); !ok || n != 2 {
		t.Fatalf("unexpected variation: %v %v", n, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	ctx = services.WithVariation(ctx, 0)
	if _, ok := services.VariationFromContext(ctx); ok {
		t.Fatal("expected no variation value")
	}
}

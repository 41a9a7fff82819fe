package splice_test

import (
	"errors"
	"image"
	"slices"
	"testing"

	"cuesplice/internal/services"
	"cuesplice/internal/splice"
	"cuesplice/internal/subtitles"
)

func cue(start, end float64, text string) subtitles.Entry {
	return subtitles.Entry{Start: subtitles.FromSeconds(start), End: subtitles.FromSeconds(end), Text: text}
}

func hostMedia() splice.Media {
	return splice.Media{Path: "host.mp4", Width: 1280, Height: 720, FrameRate: 30, Duration: 10, HasAudio: true}
}

func TestPlanCapsReplacementThenMatchesOriginalTarget(t *testing.T) {
	// Subtitle 1 spans 5s of host but only 4s of timeline; the replacement is 3s.
	entries := []subtitles.Entry{cue(0, 2, "a"), cue(1, 6, "b"), cue(6, 9, "c")}
	rep := splice.Replacement{Index: 1, Media: splice.Media{Path: "r.mp4", Width: 1920, Height: 1080, FrameRate: 25, Duration: 3}}

	tl, err := splice.Plan(hostMedia(), entries, []splice.Replacement{rep}, splice.PlanOptions{Aspect: 0.8, Captions: true})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(tl.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(tl.Segments))
	}
	if tl.Duration != 9 {
		t.Fatalf("timeline duration = %v, want 9", tl.Duration)
	}

	seg := tl.Segments[1]
	if !seg.Replaced || seg.Clip.Path != "r.mp4" {
		t.Fatalf("segment 1 should be the replacement, got %+v", seg)
	}
	if seg.Clip.Window != 3 || seg.Clip.Duration != 4 || !seg.Clip.Loop {
		t.Fatalf("replacement should loop its 3s to 4s, got window %v duration %v loop %v",
			seg.Clip.Window, seg.Clip.Duration, seg.Clip.Loop)
	}
	if seg.Clip.Width != 1280 || seg.Clip.Height != 720 || seg.Clip.FrameRate != 30 {
		t.Fatalf("replacement not aligned to host: %+v", seg.Clip)
	}
	if seg.Clip.Crop != image.Rect(528, 0, 1392, 1080) {
		t.Fatalf("crop = %v", seg.Clip.Crop)
	}
	if seg.Caption == nil || seg.Caption.Text != "b" || seg.Caption.Duration != 5 {
		t.Fatalf("caption = %+v", seg.Caption)
	}

	first := tl.Segments[0]
	if first.Replaced || first.Clip.Offset != 0 || first.Clip.Duration != 2 || first.Caption != nil {
		t.Fatalf("unexpected host segment 0 %+v", first)
	}
	last := tl.Segments[2]
	if last.Clip.Offset != 6 || last.Clip.Window != 3 || last.Clip.Duration != 3 || last.Clip.Loop {
		t.Fatalf("unexpected host segment 2 %+v", last.Clip)
	}
	if !slices.Equal(tl.Replaced(), []int{1}) {
		t.Fatalf("Replaced() = %v", tl.Replaced())
	}
}

func TestPlanTrimsLongReplacement(t *testing.T) {
	entries := []subtitles.Entry{cue(0, 2, "a"), cue(2, 4, "b")}
	rep := splice.Replacement{Index: 0, Media: splice.Media{Path: "r.mp4", Width: 1280, Height: 720, FrameRate: 30, Duration: 20}}

	tl, err := splice.Plan(hostMedia(), entries, []splice.Replacement{rep}, splice.PlanOptions{})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	seg := tl.Segments[0]
	if seg.Clip.Window != 2 || seg.Clip.Duration != 2 || seg.Clip.Loop {
		t.Fatalf("replacement should be cut to 2s, got %+v", seg.Clip)
	}
	if !seg.Clip.Crop.Empty() {
		t.Fatalf("same-aspect replacement should not be cropped, got %v", seg.Clip.Crop)
	}
	if seg.Caption != nil {
		t.Fatal("captions disabled but caption planned")
	}
}

func TestPlanSkipsOutOfRangeReplacements(t *testing.T) {
	entries := []subtitles.Entry{cue(0, 2, "a"), cue(2, 4, "b")}
	bogus := splice.Media{Path: "r.mp4", Width: 1280, Height: 720, FrameRate: 30, Duration: 3}
	reps := []splice.Replacement{{Index: 5, Media: bogus}, {Index: -1, Media: bogus}, {Index: 2, Media: splice.Media{}}}

	tl, err := splice.Plan(hostMedia(), entries, reps, splice.PlanOptions{})
	if err != nil {
		t.Fatalf("out of range replacements must not fail: %v", err)
	}
	if !slices.Equal(tl.Skipped, []int{5, -1, 2}) {
		t.Fatalf("skipped = %v", tl.Skipped)
	}
	if len(tl.Replaced()) != 0 {
		t.Fatalf("nothing should be replaced, got %v", tl.Replaced())
	}
}

func TestPlanRejectsInvalidInput(t *testing.T) {
	entries := []subtitles.Entry{cue(0, 2, "a")}
	if _, err := splice.Plan(splice.Media{Path: "h.mp4"}, entries, nil, splice.PlanOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("host without geometry should fail validation, got %v", err)
	}
	if _, err := splice.Plan(hostMedia(), nil, nil, splice.PlanOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty subtitles should fail validation, got %v", err)
	}
	bad := splice.Replacement{Index: 0, Media: splice.Media{Path: "r.mp4"}}
	if _, err := splice.Plan(hostMedia(), entries, []splice.Replacement{bad}, splice.PlanOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("in-range replacement without probe data should fail, got %v", err)
	}
}

package frames_test

import (
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"cuesplice/internal/frames"
	"cuesplice/internal/services"
)

func stubFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestFFmpegSourceArgs(t *testing.T) {
	src := &frames.FFmpegSource{Path: "/videos/host.mp4"}
	args := src.Args(image.Rect(40, 980, 1880, 1040))
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "crop=1840:60:40:980,format=gray") {
		t.Fatalf("missing crop filter: %s", joined)
	}
	if !slices.Contains(args, "/videos/host.mp4") || args[len(args)-1] != "pipe:1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestFFmpegSourceStreamsFrames(t *testing.T) {
	stub := stubFFmpeg(t, `printf '\000\377\377\377\000\000'`+"\n")
	src := &frames.FFmpegSource{Binary: stub, Path: "host.mp4"}
	roi := image.Rect(3, 7, 5, 8)

	reader, err := src.Open(context.Background(), roi)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()

	var got [][]byte
	for {
		img, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if img.Bounds() != roi {
			t.Fatalf("frame bounds %v, want %v", img.Bounds(), roi)
		}
		got = append(got, slices.Clone(img.(*image.Gray).Pix))
	}
	want := [][]byte{{0, 255}, {255, 255}, {0, 0}}
	if len(got) != len(want) {
		t.Fatalf("got %d frames, want %d", len(got), len(want))
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Fatalf("frame %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFFmpegSourceFeedsScanner(t *testing.T) {
	stub := stubFFmpeg(t, `printf '\000\377\377\377\000\000'`+"\n")
	src := &frames.FFmpegSource{
		Binary: stub,
		Path:   "host.mp4",
		Meta:   frames.Metadata{FrameRate: 2, FrameCount: 3, Width: 2, Height: 1},
	}
	scanner := &frames.Scanner{Source: src, Region: frames.Region{Bleed: 0, LineHeight: 1}, Cutoff: frames.DefaultCutoff}
	samples, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Confidence != 50 || samples[1].Confidence != 100 {
		t.Fatalf("unexpected confidences %+v", samples)
	}
	if samples[1].Timestamp != 1 {
		t.Fatalf("expected timestamp 1s for frame 2 at 2fps, got %v", samples[1].Timestamp)
	}
}

func TestFFmpegSourceReportsFailure(t *testing.T) {
	stub := stubFFmpeg(t, "echo 'host.mp4: Invalid data found when processing input' >&2\nexit 1\n")
	src := &frames.FFmpegSource{Binary: stub, Path: "host.mp4"}
	reader, err := src.Open(context.Background(), image.Rect(0, 0, 2, 1))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()

	_, err = reader.Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected tool failure, got %v", err)
	}
	if out := services.CapturedOutput(err); !strings.Contains(out, "Invalid data") {
		t.Fatalf("captured output = %q", out)
	}
}

func TestFFmpegSourceCloseEarly(t *testing.T) {
	stub := stubFFmpeg(t, "while :; do printf '\\000\\000'; done\n")
	src := &frames.FFmpegSource{Binary: stub, Path: "host.mp4"}
	reader, err := src.Open(context.Background(), image.Rect(0, 0, 2, 1))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := reader.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := reader.Close(); err != nil {
		t.Fatalf("Close after early stop should not fail: %v", err)
	}
}

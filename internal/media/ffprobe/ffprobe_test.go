package ffprobe

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"cuesplice/internal/services"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
			BitRate:  "32000",
		},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if result.BitRate() != 32000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
			BitRate:  "nope",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30000/1001", 30000.0 / 1001.0},
		{"25/1", 25},
		{"24", 24},
		{"0/0", 0},
		{"25/0", 0},
		{"", 0},
		{"abc", 0},
	}
	for _, tc := range tests {
		if got := ParseFrameRate(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ParseFrameRate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestVideoInfo(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio"},
			{Index: 1, CodecType: "video", Width: 1080, Height: 1920, AvgRate: "0/0", RFrameRate: "30/1", NBFrames: "", Duration: ""},
		},
		Format: Format{Duration: "12.5"},
	}
	info, err := result.Video()
	if err != nil {
		t.Fatalf("Video: %v", err)
	}
	if info.Width != 1080 || info.Height != 1920 {
		t.Fatalf("unexpected dimensions %+v", info)
	}
	if info.FrameRate != 30 {
		t.Fatalf("expected r_frame_rate fallback, got %v", info.FrameRate)
	}
	if info.Duration != 12.5 {
		t.Fatalf("expected container duration fallback, got %v", info.Duration)
	}
	if info.FrameCount != 375 {
		t.Fatalf("expected estimated frame count 375, got %d", info.FrameCount)
	}
	if !result.HasAudio() {
		t.Fatal("expected audio stream")
	}
}

func TestVideoInfoErrors(t *testing.T) {
	if _, err := (Result{Streams: []Stream{{CodecType: "audio"}}}).Video(); !errors.Is(err, ErrNoVideoStream) {
		t.Fatalf("expected ErrNoVideoStream, got %v", err)
	}
	if _, err := (Result{Streams: []Stream{{CodecType: "video", Width: 10, Height: 10}}}).Video(); err == nil {
		t.Fatal("expected error for unknown frame rate")
	}
	info, err := (Result{Streams: []Stream{{CodecType: "video", Width: 4, Height: 2, AvgRate: "25/1", NBFrames: "100"}}}).Video()
	if err != nil || info.FrameCount != 100 {
		t.Fatalf("expected nb_frames to win, got %+v (%v)", info, err)
	}
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestInspectDecodesOutput(t *testing.T) {
	stub := writeStub(t, `cat <<'JSON'
{"streams":[{"index":0,"codec_type":"video","width":640,"height":360,"r_frame_rate":"25/1","avg_frame_rate":"25/1","nb_frames":"50"}],"format":{"duration":"2.0"}}
JSON
`)
	result, err := Inspect(context.Background(), stub, "/tmp/host.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	info, err := result.Video()
	if err != nil {
		t.Fatalf("Video: %v", err)
	}
	if info.FrameCount != 50 || info.FrameRate != 25 {
		t.Fatalf("unexpected info %+v", info)
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw json to be retained")
	}
}

func TestInspectCapturesStderr(t *testing.T) {
	stub := writeStub(t, "echo 'moov atom not found' >&2\nexit 1\n")
	_, err := Inspect(context.Background(), stub, "/tmp/broken.mp4")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := services.CapturedOutput(err); got != "moov atom not found" {
		t.Fatalf("captured output = %q", got)
	}
}

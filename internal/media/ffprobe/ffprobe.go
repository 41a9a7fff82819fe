package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"cuesplice/internal/services"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	CodecTag   string `json:"codec_tag_string"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
	RFrameRate string `json:"r_frame_rate"`
	AvgRate    string `json:"avg_frame_rate"`
	NBFrames   string `json:"nb_frames"`
}

// VideoInfo summarizes the first video stream of a file.
type VideoInfo struct {
	Width     int
	Height    int
	FrameRate float64
	// FrameCount is the container-reported frame count, or an estimate from
	// duration and frame rate when the container does not store one.
	FrameCount int
	Duration   float64
}

// ErrNoVideoStream is returned by Result.Video for audio-only inputs.
var ErrNoVideoStream = errors.New("no video stream")

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return Result{}, fmt.Errorf("ffprobe inspect %s: %w", path, &services.ToolError{Tool: binary, Output: stderr, Err: err})
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), output...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			count++
		}
	}
	return count
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

// HasAudio reports whether any audio stream is present.
func (r Result) HasAudio() bool {
	return r.AudioStreamCount() > 0
}

// Video returns dimensions, frame rate and frame count of the first video stream.
// The stream duration is used when present, falling back to the container duration.
func (r Result) Video() (VideoInfo, error) {
	for _, stream := range r.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		info := VideoInfo{Width: stream.Width, Height: stream.Height}
		info.FrameRate = ParseFrameRate(stream.AvgRate)
		if info.FrameRate <= 0 {
			info.FrameRate = ParseFrameRate(stream.RFrameRate)
		}
		info.Duration = parseFloat(stream.Duration)
		if math.IsNaN(info.Duration) || info.Duration <= 0 {
			info.Duration = r.DurationSeconds()
		}
		if math.IsNaN(info.Duration) || info.Duration < 0 {
			info.Duration = 0
		}
		if n, err := strconv.Atoi(strings.TrimSpace(stream.NBFrames)); err == nil && n > 0 {
			info.FrameCount = n
		} else if info.FrameRate > 0 && info.Duration > 0 {
			info.FrameCount = int(math.Round(info.Duration * info.FrameRate))
		}
		if info.Width <= 0 || info.Height <= 0 {
			return info, fmt.Errorf("video stream %d: missing dimensions", stream.Index)
		}
		if info.FrameRate <= 0 {
			return info, fmt.Errorf("video stream %d: unknown frame rate", stream.Index)
		}
		return info, nil
	}
	return VideoInfo{}, ErrNoVideoStream
}

// ParseFrameRate parses ffprobe rates such as "30000/1001" or "25". Invalid
// or zero-denominator values return 0.
func ParseFrameRate(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	num, den, found := strings.Cut(value, "/")
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || n <= 0 {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || d <= 0 {
		return 0
	}
	return n / d
}

// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - VideoInfo: dimensions, frame rate and frame count of the first video stream
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
package ffprobe

// Package frames measures caption changes in a video.
//
// A Scanner reads the caption band of every frame (see Region), binarizes it
// with a luminance cutoff and reports, for each frame after the first, the
// percentage of band pixels that flipped since the previous frame. Spikes in
// that percentage mark the moments a burned-in caption was replaced.
//
// Frames come from a Source. FFmpegSource streams raw gray frames from an
// ffmpeg subprocess and is the default. ImageSource serves in-memory frames.
// GoCVSource decodes with OpenCV and is only compiled with the gocv build tag.
// Open picks between them by decoder name.
package frames

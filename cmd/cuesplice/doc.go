// Command cuesplice splices replacement scenes into a captioned video at
// subtitle boundaries refined from the burned-in captions.
//
// Typical flow:
//
//	cuesplice align --audio talk.mp3 --transcript talk.txt
//	cuesplice refine talk.mp4 output/talk_with_timestamps.srt --replace 2,5
//	cuesplice splice talk.mp4 output/talk_with_timestamps_refined.srt --clips-dir clips
//
// or all at once with "cuesplice run". Exit status is 2 for configuration or
// input problems, 3 for file system failures, 4 when ffmpeg, ffprobe or the
// aligner fails, and 1 otherwise.
package main

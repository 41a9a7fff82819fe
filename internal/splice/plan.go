package splice

import (
	"image"

	"cuesplice/internal/services"
	"cuesplice/internal/subtitles"
)

// Replacement swaps the segment at Index for Media.
type Replacement struct {
	Index int `validate:"gte=0"`
	Media Media
}

// Caption is burned into a replaced segment for the first Duration seconds.
type Caption struct {
	Text     string
	Duration float64
}

// Segment is one entry of the output timeline.
type Segment struct {
	Index    int
	Clip     Clip
	Replaced bool
	Caption  *Caption
}

// Timeline is the planned output: segments in order plus the host whose
// audio track is laid under them.
type Timeline struct {
	Host     Media
	Segments []Segment
	Duration float64
	// Skipped lists replacement indices outside the subtitle range.
	Skipped []int
}

// PlanOptions tunes Plan.
type PlanOptions struct {
	// Aspect is the width/height ratio replacements are cropped to before
	// scaling. Zero means the host's own aspect.
	Aspect float64
	// Captions burns subtitle text into replaced segments.
	Captions bool
}

// Plan cuts host at the subtitle boundaries and swaps in replacements.
//
// Segment i shows host footage from entries[i].Start to entries[i].End and
// lasts entries[i].End - entries[i-1].End on the timeline (the first segment
// lasts entries[0].End). A replacement is first cut to the shorter of its own
// length and the subtitle interval, then looped or trimmed to that timeline
// duration and scaled to the host. Replacements whose index has no subtitle
// are skipped without error.
func Plan(host Media, entries []subtitles.Entry, replacements []Replacement, opts PlanOptions) (Timeline, error) {
	if err := services.ValidateStruct("splice", host); err != nil {
		return Timeline{}, err
	}
	if len(entries) == 0 {
		return Timeline{}, services.Wrap(services.ErrValidation, "splice", "plan", "no subtitles", nil)
	}
	for _, rep := range replacements {
		if rep.Index < 0 || rep.Index >= len(entries) {
			continue
		}
		if err := services.ValidateStruct("splice", rep); err != nil {
			return Timeline{}, err
		}
	}

	hostClip := FromMedia(host)
	aspect := opts.Aspect
	if aspect <= 0 {
		aspect = host.Aspect()
	}

	tl := Timeline{Host: host}
	segments := make([]Segment, len(entries))
	targets := make([]float64, len(entries))
	var prevEnd subtitles.Timecode
	for i, e := range entries {
		target := (e.End - prevEnd).Seconds()
		prevEnd = e.End
		targets[i] = target
		clip := hostClip.Subclip(e.Start.Seconds(), e.End.Seconds())
		segments[i] = Segment{Index: i, Clip: AdjustDuration(clip, max(target, 0))}
	}

	for _, rep := range replacements {
		if rep.Index < 0 || rep.Index >= len(entries) {
			tl.Skipped = append(tl.Skipped, rep.Index)
			continue
		}
		e := entries[rep.Index]
		interval := e.Duration().Seconds()
		fill := FillLength(interval, rep.Media.Duration)
		clip := FromMedia(rep.Media)
		if crop := CropToAspect(rep.Media.Width, rep.Media.Height, aspect); crop != image.Rect(0, 0, rep.Media.Width, rep.Media.Height) {
			clip.Crop = crop
		}
		clip = clip.Subclip(0, fill)
		clip = AdjustDuration(clip, max(targets[rep.Index], 0))
		clip = AlignProperties(clip, hostClip)

		seg := Segment{Index: rep.Index, Clip: clip, Replaced: true}
		if opts.Captions && interval > 0 {
			seg.Caption = &Caption{Text: e.Text, Duration: interval}
		}
		segments[rep.Index] = seg
	}

	for _, seg := range segments {
		if seg.Clip.Duration <= 0 {
			continue
		}
		tl.Segments = append(tl.Segments, seg)
		tl.Duration += seg.Clip.Duration
	}
	return tl, nil
}

// Replaced returns the indices of replaced segments in timeline order.
func (t Timeline) Replaced() []int {
	var out []int
	for _, seg := range t.Segments {
		if seg.Replaced {
			out = append(out, seg.Index)
		}
	}
	return out
}

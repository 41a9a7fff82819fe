package subtitles

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		video   float64
		want    []string
	}{
		{
			name: "empty",
			want: []string{"empty_subtitle_file"},
		},
		{
			name:    "clean",
			entries: []Entry{{Start: 0, End: 1000}, {Start: 1000, End: 2000}},
			video:   2,
		},
		{
			name:    "inverted",
			entries: []Entry{{Start: 2000, End: 1000}},
			want:    []string{"inverted_cue"},
		},
		{
			name:    "non monotonic",
			entries: []Entry{{Start: 3000, End: 4000}, {Start: 1000, End: 5000}},
			want:    []string{"non_monotonic"},
		},
		{
			name:    "beyond video",
			entries: []Entry{{Start: 0, End: 9000}},
			video:   8.5,
			want:    []string{"beyond_video"},
		},
		{
			name:    "negative start",
			entries: []Entry{{Start: -100, End: 1000}},
			want:    []string{"negative_start"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			issues := Validate(tc.entries, tc.video)
			if len(issues) != len(tc.want) {
				t.Fatalf("issues = %v, want prefixes %v", issues, tc.want)
			}
			for i, prefix := range tc.want {
				if !strings.HasPrefix(issues[i], prefix) {
					t.Fatalf("issue %d = %q, want prefix %q", i, issues[i], prefix)
				}
			}
		})
	}
}
